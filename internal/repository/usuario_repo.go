package repository

import (
	"context"
	"time"

	"ferrepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByEmailOrUsername(ctx context.Context, emailUsuario string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	List(ctx context.Context) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	UpdateLockout(ctx context.Context, id uuid.UUID, intentos int, bloqueadoHasta *time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Cargo / Empleado lookups used when provisioning accounts
	FindCargoByRol(ctx context.Context, rol model.RolSistema) (*model.Cargo, error)
	CreateCargo(ctx context.Context, c *model.Cargo) error
	CreateEmpleado(ctx context.Context, e *model.Empleado) error

	DB() *gorm.DB
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) DB() *gorm.DB { return r.db }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByEmailOrUsername(ctx context.Context, emailUsuario string) (*model.Usuario, error) {
	var u model.Usuario
	// Accept login by username OR email (case-insensitive email match). A
	// retired empleado invalidates the account even if usuarios.activo was
	// left on. The role chain is preloaded for the service's access check.
	err := r.db.WithContext(ctx).
		Preload("Empleado.Cargo").
		Joins("JOIN empleados ON empleados.id = usuarios.empleado_id AND empleados.activo = true").
		Where("(usuarios.username = ? OR LOWER(usuarios.email) = LOWER(?)) AND usuarios.activo = true", emailUsuario, emailUsuario).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Empleado.Cargo").First(&u, id).Error
	return &u, err
}

func (r *usuarioRepo) List(ctx context.Context) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).Preload("Empleado.Cargo").Where("activo = true").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// UpdateLockout writes the failed-attempt counter and lockout timestamp with
// a targeted UPDATE so concurrent logins never clobber unrelated columns.
func (r *usuarioRepo) UpdateLockout(ctx context.Context, id uuid.UUID, intentos int, bloqueadoHasta *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"intentos_fallidos": intentos,
			"bloqueado_hasta":   bloqueadoHasta,
		}).Error
}

func (r *usuarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *usuarioRepo) FindCargoByRol(ctx context.Context, rol model.RolSistema) (*model.Cargo, error) {
	var c model.Cargo
	err := r.db.WithContext(ctx).Where("rol_sistema = ?", rol).First(&c).Error
	return &c, err
}

func (r *usuarioRepo) CreateCargo(ctx context.Context, c *model.Cargo) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *usuarioRepo) CreateEmpleado(ctx context.Context, e *model.Empleado) error {
	return r.db.WithContext(ctx).Create(e).Error
}
