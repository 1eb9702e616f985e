package model

import (
	"time"

	"github.com/google/uuid"
)

// RolSistema is the closed set of system roles. Adding a role is a
// compile-time decision, not a runtime string comparison.
type RolSistema string

const (
	RolAdministrador RolSistema = "administrador"
	RolCajero        RolSistema = "cajero"
	RolBodeguero     RolSistema = "bodeguero"
)

// PuedeIngresar reports whether the role is allowed to authenticate into the
// system. Valid credentials alone are not enough — only roles with system
// access may log in.
func (r RolSistema) PuedeIngresar() bool {
	switch r {
	case RolAdministrador, RolCajero:
		return true
	default:
		return false
	}
}

// Cargo is a job role/title carrying the system-access role.
type Cargo struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre     string     `gorm:"uniqueIndex;not null"`
	RolSistema RolSistema `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Cargo) TableName() string { return "cargos" }

// Empleado belongs to exactly one Cargo.
type Empleado struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Documento string    `gorm:"uniqueIndex;not null"`
	Telefono  *string
	CargoID   uuid.UUID `gorm:"type:uuid;not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Cargo *Cargo `gorm:"foreignKey:CargoID"`
}

func (Empleado) TableName() string { return "empleados" }

// Usuario is a login account, tied to exactly one Empleado.
// IntentosFallidos and BloqueadoHasta implement the lockout counter: failed
// logins increment the counter, the threshold sets a 15-minute lockout, and
// a successful login resets both.
type Usuario struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username         string    `gorm:"uniqueIndex;not null"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	EmpleadoID       uuid.UUID `gorm:"type:uuid;not null"`
	IntentosFallidos int       `gorm:"not null;default:0"`
	BloqueadoHasta   *time.Time
	Activo           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Empleado *Empleado `gorm:"foreignKey:EmpleadoID"`
}

func (Usuario) TableName() string { return "usuarios" }

// Rol resolves the system role through the Empleado → Cargo chain.
// Returns the zero value when the chain is not preloaded.
func (u *Usuario) Rol() RolSistema {
	if u.Empleado == nil || u.Empleado.Cargo == nil {
		return ""
	}
	return u.Empleado.Cargo.RolSistema
}
