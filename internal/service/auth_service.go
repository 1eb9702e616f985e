package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ferrepos/internal/config"
	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Errores de autenticación. Handlers map them to HTTP status codes:
// credenciales → 401, bloqueo → 423, rol sin acceso → 403.
var (
	ErrCredenciales = errors.New("credenciales inválidas")
	ErrRolSinAcceso = errors.New("su rol no tiene acceso al sistema")
)

// BloqueoError carries the unlock time so the handler can tell the user
// exactly when to retry.
type BloqueoError struct {
	Hasta time.Time
}

func (e *BloqueoError) Error() string {
	return fmt.Sprintf("cuenta bloqueada hasta %s", e.Hasta.Format("15:04:05"))
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// Login runs the full access chain: active account lookup, lockout check,
// role allow-list, then password verification with failed-attempt accounting.
// Valid credentials alone never grant access.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmailOrUsername(ctx, req.EmailUsuario)
	if err != nil {
		return nil, ErrCredenciales
	}
	// A deactivated empleado means no valid account behind the login,
	// indistinguishable from a bad lookup.
	if user.Empleado == nil || !user.Empleado.Activo {
		return nil, ErrCredenciales
	}

	now := time.Now()

	// Active lockout wins over everything, including a correct password.
	if user.BloqueadoHasta != nil {
		if now.Before(*user.BloqueadoHasta) {
			return nil, &BloqueoError{Hasta: *user.BloqueadoHasta}
		}
		// Lockout expired: clean slate before evaluating this attempt.
		user.IntentosFallidos = 0
		user.BloqueadoHasta = nil
		_ = s.repo.UpdateLockout(ctx, user.ID, 0, nil)
	}

	// The role gate runs before password verification: a role outside the
	// allow-list can never log in, so its attempts are not counted and the
	// account is never locked.
	if !user.Rol().PuedeIngresar() {
		return nil, ErrRolSinAcceso
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		intentos := user.IntentosFallidos + 1
		var hasta *time.Time
		if intentos >= s.cfg.MaxIntentosLogin {
			t := now.Add(time.Duration(s.cfg.BloqueoMinutos) * time.Minute)
			hasta = &t
		}
		_ = s.repo.UpdateLockout(ctx, user.ID, intentos, hasta)
		return nil, ErrCredenciales
	}

	if user.IntentosFallidos > 0 || user.BloqueadoHasta != nil {
		_ = s.repo.UpdateLockout(ctx, user.ID, 0, nil)
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Exito:        true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token inválido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims inválidos")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("token mal formado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("token mal formado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, errors.New("usuario no encontrado o inactivo")
	}
	if !user.Rol().PuedeIngresar() {
		return nil, ErrRolSinAcceso
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Exito:        true,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

// CrearUsuario provisions the full chain: Cargo (reused when one already
// exists for the role), Empleado, and Usuario.
func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	rol := model.RolSistema(req.RolSistema)

	cargo, err := s.repo.FindCargoByRol(ctx, rol)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cargo = &model.Cargo{Nombre: req.Cargo, RolSistema: rol}
		if err := s.repo.CreateCargo(ctx, cargo); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	empleado := &model.Empleado{
		Nombre:    req.NombreEmpleado,
		Documento: req.Documento,
		CargoID:   cargo.ID,
		Activo:    true,
	}
	if err := s.repo.CreateEmpleado(ctx, empleado); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		EmpleadoID:   empleado.ID,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	empleado.Cargo = cargo
	user.Empleado = empleado
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("usuario no encontrado")
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.Activo != nil {
		user.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      string(user.Rol()),
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	nombre := ""
	cargo := ""
	if u.Empleado != nil {
		nombre = u.Empleado.Nombre
		if u.Empleado.Cargo != nil {
			cargo = u.Empleado.Cargo.Nombre
		}
	}
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Nombre:   nombre,
		Cargo:    cargo,
		Rol:      string(u.Rol()),
		Activo:   u.Activo,
	}
}
