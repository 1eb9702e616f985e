package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest deliberately has no validator tags: the handler checks the
// empty-credentials case itself to return the exact 400 message clients rely
// on, before the service ever sees the request.
type LoginRequest struct {
	EmailUsuario string `json:"email_usuario"`
	Password     string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	Username       string `json:"username"        validate:"required,min=3,max=150"`
	Email          string `json:"email"           validate:"required,email"`
	Password       string `json:"password"        validate:"required,min=8"`
	NombreEmpleado string `json:"nombre_empleado" validate:"required,min=2,max=120"`
	Documento      string `json:"documento"       validate:"required,min=3,max=20"`
	Cargo          string `json:"cargo"           validate:"required"`
	RolSistema     string `json:"rol_sistema"     validate:"required,oneof=administrador cajero bodeguero"`
}

type ActualizarUsuarioRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Activo   *bool   `json:"activo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Cargo    string `json:"cargo"`
	Rol      string `json:"rol"`
	Activo   bool   `json:"activo"`
}

type LoginResponse struct {
	Exito        bool            `json:"exito"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
