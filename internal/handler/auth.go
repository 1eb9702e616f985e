package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ferrepos/internal/apierror"
	"ferrepos/internal/dto"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login maps the access-chain outcomes onto status codes: missing fields 400,
// bad credentials 401, role without access 403, locked account 423.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return
	}

	// The empty-credentials message is a fixed contract with the frontend.
	if strings.TrimSpace(req.EmailUsuario) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Email/usuario y contraseña son requeridos"))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		var bloqueo *service.BloqueoError
		switch {
		case errors.As(err, &bloqueo):
			c.JSON(http.StatusLocked, apierror.New(fmt.Sprintf(
				"Cuenta bloqueada por intentos fallidos. Intente nuevamente después de las %s",
				bloqueo.Hasta.Format("15:04:05"))))
		case errors.Is(err, service.ErrRolSinAcceso):
			c.JSON(http.StatusForbidden, apierror.New("Su rol no tiene acceso al sistema"))
		case errors.Is(err, service.ErrCredenciales):
			c.JSON(http.StatusUnauthorized, apierror.New("Credenciales inválidas"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Error interno al iniciar sesión"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar usuarios"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarUsuario(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Desactivar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DesactivarUsuario(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, apierror.New("usuario no encontrado"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"exito": true})
}
