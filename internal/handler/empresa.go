package handler

import (
	"errors"
	"net/http"

	"ferrepos/internal/apierror"
	"ferrepos/internal/dto"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
)

type EmpresaHandler struct{ svc service.EmpresaService }

func NewEmpresaHandler(svc service.EmpresaService) *EmpresaHandler {
	return &EmpresaHandler{svc: svc}
}

func (h *EmpresaHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrEmpresaNoConfigurada) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener datos de empresa"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmpresaHandler) Guardar(c *gin.Context) {
	var req dto.GuardarEmpresaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al guardar datos de empresa"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
