package handler

import (
	"errors"
	"net/http"

	"ferrepos/internal/apierror"
	"ferrepos/internal/dto"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

func (h *ReportesHandler) Ventas(c *gin.Context) {
	var filter dto.ReporteVentasFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ReporteVentas(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrRangoFechasInvalido) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) Inventario(c *gin.Context) {
	resp, err := h.svc.ReporteInventario(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
