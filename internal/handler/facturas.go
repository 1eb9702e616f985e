package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"ferrepos/internal/apierror"
	"ferrepos/internal/dto"
	"ferrepos/internal/middleware"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// Crear builds a factura from a sale payload. Stock conflicts surface as 409
// because a concurrent sale racing this one is not a client mistake.
func (h *FacturasHandler) Crear(c *gin.Context) {
	var req dto.CrearFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("token mal formado"))
		return
	}

	resp, err := h.svc.CrearDesdeVenta(c.Request.Context(), usuarioID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMontoInsuficiente):
			c.JSON(http.StatusBadRequest, dto.CrearFacturaResponse{
				Exito: false, Error: "El monto recibido es insuficiente para cubrir el total",
			})
		case errors.Is(err, service.ErrStockInsuficiente):
			c.JSON(http.StatusConflict, dto.CrearFacturaResponse{Exito: false, Error: err.Error()})
		default:
			c.JSON(http.StatusBadRequest, dto.CrearFacturaResponse{Exito: false, Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FacturasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FacturasHandler) Listar(c *gin.Context) {
	var filter dto.FacturaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar facturas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular annuls an invoice. Annulling an already-annulled invoice is a 409;
// the estado machine only moves activa → anulada once.
func (h *FacturasHandler) Anular(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AnularFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	claims := middleware.GetClaims(c)
	actor, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("token mal formado"))
		return
	}

	if err := h.svc.Anular(c.Request.Context(), id, actor, req.Motivo); err != nil {
		switch {
		case errors.Is(err, service.ErrFacturaNoEncontrada):
			c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
		case errors.Is(err, service.ErrFacturaYaAnulada):
			c.JSON(http.StatusConflict, apierror.New("La factura ya está anulada"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Error al anular la factura"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"exito": true})
}

// DescargarPDF serves the invoice PDF from the path the async worker
// persisted. 404 distinguishes "invoice missing" from "PDF not generated
// yet" (202); a recorded path whose file vanished also reports 202 so the
// client retries after the worker regenerates it.
func (h *FacturasHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.ObtenerRutaPDF(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFacturaNoEncontrada) {
			c.JSON(http.StatusNotFound, apierror.New("Factura no encontrada"))
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"exito":  false,
			"detail": "El PDF aún no ha sido generado",
		})
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusAccepted, gin.H{
			"exito":  false,
			"detail": "El PDF aún no ha sido generado",
		})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
