package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ClienteVentaRequest is the client descriptor embedded in a sale payload.
// Data is snapshotted into the factura — it does not need to reference a
// registered Cliente row.
type ClienteVentaRequest struct {
	TipoDocumento string  `json:"tipo_documento" validate:"required,oneof=CC NIT CE PAS"`
	Documento     string  `json:"documento"      validate:"required,min=3,max=20"`
	Nombre        string  `json:"nombre"         validate:"required,min=2,max=120"`
	Telefono      *string `json:"telefono"`
}

type ItemVentaRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Codigo         string          `json:"codigo"          validate:"required"`
	Nombre         string          `json:"nombre"          validate:"required"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required"`
}

// CrearFacturaRequest is the sale payload for POST /v1/facturas.
// Quantity and unit price per line are validated here at the boundary; the
// assembler does not re-validate numeric ranges.
type CrearFacturaRequest struct {
	Cliente       ClienteVentaRequest `json:"cliente"        validate:"required"`
	Items         []ItemVentaRequest  `json:"items"          validate:"required,min=1,dive"`
	Impuesto      decimal.Decimal     `json:"impuesto"       validate:"min=0"`
	MetodoPago    string              `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta transferencia credito"`
	MontoRecibido decimal.Decimal     `json:"monto_recibido" validate:"min=0"`
	Observaciones *string             `json:"observaciones"`
	// ClienteEmail: optional — when present, the PDF worker mails the invoice.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type AnularFacturaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// FacturaFilter is bound from the query string of GET /v1/facturas.
type FacturaFilter struct {
	Cliente string `form:"cliente"`        // free-text: nombre o documento
	Numero  string `form:"numero_factura"` // exact or prefix match
	Estado  string `form:"estado"`         // activa | anulada | all
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleFacturaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	SubtotalLinea  decimal.Decimal `json:"subtotal_linea"`
}

type FacturaResponse struct {
	ID            string                   `json:"id"`
	Numero        string                   `json:"numero"`
	Cliente       ClienteVentaRequest      `json:"cliente"`
	Empresa       EmpresaResponse          `json:"empresa"`
	Detalles      []DetalleFacturaResponse `json:"detalles"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Impuesto      decimal.Decimal          `json:"impuesto"`
	Total         decimal.Decimal          `json:"total"`
	MetodoPago    string                   `json:"metodo_pago"`
	MontoRecibido decimal.Decimal          `json:"monto_recibido"`
	Cambio        decimal.Decimal          `json:"cambio"`
	Observaciones *string                  `json:"observaciones"`
	Estado        string                   `json:"estado"`
	CreatedAt     string                   `json:"created_at"`
}

// CrearFacturaResponse is the discriminated result of invoice creation.
type CrearFacturaResponse struct {
	Exito         bool             `json:"exito"`
	Factura       *FacturaResponse `json:"factura,omitempty"`
	NumeroFactura string           `json:"numero_factura,omitempty"`
	Error         string           `json:"error,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type FacturaListResponse struct {
	Exito      bool              `json:"exito"`
	Facturas   []FacturaResponse `json:"facturas"`
	Pagination Pagination        `json:"pagination"`
}
