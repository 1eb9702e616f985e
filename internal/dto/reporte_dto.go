package dto

import "github.com/shopspring/decimal"

// ReporteVentasFilter is bound from GET /v1/reportes/ventas.
type ReporteVentasFilter struct {
	Desde string `form:"desde" validate:"required,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"required,datetime=2006-01-02"`
}

// VentaDiaria is one aggregated row of the sales report.
type VentaDiaria struct {
	Fecha    string          `json:"fecha"` // YYYY-MM-DD
	Cantidad int64           `json:"cantidad"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Impuesto decimal.Decimal `json:"impuesto"`
	Total    decimal.Decimal `json:"total"`
}

type VentaPorMetodo struct {
	MetodoPago string          `json:"metodo_pago"`
	Cantidad   int64           `json:"cantidad"`
	Total      decimal.Decimal `json:"total"`
}

type ReporteVentasResponse struct {
	Exito     bool             `json:"exito"`
	Desde     string           `json:"desde"`
	Hasta     string           `json:"hasta"`
	PorDia    []VentaDiaria    `json:"por_dia"`
	PorMetodo []VentaPorMetodo `json:"por_metodo"`
	TotalGral decimal.Decimal  `json:"total_general"`
	Facturas  int64            `json:"facturas"`
}

// ReporteInventarioResponse: low-stock list plus catalog valuation.
type ReporteInventarioResponse struct {
	Exito            bool               `json:"exito"`
	ValorInventario  decimal.Decimal    `json:"valor_inventario"` // SUM(stock * precio_venta)
	ProductosActivos int64              `json:"productos_activos"`
	BajoStock        []ProductoResponse `json:"bajo_stock"`
}
