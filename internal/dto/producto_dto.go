package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo       string           `json:"codigo"        validate:"required,min=2,max=30"`
	Nombre       string           `json:"nombre"        validate:"required,min=2,max=120"`
	Descripcion  *string          `json:"descripcion"`
	PrecioVenta  decimal.Decimal  `json:"precio_venta"  validate:"required"`
	PrecioCompra decimal.Decimal  `json:"precio_compra" validate:"required"`
	StockActual  int              `json:"stock_actual"  validate:"min=0"`
	StockMinimo  int              `json:"stock_minimo"  validate:"min=0"`
	Ubicacion    *string          `json:"ubicacion"`
	PesoKg       *decimal.Decimal `json:"peso_kg"`
	Dimensiones  *string          `json:"dimensiones"`
	CategoriaID  *string          `json:"categoria_id"  validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=2,max=120"`
	Descripcion  *string          `json:"descripcion"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta"`
	PrecioCompra *decimal.Decimal `json:"precio_compra"`
	StockMinimo  *int             `json:"stock_minimo"  validate:"omitempty,min=0"`
	Ubicacion    *string          `json:"ubicacion"`
	PesoKg       *decimal.Decimal `json:"peso_kg"`
	Dimensiones  *string          `json:"dimensiones"`
	CategoriaID  *string          `json:"categoria_id"  validate:"omitempty,uuid"`
}

type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ProductoFilter applies, in order: free-text search, category equality, and
// the three-mode estado filter. Pagination is applied last.
type ProductoFilter struct {
	Busqueda    string `form:"busqueda"` // substring match on nombre or codigo
	CategoriaID string `form:"categoria_id"`
	Estado      string `form:"estado"` // bajo-stock | activo | inactivo | "" (todos)
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string           `json:"id"`
	Codigo       string           `json:"codigo"`
	Nombre       string           `json:"nombre"`
	Descripcion  *string          `json:"descripcion"`
	PrecioVenta  decimal.Decimal  `json:"precio_venta"`
	PrecioCompra decimal.Decimal  `json:"precio_compra"`
	MargenPct    decimal.Decimal  `json:"margen_pct"`
	StockActual  int              `json:"stock_actual"`
	StockMinimo  int              `json:"stock_minimo"`
	Ubicacion    *string          `json:"ubicacion"`
	PesoKg       *decimal.Decimal `json:"peso_kg"`
	Dimensiones  *string          `json:"dimensiones"`
	CategoriaID  *string          `json:"categoria_id"`
	Estado       string           `json:"estado"` // activo | bajo-stock | inactivo
	Activo       bool             `json:"activo"`
}

type ProductoListResponse struct {
	Exito      bool               `json:"exito"`
	Productos  []ProductoResponse `json:"productos"`
	Pagination Pagination         `json:"pagination"`
}

// ─── Movimientos de stock ────────────────────────────────────────────────────

type MovimientoStockResponse struct {
	ID             string `json:"id"`
	ProductoID     string `json:"producto_id"`
	ProductoNombre string `json:"producto_nombre"`
	Tipo           string `json:"tipo"`
	Cantidad       int    `json:"cantidad"`
	StockAnterior  int    `json:"stock_anterior"`
	StockNuevo     int    `json:"stock_nuevo"`
	Motivo         string `json:"motivo"`
	CreatedAt      string `json:"created_at"`
}

type MovimientoStockFilter struct {
	ProductoID string `form:"producto_id"`
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovimientoStockListResponse struct {
	Exito       bool                      `json:"exito"`
	Movimientos []MovimientoStockResponse `json:"movimientos"`
	Pagination  Pagination                `json:"pagination"`
}
