package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados derivados del producto. Precedencia: inactivo > bajo-stock > activo.
const (
	ProductoEstadoActivo    = "activo"
	ProductoEstadoBajoStock = "bajo-stock"
	ProductoEstadoInactivo  = "inactivo"
)

// Producto is one catalog entry of the ferretería.
// Codigo is globally unique — checked before creation, not merely relying
// on the unique constraint failing.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo       string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioCompra decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MargenPct is derived from (PrecioVenta - PrecioCompra) / PrecioCompra * 100
	MargenPct   decimal.Decimal `gorm:"type:decimal(6,2)"`
	StockActual int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:5"`
	Ubicacion   *string
	PesoKg      *decimal.Decimal `gorm:"type:decimal(8,3);column:peso_kg"`
	Dimensiones *string
	CategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	Activo      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

func (Producto) TableName() string { return "productos" }

// Estado returns the derived display state. Inactive overrides low-stock,
// which overrides "activo". Low stock uses <= (a product sitting exactly at
// its minimum is already low).
func (p *Producto) Estado() string {
	if !p.Activo {
		return ProductoEstadoInactivo
	}
	if p.StockActual <= p.StockMinimo {
		return ProductoEstadoBajoStock
	}
	return ProductoEstadoActivo
}

// MovimientoStock registra cada cambio de stock en un producto.
// Movements are NEVER modified or deleted — annulments create inverse entries.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"` // "venta" | "ajuste_manual" | "restauracion_anulacion"
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	// ReferenciaID links to the originating Factura when applicable
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }
