package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de factura. Transición única: activa → anulada (sin vuelta atrás).
const (
	FacturaActiva  = "activa"
	FacturaAnulada = "anulada"
)

// Factura is the billed record of a sale: header plus line items.
// Client and company data are COPIED at creation time, never referenced,
// so later edits to the catalog do not rewrite billing history.
// Facturas are never physically deleted; annulment flips Estado.
type Factura struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Numero follows FAC-YYYYMMDD-NNNN and is a persisted external contract.
	Numero string `gorm:"uniqueIndex;not null"`

	// Client snapshot
	ClienteTipoDocumento string `gorm:"type:varchar(10);not null"`
	ClienteDocumento     string `gorm:"index;not null"`
	ClienteNombre        string `gorm:"index;not null"`
	ClienteTelefono      *string

	// Company snapshot
	EmpresaNombre    string `gorm:"not null"`
	EmpresaNIT       string `gorm:"column:empresa_nit;not null"`
	EmpresaDireccion string
	EmpresaTelefono  string
	EmpresaEmail     string

	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Impuesto      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MetodoPago    string          `gorm:"type:varchar(20);not null"`
	MontoRecibido decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Cambio        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Observaciones *string
	// Metadata is an opaque versioned JSON blob (tagged by sistema_version).
	// Never queried relationally.
	Metadata  string    `gorm:"type:jsonb;not null;default:'{}'"`
	Estado    string    `gorm:"type:varchar(20);not null;default:'activa';index"`
	CreadaPor uuid.UUID `gorm:"type:uuid;not null"`
	// PDFPath is relative to PDF_STORAGE_PATH; set by the async PDF worker.
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Detalles []DetalleFactura `gorm:"foreignKey:FacturaID;constraint:OnDelete:CASCADE"`
}

func (Factura) TableName() string { return "facturas" }

// DetalleFactura is one line item of a Factura. Product code and name are
// snapshots; SubtotalLinea = Cantidad × PrecioUnitario computed at insert
// time and never re-derived.
type DetalleFactura struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoCodigo string          `gorm:"not null"`
	ProductoNombre string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null;check:cantidad > 0"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SubtotalLinea  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time
}

func (DetalleFactura) TableName() string { return "detalles_factura" }

// AuditoriaFactura records every state change applied to a factura.
// Rows are append-only — never modified or deleted.
type AuditoriaFactura struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FacturaID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ValorAnterior string    `gorm:"not null"`
	ValorNuevo    string    `gorm:"not null"`
	Actor         uuid.UUID `gorm:"type:uuid;not null"`
	Motivo        string    `gorm:"not null"`
	CreatedAt     time.Time
}

func (AuditoriaFactura) TableName() string { return "auditoria_facturas" }
