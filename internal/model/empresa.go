package model

import (
	"time"

	"github.com/google/uuid"
)

// Empresa is the singleton row describing the issuing business. It is read at
// invoice-creation time and snapshotted into each factura. When the row is
// absent the service falls back to hard-coded defaults.
type Empresa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	NIT       string    `gorm:"column:nit;not null"`
	Direccion string
	Telefono  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Empresa) TableName() string { return "empresa" }
