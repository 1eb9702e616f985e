package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a registered customer. Facturas copy the client data at creation
// time instead of referencing this row, so clients can be edited freely.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TipoDocumento string    `gorm:"type:varchar(10);not null"` // CC | NIT | CE | PAS
	Documento     string    `gorm:"uniqueIndex;not null"`
	Nombre        string    `gorm:"index;not null"`
	Telefono      *string
	Email         *string
	Direccion     *string
	Activo        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Cliente) TableName() string { return "clientes" }
