package repository

import (
	"context"

	"ferrepos/internal/model"

	"gorm.io/gorm"
)

// EmpresaRepository manages the singleton company row.
type EmpresaRepository interface {
	Obtener(ctx context.Context) (*model.Empresa, error)
	// Guardar creates the row on first save and updates it afterwards.
	Guardar(ctx context.Context, e *model.Empresa) error
}

type empresaRepo struct{ db *gorm.DB }

func NewEmpresaRepository(db *gorm.DB) EmpresaRepository { return &empresaRepo{db: db} }

func (r *empresaRepo) Obtener(ctx context.Context) (*model.Empresa, error) {
	var e model.Empresa
	err := r.db.WithContext(ctx).Order("created_at asc").First(&e).Error
	return &e, err
}

func (r *empresaRepo) Guardar(ctx context.Context, e *model.Empresa) error {
	var existing model.Empresa
	err := r.db.WithContext(ctx).Order("created_at asc").First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(e).Error
	}
	if err != nil {
		return err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(e).Error
}
