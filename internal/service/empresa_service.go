package service

import (
	"context"
	"errors"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"gorm.io/gorm"
)

var ErrEmpresaNoConfigurada = errors.New("los datos de la empresa no han sido configurados")

// EmpresaService manages the singleton issuing-business record that gets
// snapshotted into every factura.
type EmpresaService interface {
	Obtener(ctx context.Context) (*dto.EmpresaResponse, error)
	Guardar(ctx context.Context, req dto.GuardarEmpresaRequest) (*dto.EmpresaResponse, error)
}

type empresaService struct {
	repo repository.EmpresaRepository
}

func NewEmpresaService(repo repository.EmpresaRepository) EmpresaService {
	return &empresaService{repo: repo}
}

func (s *empresaService) Obtener(ctx context.Context) (*dto.EmpresaResponse, error) {
	e, err := s.repo.Obtener(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmpresaNoConfigurada
	}
	if err != nil {
		return nil, err
	}
	return &dto.EmpresaResponse{
		Nombre:    e.Nombre,
		NIT:       e.NIT,
		Direccion: e.Direccion,
		Telefono:  e.Telefono,
		Email:     e.Email,
	}, nil
}

func (s *empresaService) Guardar(ctx context.Context, req dto.GuardarEmpresaRequest) (*dto.EmpresaResponse, error) {
	e := &model.Empresa{
		Nombre:    req.Nombre,
		NIT:       req.NIT,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
		Email:     req.Email,
	}
	if err := s.repo.Guardar(ctx, e); err != nil {
		return nil, err
	}
	return &dto.EmpresaResponse{
		Nombre:    e.Nombre,
		NIT:       e.NIT,
		Direccion: e.Direccion,
		Telefono:  e.Telefono,
		Email:     e.Email,
	}, nil
}
