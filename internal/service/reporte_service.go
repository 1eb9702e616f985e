package service

import (
	"context"
	"errors"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrRangoFechasInvalido = errors.New("el rango de fechas es inválido")

type ReporteService interface {
	ReporteVentas(ctx context.Context, filter dto.ReporteVentasFilter) (*dto.ReporteVentasResponse, error)
	ReporteInventario(ctx context.Context) (*dto.ReporteInventarioResponse, error)
}

type reporteService struct {
	repo repository.ReporteRepository
}

func NewReporteService(repo repository.ReporteRepository) ReporteService {
	return &reporteService{repo: repo}
}

func (s *reporteService) ReporteVentas(ctx context.Context, filter dto.ReporteVentasFilter) (*dto.ReporteVentasResponse, error) {
	desde, err := time.Parse("2006-01-02", filter.Desde)
	if err != nil {
		return nil, ErrRangoFechasInvalido
	}
	hasta, err := time.Parse("2006-01-02", filter.Hasta)
	if err != nil {
		return nil, ErrRangoFechasInvalido
	}
	if hasta.Before(desde) {
		return nil, ErrRangoFechasInvalido
	}

	porDia, err := s.repo.VentasPorDia(ctx, filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	porMetodo, err := s.repo.VentasPorMetodo(ctx, filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}

	totalGral := decimal.Zero
	var facturas int64
	for _, d := range porDia {
		totalGral = totalGral.Add(d.Total)
		facturas += d.Cantidad
	}

	return &dto.ReporteVentasResponse{
		Exito:     true,
		Desde:     filter.Desde,
		Hasta:     filter.Hasta,
		PorDia:    porDia,
		PorMetodo: porMetodo,
		TotalGral: totalGral,
		Facturas:  facturas,
	}, nil
}

func (s *reporteService) ReporteInventario(ctx context.Context) (*dto.ReporteInventarioResponse, error) {
	valor, activos, err := s.repo.ValorInventario(ctx)
	if err != nil {
		return nil, err
	}
	bajoStock, err := s.repo.ProductosBajoStock(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductoResponse, 0, len(bajoStock))
	for i := range bajoStock {
		items = append(items, productoToResponse(&bajoStock[i]))
	}

	return &dto.ReporteInventarioResponse{
		Exito:            true,
		ValorInventario:  valor,
		ProductosActivos: activos,
		BajoStock:        items,
	}, nil
}
