package tests

import (
	"context"
	"testing"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReporteRepo struct {
	porDia    []dto.VentaDiaria
	porMetodo []dto.VentaPorMetodo
	valor     decimal.Decimal
	activos   int64
	bajoStock []model.Producto
}

func (r *stubReporteRepo) VentasPorDia(_ context.Context, _, _ string) ([]dto.VentaDiaria, error) {
	return r.porDia, nil
}

func (r *stubReporteRepo) VentasPorMetodo(_ context.Context, _, _ string) ([]dto.VentaPorMetodo, error) {
	return r.porMetodo, nil
}

func (r *stubReporteRepo) ValorInventario(_ context.Context) (decimal.Decimal, int64, error) {
	return r.valor, r.activos, nil
}

func (r *stubReporteRepo) ProductosBajoStock(_ context.Context) ([]model.Producto, error) {
	return r.bajoStock, nil
}

var _ repository.ReporteRepository = (*stubReporteRepo)(nil)

func TestReporteVentas_AgregaDias(t *testing.T) {
	repo := &stubReporteRepo{
		porDia: []dto.VentaDiaria{
			{Fecha: "2026-08-30", Cantidad: 3, Total: decimal.NewFromInt(150000)},
			{Fecha: "2026-08-31", Cantidad: 2, Total: decimal.NewFromInt(90000)},
		},
		porMetodo: []dto.VentaPorMetodo{
			{MetodoPago: "efectivo", Cantidad: 4, Total: decimal.NewFromInt(200000)},
			{MetodoPago: "tarjeta", Cantidad: 1, Total: decimal.NewFromInt(40000)},
		},
	}
	svc := service.NewReporteService(repo)

	resp, err := svc.ReporteVentas(context.Background(), dto.ReporteVentasFilter{
		Desde: "2026-08-30", Hasta: "2026-08-31",
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalGral.Equal(decimal.NewFromInt(240000)))
	assert.Equal(t, int64(5), resp.Facturas)
	assert.Len(t, resp.PorMetodo, 2)
}

func TestReporteVentas_RangoInvalido(t *testing.T) {
	svc := service.NewReporteService(&stubReporteRepo{})

	for _, tc := range []dto.ReporteVentasFilter{
		{Desde: "2026-08-31", Hasta: "2026-08-30"}, // hasta antes de desde
		{Desde: "31/08/2026", Hasta: "2026-08-31"}, // formato incorrecto
		{Desde: "", Hasta: "2026-08-31"},
	} {
		_, err := svc.ReporteVentas(context.Background(), tc)
		assert.ErrorIs(t, err, service.ErrRangoFechasInvalido, "filtro %+v", tc)
	}
}

func TestReporteVentas_MismoDia(t *testing.T) {
	svc := service.NewReporteService(&stubReporteRepo{})

	resp, err := svc.ReporteVentas(context.Background(), dto.ReporteVentasFilter{
		Desde: "2026-08-31", Hasta: "2026-08-31",
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalGral.IsZero())
	assert.Equal(t, int64(0), resp.Facturas)
}

func TestReporteInventario(t *testing.T) {
	repo := &stubReporteRepo{
		valor:   decimal.NewFromInt(12500000),
		activos: 42,
		bajoStock: []model.Producto{
			{Codigo: "CEM-001", Nombre: "Cemento gris", StockActual: 2, StockMinimo: 5, Activo: true},
		},
	}
	svc := service.NewReporteService(repo)

	resp, err := svc.ReporteInventario(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.ValorInventario.Equal(decimal.NewFromInt(12500000)))
	assert.Equal(t, int64(42), resp.ProductosActivos)
	require.Len(t, resp.BajoStock, 1)
	assert.Equal(t, "bajo-stock", resp.BajoStock[0].Estado)
}
