package tests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository for testing.
type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
	journal   *txJournal // when set, TX writes register undos
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	matched := make([]model.Producto, 0)
	for _, p := range r.productos {
		switch filter.Estado {
		case model.ProductoEstadoBajoStock:
			if !p.Activo || p.StockActual > p.StockMinimo {
				continue
			}
		case model.ProductoEstadoActivo:
			if !p.Activo || p.StockActual <= p.StockMinimo {
				continue
			}
		case model.ProductoEstadoInactivo:
			if p.Activo {
				continue
			}
		}
		if filter.Busqueda != "" &&
			!strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(filter.Busqueda)) &&
			!strings.Contains(strings.ToLower(p.Codigo), strings.ToLower(filter.Busqueda)) {
			continue
		}
		matched = append(matched, *p)
	}
	total := int64(len(matched))

	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []model.Producto{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = true
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	// Mirrors the guarded UPDATE: no row touched when stock is short.
	if p.StockActual < cantidad {
		return 0, nil
	}
	p.StockActual -= cantidad
	r.journal.record(func() { p.StockActual += cantidad })
	return 1, nil
}

func (r *stubProductoRepo) RestaurarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual += cantidad
	return nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual += delta
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubMovimientoRepo captures stock movements for assertion.
type stubMovimientoRepo struct {
	mu                 sync.Mutex
	movimientos        []model.MovimientoStock
	journal            *txJournal // when set, TX writes register undos
	fallarMovimientoEn int        // Nth CreateTx call aborts the transaction
	createTxLlamadas   int
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createTxLlamadas++
	if r.fallarMovimientoEn > 0 && r.createTxLlamadas == r.fallarMovimientoEn {
		// The write breaks mid-transaction and the database discards
		// everything written before it.
		r.journal.rollback()
		return errors.New("write movimientos_stock: connection reset by peer")
	}
	r.movimientos = append(r.movimientos, *m)
	r.journal.record(func() { r.movimientos = r.movimientos[:len(r.movimientos)-1] })
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	matched := make([]model.MovimientoStock, 0)
	for _, m := range r.movimientos {
		if filter.ProductoID != nil && m.ProductoID != *filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		matched = append(matched, m)
	}
	return matched, int64(len(matched)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedProducto(repo *stubProductoRepo, codigo, nombre string, stock, minimo int, precio float64) *model.Producto {
	p := &model.Producto{
		ID:           uuid.New(),
		Codigo:       codigo,
		Nombre:       nombre,
		PrecioVenta:  decimal.NewFromFloat(precio),
		PrecioCompra: decimal.NewFromFloat(precio / 2),
		StockActual:  stock,
		StockMinimo:  minimo,
		Activo:       true,
	}
	repo.productos[p.ID] = p
	return p
}

func buildProductoSvc() (service.ProductoService, *stubProductoRepo, *stubMovimientoRepo) {
	repo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	return service.NewProductoService(repo, movRepo), repo, movRepo
}

// ── Tests: estado derivado ────────────────────────────────────────────────────

func TestProductoEstado_Precedencia(t *testing.T) {
	p := &model.Producto{Activo: true, StockActual: 10, StockMinimo: 5}
	assert.Equal(t, "activo", p.Estado())

	// Boundary: stock exactly at minimum is already low.
	p.StockActual = 5
	assert.Equal(t, "bajo-stock", p.Estado())

	p.StockActual = 3
	assert.Equal(t, "bajo-stock", p.Estado())

	// Inactive wins over low stock.
	p.Activo = false
	assert.Equal(t, "inactivo", p.Estado())
}

// ── Tests: CRUD ───────────────────────────────────────────────────────────────

func TestCrearProducto_CalculaMargen(t *testing.T) {
	svc, _, _ := buildProductoSvc()

	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:       "MART-001",
		Nombre:       "Martillo de uña",
		PrecioVenta:  decimal.NewFromInt(25000),
		PrecioCompra: decimal.NewFromInt(20000),
		StockActual:  10,
		StockMinimo:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, "25", resp.MargenPct.String())
	assert.Equal(t, "activo", resp.Estado)
}

func TestCrearProducto_CodigoDuplicado(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	seedProducto(repo, "MART-001", "Martillo", 10, 3, 25000)

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:       "MART-001",
		Nombre:       "Otro martillo",
		PrecioVenta:  decimal.NewFromInt(30000),
		PrecioCompra: decimal.NewFromInt(20000),
	})
	assert.ErrorIs(t, err, service.ErrCodigoDuplicado)
}

func TestCrearProducto_RegistraStockInicial(t *testing.T) {
	svc, _, movRepo := buildProductoSvc()

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Codigo:       "TORN-001",
		Nombre:       "Tornillo 1/4",
		PrecioVenta:  decimal.NewFromInt(500),
		PrecioCompra: decimal.NewFromInt(200),
		StockActual:  100,
	})
	require.NoError(t, err)
	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, "ajuste_manual", movRepo.movimientos[0].Tipo)
	assert.Equal(t, 100, movRepo.movimientos[0].Cantidad)
	assert.Equal(t, 0, movRepo.movimientos[0].StockAnterior)
}

// ── Tests: filtros y paginación ───────────────────────────────────────────────

func TestListarProductos_FiltroBajoStock(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	seedProducto(repo, "A-1", "Alicate", 10, 5, 12000) // activo
	seedProducto(repo, "B-1", "Brocha", 5, 5, 4000)    // bajo-stock (boundary)
	seedProducto(repo, "C-1", "Cincel", 2, 5, 8000)    // bajo-stock
	inactivo := seedProducto(repo, "D-1", "Destornillador", 1, 5, 6000)
	inactivo.Activo = false // inactivo aunque esté bajo de stock

	resp, err := svc.Listar(context.Background(), dto.ProductoFilter{
		Estado: "bajo-stock", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	for _, p := range resp.Productos {
		assert.Equal(t, "bajo-stock", p.Estado)
	}
}

func TestListarProductos_PaginacionSobreResultadoFiltrado(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	for i := 0; i < 7; i++ {
		seedProducto(repo, "LLV-"+string(rune('A'+i)), "Llave", 20, 5, 15000)
	}
	seedProducto(repo, "X-1", "Taladro", 20, 5, 180000)

	resp, err := svc.Listar(context.Background(), dto.ProductoFilter{
		Busqueda: "llave", Page: 2, Limit: 5,
	})
	require.NoError(t, err)
	// Pagination metadata reflects the filtered set, not the whole catalog.
	assert.Equal(t, int64(7), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Len(t, resp.Productos, 2)
}

// ── Tests: ajuste de stock ────────────────────────────────────────────────────

func TestAjustarStock_RegistraMovimiento(t *testing.T) {
	svc, repo, movRepo := buildProductoSvc()
	p := seedProducto(repo, "PINT-001", "Pintura blanca", 10, 3, 45000)

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta: -4, Motivo: "Conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.StockActual)

	require.Len(t, movRepo.movimientos, 1)
	mov := movRepo.movimientos[0]
	assert.Equal(t, "ajuste_manual", mov.Tipo)
	assert.Equal(t, -4, mov.Cantidad)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 6, mov.StockNuevo)
}

func TestAjustarStock_NoPermiteNegativo(t *testing.T) {
	svc, repo, movRepo := buildProductoSvc()
	p := seedProducto(repo, "CEM-001", "Cemento gris", 3, 1, 32000)

	_, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta: -5, Motivo: "Merma",
	})
	require.Error(t, err)
	assert.Equal(t, 3, p.StockActual)
	assert.Empty(t, movRepo.movimientos)
}

func TestDesactivarYReactivarProducto(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	p := seedProducto(repo, "SEG-001", "Segueta", 8, 2, 9000)

	require.NoError(t, svc.Desactivar(context.Background(), p.ID))
	assert.Equal(t, "inactivo", p.Estado())

	require.NoError(t, svc.Reactivar(context.Background(), p.ID))
	assert.Equal(t, "activo", p.Estado())
}

func TestDesactivarProducto_NoEncontrado(t *testing.T) {
	svc, _, _ := buildProductoSvc()
	err := svc.Desactivar(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, service.ErrProductoNoEncontrado))
}
