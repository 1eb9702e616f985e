package tests

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

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

// txJournal emulates the database transaction for the stubs: every write
// performed inside the TX registers an undo, and a mid-TX failure replays
// them in reverse, the way a ROLLBACK discards the whole unit.
type txJournal struct {
	undos []func()
}

func (j *txJournal) record(undo func()) {
	if j == nil {
		return
	}
	j.undos = append(j.undos, undo)
}

func (j *txJournal) rollback() {
	if j == nil {
		return
	}
	for i := len(j.undos) - 1; i >= 0; i-- {
		j.undos[i]()
	}
	j.undos = nil
}

type stubFacturaRepo struct {
	mu                    sync.Mutex
	facturas              map[uuid.UUID]*model.Factura
	auditorias            []model.AuditoriaFactura
	seq                   int
	degradar              bool       // force the timestamp fallback
	lecturaDesactualizada bool       // FindByID reports estado=activa regardless
	journal               *txJournal // when set, TX writes register undos
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uuid.UUID]*model.Factura)}
}

func (r *stubFacturaRepo) Create(_ context.Context, _ *gorm.DB, f *model.Factura) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	for i := range f.Detalles {
		f.Detalles[i].FacturaID = f.ID
	}
	f.CreatedAt = time.Now()
	r.mu.Lock()
	r.facturas[f.ID] = f
	r.mu.Unlock()
	id := f.ID
	r.journal.record(func() { delete(r.facturas, id) })
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if r.lecturaDesactualizada {
		copia := *f
		copia.Estado = model.FacturaActiva
		return &copia, nil
	}
	return f, nil
}

func (r *stubFacturaRepo) FindByNumero(_ context.Context, numero string) (*model.Factura, error) {
	for _, f := range r.facturas {
		if f.Numero == numero {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFacturaRepo) List(_ context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	matched := make([]model.Factura, 0)
	for _, f := range r.facturas {
		if filter.Estado != "" && filter.Estado != "all" && f.Estado != filter.Estado {
			continue
		}
		if filter.Cliente != "" &&
			!strings.Contains(strings.ToLower(f.ClienteNombre), strings.ToLower(filter.Cliente)) &&
			!strings.Contains(f.ClienteDocumento, filter.Cliente) {
			continue
		}
		if filter.Numero != "" && !strings.HasPrefix(f.Numero, filter.Numero) {
			continue
		}
		matched = append(matched, *f)
	}
	total := int64(len(matched))

	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return []model.Factura{}, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *stubFacturaRepo) NextNumeroFactura(_ context.Context, _ *gorm.DB) (repository.NumeroFactura, error) {
	if r.degradar {
		return repository.NumeroFactura{
			Valor:     fmt.Sprintf("FAC-%d", time.Now().UnixMilli()),
			Degradado: true,
		}, nil
	}
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()
	return repository.NumeroFactura{
		Valor: fmt.Sprintf("FAC-%s-%04d", time.Now().Format("20060102"), seq),
	}, nil
}

// UpdateEstadoTx mirrors the guarded UPDATE: a row already in the target
// estado matches zero rows.
func (r *stubFacturaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string, observaciones *string) error {
	f, ok := r.facturas[id]
	if !ok || f.Estado == estado {
		return gorm.ErrRecordNotFound
	}
	f.Estado = estado
	if observaciones != nil {
		f.Observaciones = observaciones
	}
	return nil
}

func (r *stubFacturaRepo) CreateAuditoriaTx(_ *gorm.DB, a *model.AuditoriaFactura) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.auditorias = append(r.auditorias, *a)
	return nil
}

func (r *stubFacturaRepo) UpdatePDFPath(_ context.Context, id uuid.UUID, path string) error {
	f, ok := r.facturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.PDFPath = &path
	return nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

type stubEmpresaRepo struct{ empresa *model.Empresa }

func (r *stubEmpresaRepo) Obtener(_ context.Context) (*model.Empresa, error) {
	if r.empresa == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.empresa, nil
}

func (r *stubEmpresaRepo) Guardar(_ context.Context, e *model.Empresa) error {
	r.empresa = e
	return nil
}

var _ repository.EmpresaRepository = (*stubEmpresaRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

type facturaFixture struct {
	svc          service.FacturaService
	facturaRepo  *stubFacturaRepo
	productoRepo *stubProductoRepo
	movRepo      *stubMovimientoRepo
	empresaRepo  *stubEmpresaRepo
}

func buildFacturaSvc() *facturaFixture {
	facturaRepo := newStubFacturaRepo()
	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	empresaRepo := &stubEmpresaRepo{}
	svc := service.NewFacturaService(facturaRepo, productoRepo, movRepo, empresaRepo, nil)
	return &facturaFixture{
		svc:          svc,
		facturaRepo:  facturaRepo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		empresaRepo:  empresaRepo,
	}
}

func clienteVenta() dto.ClienteVentaRequest {
	return dto.ClienteVentaRequest{
		TipoDocumento: "CC",
		Documento:     "1020304050",
		Nombre:        "Pedro Gómez",
	}
}

func itemVenta(p *model.Producto, cantidad int, precio int64) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{
		ProductoID:     p.ID.String(),
		Codigo:         p.Codigo,
		Nombre:         p.Nombre,
		Cantidad:       cantidad,
		PrecioUnitario: decimal.NewFromInt(precio),
	}
}

// ── Tests: crear desde venta ──────────────────────────────────────────────────

func TestCrearFactura_TotalesYCambio(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo de uña", 10, 3, 25000)
	tornillos := seedProducto(fx.productoRepo, "TORN-001", "Caja tornillos 1/4", 50, 10, 5000)

	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 2, 25000), itemVenta(tornillos, 3, 5000)},
		Impuesto:      decimal.Zero,
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(70000),
	})
	require.NoError(t, err)
	require.True(t, resp.Exito)

	f := resp.Factura
	assert.True(t, f.Subtotal.Equal(decimal.NewFromInt(65000)), "subtotal = %s", f.Subtotal)
	assert.True(t, f.Total.Equal(decimal.NewFromInt(65000)), "total = %s", f.Total)
	assert.True(t, f.Cambio.Equal(decimal.NewFromInt(5000)), "cambio = %s", f.Cambio)

	expectedNumero := "FAC-" + time.Now().Format("20060102") + "-0001"
	assert.Equal(t, expectedNumero, resp.NumeroFactura)

	require.Len(t, f.Detalles, 2)
	assert.True(t, f.Detalles[0].SubtotalLinea.Equal(decimal.NewFromInt(50000)))
	assert.True(t, f.Detalles[1].SubtotalLinea.Equal(decimal.NewFromInt(15000)))

	// Stock decremented and movements recorded inside the same operation.
	assert.Equal(t, 8, martillo.StockActual)
	assert.Equal(t, 47, tornillos.StockActual)
	require.Len(t, fx.movRepo.movimientos, 2)
	for _, mov := range fx.movRepo.movimientos {
		assert.Equal(t, "venta", mov.Tipo)
		assert.Negative(t, mov.Cantidad)
		require.NotNil(t, mov.ReferenciaID)
		assert.Equal(t, f.ID, mov.ReferenciaID.String())
	}
}

func TestCrearFactura_MontoInsuficiente(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)

	_, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 2, 25000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(40000),
	})
	assert.ErrorIs(t, err, service.ErrMontoInsuficiente)
	// Rejected before touching anything.
	assert.Equal(t, 10, martillo.StockActual)
	assert.Empty(t, fx.facturaRepo.facturas)
	assert.Empty(t, fx.movRepo.movimientos)
}

func TestCrearFactura_TarjetaNoExigeMonto(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)

	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:    clienteVenta(),
		Items:      []dto.ItemVentaRequest{itemVenta(martillo, 1, 25000)},
		MetodoPago: "tarjeta",
	})
	require.NoError(t, err)
	assert.True(t, resp.Factura.Cambio.IsZero())
}

func TestCrearFactura_ProductoInactivo(t *testing.T) {
	fx := buildFacturaSvc()
	descontinuado := seedProducto(fx.productoRepo, "VIEJO-001", "Taladro descontinuado", 5, 1, 120000)
	descontinuado.Activo = false

	_, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(descontinuado, 1, 120000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(120000),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")
	assert.Equal(t, 5, descontinuado.StockActual)
}

func TestCrearFactura_StockInsuficiente(t *testing.T) {
	fx := buildFacturaSvc()
	cemento := seedProducto(fx.productoRepo, "CEM-001", "Cemento gris", 3, 1, 32000)

	_, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(cemento, 5, 32000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(200000),
	})
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
	assert.Equal(t, 3, cemento.StockActual)
	assert.Empty(t, fx.facturaRepo.facturas)
}

func TestCrearFactura_NumeracionConsecutiva(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)

	venta := func() *dto.CrearFacturaResponse {
		resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
			Cliente:       clienteVenta(),
			Items:         []dto.ItemVentaRequest{itemVenta(martillo, 1, 25000)},
			MetodoPago:    "efectivo",
			MontoRecibido: decimal.NewFromInt(25000),
		})
		require.NoError(t, err)
		return resp
	}

	hoy := time.Now().Format("20060102")
	assert.Equal(t, "FAC-"+hoy+"-0001", venta().NumeroFactura)
	assert.Equal(t, "FAC-"+hoy+"-0002", venta().NumeroFactura)
	assert.Equal(t, "FAC-"+hoy+"-0003", venta().NumeroFactura)
}

func TestCrearFactura_NumeracionConcurrente(t *testing.T) {
	fx := buildFacturaSvc()
	const ventas = 10

	productos := make([]*model.Producto, ventas)
	for i := range productos {
		productos[i] = seedProducto(fx.productoRepo, fmt.Sprintf("CONC-%03d", i), "Producto concurrente", 10, 1, 10000)
	}

	numeros := make([]string, ventas)
	var wg sync.WaitGroup
	for i := 0; i < ventas; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
				Cliente:       clienteVenta(),
				Items:         []dto.ItemVentaRequest{itemVenta(productos[i], 1, 10000)},
				MetodoPago:    "efectivo",
				MontoRecibido: decimal.NewFromInt(10000),
			})
			if err == nil {
				numeros[i] = resp.NumeroFactura
			}
		}(i)
	}
	wg.Wait()

	// Every sale got a number and no two sales share one.
	vistos := make(map[string]bool, ventas)
	for _, numero := range numeros {
		require.NotEmpty(t, numero)
		assert.False(t, vistos[numero], "número repetido: %s", numero)
		vistos[numero] = true
	}
}

func TestCrearFactura_NumeracionDegradada(t *testing.T) {
	fx := buildFacturaSvc()
	fx.facturaRepo.degradar = true
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)

	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 1, 25000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(25000),
	})
	// The allocator failing must never fail the sale.
	require.NoError(t, err)
	assert.True(t, resp.Exito)
	assert.True(t, strings.HasPrefix(resp.NumeroFactura, "FAC-"))

	id := uuid.MustParse(resp.Factura.ID)
	guardada := fx.facturaRepo.facturas[id]
	assert.Contains(t, guardada.Metadata, `"numeracion_degradada":true`)
}

func TestCrearFactura_MetadataCompleta(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)
	brocha := seedProducto(fx.productoRepo, "BRO-001", "Brocha 3in", 20, 5, 8000)

	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 1, 25000), itemVenta(brocha, 2, 8000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(41000),
	})
	require.NoError(t, err)

	guardada := fx.facturaRepo.facturas[uuid.MustParse(resp.Factura.ID)]
	assert.Contains(t, guardada.Metadata, `"sistema_version":"2.0"`)
	assert.Contains(t, guardada.Metadata, `"numeracion_degradada":false`)
	assert.Contains(t, guardada.Metadata, `"cantidad_productos":2`)
	assert.Contains(t, guardada.Metadata, `"fecha_creacion":"`)
}

func TestCrearFactura_FalloIntermedioNoDejaEstadoParcial(t *testing.T) {
	fx := buildFacturaSvc()
	journal := &txJournal{}
	fx.facturaRepo.journal = journal
	fx.productoRepo.journal = journal
	fx.movRepo.journal = journal
	fx.movRepo.fallarMovimientoEn = 2 // second stock movement write breaks

	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)
	tornillos := seedProducto(fx.productoRepo, "TORN-001", "Caja tornillos 1/4", 50, 10, 5000)

	_, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 2, 25000), itemVenta(tornillos, 3, 5000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(65000),
	})
	require.Error(t, err)

	// Header, stock and movements roll back as one unit: nothing survives.
	assert.Empty(t, fx.facturaRepo.facturas)
	assert.Equal(t, 10, martillo.StockActual)
	assert.Equal(t, 50, tornillos.StockActual)
	assert.Empty(t, fx.movRepo.movimientos)
}

func TestCrearFactura_EmpresaSinConfigurar(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)

	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 1, 25000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(25000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ferretería G&L", resp.Factura.Empresa.Nombre)
	assert.Equal(t, "900000000-0", resp.Factura.Empresa.NIT)
}

func TestCrearFactura_SnapshotEmpresaConfigurada(t *testing.T) {
	fx := buildFacturaSvc()
	fx.empresaRepo.empresa = &model.Empresa{
		Nombre:    "Ferretería El Tornillo",
		NIT:       "901234567-8",
		Direccion: "Calle 45 # 12-30",
	}
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 25000)

	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 1, 25000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(25000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ferretería El Tornillo", resp.Factura.Empresa.Nombre)
	assert.Equal(t, "901234567-8", resp.Factura.Empresa.NIT)
	assert.Equal(t, "Calle 45 # 12-30", resp.Factura.Empresa.Direccion)
}

// ── Tests: anulación ──────────────────────────────────────────────────────────

func crearVentaDePrueba(t *testing.T, fx *facturaFixture, productos ...*model.Producto) *dto.CrearFacturaResponse {
	t.Helper()
	items := make([]dto.ItemVentaRequest, 0, len(productos))
	total := int64(0)
	for _, p := range productos {
		items = append(items, itemVenta(p, 2, 10000))
		total += 20000
	}
	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         items,
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(total),
	})
	require.NoError(t, err)
	return resp
}

func TestAnularFactura_RestauraStockYDejaAuditoria(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 10000)
	brocha := seedProducto(fx.productoRepo, "BRO-001", "Brocha 3in", 20, 5, 10000)
	resp := crearVentaDePrueba(t, fx, martillo, brocha)
	require.Equal(t, 8, martillo.StockActual)
	require.Equal(t, 18, brocha.StockActual)

	actor := uuid.New()
	id := uuid.MustParse(resp.Factura.ID)
	require.NoError(t, fx.svc.Anular(context.Background(), id, actor, "Cliente devolvió la compra"))

	// Stock back where it started.
	assert.Equal(t, 10, martillo.StockActual)
	assert.Equal(t, 20, brocha.StockActual)

	// Inverse movements, never a delete of the originals.
	restauraciones := 0
	for _, mov := range fx.movRepo.movimientos {
		if mov.Tipo == "restauracion_anulacion" {
			restauraciones++
			assert.Positive(t, mov.Cantidad)
		}
	}
	assert.Equal(t, 2, restauraciones)
	assert.Len(t, fx.movRepo.movimientos, 4) // 2 ventas + 2 restauraciones

	// Audit trail.
	require.Len(t, fx.facturaRepo.auditorias, 1)
	audit := fx.facturaRepo.auditorias[0]
	assert.Equal(t, model.FacturaActiva, audit.ValorAnterior)
	assert.Equal(t, model.FacturaAnulada, audit.ValorNuevo)
	assert.Equal(t, actor, audit.Actor)
	assert.Equal(t, "Cliente devolvió la compra", audit.Motivo)

	guardada := fx.facturaRepo.facturas[id]
	assert.Equal(t, model.FacturaAnulada, guardada.Estado)
	require.NotNil(t, guardada.Observaciones)
	assert.Equal(t, "ANULADA: Cliente devolvió la compra", *guardada.Observaciones)
}

func TestAnularFactura_ConservaObservacionesPrevias(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 10000)

	obs := "Entrega en obra"
	resp, err := fx.svc.CrearDesdeVenta(context.Background(), uuid.New(), dto.CrearFacturaRequest{
		Cliente:       clienteVenta(),
		Items:         []dto.ItemVentaRequest{itemVenta(martillo, 1, 10000)},
		MetodoPago:    "efectivo",
		MontoRecibido: decimal.NewFromInt(10000),
		Observaciones: &obs,
	})
	require.NoError(t, err)

	id := uuid.MustParse(resp.Factura.ID)
	require.NoError(t, fx.svc.Anular(context.Background(), id, uuid.New(), "Error de digitación"))

	guardada := fx.facturaRepo.facturas[id]
	require.NotNil(t, guardada.Observaciones)
	assert.Equal(t, "Entrega en obra | ANULADA: Error de digitación", *guardada.Observaciones)
}

func TestAnularFactura_YaAnulada(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 10000)
	resp := crearVentaDePrueba(t, fx, martillo)

	id := uuid.MustParse(resp.Factura.ID)
	require.NoError(t, fx.svc.Anular(context.Background(), id, uuid.New(), "Primera anulación"))

	err := fx.svc.Anular(context.Background(), id, uuid.New(), "Segunda anulación")
	assert.ErrorIs(t, err, service.ErrFacturaYaAnulada)

	// The second attempt is a no-op: no extra audit, no extra restoration.
	assert.Len(t, fx.facturaRepo.auditorias, 1)
	assert.Equal(t, 10, martillo.StockActual)
}

func TestAnularFactura_CarreraDobleAnulacion(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 10000)
	resp := crearVentaDePrueba(t, fx, martillo)
	id := uuid.MustParse(resp.Factura.ID)
	require.NoError(t, fx.svc.Anular(context.Background(), id, uuid.New(), "Primera anulación"))
	require.Equal(t, 10, martillo.StockActual)

	// An annulment that read estado=activa before the first one committed
	// must lose on the guarded estado flip, before touching any stock.
	fx.facturaRepo.lecturaDesactualizada = true
	err := fx.svc.Anular(context.Background(), id, uuid.New(), "Anulación en carrera")
	assert.ErrorIs(t, err, service.ErrFacturaYaAnulada)

	assert.Len(t, fx.facturaRepo.auditorias, 1)
	assert.Equal(t, 10, martillo.StockActual)
	assert.Len(t, fx.movRepo.movimientos, 2) // 1 venta + 1 restauración
}

func TestAnularFactura_NoEncontrada(t *testing.T) {
	fx := buildFacturaSvc()
	err := fx.svc.Anular(context.Background(), uuid.New(), uuid.New(), "No existe")
	assert.ErrorIs(t, err, service.ErrFacturaNoEncontrada)
}

// ── Tests: consulta y listado ─────────────────────────────────────────────────

func TestObtenerFactura_NoEncontrada(t *testing.T) {
	fx := buildFacturaSvc()
	_, err := fx.svc.ObtenerPorID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrFacturaNoEncontrada)
}

func TestObtenerRutaPDF(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 10, 3, 10000)
	resp := crearVentaDePrueba(t, fx, martillo)
	id := uuid.MustParse(resp.Factura.ID)

	// Before the worker runs there is no persisted path.
	_, err := fx.svc.ObtenerRutaPDF(context.Background(), id)
	assert.ErrorIs(t, err, service.ErrPDFNoGenerado)

	// The worker persists the path; the download now resolves from it.
	ruta := "/var/lib/ferrepos/pdfs/factura_" + resp.NumeroFactura + ".pdf"
	require.NoError(t, fx.facturaRepo.UpdatePDFPath(context.Background(), id, ruta))
	obtenida, err := fx.svc.ObtenerRutaPDF(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ruta, obtenida)

	_, err = fx.svc.ObtenerRutaPDF(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrFacturaNoEncontrada)
}

func TestListarFacturas_FiltroEstadoYPaginacion(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 100, 3, 10000)

	var primera *dto.CrearFacturaResponse
	for i := 0; i < 5; i++ {
		resp := crearVentaDePrueba(t, fx, martillo)
		if i == 0 {
			primera = resp
		}
	}
	require.NoError(t, fx.svc.Anular(
		context.Background(), uuid.MustParse(primera.Factura.ID), uuid.New(), "Venta de prueba"))

	activas, err := fx.svc.Listar(context.Background(), dto.FacturaFilter{
		Estado: "activa", Page: 1, Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), activas.Pagination.Total)
	assert.Equal(t, 2, activas.Pagination.TotalPages)
	assert.Len(t, activas.Facturas, 3)

	anuladas, err := fx.svc.Listar(context.Background(), dto.FacturaFilter{
		Estado: "anulada", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), anuladas.Pagination.Total)
	assert.Equal(t, model.FacturaAnulada, anuladas.Facturas[0].Estado)
}

func TestListarFacturas_FiltroPorCliente(t *testing.T) {
	fx := buildFacturaSvc()
	martillo := seedProducto(fx.productoRepo, "MART-001", "Martillo", 100, 3, 10000)
	crearVentaDePrueba(t, fx, martillo)

	resp, err := fx.svc.Listar(context.Background(), dto.FacturaFilter{
		Cliente: "pedro", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	resp, err = fx.svc.Listar(context.Background(), dto.FacturaFilter{
		Cliente: "inexistente", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Pagination.Total)
}
