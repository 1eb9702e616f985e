package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Errores de negocio de facturación. Handlers map them to HTTP status codes.
var (
	ErrFacturaNoEncontrada = errors.New("factura no encontrada")
	ErrFacturaYaAnulada    = errors.New("la factura ya está anulada")
	ErrMontoInsuficiente   = errors.New("el monto recibido es insuficiente")
	ErrStockInsuficiente   = errors.New("stock insuficiente")
	ErrPDFNoGenerado       = errors.New("el pdf de la factura aún no ha sido generado")
)

// Company snapshot defaults used when the empresa row was never configured.
const (
	empresaNombreDefault = "Ferretería G&L"
	empresaNITDefault    = "900000000-0"
)

type FacturaService interface {
	CrearDesdeVenta(ctx context.Context, usuarioID uuid.UUID, req dto.CrearFacturaRequest) (*dto.CrearFacturaResponse, error)
	Anular(ctx context.Context, id uuid.UUID, actor uuid.UUID, motivo string) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error)
	ObtenerRutaPDF(ctx context.Context, id uuid.UUID) (string, error)
	Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
}

type facturaService struct {
	repo         repository.FacturaRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	empresaRepo  repository.EmpresaRepository
	dispatcher   *worker.Dispatcher
}

func NewFacturaService(
	repo repository.FacturaRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	empresaRepo repository.EmpresaRepository,
	dispatcher *worker.Dispatcher,
) FacturaService {
	return &facturaService{
		repo:         repo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		empresaRepo:  empresaRepo,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CrearDesdeVenta ──────────────────────────────────────────────────────────
// Full ACID transaction:
//   1. Validate payment sufficiency for cash sales
//   2. Resolve products and compute totals (pre-flight, outside TX)
//   3. BEGIN TX: allocate numero, snapshot empresa, create header + detalles,
//      descontar stock with guard, record movimientos
//   4. COMMIT
//   5. (async) dispatch PDF job

func (s *facturaService) CrearDesdeVenta(ctx context.Context, usuarioID uuid.UUID, req dto.CrearFacturaRequest) (*dto.CrearFacturaResponse, error) {
	// 1. Totals. Unit prices come from the payload, not the catalog: the
	// counter may apply manual prices, and the snapshot is what gets billed.
	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}
	total := subtotal.Add(req.Impuesto)

	cambio := decimal.Zero
	if req.MetodoPago == "efectivo" {
		if req.MontoRecibido.LessThan(total) {
			return nil, ErrMontoInsuficiente
		}
		cambio = req.MontoRecibido.Sub(total)
	}

	// 2. Resolve products (pre-flight, outside TX)
	type resolvedItem struct {
		productoID uuid.UUID
		codigo     string
		nombre     string
		precio     decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
	}

	var resolved []resolvedItem
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s no encontrado", item.ProductoID)
		}
		if !p.Activo {
			return nil, fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre)
		}
		if p.StockActual < item.Cantidad {
			return nil, fmt.Errorf("%w: %s (disponible %d, solicitado %d)",
				ErrStockInsuficiente, p.Nombre, p.StockActual, item.Cantidad)
		}
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			codigo:     p.Codigo,
			nombre:     p.Nombre,
			precio:     item.PrecioUnitario,
			cantidad:   item.Cantidad,
			subtotal:   item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))),
		})
	}

	// Empresa snapshot — missing configuration must never block a sale.
	empresa, err := s.empresaRepo.Obtener(ctx)
	if err != nil {
		empresa = &model.Empresa{Nombre: empresaNombreDefault, NIT: empresaNITDefault}
	}

	// 3. ACID transaction
	var factura model.Factura
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumeroFactura(ctx, tx)
		if err != nil {
			return err
		}
		if numero.Degradado {
			log.Warn().Str("numero", numero.Valor).
				Msg("numeración de facturas degradada: usando fallback por timestamp")
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"sistema_version":      "2.0",
			"numeracion_degradada": numero.Degradado,
			"cantidad_productos":   len(resolved),
			"fecha_creacion":       time.Now().Format(time.RFC3339),
		})

		factura = model.Factura{
			Numero:               numero.Valor,
			ClienteTipoDocumento: req.Cliente.TipoDocumento,
			ClienteDocumento:     req.Cliente.Documento,
			ClienteNombre:        req.Cliente.Nombre,
			ClienteTelefono:      req.Cliente.Telefono,
			EmpresaNombre:        empresa.Nombre,
			EmpresaNIT:           empresa.NIT,
			EmpresaDireccion:     empresa.Direccion,
			EmpresaTelefono:      empresa.Telefono,
			EmpresaEmail:         empresa.Email,
			Subtotal:             subtotal,
			Impuesto:             req.Impuesto,
			Total:                total,
			MetodoPago:           req.MetodoPago,
			MontoRecibido:        req.MontoRecibido,
			Cambio:               cambio,
			Observaciones:        req.Observaciones,
			Metadata:             string(metadata),
			Estado:               model.FacturaActiva,
			CreadaPor:            usuarioID,
		}

		for _, r := range resolved {
			factura.Detalles = append(factura.Detalles, model.DetalleFactura{
				ProductoID:     r.productoID,
				ProductoCodigo: r.codigo,
				ProductoNombre: r.nombre,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				SubtotalLinea:  r.subtotal,
			})
		}

		if err := s.repo.Create(ctx, tx, &factura); err != nil {
			return err
		}

		// Descontar stock. The guarded UPDATE re-checks availability inside
		// the TX: a concurrent sale may have drained stock since pre-flight.
		for _, r := range resolved {
			prodBefore, err := s.productoRepo.FindByIDTx(tx, r.productoID)
			stockAntes := 0
			if err == nil && prodBefore != nil {
				stockAntes = prodBefore.StockActual
			}

			rows, err := s.productoRepo.DescontarStockTx(tx, r.productoID, r.cantidad)
			if err != nil {
				return fmt.Errorf("error descontando stock de %s: %w", r.nombre, err)
			}
			if rows == 0 {
				return fmt.Errorf("%w: %s", ErrStockInsuficiente, r.nombre)
			}

			facturaRef := factura.ID
			mov := &model.MovimientoStock{
				ProductoID:    r.productoID,
				Tipo:          "venta",
				Cantidad:      -r.cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes - r.cantidad,
				Motivo:        fmt.Sprintf("Venta factura %s", factura.Numero),
				ReferenciaID:  &facturaRef,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 5. Async PDF job (best-effort — fire & forget)
	if s.dispatcher != nil {
		payload := map[string]interface{}{
			"factura_id": factura.ID.String(),
		}
		if req.ClienteEmail != nil && *req.ClienteEmail != "" {
			payload["cliente_email"] = *req.ClienteEmail
		}
		_ = s.dispatcher.EnqueueFacturaPDF(ctx, payload)
	}

	return &dto.CrearFacturaResponse{
		Exito:         true,
		Factura:       facturaToResponse(&factura),
		NumeroFactura: factura.Numero,
	}, nil
}

// ── Anular ───────────────────────────────────────────────────────────────────
// Annulment never deletes: it flips estado, restores stock with inverse
// movements, and leaves an audit row. All inside one transaction.

func (s *facturaService) Anular(ctx context.Context, id uuid.UUID, actor uuid.UUID, motivo string) error {
	factura, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrFacturaNoEncontrada
	}
	if factura.Estado == model.FacturaAnulada {
		return ErrFacturaYaAnulada
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Claim the transition first. The estado predicate on the UPDATE
		// makes a concurrent annulment lose here, before any stock moves.
		obs := fmt.Sprintf("ANULADA: %s", motivo)
		if factura.Observaciones != nil && *factura.Observaciones != "" {
			obs = *factura.Observaciones + " | " + obs
		}
		if err := s.repo.UpdateEstadoTx(tx, id, model.FacturaAnulada, &obs); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFacturaYaAnulada
			}
			return err
		}

		for _, det := range factura.Detalles {
			prodBefore, _ := s.productoRepo.FindByIDTx(tx, det.ProductoID)
			stockAntes := 0
			if prodBefore != nil {
				stockAntes = prodBefore.StockActual
			}

			if err := s.productoRepo.RestaurarStockTx(tx, det.ProductoID, det.Cantidad); err != nil {
				return err
			}

			facturaRef := factura.ID
			mov := &model.MovimientoStock{
				ProductoID:    det.ProductoID,
				Tipo:          "restauracion_anulacion",
				Cantidad:      det.Cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes + det.Cantidad,
				Motivo:        fmt.Sprintf("Anulación factura %s — %s", factura.Numero, motivo),
				ReferenciaID:  &facturaRef,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		audit := &model.AuditoriaFactura{
			FacturaID:     factura.ID,
			ValorAnterior: model.FacturaActiva,
			ValorNuevo:    model.FacturaAnulada,
			Actor:         actor,
			Motivo:        motivo,
		}
		return s.repo.CreateAuditoriaTx(tx, audit)
	})
}

func (s *facturaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FacturaResponse, error) {
	factura, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrFacturaNoEncontrada
	}
	return facturaToResponse(factura), nil
}

// ObtenerRutaPDF returns the file path the PDF worker persisted for the
// invoice. ErrPDFNoGenerado means the async job has not completed yet.
func (s *facturaService) ObtenerRutaPDF(ctx context.Context, id uuid.UUID) (string, error) {
	factura, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", ErrFacturaNoEncontrada
	}
	if factura.PDFPath == nil || *factura.PDFPath == "" {
		return "", ErrPDFNoGenerado
	}
	return *factura.PDFPath, nil
}

func (s *facturaService) Listar(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	facturas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FacturaResponse, 0, len(facturas))
	for _, f := range facturas {
		items = append(items, *facturaToResponse(&f))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.FacturaListResponse{
		Exito:    true,
		Facturas: items,
		Pagination: dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	detalles := make([]dto.DetalleFacturaResponse, 0, len(f.Detalles))
	for _, det := range f.Detalles {
		detalles = append(detalles, dto.DetalleFacturaResponse{
			ProductoID:     det.ProductoID.String(),
			Codigo:         det.ProductoCodigo,
			Nombre:         det.ProductoNombre,
			Cantidad:       det.Cantidad,
			PrecioUnitario: det.PrecioUnitario,
			SubtotalLinea:  det.SubtotalLinea,
		})
	}
	return &dto.FacturaResponse{
		ID:     f.ID.String(),
		Numero: f.Numero,
		Cliente: dto.ClienteVentaRequest{
			TipoDocumento: f.ClienteTipoDocumento,
			Documento:     f.ClienteDocumento,
			Nombre:        f.ClienteNombre,
			Telefono:      f.ClienteTelefono,
		},
		Empresa: dto.EmpresaResponse{
			Nombre:    f.EmpresaNombre,
			NIT:       f.EmpresaNIT,
			Direccion: f.EmpresaDireccion,
			Telefono:  f.EmpresaTelefono,
			Email:     f.EmpresaEmail,
		},
		Detalles:      detalles,
		Subtotal:      f.Subtotal,
		Impuesto:      f.Impuesto,
		Total:         f.Total,
		MetodoPago:    f.MetodoPago,
		MontoRecibido: f.MontoRecibido,
		Cambio:        f.Cambio,
		Observaciones: f.Observaciones,
		Estado:        f.Estado,
		CreatedAt:     f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
