package service

import (
	"context"
	"errors"
	"fmt"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrCodigoDuplicado      = errors.New("ya existe un producto con ese código")
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
}

type productoService struct {
	repo    repository.ProductoRepository
	movRepo repository.MovimientoStockRepository
}

func NewProductoService(repo repository.ProductoRepository, movRepo repository.MovimientoStockRepository) ProductoService {
	return &productoService{repo: repo, movRepo: movRepo}
}

// margen = (venta - compra) / compra * 100. Zero cost yields zero margin
// instead of a division error.
func calcularMargen(venta, compra decimal.Decimal) decimal.Decimal {
	if compra.IsZero() {
		return decimal.Zero
	}
	return venta.Sub(compra).Div(compra).Mul(decimal.NewFromInt(100)).Round(2)
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	// Explicit uniqueness check: a clean error beats surfacing the raw
	// unique-constraint violation.
	if _, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil {
		return nil, ErrCodigoDuplicado
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Producto{
		Codigo:       req.Codigo,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		PrecioVenta:  req.PrecioVenta,
		PrecioCompra: req.PrecioCompra,
		MargenPct:    calcularMargen(req.PrecioVenta, req.PrecioCompra),
		StockActual:  req.StockActual,
		StockMinimo:  req.StockMinimo,
		Ubicacion:    req.Ubicacion,
		PesoKg:       req.PesoKg,
		Dimensiones:  req.Dimensiones,
		Activo:       true,
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, fmt.Errorf("categoria_id inválido: %w", err)
		}
		p.CategoriaID = &cid
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if p.StockActual > 0 {
		_ = s.movRepo.Create(ctx, &model.MovimientoStock{
			ProductoID:    p.ID,
			Tipo:          "ajuste_manual",
			Cantidad:      p.StockActual,
			StockAnterior: 0,
			StockNuevo:    p.StockActual,
			Motivo:        "Stock inicial",
		})
	}

	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, productoToResponse(&productos[i]))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductoListResponse{
		Exito:     true,
		Productos: items,
		Pagination: dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioVenta != nil {
		p.PrecioVenta = *req.PrecioVenta
	}
	if req.PrecioCompra != nil {
		p.PrecioCompra = *req.PrecioCompra
	}
	if req.PrecioVenta != nil || req.PrecioCompra != nil {
		p.MargenPct = calcularMargen(p.PrecioVenta, p.PrecioCompra)
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.Ubicacion != nil {
		p.Ubicacion = req.Ubicacion
	}
	if req.PesoKg != nil {
		p.PesoKg = req.PesoKg
	}
	if req.Dimensiones != nil {
		p.Dimensiones = req.Dimensiones
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, fmt.Errorf("categoria_id inválido: %w", err)
		}
		p.CategoriaID = &cid
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

// AjustarStock applies a manual delta and records the movement. Negative
// adjustments may not drive stock below zero.
func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductoNoEncontrado
	}
	nuevo := p.StockActual + req.Delta
	if nuevo < 0 {
		return nil, fmt.Errorf("el ajuste dejaría el stock en %d", nuevo)
	}

	anterior := p.StockActual
	if err := s.repo.AjustarStock(ctx, id, req.Delta); err != nil {
		return nil, err
	}

	_ = s.movRepo.Create(ctx, &model.MovimientoStock{
		ProductoID:    p.ID,
		Tipo:          "ajuste_manual",
		Cantidad:      req.Delta,
		StockAnterior: anterior,
		StockNuevo:    nuevo,
		Motivo:        req.Motivo,
	})

	p.StockActual = nuevo
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductoNoEncontrado
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductoNoEncontrado
	}
	return s.repo.Reactivar(ctx, id)
}

func (s *productoService) ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	repoFilter := repository.MovimientoStockFilter{
		Tipo:  filter.Tipo,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductoID != "" {
		pid, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		repoFilter.ProductoID = &pid
	}

	movimientos, total, err := s.movRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MovimientoStockResponse, 0, len(movimientos))
	for _, m := range movimientos {
		nombre := ""
		if m.Producto != nil {
			nombre = m.Producto.Nombre
		}
		items = append(items, dto.MovimientoStockResponse{
			ID:             m.ID.String(),
			ProductoID:     m.ProductoID.String(),
			ProductoNombre: nombre,
			Tipo:           m.Tipo,
			Cantidad:       m.Cantidad,
			StockAnterior:  m.StockAnterior,
			StockNuevo:     m.StockNuevo,
			Motivo:         m.Motivo,
			CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.MovimientoStockListResponse{
		Exito:       true,
		Movimientos: items,
		Pagination: dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	var categoriaID *string
	if p.CategoriaID != nil {
		s := p.CategoriaID.String()
		categoriaID = &s
	}
	return dto.ProductoResponse{
		ID:           p.ID.String(),
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioVenta:  p.PrecioVenta,
		PrecioCompra: p.PrecioCompra,
		MargenPct:    p.MargenPct,
		StockActual:  p.StockActual,
		StockMinimo:  p.StockMinimo,
		Ubicacion:    p.Ubicacion,
		PesoKg:       p.PesoKg,
		Dimensiones:  p.Dimensiones,
		CategoriaID:  categoriaID,
		Estado:       p.Estado(),
		Activo:       p.Activo,
	}
}
