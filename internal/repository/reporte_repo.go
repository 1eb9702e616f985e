package repository

import (
	"context"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReporteRepository runs the raw aggregation queries behind the reporting
// endpoints. Annulled invoices are excluded from every sales aggregate.
type ReporteRepository interface {
	VentasPorDia(ctx context.Context, desde, hasta string) ([]dto.VentaDiaria, error)
	VentasPorMetodo(ctx context.Context, desde, hasta string) ([]dto.VentaPorMetodo, error)
	ValorInventario(ctx context.Context) (decimal.Decimal, int64, error)
	ProductosBajoStock(ctx context.Context) ([]model.Producto, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) VentasPorDia(ctx context.Context, desde, hasta string) ([]dto.VentaDiaria, error) {
	var rows []dto.VentaDiaria
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at)::text          AS fecha,
		       COUNT(*)                        AS cantidad,
		       COALESCE(SUM(subtotal), 0)      AS subtotal,
		       COALESCE(SUM(impuesto), 0)      AS impuesto,
		       COALESCE(SUM(total), 0)         AS total
		  FROM facturas
		 WHERE estado = ?
		   AND DATE(created_at) BETWEEN ? AND ?
		 GROUP BY DATE(created_at)
		 ORDER BY fecha ASC`,
		model.FacturaActiva, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) VentasPorMetodo(ctx context.Context, desde, hasta string) ([]dto.VentaPorMetodo, error) {
	var rows []dto.VentaPorMetodo
	err := r.db.WithContext(ctx).Raw(`
		SELECT metodo_pago             AS metodo_pago,
		       COUNT(*)                AS cantidad,
		       COALESCE(SUM(total), 0) AS total
		  FROM facturas
		 WHERE estado = ?
		   AND DATE(created_at) BETWEEN ? AND ?
		 GROUP BY metodo_pago
		 ORDER BY total DESC`,
		model.FacturaActiva, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) ValorInventario(ctx context.Context) (decimal.Decimal, int64, error) {
	var row struct {
		Valor decimal.Decimal
		Total int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(stock_actual * precio_venta), 0) AS valor,
		       COUNT(*)                                      AS total
		  FROM productos
		 WHERE activo = true`).Scan(&row).Error
	return row.Valor, row.Total, err
}

func (r *reporteRepo) ProductosBajoStock(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock_actual <= stock_minimo").
		Order("stock_actual ASC").
		Find(&productos).Error
	return productos, err
}
