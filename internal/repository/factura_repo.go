package repository

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NumeroFactura is the result of the sequential allocator. Degradado flags
// the epoch-millis fallback used when the MAX scan fails mid-transaction.
type NumeroFactura struct {
	Valor     string
	Degradado bool
}

var numeroSufijoRe = regexp.MustCompile(`^FAC-\d{8}-(\d{4})$`)

type FacturaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByNumero(ctx context.Context, numero string) (*model.Factura, error)
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	NextNumeroFactura(ctx context.Context, tx *gorm.DB) (NumeroFactura, error)

	// Used inside transactions — callers must pass the tx instance
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string, observaciones *string) error
	CreateAuditoriaTx(tx *gorm.DB, a *model.AuditoriaFactura) error

	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) DB() *gorm.DB { return r.db }

func (r *facturaRepo) Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error {
	return tx.WithContext(ctx).Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Detalles").First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) FindByNumero(ctx context.Context, numero string) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Detalles").Where("numero = ?", numero).First(&f).Error
	return &f, err
}

// NextNumeroFactura allocates the next FAC-YYYYMMDD-NNNN number for today.
// It must run on the caller's open transaction: the advisory lock is
// transaction-scoped (released at COMMIT/ROLLBACK), which is what serializes
// concurrent allocations for the same day without blocking other days.
func (r *facturaRepo) NextNumeroFactura(ctx context.Context, tx *gorm.DB) (NumeroFactura, error) {
	prefix := "FAC-" + time.Now().Format("20060102")

	if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return NumeroFactura{Valor: fmt.Sprintf("FAC-%d", time.Now().UnixMilli()), Degradado: true}, nil
	}

	var max *string
	err := tx.WithContext(ctx).
		Raw("SELECT MAX(numero) FROM facturas WHERE numero LIKE ?", prefix+"-%").
		Scan(&max).Error
	if err != nil {
		// Degraded but unique: timestamp-based fallback keeps the sale flowing.
		return NumeroFactura{Valor: fmt.Sprintf("FAC-%d", time.Now().UnixMilli()), Degradado: true}, nil
	}

	return NumeroFactura{Valor: siguienteNumero(prefix, max)}, nil
}

// siguienteNumero increments the NNNN suffix of the highest number seen for
// the day. An unparseable suffix (e.g. a degraded epoch number that sorted
// last) restarts the counter; the unique index on numero still rejects any
// real collision.
func siguienteNumero(prefix string, max *string) string {
	next := 1
	if max != nil {
		if m := numeroSufijoRe.FindStringSubmatch(*max); m != nil {
			n, _ := strconv.Atoi(m[1])
			next = n + 1
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, next)
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	var facturas []model.Factura
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Factura{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Cliente != "" {
		like := "%" + filter.Cliente + "%"
		q = q.Where("cliente_nombre ILIKE ? OR cliente_documento ILIKE ?", like, like)
	}
	if filter.Numero != "" {
		q = q.Where("numero LIKE ?", filter.Numero+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&facturas).Error

	return facturas, total, err
}

// UpdateEstadoTx flips estado only when the row is not already in the target
// estado. Zero rows affected reports a lost race (or a missing row) as
// gorm.ErrRecordNotFound so the caller aborts before touching stock.
func (r *facturaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string, observaciones *string) error {
	updates := map[string]interface{}{"estado": estado}
	if observaciones != nil {
		updates["observaciones"] = *observaciones
	}
	res := tx.Model(&model.Factura{}).Where("id = ? AND estado <> ?", id, estado).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *facturaRepo) CreateAuditoriaTx(tx *gorm.DB, a *model.AuditoriaFactura) error {
	return tx.Create(a).Error
}

func (r *facturaRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Factura{}).Where("id = ?", id).
		Update("pdf_path", path).Error
}
