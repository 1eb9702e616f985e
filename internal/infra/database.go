package infra

import (
	"fmt"

	"ferrepos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies idempotent SQL patches that
// GORM cannot express (check constraints, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema and applies the SQL patches.
// Also used by integration tests that point at a scratch database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Producto{},
		&model.Cliente{},
		&model.Empresa{},
		&model.Cargo{},
		&model.Empleado{},
		&model.Usuario{},
		&model.Factura{},
		&model.DetalleFactura{},
		&model.MovimientoStock{},
		&model.AuditoriaFactura{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate does not cover.
// Each statement uses IF NOT EXISTS / existence guards so re-running on an
// already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Stock can never go negative; the sale transaction also guards with
		// WHERE stock_actual >= cantidad, this is the backstop.
		{"check productos.stock_actual >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		{"check detalles_factura.cantidad > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_detalles_cantidad_positiva') THEN
    ALTER TABLE detalles_factura ADD CONSTRAINT chk_detalles_cantidad_positiva CHECK (cantidad > 0);
  END IF;
END $$`},
		// Partial index for the per-day number allocation scan:
		// MAX(numero) WHERE numero LIKE 'FAC-YYYYMMDD-%' hits this index.
		{"index facturas.numero by prefix", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_numero_activas') THEN
    CREATE INDEX idx_facturas_numero_activas
        ON facturas (numero text_pattern_ops)
        WHERE estado = 'activa';
  END IF;
END $$`},
		// Reporting query support: daily aggregates over facturas activas.
		{"index facturas by day", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_created_at_date') THEN
    CREATE INDEX idx_facturas_created_at_date ON facturas ((created_at::date));
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
