package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/IngCuriel/MariamPos-sub000/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all ledger tables, then applies the idempotent SQL patches GORM cannot
// express (the partial unique index guarding open shifts, the sale number
// sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// shift service can map them to conflicts.
		TranslateError: true,
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

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Shift{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.ClientCredit{},
		&model.CreditPayment{},
		&model.InventoryMovement{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement is guarded so re-running on an already-patched schema is a
// no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one OPEN shift per (branch, register). This index IS the
		// atomic check-and-create: concurrent opens from different terminals
		// serialize here, and the loser gets a duplicate-key error.
		{"unique open shift per register", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_shifts_open_register') THEN
    CREATE UNIQUE INDEX uni_shifts_open_register
        ON shifts (branch, register)
        WHERE status = 'OPEN';
  END IF;
END $$`},
		// Atomic sale ticket numbering.
		{"sale number sequence",
			`CREATE SEQUENCE IF NOT EXISTS sales_number_seq START 1`},
		// Replay queries: events by owner in (created_at, id) order.
		{"cash movement replay index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_movements_replay') THEN
    CREATE INDEX idx_cash_movements_replay
        ON cash_movements (shift_id, created_at, id);
  END IF;
END $$`},
		{"inventory movement replay index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventory_movements_replay') THEN
    CREATE INDEX idx_inventory_movements_replay
        ON inventory_movements (product_id, created_at, id);
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
