package infra

import (
	"fmt"

	"restopos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the idempotent SQL patches that GORM cannot express (partial
// unique indexes).
//
// TranslateError is on so that unique violations surface as
// gorm.ErrDuplicatedKey — the cash repository relies on it to turn the
// open-session index violation into a conflict.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates all tables and applies schema patches.
// Exposed separately so integration tests can migrate their own database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Establishment{},
		&model.DiningTable{},
		&model.CashRegister{},
		&model.CashSession{},
		&model.CashTransaction{},
		&model.CashCount{},
		&model.CashTransfer{},
		&model.Category{},
		&model.Product{},
		&model.Ingredient{},
		&model.StockMovement{},
		&model.AuditEntry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The partial unique index is what actually enforces the single-open-session
// invariant: the application pre-check alone is a check-then-act race.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"unique open session per register", `
CREATE UNIQUE INDEX IF NOT EXISTS uniq_cash_sessions_open
    ON cash_sessions (cash_register_id)
    WHERE status = 'OPEN'`},
		{"unique active register number per establishment", `
CREATE UNIQUE INDEX IF NOT EXISTS uniq_cash_registers_active_number
    ON cash_registers (establishment_id, number)
    WHERE is_active`},
		{"one count row per denomination per session", `
CREATE UNIQUE INDEX IF NOT EXISTS uniq_cash_counts_denomination
    ON cash_counts (cash_session_id, denomination)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
