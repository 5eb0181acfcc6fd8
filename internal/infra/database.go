package infra

import (
	"fmt"

	"vetpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (sequences, partial indexes).
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

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Branch{},
		&model.Employee{},
		&model.MembershipRank{},
		&model.Customer{},
		&model.CustomerSpending{},
		&model.Pet{},
		&model.Vaccine{},
		&model.VaccinationPlan{},
		&model.PetVaccinationPlan{},
		&model.MedicalService{},
		&model.RetailProduct{},
		&model.BranchStock{},
		&model.Receipt{},
		&model.ReceiptItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Human-facing receipt numbers come from a dedicated sequence so they
		// survive receipt deletion and are monotonic across branches.
		`CREATE SEQUENCE IF NOT EXISTS receipts_number_seq START 1`,

		// The review reads one year of ledger rows at a time.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_customer_spendings_year') THEN
		    CREATE INDEX idx_customer_spendings_year ON customer_spendings (year);
		  END IF;
		END $$`,

		// Draft lookups by branch drive the open-receipts screen.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_receipts_branch_status') THEN
		    CREATE INDEX idx_receipts_branch_status ON receipts (branch_id, status);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
