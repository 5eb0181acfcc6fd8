package repository

import (
	"context"
	"errors"

	"vetpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SpendingRepository is the persistence contract for the loyalty ledger.
// One row per (customer, year); rows are only ever created or incremented.
type SpendingRepository interface {
	// AddTx upserts: existing row gets money_spent += amount, otherwise a new
	// row is inserted with money_spent = amount. Must run inside the same
	// transaction that completes the triggering receipt.
	AddTx(tx *gorm.DB, customerID uuid.UUID, year int, amount decimal.Decimal) error

	// GetSpend returns 0 when no row exists — absence is not an error.
	GetSpend(ctx context.Context, customerID uuid.UUID, year int) (decimal.Decimal, error)

	// MapByYear loads the whole ledger for one year, keyed by customer.
	MapByYear(ctx context.Context, year int) (map[uuid.UUID]decimal.Decimal, error)

	// SeedYearTx inserts a zero row for (customer, year) if none exists yet.
	SeedYearTx(tx *gorm.DB, customerID uuid.UUID, year int) error
}

type spendingRepo struct{ db *gorm.DB }

func NewSpendingRepository(db *gorm.DB) SpendingRepository { return &spendingRepo{db: db} }

func (r *spendingRepo) AddTx(tx *gorm.DB, customerID uuid.UUID, year int, amount decimal.Decimal) error {
	row := model.CustomerSpending{CustomerID: customerID, Year: year, MoneySpent: amount}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"money_spent": gorm.Expr("customer_spendings.money_spent + ?", amount),
		}),
	}).Create(&row).Error
}

func (r *spendingRepo) GetSpend(ctx context.Context, customerID uuid.UUID, year int) (decimal.Decimal, error) {
	var row model.CustomerSpending
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND year = ?", customerID, year).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.MoneySpent, nil
}

func (r *spendingRepo) MapByYear(ctx context.Context, year int) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []model.CustomerSpending
	if err := r.db.WithContext(ctx).Where("year = ?", year).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.CustomerID] = row.MoneySpent
	}
	return out, nil
}

func (r *spendingRepo) SeedYearTx(tx *gorm.DB, customerID uuid.UUID, year int) error {
	row := model.CustomerSpending{CustomerID: customerID, Year: year, MoneySpent: decimal.Zero}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
