package service

import (
	"context"

	"vetpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// loyaltyPointsUnit: one display-only loyalty point per 1,000 currency units
// of completed spend.
var loyaltyPointsUnit = decimal.NewFromInt(1000)

// LoyaltyService maintains the per-customer, per-year spending ledger and the
// lifetime loyalty points counter.
type LoyaltyService interface {
	// IncrementTx adds amount to the (customer, year) ledger row and accrues
	// loyalty points. Callers MUST pass the transaction that completes the
	// triggering receipt — a completed receipt with no matching ledger row
	// must never be observable.
	IncrementTx(tx *gorm.DB, customerID uuid.UUID, year int, amount decimal.Decimal) error

	// GetSpend returns the ledgered spend, 0 when no row exists.
	GetSpend(ctx context.Context, customerID uuid.UUID, year int) (decimal.Decimal, error)
}

type loyaltyService struct {
	spending  repository.SpendingRepository
	customers repository.CustomerRepository
}

func NewLoyaltyService(spending repository.SpendingRepository, customers repository.CustomerRepository) LoyaltyService {
	return &loyaltyService{spending: spending, customers: customers}
}

func (s *loyaltyService) IncrementTx(tx *gorm.DB, customerID uuid.UUID, year int, amount decimal.Decimal) error {
	if err := s.spending.AddTx(tx, customerID, year, amount); err != nil {
		return err
	}
	points := amount.Div(loyaltyPointsUnit).Floor().IntPart()
	if points == 0 {
		return nil
	}
	return s.customers.AddLoyaltyPointsTx(tx, customerID, points)
}

func (s *loyaltyService) GetSpend(ctx context.Context, customerID uuid.UUID, year int) (decimal.Decimal, error) {
	return s.spending.GetSpend(ctx, customerID, year)
}
