package tests

// loyalty_test.go
// Spending ledger accrual and the 1-point-per-1000 loyalty counter.

import (
	"context"
	"testing"

	"vetpos/internal/model"
	"vetpos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementTx_AccruesSpendAndFlooredPoints(t *testing.T) {
	customers := newStubCustomerRepo()
	spending := newStubSpendingRepo()
	loyalty := service.NewLoyaltyService(spending, customers)
	customer := customers.add(&model.Customer{Name: "Ana"})

	// 2,500,999 → floor(2,500,999 / 1,000) = 2,500 points.
	require.NoError(t, loyalty.IncrementTx(nil, customer.ID, 2026, decimal.NewFromInt(2_500_999)))

	spend, err := loyalty.GetSpend(context.Background(), customer.ID, 2026)
	require.NoError(t, err)
	assert.True(t, spend.Equal(decimal.NewFromInt(2_500_999)))

	stored, err := customers.FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), stored.LoyaltyPoints)
}

func TestIncrementTx_AccumulatesAcrossCalls(t *testing.T) {
	customers := newStubCustomerRepo()
	spending := newStubSpendingRepo()
	loyalty := service.NewLoyaltyService(spending, customers)
	customer := customers.add(&model.Customer{Name: "Ana"})

	require.NoError(t, loyalty.IncrementTx(nil, customer.ID, 2026, decimal.NewFromInt(1_500_000)))
	require.NoError(t, loyalty.IncrementTx(nil, customer.ID, 2026, decimal.NewFromInt(2_000_000)))

	spend, err := loyalty.GetSpend(context.Background(), customer.ID, 2026)
	require.NoError(t, err)
	assert.True(t, spend.Equal(decimal.NewFromInt(3_500_000)))

	stored, err := customers.FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), stored.LoyaltyPoints)
}

func TestIncrementTx_SubThousandAmountSkipsPoints(t *testing.T) {
	customers := newStubCustomerRepo()
	spending := newStubSpendingRepo()
	loyalty := service.NewLoyaltyService(spending, customers)
	customer := customers.add(&model.Customer{Name: "Ana"})

	// The spend still ledgers, but 999 < 1,000 yields zero points and the
	// customer row is never touched.
	require.NoError(t, loyalty.IncrementTx(nil, customer.ID, 2026, decimal.NewFromInt(999)))

	spend, err := loyalty.GetSpend(context.Background(), customer.ID, 2026)
	require.NoError(t, err)
	assert.True(t, spend.Equal(decimal.NewFromInt(999)))

	stored, err := customers.FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.LoyaltyPoints)
}

func TestIncrementTx_YearsAreIndependentLedgerRows(t *testing.T) {
	customers := newStubCustomerRepo()
	spending := newStubSpendingRepo()
	loyalty := service.NewLoyaltyService(spending, customers)
	customer := customers.add(&model.Customer{Name: "Ana"})

	require.NoError(t, loyalty.IncrementTx(nil, customer.ID, 2025, decimal.NewFromInt(5_000_000)))
	require.NoError(t, loyalty.IncrementTx(nil, customer.ID, 2026, decimal.NewFromInt(1_000_000)))

	prev, err := loyalty.GetSpend(context.Background(), customer.ID, 2025)
	require.NoError(t, err)
	curr, err := loyalty.GetSpend(context.Background(), customer.ID, 2026)
	require.NoError(t, err)
	assert.True(t, prev.Equal(decimal.NewFromInt(5_000_000)))
	assert.True(t, curr.Equal(decimal.NewFromInt(1_000_000)))
}

func TestGetSpend_MissingRowReadsZero(t *testing.T) {
	customers := newStubCustomerRepo()
	spending := newStubSpendingRepo()
	loyalty := service.NewLoyaltyService(spending, customers)
	customer := customers.add(&model.Customer{Name: "Ana"})

	spend, err := loyalty.GetSpend(context.Background(), customer.ID, 2026)
	require.NoError(t, err)
	assert.True(t, spend.IsZero())
}
