package tests

// helpers_test.go
// In-memory repository stubs shared by the service unit tests. Services run
// with a nil *gorm.DB, which makes runTx call the closure directly — no
// database required.

import (
	"context"
	"errors"
	"sync"
	"time"

	"vetpos/internal/dto"
	"vetpos/internal/model"
	"vetpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("record not found")

// ── CatalogRepository stub ───────────────────────────────────────────────────

type stubCatalogRepo struct {
	products map[uuid.UUID]*model.RetailProduct
	services map[uuid.UUID]*model.MedicalService
	plans    map[uuid.UUID]*model.VaccinationPlan
	vaccines map[uuid.UUID]*model.Vaccine
	stock    map[[2]uuid.UUID]int // (branch, product) → quantity
	// raceTake drains stock right before the decrement, simulating a
	// concurrent sale landing between the availability check and the write.
	raceTake int
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products: make(map[uuid.UUID]*model.RetailProduct),
		services: make(map[uuid.UUID]*model.MedicalService),
		plans:    make(map[uuid.UUID]*model.VaccinationPlan),
		vaccines: make(map[uuid.UUID]*model.Vaccine),
		stock:    make(map[[2]uuid.UUID]int),
	}
}

func (r *stubCatalogRepo) FindRetailProduct(_ context.Context, id uuid.UUID) (*model.RetailProduct, error) {
	p, ok := r.products[id]
	if !ok || !p.Active {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubCatalogRepo) FindMedicalService(_ context.Context, id uuid.UUID) (*model.MedicalService, error) {
	s, ok := r.services[id]
	if !ok || !s.Active {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubCatalogRepo) FindVaccinationPlan(_ context.Context, id uuid.UUID) (*model.VaccinationPlan, error) {
	p, ok := r.plans[id]
	if !ok || !p.Active {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubCatalogRepo) FindVaccine(_ context.Context, id uuid.UUID) (*model.Vaccine, error) {
	v, ok := r.vaccines[id]
	if !ok || !v.Active {
		return nil, errNotFound
	}
	return v, nil
}

func (r *stubCatalogRepo) FindStock(_ context.Context, branchID, productID uuid.UUID) (*model.BranchStock, error) {
	qty, ok := r.stock[[2]uuid.UUID{branchID, productID}]
	if !ok {
		return nil, errNotFound
	}
	return &model.BranchStock{BranchID: branchID, RetailProductID: productID, Quantity: qty}, nil
}

func (r *stubCatalogRepo) DecrementStockTx(_ *gorm.DB, branchID, productID uuid.UUID, qty int) error {
	key := [2]uuid.UUID{branchID, productID}
	if r.raceTake > 0 {
		r.stock[key] -= r.raceTake
		r.raceTake = 0
	}
	if r.stock[key] < qty {
		return gorm.ErrRecordNotFound
	}
	r.stock[key] -= qty
	return nil
}

var _ repository.CatalogRepository = (*stubCatalogRepo)(nil)

// ── CustomerRepository / RankRepository stubs ────────────────────────────────

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(c *model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return c
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubCustomerRepo) FindByIDWithPets(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *stubCustomerRepo) ListAll(_ context.Context) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCustomerRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubCustomerRepo) UpdateRankTx(_ *gorm.DB, id, rankID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return errNotFound
	}
	c.MembershipRankID = rankID
	return nil
}

func (r *stubCustomerRepo) AddLoyaltyPointsTx(_ *gorm.DB, id uuid.UUID, points int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return errNotFound
	}
	c.LoyaltyPoints += points
	return nil
}

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubRankRepo struct {
	ranks []model.MembershipRank
}

func (r *stubRankRepo) ListOrdered(_ context.Context) ([]model.MembershipRank, error) {
	return r.ranks, nil
}

func (r *stubRankRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MembershipRank, error) {
	for i := range r.ranks {
		if r.ranks[i].ID == id {
			return &r.ranks[i], nil
		}
	}
	return nil, errNotFound
}

var _ repository.RankRepository = (*stubRankRepo)(nil)

// threeRanks builds a Basic / Silver / Gold table with hysteresis:
// Silver upgrades at 10M but maintains at 8M; Gold at 50M / 40M.
func threeRanks() []model.MembershipRank {
	return []model.MembershipRank{
		{ID: uuid.New(), Name: "Basic", Level: 1,
			UpgradeCondition:  decimal.Zero,
			MaintainThreshold: decimal.Zero},
		{ID: uuid.New(), Name: "Silver", Level: 2,
			UpgradeCondition:  decimal.NewFromInt(10_000_000),
			MaintainThreshold: decimal.NewFromInt(8_000_000),
			DiscountPercent:   decimal.NewFromInt(5)},
		{ID: uuid.New(), Name: "Gold", Level: 3,
			UpgradeCondition:  decimal.NewFromInt(50_000_000),
			MaintainThreshold: decimal.NewFromInt(40_000_000),
			DiscountPercent:   decimal.NewFromInt(10)},
	}
}

// ── SpendingRepository stub ──────────────────────────────────────────────────

type spendKey struct {
	customer uuid.UUID
	year     int
}

type stubSpendingRepo struct {
	mu     sync.Mutex
	ledger map[spendKey]decimal.Decimal
	seeded map[spendKey]bool
}

func newStubSpendingRepo() *stubSpendingRepo {
	return &stubSpendingRepo{
		ledger: make(map[spendKey]decimal.Decimal),
		seeded: make(map[spendKey]bool),
	}
}

func (r *stubSpendingRepo) AddTx(_ *gorm.DB, customerID uuid.UUID, year int, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := spendKey{customerID, year}
	r.ledger[key] = r.ledger[key].Add(amount)
	return nil
}

func (r *stubSpendingRepo) GetSpend(_ context.Context, customerID uuid.UUID, year int) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger[spendKey{customerID, year}], nil
}

func (r *stubSpendingRepo) MapByYear(_ context.Context, year int) (map[uuid.UUID]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]decimal.Decimal)
	for key, amount := range r.ledger {
		if key.year == year {
			out[key.customer] = amount
		}
	}
	return out, nil
}

func (r *stubSpendingRepo) SeedYearTx(_ *gorm.DB, customerID uuid.UUID, year int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := spendKey{customerID, year}
	if _, ok := r.ledger[key]; !ok {
		r.ledger[key] = decimal.Zero
	}
	r.seeded[key] = true
	return nil
}

var _ repository.SpendingRepository = (*stubSpendingRepo)(nil)

// ── PetRepository stub ───────────────────────────────────────────────────────

type stubPetRepo struct {
	pets  map[uuid.UUID]*model.Pet
	plans []model.PetVaccinationPlan
}

func newStubPetRepo() *stubPetRepo {
	return &stubPetRepo{pets: make(map[uuid.UUID]*model.Pet)}
}

func (r *stubPetRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pet, error) {
	p, ok := r.pets[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubPetRepo) CreatePlanTx(_ *gorm.DB, p *model.PetVaccinationPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.plans = append(r.plans, *p)
	return nil
}

func (r *stubPetRepo) ListPlansByPet(_ context.Context, petID uuid.UUID) ([]model.PetVaccinationPlan, error) {
	var out []model.PetVaccinationPlan
	for _, p := range r.plans {
		if p.PetID == petID {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ repository.PetRepository = (*stubPetRepo)(nil)

// ── ReceiptRepository stub ───────────────────────────────────────────────────

type stubReceiptRepo struct {
	mu         sync.Mutex
	receipts   map[uuid.UUID]*model.Receipt
	items      map[uuid.UUID][]model.ReceiptItem
	nextNumber int
}

func newStubReceiptRepo() *stubReceiptRepo {
	return &stubReceiptRepo{
		receipts: make(map[uuid.UUID]*model.Receipt),
		items:    make(map[uuid.UUID][]model.ReceiptItem),
	}
}

func (r *stubReceiptRepo) Create(_ context.Context, _ *gorm.DB, rec *model.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cloned := *rec
	r.receipts[rec.ID] = &cloned
	return nil
}

func (r *stubReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receipts[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *rec
	cloned.Items = append([]model.ReceiptItem(nil), r.items[id]...)
	return &cloned, nil
}

func (r *stubReceiptRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receipts[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *rec
	return &cloned, nil
}

func (r *stubReceiptRepo) NextNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextNumber++
	return r.nextNumber, nil
}

func (r *stubReceiptRepo) CreateItemTx(_ *gorm.DB, item *model.ReceiptItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ReceiptID] = append(r.items[item.ReceiptID], *item)
	return nil
}

func (r *stubReceiptRepo) DeleteItemTx(_ *gorm.DB, receiptID uuid.UUID, itemNo int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[receiptID]
	for i, it := range items {
		if it.ItemNo == itemNo {
			r.items[receiptID] = append(items[:i], items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubReceiptRepo) UpdateItemQuantityTx(_ *gorm.DB, receiptID uuid.UUID, itemNo, quantity int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[receiptID]
	for i := range items {
		if items[i].ItemNo == itemNo {
			items[i].Quantity = quantity
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubReceiptRepo) NextItemNoTx(_ *gorm.DB, receiptID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, it := range r.items[receiptID] {
		if it.ItemNo > max {
			max = it.ItemNo
		}
	}
	return max + 1, nil
}

func (r *stubReceiptRepo) SumItemsTx(_ *gorm.DB, receiptID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, it := range r.items[receiptID] {
		total = total.Add(it.Subtotal())
	}
	return total, nil
}

func (r *stubReceiptRepo) SetTotalTx(_ *gorm.DB, receiptID uuid.UUID, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receipts[receiptID]
	if !ok {
		return errNotFound
	}
	rec.TotalPrice = total
	return nil
}

func (r *stubReceiptRepo) SetStatusTx(_ *gorm.DB, receiptID uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.receipts[receiptID]
	if !ok {
		return errNotFound
	}
	rec.Status = status
	return nil
}

func (r *stubReceiptRepo) List(_ context.Context, filter dto.ReceiptFilter) ([]model.Receipt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Receipt
	for id, rec := range r.receipts {
		if filter.Status != "" && filter.Status != "all" && rec.Status != filter.Status {
			continue
		}
		cloned := *rec
		cloned.Items = append([]model.ReceiptItem(nil), r.items[id]...)
		out = append(out, cloned)
	}
	return out, int64(len(out)), nil
}

func (r *stubReceiptRepo) DB() *gorm.DB { return nil }

var _ repository.ReceiptRepository = (*stubReceiptRepo)(nil)
