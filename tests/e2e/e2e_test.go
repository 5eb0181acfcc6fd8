//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - Full receipt cycle (login → draft → items → complete → spending ledger)
//   - Completed receipts are immutable
//   - One-shot retail purchase with stock decrement + insufficient stock
//   - Vaccination plan purchase with membership discount
//   - Yearly membership review via the admin endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vetpos/internal/config"
	"vetpos/internal/infra"
	"vetpos/internal/model"
	"vetpos/internal/router"
	"vetpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	token  string // director JWT

	branchID uuid.UUID
	basicID  uuid.UUID
	silverID uuid.UUID
	goldID   uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("vetpos_test"),
		tcPostgres.WithUsername("vetpos"),
		tcPostgres.WithPassword("vetpos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		ReviewWorkerCount:  2,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	env := &testEnv{db: db}
	seed(t, env)

	r := router.New(cfg, db, rdb, worker.NewDispatcher(rdb))
	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)

	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "director@e2e.test", "password": "vetpos2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)
	env.token = loginBody.AccessToken

	return env
}

// seed installs the rank table, one branch and a director who can hit every
// endpoint under test.
func seed(t *testing.T, env *testEnv) {
	t.Helper()
	db := env.db

	ranks := []model.MembershipRank{
		{Name: "Basic", Level: 1,
			UpgradeCondition:  decimal.Zero,
			MaintainThreshold: decimal.Zero,
			DiscountPercent:   decimal.Zero},
		{Name: "Silver", Level: 2,
			UpgradeCondition:  decimal.NewFromInt(10_000_000),
			MaintainThreshold: decimal.NewFromInt(8_000_000),
			DiscountPercent:   decimal.NewFromInt(5)},
		{Name: "Gold", Level: 3,
			UpgradeCondition:  decimal.NewFromInt(50_000_000),
			MaintainThreshold: decimal.NewFromInt(40_000_000),
			DiscountPercent:   decimal.NewFromInt(10)},
	}
	for i := range ranks {
		require.NoError(t, db.Create(&ranks[i]).Error)
	}
	env.basicID, env.silverID, env.goldID = ranks[0].ID, ranks[1].ID, ranks[2].ID

	branch := model.Branch{Name: "E2E Clinic"}
	require.NoError(t, db.Create(&branch).Error)
	env.branchID = branch.ID

	hash, err := bcrypt.GenerateFromPassword([]byte("vetpos2026"), bcrypt.MinCost)
	require.NoError(t, err)
	director := model.Employee{
		Username:     "director@e2e.test",
		Name:         "E2E Director",
		PasswordHash: string(hash),
		Role:         "director",
		BranchID:     &branch.ID,
		Active:       true,
	}
	require.NoError(t, db.Create(&director).Error)
}

func (env *testEnv) seedCustomer(t *testing.T, name string, rankID uuid.UUID) uuid.UUID {
	t.Helper()
	c := model.Customer{Name: name, MembershipRankID: rankID}
	require.NoError(t, env.db.Create(&c).Error)
	return c.ID
}

func (env *testEnv) seedPet(t *testing.T, customerID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	p := model.Pet{CustomerID: customerID, Name: name, Species: "dog"}
	require.NoError(t, env.db.Create(&p).Error)
	return p.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullReceiptCycle(t *testing.T) {
	env := setupTestEnv(t)
	customerID := env.seedCustomer(t, "Ana E2E", env.basicID)

	food := model.RetailProduct{Name: "Dog food 5kg", Price: decimal.NewFromInt(250_000), Active: true}
	require.NoError(t, env.db.Create(&food).Error)
	checkup := model.MedicalService{Name: "Annual checkup", Price: decimal.NewFromInt(400_000), Active: true}
	require.NoError(t, env.db.Create(&checkup).Error)

	// 1. Open a draft.
	draftResp := do(t, env.server, "POST", "/v1/receipts",
		jsonBody(t, map[string]any{"customer_id": customerID.String(), "payment_method": "cash"}),
		env.token)
	require.Equal(t, http.StatusCreated, draftResp.StatusCode)
	var draft struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Status string `json:"status"`
	}
	decodeJSON(t, draftResp, &draft)
	assert.Equal(t, "draft", draft.Status)
	assert.Equal(t, 1, draft.Number)

	// 2. Add two line items.
	addResp := do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/items",
		jsonBody(t, map[string]any{
			"item":     map[string]string{"kind": "retail_product", "id": food.ID.String()},
			"quantity": 2,
		}), env.token)
	require.Equal(t, http.StatusCreated, addResp.StatusCode)
	var added struct {
		ItemNo int `json:"item_no"`
	}
	decodeJSON(t, addResp, &added)
	assert.Equal(t, 1, added.ItemNo)

	addResp = do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/items",
		jsonBody(t, map[string]any{
			"item": map[string]string{"kind": "medical_service", "id": checkup.ID.String()},
		}), env.token)
	require.Equal(t, http.StatusCreated, addResp.StatusCode)

	// 3. Complete: 2 × 250,000 + 400,000 = 900,000.
	completeResp := do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/complete", nil, env.token)
	require.Equal(t, http.StatusOK, completeResp.StatusCode)
	var done struct {
		Status     string `json:"status"`
		TotalPrice string `json:"total_price"`
	}
	decodeJSON(t, completeResp, &done)
	assert.Equal(t, "completed", done.Status)
	total, err := decimal.NewFromString(done.TotalPrice)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(900_000)))

	// 4. The spending ledger saw the completed total.
	spendResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/customers/%s/spending?year=%d", customerID, time.Now().Year()),
		nil, env.token)
	require.Equal(t, http.StatusOK, spendResp.StatusCode)
	var spending struct {
		MoneySpent string `json:"money_spent"`
	}
	decodeJSON(t, spendResp, &spending)
	spent, err := decimal.NewFromString(spending.MoneySpent)
	require.NoError(t, err)
	assert.True(t, spent.Equal(decimal.NewFromInt(900_000)))
}

func TestE2E_CompletedReceiptIsImmutable(t *testing.T) {
	env := setupTestEnv(t)
	customerID := env.seedCustomer(t, "Ana E2E", env.basicID)

	food := model.RetailProduct{Name: "Cat litter", Price: decimal.NewFromInt(90_000), Active: true}
	require.NoError(t, env.db.Create(&food).Error)

	draftResp := do(t, env.server, "POST", "/v1/receipts",
		jsonBody(t, map[string]any{"customer_id": customerID.String(), "payment_method": "card"}),
		env.token)
	require.Equal(t, http.StatusCreated, draftResp.StatusCode)
	var draft struct {
		ID string `json:"id"`
	}
	decodeJSON(t, draftResp, &draft)

	addResp := do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/items",
		jsonBody(t, map[string]any{
			"item":     map[string]string{"kind": "retail_product", "id": food.ID.String()},
			"quantity": 1,
		}), env.token)
	require.Equal(t, http.StatusCreated, addResp.StatusCode)

	completeResp := do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/complete", nil, env.token)
	require.Equal(t, http.StatusOK, completeResp.StatusCode)
	completeResp.Body.Close()

	// Second complete and any further mutation are rejected with 409.
	again := do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/complete", nil, env.token)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	again.Body.Close()

	addAgain := do(t, env.server, "POST", "/v1/receipts/"+draft.ID+"/items",
		jsonBody(t, map[string]any{
			"item":     map[string]string{"kind": "retail_product", "id": food.ID.String()},
			"quantity": 1,
		}), env.token)
	assert.Equal(t, http.StatusConflict, addAgain.StatusCode)
	addAgain.Body.Close()

	removeResp := do(t, env.server, "DELETE", "/v1/receipts/"+draft.ID+"/items/1", nil, env.token)
	assert.Equal(t, http.StatusConflict, removeResp.StatusCode)
	removeResp.Body.Close()
}

func TestE2E_RetailPurchaseDecrementsStock(t *testing.T) {
	env := setupTestEnv(t)
	customerID := env.seedCustomer(t, "Luis E2E", env.basicID)

	food := model.RetailProduct{Name: "Dog food 5kg", Price: decimal.NewFromInt(250_000), Active: true}
	require.NoError(t, env.db.Create(&food).Error)
	require.NoError(t, env.db.Create(&model.BranchStock{
		BranchID: env.branchID, RetailProductID: food.ID, Quantity: 5,
	}).Error)

	resp := do(t, env.server, "POST", "/v1/purchases/retail",
		jsonBody(t, map[string]any{
			"product_id":     food.ID.String(),
			"quantity":       3,
			"customer_id":    customerID.String(),
			"payment_method": "cash",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec struct {
		Status     string `json:"status"`
		TotalPrice string `json:"total_price"`
	}
	decodeJSON(t, resp, &rec)
	assert.Equal(t, "completed", rec.Status)

	var stock model.BranchStock
	require.NoError(t, env.db.Where("branch_id = ? AND retail_product_id = ?", env.branchID, food.ID).
		First(&stock).Error)
	assert.Equal(t, 2, stock.Quantity)

	// Remaining stock is 2, a 3-unit purchase must bounce with 400.
	over := do(t, env.server, "POST", "/v1/purchases/retail",
		jsonBody(t, map[string]any{
			"product_id":     food.ID.String(),
			"quantity":       3,
			"customer_id":    customerID.String(),
			"payment_method": "cash",
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, over.StatusCode)
	over.Body.Close()
}

func TestE2E_VaccinationPlanPurchaseAppliesDiscount(t *testing.T) {
	env := setupTestEnv(t)
	customerID := env.seedCustomer(t, "Eva E2E", env.silverID) // 5% plan discount
	petID := env.seedPet(t, customerID, "Rex")

	plan := model.VaccinationPlan{Name: "Puppy starter", Price: decimal.NewFromInt(2_000_000), Active: true}
	require.NoError(t, env.db.Create(&plan).Error)

	resp := do(t, env.server, "POST", "/v1/purchases/vaccination-plans",
		jsonBody(t, map[string]any{
			"plan_id":        plan.ID.String(),
			"pet_id":         petID.String(),
			"customer_id":    customerID.String(),
			"payment_method": "transfer",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec struct {
		Status     string `json:"status"`
		TotalPrice string `json:"total_price"`
	}
	decodeJSON(t, resp, &rec)
	assert.Equal(t, "completed", rec.Status)
	total, err := decimal.NewFromString(rec.TotalPrice)
	require.NoError(t, err)
	// 2,000,000 × 0.95 = 1,900,000.
	assert.True(t, total.Equal(decimal.NewFromInt(1_900_000)), "got %s", total)

	var enrolled int64
	require.NoError(t, env.db.Model(&model.PetVaccinationPlan{}).
		Where("pet_id = ?", petID).Count(&enrolled).Error)
	assert.Equal(t, int64(1), enrolled)
}

func TestE2E_YearlyReviewUpgradesAndSeedsNextYear(t *testing.T) {
	env := setupTestEnv(t)
	year := 2025

	climber := env.seedCustomer(t, "Climber E2E", env.basicID)
	require.NoError(t, env.db.Create(&model.CustomerSpending{
		CustomerID: climber, Year: year, MoneySpent: decimal.NewFromInt(60_000_000),
	}).Error)
	quiet := env.seedCustomer(t, "Quiet E2E", env.silverID) // no ledger row: drops

	resp := do(t, env.server, "POST", fmt.Sprintf("/v1/admin/reviews/%d/run", year), nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	type row struct {
		CustomerName string `json:"customer_name"`
	}
	var result struct {
		Upgrades   []row `json:"upgrades"`
		Downgrades []row `json:"downgrades"`
		Summary    struct {
			TotalCustomers int `json:"total_customers"`
			TotalFailures  int `json:"total_failures"`
		} `json:"summary"`
	}
	decodeJSON(t, resp, &result)
	require.Len(t, result.Upgrades, 1)
	require.Len(t, result.Downgrades, 1)
	assert.Equal(t, 2, result.Summary.TotalCustomers)
	assert.Equal(t, 0, result.Summary.TotalFailures)

	var upgraded model.Customer
	require.NoError(t, env.db.First(&upgraded, "id = ?", climber).Error)
	assert.Equal(t, env.goldID, upgraded.MembershipRankID)

	var dropped model.Customer
	require.NoError(t, env.db.First(&dropped, "id = ?", quiet).Error)
	assert.Equal(t, env.basicID, dropped.MembershipRankID)

	// Next year's ledger rows were seeded with explicit zeros.
	var seeded int64
	require.NoError(t, env.db.Model(&model.CustomerSpending{}).
		Where("year = ?", year+1).Count(&seeded).Error)
	assert.Equal(t, int64(2), seeded)
}
