package transactions

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"folio-backend/internal/application/ledger"
	"folio-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type txTestEnv struct {
	app        *fiber.App
	db         *gorm.DB
	user       domain.User
	portfolio  domain.Portfolio
	asset      domain.Asset
	platform   domain.Platform
}

func setupTxTest(t *testing.T) *txTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Platform{}, &domain.Asset{}, &domain.Portfolio{},
		&domain.Transaction{}, &domain.Holding{}, &domain.CashBalance{},
		&domain.DividendPayment{}, &domain.StockSplit{},
	))

	env := &txTestEnv{db: db}
	env.user = domain.User{AuthUID: "uid-1", Email: "a@b.com"}
	require.NoError(t, db.Create(&env.user).Error)
	env.platform = domain.Platform{Name: "Broker"}
	require.NoError(t, db.Create(&env.platform).Error)
	env.asset = domain.Asset{Symbol: "AAPL", Name: "Apple Inc"}
	require.NoError(t, db.Create(&env.asset).Error)
	env.portfolio = domain.Portfolio{UserID: env.user.ID, Name: "Main", BaseCurrency: "USD"}
	require.NoError(t, db.Create(&env.portfolio).Error)

	h := &Handlers{Service: &ledger.Service{DB: db}}
	env.app = newTxApp(h, &env.user)
	return env
}

func newTxApp(h *Handlers, user *domain.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})
	app.Post("/api/v1/transactions", h.Create)
	app.Post("/api/v1/transactions/cash", h.CreateCash)
	app.Post("/api/v1/transactions/asset", h.CreateAsset)
	app.Post("/api/v1/transactions/bulk", h.CreateBulk)
	app.Get("/api/v1/transactions/portfolio/:portfolioId", h.History)
	app.Put("/api/v1/transactions/:id", h.Update)
	app.Delete("/api/v1/transactions/:id", h.Delete)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, map[string]interface{}) {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	_ = json.Unmarshal(raw, &parsed)
	return resp.StatusCode, parsed
}

func (e *txTestEnv) buyPayload() map[string]interface{} {
	return map[string]interface{}{
		"portfolio_id":   e.portfolio.ID.String(),
		"asset_id":       e.asset.ID.String(),
		"platform_id":    e.platform.ID.String(),
		"kind":           "buy",
		"quantity":       10,
		"price_per_unit": 150,
		"total_amount":   1500,
		"fee_amount":     5,
		"currency":       "USD",
	}
}

func TestCreateTransaction_Buy(t *testing.T) {
	env := setupTxTest(t)

	status, body := postJSON(t, env.app, "/api/v1/transactions", env.buyPayload())
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "success", body["status"])

	var holding domain.Holding
	require.NoError(t, env.db.First(&holding).Error)
	assert.Equal(t, "10", holding.Quantity.String())
	assert.Equal(t, "1505", holding.TotalCostBasis.String())
}

func TestCreateTransaction_InvalidKind(t *testing.T) {
	env := setupTxTest(t)

	payload := env.buyPayload()
	payload["kind"] = "staking"
	status, _ := postJSON(t, env.app, "/api/v1/transactions", payload)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateTransaction_MissingPortfolio(t *testing.T) {
	env := setupTxTest(t)

	payload := env.buyPayload()
	delete(payload, "portfolio_id")
	status, _ := postJSON(t, env.app, "/api/v1/transactions", payload)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateTransaction_BadUUID(t *testing.T) {
	env := setupTxTest(t)

	payload := env.buyPayload()
	payload["asset_id"] = "not-a-uuid"
	status, _ := postJSON(t, env.app, "/api/v1/transactions", payload)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateTransaction_StringAmounts(t *testing.T) {
	env := setupTxTest(t)

	payload := env.buyPayload()
	payload["quantity"] = "2.5"
	payload["total_amount"] = "375.125"
	payload["price_per_unit"] = "150.05"
	payload["fee_amount"] = "0"
	status, _ := postJSON(t, env.app, "/api/v1/transactions", payload)
	assert.Equal(t, fiber.StatusCreated, status)

	var holding domain.Holding
	require.NoError(t, env.db.First(&holding).Error)
	assert.Equal(t, "2.5", holding.Quantity.String())
}

func TestCreateCashTransaction_IgnoresAsset(t *testing.T) {
	env := setupTxTest(t)

	payload := map[string]interface{}{
		"portfolio_id": env.portfolio.ID.String(),
		"asset_id":     env.asset.ID.String(),
		"platform_id":  env.platform.ID.String(),
		"kind":         "deposit",
		"total_amount": 1000,
		"currency":     "USD",
	}
	status, _ := postJSON(t, env.app, "/api/v1/transactions/cash", payload)
	assert.Equal(t, fiber.StatusCreated, status)

	var tx domain.Transaction
	require.NoError(t, env.db.First(&tx).Error)
	assert.Nil(t, tx.AssetID, "cash route must strip the asset reference")
}

func TestCreateAssetTransaction_RequiresAsset(t *testing.T) {
	env := setupTxTest(t)

	payload := map[string]interface{}{
		"portfolio_id": env.portfolio.ID.String(),
		"platform_id":  env.platform.ID.String(),
		"kind":         "buy",
		"quantity":     1,
		"total_amount": 100,
		"currency":     "USD",
	}
	status, _ := postJSON(t, env.app, "/api/v1/transactions/asset", payload)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateBulk_PartialFailure(t *testing.T) {
	env := setupTxTest(t)

	bad := env.buyPayload()
	bad["kind"] = "nonsense"
	payload := map[string]interface{}{
		"transactions": []map[string]interface{}{env.buyPayload(), bad, env.buyPayload()},
	}
	status, body := postJSON(t, env.app, "/api/v1/transactions/bulk", payload)
	assert.Equal(t, fiber.StatusOK, status)

	meta, ok := body["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, meta["processed"])
	assert.EqualValues(t, 1, meta["failed"])

	var count int64
	require.NoError(t, env.db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "valid entries commit despite the failed one")
}

func TestHistory_ReturnsEnrichedEntries(t *testing.T) {
	env := setupTxTest(t)

	status, _ := postJSON(t, env.app, "/api/v1/transactions", env.buyPayload())
	require.Equal(t, fiber.StatusCreated, status)

	req := httptest.NewRequest("GET", "/api/v1/transactions/portfolio/"+env.portfolio.ID.String(), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	entry := data[0].(map[string]interface{})
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, "Broker", entry["platform_name"])
}

func TestHistory_BadDateFilter(t *testing.T) {
	env := setupTxTest(t)

	req := httptest.NewRequest("GET", "/api/v1/transactions/portfolio/"+env.portfolio.ID.String()+"?start_date=yesterday", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateDelete_NotImplemented(t *testing.T) {
	env := setupTxTest(t)
	id := uuid.New().String()

	req := httptest.NewRequest("PUT", "/api/v1/transactions/"+id, bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/v1/transactions/"+id, nil)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}

func TestCreateTransaction_NoUser(t *testing.T) {
	env := setupTxTest(t)
	h := &Handlers{Service: &ledger.Service{DB: env.db}}
	app := newTxApp(h, nil)

	status, _ := postJSON(t, app, "/api/v1/transactions", env.buyPayload())
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
