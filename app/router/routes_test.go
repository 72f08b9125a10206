package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/app/handlers"
	"github.com/amirphl/carrier-pos/app/middleware"
	"github.com/amirphl/carrier-pos/app/services"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/amirphl/carrier-pos/checkin"
	"github.com/amirphl/carrier-pos/config"
	"github.com/amirphl/carrier-pos/events"
	"github.com/amirphl/carrier-pos/queue"
	"github.com/amirphl/carrier-pos/repository"
	testingutil "github.com/amirphl/carrier-pos/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testOperator = "store-operator"
	testPassword = "counter-password"
)

func testConfig(authEnabled bool) *config.ProductionConfig {
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			BodyLimit:    1024 * 1024,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:  []string{"*"},
			AllowedMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Terminal-ID"},
			GlobalRateLimit: 1000,
			AuthRateLimit:   100,
			RateLimitWindow: time.Minute,
		},
		JWT: config.JWTConfig{
			SecretKey:       "router-test-secret-key-with-32-characters",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
			Issuer:          "carrier-pos",
			Audience:        "carrier-pos-terminals",
		},
		Operator: config.OperatorConfig{
			AuthEnabled:  authEnabled,
			Username:     testOperator,
			PasswordHash: string(hash),
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Queue:   config.QueueConfig{CheckInDebounce: time.Millisecond, SubscriberBuffer: 16},
	}
}

// newTestApp wires the full application over testDB the way main does
func newTestApp(t *testing.T, testDB *testingutil.TestDB, cfg *config.ProductionConfig) *fiber.App {
	t.Helper()

	customers := repository.NewCustomerRepository(testDB.Store)
	lines := repository.NewLineRepository(testDB.Store)
	devices := repository.NewDeviceRepository(testDB.Store)
	shop := repository.NewDeviceForSaleRepository(testDB.Store)

	tokenService, err := services.NewTokenService(cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer, cfg.JWT.Audience, false, "", "", cfg.JWT.SecretKey)
	require.NoError(t, err)

	accountFlow := businessflow.NewAccountFlow(customers, lines, devices)
	lineFlow := businessflow.NewLineFlow(testDB.Store, customers, lines, devices, accountFlow)
	inventoryFlow := businessflow.NewInventoryFlow(devices, lines, shop)
	catalogFlow := businessflow.NewCatalogFlow()

	bus := events.NewBus()
	manager := queue.NewManager(customers)
	searches := checkin.NewRegistry(handlers.NameLookup(accountFlow), cfg.Queue.CheckInDebounce)
	manager.OnReset(searches.ResetAll)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		manager.Run(ctx, bus, cfg.Queue.SubscriberBuffer)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		bus.Close()
	})

	queueFlow := businessflow.NewQueueFlow(manager, bus, accountFlow)

	r := NewFiberRouter(cfg, Handlers{
		Store:     handlers.NewStoreHandler(testDB.Store),
		Auth:      handlers.NewAuthHandler(businessflow.NewOperatorAuthFlow(cfg.Operator, tokenService)),
		CheckIn:   handlers.NewCheckInHandler(searches, queueFlow, catalogFlow),
		Queue:     handlers.NewQueueHandler(queueFlow),
		Account:   handlers.NewAccountHandler(accountFlow, lineFlow),
		Inventory: handlers.NewInventoryHandler(inventoryFlow),
		Catalog:   handlers.NewCatalogHandler(catalogFlow),
	}, middleware.NewAuthMiddleware(tokenService, cfg.Operator.AuthEnabled))
	r.SetupRoutes()
	return r.GetApp()
}

func withTestApp(t *testing.T, authEnabled bool, fn func(testDB *testingutil.TestDB, app *fiber.App)) {
	t.Helper()
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		_, err := testingutil.NewTestFixtures(testDB).CreateScenario()
		require.NoError(t, err)
		fn(testDB, newTestApp(t, testDB, testConfig(authEnabled)))
		return nil
	})
	require.NoError(t, err)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON || bytes.HasPrefix(raw, []byte("{")) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func TestHealthAndStore(t *testing.T) {
	withTestApp(t, false, func(testDB *testingutil.TestDB, app *fiber.App) {
		resp, env := doRequest(t, app, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(env.Data), `"store":"ready"`)

		resp, env = doRequest(t, app, http.MethodGet, "/api/v1/store/status", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"state":"ready"}`, string(env.Data))

		require.NoError(t, testDB.Store.Close())

		resp, env = doRequest(t, app, http.MethodGet, "/api/v1/accounts/1001", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "STORE_NOT_INITIALIZED", env.Error.Code)

		resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/store/initialize", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/accounts/1001", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAccountRoutes(t *testing.T) {
	withTestApp(t, false, func(testDB *testingutil.TestDB, app *fiber.App) {
		resp, env := doRequest(t, app, http.MethodGet, "/api/v1/customers/by-mdn/5551234567", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var account dto.AccountResponse
		require.NoError(t, json.Unmarshal(env.Data, &account))
		assert.Equal(t, testingutil.ScenarioName, account.Customer.Name)
		assert.Equal(t, 1, account.LineCount)

		resp, env = doRequest(t, app, http.MethodGet, "/api/v1/customers/by-mdn/5550000000", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CUSTOMER_NOT_FOUND", env.Error.Code)

		resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/accounts/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, env = doRequest(t, app, http.MethodPost, "/api/v1/accounts/1001/lines", map[string]any{
			"mdn": "(555) 123-4567",
		}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_MDN", env.Error.Code)

		resp, env = doRequest(t, app, http.MethodPost, "/api/v1/accounts/1001/lines", map[string]any{
			"mdn":  "555-765-4321",
			"imei": testingutil.ScenarioIMEIB,
		}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_IMEI", env.Error.Code)

		resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/accounts/1001/lines", map[string]any{
			"mdn":  "555-765-4321",
			"imei": testingutil.ScenarioIMEIA,
		}, nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		count, err := testDB.CountRows("lines")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestCheckInAndQueueRoutes(t *testing.T) {
	withTestApp(t, false, func(testDB *testingutil.TestDB, app *fiber.App) {
		resp, env := doRequest(t, app, http.MethodGet, "/api/v1/checkin/lookup?mdn=5551234567", nil,
			map[string]string{"X-Terminal-ID": "kiosk-1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var name dto.CustomerNameResponse
		require.NoError(t, json.Unmarshal(env.Data, &name))
		assert.True(t, name.Found)
		require.NotNil(t, name.Name)
		assert.Equal(t, testingutil.ScenarioName, *name.Name)

		resp, env = doRequest(t, app, http.MethodPost, "/api/v1/checkin", map[string]any{
			"mdn":    "555",
			"reason": "Pay a Bill",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

		resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/checkin", map[string]any{
			"mdn":    "(555) 123-4567",
			"reason": "Pay a Bill",
		}, nil)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		var list dto.QueueListResponse
		require.Eventually(t, func() bool {
			_, env := doRequest(t, app, http.MethodGet, "/api/v1/queue", nil, nil)
			return json.Unmarshal(env.Data, &list) == nil && list.Count == 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, testingutil.ScenarioName, list.Items[0].CustomerName)

		resp, env = doRequest(t, app, http.MethodPost, "/api/v1/queue/"+list.Items[0].ID+"/assist", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var assisted dto.AssistResponse
		require.NoError(t, json.Unmarshal(env.Data, &assisted))
		assert.Equal(t, testingutil.ScenarioAccount, assisted.Account.Customer.AccountNumber)

		resp, env = doRequest(t, app, http.MethodDelete, "/api/v1/queue/"+list.Items[0].ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "QUEUE_ITEM_NOT_FOUND", env.Error.Code)
	})
}

func TestInventoryRoutes(t *testing.T) {
	withTestApp(t, false, func(testDB *testingutil.TestDB, app *fiber.App) {
		resp, env := doRequest(t, app, http.MethodGet, "/api/v1/inventory/imeis/available", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var available dto.AvailableIMEIsResponse
		require.NoError(t, json.Unmarshal(env.Data, &available))
		assert.ElementsMatch(t, []string{testingutil.ScenarioIMEIA, testingutil.ScenarioIMEIC}, available.IMEIs)

		resp, env = doRequest(t, app, http.MethodGet,
			"/api/v1/inventory/imeis/"+testingutil.ScenarioIMEIB+"/in-use?exclude_mdn="+testingutil.ScenarioMDN, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var usage dto.IMEIUsageResponse
		require.NoError(t, json.Unmarshal(env.Data, &usage))
		assert.False(t, usage.InUse)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/export", nil)
		exportResp, err := app.Test(req)
		require.NoError(t, err)
		defer exportResp.Body.Close()
		assert.Equal(t, http.StatusOK, exportResp.StatusCode)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", exportResp.Header.Get("Content-Type"))
		assert.Contains(t, exportResp.Header.Get("Content-Disposition"), businessflow.InventoryExportFilename)

		resp, env = doRequest(t, app, http.MethodGet, "/api/v1/shop/devices/999", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "DEVICE_FOR_SALE_NOT_FOUND", env.Error.Code)

		resp, env = doRequest(t, app, http.MethodGet, "/api/v1/catalog/plans/4567/quote?lines=0", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LINE_COUNT", env.Error.Code)
	})
}

func TestOperatorAuthentication(t *testing.T) {
	withTestApp(t, true, func(testDB *testingutil.TestDB, app *fiber.App) {
		resp, env := doRequest(t, app, http.MethodGet, "/api/v1/queue", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", env.Error.Code)

		// The check-in terminal stays public
		resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/checkin/reasons", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, env = doRequest(t, app, http.MethodPost, "/api/v1/auth/login", map[string]any{
			"username": testOperator,
			"password": "wrong",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

		resp, env = doRequest(t, app, http.MethodPost, "/api/v1/auth/login", map[string]any{
			"username": testOperator,
			"password": testPassword,
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var login dto.OperatorLoginResponse
		require.NoError(t, json.Unmarshal(env.Data, &login))

		bearer := map[string]string{"Authorization": "Bearer " + login.Session.AccessToken}
		resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/queue", nil, bearer)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		refresh := map[string]string{"Authorization": "Bearer " + login.Session.RefreshToken}
		resp, env = doRequest(t, app, http.MethodGet, "/api/v1/queue", nil, refresh)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "TOKEN_INVALID", env.Error.Code)
	})
}

func TestNotFound(t *testing.T) {
	withTestApp(t, false, func(testDB *testingutil.TestDB, app *fiber.App) {
		resp, env := doRequest(t, app, http.MethodGet, "/nowhere", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}
