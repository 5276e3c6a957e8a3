package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/storage/memory"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticQuotes struct{}

func (staticQuotes) Rate(_ context.Context, base, quote string) (decimal.Decimal, error) {
	if base == "BTC" && quote == "USD" {
		return decimal.RequireFromString("2.0"), nil
	}
	return decimal.Zero, domain.ErrPairUnsupported
}

type apiEnv struct {
	router *gin.Engine
	store  *memory.Store
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	store := memory.NewStore()
	wallets := memory.NewWalletRepo(store)
	balances := memory.NewBalanceRepo(store)
	currencies := memory.NewCurrencyRepo(store)
	transactor := memory.NewTransactor(store)
	identity := service.NewIdentityService(32, 16)
	fees := domain.FeeSchedule{
		WithdrawalRate: decimal.RequireFromString("0.01"),
		ConversionRate: decimal.RequireFromString("0.02"),
		TransferRate:   decimal.RequireFromString("0.01"),
	}

	router := handler.SetupRouter(handler.RouterDeps{
		WalletSvc: service.NewWalletService(wallets, balances, currencies, identity, transactor, log),
		LedgerSvc: service.NewLedgerService(
			wallets, balances, currencies, memory.NewMovementRepo(store),
			staticQuotes{}, identity, transactor, fees, time.Second, log,
		),
		HealthCheckers: []ports.HealthChecker{memory.NewHealthCheck()},
		AuditSvc: service.NewAuditService(memory.NewAuditRepo(store), log),
		Logger:   log,
	})
	return &apiEnv{router: router, store: store}
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (e *apiEnv) createWallet(t *testing.T) (address, secret string) {
	t.Helper()
	code, resp := e.do(t, http.MethodPost, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusCreated, code)
	data := resp["data"].(map[string]interface{})
	return data["address"].(string), data["secret"].(string)
}

func balanceOf(t *testing.T, e *apiEnv, address, currency string) string {
	t.Helper()
	code, resp := e.do(t, http.MethodGet, "/api/v1/wallets/"+address+"/balances", nil)
	require.Equal(t, http.StatusOK, code)
	for _, item := range resp["data"].([]interface{}) {
		b := item.(map[string]interface{})
		if b["currency_code"] == currency {
			return b["amount"].(string)
		}
	}
	t.Fatalf("currency %s missing", currency)
	return ""
}

func TestAPI_WalletLifecycle(t *testing.T) {
	api := newAPI(t)
	address, secret := api.createWallet(t)
	assert.Len(t, address, 32)
	assert.Len(t, secret, 64)

	code, resp := api.do(t, http.MethodGet, "/api/v1/wallets/"+address, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, resp["data"], "secret")

	code, resp = api.do(t, http.MethodGet, "/api/v1/wallets/"+address+"/balances", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(len(domain.DefaultCurrencies())), resp["count"])

	code, resp = api.do(t, http.MethodDelete, "/api/v1/wallets/"+address, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BLOCKED", resp["data"].(map[string]interface{})["status"])

	code, resp = api.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/deposits",
		map[string]string{"currency_code": "BTC", "amount": "1"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "WAL_001", resp["error_code"])
}

func TestAPI_DepositWithdrawTransferConvert(t *testing.T) {
	api := newAPI(t)
	w1, s1 := api.createWallet(t)
	w2, _ := api.createWallet(t)

	code, _ := api.do(t, http.MethodPost, "/api/v1/wallets/"+w1+"/deposits",
		map[string]string{"currency_code": "btc", "amount": "200"})
	require.Equal(t, http.StatusCreated, code)

	code, resp := api.do(t, http.MethodPost, "/api/v1/wallets/"+w1+"/withdrawals",
		map[string]string{"currency_code": "BTC", "amount": "10", "secret": s1})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "189.9", resp["data"].(map[string]interface{})["balance"])

	code, resp = api.do(t, http.MethodPost, "/api/v1/wallets/"+w1+"/transfers",
		map[string]string{"to_address": w2, "currency_code": "BTC", "amount": "50", "secret": s1})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "139.4", resp["data"].(map[string]interface{})["balance"])
	assert.Equal(t, "50", balanceOf(t, api, w2, "BTC"))

	code, resp = api.do(t, http.MethodPost, "/api/v1/wallets/"+w1+"/conversions",
		map[string]string{"from_currency_code": "BTC", "to_currency_code": "USD", "amount_from": "100", "secret": s1})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "196", resp["data"].(map[string]interface{})["amount_to"])
	assert.Equal(t, "39.4", balanceOf(t, api, w1, "BTC"))
	assert.Equal(t, "196", balanceOf(t, api, w1, "USD"))

	assert.Len(t, api.store.Movements(), 4)
}

func TestAPI_ErrorEnvelope(t *testing.T) {
	api := newAPI(t)
	w1, s1 := api.createWallet(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+w1+"/withdrawals",
		bytes.NewReader([]byte(`{"currency_code":"BTC","amount":"1","secret":"`+s1+`"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "trace-7")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAY_001", resp["error_code"])
	assert.Equal(t, "trace-7", resp["request_id"])
	assert.Equal(t, false, resp["retryable"])
	assert.Equal(t, "trace-7", w.Header().Get("X-Request-ID"))
}

func TestAPI_UnsupportedCurrency(t *testing.T) {
	api := newAPI(t)
	w1, _ := api.createWallet(t)

	code, resp := api.do(t, http.MethodPost, "/api/v1/wallets/"+w1+"/deposits",
		map[string]string{"currency_code": "DOGE", "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CUR_001", resp["error_code"])
}

func TestAPI_AuditTrail(t *testing.T) {
	api := newAPI(t)
	address, _ := api.createWallet(t)
	api.do(t, http.MethodPost, "/api/v1/wallets/"+address+"/deposits",
		map[string]string{"currency_code": "ETH", "amount": "3"})

	// audit entries are persisted asynchronously
	require.Eventually(t, func() bool {
		return len(api.store.AuditLogs()) == 2
	}, time.Second, 10*time.Millisecond)

	actions := map[domain.AuditAction]string{}
	for _, entry := range api.store.AuditLogs() {
		actions[entry.Action] = entry.ResourceID
	}
	assert.Equal(t, address, actions[domain.AuditActionWalletCreate])
	assert.Equal(t, address, actions[domain.AuditActionDeposit])
}

func TestAPI_CurrenciesAndHealth(t *testing.T) {
	api := newAPI(t)

	code, resp := api.do(t, http.MethodGet, "/api/v1/currencies", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), resp["count"])

	code, resp = api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp["status"])
}
