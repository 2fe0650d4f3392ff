package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cassiomorais/pixgateway/internal/infrastructure/config"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/providers"
	"github.com/cassiomorais/pixgateway/internal/service"
	"github.com/cassiomorais/pixgateway/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Helpers ---

// fakeUpstream is an httptest server that records every request it receives.
type fakeUpstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func newFakeUpstream(t *testing.T, status int, body string) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		f.bodies = append(f.bodies, string(data))
		f.mu.Unlock()

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) only(t *testing.T) (*http.Request, string) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.requests, 1)
	return f.requests[0], f.bodies[0]
}

func (f *fakeUpstream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type testEnv struct {
	router   http.Handler
	gateway  *fakeUpstream
	identity *fakeUpstream
	registry *prometheus.Registry
}

type envOption func(*config.GatewayConfig, *RouterDeps)

func withoutCredentials() envOption {
	return func(cfg *config.GatewayConfig, _ *RouterDeps) {
		cfg.SecretKey = ""
		cfg.CompanyID = ""
	}
}

func withRateLimit(n int) envOption {
	return func(_ *config.GatewayConfig, deps *RouterDeps) {
		deps.RateLimitPerMinute = n
	}
}

func newTestEnv(t *testing.T, gateway, identity *fakeUpstream, opts ...envOption) *testEnv {
	t.Helper()
	if gateway == nil {
		gateway = newFakeUpstream(t, http.StatusOK, `{}`)
	}
	if identity == nil {
		identity = newFakeUpstream(t, http.StatusOK, `{}`)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	breakers := providers.NewBreakers(5, time.Minute, metrics)
	client := providers.NewHTTPClient(5 * time.Second)

	gwCfg := config.GatewayConfig{BaseURL: gateway.URL + "/transactions", SecretKey: "sk_test", CompanyID: "company-1"}
	deps := RouterDeps{Logger: zerolog.Nop(), ServiceName: "test", Metrics: metrics, Gatherer: reg, Breakers: breakers}
	for _, o := range opts {
		o(&gwCfg, &deps)
	}

	deps.PixService = service.NewPixService(
		providers.NewAssetGateway(gwCfg, client, breakers, metrics),
		gwCfg,
		service.WithDigits(testutil.FixedDigits(4)),
		service.WithClock(func() time.Time { return testutil.FixedNow }),
		service.WithPixMetrics(metrics),
	)
	deps.IdentityService = service.NewIdentityService(
		providers.NewCPFLookup(config.IdentityConfig{BaseURL: identity.URL + "/api", Token: "tok en"}, client, breakers, metrics),
		metrics,
		zerolog.Nop(),
	)

	return &testEnv{router: NewRouter(deps), gateway: gateway, identity: identity, registry: reg}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET,POST,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

// --- Payment creation ---

func TestRouter_CreatePix(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusOK, `{"id":"tx1","pix":{"brcode":"000201X","qrcode":"data:image/png;base64,AAA"}}`)
	env := newTestEnv(t, gateway, nil)

	w := env.do(http.MethodPost, "/api/pix", `{"amount":10,"nome":"Ana"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertCORS(t, w)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	resp := decodeMap(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "000201X", resp["pix_code"])
	assert.Equal(t, "000201X", resp["brcode"])
	assert.Equal(t, "000201X", resp["payload"])
	assert.Equal(t, "000201X", resp["pixCode"])
	assert.Equal(t, "tx1", resp["transaction_id"])
	assert.Equal(t, "tx1", resp["deposit_id"])
	assert.Equal(t, "data:image/png;base64,AAA", resp["qrcode"])
	assert.Equal(t, float64(10), resp["amount"])
	assert.Nil(t, resp["key"])

	req, body := gateway.only(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/transactions", req.URL.Path)
	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "sk_test", user)
	assert.Equal(t, "company-1", pass)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &sent))
	assert.Equal(t, float64(1000), sent["amount"])
	assert.Equal(t, "PIX", sent["paymentMethod"])
	assert.Equal(t, "company-1", sent["companyId"])
	customer := sent["customer"].(map[string]any)
	assert.Equal(t, "Ana", customer["name"])
	metadata := sent["metadata"].(map[string]any)
	assert.Equal(t, map[string]any{"amount": float64(10), "nome": "Ana"}, metadata["original_body"])
}

func TestRouter_CreatePix_InvalidJSONUsesDefaults(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/.netlify/functions/pix", `{not json`)

	require.Equal(t, http.StatusOK, w.Code)
	_, body := env.gateway.only(t)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &sent))
	assert.Equal(t, float64(100), sent["amount"])
	assert.Equal(t, "Cliente 444444", sent["customer"].(map[string]any)["name"])
	assert.Equal(t, "Assinatura Digital pedido-444444", sent["description"])
}

func TestRouter_CreatePix_UpstreamError(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusBadRequest, `{"message":"invalid amount"}`)
	env := newTestEnv(t, gateway, nil)

	w := env.do(http.MethodPost, "/api/pix", `{"amount":"abc"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertCORS(t, w)
	assert.JSONEq(t, `{"success":false,"error":"{\"message\":\"invalid amount\"}"}`, w.Body.String())
}

func TestRouter_CreatePix_EmptyUpstreamErrorBody(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusInternalServerError, ``)
	env := newTestEnv(t, gateway, nil)

	w := env.do(http.MethodPost, "/api/pix", `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Erro ao criar PIX"}`, w.Body.String())
}

func TestRouter_CreatePix_NotConfigured(t *testing.T) {
	env := newTestEnv(t, nil, nil, withoutCredentials())

	w := env.do(http.MethodPost, "/api/pix", `{"amount":10}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"`+configErrorMessage+`"}`, w.Body.String())
	assert.Zero(t, env.gateway.count(), "no outbound call without credentials")
}

func TestRouter_CreatePix_GatewayUnreachable(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusOK, `{}`)
	env := newTestEnv(t, gateway, nil)
	gateway.Close()

	w := env.do(http.MethodPost, "/api/pix", `{}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Erro ao criar PIX"}`, w.Body.String())
}

// --- Status lookup ---

func TestRouter_CheckPayment_Get(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusOK, `{"status":"approved","amount":1000}`)
	env := newTestEnv(t, gateway, nil)

	w := env.do(http.MethodGet, "/api/check-payment?id=tx1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"tx1","status":"approved","paid":true,"raw":{"status":"approved","amount":1000}}`, w.Body.String())

	req, _ := gateway.only(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/transactions/tx1", req.URL.Path)
}

func TestRouter_CheckPayment_PostBodyOverridesQuery(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"id", `{"id":"from-body"}`, "/transactions/from-body"},
		{"paymentId", `{"paymentId":"pay-9"}`, "/transactions/pay-9"},
		{"numeric id", `{"id":12345}`, "/transactions/12345"},
		{"invalid JSON keeps query", `{oops`, "/transactions/from-query"},
		{"empty id keeps query", `{"id":""}`, "/transactions/from-query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, nil)

			w := env.do(http.MethodPost, "/api/check-payment?id=from-query", tt.body)

			require.Equal(t, http.StatusOK, w.Code)
			req, _ := env.gateway.only(t)
			assert.Equal(t, tt.want, req.URL.Path)
		})
	}
}

func TestRouter_CheckPayment_MissingID(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodGet, "/api/check-payment", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Informe o id"}`, w.Body.String())
	assert.Zero(t, env.gateway.count())
}

func TestRouter_CheckPayment_PendingByDefault(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusOK, `not json`)
	env := newTestEnv(t, gateway, nil)

	w := env.do(http.MethodGet, "/.netlify/functions/check-payment?id=tx2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"tx2","status":"pending","paid":false,"raw":{}}`, w.Body.String())
}

func TestRouter_CheckPayment_UpstreamError(t *testing.T) {
	gateway := newFakeUpstream(t, http.StatusNotFound, `Transaction not found`)
	env := newTestEnv(t, gateway, nil)

	w := env.do(http.MethodGet, "/api/check-payment?id=nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Transaction not found"}`, w.Body.String())
}

func TestRouter_CheckPayment_NotConfiguredBeforeMissingID(t *testing.T) {
	env := newTestEnv(t, nil, nil, withoutCredentials())

	w := env.do(http.MethodGet, "/api/check-payment", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ASSET_SECRET_KEY")
}

// --- Identity lookup ---

func TestRouter_Consulta(t *testing.T) {
	identity := newFakeUpstream(t, http.StatusOK, `{"DADOS":{"cpf":"12345678900","nome":"JOAO","nome_mae":"MARIA","data_nascimento":"1990-01-01","sexo":"M"}}`)
	env := newTestEnv(t, nil, identity)

	w := env.do(http.MethodGet, "/api/consulta?cpf=123.456.789-00", "")

	require.Equal(t, http.StatusOK, w.Code)
	assertCORS(t, w)
	assert.JSONEq(t, `{"DADOS":{"cpf":"12345678900","nome":"JOAO","nome_mae":"MARIA","data_nascimento":"1990-01-01","sexo":"M"}}`, w.Body.String())

	req, _ := identity.only(t)
	assert.Equal(t, "/api", req.URL.Path)
	assert.Equal(t, "tok en", req.URL.Query().Get("token"))
	assert.Equal(t, "cpf", req.URL.Query().Get("modulo"))
	assert.Equal(t, "12345678900", req.URL.Query().Get("consulta"))
}

func TestRouter_Consulta_MissingFieldsAreEmpty(t *testing.T) {
	identity := newFakeUpstream(t, http.StatusOK, `{"dados":{"nome":"Joao","cpf":"12345678900"}}`)
	env := newTestEnv(t, nil, identity)

	w := env.do(http.MethodGet, "/api/consulta?cpf=123.456.789-00", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"DADOS":{"cpf":"12345678900","nome":"Joao","nome_mae":"","data_nascimento":"","sexo":""}}`, w.Body.String())
}

func TestRouter_Consulta_AlternateShape(t *testing.T) {
	identity := newFakeUpstream(t, http.StatusOK, `{"dadosBasicos":{"documento":"98765432100","name":"ANA","mae":"RITA"}}`)
	env := newTestEnv(t, nil, identity)

	w := env.do(http.MethodGet, "/.netlify/functions/consulta?cpf=98765432100", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"DADOS":{"cpf":"98765432100","nome":"ANA","nome_mae":"RITA","data_nascimento":"","sexo":""}}`, w.Body.String())
}

func TestRouter_Consulta_MissingCPF(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for _, target := range []string{"/api/consulta", "/api/consulta?cpf=abc"} {
		w := env.do(http.MethodGet, target, "")

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.JSONEq(t, `{"status":400,"statusMsg":"Informe o CPF"}`, w.Body.String())
	}
	assert.Zero(t, env.identity.count())
}

func TestRouter_Consulta_UpstreamError(t *testing.T) {
	identity := newFakeUpstream(t, http.StatusForbidden, `Token invalido`)
	env := newTestEnv(t, nil, identity)

	w := env.do(http.MethodGet, "/api/consulta?cpf=12345678900", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"raw":"Token invalido"}`, w.Body.String())
}

// --- Cross-cutting ---

func TestRouter_PreflightAnyPath(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for _, target := range []string{"/api/pix", "/api/check-payment", "/.netlify/functions/consulta", "/nowhere"} {
		w := env.do(http.MethodOptions, target, "")

		assert.Equal(t, http.StatusNoContent, w.Code, target)
		assert.Empty(t, w.Body.String())
		assertCORS(t, w)
	}
	assert.Zero(t, env.gateway.count())
	assert.Zero(t, env.identity.count())
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", "").Code)

	w := env.do(http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestRouter_ReadinessWithoutCredentials(t *testing.T) {
	env := newTestEnv(t, nil, nil, withoutCredentials())

	w := env.do(http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not ready", decodeMap(t, w)["status"])
}

func TestRouter_ReadinessWithOpenGatewayCircuit(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.gateway.Close()

	for i := 0; i < 5; i++ {
		w := env.do(http.MethodPost, "/api/pix", `{"amount":10,"nome":"Ana"}`)
		require.NotEqual(t, http.StatusOK, w.Code)
	}

	w := env.do(http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not ready","reason":"payment gateway circuit breaker open"}`, w.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.do(http.MethodPost, "/api/pix", `{}`)

	w := env.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_pix_charges_created_total 1")
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="POST",path="/api/pix",status="200"} 1`)
}

func TestRouter_RateLimitSharedAcrossPrefixes(t *testing.T) {
	env := newTestEnv(t, nil, nil, withRateLimit(2))

	codes := []int{
		env.do(http.MethodGet, "/api/consulta", "").Code,
		env.do(http.MethodGet, "/.netlify/functions/consulta", "").Code,
		env.do(http.MethodGet, "/api/consulta", "").Code,
	}

	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}
