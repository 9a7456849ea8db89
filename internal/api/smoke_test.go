// Package api_test runs HTTP-level smoke tests using net/http/httptest.
// The services run against an in-memory SQLite store, so these tests cover:
//   - Gin router routing and middleware wiring
//   - Request validation error responses (400)
//   - Domain error mapping (404, 409, 422)
//   - Response format consistency (success/error envelope)
//   - CORS preflight handling
//   - Rate limiting on /api
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaektomo/SweepstakeManager/internal/api"
	"github.com/jaektomo/SweepstakeManager/internal/api/middleware"
	"github.com/jaektomo/SweepstakeManager/internal/config"
	"github.com/jaektomo/SweepstakeManager/internal/engine"
	"github.com/jaektomo/SweepstakeManager/internal/repository"
	"github.com/jaektomo/SweepstakeManager/internal/service"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func testCfg() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:  "development",
			Port: "8080",
		},
		DB: config.DBConfig{
			Driver: config.DriverSQLite,
			DSN:    ":memory:",
		},
	}
}

// buildTestRouter wires the real services to a fresh in-memory database.
func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return buildLimitedRouter(t, nil)
}

func buildLimitedRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	cfg := testCfg()
	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	competitorRepo := repository.NewCompetitorRepository(db)
	return api.SetupRouter(api.RouterDeps{
		PoolSvc: service.NewPoolService(
			repository.NewPoolRepository(db),
			competitorRepo,
			engine.New(engine.NewSeededSource(1)),
			cfg,
			nil,
		),
		CompetitorSvc: service.NewCompetitorService(competitorRepo, nil),
		Hub:           nil,
		Limiter:       limiter,
		Cfg:           cfg,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("response is not valid JSON: %v, body: %s", err, rr.Body.String())
	}
	return m
}

// data returns the "data" object of a success envelope.
func data(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decodeBody(t, rr)
	d, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("envelope has no data object: %v", body)
	}
	return d
}

func createPool(t *testing.T, h http.Handler, payload string) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/pools", payload, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /api/pools = %d: %s", rr.Code, rr.Body.String())
	}
	return data(t, rr)["id"].(string)
}

const cupPayload = `{"name":"Melbourne Cup","entry_fee":"10.00",
	"prize_shares":[{"place":1,"percentage":"60"},{"place":2,"percentage":"30"},{"place":3,"percentage":"10"}],
	"competitors":["Gold Trip","Vauban","Absurde","Soulcombe","Knights Order"]}`

// ── /health ───────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rr.Code)
	}
}

// ── Pool lifecycle ────────────────────────────────────────────────────────────

func TestPoolLifecycle(t *testing.T) {
	h := buildTestRouter(t)
	id := createPool(t, h, cupPayload)

	for _, name := range []string{"Ann", "Bob", "Cara", "Dan"} {
		rr := do(t, h, http.MethodPost, "/api/pools/"+id+"/participants", fmt.Sprintf(`{"name":%q}`, name), nil)
		if rr.Code != http.StatusCreated {
			t.Fatalf("add %s = %d: %s", name, rr.Code, rr.Body.String())
		}
	}

	rr := do(t, h, http.MethodPatch, "/api/pools/"+id+"/participants/0", `{"has_paid":true}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("mark paid = %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/api/pools/"+id+"/assign", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("assign = %d: %s", rr.Code, rr.Body.String())
	}
	if got := data(t, rr)["status"]; got != "active" {
		t.Errorf("status after assign = %v, want active", got)
	}

	rr = do(t, h, http.MethodPost, "/api/pools/"+id+"/settle", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("settle = %d: %s", rr.Code, rr.Body.String())
	}
	settled := data(t, rr)
	if settled["status"] != "completed" {
		t.Errorf("status after settle = %v, want completed", settled["status"])
	}
	outcomes, _ := settled["outcomes"].([]interface{})
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	first := outcomes[0].(map[string]interface{})
	if first["place"] != float64(1) || first["winnings"] != "24" {
		t.Errorf("first place = %v, want place 1 winning 24", first)
	}

	rr = do(t, h, http.MethodGet, "/api/pools/"+id+"/summary", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary = %d", rr.Code)
	}
	sum := data(t, rr)
	if sum["total_pool"] != "40" || sum["paid_count"] != float64(1) {
		t.Errorf("summary total/paid = %v/%v, want 40/1", sum["total_pool"], sum["paid_count"])
	}
}

func TestPoolList_FiltersAndPaginates(t *testing.T) {
	h := buildTestRouter(t)
	createPool(t, h, cupPayload)
	createPool(t, h, strings.Replace(cupPayload, "Melbourne Cup", "Cox Plate", 1))

	rr := do(t, h, http.MethodGet, "/api/pools?q=cup", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/pools = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	items, _ := body["data"].([]interface{})
	if len(items) != 1 {
		t.Errorf("q=cup matched %d pools, want 1", len(items))
	}

	rr = do(t, h, http.MethodGet, "/api/pools?limit=1&page=2", "", nil)
	body = decodeBody(t, rr)
	items, _ = body["data"].([]interface{})
	meta, _ := body["meta"].(map[string]interface{})
	if len(items) != 1 || meta["total"] != float64(2) {
		t.Errorf("page 2 = %d items, total %v; want 1 item of 2", len(items), meta["total"])
	}
}

// ── Error mapping ─────────────────────────────────────────────────────────────

func TestCreatePool_Validation(t *testing.T) {
	h := buildTestRouter(t)
	cases := []struct {
		name    string
		payload string
		code    string
	}{
		{"missing fields", `{}`, "ERR_VALIDATION"},
		{"bad fee", `{"name":"x","entry_fee":"ten","competitors":["a"]}`, "ERR_INVALID_AMOUNT"},
		{"zero fee", `{"name":"x","entry_fee":"0","competitors":["a"]}`, "ERR_VALIDATION"},
		{"overcommitted", `{"name":"x","entry_fee":"5","competitors":["a"],
			"prize_shares":[{"place":1,"percentage":"80"},{"place":2,"percentage":"40"}]}`, "ERR_PRIZE_OVERCOMMITTED"},
		{"no competitors", `{"name":"x","entry_fee":"5"}`, "ERR_VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/pools", tc.payload, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
			if body := decodeBody(t, rr); body["code"] != tc.code {
				t.Errorf("code = %v, want %s", body["code"], tc.code)
			}
		})
	}
}

func TestPool_NotFoundAndBadID(t *testing.T) {
	h := buildTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/pools/11111111-1111-1111-1111-111111111111", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown pool = %d, want 404", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/api/pools/not-a-uuid", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", rr.Code)
	}
}

func TestSettle_InSetupIsConflict(t *testing.T) {
	h := buildTestRouter(t)
	id := createPool(t, h, cupPayload)

	rr := do(t, h, http.MethodPost, "/api/pools/"+id+"/settle", "", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("settle in setup = %d, want 409", rr.Code)
	}
	if body := decodeBody(t, rr); body["code"] != "ERR_INVALID_STATE" {
		t.Errorf("code = %v, want ERR_INVALID_STATE", body["code"])
	}
}

func TestAssign_UnprocessableWithoutParticipants(t *testing.T) {
	h := buildTestRouter(t)
	id := createPool(t, h, cupPayload)

	rr := do(t, h, http.MethodPost, "/api/pools/"+id+"/assign", "", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("assign empty roster = %d, want 422", rr.Code)
	}
}

func TestAssign_InsufficientSupply(t *testing.T) {
	h := buildTestRouter(t)
	id := createPool(t, h, `{"name":"Tiny","entry_fee":"1","competitors":["Vauban"]}`)
	for _, name := range []string{"Ann", "Bob"} {
		do(t, h, http.MethodPost, "/api/pools/"+id+"/participants", fmt.Sprintf(`{"name":%q}`, name), nil)
	}

	rr := do(t, h, http.MethodPost, "/api/pools/"+id+"/assign", "", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("assign = %d, want 422", rr.Code)
	}
	if body := decodeBody(t, rr); body["code"] != "ERR_INSUFFICIENT_SUPPLY" {
		t.Errorf("code = %v, want ERR_INSUFFICIENT_SUPPLY", body["code"])
	}
}

func TestSetPaid_Validation(t *testing.T) {
	h := buildTestRouter(t)
	id := createPool(t, h, cupPayload)

	rr := do(t, h, http.MethodPatch, "/api/pools/"+id+"/participants/0", `{"has_paid":true}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("out of range index = %d, want 400", rr.Code)
	}
	rr = do(t, h, http.MethodPatch, "/api/pools/"+id+"/participants/x", `{"has_paid":true}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric index = %d, want 400", rr.Code)
	}
	rr = do(t, h, http.MethodPatch, "/api/pools/"+id+"/participants/0", `{}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing has_paid = %d, want 400", rr.Code)
	}
}

func TestPrizeSharesHaveNoEditRoute(t *testing.T) {
	h := buildTestRouter(t)
	id := createPool(t, h, cupPayload)

	rr := do(t, h, http.MethodPost, "/api/pools/"+id+"/places", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("POST /places = %d, want 404", rr.Code)
	}
	shares, _ := data(t, do(t, h, http.MethodGet, "/api/pools/"+id, "", nil))["prize_shares"].([]interface{})
	if len(shares) != 3 {
		t.Errorf("prize_shares = %v, want the 3 created places", shares)
	}
}

// ── Competitor roster ─────────────────────────────────────────────────────────

func TestCompetitorRoster(t *testing.T) {
	h := buildTestRouter(t)

	rr := do(t, h, http.MethodPost, "/api/competitors", `{"name":"Vauban"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add competitor = %d: %s", rr.Code, rr.Body.String())
	}
	compID := data(t, rr)["id"].(string)

	rr = do(t, h, http.MethodPost, "/api/competitors", `{"name":" Vauban "}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate competitor = %d, want 400", rr.Code)
	}

	// A pool created without competitors copies the roster.
	id := createPool(t, h, `{"name":"Roster Cup","entry_fee":"2"}`)
	rr = do(t, h, http.MethodGet, "/api/pools/"+id, "", nil)
	comps, _ := data(t, rr)["competitors"].([]interface{})
	if len(comps) != 1 || comps[0] != "Vauban" {
		t.Errorf("pool competitors = %v, want [Vauban]", comps)
	}

	rr = do(t, h, http.MethodDelete, "/api/competitors/"+compID, "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("remove competitor = %d", rr.Code)
	}
	rr = do(t, h, http.MethodDelete, "/api/competitors/"+compID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("remove twice = %d, want 404", rr.Code)
	}
}

// ── Error envelope format ─────────────────────────────────────────────────────

func TestErrorEnvelope_HasRequiredFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/pools", `{}`, nil)
	body := decodeBody(t, rr)

	for _, field := range []string{"success", "error", "code"} {
		if _, ok := body[field]; !ok {
			t.Errorf("error envelope missing field %q, got: %v", field, body)
		}
	}
	if body["success"] != false {
		t.Errorf("error envelope.success = %v, want false", body["success"])
	}
}

// ── CORS headers ──────────────────────────────────────────────────────────────

func TestCORSOptionsRequest(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/pools", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent && rr.Code != http.StatusOK {
		t.Errorf("OPTIONS /api/pools = %d, want 204 or 200", rr.Code)
	}
	allow := rr.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allow, "POST") {
		t.Errorf("Access-Control-Allow-Methods missing POST, got %q", allow)
	}
}

func TestCORSAllowOrigin_Dev(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	origin := rr.Header().Get("Access-Control-Allow-Origin")
	if origin != "*" {
		t.Errorf("Dev CORS origin = %q, want *", origin)
	}
}

// ── Rate limiting ─────────────────────────────────────────────────────────────

func TestAPI_RateLimited(t *testing.T) {
	h := buildLimitedRouter(t, middleware.NewRateLimiter(1)) // burst 10

	for i := 0; i < 10; i++ {
		if rr := do(t, h, http.MethodGet, "/api/pools", "", nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, rr.Code)
		}
	}

	rr := do(t, h, http.MethodGet, "/api/pools", "", nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["code"] != "ERR_RATE_LIMITED" {
		t.Errorf("code = %v, want ERR_RATE_LIMITED", body["code"])
	}

	if rr := do(t, h, http.MethodGet, "/health", "", nil); rr.Code != http.StatusOK {
		t.Errorf("/health is outside the limited group, got %d", rr.Code)
	}
}
