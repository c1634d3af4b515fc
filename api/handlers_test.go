/*
handlers_test.go - HTTP tests for the API handlers

Tests run the full chi router against an in-memory store with a fixed clock
and inspect JSON responses through jsonpath.
*/
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testPortfolio = `{
  "banks": [
    {"name": "Alpha", "percent": "0.10", "min_capacity": "0", "max_capacity": "1", "transfer_commission": "0", "pay_strategy": "Once"},
    {"name": "Beta",  "percent": "0.05", "min_capacity": "0", "max_capacity": "1", "transfer_commission": "0", "pay_strategy": "Once"}
  ],
  "deposits": [
    {"id": "d-beta", "bank": "Beta", "name": "Rainy day", "date_open": "2025-01-01", "date_close": "2026-01-01",
     "amount": "100000", "percent": "0.05", "status": "Active", "pay_strategy": "Once"},
    {"id": "d-old", "bank": "Alpha", "name": "Old savings", "date_open": "2023-01-01", "date_close": "2024-01-01",
     "amount": "5000", "percent": "0.03", "status": "Closed", "pay_strategy": "Once"}
  ]
}`

type testServer struct {
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()
	h := NewHandler(memory.NewMemory(), zerolog.Nop())
	h.Now = func() time.Time { return now }
	h.Advisor.Now = func() generic.TimePoint { return generic.FromTime(now) }
	return &testServer{handler: h, router: NewRouter(h)}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec.Code, decoded
}

func (s *testServer) importPortfolio(t *testing.T, doc string) {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/api/portfolio/import", doc)
	require.Equal(t, http.StatusOK, status)
}

func get(t *testing.T, path string, doc any) any {
	t.Helper()
	v, err := jsonpath.Get(path, doc)
	require.NoError(t, err, path)
	return v
}

var jan2025 = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// HEALTH / IMPORT
// =============================================================================

func TestHealth(t *testing.T) {
	s := newTestServer(t, jan2025)
	status, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", get(t, "$.status", body))
}

func TestImportPortfolio_ReplacesEverything(t *testing.T) {
	// GIVEN: A bank created by hand
	s := newTestServer(t, jan2025)
	status, _ := s.do(t, http.MethodPost, "/api/banks",
		`{"name": "Gamma", "percent": "0.02", "min_capacity": "0", "max_capacity": "1", "transfer_commission": "0", "pay_strategy": "Once"}`)
	require.Equal(t, http.StatusCreated, status)

	// WHEN: A portfolio is imported
	status, body := s.do(t, http.MethodPost, "/api/portfolio/import", testPortfolio)

	// THEN: Only the imported records remain
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), get(t, "$.banks", body))
	assert.Equal(t, float64(2), get(t, "$.deposits", body))

	_, banks := s.do(t, http.MethodGet, "/api/banks", "")
	assert.Equal(t, []any{"Alpha", "Beta"}, get(t, "$[*].name", banks))
}

func TestImportPortfolio_InvalidDocument(t *testing.T) {
	s := newTestServer(t, jan2025)
	status, body := s.do(t, http.MethodPost, "/api/portfolio/import",
		`{"banks": [{"name": "Alpha", "min_capacity": "0.8", "max_capacity": "0.2", "pay_strategy": "Once"}]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid portfolio", get(t, "$.error", body))
}

func TestExportPortfolio_RoundTripsImport(t *testing.T) {
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)

	status, body := s.do(t, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"d-beta", "d-old"}, get(t, "$.deposits[*].id", body))
	assert.Equal(t, "2026-01-01", get(t, "$.deposits[0].date_close", body))
}

// =============================================================================
// BANKS / DEPOSITS
// =============================================================================

func TestBanks_NotFound(t *testing.T) {
	s := newTestServer(t, jan2025)

	status, _ := s.do(t, http.MethodGet, "/api/banks/Nowhere", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, "/api/banks/Nowhere", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateBank_RejectsUnknownStrategy(t *testing.T) {
	s := newTestServer(t, jan2025)
	status, body := s.do(t, http.MethodPost, "/api/banks",
		`{"name": "Gamma", "percent": "0.02", "min_capacity": "0", "max_capacity": "1", "pay_strategy": "Weekly"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, get(t, "$.details", body), "pay_strategy")
}

func TestCreateDeposit_GeneratesID(t *testing.T) {
	s := newTestServer(t, jan2025)
	status, body := s.do(t, http.MethodPost, "/api/deposits",
		`{"bank": "Alpha", "name": "New", "date_open": "2025-01-01", "date_close": "2025-07-01",
		  "amount": "1000", "percent": "0.05", "status": "Active", "pay_strategy": "Once"}`)
	require.Equal(t, http.StatusCreated, status)

	id, ok := get(t, "$.id", body).(string)
	require.True(t, ok)
	require.NotEmpty(t, id)

	status, body = s.do(t, http.MethodGet, "/api/deposits/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "New", get(t, "$.name", body))

	status, _ = s.do(t, http.MethodDelete, "/api/deposits/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(t, http.MethodGet, "/api/deposits/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateDeposit_CloseBeforeOpen(t *testing.T) {
	s := newTestServer(t, jan2025)
	status, _ := s.do(t, http.MethodPost, "/api/deposits",
		`{"bank": "Alpha", "name": "Backwards", "date_open": "2025-07-01", "date_close": "2025-01-01",
		  "amount": "1000", "percent": "0.05", "status": "Active", "pay_strategy": "Once"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetSchedule(t *testing.T) {
	// GIVEN: A one-year deposit opened on the first of the month
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)

	// WHEN: Its schedule is requested
	status, body := s.do(t, http.MethodGet, "/api/deposits/d-beta/schedule", "")

	// THEN: Twelve monthly steps plus the zero-day step at the close date
	require.Equal(t, http.StatusOK, status)
	periods := get(t, "$.periods", body).([]any)
	assert.Len(t, periods, 13)
	assert.Equal(t, float64(31), get(t, "$.periods[0].days", body))
	assert.Equal(t, float64(0), get(t, "$.periods[12].days", body))
	assert.Equal(t, "4996.58", get(t, "$.total", body))
}

// =============================================================================
// ANALYSIS
// =============================================================================

func TestGetSuggestions_MovesToBetterBank(t *testing.T) {
	// GIVEN: A 5% deposit while Alpha pays 10% with room and no commission
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)

	// WHEN: Suggestions are requested on the open date
	status, body := s.do(t, http.MethodGet, "/api/suggestions", "")

	// THEN: Moving the whole year to Alpha doubles the interest
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, get(t, "$.no_suggestions", body))
	assert.Equal(t, "d-beta", get(t, "$.suggestions[0].deposit_id", body))
	assert.Equal(t, "Alpha", get(t, "$.suggestions[0].to_bank", body))
	assert.Equal(t, "4996.58", get(t, "$.suggestions[0].benefit", body))
	assert.Equal(t, "10", get(t, "$.min_benefit", body))
}

func TestGetSuggestions_NothingWorthMoving(t *testing.T) {
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, strings.Replace(testPortfolio, `"percent": "0.10"`, `"percent": "0.05"`, 1))

	status, body := s.do(t, http.MethodGet, "/api/suggestions", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, get(t, "$.no_suggestions", body))
	assert.Empty(t, get(t, "$.suggestions", body))
}

func TestGetSuggestions_UnknownBank(t *testing.T) {
	// GIVEN: The bank of an active deposit was deleted
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)
	status, _ := s.do(t, http.MethodDelete, "/api/banks/Beta", "")
	require.Equal(t, http.StatusNoContent, status)

	// WHEN: Suggestions are requested
	status, body := s.do(t, http.MethodGet, "/api/suggestions", "")

	// THEN: The advisor refuses to run
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, get(t, "$.details", body), "Beta")
}

func TestGetTimeline(t *testing.T) {
	// GIVEN: June 1st 2025
	s := newTestServer(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	s.importPortfolio(t, testPortfolio)

	// WHEN: The timeline is requested
	status, body := s.do(t, http.MethodGet, "/api/timeline", "")

	// THEN: Latest close first, closed deposits included
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"d-beta", "d-old"}, get(t, "$.entries[*].deposit_id", body))
	assert.Equal(t, float64(214), get(t, "$.entries[0].days_to_close", body))
	assert.Equal(t, false, get(t, "$.entries[0].expired", body))
	assert.Equal(t, true, get(t, "$.entries[1].expired", body))
	assert.Equal(t, float64(2), get(t, "$.summary.count", body))
	assert.Equal(t, "105000", get(t, "$.summary.total", body))
}

func TestGetTimeline_StatusFilter(t *testing.T) {
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)

	status, body := s.do(t, http.MethodGet, "/api/timeline?status=Active", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"d-beta"}, get(t, "$.entries[*].deposit_id", body))

	status, _ = s.do(t, http.MethodGet, "/api/timeline?status=Paused", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetAllocation(t *testing.T) {
	s := newTestServer(t, jan2025)

	// Empty store: no shares, not an error
	status, body := s.do(t, http.MethodGet, "/api/allocation", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)

	s.importPortfolio(t, testPortfolio)
	status, body = s.do(t, http.MethodGet, "/api/allocation", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"Alpha", "Beta"}, get(t, "$[*].bank", body))
	assert.Equal(t, "0", get(t, "$[0].share", body))
	assert.Equal(t, "1", get(t, "$[1].share", body))
	assert.Equal(t, true, get(t, "$[1].within_bounds", body))
}

func TestGetStaleness(t *testing.T) {
	// GIVEN: Data written now, checked a month later
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)
	s.handler.Now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }

	// WHEN: Staleness is requested
	status, body := s.do(t, http.MethodGet, "/api/staleness", "")

	// THEN: Outdated, and the active 2025 deposit has closed
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, get(t, "$.outdated", body))
	assert.Equal(t, []any{"d-beta"}, get(t, "$.expired[*].id", body))
}

func TestGetStaleness_EmptyStore(t *testing.T) {
	s := newTestServer(t, jan2025)

	status, body := s.do(t, http.MethodGet, "/api/staleness", "")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, get(t, "$.no_data", body))
	assert.Equal(t, false, get(t, "$.outdated", body))
	assert.Equal(t, float64(0), get(t, "$.data_age_hours", body))
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_LoadEach(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			s := newTestServer(t, time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC))

			status, _ := s.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "`+sc.ID+`"}`)
			require.Equal(t, http.StatusOK, status)

			_, current := s.do(t, http.MethodGet, "/api/scenarios/current", "")
			assert.Equal(t, sc.ID, get(t, "$.id", current))

			status, _ = s.do(t, http.MethodGet, "/api/suggestions", "")
			assert.Equal(t, http.StatusOK, status)
		})
	}
}

func TestScenarios_Outcomes(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		scenario    string
		suggestions int
	}{
		{"better-rate", 1},
		{"capped-bank", 1}, // Granite goes to Meadow, Harbor is full
		{"pinned", 0},
	}

	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			s := newTestServer(t, now)
			status, _ := s.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "`+tt.scenario+`"}`)
			require.Equal(t, http.StatusOK, status)

			_, body := s.do(t, http.MethodGet, "/api/suggestions", "")
			assert.Len(t, get(t, "$.suggestions", body), tt.suggestions)
		})
	}
}

func TestScenarios_Unknown(t *testing.T) {
	s := newTestServer(t, jan2025)
	status, _ := s.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestScenarios_ConcurrentLoads(t *testing.T) {
	// GIVEN: Clients loading scenarios, resetting and reading the current one at once
	s := newTestServer(t, time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC))
	send := func(method, path, body string) int {
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec.Code
	}

	// WHEN: They all run together
	var wg sync.WaitGroup
	codes := make(chan int, 3*len(scenarios))
	for _, sc := range scenarios {
		wg.Add(3)
		go func(id string) {
			defer wg.Done()
			codes <- send(http.MethodPost, "/api/scenarios/load", `{"scenario_id": "`+id+`"}`)
		}(sc.ID)
		go func() {
			defer wg.Done()
			codes <- send(http.MethodGet, "/api/scenarios/current", "")
		}()
		go func() {
			defer wg.Done()
			codes <- send(http.MethodPost, "/api/scenarios/reset", "")
		}()
	}
	wg.Wait()
	close(codes)

	// THEN: Every request succeeds and a final load is reported as current
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/api/scenarios/load", `{"scenario_id": "pinned"}`))
	_, current := s.do(t, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "pinned", get(t, "$.id", current))
}

func TestResetDatabase(t *testing.T) {
	s := newTestServer(t, jan2025)
	s.importPortfolio(t, testPortfolio)

	status, _ := s.do(t, http.MethodPost, "/api/scenarios/reset", "")
	require.Equal(t, http.StatusOK, status)

	_, body := s.do(t, http.MethodGet, "/api/deposits", "")
	assert.Empty(t, body)
}
