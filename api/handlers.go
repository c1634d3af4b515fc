/*
handlers.go - HTTP API handlers for the deposit engine

PURPOSE:
  Exposes the portfolio store, the accrual engine and the reallocation
  advisor via REST API. Handles HTTP request/response, JSON serialization,
  and delegates to domain logic in package deposit.

ENDPOINTS:
  Banks:
    GET    /api/banks                    List banks
    POST   /api/banks                    Create or replace a bank
    GET    /api/banks/{name}             Get one bank
    DELETE /api/banks/{name}             Delete a bank

  Deposits:
    GET    /api/deposits                 List deposits
    POST   /api/deposits                 Create or replace a deposit
    GET    /api/deposits/{id}            Get one deposit
    DELETE /api/deposits/{id}            Delete a deposit
    GET    /api/deposits/{id}/schedule   Monthly accrual schedule

  Analysis:
    GET    /api/suggestions              Reallocation advice
    GET    /api/timeline                 Timeline entries and summary
    GET    /api/allocation               Per-bank share vs capacity
    GET    /api/staleness                Data age and expired deposits

  Portfolio:
    GET    /api/portfolio                Export as a JSON document
    POST   /api/portfolio/import         Replace everything with a document

ARCHITECTURE:
  Handler holds the store, the advisor and a clock. Nothing is cached:
  every analysis endpoint reloads the portfolio and recomputes.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Bank or deposit not found
  - 422: Portfolio references an unknown bank (advisor refuses to run)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo portfolios
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      deposit.Store
	Advisor    *deposit.Advisor
	Log        zerolog.Logger
	MaxDataAge time.Duration
	Now        func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store deposit.Store, log zerolog.Logger) *Handler {
	return &Handler{
		Store:      store,
		Advisor:    deposit.NewAdvisor(log),
		Log:        log.With().Str("component", "api").Logger(),
		MaxDataAge: deposit.DefaultMaxDataAge,
		Now:        time.Now,
	}
}

// =============================================================================
// BANK HANDLERS
// =============================================================================

// ListBanks returns all banks.
func (h *Handler) ListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.Store.ListBanks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list banks", err)
		return
	}

	dtos := make([]factory.BankJSON, len(banks))
	for i, b := range banks {
		dtos[i] = toBankJSON(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBank returns one bank by name.
func (h *Handler) GetBank(w http.ResponseWriter, r *http.Request) {
	bank, err := h.Store.GetBank(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, "Failed to get bank", err)
		return
	}
	writeJSON(w, http.StatusOK, toBankJSON(*bank))
}

// CreateBank stores a bank, replacing any bank with the same name.
func (h *Handler) CreateBank(w http.ResponseWriter, r *http.Request) {
	var req factory.BankJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bank, err := req.ToBank()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bank", err)
		return
	}
	if err := h.Store.SaveBank(r.Context(), bank); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save bank", err)
		return
	}

	h.Log.Info().Str("bank", bank.Name).Msg("bank saved")
	writeJSON(w, http.StatusCreated, toBankJSON(bank))
}

// DeleteBank removes a bank. Deposits referencing it are kept; the advisor
// reports them until the bank is added back.
func (h *Handler) DeleteBank(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Store.DeleteBank(r.Context(), name); err != nil {
		writeDomainError(w, "Failed to delete bank", err)
		return
	}
	h.Log.Info().Str("bank", name).Msg("bank deleted")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DEPOSIT HANDLERS
// =============================================================================

// ListDeposits returns all deposits ordered by open date.
func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.Store.ListDeposits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list deposits", err)
		return
	}

	dtos := make([]factory.DepositJSON, len(deposits))
	for i, d := range deposits {
		dtos[i] = toDepositJSON(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDeposit returns one deposit by ID.
func (h *Handler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.GetDeposit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get deposit", err)
		return
	}
	writeJSON(w, http.StatusOK, toDepositJSON(*d))
}

// CreateDeposit stores a deposit. An ID is generated when the body has none.
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req factory.DepositJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, err := req.ToDeposit()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deposit", err)
		return
	}
	if err := h.Store.SaveDeposit(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save deposit", err)
		return
	}

	h.Log.Info().Str("deposit_id", d.ID).Str("bank", d.Bank).Msg("deposit saved")
	writeJSON(w, http.StatusCreated, toDepositJSON(d))
}

// DeleteDeposit removes a deposit.
func (h *Handler) DeleteDeposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteDeposit(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete deposit", err)
		return
	}
	h.Log.Info().Str("deposit_id", id).Msg("deposit deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetSchedule returns the monthly accrual steps of a deposit over its term.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	d, err := h.Store.GetDeposit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get deposit", err)
		return
	}

	steps := generic.AccrualSchedule(d.Amount, d.Rate, d.Open, d.Close, d.PayStrategy)
	resp := ScheduleResponse{
		DepositID: d.ID,
		Strategy:  string(d.PayStrategy),
		Periods:   make([]AccrualPeriodDTO, len(steps)),
		Total:     money(deposit.EarnedAtClose(*d)),
	}
	for i, s := range steps {
		resp.Periods[i] = toAccrualPeriodDTO(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// ANALYSIS HANDLERS
// =============================================================================

// GetSuggestions runs the advisor over the active deposits.
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	p, err := deposit.LoadPortfolio(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load portfolio", err)
		return
	}

	advice, err := h.Advisor.SuggestReallocations(deposit.Active(p.Deposits), p.Banks)
	if err != nil {
		var unknown *deposit.UnknownBankError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusUnprocessableEntity, "Portfolio references an unknown bank", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to compute suggestions", err)
		return
	}

	resp := AdviceResponse{
		Suggestions:   make([]SuggestionDTO, len(advice.Suggestions)),
		NoSuggestions: advice.NoSuggestions(),
		MinBenefit:    h.Advisor.MinBenefit,
		GeneratedAt:   advice.GeneratedAt.String(),
	}
	for i, s := range advice.Suggestions {
		resp.Suggestions[i] = toSuggestionDTO(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTimeline returns every deposit placed on a timeline plus the summary.
// ?status=Active limits it to active deposits.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.Store.ListDeposits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list deposits", err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st, err := deposit.ParseStatus(status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
		deposits = filterStatus(deposits, st)
	}

	entries := deposit.Timeline(deposits, h.today())
	resp := TimelineResponse{
		Entries: make([]TimelineEntryDTO, len(entries)),
		Summary: toSummaryDTO(deposit.Summarize(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = toTimelineEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAllocation returns the share each bank holds of the active principal.
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	p, err := deposit.LoadPortfolio(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load portfolio", err)
		return
	}

	shares, err := deposit.BankShares(deposit.Active(p.Deposits), p.Banks)
	if errors.Is(err, generic.ErrEmptyPortfolio) {
		writeJSON(w, http.StatusOK, []BankShareDTO{})
		return
	}
	if err != nil {
		writeDomainError(w, "Failed to compute allocation", err)
		return
	}

	dtos := make([]BankShareDTO, len(shares))
	for i, s := range shares {
		dtos[i] = toBankShareDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStaleness reports how old the data is and which active deposits have
// already closed.
func (h *Handler) GetStaleness(w http.ResponseWriter, r *http.Request) {
	report, modified, err := h.staleness(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check staleness", err)
		return
	}

	resp := StalenessResponse{
		NoData:       report.NoData,
		DataAgeHours: report.DataAge.Hours(),
		Outdated:     report.Outdated,
		Expired:      make([]factory.DepositJSON, len(report.Expired)),
	}
	if !modified.IsZero() {
		resp.LastModified = modified.UTC().Format(time.RFC3339)
	}
	for i, d := range report.Expired {
		resp.Expired[i] = toDepositJSON(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) staleness(r *http.Request) (deposit.StalenessReport, time.Time, error) {
	modified, err := h.Store.LastModified(r.Context())
	if err != nil {
		return deposit.StalenessReport{}, time.Time{}, err
	}
	deposits, err := h.Store.ListDeposits(r.Context())
	if err != nil {
		return deposit.StalenessReport{}, time.Time{}, err
	}
	return deposit.CheckStaleness(deposits, modified, h.Now(), h.MaxDataAge), modified, nil
}

// =============================================================================
// PORTFOLIO HANDLERS
// =============================================================================

// ExportPortfolio returns the whole portfolio as an importable document.
func (h *Handler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := deposit.LoadPortfolio(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load portfolio", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.FromPortfolio(p))
}

// ImportPortfolio replaces every bank and deposit with the posted document.
func (h *Handler) ImportPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := factory.ReadPortfolio(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid portfolio", err)
		return
	}
	if err := h.Store.ReplaceAll(r.Context(), p.Banks, p.Deposits); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import portfolio", err)
		return
	}

	h.setScenario("")
	h.Log.Info().Int("banks", len(p.Banks)).Int("deposits", len(p.Deposits)).Msg("portfolio imported")
	writeJSON(w, http.StatusOK, ImportResponse{Banks: len(p.Banks), Deposits: len(p.Deposits)})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// today is the handler clock read as a wall-clock time point.
func (h *Handler) today() generic.TimePoint {
	return generic.FromTime(h.Now())
}

func filterStatus(deposits []deposit.Deposit, status deposit.Status) []deposit.Deposit {
	var out []deposit.Deposit
	for _, d := range deposits {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
