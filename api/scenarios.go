/*
scenarios.go - Demo portfolios for testing and demonstrations

PURPOSE:

	Provides pre-built portfolios that replace the database contents with
	realistic data. Each scenario shows one advisor behavior.

AVAILABLE SCENARIOS:

	better-rate:    One deposit at a low-rate bank, a better bank with room
	capped-bank:    The best bank is already at its upper bound
	pinned:         The deposit's own bank would drop below its lower bound
	expired:        An active deposit whose close date has passed

HOW SCENARIOS WORK:
 1. Build a factory.PortfolioJSON with dates relative to today
 2. Convert it through the factory, exactly like an import
 3. ReplaceAll in the store

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "better-rate"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a builder to 'scenarioBuilders'

NOTE:

	Scenarios replace the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ImportPortfolio shares the same path
  - factory/portfolio.go: Document format
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "better-rate",
		Name:        "Better Rate Elsewhere",
		Description: "A 4% deposit while another bank pays 9% and has room",
	},
	{
		ID:          "capped-bank",
		Name:        "Capped Bank",
		Description: "The best bank already holds its maximum share",
	},
	{
		ID:          "pinned",
		Name:        "Pinned by Lower Bound",
		Description: "Moving the deposit would leave its bank under its minimum share",
	},
	{
		ID:          "expired",
		Name:        "Expired Deposit",
		Description: "An active deposit that closed last month",
	},
}

var scenarioBuilders = map[string]func(today generic.TimePoint) factory.PortfolioJSON{
	"better-rate": betterRateScenario,
	"capped-bank": cappedBankScenario,
	"pinned":      pinnedScenario,
	"expired":     expiredScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the portfolio with a demo one.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load scenario", err)
		return
	}

	h.setScenario(req.ScenarioID)
	h.Log.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	build, ok := scenarioBuilders[id]
	if !ok {
		return fmt.Errorf("unknown scenario: %s", id)
	}
	p, err := build(h.today()).ToPortfolio()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", id, err)
	}
	return h.Store.ReplaceAll(ctx, p.Banks, p.Deposits)
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func scenarioBank(name, rate, minCap, maxCap, commission string, strategy generic.PayStrategy) factory.BankJSON {
	return factory.BankJSON{
		Name:               name,
		Percent:            decimal.RequireFromString(rate),
		MinCapacity:        decimal.RequireFromString(minCap),
		MaxCapacity:        decimal.RequireFromString(maxCap),
		TransferCommission: decimal.RequireFromString(commission),
		PayStrategy:        string(strategy),
	}
}

func scenarioDeposit(id, bank, name string, open, closeAt generic.TimePoint, amount int64, rate string) factory.DepositJSON {
	return factory.DepositJSON{
		ID:          id,
		Bank:        bank,
		Name:        name,
		DateOpen:    open.String(),
		DateClose:   closeAt.String(),
		Amount:      decimal.NewFromInt(amount),
		Percent:     decimal.RequireFromString(rate),
		Status:      "Active",
		PayStrategy: string(generic.PayOnce),
	}
}

func day(tp generic.TimePoint) generic.TimePoint {
	return generic.NewTimePoint(tp.Year(), tp.Month(), tp.Day())
}

func betterRateScenario(today generic.TimePoint) factory.PortfolioJSON {
	t := day(today)
	return factory.PortfolioJSON{
		Banks: []factory.BankJSON{
			scenarioBank("Harbor", "0.09", "0", "1", "0.001", generic.PayCapitalization),
			scenarioBank("Granite", "0.04", "0", "1", "0", generic.PayOnce),
		},
		Deposits: []factory.DepositJSON{
			scenarioDeposit("dep-emergency", "Granite", "Emergency fund", t.AddMonths(-1), t.AddMonths(11), 50000, "0.04"),
		},
	}
}

func cappedBankScenario(today generic.TimePoint) factory.PortfolioJSON {
	t := day(today)
	return factory.PortfolioJSON{
		Banks: []factory.BankJSON{
			scenarioBank("Harbor", "0.09", "0", "0.5", "0", generic.PayOnce),
			scenarioBank("Meadow", "0.07", "0", "1", "0", generic.PayOnce),
			scenarioBank("Granite", "0.04", "0", "1", "0", generic.PayOnce),
		},
		Deposits: []factory.DepositJSON{
			scenarioDeposit("dep-harbor", "Harbor", "Harbor term", t.AddMonths(-2), t.AddMonths(10), 50000, "0.09"),
			scenarioDeposit("dep-granite", "Granite", "Granite term", t.AddMonths(-2), t.AddMonths(10), 50000, "0.04"),
		},
	}
}

func pinnedScenario(today generic.TimePoint) factory.PortfolioJSON {
	t := day(today)
	return factory.PortfolioJSON{
		Banks: []factory.BankJSON{
			scenarioBank("Harbor", "0.09", "0", "1", "0", generic.PayOnce),
			scenarioBank("Granite", "0.04", "0.5", "1", "0", generic.PayOnce),
		},
		Deposits: []factory.DepositJSON{
			scenarioDeposit("dep-granite", "Granite", "Granite term", t.AddMonths(-1), t.AddMonths(11), 50000, "0.04"),
			scenarioDeposit("dep-harbor", "Harbor", "Harbor term", t.AddMonths(-1), t.AddMonths(11), 50000, "0.09"),
		},
	}
}

func expiredScenario(today generic.TimePoint) factory.PortfolioJSON {
	t := day(today)
	return factory.PortfolioJSON{
		Banks: []factory.BankJSON{
			scenarioBank("Granite", "0.05", "0", "1", "0", generic.PayOnce),
		},
		Deposits: []factory.DepositJSON{
			scenarioDeposit("dep-lapsed", "Granite", "Lapsed term", t.AddMonths(-13), t.AddDays(-30), 20000, "0.05"),
			scenarioDeposit("dep-running", "Granite", "Running term", t.AddMonths(-3), t.AddMonths(9), 20000, "0.05"),
		},
	}
}
