/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies for
  banks, deposits and whole portfolios reuse the factory JSON schema so a
  file the CLI reads can be POSTed unchanged.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts and rates are decimals serialized as JSON strings. Money amounts
  are rounded to cents; rates are left exact.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/portfolio.go: BankJSON, DepositJSON, PortfolioJSON
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// ADVICE
// =============================================================================

// SuggestionDTO is one reallocation suggestion.
type SuggestionDTO struct {
	DepositID   string          `json:"deposit_id"`
	DepositName string          `json:"deposit_name"`
	Amount      decimal.Decimal `json:"amount"`
	FromBank    string          `json:"from_bank"`
	ToBank      string          `json:"to_bank"`
	FromRate    decimal.Decimal `json:"from_rate"`
	ToRate      decimal.Decimal `json:"to_rate"`
	Benefit     decimal.Decimal `json:"benefit"`
	Commission  decimal.Decimal `json:"commission"`
}

// AdviceResponse distinguishes "nothing to suggest" from an empty error.
type AdviceResponse struct {
	Suggestions   []SuggestionDTO `json:"suggestions"`
	NoSuggestions bool            `json:"no_suggestions"`
	MinBenefit    decimal.Decimal `json:"min_benefit"`
	GeneratedAt   string          `json:"generated_at"`
}

// =============================================================================
// TIMELINE
// =============================================================================

type TimelineEntryDTO struct {
	DepositID     string          `json:"deposit_id"`
	DepositName   string          `json:"deposit_name"`
	Bank          string          `json:"bank"`
	Amount        decimal.Decimal `json:"amount"`
	Rate          decimal.Decimal `json:"rate"`
	Open          string          `json:"date_open"`
	Close         string          `json:"date_close"`
	EarnedNow     decimal.Decimal `json:"earned_now"`
	EarnedAtClose decimal.Decimal `json:"earned_at_close"`
	DurationDays  int             `json:"duration_days"`
	DaysToClose   int             `json:"days_to_close"`
	Expired       bool            `json:"expired"`
}

type SummaryDTO struct {
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	AverageRate decimal.Decimal `json:"average_rate"`
	MonthlyEarn decimal.Decimal `json:"monthly_earn"`
}

type TimelineResponse struct {
	Entries []TimelineEntryDTO `json:"entries"`
	Summary SummaryDTO         `json:"summary"`
}

// =============================================================================
// SCHEDULE / ALLOCATION / STALENESS
// =============================================================================

type AccrualPeriodDTO struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Days     int             `json:"days"`
	Balance  decimal.Decimal `json:"balance"`
	Interest decimal.Decimal `json:"interest"`
}

type ScheduleResponse struct {
	DepositID string             `json:"deposit_id"`
	Strategy  string             `json:"pay_strategy"`
	Periods   []AccrualPeriodDTO `json:"periods"`
	Total     decimal.Decimal    `json:"total"`
}

type BankShareDTO struct {
	Bank   string          `json:"bank"`
	Held   decimal.Decimal `json:"held"`
	Share  decimal.Decimal `json:"share"`
	Min    decimal.Decimal `json:"min_capacity"`
	Max    decimal.Decimal `json:"max_capacity"`
	Within bool            `json:"within_bounds"`
}

type StalenessResponse struct {
	LastModified string                `json:"last_modified,omitempty"`
	NoData       bool                  `json:"no_data"`
	DataAgeHours float64               `json:"data_age_hours"`
	Outdated     bool                  `json:"outdated"`
	Expired      []factory.DepositJSON `json:"expired"`
}

// =============================================================================
// SCENARIOS / MISC
// =============================================================================

// ScenarioDTO describes a demo portfolio.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type ImportResponse struct {
	Banks    int `json:"banks"`
	Deposits int `json:"deposits"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func toSuggestionDTO(s deposit.Suggestion) SuggestionDTO {
	return SuggestionDTO{
		DepositID:   s.DepositID,
		DepositName: s.DepositName,
		Amount:      s.Amount,
		FromBank:    s.FromBank,
		ToBank:      s.ToBank,
		FromRate:    s.FromRate,
		ToRate:      s.ToRate,
		Benefit:     money(s.Benefit),
		Commission:  money(s.Commission),
	}
}

func toTimelineEntryDTO(e deposit.TimelineEntry) TimelineEntryDTO {
	return TimelineEntryDTO{
		DepositID:     e.Deposit.ID,
		DepositName:   e.Deposit.Name,
		Bank:          e.Deposit.Bank,
		Amount:        e.Deposit.Amount,
		Rate:          e.Deposit.Rate,
		Open:          e.Deposit.Open.String(),
		Close:         e.Deposit.Close.String(),
		EarnedNow:     money(e.EarnedNow),
		EarnedAtClose: money(e.EarnedAtClose),
		DurationDays:  e.DurationDays,
		DaysToClose:   e.DaysToClose,
		Expired:       e.Expired(),
	}
}

func toSummaryDTO(s deposit.Summary) SummaryDTO {
	return SummaryDTO{
		Count:       s.Count,
		Total:       s.Total,
		AverageRate: s.AverageRate.Round(6),
		MonthlyEarn: money(s.MonthlyEarn),
	}
}

func toAccrualPeriodDTO(p generic.AccrualPeriod) AccrualPeriodDTO {
	return AccrualPeriodDTO{
		Start:    p.Period.Start.String(),
		End:      p.Period.End.String(),
		Days:     p.Days,
		Balance:  money(p.Balance),
		Interest: money(p.Interest),
	}
}

func toBankShareDTO(s deposit.BankShare) BankShareDTO {
	return BankShareDTO{
		Bank:   s.Bank.Name,
		Held:   s.Held,
		Share:  s.Share.Round(4),
		Min:    s.Bank.Capacity.Min,
		Max:    s.Bank.Capacity.Max,
		Within: s.Within,
	}
}

func toDepositJSON(d deposit.Deposit) factory.DepositJSON {
	doc := factory.FromPortfolio(&deposit.Portfolio{Deposits: []deposit.Deposit{d}})
	return doc.Deposits[0]
}

func toBankJSON(b deposit.Bank) factory.BankJSON {
	doc := factory.FromPortfolio(&deposit.Portfolio{Banks: []deposit.Bank{b}})
	return doc.Banks[0]
}
