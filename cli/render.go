package cli

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// Timeline graph geometry: one cell per GraphCellDays, GraphTotalDays wide,
// today in the middle.
const (
	GraphTotalDays = 365
	GraphCellDays  = 3
)

// formatMoney renders amount in the given ISO currency using go-money's
// symbol and separators. Unknown codes fall back to EUR.
func formatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.EUR)
	}
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

func formatPercent(rate decimal.Decimal) string {
	return generic.Percent(rate).StringFixed(2) + "%"
}

// SuggestionsMarkdown renders advice as a markdown table.
func SuggestionsMarkdown(advice *deposit.Advice, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Suggestions\n\n")
	if advice.NoSuggestions() {
		fmt.Fprintln(&b, "No suggestions")
		return b.String()
	}

	fmt.Fprintln(&b, "| Deposit | Amount | From | To | Rate | Extra earn | Commission |")
	fmt.Fprintln(&b, "|:---|---:|:---|:---|:---|---:|---:|")
	for _, s := range advice.Suggestions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s → %s | **%s** | %s |\n",
			s.DepositName,
			formatMoney(s.Amount, currency),
			s.FromBank,
			s.ToBank,
			formatPercent(s.FromRate),
			formatPercent(s.ToRate),
			formatMoney(s.Benefit, currency),
			formatMoney(s.Commission, currency),
		)
	}
	return b.String()
}

// TimelineMarkdown renders entries as a table, a bar graph around today
// and the portfolio summary.
func TimelineMarkdown(entries []deposit.TimelineEntry, summary deposit.Summary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Timeline\n\n")

	fmt.Fprintln(&b, "| Bank | Deposit | Amount | Rate | Close in days | Duration days | Earned | At close |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, e := range entries {
		closeIn := fmt.Sprint(e.DaysToClose)
		if e.Expired() {
			closeIn = "**" + closeIn + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %s | %s |\n",
			e.Deposit.Bank,
			e.Deposit.Name,
			formatMoney(e.Deposit.Amount, currency),
			formatPercent(e.Deposit.Rate),
			closeIn,
			e.DurationDays,
			formatMoney(e.EarnedNow, currency),
			formatMoney(e.EarnedAtClose, currency),
		)
	}

	fmt.Fprintf(&b, "\n```\n")
	for _, line := range TimelineGraph(entries) {
		fmt.Fprintln(&b, line)
	}
	fmt.Fprintf(&b, "```\n\n")

	fmt.Fprintf(&b, "**Sum:** %s  **Average rate:** %s  **Monthly earn:** %s\n",
		formatMoney(summary.Total, currency),
		formatPercent(summary.AverageRate),
		formatMoney(summary.MonthlyEarn, currency),
	)
	return b.String()
}

// TimelineGraph draws one bar per entry on a GraphTotalDays wide axis
// centered on today. Bars are clipped to the axis.
func TimelineGraph(entries []deposit.TimelineEntry) []string {
	width := GraphTotalDays / GraphCellDays
	today := width / 2

	lines := []string{
		strings.Repeat(" ", today) + "V Today",
		strings.Repeat("-", width),
	}
	for _, e := range entries {
		shift, length := barSpan(e.OpenedDaysAgo, e.DurationDays, today, width)
		lines = append(lines,
			strings.Repeat(" ", today)+"|",
			fmt.Sprintf("%s '%s'", e.Deposit.Bank, e.Deposit.Name),
			strings.Repeat(" ", shift)+strings.Repeat("#", length),
		)
	}
	return lines
}

// barSpan returns the column a bar starts at and its length in cells.
func barSpan(openedDaysAgo, durationDays, today, width int) (shift, length int) {
	start := float64(today) - float64(openedDaysAgo)/GraphCellDays
	size := float64(durationDays) / GraphCellDays
	if start < 0 {
		size = max(size+start, 0)
		start = 0
	}
	if start+size > float64(width) {
		size = max(float64(width)-start, 0)
	}
	return int(start), int(size)
}

// CheckMarkdown renders a staleness report. source names where the data
// came from.
func CheckMarkdown(report deposit.StalenessReport, source string, maxAge string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Check\n\n")
	if !report.NeedsAttention() {
		fmt.Fprintf(&b, "Data in %s is up to date.\n", source)
		return b.String()
	}

	if report.Outdated {
		days := int(report.DataAge.Hours() / 24)
		fmt.Fprintf(&b, "- Data outdated. Last update of %s %d days ago (allowed %s).\n", source, days, maxAge)
	}
	for _, d := range report.Expired {
		fmt.Fprintf(&b, "- Expired deposit '%s' at %s, closed %s.\n", d.Name, d.Bank, d.Close)
	}
	return b.String()
}
