package deposit

import (
	"time"

	"github.com/warp/deposit-engine/generic"
)

// DefaultMaxDataAge is how old the portfolio data may get before it is
// reported as outdated.
const DefaultMaxDataAge = 14 * 24 * time.Hour

// Expired returns the deposits that closed at least one full day before now.
func Expired(deposits []Deposit, now generic.TimePoint) []Deposit {
	var expired []Deposit
	for _, d := range deposits {
		if d.Term().Remaining(now) < 0 {
			expired = append(expired, d)
		}
	}
	return expired
}

// DataAge is how long ago the data was last modified. A zero modified time
// means nothing was ever written and has no age.
func DataAge(modified, now time.Time) time.Duration {
	if modified.IsZero() {
		return 0
	}
	return now.Sub(modified)
}

// IsOutdated reports whether data modified at modified is older than maxAge.
// Data that was never written is not outdated.
func IsOutdated(modified, now time.Time, maxAge time.Duration) bool {
	return !modified.IsZero() && DataAge(modified, now) > maxAge
}

// StalenessReport collects what a periodic check found.
type StalenessReport struct {
	CheckedAt time.Time
	NoData    bool // never written
	DataAge   time.Duration
	Outdated  bool
	Expired   []Deposit
}

// NeedsAttention is true when anything in the report should be acted on.
func (r StalenessReport) NeedsAttention() bool {
	return r.Outdated || len(r.Expired) > 0
}

// CheckStaleness builds a report for the active deposits in deposits.
func CheckStaleness(deposits []Deposit, modified, now time.Time, maxAge time.Duration) StalenessReport {
	return StalenessReport{
		CheckedAt: now,
		NoData:    modified.IsZero(),
		DataAge:   DataAge(modified, now),
		Outdated:  IsOutdated(modified, now, maxAge),
		Expired:   Expired(Active(deposits), generic.FromTime(now)),
	}
}
