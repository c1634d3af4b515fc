package cli

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/deposit"
)

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct {
	app    *App
	src    source
	maxAge time.Duration
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "warn about outdated data and expired deposits" }
func (*checkCmd) Usage() string {
	return `deposits check [-f <portfolio.json> | -db <deposits.db>] [-max-age <duration>]

  Warns when the data was last modified longer ago than -max-age, or when an
  active deposit is past its close date. Exits with status 1 on any warning,
  so it can run from cron.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	c.src.setFlags(f, c.app.Config)
	f.DurationVar(&c.maxAge, "max-age", c.app.Config.StaleAfter, "how old the data may be")
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, modified, err := c.src.load(ctx)
	if err != nil {
		c.app.Log.Error().Err(err).Str("source", c.src.name()).Msg("cannot load portfolio")
		return subcommands.ExitFailure
	}

	report := deposit.CheckStaleness(p.Deposits, modified, c.app.Now(), c.maxAge)
	c.app.printMarkdown(CheckMarkdown(report, c.src.name(), c.maxAge.String()))

	if report.NeedsAttention() {
		c.app.Log.Warn().
			Bool("outdated", report.Outdated).
			Int("expired", len(report.Expired)).
			Msg("portfolio needs attention")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
