package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// timelineCmd holds the flags for the 'timeline' subcommand.
type timelineCmd struct {
	app *App
	src source
	all bool
}

func (*timelineCmd) Name() string     { return "timeline" }
func (*timelineCmd) Synopsis() string { return "display deposits on a timeline around today" }
func (*timelineCmd) Usage() string {
	return `deposits timeline [-f <portfolio.json> | -db <deposits.db>] [-all]

  Lists active deposits by close date, latest first, with the interest
  earned so far and at close, draws each term on a one year axis centered
  on today, and sums up the portfolio.
`
}

func (c *timelineCmd) SetFlags(f *flag.FlagSet) {
	c.src.setFlags(f, c.app.Config)
	f.BoolVar(&c.all, "all", false, "include closed deposits")
}

func (c *timelineCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := c.src.load(ctx)
	if err != nil {
		c.app.Log.Error().Err(err).Str("source", c.src.name()).Msg("cannot load portfolio")
		return subcommands.ExitFailure
	}

	deposits := p.Deposits
	if !c.all {
		deposits = deposit.Active(deposits)
	}
	c.app.printMarkdown(c.app.timeline(deposits))
	return subcommands.ExitSuccess
}

func (a *App) timeline(deposits []deposit.Deposit) string {
	entries := deposit.Timeline(deposits, generic.FromTime(a.Now()))
	return TimelineMarkdown(entries, deposit.Summarize(entries), a.Config.Currency)
}
