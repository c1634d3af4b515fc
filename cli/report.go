package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/deposit"
)

// reportCmd prints the timeline then the suggestions.
type reportCmd struct {
	app *App
	src source
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the timeline followed by suggestions" }
func (*reportCmd) Usage() string {
	return `deposits report [-f <portfolio.json> | -db <deposits.db>]

  Same as 'timeline' then 'suggest' on the same data.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.src.setFlags(f, c.app.Config)
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := c.src.load(ctx)
	if err != nil {
		c.app.Log.Error().Err(err).Str("source", c.src.name()).Msg("cannot load portfolio")
		return subcommands.ExitFailure
	}

	active := deposit.Active(p.Deposits)
	advice, err := c.app.advisor().SuggestReallocations(active, p.Banks)
	if err != nil {
		c.app.Log.Error().Err(err).Msg("cannot compute suggestions")
		return subcommands.ExitFailure
	}

	c.app.printMarkdown(c.app.timeline(active) + "\n" + SuggestionsMarkdown(advice, c.app.Config.Currency))
	return subcommands.ExitSuccess
}
