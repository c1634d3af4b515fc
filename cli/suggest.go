package cli

import (
	"context"
	"flag"
	"slices"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/deposit"
)

// suggestCmd holds the flags for the 'suggest' subcommand.
type suggestCmd struct {
	app        *App
	src        source
	byBenefit  bool
	minBenefit string
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest moving deposits to better paying banks" }
func (*suggestCmd) Usage() string {
	return `deposits suggest [-f <portfolio.json> | -db <deposits.db>] [-by-benefit] [-min-benefit <amount>]

  For each active deposit, suggests closing it and reopening the money at
  the best bank whose diversification bounds allow it, when the extra
  interest net of the transfer commission reaches the minimum benefit.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	c.src.setFlags(f, c.app.Config)
	f.BoolVar(&c.byBenefit, "by-benefit", false, "order suggestions by benefit instead of portfolio order")
	f.StringVar(&c.minBenefit, "min-benefit", "", "smallest benefit worth suggesting (default from MIN_BENEFIT)")
}

func (c *suggestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, err := c.src.load(ctx)
	if err != nil {
		c.app.Log.Error().Err(err).Str("source", c.src.name()).Msg("cannot load portfolio")
		return subcommands.ExitFailure
	}

	adv := c.app.advisor()
	if c.minBenefit != "" {
		threshold, err := decimal.NewFromString(c.minBenefit)
		if err != nil {
			c.app.Log.Error().Err(err).Msg("invalid -min-benefit")
			return subcommands.ExitUsageError
		}
		adv.MinBenefit = threshold
	}

	advice, err := adv.SuggestReallocations(deposit.Active(p.Deposits), p.Banks)
	if err != nil {
		c.app.Log.Error().Err(err).Msg("cannot compute suggestions")
		return subcommands.ExitFailure
	}
	if c.byBenefit {
		slices.SortStableFunc(advice.Suggestions, deposit.ByBenefit)
	}

	c.app.printMarkdown(SuggestionsMarkdown(advice, c.app.Config.Currency))
	return subcommands.ExitSuccess
}
