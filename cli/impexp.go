package cli

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/store/sqlite"
)

// importCmd loads a JSON portfolio into the database.
type importCmd struct {
	app  *App
	file string
	db   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the database contents with a JSON portfolio" }
func (*importCmd) Usage() string {
	return `deposits import -f <portfolio.json> [-db <deposits.db>]

  Validates the portfolio and replaces every bank and deposit in the
  database with it, in one transaction.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", c.app.Config.PortfolioFile, "portfolio JSON file")
	f.StringVar(&c.db, "db", c.app.Config.DatabasePath, "SQLite database path")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := factory.LoadPortfolioFile(c.file)
	if err != nil {
		c.app.Log.Error().Err(err).Msg("cannot read portfolio")
		return subcommands.ExitFailure
	}

	store, err := sqlite.New(c.db)
	if err != nil {
		c.app.Log.Error().Err(err).Str("db", c.db).Msg("cannot open database")
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.ReplaceAll(ctx, p.Banks, p.Deposits); err != nil {
		c.app.Log.Error().Err(err).Msg("import failed")
		return subcommands.ExitFailure
	}

	c.app.Log.Info().
		Str("db", c.db).
		Int("banks", len(p.Banks)).
		Int("deposits", len(p.Deposits)).
		Msg("portfolio imported")
	return subcommands.ExitSuccess
}

// exportCmd writes the database out as a JSON portfolio.
type exportCmd struct {
	app *App
	db  string
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the database as a JSON portfolio" }
func (*exportCmd) Usage() string {
	return `deposits export [-db <deposits.db>] [-o <portfolio.json>]

  Writes every bank and deposit as a JSON portfolio that 'import' accepts.
  Writes to standard output unless -o is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", c.app.Config.DatabasePath, "SQLite database path")
	f.StringVar(&c.out, "o", "", "output file (default standard output)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := sqlite.New(c.db)
	if err != nil {
		c.app.Log.Error().Err(err).Str("db", c.db).Msg("cannot open database")
		return subcommands.ExitFailure
	}
	defer store.Close()

	p, err := deposit.LoadPortfolio(ctx, store)
	if err != nil {
		c.app.Log.Error().Err(err).Msg("cannot load portfolio")
		return subcommands.ExitFailure
	}

	w := c.app.Out
	if c.out != "" {
		file, err := os.Create(c.out)
		if err != nil {
			c.app.Log.Error().Err(err).Msg("cannot create output file")
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	if err := factory.EncodePortfolio(w, p); err != nil {
		c.app.Log.Error().Err(err).Msg("export failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
