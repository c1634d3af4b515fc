/*
Package cli implements the deposits command line tool.

COMMANDS:

	report     timeline followed by suggestions (the default view)
	suggest    reallocation suggestions
	timeline   deposits on a timeline around today, with the summary
	check      outdated data and expired deposits; exit status 1 on warnings
	import     load a JSON portfolio into the SQLite database
	export     write the database back out as a JSON portfolio

DATA SOURCE:

	Every reading command takes -f <portfolio.json> or -db <deposits.db>.
	With a file, the data age is the file modification time; with a
	database, it is the time of its last write.

OUTPUT:

	Reports are markdown, rendered for the terminal with glamour unless
	-plain is given.
*/
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/warp/deposit-engine/config"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/store/sqlite"
)

// App carries what every command shares.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Out    io.Writer
	Plain  bool
	Now    func() time.Time
}

func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Log:    log.With().Str("component", "cli").Logger(),
		Out:    os.Stdout,
		Now:    time.Now,
	}
}

// Commands lists every command bound to a.
func (a *App) Commands() []subcommands.Command {
	return []subcommands.Command{
		&reportCmd{app: a},
		&suggestCmd{app: a},
		&timelineCmd{app: a},
		&checkCmd{app: a},
		&importCmd{app: a},
		&exportCmd{app: a},
	}
}

// Register the subcommands.
func (a *App) Register(c *subcommands.Commander) {
	for _, cmd := range a.Commands() {
		group := "reports"
		switch cmd.Name() {
		case "import", "export":
			group = "data"
		}
		c.Register(cmd, group)
	}
}

// printMarkdown writes md to the app output, styled for the terminal unless
// Plain is set or styling fails.
func (a *App) printMarkdown(md string) {
	if a.Plain {
		fmt.Fprint(a.Out, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(140))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(a.Out, out)
			return
		}
	}
	a.Log.Debug().Err(err).Msg("markdown rendering failed, printing raw")
	fmt.Fprint(a.Out, md)
}

func (a *App) advisor() *deposit.Advisor {
	adv := deposit.NewAdvisor(a.Log)
	adv.MinBenefit = a.Config.MinBenefit
	adv.Now = func() generic.TimePoint { return generic.FromTime(a.Now()) }
	return adv
}

// =============================================================================
// DATA SOURCE
// =============================================================================

// source holds the -f / -db flags shared by reading commands.
type source struct {
	file string
	db   string
}

func (s *source) setFlags(f *flag.FlagSet, cfg *config.Config) {
	f.StringVar(&s.file, "f", cfg.PortfolioFile, "portfolio JSON file")
	f.StringVar(&s.db, "db", "", "read from this SQLite database instead of -f")
}

func (s *source) name() string {
	if s.db != "" {
		return s.db
	}
	return s.file
}

// load returns the portfolio and when its data was last modified.
func (s *source) load(ctx context.Context) (*deposit.Portfolio, time.Time, error) {
	if s.db != "" {
		store, err := sqlite.New(s.db)
		if err != nil {
			return nil, time.Time{}, err
		}
		defer store.Close()

		p, err := deposit.LoadPortfolio(ctx, store)
		if err != nil {
			return nil, time.Time{}, err
		}
		if err := p.Validate(); err != nil {
			return nil, time.Time{}, fmt.Errorf("%s: %w", s.db, err)
		}
		modified, err := store.LastModified(ctx)
		return p, modified, err
	}

	info, err := os.Stat(s.file)
	if err != nil {
		return nil, time.Time{}, err
	}
	p, err := factory.LoadPortfolioFile(s.file)
	if err != nil {
		return nil, time.Time{}, err
	}
	return p, info.ModTime(), nil
}
