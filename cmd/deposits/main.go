// Command deposits reports on a term-deposit portfolio: timeline, reallocation
// suggestions and staleness checks. Run 'deposits help' for the commands.
//
// Configuration comes from the environment and .env (see package config);
// LOG_LEVEL=debug shows every advisor decision on standard error.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"github.com/warp/deposit-engine/cli"
	"github.com/warp/deposit-engine/config"
	"github.com/warp/deposit-engine/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(l)

	name := path.Base(os.Args[0])
	plain := flag.Bool("plain", false, "print raw markdown instead of styled output")

	app := cli.NewApp(cfg, l)
	app.Completion(flag.CommandLine).Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	app.Register(commander)

	flag.Parse()
	app.Plain = *plain
	os.Exit(int(commander.Execute(context.Background())))
}
