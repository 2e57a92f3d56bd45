package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"tenantmove/internal/agent"
	"tenantmove/internal/config"
	"tenantmove/internal/logging"
)

func main() {
	var (
		dryRun    = pflag.Bool("dry-run", false, "resolve records but delete nothing and do not reset")
		skipReset = pflag.Bool("skip-reset", false, "run the full cleanup but leave the machine unwiped")
		logLevel  = pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	pflag.Parse()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logging.New(cfg.Agent.RunLogPath, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	a := agent.New(cfg, log, agent.Options{DryRun: *dryRun, SkipReset: *skipReset})
	if err := a.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("tenant move failed")
		closeLog()
		os.Exit(1)
	}
}
