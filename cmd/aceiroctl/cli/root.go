package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appcli "aceiro/internal/cli"
	"aceiro/internal/config"
	applog "aceiro/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "aceiroctl",
	Short: "aceiroctl: incident data operator tool",
	Long: `aceiroctl loads the incident tables with the same validation rules as
the dashboard. Use it to print the aggregate tables or to copy a CSV
directory into the SQLite snapshot the dashboard can serve from.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(importCmd)
}

// setup loads .env and the environment configuration and builds a logger.
func setup() (*config.Config, *applog.Logger, error) {
	appcli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, appcli.SetupLogger(cfg).WithComponent(applog.ComponentCLI), nil
}
