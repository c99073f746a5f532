package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"femflow/internal/infra/config"
	"femflow/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// cfg is loaded once before any subcommand runs
	cfg *config.AppConfig
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "femflow",
	Short: "Seed a document store with mock menstrual cycle records and run query demos",
	Long: `femflow generates synthetic menstrual cycle tracking records, loads them
into MongoDB (or a PostgreSQL mirror) and demonstrates common queries
against the seeded collection.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
		logger.Init(cfg)
		logger.Log.WithFields(logrus.Fields{
			"environment": cfg.Environment,
			"log_level":   cfg.LogLevel,
			"command":     cmd.Name(),
		}).Debug("Configuration loaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, examplesCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Log.WithError(err).Fatal("femflow failed")
	}
}
