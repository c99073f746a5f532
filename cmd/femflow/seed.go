package main

import (
	"fmt"
	"os"

	"femflow/internal/app"
	"femflow/internal/generator"
	"femflow/internal/infra/config"
	"femflow/internal/infra/logger"

	"github.com/spf13/cobra"
)

var (
	seedCount   int
	seedWorkers int
	seedBackend string
)

// seedCmd replaces the stored records with a fresh mock batch
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the stored records with freshly generated mock records",
	Long: `Generates mock cycle records, deletes every record already in the target
store, inserts the new batch and prints a report with one sample record.

Example:
  femflow seed --count 200 --workers 4`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "number of records to generate (default SEED_COUNT)")
	seedCmd.Flags().IntVar(&seedWorkers, "workers", 0, "generator workers (default SEED_WORKERS)")
	seedCmd.Flags().StringVar(&seedBackend, "backend", "", "target store: mongo or postgres (default SEED_BACKEND)")
}

// applySeedFlags overrides configuration with explicitly set flags.
func applySeedFlags(cmd *cobra.Command, c *config.AppConfig) error {
	if cmd.Flags().Changed("count") {
		if seedCount <= 0 {
			return fmt.Errorf("--count must be positive, got %d", seedCount)
		}
		c.SeedCount = seedCount
	}
	if cmd.Flags().Changed("workers") {
		if seedWorkers <= 0 {
			return fmt.Errorf("--workers must be positive, got %d", seedWorkers)
		}
		c.SeedWorkers = seedWorkers
	}
	if cmd.Flags().Changed("backend") {
		switch seedBackend {
		case config.BackendMongo:
		case config.BackendPostgres:
			if c.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set (required for the %s backend)", config.BackendPostgres)
			}
		default:
			return fmt.Errorf("invalid --backend %q: expected %s or %s", seedBackend, config.BackendMongo, config.BackendPostgres)
		}
		c.SeedBackend = seedBackend
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := applySeedFlags(cmd, cfg); err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logger.Component("seed").WithField("backend", cfg.SeedBackend)

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	gen := generator.New(generator.Config{Seed: cfg.GeneratorSeed})
	svc := app.NewSeedService(gen, s.repo, s.target, cfg.SeedWorkers, nil, log)

	report, err := svc.Seed(ctx, cfg.SeedCount)
	if err != nil {
		return err
	}
	return report.Print(os.Stdout)
}
