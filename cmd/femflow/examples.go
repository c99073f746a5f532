package main

import (
	"os"

	"femflow/internal/app"
	"femflow/internal/infra/logger"

	"github.com/spf13/cobra"
)

// examplesCmd runs the query demonstrations against MongoDB
var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Run query demonstrations against the seeded MongoDB collection",
	Long: `Runs eight query demonstrations in order: basic queries, conditional
filters, sorting and limits, projection, aggregation, updates, deletes
(reported as a dry run) and indexes.

Run "femflow seed" first so the collection has records to query.`,
	Args: cobra.NoArgs,
	RunE: runExamples,
}

func runExamples(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repo, s, err := openMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	return app.NewQueryExamples(repo, os.Stdout, logger.Component("examples")).Run(ctx)
}
