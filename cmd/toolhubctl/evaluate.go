// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/recommend/evaluation"
)

func newEvaluateCmd(d *deps) *cobra.Command {
	var (
		dbPath   string
		asJSON   bool
		opts     = evaluation.DefaultOptions()
		maxMem   string
		seedDemo bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate category prediction with TF-IDF nearest neighbors",
		Long: `Evaluate holds out part of the catalog, predicts each held-out product's
category by majority vote of its nearest TF-IDF neighbors, and reports
weighted precision, recall, F1 and the confusion matrix.

Examples:
  toolhubctl evaluate --db /data/toolhub.duckdb
  toolhubctl evaluate --db /data/toolhub.duckdb --k 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}

			db, err := d.openDB(&config.DatabaseConfig{
				Path:      dbPath,
				MaxMemory: maxMem,
				ReadOnly:  !seedDemo,
			})
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ctx := cmd.Context()
			if seedDemo {
				if err := db.SeedDemoData(ctx); err != nil {
					return fmt.Errorf("seed demo catalog: %w", err)
				}
			}

			products, err := db.ListProducts(ctx)
			if err != nil {
				return fmt.Errorf("load products: %w", err)
			}

			report, err := evaluation.Evaluate(ctx, products, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("encode report: %w", err)
				}
				writeLine(out, string(data))
				return nil
			}
			return report.WriteText(out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dbPath, "db", "/data/toolhub.duckdb", "storefront DuckDB database")
	flags.StringVar(&maxMem, "max-memory", "512MB", "DuckDB memory limit")
	flags.BoolVar(&seedDemo, "seed-demo", false, "open read-write and load the demo catalog into an empty database")
	flags.BoolVar(&asJSON, "json", false, "print the report as JSON")
	flags.Float64Var(&opts.TestFraction, "test-fraction", opts.TestFraction, "share of products held out")
	flags.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed for the split")
	flags.IntVar(&opts.K, "k", opts.K, "neighbors voting on a category")
	flags.IntVar(&opts.MaxFeatures, "max-features", opts.MaxFeatures, "TF-IDF vocabulary cap, 0 for unlimited")
	flags.BoolVar(&opts.StopWords, "stop-words", opts.StopWords, "drop English stop words")

	return cmd
}
