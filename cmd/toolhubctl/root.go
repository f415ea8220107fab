// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/database"
	"github.com/tomtom215/toolhub/internal/events"
	"github.com/tomtom215/toolhub/internal/logging"
)

// deps are the external resources the commands open. Tests replace them.
type deps struct {
	openDB        func(cfg *config.DatabaseConfig) (*database.DB, error)
	openTransport func(ctx context.Context, cfg *config.EventsConfig) (*events.Transport, error)
}

func defaultDeps() *deps {
	return &deps{
		openDB: database.New,
		openTransport: func(ctx context.Context, cfg *config.EventsConfig) (*events.Transport, error) {
			return events.NewTransport(ctx, cfg, logging.NewWatermillAdapter(logging.WithComponent("toolhubctl")))
		},
	}
}

func newRootCmd(d *deps) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "toolhubctl",
		Short:         "Toolhub operator CLI",
		Long:          `toolhubctl evaluates the Toolhub content model and publishes storefront events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg := logging.DefaultConfig()
			cfg.Level = logLevel
			cfg.Format = "console"
			cfg.Output = cmd.ErrOrStderr()
			logging.Init(cfg)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newEvaluateCmd(d))
	root.AddCommand(newNotifyCmd(d))
	return root
}

// writeLine writes s and a newline, ignoring errors like fmt.Fprintln.
func writeLine(w io.Writer, s string) {
	_, _ = io.WriteString(w, s+"\n")
}
