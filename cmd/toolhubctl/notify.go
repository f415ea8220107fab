// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/events"
	"github.com/tomtom215/toolhub/internal/models"
)

func newNotifyCmd(d *deps) *cobra.Command {
	cfg := config.EventsConfig{
		Transport:        events.TransportNATS,
		NATSURL:          "nats://127.0.0.1:4222",
		CatalogTopic:     events.DefaultCatalogTopic,
		InteractionTopic: events.DefaultInteractionTopic,
		DurableName:      "toolhubctl",
		CloseTimeout:     5 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Publish storefront events to a Toolhub server",
		Long: `Publish catalog and interaction events to the NATS JetStream stream a
Toolhub server consumes.

Subcommands:
  catalog      - announce a catalog change (retrains the model)
  interaction  - record one shopper interaction (refreshes that user)`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL")
	flags.StringVar(&cfg.CatalogTopic, "catalog-topic", cfg.CatalogTopic, "catalog change topic")
	flags.StringVar(&cfg.InteractionTopic, "interaction-topic", cfg.InteractionTopic, "interaction topic")

	publish := func(cmd *cobra.Command, send func(n *events.Notifier) error) error {
		transport, err := d.openTransport(cmd.Context(), &cfg)
		if err != nil {
			return err
		}
		defer func() { _ = transport.Close() }()

		return send(events.NewNotifier(transport.Publisher, cfg.CatalogTopic, cfg.InteractionTopic))
	}

	cmd.AddCommand(newNotifyCatalogCmd(publish))
	cmd.AddCommand(newNotifyInteractionCmd(publish))
	return cmd
}

type publishFunc func(cmd *cobra.Command, send func(n *events.Notifier) error) error

func newNotifyCatalogCmd(publish publishFunc) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "catalog [product-id...]",
		Short: "Announce a catalog change",
		Example: `  toolhubctl notify catalog --reason import
  toolhubctl notify catalog --reason product_updated p-drill-18v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			event := events.NewCatalogChanged(reason, args...)
			if err := publish(cmd, func(n *events.Notifier) error { return n.CatalogChanged(event) }); err != nil {
				return fmt.Errorf("publish catalog change: %w", err)
			}
			writeLine(cmd.OutOrStdout(), "published catalog change "+event.EventID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "manual", "reason recorded on the event")
	return cmd
}

func newNotifyInteractionCmd(publish publishFunc) *cobra.Command {
	var userID, kindName, productID, query string

	cmd := &cobra.Command{
		Use:   "interaction",
		Short: "Record one shopper interaction",
		Example: `  toolhubctl notify interaction --user alice --kind cart_add --product p-drill-18v
  toolhubctl notify interaction --user alice --kind search_text --query "cordless drill"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, ok := models.ParseSourceKind(kindName)
			if !ok {
				return fmt.Errorf("unknown interaction kind %q, want one of %s", kindName, kindNames())
			}

			event := events.NewInteractionRecorded(userID, kind, productID)
			event.Query = query
			if err := event.Validate(); err != nil {
				return err
			}

			if err := publish(cmd, func(n *events.Notifier) error { return n.InteractionRecorded(event) }); err != nil {
				return fmt.Errorf("publish interaction: %w", err)
			}
			writeLine(cmd.OutOrStdout(), "published interaction "+event.EventID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&userID, "user", "", "user id (required)")
	flags.StringVar(&kindName, "kind", "", "interaction kind: "+kindNames())
	flags.StringVar(&productID, "product", "", "product id")
	flags.StringVar(&query, "query", "", "search text for search_text interactions")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func kindNames() string {
	kinds := models.AllSourceKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
