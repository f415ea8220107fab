// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package events keeps the recommendation engine in step with the storefront
through Watermill messages.

# Topics

	catalog.changed       -> Engine.Train
	interaction.recorded  -> Engine.InvalidateUser, Engine.InvalidateMatrix (debounced)

Payloads are JSON (goccy/go-json). A payload that fails to decode or
validate is acknowledged and counted as a failure; it is never retried.

# Transports

  - memory: Watermill GoChannel, single process only
  - nats: watermill-nats JetStream publisher and durable subscriber bound to
    the TOOLHUB_EVENTS stream, which is provisioned on startup
  - embedded: a NATS JetStream server started in-process, then as nats

# Delivery

Handlers run behind Recoverer and exponential Retry. A catalog change that
arrives while a training run holds the lock is retried until the run ends.
Messages that still fail after the last retry are logged and acknowledged:
periodic training bounds how stale the model can get.

# Publishing

Notifier publishes typed events and sets Nats-Msg-Id from the event id so
JetStream drops duplicate publishes.
*/
package events
