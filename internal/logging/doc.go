// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package logging provides centralized zerolog-based structured logging for Toolhub.
//
// Every component logs through one zerolog pipeline: JSON for production,
// console output for development. Libraries with their own logging
// interfaces are bridged onto the same logger:
//
//   - SlogHandler / NewSlogLogger feed sutureslog (supervisor tree events)
//   - WatermillAdapter feeds the Watermill router, publishers and subscribers
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Recommendation request failed")
//
// # Configuration
//
// The level, format and caller flag come from the logging section of the
// service configuration (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
// # Context Propagation
//
// HTTP middleware stores a request ID in the request context and the
// trainer stores a correlation ID per training run. Ctx and CtxWith copy
// both into the emitted entries.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written. Prefer typed fields over Msgf.
package logging
