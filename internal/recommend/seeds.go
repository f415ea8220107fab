// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/toolhub/internal/models"
)

// userInputs are the per-user facts read fresh on every request.
type userInputs struct {
	events []models.InteractionEvent
	cart   []string
}

// fingerprint hashes the inputs. Responses cached under a different
// fingerprint were ranked against another cart or event history.
func (in userInputs) fingerprint() uint64 {
	h := fnv.New64a()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}

	cart := append([]string(nil), in.cart...)
	sort.Strings(cart)
	for _, id := range cart {
		write(id)
	}
	write("|")
	for i := range in.events {
		ev := &in.events[i]
		write(strconv.Itoa(int(ev.Kind)))
		write(ev.ProductID)
		write(ev.ProductName)
		write(ev.Query)
		write(strconv.FormatInt(ev.Timestamp.UnixNano(), 10))
	}
	return h.Sum64()
}

// loadUserInputs fetches the user's events and active cart concurrently.
// Any data-store failure is returned.
func (e *Engine) loadUserInputs(ctx context.Context, userID string) (userInputs, error) {
	var in userInputs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := e.dataProvider.UserEvents(gctx, userID)
		if err != nil {
			return fmt.Errorf("get user events: %w", err)
		}
		in.events = events
		return nil
	})
	g.Go(func() error {
		cart, err := e.dataProvider.ActiveCart(gctx, userID)
		if err != nil {
			return fmt.Errorf("get active cart: %w", err)
		}
		in.cart = cart
		return nil
	})

	if err := g.Wait(); err != nil {
		return userInputs{}, err
	}
	return in, nil
}

// Seeds returns the weighted anchor products of a user. An anonymous user
// or an empty catalog yields an empty set.
func (e *Engine) Seeds(ctx context.Context, userID string) (SeedSet, error) {
	if e.dataProvider == nil {
		return nil, ErrProviderNotSet
	}
	if userID == "" {
		return SeedSet{}, nil
	}

	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.trained() {
		return SeedSet{}, nil
	}

	in, err := e.loadUserInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return extractSeeds(snap, in, e.config.Load(), e.now(), e.logger), nil
}

// extractSeeds combines the seed sources, keeping the maximum weight per
// product. References to products missing from the catalog are skipped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func extractSeeds(snap *model, in userInputs, cfg *Config, now time.Time, logger zerolog.Logger) SeedSet {
	seeds := SeedSet{}
	if !snap.trained() {
		return seeds
	}
	w := cfg.SeedWeights

	for _, id := range in.cart {
		if _, ok := snap.product(id); !ok {
			logUnresolved(logger, "cart", id)
			continue
		}
		seeds.Add(id, w.Cart, models.SourceCartAdd)
	}

	viewCutoff := time.Time{}
	if cfg.RecentViewWindow > 0 {
		viewCutoff = now.Add(-cfg.RecentViewWindow)
	}

	for i := range in.events {
		ev := &in.events[i]
		switch ev.Kind {
		case models.SourceSearchMatch:
			if id, ok := snap.resolver.Resolve(ev.ProductID, ev.ProductName); ok {
				seeds.Add(id, w.SearchMatch, ev.Kind)
			} else {
				logUnresolved(logger, "search", ev.ProductID)
			}

		case models.SourceSearchText:
			if ev.Query == "" {
				continue
			}
			if id, sim, ok := snap.bestTextMatch(ev.Query); ok {
				seeds.Add(id, w.SearchTextDiscount*sim, ev.Kind)
			}

		case models.SourceOrderComplete:
			if id, ok := snap.resolver.Resolve(ev.ProductID, ev.ProductName); ok {
				seeds.Add(id, w.Order, ev.Kind)
			} else {
				logUnresolved(logger, "order", ev.ProductID+ev.ProductName)
			}

		case models.SourceProductView:
			if !viewCutoff.IsZero() && ev.Timestamp.Before(viewCutoff) {
				continue
			}
			if id, ok := snap.resolver.Resolve(ev.ProductID, ev.ProductName); ok {
				seeds.Add(id, w.View, ev.Kind)
			} else {
				logUnresolved(logger, "view", ev.ProductID)
			}

		case models.SourceCartAdd:
			// Historical cart adds feed the matrix only; the active cart is
			// read separately.
		}
	}

	return seeds
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func logUnresolved(logger zerolog.Logger, source, ref string) {
	logger.Debug().
		Str("source", source).
		Str("ref", ref).
		Err(ErrUnresolvableReference).
		Msg("skipping seed")
}
