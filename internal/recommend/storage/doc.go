// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package storage persists trained recommendation model snapshots.
//
// A Snapshot holds the catalog and the fitted TF-IDF feature space so a
// restarted service can serve content recommendations before its first
// training run completes.
//
// # Storage Format
//
// Snapshots are gob encoded, gzip compressed and stored in BadgerDB under
// a zero-padded version key. Each version carries JSON metadata with the
// SHA-256 checksum of the uncompressed payload; Load verifies it before
// decoding. The newest Retain versions are kept.
//
// # Usage Example
//
//	store, err := storage.Open(storage.Options{Path: "/data/snapshots"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	meta, err := store.Save(ctx, snap)
//	restored, meta, err := store.Load(ctx)
//	if errors.Is(err, storage.ErrNoSnapshot) {
//	    // cold start
//	}
package storage
