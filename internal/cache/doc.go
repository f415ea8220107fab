// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package cache provides a generic, thread-safe LRU cache with TTL expiry.
//
// The recommendation engine uses it to memoize per-user responses between
// model refreshes:
//
//	c := cache.NewLRU[string, []string](1024, 30*time.Second)
//	c.Add("user-42", ids)
//	if ids, ok := c.Get("user-42"); ok {
//	    // served from cache
//	}
//
// Expired entries are collected lazily on Get, or eagerly with
// CleanupExpired.
package cache
