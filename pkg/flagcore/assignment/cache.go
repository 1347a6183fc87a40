// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package assignment implements spec.md §4.9–§4.10 (C10, C11): the
// at-most-once assignment-log dedup cache and the emitter that composes
// and dispatches AssignmentEvents. The cache's locking is adapted from
// the mutex-guarded map used by pkg/lrucache.Cache in this module's
// ancestor, simplified to a check-and-set contract — no TTL or eviction
// is needed for a dedup set scoped to a single evaluator's lifetime.
package assignment

import "sync"

// Cache implements spec.md §4.9 (C10): ShouldLog atomically returns true
// exactly once per distinct key across the cache's lifetime.
type Cache interface {
	ShouldLog(key string) bool
}

// MapCache is a thread-safe Cache backed by a plain set. Its lifecycle is
// tied to whatever owns it — typically one Client instance.
type MapCache struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

var _ Cache = (*MapCache)(nil)

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{seen: make(map[string]struct{})}
}

// ShouldLog implements Cache.
func (c *MapCache) ShouldLog(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	return true
}

// NullCache is the "always log" cache (spec.md §4.9): every call returns
// true, regardless of how many times the same key has been seen.
type NullCache struct{}

var _ Cache = NullCache{}

// ShouldLog implements Cache.
func (NullCache) ShouldLog(string) bool { return true }
