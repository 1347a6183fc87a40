// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package flagcore is the public facade (SPEC_FULL.md §4.14): it wires the
// typed value model, sharder, obfuscation codec, configuration model,
// evaluators, assignment cache/emitter and telemetry into a single Client.
package flagcore

import (
	"sync/atomic"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
)

// ConfigStore holds the current Configuration behind an atomic pointer
// (spec.md §5): readers never observe a torn state, and a Swap never
// blocks a concurrent Load. The zero value has no configuration loaded —
// Load returns nil until the first Swap.
type ConfigStore struct {
	ptr atomic.Pointer[model.Configuration]
}

// NewConfigStore returns an empty store, or one pre-loaded with cfg if
// non-nil.
func NewConfigStore(cfg *model.Configuration) *ConfigStore {
	s := &ConfigStore{}
	if cfg != nil {
		s.ptr.Store(cfg)
	}
	return s
}

// Load returns the current Configuration, or nil if none has been set.
func (s *ConfigStore) Load() *model.Configuration {
	return s.ptr.Load()
}

// Swap atomically replaces the current Configuration with cfg and returns
// the previous one (nil if this is the first Swap).
func (s *ConfigStore) Swap(cfg *model.Configuration) *model.Configuration {
	return s.ptr.Swap(cfg)
}
