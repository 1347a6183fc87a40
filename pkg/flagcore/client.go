// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package flagcore

import (
	"fmt"
	"time"

	"github.com/flagcore/go-flagcore/pkg/flagcore/assignment"
	"github.com/flagcore/go-flagcore/pkg/flagcore/eval"
	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/precomputed"
	"github.com/flagcore/go-flagcore/pkg/flagcore/sharder"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// Client is the public entry point (SPEC_FULL.md §4.14): it wires the
// sharder, obfuscation adapter, standard and precomputed evaluators, the
// assignment cache/emitter and telemetry into typed accessor methods. The
// logger installed with WithLogger is held but not written to by any
// evaluation path. Client is the convenience wrapper spec.md §9 says sits on top
// of the core — every evaluator and model package underneath it is
// independently usable without a Client.
type Client struct {
	cfg *config

	store            *ConfigStore
	precomputedStore *PrecomputedStore

	standard    eval.StandardEvaluator
	precomputed precomputed.Evaluator
	emitter     assignment.Emitter
	cache       assignment.Cache
}

// PrecomputedStore holds the current PrecomputedConfiguration behind an
// atomic pointer, mirroring ConfigStore (SPEC_FULL.md §4.13).
type PrecomputedStore struct {
	current *model.PrecomputedConfiguration
}

// NewClient builds a Client from the given options. A freshly constructed
// Client has no configuration loaded; SetConfiguration or
// SetPrecomputedConfiguration must be called before any accessor returns
// anything but the caller's default.
func NewClient(opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	cache := cfg.cache
	if cache == nil {
		if cfg.assignmentCacheEnabled {
			cache = assignment.NewMapCache()
		} else {
			cache = assignment.NullCache{}
		}
	}

	return &Client{
		cfg:   cfg,
		store: NewConfigStore(nil),
		standard: eval.StandardEvaluator{
			Sharder: sharder.MD5{},
		},
		cache: cache,
		emitter: assignment.Emitter{
			Cache:     cache,
			Sink:      cfg.sink,
			Telemetry: cfg.telemetry,
			Metadata: assignment.Metadata{
				SDKName:     cfg.sdkName,
				SDKVersion:  cfg.sdkVersion,
				Environment: cfg.environment,
			},
		},
	}
}

// SetConfiguration atomically installs cfg as the current flag
// configuration (SPEC_FULL.md §4.13), replacing whatever was loaded
// before. The Configuration's own Obfuscated field selects plaintext or
// obfuscated evaluation; the WithObfuscated option is consulted only while
// no configuration is loaded.
func (c *Client) SetConfiguration(cfg *model.Configuration) {
	c.store.Swap(cfg)
}

// SetPrecomputedConfiguration installs cfg as the current precomputed
// configuration, consulted by the precomputed accessor paths.
func (c *Client) SetPrecomputedConfiguration(cfg *model.PrecomputedConfiguration) {
	c.precomputedStore = &PrecomputedStore{current: cfg}
}

func (c *Client) configView() eval.ConfigView {
	cfg := c.store.Load()
	if cfg == nil {
		cfg = &model.Configuration{Obfuscated: c.cfg.obfuscated}
	}
	if cfg.Obfuscated {
		return eval.NewObfuscatedView(cfg)
	}
	return eval.PlaintextView{Config: cfg}
}

// assign runs the standard evaluator pipeline for requestedType and
// returns the resolved value, or defaultValue on every failure path
// (spec.md §4.7/§7).
func (c *Client) assign(flagKey string, subject model.Subject, requestedType model.VariationType, defaultValue value.Value) value.Value {
	now := time.Now()
	result := c.standard.Evaluate(c.configView(), flagKey, subject, requestedType, now)

	if result.DegradedRegex {
		c.cfg.telemetry.IncDegradedRegex(flagKey)
	}

	if !result.Matched {
		return defaultValue
	}

	c.cfg.telemetry.IncAssignment(flagKey)

	if result.Allocation.DoLog {
		c.emitter.Emit(flagKey, result.Allocation.Key, result.Variation.Key, subject, result.Split.ExtraLogging, now)
	}

	return result.Value
}

// BoolValue implements the BOOLEAN typed accessor (SPEC_FULL.md §4.14).
func (c *Client) BoolValue(flagKey string, subject model.Subject, defaultValue bool) bool {
	v := c.assign(flagKey, subject, model.Boolean, value.Bool(defaultValue))
	b, err := v.Bool()
	if err != nil {
		return defaultValue
	}
	return b
}

// IntValue implements the INTEGER typed accessor.
func (c *Client) IntValue(flagKey string, subject model.Subject, defaultValue int64) int64 {
	v := c.assign(flagKey, subject, model.Integer, value.Numeric(float64(defaultValue)))
	n, err := v.Int()
	if err != nil {
		return defaultValue
	}
	return n
}

// NumericValue implements the NUMERIC typed accessor.
func (c *Client) NumericValue(flagKey string, subject model.Subject, defaultValue float64) float64 {
	v := c.assign(flagKey, subject, model.Numeric, value.Numeric(defaultValue))
	n, err := v.Numeric()
	if err != nil {
		return defaultValue
	}
	return n
}

// StringValue implements the STRING typed accessor.
func (c *Client) StringValue(flagKey string, subject model.Subject, defaultValue string) string {
	v := c.assign(flagKey, subject, model.String, value.String(defaultValue))
	s, err := v.String()
	if err != nil {
		return defaultValue
	}
	return s
}

// JSONStringValue implements the JSON typed accessor. The variation value
// is returned as-is (a JSON text), per spec.md §4.7 step 6.
func (c *Client) JSONStringValue(flagKey string, subject model.Subject, defaultValue string) string {
	v := c.assign(flagKey, subject, model.JSON, value.String(defaultValue))
	s, err := v.String()
	if err != nil {
		return defaultValue
	}
	return s
}

// PrecomputedValue reads from the precomputed path (C9) instead of the
// standard evaluator. It is the only precomputed accessor: the caller
// passes the requested type and a default Value; there are no typed
// precomputed accessors.
func (c *Client) PrecomputedValue(flagKey string, requestedType model.VariationType, defaultValue value.Value) value.Value {
	if c.precomputedStore == nil || c.precomputedStore.current == nil {
		return defaultValue
	}

	result := c.precomputed.Evaluate(c.precomputedStore.current, flagKey, requestedType)
	if !result.Matched {
		return defaultValue
	}

	c.cfg.telemetry.IncAssignment(flagKey)

	if result.DoLog && result.LogEligible {
		subject := c.precomputedStore.current.Subject
		c.emitter.Emit(flagKey, result.AllocationKey, result.VariationKey, subject, result.ExtraLogging, time.Now())
	}

	return result.Value
}

// String implements fmt.Stringer for debugging convenience.
func (c *Client) String() string {
	return fmt.Sprintf("flagcore.Client{sdk=%s/%s obfuscated=%v}", c.cfg.sdkName, c.cfg.sdkVersion, c.cfg.obfuscated)
}
