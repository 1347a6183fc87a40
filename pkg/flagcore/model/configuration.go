// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flagcore/go-flagcore/pkg/schema"
)

// Configuration is the full in-memory flag configuration (spec.md §3). It
// is immutable once constructed — evaluation only ever reads it. Safe for
// concurrent reads; see ConfigStore for how a new Configuration replaces
// an old one without a readers-visible torn state.
type Configuration struct {
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	Format      Format           `json:"format"`
	Obfuscated  bool             `json:"obfuscated"`
	Environment *Environment     `json:"environment,omitempty"`
	Flags       map[string]Flag  `json:"flags"`
}

// ParseConfiguration validates raw against the embedded flag-config JSON
// Schema and, on success, decodes it into a Configuration. Schema failure,
// an unparseable document, or an unknown top-level format are surfaced
// construction errors (spec.md §7) — the resulting error must cause the
// caller to reject the configuration outright rather than hand a partial
// one to an evaluator.
func ParseConfiguration(raw []byte) (*Configuration, error) {
	if err := schema.Validate(schema.FlagConfig, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("model: invalid flag configuration: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var cfg Configuration
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("model: decode flag configuration: %w", err)
	}

	switch cfg.Format {
	case FormatServer, FormatClient:
	default:
		return nil, fmt.Errorf("model: unknown configuration format %q", cfg.Format)
	}

	for key, flag := range cfg.Flags {
		if !flag.VariationType.Valid() {
			return nil, fmt.Errorf("model: flag %q has unknown variationType %q", key, flag.VariationType)
		}
	}

	return &cfg, nil
}

// Flag looks up a flag by its raw map key (already MD5-hashed by the
// caller when Obfuscated is true — see the eval package's obfuscated
// adapter, C12).
func (c *Configuration) Flag(key string) (Flag, bool) {
	if c == nil {
		return Flag{}, false
	}
	f, ok := c.Flags[key]
	return f, ok
}
