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

	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
	"github.com/flagcore/go-flagcore/pkg/schema"
)

// PrecomputedFlag is a server-precomputed result for a single (subject,
// flag) tuple (spec.md §3). VariationValue is kept as a raw JSON token
// because its shape depends on VariationType (spec.md §4.8): numeric/
// boolean are carried directly, string/JSON are base64-encoded strings.
// The precomputed evaluator base64-decodes string/JSON values whatever the
// Obfuscated field says.
type PrecomputedFlag struct {
	AllocationKey  *string           `json:"allocationKey,omitempty"`
	VariationKey   *string           `json:"variationKey,omitempty"`
	VariationType  VariationType     `json:"variationType"`
	VariationValue json.RawMessage   `json:"variationValue"`
	ExtraLogging   map[string]string `json:"extraLogging,omitempty"`
	DoLog          bool              `json:"doLog"`
}

// precomputedConfigWire is the inner "response" document embedded as a
// JSON string inside the outer envelope (spec.md §6).
type precomputedConfigWire struct {
	CreatedAt   *time.Time                  `json:"createdAt,omitempty"`
	Format      Format                      `json:"format"`
	Salt        string                      `json:"salt"`
	Obfuscated  bool                        `json:"obfuscated"`
	Environment *Environment                `json:"environment,omitempty"`
	Flags       map[string]PrecomputedFlag  `json:"flags"`
}

// subjectAttributesWire mirrors the envelope's split representation of
// subject attributes (spec.md §6): categorical (string) and numeric
// attributes are carried in separate maps on the wire.
type subjectAttributesWire struct {
	CategoricalAttributes map[string]string  `json:"categoricalAttributes"`
	NumericAttributes     map[string]float64 `json:"numericAttributes"`
}

type precomputedEnvelopeWire struct {
	Version     int    `json:"version"`
	Precomputed struct {
		SubjectKey        string                `json:"subjectKey"`
		SubjectAttributes subjectAttributesWire `json:"subjectAttributes"`
		FetchedAt         time.Time             `json:"fetchedAt"`
		Response          string                `json:"response"`
	} `json:"precomputed"`
}

// PrecomputedConfiguration is constructed once per (subject, fetch) tuple
// and is immutable thereafter (spec.md §3).
type PrecomputedConfiguration struct {
	Flags       map[string]PrecomputedFlag
	Salt        string
	Format      Format
	Obfuscated  bool
	CreatedAt   *time.Time
	FetchedAt   time.Time
	Environment *Environment
	Subject     Subject
}

// ParsePrecomputedEnvelope validates raw against the embedded
// precomputed-envelope JSON Schema, decodes the outer envelope, then
// decodes its embedded "response" document into the precomputed
// configuration proper (spec.md §6).
func ParsePrecomputedEnvelope(raw []byte) (*PrecomputedConfiguration, error) {
	if err := schema.Validate(schema.PrecomputedEnvelope, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("model: invalid precomputed envelope: %w", err)
	}

	var envelope precomputedEnvelopeWire
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("model: decode precomputed envelope: %w", err)
	}

	var inner precomputedConfigWire
	if err := json.Unmarshal([]byte(envelope.Precomputed.Response), &inner); err != nil {
		return nil, fmt.Errorf("model: decode embedded precomputed response: %w", err)
	}

	if inner.Format != FormatPrecomputed {
		return nil, fmt.Errorf("model: unknown precomputed response format %q", inner.Format)
	}

	for key, flag := range inner.Flags {
		if !flag.VariationType.Valid() {
			return nil, fmt.Errorf("model: precomputed flag %q has unknown variationType %q", key, flag.VariationType)
		}
	}

	subject := Subject{
		Key:        envelope.Precomputed.SubjectKey,
		Attributes: subjectAttributesFromWire(envelope.Precomputed.SubjectAttributes),
	}

	return &PrecomputedConfiguration{
		Flags:       inner.Flags,
		Salt:        inner.Salt,
		Format:      inner.Format,
		Obfuscated:  inner.Obfuscated,
		CreatedAt:   inner.CreatedAt,
		FetchedAt:   envelope.Precomputed.FetchedAt,
		Environment: inner.Environment,
		Subject:     subject,
	}, nil
}

func subjectAttributesFromWire(w subjectAttributesWire) map[string]value.Value {
	attrs := make(map[string]value.Value, len(w.CategoricalAttributes)+len(w.NumericAttributes))
	for k, v := range w.CategoricalAttributes {
		attrs[k] = value.String(v)
	}
	for k, v := range w.NumericAttributes {
		attrs[k] = value.Numeric(v)
	}
	return attrs
}

// Flag looks up a precomputed flag by its derived wire key (see
// obfuscation.HashPrecomputedFlagKey).
func (c *PrecomputedConfiguration) Flag(key string) (PrecomputedFlag, bool) {
	if c == nil {
		return PrecomputedFlag{}, false
	}
	f, ok := c.Flags[key]
	return f, ok
}
