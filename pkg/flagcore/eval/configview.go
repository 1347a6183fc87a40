// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package eval

import (
	"sync"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/obfuscation"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// ConfigView implements spec.md §4.12 (C12): it presents a Configuration —
// plaintext or obfuscated — uniformly to the rest of the eval package. Flag
// lookup and variation-value decoding are handled here; the condition
// evaluator still branches on Obfuscated() for operands (base64-decoding
// GT/GTE/LT/LTE operands, hashing the attribute for OneOf/NotOneOf, and the
// Matches/NotMatches degraded-equality path).
type ConfigView interface {
	LookupFlag(flagKey string) (model.Flag, bool)
	DecodeVariationValue(vt model.VariationType, v value.Value) (value.Value, error)
	Obfuscated() bool
}

// PlaintextView implements ConfigView over a non-obfuscated Configuration:
// lookups and value reads are pass-through.
type PlaintextView struct {
	Config *model.Configuration
}

var _ ConfigView = PlaintextView{}

func (p PlaintextView) LookupFlag(flagKey string) (model.Flag, bool) {
	return p.Config.Flag(flagKey)
}

func (p PlaintextView) DecodeVariationValue(_ model.VariationType, v value.Value) (value.Value, error) {
	return v, nil
}

func (p PlaintextView) Obfuscated() bool { return false }

// ObfuscatedView implements ConfigView over an obfuscated Configuration
// (spec.md §4.12): flag lookups are rewritten through hashKey, and
// String/JSON variation values are lazily base64-decoded and cached —
// numeric and boolean payloads need no decoding (spec.md §3: only string
// values, operand literals and variation values are base64-encoded).
type ObfuscatedView struct {
	Config *model.Configuration

	decoded sync.Map // encoded payload string -> decoded value.Value
}

var _ ConfigView = (*ObfuscatedView)(nil)

// NewObfuscatedView constructs a ConfigView over an obfuscated
// Configuration.
func NewObfuscatedView(cfg *model.Configuration) *ObfuscatedView {
	return &ObfuscatedView{Config: cfg}
}

func (o *ObfuscatedView) LookupFlag(flagKey string) (model.Flag, bool) {
	return o.Config.Flag(obfuscation.HashKey(flagKey))
}

func (o *ObfuscatedView) Obfuscated() bool { return true }

// DecodeVariationValue lazily base64-decodes String/JSON variation values
// and caches the plaintext result per distinct encoded payload (spec.md
// §4.12). A decode failure is returned to the caller, which (per §4.3
// adapter policy) must skip the enclosing allocation rather than abort.
func (o *ObfuscatedView) DecodeVariationValue(vt model.VariationType, v value.Value) (value.Value, error) {
	switch vt {
	case model.Boolean, model.Integer, model.Numeric:
		return v, nil
	}

	encoded, err := v.String()
	if err != nil {
		return value.Value{}, err
	}

	if cached, ok := o.decoded.Load(encoded); ok {
		return cached.(value.Value), nil
	}

	decoded, err := obfuscation.DecodeValue(encoded)
	if err != nil {
		return value.Value{}, err
	}

	out := value.String(decoded)
	o.decoded.Store(encoded, out)
	return out, nil
}
