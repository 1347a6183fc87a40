// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package precomputed implements spec.md §4.8 (C9): O(1) lookup over a
// server-precomputed flag payload, keyed by the MD5 hash of the flag key
// and the (still-encoded) salt.
package precomputed

import (
	"encoding/json"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/obfuscation"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// Result is the outcome of a precomputed lookup. Matched is false on every
// failure path (missing flag, type mismatch, malformed base64 in the
// value) — the caller falls back to its own default in that case.
type Result struct {
	Value         value.Value
	Matched       bool
	DoLog         bool
	AllocationKey string
	VariationKey  string
	ExtraLogging  map[string]string
	LogEligible   bool
}

// Evaluator implements spec.md §4.8 (C9).
type Evaluator struct{}

// Evaluate looks up flagKey in cfg and, on a type-matching hit, decodes its
// value. requestedType gates the lookup exactly as the standard evaluator
// gates on VariationType (spec.md §4.7 step 3, mirrored here per §4.8
// step 3).
func (Evaluator) Evaluate(cfg *model.PrecomputedConfiguration, flagKey string, requestedType model.VariationType) Result {
	if cfg == nil {
		return Result{}
	}

	key := obfuscation.HashPrecomputedFlagKey(flagKey, cfg.Salt)
	flag, ok := cfg.Flag(key)
	if !ok {
		return Result{}
	}

	if flag.VariationType != requestedType {
		return Result{}
	}

	val, err := decodeValue(flag.VariationType, flag.VariationValue)
	if err != nil {
		return Result{}
	}

	result := Result{Value: val, Matched: true, DoLog: flag.DoLog}
	if !flag.DoLog {
		return result
	}

	allocationKey, ok1 := decodeOptionalField(flag.AllocationKey)
	variationKey, ok2 := decodeOptionalField(flag.VariationKey)
	extraLogging, ok3 := decodeExtraLogging(flag.ExtraLogging)

	result.AllocationKey = allocationKey
	result.VariationKey = variationKey
	result.ExtraLogging = extraLogging
	result.LogEligible = ok1 && ok2 && ok3
	return result
}

// decodeValue decodes a raw JSON variationValue token according to its
// declared VariationType (spec.md §4.8 step 4): numeric and boolean are
// carried directly on the wire, string/JSON payloads are base64-encoded.
func decodeValue(vt model.VariationType, raw json.RawMessage) (value.Value, error) {
	switch vt {
	case model.Boolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil

	case model.Integer, model.Numeric:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return value.Value{}, err
		}
		return value.Numeric(f), nil

	case model.String, model.JSON:
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return value.Value{}, err
		}
		decoded, err := obfuscation.DecodeValue(encoded)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(decoded), nil

	default:
		return value.Value{}, obfuscation.ErrUnknownVariationType
	}
}

// decodeOptionalField base64-decodes a possibly-absent wire field. An
// absent field decodes to "" and is considered eligible; a present but
// malformed field is not.
func decodeOptionalField(encoded *string) (string, bool) {
	if encoded == nil {
		return "", true
	}
	decoded, err := obfuscation.DecodeValue(*encoded)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// decodeExtraLogging base64-decodes both the keys and values of an
// extraLogging map (spec.md §4.8 step 5). Any single malformed entry marks
// the whole map ineligible for logging, per the adapter's skip-the-whole
// log-decision policy rather than emitting a partially-decoded event.
func decodeExtraLogging(raw map[string]string) (map[string]string, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		dk, err := obfuscation.DecodeValue(k)
		if err != nil {
			return nil, false
		}
		dv, err := obfuscation.DecodeValue(v)
		if err != nil {
			return nil, false
		}
		out[dk] = dv
	}
	return out, true
}
