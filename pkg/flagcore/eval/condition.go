// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package eval implements spec.md §4.4–§4.9, §4.12 (C5–C8, C12): the
// condition/rule/allocation evaluators, the standard flag evaluator, and
// the obfuscated configuration adapter they run against.
package eval

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/obfuscation"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// EvaluateCondition implements spec.md §4.4 (C5). attrs is the subject's
// attribute bag; obfuscated selects between plaintext regex semantics and
// the degraded hash-equality semantics Matches/NotMatches fall back to
// under an obfuscated configuration. The second return value reports
// whether the degraded-regex path fired, so callers can surface the
// telemetry warning spec.md §9 calls for without this function depending
// on a telemetry sink itself.
func EvaluateCondition(cond model.Condition, attrs map[string]value.Value, obfuscated bool) (matched bool, degradedRegex bool) {
	attr := lookupAttribute(attrs, cond.Attribute)

	switch cond.Operator {
	case model.IsNull:
		want, err := cond.Value.Bool()
		if err != nil {
			return false, false
		}
		return attr.IsNull() == want, false

	case model.GreaterThan, model.GreaterThanEqualTo, model.LessThan, model.LessThanEqualTo:
		return compareOrdered(cond.Operator, attr, cond.Value, obfuscated), false

	case model.Matches, model.NotMatches:
		return evaluateMatches(cond, attr, obfuscated)

	case model.OneOf, model.NotOneOf:
		return evaluateOneOf(cond, attr, obfuscated), false

	default:
		return false, false
	}
}

func lookupAttribute(attrs map[string]value.Value, name string) value.Value {
	if attrs == nil {
		return value.Null()
	}
	v, ok := attrs[name]
	if !ok {
		return value.Null()
	}
	return v
}

// compareOrdered implements the GT/GTE/LT/LTE family. operand is base64-
// decoded first when obfuscated is set: spec.md §3's general rule encodes
// every string operand literal except the OneOf/NotOneOf/Matches/NotMatches
// carve-outs, so a semver-style operand like "1.9.0" arrives as
// base64("1.9.0") once the configuration is obfuscated. attr (the subject's
// own attribute value) is never obfuscated and is left untouched. Coercion
// failure (either side cannot be read as a number, directly or via a
// semver-style parse) makes the condition false, never an error (spec.md
// §4.1, §4.4).
func compareOrdered(op model.Operator, attr, operand value.Value, obfuscated bool) bool {
	operand = decodeOrderedOperand(operand, obfuscated)

	if af, aok := coerceNumeric(attr); aok {
		if of, ook := coerceNumeric(operand); ook {
			return applyOrdered(op, af, of)
		}
	}

	as, aok := coerceVersion(attr)
	os, ook := coerceVersion(operand)
	if aok && ook {
		return applyOrdered(op, compareVersions(as, os), 0)
	}

	return false
}

// decodeOrderedOperand base64-decodes a string-kind operand under an
// obfuscated configuration. Non-string operands (already-numeric literals)
// and a decode failure both fall through unchanged, leaving coercion to
// fail closed rather than panicking on malformed input.
func decodeOrderedOperand(operand value.Value, obfuscated bool) value.Value {
	if !obfuscated {
		return operand
	}
	s, err := operand.String()
	if err != nil {
		return operand
	}
	decoded, err := obfuscation.DecodeValue(s)
	if err != nil {
		return operand
	}
	return value.String(decoded)
}

func applyOrdered(op model.Operator, a, b float64) bool {
	switch op {
	case model.GreaterThan:
		return a > b
	case model.GreaterThanEqualTo:
		return a >= b
	case model.LessThan:
		return a < b
	case model.LessThanEqualTo:
		return a <= b
	default:
		return false
	}
}

// coerceNumeric attempts to read v as a float64: directly if it already
// is numeric, or by parsing a string payload.
func coerceNumeric(v value.Value) (float64, bool) {
	if f, err := v.Numeric(); err == nil {
		return f, true
	}
	if s, err := v.String(); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// coerceVersion reports whether v's string form looks like a dot-separated
// numeric version (optionally with a pre-release suffix after "-").
func coerceVersion(v value.Value) ([]int, bool) {
	s, err := v.String()
	if err != nil {
		return nil, false
	}
	core := s
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		core = s[:idx]
	}
	if core == "" {
		return nil, false
	}
	parts := strings.Split(core, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// compareVersions returns -1, 0 or 1 the way bytes.Compare does, comparing
// components left-to-right and treating missing trailing components as 0.
func compareVersions(a, b []int) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := orderedCompare(av, bv); c != 0 {
			return float64(c)
		}
	}
	return 0
}

// orderedCompare returns -1, 0 or 1 for any ordered component type.
func orderedCompare[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func evaluateMatches(cond model.Condition, attr value.Value, obfuscated bool) (matched bool, degraded bool) {
	operand, err := cond.Value.String()
	if err != nil {
		return false, false
	}

	if !obfuscated {
		re, err := regexp.Compile(operand)
		if err != nil {
			return false, false
		}
		m := re.MatchString(attr.AsString())
		if cond.Operator == model.NotMatches {
			return !m, false
		}
		return m, false
	}

	// Obfuscated mode degrades MATCHES/NOT_MATCHES to equality against the
	// MD5 hash of the lowercased attribute, per spec.md §4.4/§9 (Q2).
	eq := obfuscation.HashStringOperand(attr.AsString()) == operand
	if cond.Operator == model.NotMatches {
		return !eq, true
	}
	return eq, true
}

func evaluateOneOf(cond model.Condition, attr value.Value, obfuscated bool) bool {
	members, err := cond.Value.StringSet()
	if err != nil {
		return false
	}

	if attr.IsNull() {
		// Absent attribute: false for OneOf, true for NotOneOf (spec.md §4.4).
		return cond.Operator == model.NotOneOf
	}

	candidate := attr.AsString()
	if obfuscated {
		candidate = obfuscation.HashStringOperand(candidate)
	}

	in := false
	for _, m := range members {
		if m == candidate {
			in = true
			break
		}
	}

	if cond.Operator == model.NotOneOf {
		return !in
	}
	return in
}
