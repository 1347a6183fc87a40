// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package value implements the typed variant model (spec.md §3, C1):
// a closed tagged union over null, bool, numeric, string and string-set
// payloads, used for both subject attributes and flag variation values.
package value

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind identifies which payload a Value carries.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumeric
	KindString
	KindStringSet
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	case KindStringSet:
		return "stringSet"
	default:
		return "unknown"
	}
}

// ErrValueNotSet is returned by an accessor when the Value does not carry
// the requested payload kind (spec.md §3).
var ErrValueNotSet = errors.New("value: not set for requested kind")

// Value is the typed variant. The zero Value is Null.
type Value struct {
	kind      Kind
	boolVal   bool
	numVal    float64
	strVal    string
	strSetVal []string
}

// Null returns the null variant.
func Null() Value { return Value{kind: KindNull} }

// Bool constructs a boolean variant.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Numeric constructs a numeric (float64) variant.
func Numeric(f float64) Value { return Value{kind: KindNumeric, numVal: f} }

// String constructs a string variant.
func String(s string) Value { return Value{kind: KindString, strVal: s} }

// StringSet constructs a string-set variant. Input order is preserved for
// display purposes but ignored by Equal and Hash.
func StringSet(ss []string) Value {
	cp := make([]string, len(ss))
	copy(cp, ss)
	return Value{kind: KindStringSet, strSetVal: cp}
}

// Kind reports which payload this Value carries.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v carries no payload. An absent subject
// attribute and an explicit null value are indistinguishable once turned
// into a Value — see spec.md §9 Q1.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload or ErrValueNotSet.
func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, ErrValueNotSet
	}
	return v.boolVal, nil
}

// Numeric returns the numeric payload or ErrValueNotSet.
func (v Value) Numeric() (float64, error) {
	if v.kind != KindNumeric {
		return 0, ErrValueNotSet
	}
	return v.numVal, nil
}

// Int truncates the numeric payload toward zero via double->int
// conversion, or returns ErrValueNotSet if this is not a numeric Value.
func (v Value) Int() (int64, error) {
	f, err := v.Numeric()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// String returns the string payload or ErrValueNotSet.
func (v Value) String() (string, error) {
	if v.kind != KindString {
		return "", ErrValueNotSet
	}
	return v.strVal, nil
}

// StringSet returns a copy of the string-set payload or ErrValueNotSet.
func (v Value) StringSet() ([]string, error) {
	if v.kind != KindStringSet {
		return nil, ErrValueNotSet
	}
	cp := make([]string, len(v.strSetVal))
	copy(cp, v.strSetVal)
	return cp, nil
}

// AsString renders any variant as a string for use in operators that
// coerce their operand (e.g. OneOf, Matches). Null renders as "".
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case KindNumeric:
		return formatNumeric(v.numVal)
	case KindString:
		return v.strVal
	case KindStringSet:
		return fmt.Sprint(v.strSetVal)
	default:
		return ""
	}
}

func formatNumeric(f float64) string {
	// %v on float64 matches strconv.FormatFloat(f, 'g', -1, 64), which
	// round-trips cleanly. Large values use exponent form (1e+06), unlike
	// encoding/json's rendering (1000000).
	return fmt.Sprintf("%v", f)
}

// Equal reports structural equality. StringSet equality treats both sides
// as sets: order and duplicates are ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindNumeric:
		// NaN is never equal to anything, including another NaN, per
		// IEEE-754 semantics (spec.md §4.1).
		return v.numVal == other.numVal
	case KindString:
		return v.strVal == other.strVal
	case KindStringSet:
		return sameSet(v.strSetVal, other.strSetVal)
	default:
		return false
	}
}

func sameSet(a, b []string) bool {
	if len(setOf(a)) != len(setOf(b)) {
		return false
	}
	sa := setOf(a)
	for k := range setOf(b) {
		if !sa[k] {
			return false
		}
	}
	return true
}

func setOf(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// Hash produces a SHA-256 hex digest used only for stable identity in
// logging fingerprints (spec.md §4.1) — it is not a security boundary.
// StringSet hashing is order-independent: members are sorted before
// digesting so that two sets differing only in order or duplicates
// produce the same hash.
func (v Value) Hash() string {
	h := sha256.New()
	switch v.kind {
	case KindNull:
		h.Write([]byte("null"))
	case KindBool:
		h.Write([]byte("bool:"))
		if v.boolVal {
			h.Write([]byte("true"))
		} else {
			h.Write([]byte("false"))
		}
	case KindNumeric:
		h.Write([]byte("numeric:"))
		h.Write([]byte(formatNumeric(v.numVal)))
	case KindString:
		h.Write([]byte("string:"))
		h.Write([]byte(v.strVal))
	case KindStringSet:
		h.Write([]byte("stringSet:"))
		uniq := make([]string, 0, len(v.strSetVal))
		seen := map[string]bool{}
		for _, s := range v.strSetVal {
			if !seen[s] {
				seen[s] = true
				uniq = append(uniq, s)
			}
		}
		sort.Strings(uniq)
		for _, s := range uniq {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalJSON renders the Value the way the wire format expects: a bare
// JSON null/bool/number/string, or an array of strings for a StringSet.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.boolVal)
	case KindNumeric:
		return json.Marshal(v.numVal)
	case KindString:
		return json.Marshal(v.strVal)
	case KindStringSet:
		return json.Marshal(v.strSetVal)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any of the bare JSON shapes MarshalJSON produces.
// This is the boundary of "JSON decoding beyond what the model requires
// to be round-trip stable" spec.md §1 calls for — it does not attempt to
// infer variationType from shape; callers decide that separately.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(t)
	case float64:
		*v = Numeric(t)
	case string:
		*v = String(t)
	case []interface{}:
		ss := make([]string, 0, len(t))
		for _, elem := range t {
			s, ok := elem.(string)
			if !ok {
				return fmt.Errorf("value: stringSet element is not a string: %#v", elem)
			}
			ss = append(ss, s)
		}
		*v = StringSet(ss)
	default:
		return fmt.Errorf("value: unsupported JSON shape %T", raw)
	}
	return nil
}
