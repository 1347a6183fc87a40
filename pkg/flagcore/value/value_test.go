// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package value

import (
	"encoding/json"
	"math"
	"testing"
)

func TestAccessorsFailForWrongKind(t *testing.T) {
	v := String("hi")

	if _, err := v.Bool(); err != ErrValueNotSet {
		t.Fatalf("expected ErrValueNotSet, got %v", err)
	}
	if _, err := v.Numeric(); err != ErrValueNotSet {
		t.Fatalf("expected ErrValueNotSet, got %v", err)
	}
	if _, err := v.StringSet(); err != ErrValueNotSet {
		t.Fatalf("expected ErrValueNotSet, got %v", err)
	}
}

func TestIntTruncates(t *testing.T) {
	v := Numeric(3.9)
	i, err := v.Int()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i != 3 {
		t.Fatalf("expected 3, got %d", i)
	}
}

func TestStringSetEqualityIgnoresOrderAndDuplicates(t *testing.T) {
	a := StringSet([]string{"us", "ca", "us"})
	b := StringSet([]string{"ca", "us"})

	if !a.Equal(b) {
		t.Fatal("expected sets to be equal regardless of order/duplicates")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("expected hashes to match regardless of order/duplicates")
	}
}

func TestNaNNeverEqual(t *testing.T) {
	nan := Numeric(math.NaN())
	if nan.Equal(nan) {
		t.Fatal("NaN must never equal itself")
	}
	if nan.Equal(Numeric(0)) {
		t.Fatal("NaN must never equal a concrete number")
	}
}

func TestNullIsNullRegardlessOfZeroValue(t *testing.T) {
	var zero Value
	if !zero.IsNull() {
		t.Fatal("zero Value should be Null")
	}
	if !Null().Equal(zero) {
		t.Fatal("Null() should equal the zero Value")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	cases := []Value{
		Null(),
		Bool(true),
		Numeric(42.5),
		String("red"),
		StringSet([]string{"a", "b"}),
	}

	for _, v := range cases {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %v: %v", v, err)
		}

		var out Value
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}

		if !v.Equal(out) {
			t.Fatalf("round-trip mismatch: %v != %v (json=%s)", v, out, data)
		}
	}
}

func TestAsStringNullIsEmpty(t *testing.T) {
	if Null().AsString() != "" {
		t.Fatal("expected null to render as empty string")
	}
}
