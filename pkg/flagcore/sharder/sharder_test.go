// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sharder

import "testing"

func TestMD5ReferenceVectors(t *testing.T) {
	cases := map[string]uint32{
		"test-input": 5619,
		"alice":      3170,
		"bob":        7420,
		"charlie":    7497,
	}

	s := MD5{}
	for input, want := range cases {
		got := s.Shard(input, 10000)
		if got != want {
			t.Errorf("Shard(%q, 10000) = %d, want %d", input, got, want)
		}
	}
}

func TestMD5StaysInRange(t *testing.T) {
	s := MD5{}
	inputs := []string{"a", "b", "c", "d", "e", "f", "g", "salt-subject"}
	for _, n := range []uint32{1, 7, 100, 10000} {
		for _, in := range inputs {
			got := s.Shard(in, n)
			if got >= n {
				t.Fatalf("Shard(%q, %d) = %d, out of range", in, n, got)
			}
		}
	}
}

func TestDeterministicLookupDefaultsToZero(t *testing.T) {
	d := Deterministic{Shards: map[string]uint32{"alice": 42}}

	if got := d.Shard("alice", 10000); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := d.Shard("unknown", 10000); got != 0 {
		t.Fatalf("expected 0 for unknown input, got %d", got)
	}
}

func TestDeterministicClampsToTotalShards(t *testing.T) {
	d := Deterministic{Shards: map[string]uint32{"alice": 42}}
	if got := d.Shard("alice", 10); got != 2 {
		t.Fatalf("expected clamped 42%%10=2, got %d", got)
	}
}
