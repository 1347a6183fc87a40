// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package sharder implements spec.md §4.2 (C2): mapping an arbitrary
// string input and a shard count to a deterministic bucket index.
package sharder

import (
	"crypto/md5" //nolint:gosec // used as a stable bucketing function only, not for security.
	"encoding/hex"
)

// Sharder maps an input string and a total shard count to an integer in
// [0, totalShards).
type Sharder interface {
	Shard(input string, totalShards uint32) uint32
}

// MD5 computes MD5 of the UTF-8 bytes of input, takes the first 8 hex
// characters, parses them as an unsigned 32-bit big-endian integer, and
// returns value mod totalShards. Any other truncation or parse strategy
// produces different buckets than this SDK and every other flagcore
// client — do not change this derivation.
type MD5 struct{}

var _ Sharder = MD5{}

// Shard implements Sharder.
func (MD5) Shard(input string, totalShards uint32) uint32 {
	if totalShards == 0 {
		return 0
	}

	sum := md5.Sum([]byte(input)) //nolint:gosec
	hexDigest := hex.EncodeToString(sum[:])

	first8 := hexDigest[:8]
	var v uint32
	for i := 0; i < 8; i++ {
		v <<= 4
		v |= uint32(hexDigit(first8[i]))
	}

	return v % totalShards
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Deterministic is a lookup-table sharder intended for tests only (spec.md
// §4.2): it returns the mapped shard for input, or 0 if input is absent.
// The returned value is always clamped into [0, totalShards).
type Deterministic struct {
	Shards map[string]uint32
}

var _ Sharder = Deterministic{}

// Shard implements Sharder.
func (d Deterministic) Shard(input string, totalShards uint32) uint32 {
	s := d.Shards[input]
	if totalShards == 0 {
		return 0
	}
	return s % totalShards
}
