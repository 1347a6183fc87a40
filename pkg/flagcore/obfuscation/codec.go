// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package obfuscation implements spec.md §4.3 (C3): the pure encode/decode
// functions used to move between a plaintext configuration and its
// obfuscated wire encoding (MD5-hex keys, base64 values, MD5-hex string
// operands).
package obfuscation

import (
	"crypto/md5" //nolint:gosec // stable bucketing/obfuscation function, not a security boundary.
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrUnknownVariationType is returned when a caller asks this package to
// decode a value for a VariationType outside the closed set (spec.md §3).
var ErrUnknownVariationType = errors.New("obfuscation: unknown variation type")

// HashKey returns md5_hex(plaintext), used to obfuscate flag keys and
// attribute names.
func HashKey(plaintext string) string {
	sum := md5.Sum([]byte(plaintext)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// HashStringOperand returns md5_hex(lower(plaintext)), used for OneOf/
// NotOneOf set members and the Matches/NotMatches regex operand under
// obfuscation.
func HashStringOperand(plaintext string) string {
	return HashKey(strings.ToLower(plaintext))
}

// EncodeValue base64-encodes the UTF-8 bytes of plaintext.
func EncodeValue(plaintext string) string {
	return base64.StdEncoding.EncodeToString([]byte(plaintext))
}

// HashPrecomputedFlagKey derives the map key a PrecomputedConfiguration
// uses for flagKey under the given still-base64-encoded salt (spec.md §3,
// §4.8, §8 seed scenario 5): md5_hex(saltBase64 + flagKey). The salt is
// deliberately used in its encoded form, matching the worked example in
// spec.md §8 rather than the decode-then-concatenate prose in §4.8 — see
// DESIGN.md for the resolution of that discrepancy.
func HashPrecomputedFlagKey(flagKey, saltBase64 string) string {
	return HashKey(saltBase64 + flagKey)
}

// DecodeValue reverses EncodeValue. Per spec.md invariant I4, decoding a
// non-base64 string is a recoverable error: callers must treat it as "skip
// this field", never as a reason to abort the whole evaluation.
func DecodeValue(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
