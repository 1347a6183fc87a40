// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package model implements spec.md §3 (C4): the in-memory configuration
// data model — flags, variations, allocations, splits, shard ranges,
// rules and conditions — plus the subject and assignment-cache-key shapes
// that evaluation reads from and is indexed by.
package model

import (
	"fmt"
	"time"

	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// VariationType is the closed set of typed-value kinds a Flag can return
// (spec.md §3, §6).
type VariationType string

const (
	Boolean VariationType = "BOOLEAN"
	Integer VariationType = "INTEGER"
	Numeric VariationType = "NUMERIC"
	String  VariationType = "STRING"
	JSON    VariationType = "JSON"
)

// Valid reports whether t is one of the closed set of known types.
func (t VariationType) Valid() bool {
	switch t {
	case Boolean, Integer, Numeric, String, JSON:
		return true
	default:
		return false
	}
}

// Operator is the closed set of condition operators (spec.md §4.4, §6).
type Operator string

const (
	Matches            Operator = "MATCHES"
	NotMatches         Operator = "NOT_MATCHES"
	GreaterThan        Operator = "GT"
	GreaterThanEqualTo Operator = "GTE"
	LessThan           Operator = "LT"
	LessThanEqualTo    Operator = "LTE"
	OneOf              Operator = "ONE_OF"
	NotOneOf           Operator = "NOT_ONE_OF"
	IsNull             Operator = "IS_NULL"
)

// Variation is a named, typed value a flag can resolve to (spec.md §3).
type Variation struct {
	Key   string      `json:"key"`
	Value value.Value `json:"value"`
}

// ShardRange is a half-open interval [Start, End) of shard indices.
// Invariant I2: End must not exceed the enclosing Flag's TotalShards;
// this is checked at evaluation time, not at construction.
type ShardRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Contains reports whether shard s falls in [Start, End).
func (r ShardRange) Contains(s uint32) bool {
	return r.Start <= s && s < r.End
}

// Shard is a salted bucketing rule: a subject matches it if the subject's
// computed shard (see Client/eval) falls in any of Ranges.
type Shard struct {
	Salt   string       `json:"salt"`
	Ranges []ShardRange `json:"ranges"`
}

// Matches reports whether shard index s (already computed for this
// Shard's salt) falls within any configured range. A Shard with no
// ranges never matches.
func (sh Shard) Matches(s uint32) bool {
	for _, r := range sh.Ranges {
		if r.Contains(s) {
			return true
		}
	}
	return false
}

// Split maps a conjunction of shard constraints to a variation (spec.md
// §3). A Split matches a subject iff every one of its Shards matches.
type Split struct {
	VariationKey string            `json:"variationKey"`
	Shards       []Shard           `json:"shards"`
	ExtraLogging map[string]string `json:"extraLogging,omitempty"`
}

// Condition is one targeting predicate (spec.md §3, §4.4).
type Condition struct {
	Attribute string      `json:"attribute"`
	Operator  Operator    `json:"operator"`
	Value     value.Value `json:"value"`
}

// Rule is a conjunction of Conditions; an empty rule matches
// unconditionally (spec.md §3, §4.5).
type Rule struct {
	Conditions []Condition `json:"conditions"`
}

// Allocation is an ordered targeting unit: a time window, an optional set
// of rules (empty = match any subject), and an ordered list of splits
// (spec.md §3, §4.6).
type Allocation struct {
	Key     string     `json:"key"`
	Rules   []Rule     `json:"rules,omitempty"`
	Splits  []Split    `json:"splits"`
	StartAt *time.Time `json:"startAt,omitempty"`
	EndAt   *time.Time `json:"endAt,omitempty"`
	DoLog   bool       `json:"doLog"`
}

// ActiveAt reports whether now falls within [StartAt, EndAt], treating
// unbounded ends as -inf/+inf (spec.md §4.6, §8 property P8).
func (a Allocation) ActiveAt(now time.Time) bool {
	if a.StartAt != nil && now.Before(*a.StartAt) {
		return false
	}
	if a.EndAt != nil && now.After(*a.EndAt) {
		return false
	}
	return true
}

// Flag is the top-level targeting unit (spec.md §3).
type Flag struct {
	Key           string               `json:"key"`
	Enabled       bool                 `json:"enabled"`
	VariationType VariationType        `json:"variationType"`
	Variations    map[string]Variation `json:"variations"`
	Allocations   []Allocation         `json:"allocations"`
	TotalShards   uint32               `json:"totalShards"`
}

// Environment carries the deployment environment name a configuration
// was published for (mirrored from the precomputed envelope's
// `environment` object, spec.md §6; SPEC_FULL §3).
type Environment struct {
	Name string `json:"name"`
}

// Format is the closed set of configuration wire formats (spec.md §3).
type Format string

const (
	FormatServer      Format = "SERVER"
	FormatClient      Format = "CLIENT"
	FormatPrecomputed Format = "PRECOMPUTED"
)

// Subject identifies the entity being evaluated (spec.md §3).
type Subject struct {
	Key        string
	Attributes map[string]value.Value
}

// Attribute returns the named attribute, or Null if absent — absent and
// explicit-null are intentionally indistinguishable (spec.md §9 Q1).
func (s Subject) Attribute(name string) value.Value {
	if s.Attributes == nil {
		return value.Null()
	}
	v, ok := s.Attributes[name]
	if !ok {
		return value.Null()
	}
	return v
}

// AssignmentCacheKey identifies one (subject, flag, allocation, variation)
// tuple for the at-most-once logging contract (spec.md §3, C10).
type AssignmentCacheKey struct {
	SubjectKey     string
	FlagKey        string
	AllocationKey  string
	VariationKey   string
}

// String renders a stable, human-readable form suitable as a map key.
func (k AssignmentCacheKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.SubjectKey, k.FlagKey, k.AllocationKey, k.VariationKey)
}
