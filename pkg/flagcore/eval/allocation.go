// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package eval

import (
	"time"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/sharder"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// AllocationResult is the outcome of selecting a matching allocation and
// split for a subject within a flag (spec.md §4.6, §4.7).
type AllocationResult struct {
	Allocation    model.Allocation
	Split         model.Split
	DegradedRegex bool
	Matched       bool
}

// SelectAllocation implements spec.md §4.6/§4.7 (C7): it walks the flag's
// allocations in declaration order and returns the first one that is
// active at now, whose rules (if any) match the subject, and that has a
// split whose shard constraints all match. When several allocations would
// match, the first in declaration order wins. An allocation containing a
// shard range that is inverted or ends past flag.TotalShards (invariant I2)
// is skipped.
func SelectAllocation(flag model.Flag, subjectKey string, attrs map[string]value.Value, now time.Time, sh sharder.Sharder, obfuscated bool) AllocationResult {
	var degraded bool

	for _, alloc := range flag.Allocations {
		if !alloc.ActiveAt(now) {
			continue
		}

		rangesValid := true
		for _, split := range alloc.Splits {
			for _, shard := range split.Shards {
				for _, r := range shard.Ranges {
					if r.Start > r.End || r.End > flag.TotalShards {
						rangesValid = false
					}
				}
			}
		}
		if !rangesValid {
			continue
		}

		ruleMatched, ruleDegraded := anyRuleMatches(alloc.Rules, attrs, obfuscated)
		degraded = degraded || ruleDegraded
		if !ruleMatched {
			continue
		}

		for _, split := range alloc.Splits {
			if splitMatches(split, subjectKey, flag.TotalShards, sh) {
				return AllocationResult{Allocation: alloc, Split: split, DegradedRegex: degraded, Matched: true}
			}
		}
	}

	return AllocationResult{DegradedRegex: degraded, Matched: false}
}

// splitMatches reports whether every Shard constraint on split matches the
// subject's shard index for that constraint's salt (spec.md §4.2, §4.7). A
// split with no shard constraints matches vacuously.
func splitMatches(split model.Split, subjectKey string, totalShards uint32, sh sharder.Sharder) bool {
	for _, shard := range split.Shards {
		idx := sh.Shard(shard.Salt+"-"+subjectKey, totalShards)
		if !shard.Matches(idx) {
			return false
		}
	}
	return true
}
