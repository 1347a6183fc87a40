// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package eval

import (
	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// EvaluateRule implements spec.md §4.5 (C6): a Rule matches iff every one
// of its Conditions matches; an empty Rule matches unconditionally.
// Evaluation short-circuits on the first non-matching condition, so
// degradedRegex only reflects conditions actually evaluated.
func EvaluateRule(rule model.Rule, attrs map[string]value.Value, obfuscated bool) (matched bool, degradedRegex bool) {
	for _, cond := range rule.Conditions {
		ok, degraded := EvaluateCondition(cond, attrs, obfuscated)
		degradedRegex = degradedRegex || degraded
		if !ok {
			return false, degradedRegex
		}
	}
	return true, degradedRegex
}

// anyRuleMatches reports whether any rule in rules matches, short-circuiting
// on the first match. An empty rule list matches unconditionally (spec.md
// §4.6: "no rules" means the allocation applies to every subject).
func anyRuleMatches(rules []model.Rule, attrs map[string]value.Value, obfuscated bool) (matched bool, degradedRegex bool) {
	if len(rules) == 0 {
		return true, false
	}
	for _, r := range rules {
		ok, degraded := EvaluateRule(r, attrs, obfuscated)
		degradedRegex = degradedRegex || degraded
		if ok {
			return true, degradedRegex
		}
	}
	return false, degradedRegex
}
