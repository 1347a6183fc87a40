// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package eval

import (
	"testing"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

func TestEvaluateRuleEmptyMatchesAnything(t *testing.T) {
	matched, _ := EvaluateRule(model.Rule{}, nil, false)
	if !matched {
		t.Fatal("an empty rule must match unconditionally")
	}
}

func TestEvaluateRuleRequiresAllConditions(t *testing.T) {
	rule := model.Rule{Conditions: []model.Condition{
		{Attribute: "country", Operator: model.OneOf, Value: value.StringSet([]string{"US"})},
		{Attribute: "age", Operator: model.GreaterThanEqualTo, Value: value.Numeric(21)},
	}}

	attrs := map[string]value.Value{"country": value.String("US"), "age": value.Numeric(30)}
	matched, _ := EvaluateRule(rule, attrs, false)
	if !matched {
		t.Fatal("expected both conditions to match")
	}

	attrs["age"] = value.Numeric(10)
	matched, _ = EvaluateRule(rule, attrs, false)
	if matched {
		t.Fatal("expected rule to fail when one condition fails")
	}
}

func TestAnyRuleMatchesEmptyRuleList(t *testing.T) {
	matched, _ := anyRuleMatches(nil, nil, false)
	if !matched {
		t.Fatal("an allocation with no rules should apply to every subject")
	}
}

func TestAnyRuleMatchesStopsAtFirstMatch(t *testing.T) {
	rules := []model.Rule{
		{Conditions: []model.Condition{{Attribute: "country", Operator: model.OneOf, Value: value.StringSet([]string{"FR"})}}},
		{Conditions: []model.Condition{{Attribute: "country", Operator: model.OneOf, Value: value.StringSet([]string{"US"})}}},
	}
	attrs := map[string]value.Value{"country": value.String("US")}
	matched, _ := anyRuleMatches(rules, attrs, false)
	if !matched {
		t.Fatal("expected the second rule to match")
	}
}
