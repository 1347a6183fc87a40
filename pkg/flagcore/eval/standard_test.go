// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/obfuscation"
	"github.com/flagcore/go-flagcore/pkg/flagcore/sharder"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

func bannerFlag() model.Flag {
	return model.Flag{
		Key:           "show_banner",
		Enabled:       true,
		VariationType: model.Boolean,
		Variations: map[string]model.Variation{
			"on":  {Key: "on", Value: value.Bool(true)},
			"off": {Key: "off", Value: value.Bool(false)},
		},
		Allocations: []model.Allocation{
			{
				Key: "rollout",
				Rules: []model.Rule{{Conditions: []model.Condition{
					{Attribute: "country", Operator: model.OneOf, Value: value.StringSet([]string{"US", "CA"})},
				}}},
				Splits: []model.Split{{VariationKey: "on"}},
				DoLog:  true,
			},
		},
		TotalShards: 10000,
	}
}

func TestStandardEvaluatorObfuscationParity(t *testing.T) {
	cfg := &model.Configuration{Flags: map[string]model.Flag{"show_banner": bannerFlag()}}
	plaintextView := PlaintextView{Config: cfg}

	obfFlag := bannerFlag()
	obfFlag.Allocations[0].Rules[0].Conditions[0].Value = value.StringSet([]string{
		obfuscation.HashStringOperand("US"), obfuscation.HashStringOperand("CA"),
	})
	obfCfg := &model.Configuration{Obfuscated: true, Flags: map[string]model.Flag{
		obfuscation.HashKey("show_banner"): obfFlag,
	}}
	obfView := NewObfuscatedView(obfCfg)

	evaluator := StandardEvaluator{Sharder: sharder.MD5{}}
	subject := model.Subject{Key: "alice", Attributes: map[string]value.Value{"country": value.String("US")}}
	now := time.Now()

	plainResult := evaluator.Evaluate(plaintextView, "show_banner", subject, model.Boolean, now)
	obfResult := evaluator.Evaluate(obfView, "show_banner", subject, model.Boolean, now)

	require.True(t, plainResult.Matched, "plaintext view should match")
	require.True(t, obfResult.Matched, "obfuscated view should match")
	assert.True(t, plainResult.Value.Equal(obfResult.Value), "expected equal values, got %v vs %v", plainResult.Value, obfResult.Value)

	b, err := plainResult.Value.Bool()
	require.NoError(t, err)
	assert.True(t, b, "expected true for a US subject")
}

func minVersionFlag() model.Flag {
	return model.Flag{
		Key:           "new_ui",
		Enabled:       true,
		VariationType: model.Boolean,
		Variations: map[string]model.Variation{
			"on":  {Key: "on", Value: value.Bool(true)},
			"off": {Key: "off", Value: value.Bool(false)},
		},
		Allocations: []model.Allocation{
			{
				Key: "rollout",
				Rules: []model.Rule{{Conditions: []model.Condition{
					{Attribute: "appVersion", Operator: model.GreaterThanEqualTo, Value: value.String("1.9.0")},
				}}},
				Splits: []model.Split{{VariationKey: "on"}},
				DoLog:  true,
			},
		},
		TotalShards: 10000,
	}
}

// TestStandardEvaluatorObfuscationParityOrderedCondition guards Property P6
// for the GT/GTE/LT/LTE family specifically: an obfuscated configuration
// base64-encodes the version-string operand, and a plaintext match must
// still match once that operand is decoded back out (eval/condition.go).
func TestStandardEvaluatorObfuscationParityOrderedCondition(t *testing.T) {
	cfg := &model.Configuration{Flags: map[string]model.Flag{"new_ui": minVersionFlag()}}
	plaintextView := PlaintextView{Config: cfg}

	obfFlag := minVersionFlag()
	obfFlag.Allocations[0].Rules[0].Conditions[0].Value = value.String(obfuscation.EncodeValue("1.9.0"))
	obfCfg := &model.Configuration{Obfuscated: true, Flags: map[string]model.Flag{
		obfuscation.HashKey("new_ui"): obfFlag,
	}}
	obfView := NewObfuscatedView(obfCfg)

	evaluator := StandardEvaluator{Sharder: sharder.MD5{}}
	subject := model.Subject{Key: "alice", Attributes: map[string]value.Value{"appVersion": value.String("2.0.0")}}
	now := time.Now()

	plainResult := evaluator.Evaluate(plaintextView, "new_ui", subject, model.Boolean, now)
	obfResult := evaluator.Evaluate(obfView, "new_ui", subject, model.Boolean, now)

	require.True(t, plainResult.Matched, "plaintext view should match")
	require.True(t, obfResult.Matched, "obfuscated view should match the same as plaintext")
	assert.True(t, plainResult.Value.Equal(obfResult.Value))
}

func TestStandardEvaluatorDisabledFlagShortCircuits(t *testing.T) {
	flag := bannerFlag()
	flag.Enabled = false
	cfg := &model.Configuration{Flags: map[string]model.Flag{"show_banner": flag}}
	evaluator := StandardEvaluator{Sharder: sharder.MD5{}}

	result := evaluator.Evaluate(PlaintextView{Config: cfg}, "show_banner", model.Subject{Key: "alice"}, model.Boolean, time.Now())
	assert.False(t, result.Matched, "a disabled flag must never match, regardless of allocations")
}

func TestStandardEvaluatorMissingFlag(t *testing.T) {
	cfg := &model.Configuration{Flags: map[string]model.Flag{}}
	evaluator := StandardEvaluator{Sharder: sharder.MD5{}}
	result := evaluator.Evaluate(PlaintextView{Config: cfg}, "nope", model.Subject{Key: "alice"}, model.Boolean, time.Now())
	assert.False(t, result.Matched, "expected no match for an unknown flag key")
}

func TestStandardEvaluatorTypeMismatch(t *testing.T) {
	cfg := &model.Configuration{Flags: map[string]model.Flag{"show_banner": bannerFlag()}}
	evaluator := StandardEvaluator{Sharder: sharder.MD5{}}
	result := evaluator.Evaluate(PlaintextView{Config: cfg}, "show_banner", model.Subject{Key: "alice"}, model.String, time.Now())
	assert.False(t, result.Matched, "expected a requestedType mismatch to short-circuit")
}

func TestStandardEvaluatorAllocationOrderPrecedence(t *testing.T) {
	flag := model.Flag{
		Key: "experiment", Enabled: true, VariationType: model.String,
		Variations: map[string]model.Variation{
			"control": {Key: "control", Value: value.String("control")},
			"treat":   {Key: "treat", Value: value.String("treat")},
		},
		Allocations: []model.Allocation{
			{Key: "first", Splits: []model.Split{{VariationKey: "control"}}, DoLog: true},
			{Key: "second", Splits: []model.Split{{VariationKey: "treat"}}, DoLog: true},
		},
		TotalShards: 10,
	}
	cfg := &model.Configuration{Flags: map[string]model.Flag{"experiment": flag}}
	evaluator := StandardEvaluator{Sharder: sharder.Deterministic{}}
	result := evaluator.Evaluate(PlaintextView{Config: cfg}, "experiment", model.Subject{Key: "alice"}, model.String, time.Now())
	require.True(t, result.Matched)
	assert.Equal(t, "first", result.Allocation.Key, "expected the first allocation to win")
}
