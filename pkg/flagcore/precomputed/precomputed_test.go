// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package precomputed

import (
	"encoding/json"
	"testing"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/obfuscation"
)

func strPtr(s string) *string { return &s }

func sampleConfig() *model.PrecomputedConfiguration {
	salt := "c29kaXVtY2hsb3JpZGU=" // base64("sodiumchloride")
	key := obfuscation.HashPrecomputedFlagKey("string-flag", salt)
	return &model.PrecomputedConfiguration{
		Salt: salt,
		Flags: map[string]model.PrecomputedFlag{
			key: {
				VariationType:  model.String,
				VariationValue: json.RawMessage(`"cmVk"`), // base64("red")
				AllocationKey:  strPtr(obfuscation.EncodeValue("rollout")),
				VariationKey:   strPtr(obfuscation.EncodeValue("red-variant")),
				DoLog:          true,
			},
		},
	}
}

func TestEvaluatePrecomputedHappyPath(t *testing.T) {
	result := Evaluator{}.Evaluate(sampleConfig(), "string-flag", model.String)
	if !result.Matched {
		t.Fatal("expected a hit on the hashed flag key")
	}
	s, _ := result.Value.String()
	if s != "red" {
		t.Fatalf("expected decoded value %q, got %q", "red", s)
	}
	if !result.LogEligible || result.AllocationKey != "rollout" || result.VariationKey != "red-variant" {
		t.Fatalf("expected decoded logging fields, got %+v", result)
	}
}

func TestEvaluatePrecomputedMissingFlag(t *testing.T) {
	result := Evaluator{}.Evaluate(sampleConfig(), "unknown-flag", model.String)
	if result.Matched {
		t.Fatal("expected no match for an unknown flag key")
	}
}

func TestEvaluatePrecomputedTypeMismatch(t *testing.T) {
	result := Evaluator{}.Evaluate(sampleConfig(), "string-flag", model.Boolean)
	if result.Matched {
		t.Fatal("expected a requestedType mismatch to miss")
	}
}

func TestEvaluatePrecomputedMalformedBase64SkipsLogging(t *testing.T) {
	cfg := sampleConfig()
	for k, f := range cfg.Flags {
		f.AllocationKey = strPtr("not-valid-base64!!")
		cfg.Flags[k] = f
	}
	result := Evaluator{}.Evaluate(cfg, "string-flag", model.String)
	if !result.Matched {
		t.Fatal("a malformed logging field must not affect the returned value")
	}
	if result.LogEligible {
		t.Fatal("expected logging to be marked ineligible")
	}
}

func TestEvaluatePrecomputedNoLogWhenDoLogFalse(t *testing.T) {
	cfg := sampleConfig()
	for k, f := range cfg.Flags {
		f.DoLog = false
		cfg.Flags[k] = f
	}
	result := Evaluator{}.Evaluate(cfg, "string-flag", model.String)
	if !result.Matched || result.DoLog {
		t.Fatalf("expected a match without a log decision, got %+v", result)
	}
}
