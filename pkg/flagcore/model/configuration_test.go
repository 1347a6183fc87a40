// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package model

import "testing"

const sampleConfigJSON = `{
	"createdAt": "2024-01-01T00:00:00Z",
	"format": "SERVER",
	"obfuscated": false,
	"flags": {
		"show_banner": {
			"key": "show_banner",
			"enabled": true,
			"variationType": "BOOLEAN",
			"variations": {
				"on": {"key": "on", "value": true},
				"off": {"key": "off", "value": false}
			},
			"allocations": [
				{
					"key": "rollout",
					"rules": [],
					"splits": [
						{"variationKey": "on", "shards": [{"salt": "show_banner", "ranges": [{"start": 0, "end": 10000}]}]}
					],
					"doLog": true
				}
			],
			"totalShards": 10000
		}
	}
}`

func TestParseConfiguration(t *testing.T) {
	cfg, err := ParseConfiguration([]byte(sampleConfigJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flag, ok := cfg.Flag("show_banner")
	if !ok {
		t.Fatal("expected show_banner flag to be present")
	}
	if !flag.Enabled {
		t.Fatal("expected flag to be enabled")
	}
	if len(flag.Allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(flag.Allocations))
	}
}

func TestParseConfigurationRejectsUnknownFormat(t *testing.T) {
	doc := `{"format": "BOGUS", "flags": {}}`
	if _, err := ParseConfiguration([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseConfigurationRejectsUnknownVariationType(t *testing.T) {
	doc := `{
		"format": "SERVER",
		"flags": {
			"f": {
				"key": "f", "enabled": true, "variationType": "ENUM",
				"variations": {}, "allocations": [], "totalShards": 10000
			}
		}
	}`
	if _, err := ParseConfiguration([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown variationType")
	}
}

func TestParsePrecomputedEnvelope(t *testing.T) {
	response := `{
		"createdAt": "2024-01-01T00:00:00Z",
		"format": "PRECOMPUTED",
		"salt": "c29kaXVtY2hsb3JpZGU=",
		"obfuscated": true,
		"environment": {"name": "production"},
		"flags": {
			"41a27b85ebdd7b1a5ae367a1a240a214": {
				"variationType": "STRING",
				"variationValue": "cmVk",
				"doLog": true
			}
		}
	}`

	envelope := `{
		"version": 1,
		"precomputed": {
			"subjectKey": "alice",
			"subjectAttributes": {"categoricalAttributes": {"country": "US"}, "numericAttributes": {"age": 30}},
			"fetchedAt": "2024-01-01T00:00:00Z",
			"response": ` + jsonQuote(response) + `
		}
	}`

	cfg, err := ParsePrecomputedEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Subject.Key != "alice" {
		t.Fatalf("expected subject key alice, got %q", cfg.Subject.Key)
	}
	if s, _ := cfg.Subject.Attribute("country").String(); s != "US" {
		t.Fatalf("expected country=US, got %q", s)
	}
	if n, _ := cfg.Subject.Attribute("age").Numeric(); n != 30 {
		t.Fatalf("expected age=30, got %v", n)
	}

	flag, ok := cfg.Flag("41a27b85ebdd7b1a5ae367a1a240a214")
	if !ok {
		t.Fatal("expected flag to be present under its hashed key")
	}
	if flag.VariationType != String {
		t.Fatalf("expected STRING variation type, got %q", flag.VariationType)
	}
}

// jsonQuote turns raw JSON text into a valid JSON string literal, used to
// embed the precomputed "response" document as a string inside the test
// envelope above.
func jsonQuote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for _, r := range s {
		switch r {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, string(r)...)
		}
	}
	out = append(out, '"')
	return string(out)
}
