// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package schema validates the wire envelopes flagcore consumes — flag
// configuration (plaintext or obfuscated), the precomputed-configuration
// envelope, and the client options bag — against embedded JSON Schemas
// before they are decoded into Go structures.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind selects which embedded schema Validate compiles against.
type Kind int

const (
	// FlagConfig validates the plaintext/obfuscated flag-configuration
	// envelope described in spec.md §6.
	FlagConfig Kind = iota + 1
	// PrecomputedEnvelope validates the precomputed wire envelope.
	PrecomputedEnvelope
	// ClientOptions validates the evaluator construction options bag.
	ClientOptions
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// load opens an embedded schema. In "embedFS://schemas/x.json" the URL
// parser puts "schemas" in Host and "/x.json" in Path, so both are joined
// back into the embed.FS path "schemas/x.json".
func load(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Host + u.Path)
}

func init() {
	// url.Parse lowercases the scheme, and jsonschema looks loaders up by
	// the parsed scheme.
	jsonschema.Loaders["embedfs"] = load
}

func compile(k Kind) (*jsonschema.Schema, error) {
	switch k {
	case FlagConfig:
		return jsonschema.Compile("embedFS://schemas/flag-config.schema.json")
	case PrecomputedEnvelope:
		return jsonschema.Compile("embedFS://schemas/precomputed-envelope.schema.json")
	case ClientOptions:
		return jsonschema.Compile("embedFS://schemas/client-options.schema.json")
	default:
		return nil, fmt.Errorf("schema: unknown kind %d", k)
	}
}

// Validate decodes r as JSON and validates it against the schema selected
// by k. A non-nil error means the envelope is structurally invalid and
// construction of the corresponding model must be rejected (spec.md §7,
// InvalidConfiguration) rather than attempted.
func Validate(k Kind, r io.Reader) error {
	s, err := compile(k)
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return fmt.Errorf("schema: decode: %w", err)
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("schema: validate: %w", err)
	}
	return nil
}
