// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package flagcore

import (
	"github.com/flagcore/go-flagcore/internal/telemetry"
	"github.com/flagcore/go-flagcore/pkg/flagcore/assignment"
	"github.com/flagcore/go-flagcore/pkg/log"
)

// EvaluatorType selects the evaluation strategy (spec.md §6). OPTIMIZED is
// a recognized configuration value without a distinct algorithm in this
// core — both values currently run the standard pipeline (C8); the option
// exists so configuration documents written for the option's presence
// validate and round-trip cleanly.
type EvaluatorType string

const (
	EvaluatorStandard  EvaluatorType = "STANDARD"
	EvaluatorOptimized EvaluatorType = "OPTIMIZED"
)

type config struct {
	obfuscated             bool
	evaluatorType          EvaluatorType
	assignmentCacheEnabled bool
	logger                 *log.Logger
	telemetry              telemetry.Sink
	sdkName                string
	sdkVersion             string
	environment            string
	cache                  assignment.Cache
	sink                   assignment.Sink
}

func defaultConfig() *config {
	return &config{
		evaluatorType:          EvaluatorStandard,
		assignmentCacheEnabled: true,
		logger:                 log.Nop(),
		telemetry:              telemetry.Noop(),
		sdkName:                "go-flagcore",
		sdkVersion:             sdkVersion,
	}
}

// Option configures a Client at construction time (spec.md §6
// "Configuration options").
type Option func(*config)

// WithObfuscated sets the Client's obfuscated option (spec.md §3, §6;
// default false). It applies only while no configuration is loaded; once
// SetConfiguration has installed one, that Configuration's own Obfuscated
// field decides.
func WithObfuscated(v bool) Option {
	return func(c *config) { c.obfuscated = v }
}

// WithEvaluatorType selects STANDARD or OPTIMIZED (spec.md §6; default
// STANDARD — see EvaluatorType's doc comment for what OPTIMIZED means
// here).
func WithEvaluatorType(t EvaluatorType) Option {
	return func(c *config) { c.evaluatorType = t }
}

// WithAssignmentCacheEnabled toggles the at-most-once dedup cache (spec.md
// §4.9, §6; default true). Disabling it makes every matching evaluation
// with doLog=true emit a log event.
func WithAssignmentCacheEnabled(v bool) Option {
	return func(c *config) { c.assignmentCacheEnabled = v }
}

// WithLogger installs a leveled logger on the Client — distinct from the
// assignment Sink installed via WithAssignmentSink. The Client stores it;
// none of its evaluation paths write to it.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTelemetry installs the telemetry.Sink assignments and evaluations
// report to (spec.md §9's "warning telemetry hook").
func WithTelemetry(t telemetry.Sink) Option {
	return func(c *config) {
		if t != nil {
			c.telemetry = t
		}
	}
}

// WithSDKMetadata sets the sdkName/sdkVersion fields stamped onto every
// AssignmentEvent (spec.md §6 metaData).
func WithSDKMetadata(name, version string) Option {
	return func(c *config) {
		if name != "" {
			c.sdkName = name
		}
		if version != "" {
			c.sdkVersion = version
		}
	}
}

// WithEnvironment sets the environment name stamped onto every
// AssignmentEvent (SPEC_FULL.md §3 Environment).
func WithEnvironment(name string) Option {
	return func(c *config) { c.environment = name }
}

// WithAssignmentSink installs the Sink assignment events are dispatched
// to. A Client without one evaluates normally but never emits events.
func WithAssignmentSink(sink assignment.Sink) Option {
	return func(c *config) { c.sink = sink }
}

const sdkVersion = "0.1.0"
