// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package assignment

import (
	"time"

	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// Metadata identifies the SDK and environment an Event was produced by
// (spec.md §6 metaData).
type Metadata struct {
	SDKName     string
	SDKVersion  string
	Environment string
}

// Event is the assignment-log record built by Emit and handed to a Sink
// (spec.md §4.10, §6). Experiment mirrors AllocationKey: this core treats
// every allocation as a potential experiment unit, leaving any
// distinction between "experiment" and "rollout" allocations to an outer
// layer's naming convention.
type Event struct {
	Experiment        string
	FeatureFlag       string
	Allocation        string
	Variation         string
	Subject           string
	SubjectAttributes map[string]value.Value
	Timestamp         time.Time
	Metadata          Metadata
	ExtraLogging      map[string]string
}

// Sink receives composed assignment events. Implementations must not
// block the calling evaluation for long; the emitter does not create
// threads or post to an executor on the caller's behalf (spec.md §4.10,
// §5).
type Sink interface {
	LogAssignment(Event)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Event)

// LogAssignment implements Sink.
func (f SinkFunc) LogAssignment(e Event) { f(e) }

// snapshotAttributes copies a subject's attribute map so later mutation by
// the caller cannot affect an already-emitted event (spec.md §3: subject
// and attribute bags are caller-owned and per-call).
func snapshotAttributes(attrs map[string]value.Value) map[string]value.Value {
	if attrs == nil {
		return nil
	}
	cp := make(map[string]value.Value, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return cp
}
