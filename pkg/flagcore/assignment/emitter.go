// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package assignment

import (
	"time"

	"github.com/flagcore/go-flagcore/internal/telemetry"
	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
)

// Emitter implements spec.md §4.10 (C11): it composes an Event from
// evaluation outputs, de-duplicates through a Cache, and dispatches to a
// Sink — swallowing whatever the sink panics with so a misbehaving logger
// never affects the evaluator's return value (spec.md §4.10, §5).
type Emitter struct {
	Cache     Cache
	Sink      Sink
	Metadata  Metadata
	Telemetry telemetry.Sink
}

// Emit builds and dispatches the assignment event for one (subject, flag,
// allocation, variation) tuple, subject to the cache's at-most-once
// contract. The subject's attributes are snapshotted before dispatch so a
// caller mutating its own map afterward cannot affect an already-emitted
// event (spec.md §3). A nil Sink makes Emit a no-op; a nil Cache behaves
// like NullCache (spec.md §4.9: "a null cache means always log").
func (e Emitter) Emit(flagKey, allocationKey, variationKey string, subject model.Subject, extraLogging map[string]string, now time.Time) {
	if e.Sink == nil {
		return
	}

	key := model.AssignmentCacheKey{
		SubjectKey:    subject.Key,
		FlagKey:       flagKey,
		AllocationKey: allocationKey,
		VariationKey:  variationKey,
	}

	if !e.cacheOrDefault().ShouldLog(key.String()) {
		e.telemetryOrDefault().IncCacheHit()
		return
	}
	e.telemetryOrDefault().IncCacheMiss()

	event := Event{
		Experiment:        allocationKey,
		FeatureFlag:       flagKey,
		Allocation:        allocationKey,
		Variation:         variationKey,
		Subject:           subject.Key,
		SubjectAttributes: snapshotAttributes(subject.Attributes),
		Timestamp:         now,
		Metadata:          e.Metadata,
		ExtraLogging:      extraLogging,
	}

	e.dispatch(event)
}

func (e Emitter) cacheOrDefault() Cache {
	if e.Cache != nil {
		return e.Cache
	}
	return NullCache{}
}

// telemetryOrDefault reports cache hit/miss counts (SPEC_FULL.md §4.0, A3)
// so a Client built without WithTelemetry still runs without a nil check at
// every call site.
func (e Emitter) telemetryOrDefault() telemetry.Sink {
	if e.Telemetry != nil {
		return e.Telemetry
	}
	return telemetry.Noop()
}

// dispatch recovers from a panicking Sink so it never escapes into caller
// code (spec.md §4.10: "Logger exceptions are swallowed").
func (e Emitter) dispatch(event Event) {
	defer func() {
		_ = recover()
	}()
	e.Sink.LogAssignment(event)
}
