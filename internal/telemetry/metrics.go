// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package telemetry implements SPEC_FULL.md's ambient telemetry section
// (A3): Prometheus counters for the handful of events the evaluation core
// surfaces for outside observation — a degraded obfuscated-regex
// comparison (spec.md §9), cache hits/misses, and assignments served.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Sink receives the core's telemetry signals. A nil Sink is never passed
// to evaluator code directly — use Noop() in its place.
type Sink interface {
	IncDegradedRegex(flagKey string)
	IncCacheHit()
	IncCacheMiss()
	IncAssignment(flagKey string)
}

// PrometheusSink is the default Sink, registered against a caller-supplied
// registerer so multiple Client instances in one process don't collide on
// prometheus' default registry (spec.md §9: "the core must be instantiable
// multiple times").
type PrometheusSink struct {
	degradedRegex *prometheus.CounterVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	assignments   *prometheus.CounterVec
}

var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink builds and registers the counters against reg. Passing
// a fresh prometheus.NewRegistry() per Client avoids cross-instance metric
// collisions; passing prometheus.DefaultRegisterer is fine for a
// single-instance process.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		degradedRegex: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagcore",
			Name:      "degraded_regex_total",
			Help:      "Count of MATCHES/NOT_MATCHES evaluations that fell back to hash equality under an obfuscated configuration.",
		}, []string{"flag"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagcore",
			Name:      "assignment_cache_hits_total",
			Help:      "Count of assignment-log dedup cache hits (already logged).",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flagcore",
			Name:      "assignment_cache_misses_total",
			Help:      "Count of assignment-log dedup cache misses (first time logged).",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flagcore",
			Name:      "assignments_total",
			Help:      "Count of assignments served per flag.",
		}, []string{"flag"}),
	}
	reg.MustRegister(s.degradedRegex, s.cacheHits, s.cacheMisses, s.assignments)
	return s
}

func (s *PrometheusSink) IncDegradedRegex(flagKey string) { s.degradedRegex.WithLabelValues(flagKey).Inc() }
func (s *PrometheusSink) IncCacheHit()                    { s.cacheHits.Inc() }
func (s *PrometheusSink) IncCacheMiss()                   { s.cacheMisses.Inc() }
func (s *PrometheusSink) IncAssignment(flagKey string)    { s.assignments.WithLabelValues(flagKey).Inc() }

// noopSink discards every signal; used when a caller doesn't configure
// telemetry.
type noopSink struct{}

var _ Sink = noopSink{}

func (noopSink) IncDegradedRegex(string) {}
func (noopSink) IncCacheHit()            {}
func (noopSink) IncCacheMiss()           {}
func (noopSink) IncAssignment(string)    {}

// Noop returns a Sink that discards every signal.
func Noop() Sink { return noopSink{} }
