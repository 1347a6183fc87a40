// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package eval

import (
	"time"

	"github.com/flagcore/go-flagcore/pkg/flagcore/model"
	"github.com/flagcore/go-flagcore/pkg/flagcore/sharder"
	"github.com/flagcore/go-flagcore/pkg/flagcore/value"
)

// Result is the outcome of running the standard evaluator pipeline
// (spec.md §4.7, C8). Matched is false on every failure path (missing
// flag, disabled flag, type mismatch, no matching allocation, missing
// variation, decode failure) — callers fall back to their own default in
// that case and must not emit an assignment event.
type Result struct {
	Flag          model.Flag
	Allocation    model.Allocation
	Split         model.Split
	Variation     model.Variation
	Value         value.Value
	Matched       bool
	DegradedRegex bool
}

// StandardEvaluator implements spec.md §4.7 (C8): the top-level
// enabled → rules → allocations → splits → variation pipeline.
type StandardEvaluator struct {
	Sharder sharder.Sharder
}

// Evaluate runs the standard pipeline against view for flagKey and
// subject, requiring the resolved flag's VariationType to equal
// requestedType (step 3 of §4.7). now is the instant allocation time
// windows are evaluated against.
func (e StandardEvaluator) Evaluate(view ConfigView, flagKey string, subject model.Subject, requestedType model.VariationType, now time.Time) Result {
	flag, ok := view.LookupFlag(flagKey)
	if !ok {
		return Result{}
	}

	if !flag.Enabled {
		return Result{}
	}

	if flag.VariationType != requestedType {
		return Result{}
	}

	sh := e.Sharder
	if sh == nil {
		sh = sharder.MD5{}
	}

	selection := SelectAllocation(flag, subject.Key, subject.Attributes, now, sh, view.Obfuscated())
	if !selection.Matched {
		return Result{DegradedRegex: selection.DegradedRegex}
	}

	variation, ok := flag.Variations[selection.Split.VariationKey]
	if !ok {
		return Result{DegradedRegex: selection.DegradedRegex}
	}

	decoded, err := view.DecodeVariationValue(flag.VariationType, variation.Value)
	if err != nil {
		return Result{DegradedRegex: selection.DegradedRegex}
	}

	return Result{
		Flag:          flag,
		Allocation:    selection.Allocation,
		Split:         selection.Split,
		Variation:     model.Variation{Key: variation.Key, Value: decoded},
		Value:         decoded,
		Matched:       true,
		DegradedRegex: selection.DegradedRegex,
	}
}
