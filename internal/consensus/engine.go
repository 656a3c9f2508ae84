// Package consensus aggregates independent validator judgments into a
// single score and verdict. It is pure computation: no storage, no I/O.
package consensus

import (
	"math"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// DefaultThreshold is the consensus score a claim must reach to pass.
const DefaultThreshold = 0.66

// DefaultQuorum is the minimum number of usable validator results required
// for a meaningful verdict.
const DefaultQuorum = 2

// Outcome is the result of aggregating one round of validator results.
//
// An insufficient quorum is an outcome, not an error: the record is kept
// with Passed=false and whatever partial mean was computable, so failed
// rounds are never silently dropped.
type Outcome struct {
	Value     float64
	Passed    bool
	QuorumMet bool
	Usable    int
	Excluded  int
}

// Engine evaluates validator results against a threshold and quorum.
type Engine struct {
	Threshold float64
	Quorum    int
}

// New creates an engine, clamping the threshold into [0,1] and forcing the
// quorum to at least one. The threshold is quantized to stored precision so
// the comparison made here is the same one a reader of the record can redo.
func New(threshold float64, quorum int) *Engine {
	if math.IsNaN(threshold) {
		threshold = DefaultThreshold
	}
	threshold = object.Quantize(math.Min(1.0, math.Max(0.0, threshold)))
	if quorum < 1 {
		quorum = 1
	}
	return &Engine{Threshold: threshold, Quorum: quorum}
}

// Evaluate partitions results into usable (status OK with a finite
// confidence) and excluded, then averages the usable confidences with no
// per-validator weighting. The threshold boundary is inclusive: a value
// exactly at the threshold passes. Confidences and the mean are quantized
// to stored precision, so re-evaluating a decoded record reproduces its
// value and verdict exactly.
func (e *Engine) Evaluate(results []object.ValidatorResult) Outcome {
	var sum float64
	var usable int
	for _, r := range results {
		c := float64(r.Confidence)
		if r.Status != object.StatusOK || math.IsNaN(c) {
			continue
		}
		sum += object.Quantize(math.Min(1.0, math.Max(0.0, c)))
		usable++
	}

	out := Outcome{
		Usable:   usable,
		Excluded: len(results) - usable,
	}
	if usable > 0 {
		out.Value = object.Quantize(sum / float64(usable))
	}
	if usable < e.Quorum {
		return out
	}
	out.QuorumMet = true
	out.Passed = out.Value >= e.Threshold
	return out
}
