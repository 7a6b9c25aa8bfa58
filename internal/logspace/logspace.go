// Package logspace provides the small numerically-stable log-space
// arithmetic helpers the decoder relies on for score accumulation
// (spec.md §4.4: "Scores are maintained in log space throughout").
//
// It is a tiny, independently testable leaf package with no dependency
// on the decoder's tree or beam types, the same shape as the teacher's
// internal/lpm package.
package logspace

import "math"

// NegInf is the log-space sentinel for "no probability mass".
var NegInf = math.Inf(-1)

// SentinelFloor is the threshold below which a finite value is treated
// as indistinguishable from NegInf (spec.md §4.4: "Extremely small
// partial scores (< -∞ + ε) are treated as sentinels"). -Inf itself
// has no finite neighborhood, so the floor is expressed as a very
// large-magnitude negative value rather than as an offset from -Inf.
const SentinelFloor = -1e300

// Add computes log(exp(a) + exp(b)) without overflow/underflow. It is
// the "⊕=" log-sum-exp accumulation operator used throughout the
// decoder's per-frame extension step.
func Add(a, b float64) float64 {
	if isSentinel(a) {
		return b
	}
	if isSentinel(b) {
		return a
	}

	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}

// isSentinel reports whether v is indistinguishable from -Inf for the
// purposes of log-sum-exp accumulation.
func isSentinel(v float64) bool {
	return math.IsInf(v, -1) || v < SentinelFloor
}
