package zctc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zctc/zctc-go/internal/logspace"
)

// TestRankScore_AddsBetaPerDepth is a small numerical property suite
// using testify's tolerance-aware assertions, enriching the stdlib
// table-driven tests elsewhere with direct float comparisons (§8
// invariant 2: "higher word-insertion reward strictly favors deeper
// completed-word paths, all else equal").
func TestRankScore_AddsBetaPerDepth(t *testing.T) {
	t.Parallel()

	n := &prefixNode{pB: math.Log(0.4), pNB: math.Log(0.1), depth: 3}

	got := rankScore(n, 0.2)
	want := logspace.Add(math.Log(0.4), math.Log(0.1)) + 0.2*3

	assert.InDelta(t, want, got, 1e-12, "rankScore should equal logaddexp(pB,pNB) + beta*depth")
}

func TestRankScore_ZeroBetaIgnoresDepth(t *testing.T) {
	t.Parallel()

	shallow := &prefixNode{pB: math.Log(0.5), pNB: negInf, depth: 1}
	deep := &prefixNode{pB: math.Log(0.5), pNB: negInf, depth: 50}

	assert.InDelta(t, rankScore(shallow, 0), rankScore(deep, 0), 1e-12,
		"with beta=0 the depth term must not influence the score")
}

func TestRankScore_PositiveBetaStrictlyFavorsDeeperTies(t *testing.T) {
	t.Parallel()

	shallow := &prefixNode{pB: math.Log(0.5), pNB: negInf, depth: 1}
	deep := &prefixNode{pB: math.Log(0.5), pNB: negInf, depth: 2}

	require.Greater(t, rankScore(deep, 0.3), rankScore(shallow, 0.3),
		"equal acoustic mass but greater depth must rank higher under a positive beta")
}

func TestLogspaceAdd_IsAssociativeWithinTolerance(t *testing.T) {
	t.Parallel()

	a, b, c := math.Log(0.2), math.Log(0.3), math.Log(0.5)

	left := logspace.Add(logspace.Add(a, b), c)
	right := logspace.Add(a, logspace.Add(b, c))

	assert.InDelta(t, left, right, 1e-9, "log-sum-exp accumulation must be associative")
	assert.InDelta(t, 0, left, 1e-9, "log(0.2+0.3+0.5) should be log(1) == 0")
}
