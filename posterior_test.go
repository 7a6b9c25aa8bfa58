package zctc

import "testing"

// rankedRow builds a single-frame posterior view's probs/sortedIdx pair
// from a slice of probabilities already given in descending order, so
// tests can express candidate sets directly instead of sorting by hand.
func rankedRow(descendingProbs []float32) posteriorView {
	v := len(descendingProbs)
	probs := make([]float32, v)
	sortedIdx := make([]int32, v)

	for rank, p := range descendingProbs {
		// token id == its rank position for this synthetic row.
		probs[rank] = p
		sortedIdx[rank] = int32(rank)
	}

	return newPosteriorView(probs, sortedIdx, v, 1)
}

func TestCandidates_StopsAtCutoffTopN(t *testing.T) {
	t.Parallel()

	pv := rankedRow([]float32{0.5, 0.2, 0.15, 0.1, 0.05})
	cs := newCandidateScratch(5)

	pv.candidates(0, 4 /* blank id: the last token, never reached before the cutoff */, 2, 0.999, -100, &cs)

	if len(cs.tokens) != 2 {
		t.Fatalf("tokens = %v, want 2 entries", cs.tokens)
	}
	if cs.tokens[0] != 0 || cs.tokens[1] != 1 {
		t.Errorf("tokens = %v, want [0 1]", cs.tokens)
	}
}

func TestCandidates_StopsAtCutoffProbButAdmitsCrossingToken(t *testing.T) {
	t.Parallel()

	pv := rankedRow([]float32{0.5, 0.3, 0.15, 0.05})
	cs := newCandidateScratch(4)

	// mass after token 0: 0.5 (<=0.6, admit). After token 1: 0.8 (>0.6,
	// but it was still admitted on the iteration that crossed 0.6).
	pv.candidates(0, 9, 10, 0.6, -100, &cs)

	if len(cs.tokens) != 2 {
		t.Fatalf("tokens = %v, want the crossing token still admitted (2 entries)", cs.tokens)
	}
}

func TestCandidates_SkipsBlankID(t *testing.T) {
	t.Parallel()

	pv := rankedRow([]float32{0.6, 0.3, 0.1})
	cs := newCandidateScratch(3)

	pv.candidates(0, 0, 10, 0.999, -100, &cs)

	for _, tok := range cs.tokens {
		if tok == 0 {
			t.Error("blank id must never appear in the candidate set")
		}
	}
}

func TestCandidates_DropsBelowMinTokProb(t *testing.T) {
	t.Parallel()

	pv := rankedRow([]float32{0.9, 0.001})
	cs := newCandidateScratch(2)

	// log(0.001) ~= -6.9; set the floor just above it so token 1 is dropped.
	pv.candidates(0, 9, 10, 0.999, -5, &cs)

	if len(cs.tokens) != 1 || cs.tokens[0] != 0 {
		t.Errorf("tokens = %v, want [0] (low-probability token filtered)", cs.tokens)
	}
}

func TestCandidates_ResetsAcrossCalls(t *testing.T) {
	t.Parallel()

	pv := rankedRow([]float32{0.9, 0.1})
	cs := newCandidateScratch(2)

	pv.candidates(0, 9, 10, 0.999, -100, &cs)
	if len(cs.tokens) != 2 {
		t.Fatalf("first call: tokens = %v, want 2 entries", cs.tokens)
	}

	// Now token 0 is the blank id and must be excluded, and the scratch
	// state from the previous call must not leak into this one.
	pv.candidates(0, 0, 10, 0.999, -100, &cs)
	if len(cs.tokens) != 1 || cs.tokens[0] != 1 {
		t.Errorf("second call: tokens = %v, want [1]", cs.tokens)
	}
}
