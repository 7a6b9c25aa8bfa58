package zctc

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// posteriorView is a read-only, contiguous [T,V] matrix of per-frame
// token probabilities, paired with sortedIdx, a same-shaped matrix of
// token ids sorted descending by probability per frame (§3 Posterior).
//
// Both matrices are owned by the caller of Decode; posteriorView only
// ever reads them, row by row, for the duration of one sample's
// decode.
type posteriorView struct {
	probs     []float32 // row-major [T,V], post-softmax
	sortedIdx []int32   // row-major [T,V]
	frames    int       // valid frame count for this sample (<= T)
	vocabSize int
}

func newPosteriorView(probs []float32, sortedIdx []int32, vocabSize, frames int) posteriorView {
	return posteriorView{
		probs:     probs,
		sortedIdx: sortedIdx,
		frames:    frames,
		vocabSize: vocabSize,
	}
}

// at returns P[t, tok] in probability space.
func (p posteriorView) at(t int, tok int32) float32 {
	return p.probs[t*p.vocabSize+int(tok)]
}

// rankedToken returns S[t,i], the i-th most probable token at frame t.
func (p posteriorView) rankedToken(t, i int) int32 {
	return p.sortedIdx[t*p.vocabSize+i]
}

// candidateSet is the per-frame candidate token set C_t built by
// candidates(), plus a scratch bitset that candidates() keeps in step
// with tokens; the decoder itself reads only tokens.
type candidateSet struct {
	tokens  []int32
	admitted *bitset.BitSet // admitted.Test(uint(tok)) == tok in tokens
}

// newCandidateScratch allocates the reusable scratch state for one
// worker's candidate-set computation across all frames of a sample.
// The bitset is sized to the vocabulary once and cleared between
// frames instead of reallocated (§4.1 runs once per frame per sample).
func newCandidateScratch(vocabSize int) candidateSet {
	return candidateSet{
		tokens:   make([]int32, 0, vocabSize),
		admitted: bitset.New(uint(vocabSize)),
	}
}

// candidates fills cs with C_t for frame t: scan S[t,*] in descending
// probability order, admitting tokens until either cutoffTopN entries
// have been admitted or the accumulated probability mass exceeds
// cutoffProb, discarding any token whose log-probability is below
// minTokProb regardless of rank (§4.1). The blank token is never
// added to C_t; it is handled implicitly by the decoder.
func (p posteriorView) candidates(t int, blankID int32, cutoffTopN int, cutoffProb, minTokProb float64, cs *candidateSet) {
	cs.tokens = cs.tokens[:0]
	cs.admitted.ClearAll()

	var mass float64
	for i := 0; i < p.vocabSize && len(cs.tokens) < cutoffTopN && mass <= cutoffProb; i++ {
		tok := p.rankedToken(t, i)
		prob := float64(p.at(t, tok))
		mass += prob

		if tok == blankID {
			continue
		}
		if prob <= 0 || math.Log(prob) < minTokProb {
			continue
		}

		cs.tokens = append(cs.tokens, tok)
		cs.admitted.Set(uint(tok))
	}
}
