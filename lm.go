package zctc

// LanguageModel is the abstract external n-gram scoring collaborator
// (§6.4). Implementations adapt any external n-gram library (e.g. a
// KenLM binding) to this shape; KenLM-style scoring internals are
// explicitly out of scope for this package (§1).
type LanguageModel interface {
	// InitialState returns the LM's state for the empty prefix.
	InitialState() int32

	// Score scores tokens, the sub-word pieces accumulated since the
	// last word boundary, as a single word query from state, returning
	// the LM's new state and a log-probability delta.
	Score(state int32, tokens []int32) (newState int32, logProbDelta float64)

	// UnkPenalty is the finite log-space penalty applied when tokens
	// resolves to a word the LM does not know.
	UnkPenalty() float64
}

var _ LanguageModel = nullLM{}

// nullLM is used internally whenever Config.LM is nil, so the decoder's
// hot path never needs a nil check on the LM itself.
type nullLM struct{}

func (nullLM) InitialState() int32 { return noState }

func (nullLM) Score(state int32, _ []int32) (int32, float64) {
	return state, 0
}

func (nullLM) UnkPenalty() float64 { return 0 }
