// Package fst implements the deterministic finite-state transducer
// used by the decoder for lexicon constraints and hot-word boosting
// (spec.md §4.8, §6.3). States are plain indices into a flat slice;
// arcs are kept sorted by input label so transitions are a binary
// search, mirroring the teacher's habit of keeping small ordered
// collections as sorted slices rather than maps (see bart's
// DumpListNode / trieItem sorting in serialize.go).
package fst

import "sort"

// Arc is a single transition: from the owning state, consuming
// InLabel, to Target, contributing Weight (log-space) to the path.
type Arc struct {
	InLabel int32
	Weight  float32
	Target  int32
}

// State is one FST state: optionally final (carrying FinalWeight),
// with zero or more outgoing Arcs sorted by InLabel.
type State struct {
	IsFinal     bool
	FinalWeight float32
	Arcs        []Arc
}

// FST is a deterministic token-level finite-state transducer. State 0
// is always the start state (§6.3).
type FST struct {
	States []State
}

// New returns an FST with a single, non-final start state.
func New() *FST {
	return &FST{States: []State{{}}}
}

// Start returns the start state, always 0.
func (f *FST) Start() int32 { return 0 }

// Transition returns the state reached from state by consuming tok,
// and its arc weight, or ok=false if no such arc exists (§4.5:
// "If transition (lex_state, c) exists, return new state and delta").
func (f *FST) Transition(state, tok int32) (target int32, weight float32, ok bool) {
	arcs := f.States[state].Arcs
	i := sort.Search(len(arcs), func(i int) bool { return arcs[i].InLabel >= tok })
	if i < len(arcs) && arcs[i].InLabel == tok {
		a := arcs[i]
		return a.Target, a.Weight, true
	}
	return 0, 0, false
}

// Final reports whether state is a match-terminal state and, if so,
// its associated weight (the hot-word "release bonus" of §4.5, or the
// lexicon word weight of §4.8).
func (f *FST) Final(state int32) (weight float32, ok bool) {
	s := f.States[state]
	return s.FinalWeight, s.IsFinal
}

// addState appends a fresh non-final state and returns its index.
func (f *FST) addState() int32 {
	f.States = append(f.States, State{})
	return int32(len(f.States) - 1)
}

// addArc inserts an arc from `from` to `to` under label, keeping
// State.Arcs sorted by InLabel so Transition's binary search stays
// valid. If an arc for label already exists, it is left untouched and
// its existing target is returned (shared-prefix trie construction).
func (f *FST) addArc(from, to, label int32, weight float32) int32 {
	arcs := f.States[from].Arcs
	i := sort.Search(len(arcs), func(i int) bool { return arcs[i].InLabel >= label })

	if i < len(arcs) && arcs[i].InLabel == label {
		return arcs[i].Target
	}

	arcs = append(arcs, Arc{})
	copy(arcs[i+1:], arcs[i:])
	arcs[i] = Arc{InLabel: label, Weight: weight, Target: to}
	f.States[from].Arcs = arcs

	return to
}

// InsertSequence walks (creating arcs as needed) the path for tokens
// starting at Start, sharing any prefix already present in the trie,
// and marks the resulting state final with weight. It is the shared
// trie-insertion primitive behind both Build (lexicon, word text) and
// the decoder's hot-word builder (already-tokenized id sequences).
func (f *FST) InsertSequence(tokens []int32, weight float32) (final int32) {
	state := f.Start()

	for _, tok := range tokens {
		if next, _, ok := f.Transition(state, tok); ok {
			state = next
			continue
		}
		state = f.addArc(state, f.addState(), tok, 0)
	}

	f.States[state].IsFinal = true
	f.States[state].FinalWeight = weight

	return state
}
