package zctc

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/zctc/zctc-go/internal/fst"
)

// HotwordSpec pairs a tokenized hot word with its boost weight,
// matching the shape original_source/test2.py builds from its
// tokenizer (tokenizer._tokenize(word).ids) before handing hot words
// to the decoder — the tokenization step itself stays an external
// concern (§1 Non-goals / excluded collaborators).
type HotwordSpec struct {
	IDs    []int32
	Weight float64
}

// buildHotwordFST compiles specs into a small auxiliary FST the way
// the lexicon is built (§4.8), with each hot word's Weight carried as
// its match-terminal final weight (§4.5: "hot-word weights are
// already baked into the FST edge weights at build time" — here
// released once per completed span, per DESIGN.md Open Question 1).
// The companion bitset records every token id that participates in
// any hot word, letting the decoder's hot loop skip an FST transition
// lookup for tokens that can never possibly advance a hot-word match.
func buildHotwordFST(specs []HotwordSpec) (*fst.FST, *bitset.BitSet) {
	tree := fst.New()
	members := bitset.New(0)

	for _, spec := range specs {
		for _, tok := range spec.IDs {
			members.Set(uint(tok))
		}
		tree.InsertSequence(spec.IDs, float32(spec.Weight))
	}

	return tree, members
}
