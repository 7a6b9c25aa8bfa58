package fst

import "strings"

// WordWeight is one entry in the word list fed to Build: a surface
// word plus its optional weight (0 for plain lexicon entries, a
// positive boost for hot words, per spec.md §4.8).
type WordWeight struct {
	Word   string
	Weight float32
}

// Build constructs a deterministic token-trie FST from words and the
// decoder's vocabulary (spec.md §4.8). Each word is tokenized against
// vocab by greedy longest-prefix match; words with any residual text
// that cannot be matched against the vocabulary are reported in
// skipped rather than inserted. tokSep is the vocabulary's continuation
// marker prefix (Config.TokSep), stripped from each surface form before
// matching since word is always marker-free plain text.
func Build(words []WordWeight, vocab []string, tokSep string) (tree *FST, skipped []string) {
	m := newMatcher(vocab, tokSep)
	tree = New()

	for _, w := range words {
		tokens, ok := m.tokenize(w.Word)
		if !ok {
			skipped = append(skipped, w.Word)
			continue
		}

		tree.InsertSequence(tokens, w.Weight)
	}

	return tree, skipped
}

// matcher performs greedy longest-prefix tokenization of a word
// against a vocabulary of sub-word surface forms. stripped holds each
// vocab entry with its tokSep continuation marker removed, since plain
// text being tokenized never carries that marker.
type matcher struct {
	stripped []string
}

func newMatcher(vocab []string, tokSep string) *matcher {
	stripped := make([]string, len(vocab))
	for i, surface := range vocab {
		if tokSep != "" {
			surface = strings.TrimPrefix(surface, tokSep)
		}
		stripped[i] = surface
	}
	return &matcher{stripped: stripped}
}

// tokenize returns the vocabulary token ids covering word end-to-end,
// or ok=false if any residual text remains unmatched.
func (m *matcher) tokenize(word string) (tokens []int32, ok bool) {
	remaining := word

	for remaining != "" {
		best := -1
		bestLen := 0

		for id, surface := range m.stripped {
			if surface == "" {
				continue
			}
			if len(surface) > bestLen && strings.HasPrefix(remaining, surface) {
				best = id
				bestLen = len(surface)
			}
		}

		if best < 0 {
			return nil, false
		}

		tokens = append(tokens, int32(best))
		remaining = remaining[bestLen:]
	}

	return tokens, true
}
