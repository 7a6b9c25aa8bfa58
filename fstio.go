package zctc

import "github.com/zctc/zctc-go/internal/fst"

// WordWeight is one entry in a word list handed to BuildLexiconFST: a
// surface word plus its optional weight (0 for plain lexicon entries,
// a positive boost for hot words, per §4.8).
type WordWeight = fst.WordWeight

// BuildLexiconFST tokenizes words against vocab by greedy longest-prefix
// match, stripping tokSep from continuation-piece surface forms before
// matching, and assembles the result into a deterministic token-trie
// FST (§4.8) suitable for Config.Lexicon. Words
// whose residual text cannot be matched against vocab are returned in
// skipped rather than inserted; this is a reporting signal, not an
// error, since the caller may still want to build from what matched.
func BuildLexiconFST(words []WordWeight, vocab []string, tokSep string) (tree *fst.FST, skipped []string) {
	return fst.Build(words, vocab, tokSep)
}

// LoadLexiconFST reads a lexicon or hot-word FST previously written in
// the §6.3 binary format and returns it ready to assign to
// Config.Lexicon. Hot-word FSTs are not loaded this way; Decode builds
// them from HotwordSpec token ids. A read failure is a Resource error (§7): the file is
// unusable, but it is independent of any single decode call's shape.
func LoadLexiconFST(path string) (*fst.FST, error) {
	tree, err := fst.Load(path)
	if err != nil {
		return nil, errResource("loading lexicon FST from %s: %v", path, err)
	}
	return tree, nil
}
