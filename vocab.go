package zctc

import "strings"

// isContinuation reports whether token's surface form continues the
// current LM word rather than starting a new one (§4.4 word-boundary
// detection). A token continues the word if its surface form begins
// with tokSep, or if it is the apostrophe token (so contractions like
// "don't" stay within a single LM word; see §4.4 Apostrophe handling).
func isContinuation(vocab []string, tok int32, tokSep string, apostropheID int32) bool {
	if tok == apostropheID && apostropheID != noApostrophe {
		return true
	}

	surface := vocab[tok]
	return tokSep != "" && strings.HasPrefix(surface, tokSep)
}

// isWordBoundary is the complement of isContinuation: true when tok
// completes a word and the accumulated sub-word pieces since the last
// boundary should be flushed to the language model as a single query.
func isWordBoundary(vocab []string, tok int32, tokSep string, apostropheID int32) bool {
	return !isContinuation(vocab, tok, tokSep, apostropheID)
}
