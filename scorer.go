package zctc

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/zctc/zctc-go/internal/fst"
)

// scorer is the uniform façade over the three optional collaborators
// of §4.5: the LM, the lexicon FST, and the hot-word FST. It is
// stateless with respect to the beam — all per-path state lives on
// the prefixNode being extended (lm_state/lex_state/hw_state, §3).
//
// The lexicon and hot-word FSTs are concrete, independently-nil-able
// fields; only the LM goes through the LanguageModel interface, with
// nullLM standing in when no LM is configured.
type scorer struct {
	lm    LanguageModel
	alpha float64
	beta  float64

	lexicon           *fst.FST
	unkLexiconPenalty float64

	hotword        *fst.FST
	hotwordMembers *bitset.BitSet

	vocab        []string
	tokSep       string
	apostropheID int32
}

// initRoot sets the root node's collaborator states to each
// component's start state (or noState if the component is absent).
func (sc *scorer) initRoot(n *prefixNode) {
	n.lmState = sc.lm.InitialState()
	n.lexState = noState
	if sc.lexicon != nil {
		n.lexState = sc.lexicon.Start()
	}
	n.hwState = noState
	if sc.hotword != nil {
		n.hwState = sc.hotword.Start()
	}
}

// extend is called exactly once, the first time a child is created
// for a given (parent, token) pair this decode (§4.4: "If the child
// is newly created this frame, query the scorer façade"). It advances
// lex_state/hw_state/lm_state on child and returns the total score
// delta (lexicon penalty + hot-word bonus + alpha*lm_delta + beta)
// to be folded into the child's acoustic contribution.
func (sc *scorer) extend(a *arena, parent, child nodeRef, tok int32) float64 {
	p := a.dereference(parent)
	c := a.dereference(child)

	var delta float64

	delta += sc.extendLexicon(p, c, tok)
	delta += sc.extendHotword(p, c, tok)
	delta += sc.extendLM(a, child, tok)

	return delta
}

// extendLexicon implements the lexicon row of §4.5's table: a valid
// transition carries no penalty; an invalid one incurs
// unkLexiconPenalty and resets lex_state to the start state so later
// tokens can still attempt to re-enter the lexicon from scratch.
func (sc *scorer) extendLexicon(p, c *prefixNode, tok int32) float64 {
	if sc.lexicon == nil {
		c.lexState = noState
		return 0
	}

	if next, _, ok := sc.lexicon.Transition(p.lexState, tok); ok {
		c.lexState = next
		return 0
	}

	c.lexState = sc.lexicon.Start()
	return sc.unkLexiconPenalty
}

// extendHotword implements the hot-word row of §4.5: an available
// transition contributes its edge weight; reaching a match-terminal
// state additionally releases that hot word's bonus, after which the
// state resets to start so the same prefix can begin matching another
// (or the same) hot word later (DESIGN.md Open Question 1: additive
// once per completed span, not per token).
func (sc *scorer) extendHotword(p, c *prefixNode, tok int32) float64 {
	if sc.hotword == nil {
		c.hwState = noState
		return 0
	}

	c.hwScore = p.hwScore

	if !sc.hotwordMembers.Test(uint(tok)) {
		c.hwState = sc.hotword.Start()
		return 0
	}

	next, weight, ok := sc.hotword.Transition(p.hwState, tok)
	if !ok {
		c.hwState = sc.hotword.Start()
		return 0
	}

	delta := float64(weight)
	if bonus, isFinal := sc.hotword.Final(next); isFinal {
		delta += float64(bonus)
		next = sc.hotword.Start()
	}

	c.hwState = next
	c.hwScore += delta
	return delta
}

// extendLM implements the LM row of §4.5: mid-word, the state passes
// through unchanged; at a word boundary, the sub-word tokens since the
// last boundary (collected by wordTokensSinceBoundary) are scored as a
// single word query, contributing alpha*lm_delta + beta
// (DESIGN.md Open Question 2: beta per completed word).
func (sc *scorer) extendLM(a *arena, child nodeRef, tok int32) float64 {
	c := a.dereference(child)
	parentState := c.parentLMState(a)
	c.lmScore = a.dereference(c.parent).lmScore

	if !isWordBoundary(sc.vocab, tok, sc.tokSep, sc.apostropheID) {
		c.lmState = parentState
		return 0
	}

	words := wordTokensSinceBoundary(a, child, sc.vocab, sc.tokSep, sc.apostropheID)

	newState, delta := sc.lm.Score(parentState, words)
	c.lmState = newState
	c.lmScore += sc.alpha*delta + sc.beta

	return sc.alpha*delta + sc.beta
}

// parentLMState reads the LM state of n's parent, used as the query's
// starting state (the LM's own state threading, independent of the
// word-token collection walk).
func (n *prefixNode) parentLMState(a *arena) int32 {
	return a.dereference(n.parent).lmState
}

// wordTokensSinceBoundary walks from ref back toward the root,
// collecting the sub-word tokens that make up the current word: ref's
// own token (which completes the word) plus every contiguous
// continuation-token ancestor, stopping at the root or at the nearest
// ancestor whose token itself completed the previous word (spec.md
// §4.4: "The decoder never materializes words; it passes token
// sequences since the last boundary to the LM as a single query").
func wordTokensSinceBoundary(a *arena, ref nodeRef, vocab []string, tokSep string, apostropheID int32) []int32 {
	n := a.dereference(ref)
	tokens := []int32{n.token}

	for cur := n.parent; ; {
		p := a.dereference(cur)
		if p.isRoot() {
			break
		}
		if isWordBoundary(vocab, p.token, tokSep, apostropheID) {
			break
		}
		tokens = append(tokens, p.token)
		cur = p.parent
	}

	for l, r := 0, len(tokens)-1; l < r; l, r = l+1, r-1 {
		tokens[l], tokens[r] = tokens[r], tokens[l]
	}

	return tokens
}
