package zctc

import (
	"log"
	"math"

	"github.com/zctc/zctc-go/internal/fst"
)

// Config holds the decoder construction parameters enumerated in §6.1
// of the specification. The zero Config is not valid; construct one
// with sensible defaults and pass it to NewDecoder.
type Config struct {
	// ThreadCount is the fixed worker-pool size used by Decode. Must
	// be >= 1.
	ThreadCount int

	// BlankID is the CTC blank token index. Must satisfy
	// 0 <= BlankID < len(Vocab).
	BlankID int32

	// CutoffTopN is the per-frame maximum candidate count. Must be
	// >= 1.
	CutoffTopN int

	// CutoffProb is the per-frame cumulative probability mass cap,
	// in (0,1].
	CutoffProb float64

	// Alpha weights the external language-model score.
	Alpha float64

	// Beta is the word-insertion reward, added once per completed
	// word (see DESIGN.md Open Question 2).
	Beta float64

	// BeamWidth is the number of active beams retained per frame.
	// Must be >= 1.
	BeamWidth int

	// Vocab is the token vocabulary; Vocab[i] is the surface form of
	// token id i.
	Vocab []string

	// UnkLexiconPenalty is the log-space penalty applied to
	// off-lexicon paths. Must be <= 0.
	UnkLexiconPenalty float64

	// MinTokProb is the per-token log-probability floor for
	// candidacy. Must be <= 0.
	MinTokProb float64

	// MaxBeamDeviation bounds pruning: beams scoring below
	// top_score + MaxBeamDeviation are dropped. Must be <= 0.
	MaxBeamDeviation float64

	// TokSep is the vocabulary continuation marker prefix (e.g. "#").
	// Tokens whose surface form begins with TokSep continue the
	// current LM word instead of starting a new one.
	TokSep string

	// LM is the optional external n-gram scoring collaborator (§6.4).
	// Nil disables LM rescoring.
	LM LanguageModel

	// Lexicon is the optional lexicon FST constraining emitted paths
	// (§4.8, §6.3). Nil disables lexicon constraints.
	Lexicon *fst.FST

	// Logger receives non-fatal construction warnings (e.g. apostrophe
	// id not found). Defaults to log.Default() when nil.
	Logger *log.Logger
}

// apostropheID is derived from Vocab, not supplied directly (§6.1).
const noApostrophe = -1

// resolved is the immutable, validated form of Config produced by
// NewDecoder. It adds fields derived from Config that the hot path
// needs precomputed.
type resolved struct {
	Config

	apostropheID int32
}

// validate checks the §7 Configuration-error conditions and, if they
// all pass, returns a resolved Config with derived fields filled in.
func (c Config) validate() (resolved, error) {
	var r resolved

	if c.ThreadCount < 1 {
		return r, errInvalidConfig("ThreadCount must be >= 1, got %d", c.ThreadCount)
	}
	if len(c.Vocab) == 0 {
		return r, errInvalidConfig("Vocab must not be empty")
	}
	if c.BlankID < 0 || int(c.BlankID) >= len(c.Vocab) {
		return r, errInvalidConfig("BlankID %d out of range [0,%d)", c.BlankID, len(c.Vocab))
	}
	if c.CutoffTopN < 1 {
		return r, errInvalidConfig("CutoffTopN must be >= 1, got %d", c.CutoffTopN)
	}
	if c.CutoffProb <= 0 || c.CutoffProb > 1 {
		return r, errInvalidConfig("CutoffProb must be in (0,1], got %v", c.CutoffProb)
	}
	if c.BeamWidth < 1 {
		return r, errInvalidConfig("BeamWidth must be >= 1, got %d", c.BeamWidth)
	}
	if c.UnkLexiconPenalty > 0 {
		return r, errInvalidConfig("UnkLexiconPenalty must be <= 0, got %v", c.UnkLexiconPenalty)
	}
	if c.MinTokProb > 0 {
		return r, errInvalidConfig("MinTokProb must be <= 0, got %v", c.MinTokProb)
	}
	if c.MaxBeamDeviation > 0 {
		return r, errInvalidConfig("MaxBeamDeviation must be <= 0, got %v", c.MaxBeamDeviation)
	}
	if c.TokSep == "" {
		c.TokSep = "#"
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}

	r.Config = c
	r.apostropheID = apostropheID(c.Vocab, c.Logger)

	return r, nil
}

// apostropheID scans vocab for the literal apostrophe token and
// returns its index, or noApostrophe if absent (§6.1). Logs a warning
// on absence, matching the teacher's habit of warning rather than
// failing on a missing-but-optional lookup.
func apostropheID(vocab []string, logger *log.Logger) int32 {
	for i, tok := range vocab {
		if tok == "'" {
			return int32(i)
		}
	}

	if logger != nil {
		logger.Printf("zctc: no apostrophe token found in vocab; contraction handling disabled")
	}
	return noApostrophe
}

// negInf is the log-space sentinel used throughout the decoder for
// "no probability mass" (§4.4).
var negInf = math.Inf(-1)
