package zctc

import (
	"math"

	"github.com/zctc/zctc-go/internal/logspace"
)

// Decoder is a configured CTC prefix-beam-search decoder. A Decoder is
// immutable after NewDecoder returns and safe for concurrent use by
// multiple goroutines via Decode — its shared collaborators (LM,
// lexicon FST) are read-only, and every decode call's mutable state
// (arenas, beam sets) is confined to one worker (§5 Concurrency &
// Resource model).
type Decoder struct {
	cfg     resolved
	pool    *nodePool
	workers *workerPool
}

// NewDecoder validates cfg (§7 Configuration error) and returns a
// ready-to-use Decoder with its node pool and worker pool started.
// ThreadCount goroutines are spawned once here and reused by every
// subsequent Decode call (§5 Concurrency & Resource model).
func NewDecoder(cfg Config) (*Decoder, error) {
	r, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	return &Decoder{
		cfg:     r,
		pool:    newNodePool(),
		workers: newWorkerPool(r.ThreadCount),
	}, nil
}

// newScorer builds this call's scorer façade: the LM and lexicon are
// shared across the whole decoder's lifetime, while the hot-word FST
// is rebuilt per Decode call from the caller-supplied specs (§6.2).
func (d *Decoder) newScorer(hotwords []HotwordSpec) *scorer {
	lm := d.cfg.LM
	if lm == nil {
		lm = nullLM{}
	}

	sc := &scorer{
		lm:                lm,
		alpha:             d.cfg.Alpha,
		beta:              d.cfg.Beta,
		lexicon:           d.cfg.Lexicon,
		unkLexiconPenalty: d.cfg.UnkLexiconPenalty,
		vocab:             d.cfg.Vocab,
		tokSep:            d.cfg.TokSep,
		apostropheID:      d.cfg.apostropheID,
	}

	if len(hotwords) > 0 {
		sc.hotword, sc.hotwordMembers = buildHotwordFST(hotwords)
	}

	return sc
}

// sampleWorkspace bundles the per-worker, per-sample mutable state a
// single decode needs: its own arena, beam set and candidate scratch,
// none of which escape the worker (§5 Memory discipline).
type sampleWorkspace struct {
	pool *nodePool
	cand candidateSet
}

func newSampleWorkspace(pool *nodePool, vocabSize int) *sampleWorkspace {
	return &sampleWorkspace{
		pool: pool,
		cand: newCandidateScratch(vocabSize),
	}
}

// decodeSample runs the §4.4 per-frame extension/pruning loop for one
// sample and returns its surviving beams ranked for terminal selection
// (§4.6), along with the arena that owns them (the caller must call
// arena.release() once it is done reading the beams).
func (d *Decoder) decodeSample(ws *sampleWorkspace, sc *scorer, pv posteriorView) (*arena, []beamEntry) {
	cfg := d.cfg

	a := newArena(ws.pool)
	sc.initRoot(a.dereference(a.root()))
	beams := newBeamSet(a)

	for t := 0; t < pv.frames; t++ {
		beams.snapshot()

		blankLogP := math.Log(float64(pv.at(t, cfg.BlankID)))
		pv.candidates(t, cfg.BlankID, cfg.CutoffTopN, cfg.CutoffProb, cfg.MinTokProb, &ws.cand)

		for _, ref := range beams.active {
			extendBeam(a, beams, sc, pv, t, ref, blankLogP, ws.cand.tokens, cfg.BlankID)
		}

		beams.prune(cfg.BeamWidth, cfg.MaxBeamDeviation, cfg.Beta)
	}

	return a, terminalOrder(a, beams.active, cfg.Beta)
}

// extendBeam applies the three extension rules of §4.4 to a single
// surviving beam at frame t: blank extension, repeat-last-token
// extension, and new-token extensions over the frame's candidate set.
func extendBeam(a *arena, beams *beamSet, sc *scorer, pv posteriorView, t int, ref nodeRef, blankLogP float64, candidates []int32, blankID int32) {
	n := a.dereference(ref)
	pbPrev, pnbPrev := n.pBPrev, n.pNBPrev
	combined := logspace.Add(pbPrev, pnbPrev)

	// 1. blank extension: the prefix stays the same, contributing to
	// its new p_b.
	beams.touch(ref, blankLogP+combined, negInf)

	// 2. repeat-last-token extension: only the p_nb_prev mass may
	// extend the same prefix by repeating its own last token; the
	// p_b_prev mass is handled by the new-token-extension branch below.
	if !n.isRoot() {
		lastTok := n.token
		pLast := math.Log(float64(pv.at(t, lastTok)))
		beams.touch(ref, negInf, pLast+pnbPrev)
	}

	// 3. new-token extensions.
	for _, c := range candidates {
		if c == blankID {
			continue
		}

		var logMass float64
		if !n.isRoot() && c == n.token {
			// repeat of the beam's own last token is covered by rule 2;
			// only the blank-ending mass may start a fresh repeat here.
			logMass = pbPrev
		} else {
			logMass = combined
		}

		pc := math.Log(float64(pv.at(t, c)))
		acoustic := pc + logMass

		childRef, isNew := a.getOrCreateChild(ref, c, int32(t))

		var delta float64
		if isNew {
			delta = sc.extend(a, ref, childRef, c)
		}

		beams.touch(childRef, negInf, acoustic+delta)
	}
}

// terminalOrder combines each beam's (p_b, p_nb) into the terminal
// score of §4.6, then sorts descending, stable, breaking ties by lower
// nodeRef (§8 Scenario F).
func terminalOrder(a *arena, active []nodeRef, beta float64) []beamEntry {
	entries := make([]beamEntry, len(active))
	for i, ref := range active {
		entries[i] = beamEntry{ref: ref, score: rankScore(a.dereference(ref), beta)}
	}

	stableSortBeams(entries)
	return entries
}
