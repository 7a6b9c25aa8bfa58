package zctc

import (
	"slices"

	"github.com/zctc/zctc-go/internal/logspace"
)

// beamEntry is a snapshot of one beam's terminal ranking, computed by
// prune (and reused at the final frame for terminal selection, §4.6).
type beamEntry struct {
	ref   nodeRef
	score float64
}

// compareBeamEntries orders beamEntry descending by score, breaking
// ties by lower nodeRef (earlier arena index) for determinism (§4.3,
// §8 Scenario F). Shared by prune's per-frame pruning and the final
// frame's terminal ordering so both rank identically.
func compareBeamEntries(a, b beamEntry) int {
	if a.score != b.score {
		if a.score > b.score {
			return -1
		}
		return 1
	}
	return int(a.ref) - int(b.ref)
}

// stableSortBeams sorts entries in place per compareBeamEntries.
func stableSortBeams(entries []beamEntry) {
	slices.SortStableFunc(entries, compareBeamEntries)
}

// beamSet is the active collection of prefix-node references for one
// frame, together with their blank-end and non-blank-end
// log-probabilities, which live directly on the referenced prefixNode
// (§3 Beam entry, §4.3 Beam set operations).
//
// A beamSet is owned by exactly one arena/decode and rebuilt every
// frame: snapshot() at frame start, touch() for every extension, then
// prune() once all of a frame's extensions have been applied.
type beamSet struct {
	arena *arena

	active   []nodeRef       // survivors of the previous prune
	frontier []nodeRef       // nodes touched so far this frame, insertion order
	touched  map[nodeRef]bool // frontier membership, for O(1) dedup in touch
}

// newBeamSet creates an empty beam set seeded with just the root
// (depth 0, neutral scores — an empty prefix "ends in blank" with
// probability 1, i.e. log-probability 0).
func newBeamSet(a *arena) *beamSet {
	root := a.dereference(a.root())
	root.pB, root.pNB = 0, negInf

	return &beamSet{
		arena:   a,
		active:  []nodeRef{a.root()},
		touched: make(map[nodeRef]bool, 64),
	}
}

// snapshot copies p_b -> p_b_prev and p_nb -> p_nb_prev for every
// active node, then resets p_b = p_nb = -Inf so the frame's
// extensions start from a clean slate (§4.3).
func (bs *beamSet) snapshot() {
	for _, ref := range bs.active {
		n := bs.arena.dereference(ref)
		n.pBPrev, n.pNBPrev = n.pB, n.pNB
		n.pB, n.pNB = negInf, negInf
	}
}

// touch inserts or merges node into the frame's beam: on first touch
// this frame the node is added to the frontier; on every touch its
// p_b/p_nb are log-sum-exp-merged with the contribution (§4.3: "on
// collision, the two log-probabilities are log-sum-exp-merged
// separately").
func (bs *beamSet) touch(ref nodeRef, deltaPB, deltaPNB float64) {
	n := bs.arena.dereference(ref)

	if !bs.touched[ref] {
		bs.touched[ref] = true
		bs.frontier = append(bs.frontier, ref)
		// a node pruned in an earlier frame still holds that frame's
		// scores; the first touch this frame starts it from -Inf.
		n.pB, n.pNB = negInf, negInf
	}

	n.pB = logspace.Add(n.pB, deltaPB)
	n.pNB = logspace.Add(n.pNB, deltaPNB)
}

// rankScore is the ranking score used both for pruning (§4.3) and for
// terminal selection (§4.6): logaddexp(p_b, p_nb) + beta * depth.
func rankScore(n *prefixNode, beta float64) float64 {
	return logspace.Add(n.pB, n.pNB) + beta*float64(n.depth)
}

// prune retains at most beamWidth nodes from the frontier, ranked by
// rankScore descending, additionally dropping any beam whose score is
// below topScore + maxBeamDeviation (both log-space, maxBeamDeviation
// <= 0). Ties are broken by lower nodeRef (earlier arena index) for
// determinism (§4.3, §8 Scenario F).
//
// If the frontier is empty (§7 Numerical edge: all beams pruned),
// prune recovers by forcing survival of the single highest-scoring
// node from the previous active set, so the decode never dies.
func (bs *beamSet) prune(beamWidth int, maxBeamDeviation, beta float64) {
	entries := make([]beamEntry, len(bs.frontier))
	for i, ref := range bs.frontier {
		entries[i] = beamEntry{ref: ref, score: rankScore(bs.arena.dereference(ref), beta)}
	}

	if len(entries) == 0 {
		entries = bs.forcedSurvivor(beta)
	}

	slices.SortFunc(entries, compareBeamEntries)

	topScore := entries[0].score
	floor := topScore + maxBeamDeviation

	survivors := make([]nodeRef, 0, min(beamWidth, len(entries)))
	for _, e := range entries {
		if len(survivors) >= beamWidth {
			break
		}
		if e.score < floor {
			break
		}
		survivors = append(survivors, e.ref)
	}

	bs.active = survivors
	bs.frontier = bs.frontier[:0]
	clear(bs.touched)
}

// forcedSurvivor implements the §7 numerical-edge recovery: when
// nothing was touched this frame, the previous frame's best active
// beam survives unchanged so the decode can continue.
func (bs *beamSet) forcedSurvivor(beta float64) []beamEntry {
	best := beamEntry{ref: bs.arena.root(), score: negInf}
	for _, ref := range bs.active {
		n := bs.arena.dereference(ref)
		// carry the previous frame's scores forward unchanged.
		n.pB, n.pNB = n.pBPrev, n.pNBPrev
		if s := rankScore(n, beta); s > best.score {
			best = beamEntry{ref: ref, score: s}
		}
	}
	return []beamEntry{best}
}
