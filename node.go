package zctc

// nodeRef is a stable, arena-relative reference to a prefixNode. Zero
// value nodeRef(0) always denotes the root; valid non-root references
// are >= 1 (§4.2: "supports stable references by index").
type nodeRef int32

const noState = -1 // NULL_STATE (§3): no LM/lexicon/hotword state

// prefixNode is a node of the shared prefix tree (§3 PrefixNode). The
// link structure (token/parent/frame/depth) is immutable once created;
// the score fields are mutated in place, once per frame, by beamSet.
type prefixNode struct {
	token  int32  // root has no meaningful token; never read for root
	parent nodeRef
	frame  int32 // emission frame of token, first time this node was created
	depth  int32 // length of the emitted label path

	pB, pNB         float64 // log P(prefix ends in blank / non-blank), current frame
	pBPrev, pNBPrev float64 // same, snapshotted from the previous frame

	lmState int32 // opaque LM state handle, noState if no LM
	lexState int32 // opaque lexicon FST state, noState if no lexicon
	hwState  int32 // opaque hot-word FST state, noState if no hot-word FST

	lmScore float64 // cumulative LM score attributed to this path
	hwScore float64 // cumulative hot-word score attributed to this path

	children map[int32]nodeRef // token -> child node reference, sparse
}

// reset clears a node for reuse from the arena's pool, retaining the
// underlying children map's storage capacity (mirrors the teacher's
// pool.go: "reset node's state but retain storage capacity").
func (n *prefixNode) reset() {
	n.token = 0
	n.parent = 0
	n.frame = 0
	n.depth = 0
	n.pB, n.pNB = negInf, negInf
	n.pBPrev, n.pNBPrev = negInf, negInf
	n.lmState, n.lexState, n.hwState = noState, noState, noState
	n.lmScore, n.hwScore = 0, 0

	for k := range n.children {
		delete(n.children, k)
	}
}

// isRoot reports whether n is the tree root (depth 0, no parent).
func (n *prefixNode) isRoot() bool {
	return n.depth == 0
}
