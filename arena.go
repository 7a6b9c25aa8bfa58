package zctc

import (
	"sync"
	"sync/atomic"
)

// nodePool is a type-safe wrapper around sync.Pool specialized for
// *prefixNode instances, tracking allocation statistics the way the
// teacher's pool.go does for *node[V].
type nodePool struct {
	sync.Pool

	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

func newNodePool() *nodePool {
	p := &nodePool{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return &prefixNode{children: make(map[int32]nodeRef, 8)}
	}
	return p
}

// Get retrieves a *prefixNode from the pool, allocating a fresh one if
// needed. Safe to call on a nil receiver, in which case no reuse
// tracking happens at all.
func (p *nodePool) Get() *prefixNode {
	if p == nil {
		return &prefixNode{children: make(map[int32]nodeRef, 8)}
	}

	p.currentLive.Add(1)
	return p.Pool.Get().(*prefixNode)
}

// Put resets n and returns it to the pool for reuse.
func (p *nodePool) Put(n *prefixNode) {
	if p == nil {
		return
	}

	p.currentLive.Add(-1)
	n.reset()
	p.Pool.Put(n)
}

// Stats returns the pool's current live and lifetime-total allocation
// counts, mainly useful for tests and diagnostics.
func (p *nodePool) Stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}

// arena owns every prefixNode of one sample's decode. It is created at
// the start of a sample's decode and released at its end (§3 Arena /
// ownership, §5 Memory discipline). Nodes reference each other only by
// arena-relative nodeRef; the arena never frees nodes mid-decode, only
// in bulk via release().
type arena struct {
	pool  *nodePool
	nodes []*prefixNode // index 0 is always the root
}

// newArena creates a fresh arena backed by pool (which may be nil, in
// which case every node is a plain heap allocation with no reuse).
func newArena(pool *nodePool) *arena {
	a := &arena{pool: pool}
	root := pool.Get()
	root.reset()
	root.lmState, root.lexState, root.hwState = noState, noState, noState
	a.nodes = append(a.nodes, root)
	return a
}

// root returns the reference to the unique root node (§4.2).
func (a *arena) root() nodeRef {
	return 0
}

// dereference returns the node for ref (§4.2).
func (a *arena) dereference(ref nodeRef) *prefixNode {
	return a.nodes[ref]
}

// getOrCreateChild returns the existing child of parent under token if
// one already exists (enforcing path uniqueness), otherwise allocates
// and inserts a new one recording frame as its emission frame (§4.2).
// isNew reports whether a new node was allocated this call.
func (a *arena) getOrCreateChild(parent nodeRef, token, frame int32) (ref nodeRef, isNew bool) {
	p := a.dereference(parent)

	if existing, ok := p.children[token]; ok {
		return existing, false
	}

	child := a.pool.Get()
	child.reset()
	child.token = token
	child.parent = parent
	child.frame = frame
	child.depth = p.depth + 1
	child.lmState, child.lexState, child.hwState = noState, noState, noState

	ref = nodeRef(len(a.nodes))
	a.nodes = append(a.nodes, child)
	p.children[token] = ref

	return ref, true
}

// release returns every node in the arena to its backing pool. The
// arena must not be used after release.
func (a *arena) release() {
	for _, n := range a.nodes {
		a.pool.Put(n)
	}
	a.nodes = nil
}

// size reports the number of nodes currently owned by the arena,
// bounded by O(beam_width * T) per §4.2.
func (a *arena) size() int {
	return len(a.nodes)
}
