package ir

// DomTree is a function's dominator tree, computed once and reused by the
// Priority Propagator's exit-discovery walk (§4.4 Phase 1) and by any future
// consumer that needs "does S dominate B" queries.
type DomTree struct {
	idom map[*BasicBlock]*BasicBlock // immediate dominator; entry maps to itself
	fn   *Function
}

// Dominators computes the dominator tree of f using the Cooper/Harvey/Kennedy
// iterative algorithm: a simple reverse-postorder fixed-point that converges
// in O(blocks * edges) without requiring a separate reducibility check.
func Dominators(f *Function) *DomTree {
	if f.Entry == nil {
		return &DomTree{idom: map[*BasicBlock]*BasicBlock{}, fn: f}
	}

	postorder := reversePostorder(f.Entry)
	// index for quick postorder-number lookups, used to pick the "earlier
	// in reverse-postorder" block when intersecting idom chains.
	rpoNum := make(map[*BasicBlock]int, len(postorder))
	for i, b := range postorder {
		rpoNum[b] = i
	}

	idom := make(map[*BasicBlock]*BasicBlock, len(postorder))
	idom[f.Entry] = f.Entry

	changed := true
	for changed {
		changed = false
		// Walk in reverse-postorder (postorder[0] is the entry here since
		// reversePostorder already flips the DFS postorder).
		for _, b := range postorder {
			if b == f.Entry {
				continue
			}
			var newIdom *BasicBlock
			for _, p := range b.Predecessors {
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, rpoNum)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return &DomTree{idom: idom, fn: f}
}

func intersect(a, b *BasicBlock, idom map[*BasicBlock]*BasicBlock, rpoNum map[*BasicBlock]int) *BasicBlock {
	for a != b {
		for rpoNum[a] > rpoNum[b] {
			a = idom[a]
		}
		for rpoNum[b] > rpoNum[a] {
			b = idom[b]
		}
	}
	return a
}

// reversePostorder returns the blocks reachable from entry in
// reverse-postorder (entry first).
func reversePostorder(entry *BasicBlock) []*BasicBlock {
	visited := map[*BasicBlock]bool{}
	var postorder []*BasicBlock

	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			visit(s)
		}
		postorder = append(postorder, b)
	}
	visit(entry)

	out := make([]*BasicBlock, len(postorder))
	for i, b := range postorder {
		out[len(postorder)-1-i] = b
	}
	return out
}

// Dominates reports whether a dominates b (every path from the function
// entry to b passes through a). A block trivially dominates itself.
func (d *DomTree) Dominates(a, b *BasicBlock) bool {
	if a == b {
		return true
	}
	cur, ok := d.idom[b]
	if !ok {
		return false
	}
	for {
		if cur == a {
			return true
		}
		if cur == d.idom[cur] {
			return false // reached the entry without finding a
		}
		cur = d.idom[cur]
	}
}

// ImmediateDominator returns b's immediate dominator, or (nil, false) for
// unreachable blocks.
func (d *DomTree) ImmediateDominator(b *BasicBlock) (*BasicBlock, bool) {
	idom, ok := d.idom[b]
	if !ok || idom == b {
		return nil, false
	}
	return idom, true
}
