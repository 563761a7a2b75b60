package tree

// Walk control values returned by the function passed to [Node.Walk].
const (
	// Continue proceeds with the traversal.
	Continue = true
	// Break stops the traversal.
	Break = false
)

// Walk calls fn for n and every descendant in depth-first pre-order
// (self first, then children left to right). The traversal stops as soon
// as fn returns [Break]. Walk reports whether it visited every node.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) bool {
	if !fn(n) {
		return Break
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return Break
		}
	}
	return Continue
}

// Lookup returns the first node in pre-order whose value equals value.
// The search costs O(tree size) in the worst case; use [Node.Index] for
// repeated lookups on a tree that is no longer changing shape.
func (n *Node[T]) Lookup(value T) (*Node[T], bool) {
	var found *Node[T]
	n.Walk(func(c *Node[T]) bool {
		if c.value == value {
			found = c
			return Break
		}
		return Continue
	})
	return found, found != nil
}

// AllElements returns the values of n and all its descendants in pre-order.
func (n *Node[T]) AllElements() []T {
	var values []T
	n.Walk(func(c *Node[T]) bool {
		values = append(values, c.value)
		return Continue
	})
	return values
}

// AllNodes returns n and all its descendants in pre-order.
func (n *Node[T]) AllNodes() []*Node[T] {
	var nodes []*Node[T]
	n.Walk(func(c *Node[T]) bool {
		nodes = append(nodes, c)
		return Continue
	})
	return nodes
}

// AllBottomLevelSuccessors returns the values of the leaves below n, left to
// right. A leaf returns its own value; internal values, including n's own,
// are never part of the result.
func (n *Node[T]) AllBottomLevelSuccessors() []T {
	var leaves []T
	n.Walk(func(c *Node[T]) bool {
		if c.IsLeaf() {
			leaves = append(leaves, c.value)
		}
		return Continue
	})
	return leaves
}

// Len returns the number of nodes in the subtree rooted at n.
func (n *Node[T]) Len() int {
	count := 0
	n.Walk(func(*Node[T]) bool {
		count++
		return Continue
	})
	return count
}

// Index returns a value-to-node map for the subtree rooted at n. When a value
// occurs more than once the first node in pre-order wins, matching Lookup.
// The map is a snapshot and is not updated by later insertions.
func (n *Node[T]) Index() map[T]*Node[T] {
	idx := make(map[T]*Node[T])
	n.Walk(func(c *Node[T]) bool {
		if _, ok := idx[c.value]; !ok {
			idx[c.value] = c
		}
		return Continue
	})
	return idx
}
