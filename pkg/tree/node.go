package tree

import (
	"slices"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/optional"
)

// Node is a vertex of a rooted, ordered tree.
//
// The zero value is a usable leaf holding the zero value of T, but trees are
// normally started with [New].
type Node[T comparable] struct {
	value    T
	parent   *Node[T]
	children []*Node[T]
}

// New creates a standalone node with no parent and no children.
func New[T comparable](value T) *Node[T] {
	return &Node[T]{value: value}
}

// Value returns the node's value.
func (n *Node[T]) Value() T { return n.value }

// Parent returns the parent node and true, or nil and false for a root.
func (n *Node[T]) Parent() (*Node[T], bool) {
	return n.parent, n.parent != nil
}

// ParentValue returns the parent's value, absent for a root.
func (n *Node[T]) ParentValue() optional.Option[T] {
	if n.parent == nil {
		return optional.None[T]()
	}
	return optional.Some(n.parent.value)
}

// Children returns a copy of the node's children in insertion order.
// Modifying the returned slice does not affect the tree.
func (n *Node[T]) Children() []*Node[T] { return slices.Clone(n.children) }

// ChildValues returns the values of the direct children in insertion order.
func (n *Node[T]) ChildValues() []T {
	values := make([]T, len(n.children))
	for i, c := range n.children {
		values[i] = c.value
	}
	return values
}

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool { return len(n.children) == 0 }

// IsRoot reports whether the node has no parent.
func (n *Node[T]) IsRoot() bool { return n.parent == nil }

// Root returns the topmost ancestor of n, or n itself for a root.
func (n *Node[T]) Root() *Node[T] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth returns the number of edges between n and its root.
func (n *Node[T]) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Insert creates a new leaf holding value, appends it to n's children and
// returns n, so calls can be chained.
func (n *Node[T]) Insert(value T) *Node[T] {
	n.children = append(n.children, &Node[T]{value: value, parent: n})
	return n
}

// InsertNode appends child to n's children, detaching it from its previous
// parent first. The child keeps its own subtree.
//
// InsertNode returns a CYCLE error if child is n or one of n's ancestors;
// the tree is not modified in that case.
func (n *Node[T]) InsertNode(child *Node[T]) error {
	if child == nil {
		return errs.New(errs.ErrCodeInvalidInput, "cannot insert nil node under %v", n.value)
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			return errs.New(errs.ErrCodeCycle, "cannot insert %v under %v: %v is its own ancestor", child.value, n.value, child.value)
		}
	}
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// Detach removes n from its parent's children, making n the root of its own
// tree. It is a no-op for a root.
func (n *Node[T]) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}
