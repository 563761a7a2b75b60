package pairs

import (
	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/tree"
)

// registry holds one canonical node per distinct value, remembering the
// order in which values were first seen.
type registry[T comparable] struct {
	nodes map[T]*tree.Node[T]
	order []T
}

func newRegistry[T comparable](size int) *registry[T] {
	return &registry[T]{nodes: make(map[T]*tree.Node[T], size)}
}

// get returns the node for v, creating it on first use.
func (r *registry[T]) get(v T) *tree.Node[T] {
	n, ok := r.nodes[v]
	if !ok {
		n = tree.New(v)
		r.nodes[v] = n
		r.order = append(r.order, v)
	}
	return n
}

// roots returns the values of all parentless nodes in first-seen order.
func (r *registry[T]) roots() []T {
	var out []T
	for _, v := range r.order {
		if r.nodes[v].IsRoot() {
			out = append(out, v)
		}
	}
	return out
}

// FromDirectEdges builds a tree from a direct-edge pair set, in which every
// pair is an immediate parent-child edge. Transitive pairs are not required.
//
// Each distinct value maps to exactly one node. Pairs are applied in input
// order, so the children of a node appear in the order their pairs were first
// seen. Duplicate pairs are ignored. The root is the single node that never
// appears as a child.
//
// FromDirectEdges returns:
//   - ROOT_NOT_FOUND if pairs is empty
//   - MULTIPLE_PARENTS if a value is named as the child of two different parents
//   - CYCLE if the pairs contain a cycle
//   - DISCONNECTED if the pairs form more than one tree
//
// No partial tree is returned on error.
func FromDirectEdges[T comparable](pairs []Pair[T]) (*tree.Node[T], error) {
	unique := Unique(pairs)
	if len(unique) == 0 {
		return nil, errs.New(errs.ErrCodeRootNotFound, "no pairs to build a tree from")
	}

	reg := newRegistry[T](len(unique) + 1)
	for _, p := range unique {
		parent := reg.get(p.Parent)
		child := reg.get(p.Child)
		if prev, ok := child.ParentValue().Get(); ok {
			return nil, errs.New(errs.ErrCodeMultipleParents, "%v has two parents: %v and %v", p.Child, prev, p.Parent)
		}
		if err := parent.InsertNode(child); err != nil {
			return nil, err
		}
	}

	roots := reg.roots()
	switch len(roots) {
	case 0:
		return nil, errs.New(errs.ErrCodeRootNotFound, "every value has a parent")
	case 1:
		return reg.nodes[roots[0]], nil
	}
	return nil, errs.New(errs.ErrCodeDisconnected, "pairs form %d separate trees rooted at %v", len(roots), roots)
}
