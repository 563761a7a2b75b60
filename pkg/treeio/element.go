package treeio

import (
	"github.com/google/uuid"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/optional"
	"github.com/matzehuels/pairtree/pkg/tree"
)

// Element is the flat record of one tree node: its value and the id of its
// parent. ParentID is absent for the root.
type Element[ID comparable, T any] struct {
	Element  T                   `json:"element"`
	ParentID optional.Option[ID] `json:"parentId"`
}

// IsRoot reports whether the record has no parent id.
func (e Element[ID, T]) IsRoot() bool { return e.ParentID.IsNone() }

// Identity returns an id function that uses the value as its own id.
func Identity[T comparable]() func(T) T {
	return func(v T) T { return v }
}

// UUID returns an id function mapping each string value to a deterministic
// name-based (SHA-1) UUID. Equal values always map to the same id.
func UUID() func(string) string {
	return func(v string) string {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(v)).String()
	}
}

// Export flattens the tree rooted at root into records in pre-order. The
// record for root has no parent id even if root is a subtree of a larger
// tree. Every other record carries id applied to its parent's value.
func Export[T comparable, ID comparable](root *tree.Node[T], id func(T) ID) []Element[ID, T] {
	out := make([]Element[ID, T], 0, root.Len())
	root.Walk(func(n *tree.Node[T]) bool {
		e := Element[ID, T]{Element: n.Value()}
		if n != root {
			e.ParentID = optional.Map(n.ParentValue(), id)
		}
		out = append(out, e)
		return tree.Continue
	})
	return out
}

// Import rebuilds a tree from records. Each record's id is id(Element).
// Children are attached under their parent in record order, depth-first
// from the root.
//
// Import returns:
//   - ROOT_NOT_FOUND if no record lacks a parent id
//   - AMBIGUOUS_ROOT if more than one record lacks a parent id
//   - DUPLICATE_ID if two records map to the same id
//   - ORPHAN_ELEMENT if a record is not reachable from the root, naming the
//     first such record
//
// No partial tree is returned on error.
func Import[ID comparable, T comparable](elements []Element[ID, T], id func(T) ID) (*tree.Node[T], error) {
	var roots []int
	seen := make(map[ID]int, len(elements))
	children := make(map[ID][]int)
	for i, e := range elements {
		key := id(e.Element)
		if j, dup := seen[key]; dup {
			return nil, errs.New(errs.ErrCodeDuplicateID, "elements %v and %v share id %v", elements[j].Element, e.Element, key)
		}
		seen[key] = i
		if pid, ok := e.ParentID.Get(); ok {
			children[pid] = append(children[pid], i)
		} else {
			roots = append(roots, i)
		}
	}

	switch len(roots) {
	case 0:
		return nil, errs.New(errs.ErrCodeRootNotFound, "no element without a parent id")
	case 1:
	default:
		values := make([]T, len(roots))
		for i, r := range roots {
			values[i] = elements[r].Element
		}
		return nil, errs.New(errs.ErrCodeAmbiguousRoot, "%d elements without a parent id: %v", len(roots), values)
	}

	placed := make([]bool, len(elements))
	root := tree.New(elements[roots[0]].Element)
	placed[roots[0]] = true
	if err := attach(root, elements, children, placed, id); err != nil {
		return nil, err
	}

	for i, ok := range placed {
		if !ok {
			e := elements[i]
			pid, _ := e.ParentID.Get()
			return nil, errs.New(errs.ErrCodeOrphanElement, "element %v has parent id %v, which is not part of the tree", e.Element, pid)
		}
	}
	return root, nil
}

func attach[ID comparable, T comparable](n *tree.Node[T], elements []Element[ID, T], children map[ID][]int, placed []bool, id func(T) ID) error {
	for _, i := range children[id(n.Value())] {
		child := tree.New(elements[i].Element)
		if err := n.InsertNode(child); err != nil {
			return err
		}
		placed[i] = true
		if err := attach(child, elements, children, placed, id); err != nil {
			return err
		}
	}
	return nil
}
