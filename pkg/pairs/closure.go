package pairs

import (
	"cmp"
	"slices"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/tree"
)

// FromClosure builds a tree from a closure pair set, in which every
// ancestor/descendant relationship appears as a pair.
//
// Pairs are stable-sorted by how often their parent value occurs as a parent,
// most frequent first. The first sorted pair's parent becomes the root. Each
// pair then attaches its child under its parent: a child already in the tree
// is moved there together with its subtree, a new child is added as a leaf.
// Duplicate pairs are ignored.
//
// FromClosure returns:
//   - ROOT_NOT_FOUND if pairs is empty
//   - PARENT_NOT_FOUND if a pair's parent has not been placed yet, which
//     happens when the input is not a true closure
//   - CYCLE if a pair would move a node under its own descendant
//
// No partial tree is returned on error.
func FromClosure[T comparable](pairs []Pair[T]) (*tree.Node[T], error) {
	sorted := sortByParentOccurrence(Unique(pairs))
	if len(sorted) == 0 {
		return nil, errs.New(errs.ErrCodeRootNotFound, "no pairs to build a tree from")
	}

	root := tree.New(sorted[0].Parent)
	placed := map[T]*tree.Node[T]{root.Value(): root}
	for _, p := range sorted {
		if err := addPair(placed, p); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// addPair attaches p.Child under p.Parent. placed indexes every node that is
// currently part of the tree; nodes never leave the tree during a closure
// build, so the index stays valid across re-parenting. Pairs are unique, so a
// placed child always sits under some other parent and is moved.
func addPair[T comparable](placed map[T]*tree.Node[T], p Pair[T]) error {
	parent, ok := placed[p.Parent]
	if !ok {
		return errs.New(errs.ErrCodeParentNotFound, "parent %v does not exist in tree (pair %v)", p.Parent, p)
	}

	child, ok := placed[p.Child]
	if !ok {
		child = tree.New(p.Child)
		placed[p.Child] = child
	}
	return parent.InsertNode(child)
}

// sortByParentOccurrence returns a copy of pairs ordered by descending parent
// occurrence count. Pairs with equal counts keep their input order.
func sortByParentOccurrence[T comparable](pairs []Pair[T]) []Pair[T] {
	counts := make(map[T]int)
	for _, p := range pairs {
		counts[p.Parent]++
	}

	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b Pair[T]) int {
		return cmp.Compare(counts[b.Parent], counts[a.Parent])
	})
	return sorted
}
