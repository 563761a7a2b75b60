package pairs

import (
	"fmt"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/tree"
)

// Pair is an unordered-input record naming a parent and one of its children.
// Pairs are comparable, so they can be used as map keys and compared with ==.
type Pair[T comparable] struct {
	Parent T
	Child  T
}

// Of is shorthand for Pair[T]{Parent: parent, Child: child}.
func Of[T comparable](parent, child T) Pair[T] {
	return Pair[T]{Parent: parent, Child: child}
}

// String formats the pair as "parent->child".
func (p Pair[T]) String() string {
	return fmt.Sprintf("%v->%v", p.Parent, p.Child)
}

// Unique returns pairs with duplicates removed, keeping the first occurrence
// of each pair and the original order otherwise.
func Unique[T comparable](pairs []Pair[T]) []Pair[T] {
	seen := make(map[Pair[T]]bool, len(pairs))
	out := make([]Pair[T], 0, len(pairs))
	for _, p := range pairs {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Strategy selects a reconstruction algorithm.
type Strategy string

const (
	// StrategyClosure expects a closure pair set; see [FromClosure].
	StrategyClosure Strategy = "closure"
	// StrategyDirect expects a direct-edge pair set; see [FromDirectEdges].
	StrategyDirect Strategy = "direct"
)

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyClosure, StrategyDirect:
		return Strategy(s), nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown strategy %q (available: %s, %s)", s, StrategyClosure, StrategyDirect)
}

// Build dispatches to [FromClosure] or [FromDirectEdges].
func Build[T comparable](s Strategy, pairs []Pair[T]) (*tree.Node[T], error) {
	switch s {
	case StrategyClosure:
		return FromClosure(pairs)
	case StrategyDirect:
		return FromDirectEdges(pairs)
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported strategy %q", s)
}

// Edges returns the direct-edge pair set of the tree rooted at root, in
// pre-order of the children.
func Edges[T comparable](root *tree.Node[T]) []Pair[T] {
	var out []Pair[T]
	for _, n := range root.AllNodes() {
		for _, c := range n.ChildValues() {
			out = append(out, Of(n.Value(), c))
		}
	}
	return out
}

// Closure returns the closure pair set of the tree rooted at root: one pair
// for every ancestor/descendant relationship, grouped by ancestor in pre-order.
func Closure[T comparable](root *tree.Node[T]) []Pair[T] {
	var out []Pair[T]
	for _, n := range root.AllNodes() {
		for _, d := range n.AllElements()[1:] {
			out = append(out, Of(n.Value(), d))
		}
	}
	return out
}
