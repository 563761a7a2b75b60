// Package pairs reconstructs trees from unordered parent-child pairs.
//
// # Overview
//
// A [Pair] names a parent value and a child value. Given a set of pairs,
// this package infers the root and builds a single [tree.Node] containing
// every value exactly once. Two strategies exist because pair sets come in
// two shapes:
//
//   - Closure pair sets list every ancestor/descendant relationship, not only
//     direct edges. Use [FromClosure].
//   - Direct-edge pair sets list only immediate parent-child edges. Use
//     [FromDirectEdges].
//
// For the tree
//
//	    A
//	  /   \
//	 B     C
//	      / \
//	     D   E
//	    / \
//	   F   G
//
// the direct-edge set is A-B, A-C, C-D, C-E, D-F, D-G, and the closure set
// additionally contains A-D, A-E, A-F, A-G, C-F and C-G.
//
// # Closure Build
//
// [FromClosure] counts how often each value appears as a parent, stable-sorts
// the pairs so that the most frequent parents come first, seeds the tree with
// the first parent and then attaches each child under its parent, moving
// already placed children deeper as more specific pairs arrive. In a true
// closure an ancestor is always named as a parent more often than any of its
// descendants, so ancestors are placed first regardless of input order.
//
// The heuristic is only sound for closure input. Direct-edge input can order
// a pair before its parent has been placed, and the build then fails with a
// PARENT_NOT_FOUND error.
//
// # Direct-Edge Build
//
// [FromDirectEdges] keeps one canonical node per distinct value in a
// registry, attaches each child under its parent in input order and returns
// the only node left without a parent. Children appear in first-seen order.
// Input that does not form one connected tree fails with DISCONNECTED; a
// child named under two different parents fails with MULTIPLE_PARENTS.
//
// # Reading Pairs
//
// [ReadJSON], [ReadTOML] and [ReadText] decode string pairs from the
// supported file formats, and [Load] picks one by file extension.
package pairs
