// Package tree provides a generic rooted, ordered tree of comparable values.
//
// # Overview
//
// A [Node] holds a value, a back-reference to its parent and an ordered list
// of children. Values are identity keys: [Node.Lookup] finds a node by value
// with a depth-first pre-order search, so values must be unique within a tree.
// Nothing enforces that uniqueness; builders in the pairs and treeio packages
// guarantee it for the trees they produce.
//
// # Basic Usage
//
// Create a root with [New] and grow it with [Node.Insert], which is chainable:
//
//	root := tree.New("A").Insert("B").Insert("C")
//	c, _ := root.Lookup("C")
//	c.Insert("D").Insert("E")
//
// Query the structure with [Node.AllElements], [Node.AllNodes],
// [Node.AllBottomLevelSuccessors] and [Node.ParentValue].
//
// # Re-parenting
//
// [Node.InsertNode] moves an existing node, with its whole subtree, under a
// new parent. The node is removed from its previous parent's children first,
// so a node never appears under two parents. Moving a node under itself or
// under one of its own descendants fails with a CYCLE error and leaves the
// tree untouched.
//
// # Ownership
//
// Children are owned by their parent. The parent link is a plain pointer used
// only for navigation upward; dropping a subtree with [Node.Detach] makes it
// an independent tree rooted at the detached node.
//
// # Concurrency
//
// Nodes are not safe for concurrent use. Re-parenting mutates two child lists,
// so callers that share a tree across goroutines must serialize writes, for
// example with one lock per tree.
package tree
