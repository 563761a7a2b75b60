package tree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes one line per node of the subtree rooted at n, in pre-order:
//
//	TreeNode[A -> {B,C}]
//	TreeNode[B -> {}]
//	TreeNode[C -> {}]
//
// Values are formatted with %v.
func Fprint[T comparable](w io.Writer, n *Node[T]) error {
	var err error
	n.Walk(func(c *Node[T]) bool {
		_, err = fmt.Fprintln(w, line(c))
		return err == nil
	})
	return err
}

// Sprint returns the output of [Fprint] as a string.
func Sprint[T comparable](n *Node[T]) string {
	var sb strings.Builder
	_ = Fprint(&sb, n)
	return sb.String()
}

func line[T comparable](n *Node[T]) string {
	kids := make([]string, len(n.children))
	for i, c := range n.children {
		kids[i] = fmt.Sprint(c.value)
	}
	return fmt.Sprintf("TreeNode[%v -> {%s}]", n.value, strings.Join(kids, ","))
}
