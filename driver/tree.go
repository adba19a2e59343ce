package driver

import (
	"fmt"
	"io"
	"strings"
)

const emptyText = "epsilon"

// Node is a node of a parse tree. A terminal node has Text. A non-terminal node without children
// derived the empty production.
type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func (n *Node) isTerminal() bool {
	return n.Text != ""
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.isTerminal() {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	if !node.isTerminal() && len(node.Children) == 0 {
		fmt.Fprintf(w, "%v└─ %v\n", childRuledLinePrefix, emptyText)
		return
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// WriteIndentedTree writes one node per line. Children are indented two spaces deeper than their
// parent, and terminals are written as their text.
func WriteIndentedTree(w io.Writer, node *Node) {
	writeIndentedTree(w, node, 0)
}

func writeIndentedTree(w io.Writer, node *Node, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if node.isTerminal() {
		fmt.Fprintf(w, "%v%v\n", indent, node.Text)
		return
	}
	fmt.Fprintf(w, "%v%v\n", indent, node.KindName)
	if len(node.Children) == 0 {
		fmt.Fprintf(w, "%v  %v\n", indent, emptyText)
		return
	}
	for _, child := range node.Children {
		writeIndentedTree(w, child, depth+1)
	}
}

// FormatBracketTree renders a tree on one line, such as `F[( E[T[F[id] Y[epsilon]] X[epsilon]] )]`.
func FormatBracketTree(node *Node) string {
	var b strings.Builder
	formatBracketTree(&b, node)
	return b.String()
}

func formatBracketTree(b *strings.Builder, node *Node) {
	if node == nil {
		return
	}
	if node.isTerminal() {
		b.WriteString(node.Text)
		return
	}
	b.WriteString(node.KindName)
	b.WriteString("[")
	if len(node.Children) == 0 {
		b.WriteString(emptyText)
	}
	for i, child := range node.Children {
		if i > 0 {
			b.WriteString(" ")
		}
		formatBracketTree(b, child)
	}
	b.WriteString("]")
}
