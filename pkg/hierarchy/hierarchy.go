// Package hierarchy nests a table's rows into a tree, one level per header.
// It consumes only the table's headers and row iteration.
package hierarchy

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/table"
	"tabdiff/pkg/value"
)

// Node is one level of the tree. Interior nodes group by a header value and
// hold children in first-seen order; leaf nodes hold the sub-table of rows
// sharing the full key path.
type Node struct {
	Field    string
	Key      value.Value
	Children []*Node
	Rows     *table.Table
}

// Build groups the table by each header in levels, in order, producing a
// nested tree. The root node has no field or key of its own.
func Build(t *table.Table, levels ...string) (*Node, error) {
	for _, l := range levels {
		if !t.HasHeader(l) {
			return nil, errors.Wrapf(table.ErrUnknownHeader, "%q", l)
		}
	}
	root := &Node{}
	build(root, t, levels)
	return root, nil
}

func build(n *Node, t *table.Table, levels []string) {
	if len(levels) == 0 {
		n.Rows = t
		return
	}
	field := levels[0]
	t.Bucket(field).Each(func(key []value.Value, bucket *table.Table) {
		child := &Node{Field: field, Key: key[0]}
		build(child, bucket, levels[1:])
		n.Children = append(n.Children, child)
	})
}

// Walk visits every node depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func (n *Node) String() string {
	var b strings.Builder
	n.describe(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (n *Node) describe(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case n.Field == "" && n.Rows == nil:
		fmt.Fprintf(b, "%s<root>\n", indent)
	case n.Rows != nil && n.Field == "":
		fmt.Fprintf(b, "%s%d rows\n", indent, n.Rows.Len())
	default:
		fmt.Fprintf(b, "%s%s=%s", indent, n.Field, n.Key)
		if n.Rows != nil {
			fmt.Fprintf(b, " (%d rows)", n.Rows.Len())
		}
		b.WriteByte('\n')
	}
	for _, c := range n.Children {
		c.describe(b, depth+1)
	}
}
