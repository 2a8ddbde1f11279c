// Package dot renders graphs from the graph package into the Graphviz DOT
// text format.
//
// Output is deterministic: node statements come before edge statements, both
// in the graph's insertion order, and node identifiers are n0, n1, … by that
// same order. Label strings are quoted; embedded newlines become the DOT
// left-justified line-break escape `\l` instead of raw newlines. The
// exporter does not otherwise validate that caller-supplied labels or
// attribute values fit the DOT grammar.
package dot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go-graphlib/graph"
)

// Attr is one key=value decoration for a node or edge statement. Attributes
// render in slice order so output stays reproducible.
type Attr struct {
	Key   string
	Value string
}

// Marshaler serializes a graph to DOT. NodeLabel is required; every other
// field is optional.
type Marshaler[N, E any] struct {
	// Name is the digraph name. Defaults to "G".
	Name string

	// NodeLabel renders a node label for display. Required.
	NodeLabel func(N) string

	// EdgeLabel renders an edge label for display. When nil, edge
	// statements carry no label attribute.
	EdgeLabel func(E) string

	// NodeAttrs supplies extra attributes for a node statement.
	NodeAttrs func(*graph.Node[N]) []Attr

	// EdgeAttrs supplies extra attributes for an edge statement.
	EdgeAttrs func(*graph.Edge[N, E]) []Attr
}

// Marshal renders g and returns the DOT text.
func (m *Marshaler[N, E]) Marshal(g *graph.Graph[N, E]) ([]byte, error) {
	var sb strings.Builder
	if err := m.write(g, &sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Write renders g to w.
func (m *Marshaler[N, E]) Write(g *graph.Graph[N, E], w io.Writer) error {
	text, err := m.Marshal(g)
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

// WriteFile renders g and writes the text to path, creating or truncating
// the file. The file handle is released on every path, including failures.
func (m *Marshaler[N, E]) WriteFile(g *graph.Graph[N, E], path string) error {
	text, err := m.Marshal(g)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dot: create %s: %w", path, err)
	}
	_, werr := f.Write(text)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("dot: write %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("dot: close %s: %w", path, cerr)
	}
	return nil
}

func (m *Marshaler[N, E]) write(g *graph.Graph[N, E], sb *strings.Builder) error {
	if m.NodeLabel == nil {
		return fmt.Errorf("dot: NodeLabel function is required")
	}
	name := m.Name
	if name == "" {
		name = "G"
	}
	fmt.Fprintf(sb, "digraph %s {\n", name)

	ids := make(map[*graph.Node[N]]int, g.NumNodes())
	i := 0
	for n := range g.Nodes() {
		ids[n] = i
		fmt.Fprintf(sb, "\tn%d [label=%s", i, quote(m.NodeLabel(n.Label())))
		if m.NodeAttrs != nil {
			writeAttrs(sb, m.NodeAttrs(n))
		}
		sb.WriteString("];\n")
		i++
	}

	for e := range g.Edges() {
		fmt.Fprintf(sb, "\tn%d -> n%d", ids[e.From()], ids[e.To()])
		open := false
		if m.EdgeLabel != nil {
			fmt.Fprintf(sb, " [label=%s", quote(m.EdgeLabel(e.Label())))
			open = true
		}
		if m.EdgeAttrs != nil {
			if attrs := m.EdgeAttrs(e); len(attrs) > 0 {
				if !open {
					sb.WriteString(" [")
					open = true
					writeFirstAttr(sb, attrs[0])
					attrs = attrs[1:]
				}
				writeAttrs(sb, attrs)
			}
		}
		if open {
			sb.WriteString("]")
		}
		sb.WriteString(";\n")
	}

	sb.WriteString("}\n")
	return nil
}

func writeAttrs(sb *strings.Builder, attrs []Attr) {
	for _, a := range attrs {
		sb.WriteString(", ")
		writeFirstAttr(sb, a)
	}
}

func writeFirstAttr(sb *strings.Builder, a Attr) {
	sb.WriteString(a.Key)
	sb.WriteString("=")
	sb.WriteString(quote(a.Value))
}

// quote produces a DOT double-quoted string literal. Backslashes and quotes
// are escaped; newlines become \l so multi-line labels render as
// left-justified lines rather than breaking the statement.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\l`)
		case '\r':
			// dropped
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
