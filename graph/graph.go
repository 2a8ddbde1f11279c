// Package graph provides a generic directed multigraph with labeled nodes
// and edges, plus strongly-connected-components analysis over it.
//
// The container is polymorphic over the node label type N and the edge label
// type E. Labels are opaque to the package: they are stored and handed back,
// never interpreted. Node identity is the handle, not the label, so two
// distinct nodes may carry equal labels. Self-loops and parallel edges are
// permitted.
//
// A Graph is not safe for concurrent mutation. Analyses in this package only
// read, so a graph that is no longer mutated may be shared freely.
package graph

import "iter"

// Node is a handle to a node of a Graph. Handles are only ever produced by
// the Graph that owns them; using a handle with a different Graph is a
// programming error and is reported by the mutating methods.
type Node[N any] struct {
	label N
	id    int
	owner *owner
}

// Label returns the node's label.
func (n *Node[N]) Label() N { return n.label }

// Edge is a handle to a directed edge of a Graph.
type Edge[N, E any] struct {
	label E
	from  *Node[N]
	to    *Node[N]
}

// Label returns the edge's label.
func (e *Edge[N, E]) Label() E { return e.label }

// From returns the edge's source node.
func (e *Edge[N, E]) From() *Node[N] { return e.from }

// To returns the edge's destination node.
func (e *Edge[N, E]) To() *Node[N] { return e.to }

// owner is a unique per-graph token used to detect foreign node handles.
type owner struct{ _ byte }

// Graph is a directed multigraph with N-labeled nodes and E-labeled edges.
// The zero value is not usable; call New or Build.
type Graph[N, E any] struct {
	tok   *owner
	nodes []*Node[N]
	edges []*Edge[N, E]
	out   map[*Node[N]][]*Edge[N, E]
	in    map[*Node[N]][]*Edge[N, E]
}

// New returns an empty graph.
func New[N, E any]() *Graph[N, E] {
	return &Graph[N, E]{
		tok: &owner{},
		out: make(map[*Node[N]][]*Edge[N, E]),
		in:  make(map[*Node[N]][]*Edge[N, E]),
	}
}

// Tuple is one edge of an edge list accepted by Build.
type Tuple[N comparable, E any] struct {
	From  N
	To    N
	Label E
}

// Build constructs a graph from an edge list. One node is created per
// distinct label appearing as an endpoint (labels compared by equality) and
// one edge per tuple; duplicate tuples become parallel edges, never merged.
// Endpoint deduplication needs comparable labels, which the type system
// enforces, so Build cannot fail.
func Build[N comparable, E any](tuples []Tuple[N, E]) *Graph[N, E] {
	g := New[N, E]()
	byLabel := make(map[N]*Node[N])
	node := func(label N) *Node[N] {
		if n, ok := byLabel[label]; ok {
			return n
		}
		n := g.AddNode(label)
		byLabel[label] = n
		return n
	}
	for _, t := range tuples {
		from := node(t.From)
		to := node(t.To)
		// Both endpoints were just minted by this graph.
		g.addEdge(from, to, t.Label)
	}
	return g
}

// AddNode creates a new node carrying label and returns its handle. Labels
// are not deduplicated: calling AddNode twice with equal labels yields two
// distinct nodes.
func (g *Graph[N, E]) AddNode(label N) *Node[N] {
	n := &Node[N]{label: label, id: len(g.nodes), owner: g.tok}
	g.nodes = append(g.nodes, n)
	return n
}

// AddEdge creates a directed edge from one node to another. It returns
// ErrInvalidEndpoint if either endpoint is nil or belongs to a different
// graph. Self-loops and parallel edges are allowed.
func (g *Graph[N, E]) AddEdge(from, to *Node[N], label E) (*Edge[N, E], error) {
	if from == nil || from.owner != g.tok {
		return nil, ErrInvalidEndpoint
	}
	if to == nil || to.owner != g.tok {
		return nil, ErrInvalidEndpoint
	}
	return g.addEdge(from, to, label), nil
}

func (g *Graph[N, E]) addEdge(from, to *Node[N], label E) *Edge[N, E] {
	e := &Edge[N, E]{label: label, from: from, to: to}
	g.edges = append(g.edges, e)
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
	return e
}

// NumNodes returns the number of nodes.
func (g *Graph[N, E]) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of edges, counting parallel edges separately.
func (g *Graph[N, E]) NumEdges() int { return len(g.edges) }

// Nodes returns a restartable sequence of all nodes in insertion order.
func (g *Graph[N, E]) Nodes() iter.Seq[*Node[N]] {
	return func(yield func(*Node[N]) bool) {
		for _, n := range g.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Edges returns a restartable sequence of all edges in insertion order.
func (g *Graph[N, E]) Edges() iter.Seq[*Edge[N, E]] {
	return func(yield func(*Edge[N, E]) bool) {
		for _, e := range g.edges {
			if !yield(e) {
				return
			}
		}
	}
}

// OutEdges returns the outgoing edges of n in insertion order.
func (g *Graph[N, E]) OutEdges(n *Node[N]) iter.Seq[*Edge[N, E]] {
	return func(yield func(*Edge[N, E]) bool) {
		for _, e := range g.out[n] {
			if !yield(e) {
				return
			}
		}
	}
}

// InEdges returns the incoming edges of n in insertion order.
func (g *Graph[N, E]) InEdges(n *Node[N]) iter.Seq[*Edge[N, E]] {
	return func(yield func(*Edge[N, E]) bool) {
		for _, e := range g.in[n] {
			if !yield(e) {
				return
			}
		}
	}
}

// Successors returns the nodes reachable from n via one outgoing edge, in
// edge-insertion order. A node reached by parallel edges appears once per
// edge.
func (g *Graph[N, E]) Successors(n *Node[N]) iter.Seq[*Node[N]] {
	return func(yield func(*Node[N]) bool) {
		for _, e := range g.out[n] {
			if !yield(e.to) {
				return
			}
		}
	}
}

// Predecessors returns the nodes with an edge into n, in edge-insertion
// order.
func (g *Graph[N, E]) Predecessors(n *Node[N]) iter.Seq[*Node[N]] {
	return func(yield func(*Node[N]) bool) {
		for _, e := range g.in[n] {
			if !yield(e.from) {
				return
			}
		}
	}
}
