package graph

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}

func labels(nodes []*Node[string]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label()
	}
	return out
}

func TestBuildCreatesDistinctEndpoints(t *testing.T) {
	g := Build([]Tuple[int, struct{}]{
		{From: 0, To: 1},
		{From: 1, To: 1},
	})

	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())

	// Second edge is a self-loop on the node labeled 1.
	edges := collect(g.Edges())
	require.Len(t, edges, 2)
	loop := edges[1]
	assert.Same(t, loop.From(), loop.To())
	assert.Equal(t, 1, loop.From().Label())
}

func TestBuildPreservesParallelEdges(t *testing.T) {
	g := Build([]Tuple[string, string]{
		{From: "a", To: "b", Label: "x"},
		{From: "a", To: "b", Label: "y"},
		{From: "a", To: "b", Label: "x"},
	})

	assert.Equal(t, 2, g.NumNodes(), "duplicate endpoints collapse to one node")
	assert.Equal(t, 3, g.NumEdges(), "duplicate edges must not be merged")

	a := collect(g.Nodes())[0]
	assert.Equal(t, []string{"b", "b", "b"}, labels(collect(g.Successors(a))))
}

func TestAddNodeAllowsDuplicateLabels(t *testing.T) {
	g := New[string, int]()
	n1 := g.AddNode("same")
	n2 := g.AddNode("same")

	assert.NotSame(t, n1, n2)
	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, n1.Label(), n2.Label())
}

func TestAddEdgeRejectsForeignNodes(t *testing.T) {
	g := New[string, int]()
	other := New[string, int]()
	mine := g.AddNode("mine")
	theirs := other.AddNode("theirs")

	_, err := g.AddEdge(mine, theirs, 0)
	require.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = g.AddEdge(theirs, mine, 0)
	require.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = g.AddEdge(nil, mine, 0)
	require.ErrorIs(t, err, ErrInvalidEndpoint)

	assert.Equal(t, 0, g.NumEdges())
}

func TestAddEdgeSelfLoop(t *testing.T) {
	g := New[string, string]()
	n := g.AddNode("n")

	e, err := g.AddEdge(n, n, "loop")
	require.NoError(t, err)
	assert.Same(t, n, e.From())
	assert.Same(t, n, e.To())
	assert.Equal(t, "loop", e.Label())
}

func TestIterationOrderAndRestart(t *testing.T) {
	g := New[string, int]()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	first := labels(collect(g.Nodes()))
	second := labels(collect(g.Nodes()))
	assert.Equal(t, []string{"a", "b", "c"}, first, "insertion order")
	assert.Equal(t, first, second, "sequence must be restartable")

	// Early termination must not panic or skip cleanup.
	count := 0
	for range g.Nodes() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSuccessorsAndPredecessors(t *testing.T) {
	g := New[string, int]()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")

	_, err := g.AddEdge(a, b, 1)
	require.NoError(t, err)
	_, err = g.AddEdge(a, c, 2)
	require.NoError(t, err)
	_, err = g.AddEdge(b, c, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, labels(collect(g.Successors(a))))
	assert.Equal(t, []string{"a", "b"}, labels(collect(g.Predecessors(c))))
	assert.Empty(t, collect(g.Predecessors(a)))
	assert.Empty(t, collect(g.Successors(c)))

	out := collect(g.OutEdges(a))
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Label())
	assert.Equal(t, 2, out[1].Label())

	in := collect(g.InEdges(c))
	require.Len(t, in, 2)
	assert.Equal(t, 2, in[0].Label())
	assert.Equal(t, 3, in[1].Label())
}
