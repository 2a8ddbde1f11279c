package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupLabels returns the label sets of all groups, each sorted set as a map
// so membership order inside a group stays irrelevant.
func groupLabels(p *Partition[string]) []map[string]bool {
	var out []map[string]bool
	for grp := range p.Groups() {
		set := make(map[string]bool, len(grp))
		for _, n := range grp {
			set[n.Label()] = true
		}
		out = append(out, set)
	}
	return out
}

func TestSCCEmptyGraph(t *testing.T) {
	g := New[string, int]()
	p := StronglyConnectedComponents(g)
	assert.Equal(t, 0, p.Len())
}

func TestSCCEdgelessGraphYieldsSingletons(t *testing.T) {
	g := New[string, int]()
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		g.AddNode(l)
	}

	p := StronglyConnectedComponents(g)
	require.Equal(t, 5, p.Len())
	for grp := range p.Groups() {
		assert.Len(t, grp, 1)
	}
}

func TestSCCTwoNodeCycle(t *testing.T) {
	g := Build([]Tuple[string, struct{}]{
		{From: "h", To: "g"},
		{From: "g", To: "h"},
	})

	p := StronglyConnectedComponents(g)
	require.Equal(t, 1, p.Len())
	assert.Equal(t, map[string]bool{"g": true, "h": true}, groupLabels(p)[0])
}

func TestSCCAcyclicChainYieldsSingletons(t *testing.T) {
	g := Build([]Tuple[string, struct{}]{
		{From: "f", To: "g"},
		{From: "g", To: "h"},
	})

	p := StronglyConnectedComponents(g)
	require.Equal(t, 3, p.Len())
	for grp := range p.Groups() {
		assert.Len(t, grp, 1)
	}
}

func TestSCCCallGraphScenario(t *testing.T) {
	// f calls g, g and h call each other, main is isolated.
	g := New[string, struct{}]()
	f := g.AddNode("f")
	gg := g.AddNode("g")
	h := g.AddNode("h")
	g.AddNode("main")
	mustEdge(t, g, f, gg)
	mustEdge(t, g, gg, h)
	mustEdge(t, g, h, gg)

	p := StronglyConnectedComponents(g)
	require.Equal(t, 3, p.Len())

	var cycle map[string]bool
	singles := 0
	for _, set := range groupLabels(p) {
		if len(set) > 1 {
			require.Nil(t, cycle, "exactly one non-trivial component expected")
			cycle = set
		} else {
			singles++
		}
	}
	assert.Equal(t, map[string]bool{"g": true, "h": true}, cycle)
	assert.Equal(t, 2, singles)
}

func TestSCCCoversEveryNodeExactlyOnce(t *testing.T) {
	g := Build([]Tuple[string, struct{}]{
		{From: "a", To: "b"},
		{From: "b", To: "c"},
		{From: "c", To: "a"},
		{From: "c", To: "d"},
		{From: "d", To: "e"},
		{From: "e", To: "d"},
		{From: "e", To: "e"},
	})

	p := StronglyConnectedComponents(g)

	seen := make(map[*Node[string]]int)
	total := 0
	for grp := range p.Groups() {
		require.NotEmpty(t, grp)
		for _, n := range grp {
			seen[n]++
			total++
		}
	}
	assert.Equal(t, g.NumNodes(), total)
	for n := range g.Nodes() {
		assert.Equal(t, 1, seen[n], "node %v must appear in exactly one group", n.Label())

		c, ok := p.ComponentOf(n)
		require.True(t, ok)
		assert.Contains(t, p.Group(c), n)
	}
}

func TestSCCComponentOfForeignNode(t *testing.T) {
	g := New[string, int]()
	g.AddNode("a")
	p := StronglyConnectedComponents(g)

	other := New[string, int]()
	stranger := other.AddNode("b")
	_, ok := p.ComponentOf(stranger)
	assert.False(t, ok, "absence is an ordinary branch")
}

func TestSCCGroupsInReverseTopologicalOrder(t *testing.T) {
	// Condensation is a DAG: {a,b} -> {c} -> {d}. Components must come out
	// sinks first.
	g := Build([]Tuple[string, struct{}]{
		{From: "a", To: "b"},
		{From: "b", To: "a"},
		{From: "b", To: "c"},
		{From: "c", To: "d"},
	})

	p := StronglyConnectedComponents(g)
	require.Equal(t, 3, p.Len())

	for e := range g.Edges() {
		from, ok := p.ComponentOf(e.From())
		require.True(t, ok)
		to, ok := p.ComponentOf(e.To())
		require.True(t, ok)
		assert.GreaterOrEqual(t, from, to,
			"edge %s->%s must not point to a later group", e.From().Label(), e.To().Label())
	}

	sets := groupLabels(p)
	assert.Equal(t, map[string]bool{"d": true}, sets[0])
	assert.Equal(t, map[string]bool{"c": true}, sets[1])
	assert.Equal(t, map[string]bool{"a": true, "b": true}, sets[2])
}

func TestSCCDeepChainDoesNotRecurse(t *testing.T) {
	// A path long enough to blow a recursive implementation's stack.
	const depth = 200_000
	g := New[int, struct{}]()
	prev := g.AddNode(0)
	for i := 1; i < depth; i++ {
		n := g.AddNode(i)
		mustEdge(t, g, prev, n)
		prev = n
	}

	p := StronglyConnectedComponents(g)
	assert.Equal(t, depth, p.Len())
}

func mustEdge[N comparable, E any](t *testing.T, g *Graph[N, E], from, to *Node[N]) {
	t.Helper()
	var zero E
	_, err := g.AddEdge(from, to, zero)
	require.NoError(t, err)
}
