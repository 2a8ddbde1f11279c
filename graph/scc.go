package graph

import "iter"

// Group is one strongly connected component: a maximal set of nodes that are
// all mutually reachable. Membership order within a group carries no meaning.
type Group[N any] []*Node[N]

// Partition groups every node of a graph into disjoint, non-empty strongly
// connected components. It is a snapshot: mutating the graph afterwards does
// not update it. Groups appear in reverse DFS completion order, which for a
// DAG condensation is reverse topological order.
type Partition[N any] struct {
	groups []Group[N]
	comp   map[*Node[N]]int
}

// Len returns the number of groups.
func (p *Partition[N]) Len() int { return len(p.groups) }

// Group returns the i-th group.
func (p *Partition[N]) Group(i int) Group[N] { return p.groups[i] }

// Groups returns a restartable sequence of all groups.
func (p *Partition[N]) Groups() iter.Seq[Group[N]] {
	return func(yield func(Group[N]) bool) {
		for _, grp := range p.groups {
			if !yield(grp) {
				return
			}
		}
	}
}

// ComponentOf returns the index of the group containing n. The second result
// is false when n was not part of the analysed graph; absence is an ordinary
// branch, not an error.
func (p *Partition[N]) ComponentOf(n *Node[N]) (int, bool) {
	c, ok := p.comp[n]
	return c, ok
}

// StronglyConnectedComponents computes the strongly connected components of
// g using Tarjan's single-pass algorithm in O(nodes+edges). The depth-first
// traversal uses an explicit frame stack, so arbitrarily deep graphs do not
// hit the goroutine stack limit. Traversal follows the graph's insertion
// order for roots and successors. An empty graph yields an empty partition;
// an edgeless graph yields one singleton group per node.
func StronglyConnectedComponents[N, E any](g *Graph[N, E]) *Partition[N] {
	p := &Partition[N]{comp: make(map[*Node[N]]int, len(g.nodes))}

	index := make(map[*Node[N]]int, len(g.nodes))
	lowlink := make(map[*Node[N]]int, len(g.nodes))
	onStack := make(map[*Node[N]]bool, len(g.nodes))
	var stack []*Node[N]
	next := 0

	type frame struct {
		v    *Node[N]
		succ []*Edge[N, E]
		pos  int
	}
	var frames []frame

	visit := func(v *Node[N]) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, frame{v: v, succ: g.out[v]})
	}

	for _, root := range g.nodes {
		if _, seen := index[root]; seen {
			continue
		}
		visit(root)

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.pos < len(f.succ) {
				w := f.succ[f.pos].to
				f.pos++
				if _, seen := index[w]; !seen {
					visit(w)
				} else if onStack[w] && index[w] < lowlink[f.v] {
					lowlink[f.v] = index[w]
				}
				continue
			}

			// All successors of v explored.
			v := f.v
			frames = frames[:len(frames)-1]

			if lowlink[v] == index[v] {
				var grp Group[N]
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					p.comp[w] = len(p.groups)
					grp = append(grp, w)
					if w == v {
						break
					}
				}
				p.groups = append(p.groups, grp)
			}

			if len(frames) > 0 {
				parent := frames[len(frames)-1].v
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
		}
	}
	return p
}
