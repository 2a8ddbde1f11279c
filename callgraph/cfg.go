package callgraph

import (
	"strings"

	"golang.org/x/tools/go/ssa"

	"go-graphlib/graph"
)

// Block labels a control-flow-graph node: one SSA basic block. Instrs holds
// the newline-joined instruction listing, sized for multi-line DOT labels.
type Block struct {
	Index   int
	Comment string // SSA block comment, e.g. "entry", "if.then"
	Instrs  string
}

// ControlFlow returns the control-flow graph of fn: one node per basic
// block, edges following block successors. Edges out of a conditional
// branch are labeled "true" and "false"; all other edges carry an empty
// label.
func ControlFlow(fn *ssa.Function) *graph.Graph[Block, string] {
	g := graph.New[Block, string]()
	nodes := make([]*graph.Node[Block], len(fn.Blocks))
	for i, b := range fn.Blocks {
		nodes[i] = g.AddNode(Block{
			Index:   b.Index,
			Comment: b.Comment,
			Instrs:  blockText(b),
		})
	}
	for i, b := range fn.Blocks {
		cond := false
		if n := len(b.Instrs); n > 0 {
			_, cond = b.Instrs[n-1].(*ssa.If)
		}
		for si, succ := range b.Succs {
			label := ""
			if cond {
				if si == 0 {
					label = "true"
				} else {
					label = "false"
				}
			}
			// Endpoints all come from this graph, so AddEdge cannot fail.
			g.AddEdge(nodes[i], nodes[succ.Index], label)
		}
	}
	return g
}

// blockText renders a block's instructions one per line.
func blockText(b *ssa.BasicBlock) string {
	var sb strings.Builder
	for i, instr := range b.Instrs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if v, ok := instr.(ssa.Value); ok {
			sb.WriteString(v.Name())
			sb.WriteString(" = ")
		}
		sb.WriteString(instr.String())
	}
	return sb.String()
}
