// Package callgraph extracts call graphs and per-function control-flow
// graphs from Go source and exposes them as generic graph.Graph values, so
// the same SCC and DOT machinery applies to both.
package callgraph

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"go-graphlib/graph"
)

// LoadMode is the packages.Load mode required by Extract.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
	packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypesSizes

// Function labels a call-graph node.
type Function struct {
	Name     string
	FullName string // package.ReceiverType.Method or package.Func
	Package  string
	Exported bool
}

// Call labels a call-graph edge.
type Call struct {
	Site    string // file:line of the call site, relative to the module
	Dynamic bool   // dispatched through an interface
}

// Extractor builds call graphs for one Go module. It keeps the SSA program
// around so control-flow graphs of individual functions can be extracted
// after the call graph.
type Extractor struct {
	RootModule string

	prog  *ssa.Program
	funcs map[string]*ssa.Function // project functions by full name
}

// NewExtractor creates an Extractor scoped to the given root module path.
// Only functions in packages under that path become graph nodes.
func NewExtractor(rootModule string) *Extractor {
	return &Extractor{
		RootModule: rootModule,
		funcs:      make(map[string]*ssa.Function),
	}
}

// isProjectPackage reports whether pkgPath belongs to the analysed module.
func (e *Extractor) isProjectPackage(pkgPath string) bool {
	return strings.HasPrefix(pkgPath, e.RootModule)
}

// relPath strips the module prefix from a full file or package path,
// returning a path relative to the project root.
func (e *Extractor) relPath(fullPath string) string {
	if idx := strings.Index(fullPath, e.RootModule); idx >= 0 {
		rest := fullPath[idx+len(e.RootModule):]
		if len(rest) > 0 && rest[0] == '/' {
			return rest[1:]
		}
		return rest
	}
	return fullPath
}

// Extract builds SSA for pkgs, runs VTA, and returns the call graph over
// the module's functions. Calls crossing the module boundary are kept when
// either end is a project function, so callers into the standard library
// still show up as leaves.
func (e *Extractor) Extract(pkgs []*packages.Package) (*graph.Graph[Function, Call], error) {
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("callgraph: no packages to analyse")
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	for _, p := range ssaPkgs {
		if p != nil {
			p.Build()
		}
	}
	e.prog = prog

	// VTA gives the best precision/speed balance for whole-program graphs.
	cg := vta.CallGraph(ssautil.AllFunctions(prog), nil)

	g := graph.New[Function, Call]()
	byName := make(map[string]*graph.Node[Function])
	node := func(fn *ssa.Function, pkgPath string) *graph.Node[Function] {
		full := fullName(fn)
		if n, ok := byName[full]; ok {
			return n
		}
		n := g.AddNode(Function{
			Name:     fn.Name(),
			FullName: full,
			Package:  pkgPath,
			Exported: fn.Object() != nil && fn.Object().Exported(),
		})
		byName[full] = n
		if e.isProjectPackage(pkgPath) {
			e.funcs[full] = fn
		}
		return n
	}

	err := callgraph.GraphVisitEdges(cg, func(edge *callgraph.Edge) error {
		caller := edge.Caller.Func
		callee := edge.Callee.Func
		if caller.Pkg == nil || callee.Pkg == nil {
			return nil
		}
		callerPkg := caller.Pkg.Pkg.Path()
		calleePkg := callee.Pkg.Pkg.Path()
		if !e.isProjectPackage(callerPkg) && !e.isProjectPackage(calleePkg) {
			return nil
		}

		site := ""
		if edge.Site != nil {
			pos := prog.Fset.Position(edge.Site.Pos())
			site = fmt.Sprintf("%s:%d", e.relPath(pos.Filename), pos.Line)
		}

		_, err := g.AddEdge(node(caller, callerPkg), node(callee, calleePkg), Call{
			Site:    site,
			Dynamic: edge.Site != nil && edge.Site.Common().IsInvoke(),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("callgraph: %w", err)
	}
	return g, nil
}

// Func returns the SSA function with the given full name, if Extract saw it
// in a project package. Not-found is an ordinary result, not an error.
func (e *Extractor) Func(full string) (*ssa.Function, bool) {
	fn, ok := e.funcs[full]
	return fn, ok
}

// FindFunction scans g for the node whose label has the given full name.
func FindFunction(g *graph.Graph[Function, Call], full string) (*graph.Node[Function], bool) {
	for n := range g.Nodes() {
		if n.Label().FullName == full {
			return n, true
		}
	}
	return nil, false
}

// fullName derives a stable name for an SSA function: package.Func for
// standalone functions, package.ReceiverType.Method for methods.
func fullName(fn *ssa.Function) string {
	if fn.Pkg == nil {
		return fn.String()
	}
	pkgPath := fn.Pkg.Pkg.Path()
	if recv := fn.Signature.Recv(); recv != nil {
		recvType := recv.Type()
		if ptr, ok := recvType.(*types.Pointer); ok {
			recvType = ptr.Elem()
		}
		if named, ok := recvType.(*types.Named); ok {
			return pkgPath + "." + named.Obj().Name() + "." + fn.Name()
		}
	}
	return pkgPath + "." + fn.Name()
}
