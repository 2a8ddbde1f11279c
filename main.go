package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"go-graphlib/callgraph"
	"go-graphlib/dot"
	"go-graphlib/graph"
	"go-graphlib/neo4jload"
)

// componentPalette colors nodes of non-trivial strongly connected
// components in the DOT output, cycling when there are more components
// than colors.
var componentPalette = []string{
	"#ffadad", "#ffd6a5", "#fdffb6", "#caffbf",
	"#9bf6ff", "#a0c4ff", "#bdb2ff", "#ffc6ff",
}

func main() {
	var (
		dir       = flag.String("dir", ".", "Project root directory")
		dotOut    = flag.String("dot", "", "Write the call graph as DOT to this path")
		cfgFunc   = flag.String("cfg", "", "Also write the control-flow graph of this function (full name) as DOT")
		neo4jURI  = flag.String("neo4j-uri", "bolt://localhost:7687", "Neo4j bolt URI")
		neo4jUser = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass = flag.String("neo4j-pass", "", "Neo4j password (empty skips the Neo4j load)")
		clean     = flag.Bool("clean", false, "Clean existing graph data before loading")
	)
	flag.Parse()

	if *dotOut == "" && *neo4jPass == "" {
		fmt.Fprintln(os.Stderr, "Error: at least one of --dot or --neo4j-pass is required")
		flag.Usage()
		os.Exit(1)
	}

	// Resolve absolute path and module name.
	absDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal(err)
	}

	// Detect module path from go.mod.
	modulePath, err := detectModulePath(absDir)
	if err != nil {
		log.Fatalf("Cannot detect Go module: %v", err)
	}
	log.Printf("Module: %s", modulePath)
	log.Printf("Dir: %s", absDir)

	// Load packages.
	log.Println("Loading packages (this may take a minute)...")
	cfg := &packages.Config{Mode: callgraph.LoadMode, Dir: absDir}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		log.Fatalf("Failed to load packages: %v", err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		log.Printf("Warning: %d package errors (continuing anyway)", n)
	}
	log.Printf("Loaded %d packages", len(pkgs))

	// Extract the call graph.
	log.Println("Building SSA and call graph (VTA)...")
	extractor := callgraph.NewExtractor(modulePath)
	g, err := extractor.Extract(pkgs)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Call graph: %d functions, %d calls", g.NumNodes(), g.NumEdges())

	// Strongly connected components.
	part := graph.StronglyConnectedComponents(g)
	cycles := 0
	largest := 0
	for grp := range part.Groups() {
		if len(grp) > 1 {
			cycles++
		}
		if len(grp) > largest {
			largest = len(grp)
		}
	}
	log.Printf("SCC: %d components, %d with cycles, largest has %d functions",
		part.Len(), cycles, largest)

	if *dotOut != "" {
		if err := writeCallGraphDOT(g, part, *dotOut); err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote call graph to %s", *dotOut)
	}

	if *cfgFunc != "" {
		path, err := writeControlFlowDOT(extractor, *cfgFunc, *dotOut)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote control-flow graph to %s", path)
	}

	if *neo4jPass == "" {
		return
	}

	// Load into Neo4j.
	ctx := context.Background()
	loader, err := neo4jload.NewLoader(ctx, *neo4jURI, *neo4jUser, *neo4jPass)
	if err != nil {
		log.Fatal(err)
	}
	defer loader.Close()

	if *clean {
		if err := loader.Clean(); err != nil {
			log.Fatal(err)
		}
	}
	if err := loader.CreateIndexes(); err != nil {
		log.Fatal(err)
	}
	if err := neo4jload.LoadGraph(loader, g, part,
		func(f callgraph.Function) string { return f.FullName },
		func(c callgraph.Call) string { return c.Site },
	); err != nil {
		log.Fatal(err)
	}

	log.Println("Done! Graph loaded into Neo4j.")
	log.Println("")
	log.Println("Useful Cypher queries:")
	log.Println("  // Functions with most outgoing calls")
	log.Println("  MATCH (f:GraphNode)-[r:EDGE_TO]->(t) RETURN f.key, count(t) AS calls ORDER BY calls DESC LIMIT 20")
	log.Println("")
	log.Println("  // Recursion groups (strongly connected components with more than one function)")
	log.Println("  MATCH (n:GraphNode) WITH n.component AS c, collect(n.key) AS fns WHERE size(fns) > 1 RETURN c, fns")
}

// writeCallGraphDOT renders the call graph with one fill color per
// non-trivial strongly connected component.
func writeCallGraphDOT(g *graph.Graph[callgraph.Function, callgraph.Call], part *graph.Partition[callgraph.Function], path string) error {
	m := &dot.Marshaler[callgraph.Function, callgraph.Call]{
		Name:      "callgraph",
		NodeLabel: func(f callgraph.Function) string { return f.FullName },
		NodeAttrs: func(n *graph.Node[callgraph.Function]) []dot.Attr {
			c, ok := part.ComponentOf(n)
			if !ok || len(part.Group(c)) < 2 {
				return nil
			}
			return []dot.Attr{
				{Key: "style", Value: "filled"},
				{Key: "fillcolor", Value: componentPalette[c%len(componentPalette)]},
			}
		},
		EdgeAttrs: func(e *graph.Edge[callgraph.Function, callgraph.Call]) []dot.Attr {
			if !e.Label().Dynamic {
				return nil
			}
			return []dot.Attr{{Key: "style", Value: "dashed"}}
		},
	}
	return m.WriteFile(g, path)
}

// writeControlFlowDOT renders the CFG of the named function next to the
// call-graph output (or into the working directory when -dot was not set).
func writeControlFlowDOT(extractor *callgraph.Extractor, full, dotOut string) (string, error) {
	fn, ok := extractor.Func(full)
	if !ok {
		return "", fmt.Errorf("function %q not found in the analysed module", full)
	}
	cfg := callgraph.ControlFlow(fn)
	part := graph.StronglyConnectedComponents(cfg)
	loops := 0
	for grp := range part.Groups() {
		if len(grp) > 1 {
			loops++
		}
	}
	log.Printf("CFG of %s: %d blocks, %d edges, %d loop regions",
		full, cfg.NumNodes(), cfg.NumEdges(), loops)

	m := &dot.Marshaler[callgraph.Block, string]{
		Name: "cfg",
		NodeLabel: func(b callgraph.Block) string {
			return fmt.Sprintf("%d: %s\n%s", b.Index, b.Comment, b.Instrs)
		},
		EdgeLabel: func(label string) string { return label },
		NodeAttrs: func(*graph.Node[callgraph.Block]) []dot.Attr {
			return []dot.Attr{{Key: "shape", Value: "box"}}
		},
	}
	path := filepath.Join(filepath.Dir(dotOut), sanitizeFileName(full)+".dot")
	return path, m.WriteFile(cfg, path)
}

// sanitizeFileName makes a function full name usable as a file name.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}

// detectModulePath reads the go.mod file in dir and returns the module path.
func detectModulePath(dir string) (string, error) {
	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", fmt.Errorf("cannot read go.mod: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module")), nil
		}
	}
	return "", fmt.Errorf("module directive not found in go.mod")
}
