// Package depgraph tracks which files are being resolved during one
// top-level transformation and which ones are already done.
//
// A Graph is created for each top-level file and passed by pointer through
// every nested transformation of that file. It is not safe for concurrent
// use: builds that run in parallel give every top-level file its own Graph.
package depgraph

import (
	"sort"
	"strings"
)

// Graph records the in-progress resolution stack, the completed files and the
// import edges seen so far.
type Graph struct {
	stack      []string
	inProgress map[string]bool
	completed  map[string][]byte
	edges      map[string][]string
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		inProgress: make(map[string]bool),
		completed:  make(map[string][]byte),
		edges:      make(map[string][]string),
	}
}

// Enter pushes path onto the resolution stack. It returns a *CycleError when
// path is already being resolved.
func (g *Graph) Enter(path string) error {
	if g.inProgress[path] {
		return &CycleError{Chain: g.chainTo(path)}
	}
	g.inProgress[path] = true
	g.stack = append(g.stack, path)
	return nil
}

// Leave pops path from the resolution stack.
func (g *Graph) Leave(path string) {
	if !g.inProgress[path] {
		return
	}
	delete(g.inProgress, path)
	for i := len(g.stack) - 1; i >= 0; i-- {
		if g.stack[i] == path {
			g.stack = append(g.stack[:i], g.stack[i+1:]...)
			break
		}
	}
}

// InProgress reports whether path is on the current resolution stack.
func (g *Graph) InProgress(path string) bool {
	return g.inProgress[path]
}

// Check returns a *CycleError if entering path would close a cycle.
func (g *Graph) Check(path string) error {
	if g.inProgress[path] {
		return &CycleError{Chain: g.chainTo(path)}
	}
	return nil
}

// Stack returns a copy of the current resolution stack, outermost first.
func (g *Graph) Stack() []string {
	out := make([]string, len(g.stack))
	copy(out, g.stack)
	return out
}

// Complete memoizes the transformed content of path.
func (g *Graph) Complete(path string, content []byte) {
	g.completed[path] = content
}

// Completed returns the memoized content of path, if any.
func (g *Graph) Completed(path string) ([]byte, bool) {
	content, ok := g.completed[path]
	return content, ok
}

// AddEdge records that from imports to. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// Dependencies returns the direct imports of path in discovery order.
func (g *Graph) Dependencies(path string) []string {
	deps := g.edges[path]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// TransitiveDependencies returns every file reachable from path, sorted.
func (g *Graph) TransitiveDependencies(path string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(p string) {
		for _, dep := range g.edges[p] {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			walk(dep)
		}
	}
	walk(path)
	delete(seen, path)

	out := make([]string, 0, len(seen))
	for dep := range seen {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) chainTo(path string) []string {
	start := 0
	for i, p := range g.stack {
		if p == path {
			start = i
			break
		}
	}
	chain := make([]string, 0, len(g.stack)-start+1)
	chain = append(chain, g.stack[start:]...)
	return append(chain, path)
}

// CycleError describes an import cycle. Chain starts and ends with the same
// file.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "import cycle: " + strings.Join(e.Chain, " -> ")
}
