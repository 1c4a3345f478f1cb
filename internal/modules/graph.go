package modules

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyGraph represents the dependency relationships between modules
type DependencyGraph struct {
	Dependencies map[ModulePath][]ModulePath
	Reverse      map[ModulePath][]ModulePath
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Dependencies: make(map[ModulePath][]ModulePath),
		Reverse:      make(map[ModulePath][]ModulePath),
	}
}

// AddModule adds a module to the dependency graph
func (dg *DependencyGraph) AddModule(path ModulePath) {
	if dg.Dependencies[path] == nil {
		dg.Dependencies[path] = []ModulePath{}
	}
	if dg.Reverse[path] == nil {
		dg.Reverse[path] = []ModulePath{}
	}
}

// AddDependency adds a dependency relationship
func (dg *DependencyGraph) AddDependency(from, to ModulePath) {
	dg.AddModule(from)
	dg.AddModule(to)
	for _, existing := range dg.Dependencies[from] {
		if existing == to {
			return
		}
	}
	dg.Dependencies[from] = append(dg.Dependencies[from], to)
	dg.Reverse[to] = append(dg.Reverse[to], from)
}

// GetDependencies returns the direct dependencies of a module
func (dg *DependencyGraph) GetDependencies(path ModulePath) []ModulePath {
	return dg.Dependencies[path]
}

// Dependents returns the given modules plus every module that transitively
// imports or re-exports from one of them, sorted. These are the modules
// whose output may change when the given ones change.
func (dg *DependencyGraph) Dependents(changed ...ModulePath) []ModulePath {
	seen := make(map[ModulePath]bool)
	queue := append([]ModulePath(nil), changed...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true
		queue = append(queue, dg.Reverse[current]...)
	}
	out := make([]ModulePath, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DetectCycles returns every import cycle found by a depth-first search.
// Cycles are legal in ES modules; the list is informational.
func (dg *DependencyGraph) DetectCycles() [][]ModulePath {
	var cycles [][]ModulePath
	visited := make(map[ModulePath]bool)
	recursionStack := make(map[ModulePath]bool)

	nodes := make([]ModulePath, 0, len(dg.Dependencies))
	for p := range dg.Dependencies {
		nodes = append(nodes, p)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, p := range nodes {
		if !visited[p] {
			cycles = dg.detectCyclesDFS(p, visited, recursionStack, nil, cycles)
		}
	}
	return cycles
}

// detectCyclesDFS performs DFS to detect cycles
func (dg *DependencyGraph) detectCyclesDFS(module ModulePath, visited, recursionStack map[ModulePath]bool, path []ModulePath, cycles [][]ModulePath) [][]ModulePath {
	visited[module] = true
	recursionStack[module] = true
	path = append(path, module)

	for _, dependency := range dg.Dependencies[module] {
		if !visited[dependency] {
			cycles = dg.detectCyclesDFS(dependency, visited, recursionStack, path, cycles)
			continue
		}
		if recursionStack[dependency] {
			for i, p := range path {
				if p == dependency {
					cycle := make([]ModulePath, len(path)-i, len(path)-i+1)
					copy(cycle, path[i:])
					cycles = append(cycles, append(cycle, dependency))
					break
				}
			}
		}
	}

	recursionStack[module] = false
	return cycles
}

// FormatCycle renders a cycle as "a.ts -> b.ts -> a.ts".
func FormatCycle(cycle []ModulePath) string {
	parts := make([]string, len(cycle))
	for i, p := range cycle {
		parts[i] = string(p)
	}
	return strings.Join(parts, " -> ")
}

// String summarizes the graph size
func (dg *DependencyGraph) String() string {
	edges := 0
	for _, deps := range dg.Dependencies {
		edges += len(deps)
	}
	return fmt.Sprintf("%d modules, %d edges", len(dg.Dependencies), edges)
}
