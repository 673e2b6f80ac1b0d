package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kitforge-dev/kitforge/internal/component"
)

// Node carries per-component graph attributes. External nodes are
// dependency targets that no scanned component provides (well-known tools,
// ids from other sources); they are tracked but never installable.
type Node struct {
	Depth    int
	External bool
}

// Graph is the dependency graph over a scanned component set. Edges point
// from a component to what it depends on; Reverse is the exact transpose.
type Graph struct {
	Nodes   map[string]*Node
	Edges   map[string][]string
	Reverse map[string][]string
	Cycles  [][]string // each inner slice is a cycle path; empty if acyclic
}

// CycleError reports a circular dependency intersecting a requested set.
type CycleError struct {
	Chain []string // closed walk, first id repeated at the end
}

func (e *CycleError) Error() string {
	return "circular dependency: " + strings.Join(e.Chain, " -> ")
}

// buildGraph constructs adjacency from explicit dependencies plus agent
// bundle references, then detects cycles.
func buildGraph(components map[string]*component.Definition) *Graph {
	g := &Graph{
		Nodes:   make(map[string]*Node),
		Edges:   make(map[string][]string),
		Reverse: make(map[string][]string),
	}

	for id, def := range components {
		g.Nodes[id] = &Node{}

		deps := def.Dependencies
		if def.Agent != nil {
			deps = append(append([]string{}, deps...), def.Agent.Bundle...)
		}

		seen := make(map[string]bool)
		for _, dep := range deps {
			if dep == id || seen[dep] {
				continue
			}
			seen[dep] = true
			g.Edges[id] = append(g.Edges[id], dep)
			g.Reverse[dep] = append(g.Reverse[dep], id)
		}
		sort.Strings(g.Edges[id])
	}

	// Dependencies on ids outside the scanned set become external nodes.
	for dep := range g.Reverse {
		if _, ok := g.Nodes[dep]; !ok {
			g.Nodes[dep] = &Node{External: true}
		}
		sort.Strings(g.Reverse[dep])
	}

	g.Cycles = g.findCycles()
	g.computeDepths()
	return g
}

// Dependencies returns the one-hop forward adjacency for id.
func (g *Graph) Dependencies(id string) []string {
	return append([]string{}, g.Edges[id]...)
}

// Dependents returns the one-hop reverse adjacency for id.
func (g *Graph) Dependents(id string) []string {
	return append([]string{}, g.Reverse[id]...)
}

// ResolveOrder restricts the graph to the subgraph reachable from the
// requested ids and returns a deterministic topological order, dependencies
// first. External nodes are traversed but excluded from the result. It
// fails with a CycleError when a cycle intersects the reachable subgraph.
func (g *Graph) ResolveOrder(ids []string) ([]string, error) {
	reach := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if reach[id] {
			return
		}
		reach[id] = true
		for _, dep := range g.Edges[id] {
			visit(dep)
		}
	}
	for _, id := range ids {
		visit(id)
	}

	// A recorded cycle that lies inside the reachable set is fatal.
	for _, cycle := range g.Cycles {
		inside := true
		for _, id := range cycle {
			if !reach[id] {
				inside = false
				break
			}
		}
		if inside && len(cycle) > 0 {
			chain := append(append([]string{}, cycle...), cycle[0])
			return nil, &CycleError{Chain: chain}
		}
	}

	// Kahn's algorithm over the subgraph. The ready set is kept sorted so
	// components with no ordering constraint come out in ascending id order.
	indegree := make(map[string]int)
	for id := range reach {
		for _, dep := range g.Edges[id] {
			if reach[dep] {
				indegree[id]++
			}
		}
	}

	var ready []string
	for id := range reach {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	var order []string
	popped := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		popped++
		if n := g.Nodes[id]; n == nil || !n.External {
			order = append(order, id)
		}
		changed := false
		for _, dependent := range g.Reverse[id] {
			if !reach[dependent] {
				continue
			}
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
				changed = true
			}
		}
		if changed {
			sort.Strings(ready)
		}
	}

	// Unreachable when cycle detection above is correct; kept as a guard.
	if popped < len(reach) {
		return nil, fmt.Errorf("dependency order incomplete: processed %d of %d nodes", popped, len(reach))
	}

	return order, nil
}

// findCycles runs a three-color DFS over ids in sorted order and records
// every distinct cycle. Scanning continues after a cycle is found so that
// independent cycles are all reported.
func (g *Graph) findCycles() [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var stack []string
	var cycles [][]string
	seen := make(map[string]bool) // normalized cycle keys

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)
		for _, dep := range g.Edges[id] {
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				// Back edge: extract the cycle from the stack.
				start := -1
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				if start >= 0 {
					cycle := append([]string{}, stack[start:]...)
					key := normalizeCycle(cycle)
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if color[id] == white {
			dfs(id)
		}
	}

	return cycles
}

// normalizeCycle rotates a cycle so its smallest id comes first, giving a
// stable key for deduplication regardless of where the DFS entered it.
func normalizeCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	min := 0
	for i, id := range cycle {
		if id < cycle[min] {
			min = i
		}
	}
	rotated := append(append([]string{}, cycle[min:]...), cycle[:min]...)
	return strings.Join(rotated, "->")
}

// computeDepths assigns each node the length of its longest dependency
// chain. Nodes on a cycle keep depth 0; depth is informational only.
func (g *Graph) computeDepths() {
	memo := make(map[string]int)
	onPath := make(map[string]bool)

	var depth func(id string) int
	depth = func(id string) int {
		if d, ok := memo[id]; ok {
			return d
		}
		if onPath[id] {
			return 0
		}
		onPath[id] = true
		max := 0
		for _, dep := range g.Edges[id] {
			if d := depth(dep) + 1; d > max {
				max = d
			}
		}
		onPath[id] = false
		memo[id] = max
		return max
	}

	for id, node := range g.Nodes {
		node.Depth = depth(id)
	}
}
