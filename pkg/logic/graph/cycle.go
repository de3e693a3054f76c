package graph

import (
	"fmt"
	"sort"
	"strings"
)

// CyclicDependencyError reports a dependency cycle among rule owners and
// their operands. The survey version cannot be published.
type CyclicDependencyError struct {
	// Cycle lists the identifiers on the detected cycle, in traversal
	// order, with the starting node repeated at the end.
	Cycle []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic rule dependency: %s", strings.Join(e.Cycle, " -> "))
}

// dfs colors for cycle detection.
const (
	colorWhite = iota // unvisited
	colorGray         // on the current traversal stack
	colorBlack        // fully explored
)

// findCycle runs a depth-first traversal over the dependency edges and
// returns the first cycle found, or nil if the graph is acyclic. Nodes are
// visited in sorted order so detection is deterministic.
func (g *DependencyGraph) findCycle() []string {
	nodes := make([]string, 0, len(g.edges))
	for node := range g.edges {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	color := make(map[string]int, len(nodes))
	var stack []string

	var visit func(node string) []string
	visit = func(node string) []string {
		color[node] = colorGray
		stack = append(stack, node)

		targets := append([]string(nil), g.edges[node]...)
		sort.Strings(targets)

		for _, next := range targets {
			switch color[next] {
			case colorGray:
				// Back edge: slice the stack from the first occurrence of
				// next to name every participant.
				for i, id := range stack {
					if id == next {
						cycle := append([]string(nil), stack[i:]...)
						return append(cycle, next)
					}
				}
			case colorWhite:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[node] = colorBlack
		return nil
	}

	for _, node := range nodes {
		if color[node] == colorWhite {
			if cycle := visit(node); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
