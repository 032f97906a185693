package validator

import (
	"fmt"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Validate checks a candidate flow for structural problems before it may go live.
// It never fails: every finding is returned as data, and Valid is true when no errors were found.
func Validate(nodes []domain.Node, connections []domain.Connection) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	nodeMap := make(map[string]domain.Node, len(nodes))
	var duplicates []string
	for _, n := range nodes {
		if _, seen := nodeMap[n.ID]; seen {
			duplicates = append(duplicates, fmt.Sprintf("Node id %q is used more than once", n.ID))
			continue
		}
		nodeMap[n.ID] = n
	}

	// 1. Orphans (warning)
	result.Warnings = append(result.Warnings, checkOrphans(nodes, connections)...)

	adj := buildAdjacency(connections)

	// 2. Cycles (error)
	if hasCycle(nodes, adj) {
		result.Errors = append(result.Errors, "Flow contains cycles")
	}

	// 3. Reachability from start (error)
	result.Errors = append(result.Errors, checkReachability(nodes, nodeMap, adj)...)

	// 4. Node schema (error)
	for _, n := range nodes {
		if !n.Type.Valid() {
			result.Errors = append(result.Errors, fmt.Sprintf("Node %q has invalid type %q", n.ID, n.Type))
		}
		if n.Data.Title == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Node %q is missing a title", n.ID))
		}
		if n.Data.Content == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Node %q is missing content", n.ID))
		}
	}

	result.Errors = append(result.Errors, duplicates...)

	// 5. Dangling edges (error)
	for _, c := range connections {
		if _, ok := nodeMap[c.Source]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Connection %q references unknown node %q", c.ID, c.Source))
		}
		if _, ok := nodeMap[c.Target]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Connection %q references unknown node %q", c.ID, c.Target))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// checkOrphans reports nodes that take part in no connection at all.
// The start node is exempt: a single-node flow is legitimate.
func checkOrphans(nodes []domain.Node, connections []domain.Connection) []string {
	connected := make(map[string]bool)
	for _, c := range connections {
		connected[c.Source] = true
		connected[c.Target] = true
	}

	var warnings []string
	for _, n := range nodes {
		if n.ID == domain.StartNodeID || connected[n.ID] {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Node %q is not connected to the flow", n.Label()))
	}
	return warnings
}

func buildAdjacency(connections []domain.Connection) map[string][]string {
	adj := make(map[string][]string)
	for _, c := range connections {
		adj[c.Source] = append(adj[c.Source], c.Target)
	}
	return adj
}

// hasCycle runs a DFS from every unvisited node, so cycles unreachable from start are found too.
func hasCycle(nodes []domain.Node, adj map[string][]string) bool {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range adj[id] {
			if onStack[next] {
				return true
			}
			if !visited[next] && visit(next) {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, n := range nodes {
		if !visited[n.ID] && visit(n.ID) {
			return true
		}
	}
	// Edges whose source is not a declared node can still close a loop.
	for source := range adj {
		if !visited[source] && visit(source) {
			return true
		}
	}
	return false
}

// checkReachability walks the graph breadth-first from start and reports every node it never reaches.
func checkReachability(nodes []domain.Node, nodeMap map[string]domain.Node, adj map[string][]string) []string {
	var errs []string
	if _, ok := nodeMap[domain.StartNodeID]; !ok {
		errs = append(errs, "Flow must have a start node")
	}

	visited := map[string]bool{domain.StartNodeID: true}
	queue := []string{domain.StartNodeID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adj[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, n := range nodes {
		if !visited[n.ID] {
			errs = append(errs, fmt.Sprintf("Node %q is unreachable from start", n.Label()))
		}
	}
	return errs
}
