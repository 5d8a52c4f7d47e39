package dag

import "strings"

// Graph is a collection of nodes and their dependencies.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order is the insertion order of node IDs. Every traversal follows it so
	// results do not depend on map iteration.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id    string
	index int
	// deps holds the nodes that this node depends on, in edge order.
	deps []*node
	// dependents holds the nodes that depend on this node, in edge order.
	dependents []*node
}

func (n *node) hasDep(id string) bool {
	for _, d := range n.deps {
		if d.id == id {
			return true
		}
	}
	return false
}

// CycleError reports a dependency cycle. Path starts and ends with the same
// node; each node in it depends on the next one.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}
