package depgraph

// isolateCycles removes the acyclic part of the subgraph induced by nodes and
// returns what is left, in the order of nodes.
//
// The in-degree of a node counts the other nodes of the subgraph that depend
// on it. Nodes nobody depends on are peeled off one by one, releasing their
// dependencies. A node that survives sits on a cycle or is needed by one.
// Which zero in-degree node is peeled first is unspecified and does not
// change the result.
func (g *Graph) isolateCycles(nodes []NodeRef) []NodeRef {
	alive := make(map[NodeRef]bool, len(nodes))
	for _, n := range nodes {
		alive[n] = true
	}

	indegree := make(map[NodeRef]int, len(nodes))
	for _, n := range nodes {
		for _, dep := range g.dependencies(n) {
			if dep != n && alive[dep] {
				indegree[dep]++
			}
		}
	}

	var stack []NodeRef
	for _, n := range nodes {
		if indegree[n] == 0 {
			stack = append(stack, n)
		}
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(alive, n)

		for _, dep := range g.dependencies(n) {
			if dep == n || !alive[dep] {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				stack = append(stack, dep)
			}
		}
	}

	remaining := make([]NodeRef, 0, len(alive))
	for _, n := range nodes {
		if alive[n] {
			remaining = append(remaining, n)
		}
	}
	return remaining
}
