package depgraph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// CycleNode is a node of the cycle remainder.
type CycleNode struct {
	Kind NodeKind
	ID   string
}

// CycleEdge is a dependency edge between two remainder nodes.
type CycleEdge struct {
	From CycleNode
	To   CycleNode
}

// CycleGraph is the subgraph left after acyclic reduction, sorted by kind
// and ID for stable rendering.
type CycleGraph struct {
	Nodes []CycleNode
	Edges []CycleEdge
}

func nodeRefHash(ref NodeRef) NodeRef {
	return ref
}

// remainderGraph builds the subgraph induced by the remaining nodes.
func (g *Graph) remainderGraph(remaining []NodeRef) (graphlib.Graph[NodeRef, NodeRef], error) {
	rg := graphlib.New(nodeRefHash, graphlib.Directed())

	alive := make(map[NodeRef]bool, len(remaining))
	for _, ref := range remaining {
		alive[ref] = true
		if err := rg.AddVertex(ref); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, err
		}
	}

	for _, ref := range remaining {
		for _, dep := range g.dependencies(ref) {
			if dep == ref || !alive[dep] {
				continue
			}
			if err := rg.AddEdge(ref, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}

	return rg, nil
}

// cycleGroups returns the ports of every strongly connected component of
// the remaining nodes that has more than one node. Components are found
// with Tarjan's algorithm, visiting nodes and dependencies in graph order so
// the result is the same on every run.
func (g *Graph) cycleGroups(remaining []NodeRef) [][]string {
	alive := make(map[NodeRef]bool, len(remaining))
	for _, ref := range remaining {
		alive[ref] = true
	}

	index := make(map[NodeRef]int, len(remaining))
	lowlink := make(map[NodeRef]int, len(remaining))
	onStack := make(map[NodeRef]bool, len(remaining))
	var stack []NodeRef
	var groups [][]string

	var connect func(n NodeRef)
	connect = func(n NodeRef) {
		index[n] = len(index)
		lowlink[n] = index[n]
		stack = append(stack, n)
		onStack[n] = true

		for _, dep := range g.dependencies(n) {
			if dep == n || !alive[dep] {
				continue
			}
			if _, visited := index[dep]; !visited {
				connect(dep)
				lowlink[n] = min(lowlink[n], lowlink[dep])
			} else if onStack[dep] {
				lowlink[n] = min(lowlink[n], index[dep])
			}
		}

		if lowlink[n] != index[n] {
			return
		}

		var component []NodeRef
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == n {
				break
			}
		}
		if len(component) < 2 {
			return
		}

		var ports []string
		for _, ref := range component {
			if ref.Kind == PortKind {
				ports = append(ports, g.name(ref))
			}
		}
		if len(ports) > 0 {
			sort.Strings(ports)
			groups = append(groups, ports)
		}
	}

	for _, ref := range remaining {
		if _, visited := index[ref]; !visited {
			connect(ref)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})
	return groups
}

func (g *Graph) cycleGraph(rg graphlib.Graph[NodeRef, NodeRef]) (CycleGraph, error) {
	adjacency, err := rg.AdjacencyMap()
	if err != nil {
		return CycleGraph{}, fmt.Errorf("failed to read remainder adjacency: %w", err)
	}

	var cg CycleGraph
	for ref, targets := range adjacency {
		from := g.cycleNode(ref)
		cg.Nodes = append(cg.Nodes, from)
		for target := range targets {
			cg.Edges = append(cg.Edges, CycleEdge{From: from, To: g.cycleNode(target)})
		}
	}

	sort.Slice(cg.Nodes, func(i, j int) bool {
		return cycleNodeLess(cg.Nodes[i], cg.Nodes[j])
	})
	sort.Slice(cg.Edges, func(i, j int) bool {
		if cg.Edges[i].From != cg.Edges[j].From {
			return cycleNodeLess(cg.Edges[i].From, cg.Edges[j].From)
		}
		return cycleNodeLess(cg.Edges[i].To, cg.Edges[j].To)
	})
	return cg, nil
}

func (g *Graph) cycleNode(ref NodeRef) CycleNode {
	return CycleNode{Kind: ref.Kind, ID: g.name(ref)}
}

func cycleNodeLess(a, b CycleNode) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.ID < b.ID
}
