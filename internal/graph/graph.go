package graph

import (
	"fmt"

	"github.com/joshharrison/critpath/internal/activity"
)

// Build validates the activity descriptors and constructs their dependency
// graph. Checks run in a fixed order so the first problem reported is
// deterministic: schema, duplicate names (input order), unknown
// predecessors (input order, then each predecessor list in order), cycles.
func Build(descs []activity.Descriptor) (*Graph, error) {
	if err := activity.Validate(descs); err != nil {
		return nil, err
	}

	g := &Graph{
		Activities: make(map[string]*activity.Descriptor, len(descs)),
		Order:      make([]string, 0, len(descs)),
		Adj:        make(map[string][]string),
		RevAdj:     make(map[string][]string),
	}

	// Index a private copy so later changes to the caller's slice can't leak in.
	owned := make([]activity.Descriptor, len(descs))
	copy(owned, descs)
	for i := range owned {
		d := &owned[i]
		if _, dup := g.Activities[d.Name]; dup {
			return nil, &DuplicateActivityError{Name: d.Name}
		}
		g.Activities[d.Name] = d
		g.Order = append(g.Order, d.Name)
	}

	// Repeated predecessor entries collapse into one edge.
	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.Adj[from] = append(g.Adj[from], to)
		g.RevAdj[to] = append(g.RevAdj[to], from)
	}

	for _, name := range g.Order {
		for _, pred := range g.Activities[name].Predecessors {
			if _, ok := g.Activities[pred]; !ok {
				return nil, &UnknownPredecessorError{Activity: name, Predecessor: pred}
			}
			addEdge(pred, name)
		}
	}

	for _, name := range g.Order {
		if len(g.RevAdj[name]) == 0 {
			g.Roots = append(g.Roots, name)
		}
		if len(g.Adj[name]) == 0 {
			g.Leaves = append(g.Leaves, name)
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.TopoOrder = order

	return g, nil
}

// topoSort performs Kahn's algorithm. Roots are seeded in input order and
// successors become ready in adjacency order, so the result is stable for a
// given input.
func (g *Graph) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.Order))
	for _, name := range g.Order {
		inDegree[name] = len(g.RevAdj[name])
	}

	queue := make([]string, 0, len(g.Roots))
	queue = append(queue, g.Roots...)

	order := make([]string, 0, len(g.Order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(g.Order) {
		cycle := g.DetectCycle()
		if cycle == nil {
			// Kahn and DFS disagree only if the graph was mutated underneath us.
			return nil, fmt.Errorf("topological sort stalled: %d of %d activities sorted", len(order), len(g.Order))
		}
		return nil, &CyclicDependencyError{Cycle: cycle}
	}
	return order, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
// The returned path starts and ends on the same activity.
func (g *Graph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, name := range g.Order {
		if color[name] == white {
			if cycle := dfs(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Len returns the number of activities in the graph.
func (g *Graph) Len() int {
	return len(g.Order)
}

// Predecessors returns the activities name waits on.
func (g *Graph) Predecessors(name string) []string {
	return g.RevAdj[name]
}

// Successors returns the activities waiting on name.
func (g *Graph) Successors(name string) []string {
	return g.Adj[name]
}

// Duration returns the duration of the named activity, or 0 if unknown.
func (g *Graph) Duration(name string) float64 {
	if d, ok := g.Activities[name]; ok {
		return d.Duration
	}
	return 0
}
