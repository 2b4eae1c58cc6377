package graph

import "github.com/joshharrison/critpath/internal/activity"

// Graph is a directed acyclic graph of activities. Edges point from a
// predecessor to the activity that waits on it.
type Graph struct {
	Activities map[string]*activity.Descriptor
	Order      []string            // activity names in input order
	Adj        map[string][]string // activity -> activities waiting on it
	RevAdj     map[string][]string // activity -> activities it waits on
	Roots      []string            // activities with no predecessors, input order
	Leaves     []string            // activities with no successors, input order
	TopoOrder  []string            // predecessors before successors
}
