package graph

import "github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"

// Edge is one precedence link seen from the graph: From must be scheduled
// relative to To according to Kind and Lag.
type Edge struct {
	From int
	To   int
	Kind model.LinkKind
	Lag  model.Duration
}

// TaskGraph is a directed acyclic graph of tasks.
type TaskGraph struct {
	Tasks  map[int]*model.Task
	Order  []int          // task ids in list order
	Adj    map[int][]Edge // task -> links to the tasks it drives
	RevAdj map[int][]Edge // task -> links from the tasks it depends on
	Roots  []int          // tasks with no predecessors
	Leaves []int          // tasks with no successors
	Topo   []int          // every predecessor before its dependents
}
