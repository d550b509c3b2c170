package graph

import (
	"fmt"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// Build indexes tasks, wires their predecessor links in both directions and
// computes a topological order. It fails with a ValidationError for unknown or
// self references and with a CycleError when the links loop.
func Build(tasks []*model.Task) (*TaskGraph, error) {
	g := &TaskGraph{
		Tasks:  make(map[int]*model.Task, len(tasks)),
		Order:  make([]int, 0, len(tasks)),
		Adj:    make(map[int][]Edge),
		RevAdj: make(map[int][]Edge),
	}

	for _, t := range tasks {
		if _, dup := g.Tasks[t.ID]; dup {
			return nil, &model.ValidationError{TaskID: t.ID, Msg: "duplicate task id"}
		}
		g.Tasks[t.ID] = t
		g.Order = append(g.Order, t.ID)
	}

	for _, t := range tasks {
		for _, l := range t.Links {
			if l.PredecessorID == t.ID {
				return nil, &model.ValidationError{TaskID: t.ID, Msg: "task links to itself"}
			}
			if _, ok := g.Tasks[l.PredecessorID]; !ok {
				return nil, &model.ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("predecessor %d does not exist", l.PredecessorID)}
			}
			e := Edge{From: l.PredecessorID, To: t.ID, Kind: l.KindOrDefault(), Lag: l.Lag.Normalized()}
			g.Adj[e.From] = append(g.Adj[e.From], e)
			g.RevAdj[e.To] = append(g.RevAdj[e.To], e)
		}
	}

	for _, id := range g.Order {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	g.Topo = order
	return g, nil
}

// TopologicalOrder walks predecessors depth-first with white/grey/black
// colouring, starting from tasks in list order, and emits each task after all
// of its predecessors. Independent tasks keep their list order.
// Reaching a grey task means the links loop; the returned CycleError names the
// visiting stack at that moment.
func (g *TaskGraph) TopologicalOrder() ([]int, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[int]int, len(g.Tasks))
	order := make([]int, 0, len(g.Tasks))
	var stack []int

	var visit func(id int) error
	visit = func(id int) error {
		color[id] = gray
		stack = append(stack, id)
		for _, e := range g.RevAdj[id] {
			switch color[e.From] {
			case gray:
				return newCycleError(stack, e.From)
			case white:
				if err := visit(e.From); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		order = append(order, id)
		return nil
	}

	for _, id := range g.Order {
		if color[id] == white {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func newCycleError(stack []int, closing int) *model.CycleError {
	full := append([]int(nil), stack...)
	start := 0
	for i, id := range full {
		if id == closing {
			start = i
			break
		}
	}
	cycle := append(append([]int(nil), full[start:]...), closing)
	return &model.CycleError{Stack: full, Cycle: cycle}
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
func (g *TaskGraph) DetectCycle() []int {
	if _, err := g.TopologicalOrder(); err != nil {
		if ce, ok := err.(*model.CycleError); ok {
			return ce.Cycle
		}
	}
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}

// Successors returns the ids of the tasks that depend on id, in link order.
func (g *TaskGraph) Successors(id int) []int {
	return endpoints(g.Adj[id], func(e Edge) int { return e.To })
}

// Predecessors returns the ids id depends on, in link order.
func (g *TaskGraph) Predecessors(id int) []int {
	return endpoints(g.RevAdj[id], func(e Edge) int { return e.From })
}

func endpoints(edges []Edge, pick func(Edge) int) []int {
	ids := make([]int, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, pick(e))
	}
	return ids
}

// Filter returns a new TaskGraph containing only tasks matching the predicate.
// Links to filtered-out tasks are dropped; the caller's tasks are not modified.
func (g *TaskGraph) Filter(pred func(*model.Task) bool) (*TaskGraph, error) {
	keep := make(map[int]bool)
	for _, id := range g.Order {
		if pred(g.Tasks[id]) {
			keep[id] = true
		}
	}

	var filtered []*model.Task
	for _, id := range g.Order {
		if !keep[id] {
			continue
		}
		cp := *g.Tasks[id]
		cp.Links = nil
		for _, l := range g.Tasks[id].Links {
			if keep[l.PredecessorID] {
				cp.Links = append(cp.Links, l)
			}
		}
		filtered = append(filtered, &cp)
	}
	return Build(filtered)
}
