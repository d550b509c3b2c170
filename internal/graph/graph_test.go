package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

func task(id int, preds ...int) *model.Task {
	t := &model.Task{ID: id, Name: "task", Duration: model.Days(1)}
	for _, p := range preds {
		t.Links = append(t.Links, model.Link{PredecessorID: p, Kind: model.FS})
	}
	return t
}

func TestBuild_SimpleDAG(t *testing.T) {
	// 1 -> 2 -> 4
	// 1 -> 3 -> 4
	tasks := []*model.Task{task(1), task(2, 1), task(3, 1), task(4, 2, 3)}

	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.TaskCount() != 4 {
		t.Errorf("expected 4 tasks, got %d", g.TaskCount())
	}
	if !reflect.DeepEqual(g.Roots, []int{1}) {
		t.Errorf("expected roots=[1], got %v", g.Roots)
	}
	if !reflect.DeepEqual(g.Leaves, []int{4}) {
		t.Errorf("expected leaves=[4], got %v", g.Leaves)
	}
	if adj := g.Adj[1]; len(adj) != 2 {
		t.Errorf("expected 1 to drive 2 tasks, got %v", adj)
	}
	if rev := g.Predecessors(4); !reflect.DeepEqual(rev, []int{2, 3}) {
		t.Errorf("expected 4 to depend on [2 3], got %v", rev)
	}
	if !reflect.DeepEqual(g.Topo, []int{1, 2, 3, 4}) {
		t.Errorf("unexpected topo order %v", g.Topo)
	}
}

func TestBuild_EdgeCarriesLinkKindAndLag(t *testing.T) {
	succ := &model.Task{ID: 2, Duration: model.Days(1), Links: []model.Link{
		{PredecessorID: 1, Kind: model.SS, Lag: model.Duration{Value: -4, Unit: model.Hour}},
	}}
	g, err := Build([]*model.Task{task(1), succ})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := g.RevAdj[2][0]
	if e.From != 1 || e.To != 2 || e.Kind != model.SS || e.Lag.Value != -4 || e.Lag.Unit != model.Hour {
		t.Errorf("unexpected edge %+v", e)
	}
}

func TestBuild_DefaultsKindAndLagUnit(t *testing.T) {
	succ := &model.Task{ID: 2, Links: []model.Link{{PredecessorID: 1, Lag: model.Duration{Value: 2}}}}
	g, err := Build([]*model.Task{task(1), succ})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := g.Adj[1][0]
	if e.Kind != model.FS || e.Lag.Unit != model.Day {
		t.Errorf("expected FS with day lag, got %+v", e)
	}
}

func TestBuild_SingleTask(t *testing.T) {
	g, err := Build([]*model.Task{task(7)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.TaskCount() != 1 {
		t.Errorf("expected 1 task, got %d", g.TaskCount())
	}
	if len(g.Roots) != 1 || len(g.Leaves) != 1 {
		t.Errorf("expected single root and leaf, got roots=%v leaves=%v", g.Roots, g.Leaves)
	}
}

func TestBuild_CycleDetection(t *testing.T) {
	tasks := []*model.Task{task(1, 3), task(2, 1), task(3, 2)}

	_, err := Build(tasks)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	if !errors.Is(err, model.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	var ce *model.CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	for _, id := range []int{1, 2, 3} {
		if !ce.Contains(id) {
			t.Errorf("cycle %v should contain %d", ce.Cycle, id)
		}
	}
	if ce.Cycle[0] != ce.Cycle[len(ce.Cycle)-1] {
		t.Errorf("cycle path should close on itself: %v", ce.Cycle)
	}
}

func TestBuild_SelfLink(t *testing.T) {
	_, err := Build([]*model.Task{task(1, 1)})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestBuild_UnknownPredecessor(t *testing.T) {
	_, err := Build([]*model.Task{task(1), task(2, 9)})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.TaskID != 2 {
		t.Errorf("expected error on task 2, got %d", ve.TaskID)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	_, err := Build([]*model.Task{task(1), task(1)})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTopologicalOrder_PreservesListOrderForIndependentTasks(t *testing.T) {
	tasks := []*model.Task{task(5), task(3), task(9), task(1, 9)}
	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(g.Topo, []int{5, 3, 9, 1}) {
		t.Errorf("unexpected order %v", g.Topo)
	}
}

func TestTopologicalOrder_PredecessorListedLater(t *testing.T) {
	tasks := []*model.Task{task(1, 2), task(2)}
	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(g.Topo, []int{2, 1}) {
		t.Errorf("expected [2 1], got %v", g.Topo)
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g, err := Build([]*model.Task{task(1), task(2, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := g.DetectCycle(); c != nil {
		t.Errorf("expected no cycle, got %v", c)
	}
}

func TestDetectCycle_AfterMutation(t *testing.T) {
	g, err := Build([]*model.Task{task(1), task(2, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate a proposed link 2 -> 1.
	e := Edge{From: 2, To: 1, Kind: model.FS}
	g.Adj[2] = append(g.Adj[2], e)
	g.RevAdj[1] = append(g.RevAdj[1], e)

	if c := g.DetectCycle(); c == nil {
		t.Fatal("expected cycle, got nil")
	}
}

func TestFilter(t *testing.T) {
	tasks := []*model.Task{task(1), task(2, 1), task(3, 2)}
	tasks[1].Name = "drop"
	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fg, err := g.Filter(func(t *model.Task) bool { return t.Name != "drop" })
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if fg.TaskCount() != 2 {
		t.Errorf("expected 2 tasks, got %d", fg.TaskCount())
	}
	if len(fg.RevAdj[3]) != 0 {
		t.Errorf("expected link to dropped task removed, got %v", fg.RevAdj[3])
	}
	if len(tasks[2].Links) != 1 {
		t.Error("filter must not modify the original tasks")
	}
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.TaskCount() != 0 || len(g.Topo) != 0 {
		t.Errorf("expected empty graph, got %d tasks", g.TaskCount())
	}
}

func TestBuild_LinearChain(t *testing.T) {
	tasks := []*model.Task{task(4, 3), task(3, 2), task(2, 1), task(1)}
	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(g.Topo, []int{1, 2, 3, 4}) {
		t.Errorf("expected [1 2 3 4], got %v", g.Topo)
	}
	if !reflect.DeepEqual(g.Roots, []int{1}) || !reflect.DeepEqual(g.Leaves, []int{4}) {
		t.Errorf("roots=%v leaves=%v", g.Roots, g.Leaves)
	}
}
