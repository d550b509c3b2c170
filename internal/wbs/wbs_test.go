package wbs

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

func rows(t *testing.T, levels ...int) []*model.Task {
	t.Helper()
	tasks := make([]*model.Task, len(levels))
	for i, l := range levels {
		tasks[i] = &model.Task{ID: i + 1, Level: l}
	}
	Renumber(tasks)
	return tasks
}

func ids(tasks []*model.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestAssign(t *testing.T) {
	got := Assign([]int{0, 1, 1, 2, 2, 1, 0, 1})
	want := []string{"1", "1.1", "1.2", "1.2.1", "1.2.2", "1.3", "2", "2.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAssign_ResetsDeeperCounters(t *testing.T) {
	got := Assign([]int{0, 1, 2, 0, 1, 2})
	want := []string{"1", "1.1", "1.1.1", "2", "2.1", "2.1.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSummaryFlags(t *testing.T) {
	got := SummaryFlags([]int{0, 1, 1, 2, 0})
	want := []bool{true, false, true, false, false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildTree(t *testing.T) {
	tree := BuildTree([]int{0, 1, 1, 2, 0})
	if !reflect.DeepEqual(tree.Parent, []int{-1, 0, 0, 2, -1}) {
		t.Errorf("unexpected parents %v", tree.Parent)
	}
	if !reflect.DeepEqual(tree.Children[0], []int{1, 2}) {
		t.Errorf("unexpected children of 0: %v", tree.Children[0])
	}
	if !reflect.DeepEqual(tree.SummariesDeepestFirst(), []int{2, 0}) {
		t.Errorf("unexpected summary order %v", tree.SummariesDeepestFirst())
	}
	if !reflect.DeepEqual(tree.Leaves(0), []int{1, 3}) {
		t.Errorf("unexpected leaves %v", tree.Leaves(0))
	}
}

func TestRenumber(t *testing.T) {
	tasks := rows(t, 0, 1, 1)
	if tasks[0].WBS != "1" || tasks[2].WBS != "1.2" {
		t.Errorf("unexpected codes %q %q", tasks[0].WBS, tasks[2].WBS)
	}
	if !tasks[0].IsSummary || tasks[1].IsSummary {
		t.Error("unexpected summary flags")
	}
}

func TestIndentAndOutdent(t *testing.T) {
	tasks := rows(t, 0, 0, 1)

	if err := Indent(tasks, 2); err != nil {
		t.Fatalf("indent: %v", err)
	}
	if !reflect.DeepEqual(levelsOf(tasks), []int{0, 1, 2}) {
		t.Errorf("indent should carry children, got %v", levelsOf(tasks))
	}
	if tasks[2].WBS != "1.1.1" {
		t.Errorf("expected renumbered 1.1.1, got %s", tasks[2].WBS)
	}

	if err := Indent(tasks, 3); !errors.Is(err, ErrNoMove) {
		t.Errorf("indenting under a parent should fail, got %v", err)
	}
	if err := Indent(tasks, 1); !errors.Is(err, ErrNoMove) {
		t.Errorf("first row cannot indent, got %v", err)
	}

	if err := Outdent(tasks, 2); err != nil {
		t.Fatalf("outdent: %v", err)
	}
	if !reflect.DeepEqual(levelsOf(tasks), []int{0, 0, 1}) {
		t.Errorf("unexpected levels %v", levelsOf(tasks))
	}
	if err := Outdent(tasks, 1); !errors.Is(err, ErrNoMove) {
		t.Errorf("top-level outdent should fail, got %v", err)
	}
}

func TestMoveUpDown(t *testing.T) {
	// 1
	//   2
	//   3
	//     4
	// 5
	tasks := rows(t, 0, 1, 1, 2, 0)

	if err := MoveUp(tasks, 3); err != nil {
		t.Fatalf("move up: %v", err)
	}
	if !reflect.DeepEqual(ids(tasks), []int{1, 3, 4, 2, 5}) {
		t.Errorf("unexpected order %v", ids(tasks))
	}
	if err := MoveUp(tasks, 3); !errors.Is(err, ErrNoMove) {
		t.Errorf("first child cannot move above its parent, got %v", err)
	}

	if err := MoveDown(tasks, 1); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if !reflect.DeepEqual(ids(tasks), []int{5, 1, 3, 4, 2}) {
		t.Errorf("unexpected order %v", ids(tasks))
	}
	if tasks[0].WBS != "1" || tasks[1].WBS != "2" || tasks[3].WBS != "2.1.1" {
		t.Errorf("unexpected codes after move: %s %s %s", tasks[0].WBS, tasks[1].WBS, tasks[3].WBS)
	}
	if err := MoveDown(tasks, 2); !errors.Is(err, ErrNoMove) {
		t.Errorf("last sibling cannot move down, got %v", err)
	}
}

func TestDeleteRemovesBlockAndLinks(t *testing.T) {
	tasks := rows(t, 0, 1, 1, 0)
	tasks[3].Links = []model.Link{{PredecessorID: 2}, {PredecessorID: 1}}

	out, err := Delete(tasks, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !reflect.DeepEqual(ids(out), []int{4}) {
		t.Errorf("unexpected rows %v", ids(out))
	}
	if len(out[0].Links) != 0 {
		t.Errorf("links to deleted rows should be dropped, got %v", out[0].Links)
	}
	if out[0].WBS != "1" {
		t.Errorf("expected renumbered 1, got %s", out[0].WBS)
	}
}

func TestInsertAfterBlock(t *testing.T) {
	tasks := rows(t, 0, 1, 0)
	out, err := Insert(tasks, 1, &model.Task{ID: 9})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !reflect.DeepEqual(ids(out), []int{1, 2, 9, 3}) {
		t.Errorf("unexpected order %v", ids(out))
	}
	if out[2].Level != 0 || out[2].WBS != "2" {
		t.Errorf("inserted row level=%d wbs=%s", out[2].Level, out[2].WBS)
	}

	if _, err := Insert(out, 42, &model.Task{ID: 10}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertAtEndLeavesCallerSliceAlone(t *testing.T) {
	base := rows(t, 0, 0)
	tasks := make([]*model.Task, 2, 4)
	copy(tasks, base)
	spare := tasks[:3]
	spare[2] = &model.Task{ID: 7}

	out, err := Insert(tasks, 0, &model.Task{ID: 9, Level: 2})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !reflect.DeepEqual(ids(out), []int{1, 2, 9}) {
		t.Errorf("unexpected order %v", ids(out))
	}
	if out[2].Level != 0 || out[2].WBS != "3" {
		t.Errorf("appended row level=%d wbs=%s", out[2].Level, out[2].WBS)
	}
	if spare[2].ID != 7 {
		t.Errorf("caller's backing array was overwritten with task %d", spare[2].ID)
	}
}

func TestLinkChainsFinishToStart(t *testing.T) {
	tasks := rows(t, 0, 0, 0)
	tasks[1].Links = []model.Link{{PredecessorID: 1, Kind: model.SS}}

	if err := Link(tasks, 1, 2, 3); err != nil {
		t.Fatalf("link: %v", err)
	}
	if len(tasks[1].Links) != 1 || tasks[1].Links[0].Kind != model.SS {
		t.Errorf("existing link should be kept as is, got %v", tasks[1].Links)
	}
	want := []model.Link{{PredecessorID: 2, Kind: model.FS}}
	if !reflect.DeepEqual(tasks[2].Links, want) {
		t.Errorf("expected %v, got %v", want, tasks[2].Links)
	}
	if len(tasks[0].Links) != 0 {
		t.Errorf("first task should stay unlinked, got %v", tasks[0].Links)
	}
}

func TestLinkRejectsCycleAndRestores(t *testing.T) {
	tasks := rows(t, 0, 0, 0)
	tasks[1].Links = []model.Link{{PredecessorID: 1}}
	tasks[2].Links = []model.Link{{PredecessorID: 2}}

	err := Link(tasks, 3, 1)
	if !errors.Is(err, model.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	var ce *model.CycleError
	if !errors.As(err, &ce) || !ce.Contains(1) || !ce.Contains(3) {
		t.Errorf("cycle should name tasks 1 and 3, got %v", err)
	}
	if len(tasks[0].Links) != 0 {
		t.Errorf("rejected link should be rolled back, got %v", tasks[0].Links)
	}
}

func TestLinkRejectsBadInput(t *testing.T) {
	tasks := rows(t, 0, 1, 0)

	if err := Link(tasks, 1, 3); !errors.Is(err, ErrSummary) {
		t.Errorf("expected ErrSummary, got %v", err)
	}
	if err := Link(tasks, 2, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := Link(tasks, 2); err == nil {
		t.Error("a single task should not link")
	}
	var ve *model.ValidationError
	if err := Link(tasks, 2, 3, 3); !errors.As(err, &ve) || ve.TaskID != 3 {
		t.Errorf("expected self link validation error, got %v", err)
	}
	if len(tasks[2].Links) != 0 {
		t.Errorf("failed link should leave task 3 alone, got %v", tasks[2].Links)
	}
}

func TestUnlinkClearsPredecessors(t *testing.T) {
	tasks := rows(t, 0, 0)
	tasks[1].Links = []model.Link{{PredecessorID: 1}}
	tasks[1].LinkErr = &model.ParseError{Msg: "bad token"}

	if err := Unlink(tasks, 2); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if tasks[1].Links != nil || tasks[1].LinkErr != nil {
		t.Errorf("expected no links, got %v %v", tasks[1].Links, tasks[1].LinkErr)
	}
	if err := Unlink(tasks, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetMilestone(t *testing.T) {
	tasks := rows(t, 0, 1)
	tasks[1].Duration = model.Days(4)

	if err := SetMilestone(tasks, 2); err != nil {
		t.Fatalf("milestone: %v", err)
	}
	if !tasks[1].IsMilestone() {
		t.Errorf("expected zero duration, got %v", tasks[1].Duration)
	}
	if err := SetMilestone(tasks, 1); !errors.Is(err, ErrSummary) {
		t.Errorf("expected ErrSummary, got %v", err)
	}
}
