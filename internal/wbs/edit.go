package wbs

import (
	"errors"
	"fmt"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/graph"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrNoMove   = errors.New("task cannot move that way")
	ErrSummary  = errors.New("summary tasks take their dates from their children")
)

// Every edit below treats a row and its descendants as one block, keeps the
// no-skip level rule intact and renumbers the list before returning.

// Insert adds task after the block of afterID at the same level. afterID 0 appends at top level.
func Insert(tasks []*model.Task, afterID int, task *model.Task) ([]*model.Task, error) {
	if afterID == 0 {
		task.Level = 0
		out := make([]*model.Task, 0, len(tasks)+1)
		out = append(out, tasks...)
		out = append(out, task)
		Renumber(out)
		return out, nil
	}
	i, err := index(tasks, afterID)
	if err != nil {
		return nil, err
	}
	task.Level = tasks[i].Level
	end := blockEnd(tasks, i)
	out := make([]*model.Task, 0, len(tasks)+1)
	out = append(out, tasks[:end]...)
	out = append(out, task)
	out = append(out, tasks[end:]...)
	Renumber(out)
	return out, nil
}

// Delete removes the task and all of its descendants. Links pointing at any
// removed task are dropped from the remaining rows.
func Delete(tasks []*model.Task, id int) ([]*model.Task, error) {
	i, err := index(tasks, id)
	if err != nil {
		return nil, err
	}
	end := blockEnd(tasks, i)
	removed := make(map[int]bool, end-i)
	for _, t := range tasks[i:end] {
		removed[t.ID] = true
	}
	out := make([]*model.Task, 0, len(tasks)-(end-i))
	out = append(out, tasks[:i]...)
	out = append(out, tasks[end:]...)
	for _, t := range out {
		kept := t.Links[:0]
		for _, l := range t.Links {
			if !removed[l.PredecessorID] {
				kept = append(kept, l)
			}
		}
		t.Links = kept
	}
	Renumber(out)
	return out, nil
}

// Indent nests the block one level deeper under the row above it.
func Indent(tasks []*model.Task, id int) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	if i == 0 || tasks[i-1].Level < tasks[i].Level {
		return fmt.Errorf("indent task %d: %w", id, ErrNoMove)
	}
	shift(tasks[i:blockEnd(tasks, i)], 1)
	Renumber(tasks)
	return nil
}

// Outdent lifts the block one level. Following siblings become its children.
func Outdent(tasks []*model.Task, id int) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	if tasks[i].Level == 0 {
		return fmt.Errorf("outdent task %d: %w", id, ErrNoMove)
	}
	shift(tasks[i:blockEnd(tasks, i)], -1)
	Renumber(tasks)
	return nil
}

// MoveUp swaps the block with the previous sibling block under the same parent.
func MoveUp(tasks []*model.Task, id int) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	prev := -1
	for j := i - 1; j >= 0; j-- {
		if tasks[j].Level < tasks[i].Level {
			break
		}
		if tasks[j].Level == tasks[i].Level {
			prev = j
			break
		}
	}
	if prev < 0 {
		return fmt.Errorf("move task %d up: %w", id, ErrNoMove)
	}
	swapBlocks(tasks, prev, i, blockEnd(tasks, i))
	Renumber(tasks)
	return nil
}

// MoveDown swaps the block with the next sibling block under the same parent.
func MoveDown(tasks []*model.Task, id int) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	next := blockEnd(tasks, i)
	if next >= len(tasks) || tasks[next].Level != tasks[i].Level {
		return fmt.Errorf("move task %d down: %w", id, ErrNoMove)
	}
	swapBlocks(tasks, i, next, blockEnd(tasks, next))
	Renumber(tasks)
	return nil
}

// Link chains the tasks with finish-to-start links in the order given: each
// task becomes the predecessor of the next. Existing links to the same
// predecessor are kept as they are. Nothing changes when any link would name
// a summary task or close a cycle.
func Link(tasks []*model.Task, ids ...int) error {
	if len(ids) < 2 {
		return fmt.Errorf("link needs at least two tasks, got %d", len(ids))
	}
	flags := SummaryFlags(levelsOf(tasks))
	rows := make([]int, len(ids))
	for n, id := range ids {
		i, err := index(tasks, id)
		if err != nil {
			return err
		}
		if flags[i] {
			return fmt.Errorf("link task %d: %w", id, ErrSummary)
		}
		rows[n] = i
	}

	saved := make(map[int][]model.Link, len(ids))
	for n := 1; n < len(rows); n++ {
		pred, succ := tasks[rows[n-1]], tasks[rows[n]]
		if pred.ID == succ.ID {
			restoreLinks(tasks, saved)
			return &model.ValidationError{TaskID: succ.ID, Msg: "task links to itself"}
		}
		if hasPredecessor(succ, pred.ID) {
			continue
		}
		if _, ok := saved[rows[n]]; !ok {
			saved[rows[n]] = succ.Links
		}
		links := make([]model.Link, 0, len(succ.Links)+1)
		links = append(links, succ.Links...)
		succ.Links = append(links, model.Link{PredecessorID: pred.ID, Kind: model.FS})
	}

	if _, err := graph.Build(tasks); err != nil {
		restoreLinks(tasks, saved)
		return fmt.Errorf("link tasks: %w", err)
	}
	return nil
}

// Unlink removes every predecessor of the task, including unparsed text.
func Unlink(tasks []*model.Task, id int) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	tasks[i].Links = nil
	tasks[i].LinkErr = nil
	return nil
}

// SetMilestone makes the task zero-length. Summaries are refused.
func SetMilestone(tasks []*model.Task, id int) error {
	i, err := index(tasks, id)
	if err != nil {
		return err
	}
	if SummaryFlags(levelsOf(tasks))[i] {
		return fmt.Errorf("milestone task %d: %w", id, ErrSummary)
	}
	tasks[i].Duration = model.Days(0)
	return nil
}

func hasPredecessor(t *model.Task, pred int) bool {
	for _, l := range t.Links {
		if l.PredecessorID == pred {
			return true
		}
	}
	return false
}

func restoreLinks(tasks []*model.Task, saved map[int][]model.Link) {
	for row, links := range saved {
		tasks[row].Links = links
	}
}

func levelsOf(tasks []*model.Task) []int {
	levels := make([]int, len(tasks))
	for i, t := range tasks {
		levels[i] = t.Level
	}
	return levels
}

func index(tasks []*model.Task, id int) (int, error) {
	for i, t := range tasks {
		if t.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("task %d: %w", id, ErrNotFound)
}

// blockEnd returns one past the last descendant of row i.
func blockEnd(tasks []*model.Task, i int) int {
	j := i + 1
	for j < len(tasks) && tasks[j].Level > tasks[i].Level {
		j++
	}
	return j
}

func shift(block []*model.Task, delta int) {
	for _, t := range block {
		t.Level += delta
	}
}

// swapBlocks exchanges the adjacent ranges [a, b) and [b, end).
func swapBlocks(tasks []*model.Task, a, b, end int) {
	tmp := make([]*model.Task, 0, end-a)
	tmp = append(tmp, tasks[b:end]...)
	tmp = append(tmp, tasks[a:b]...)
	copy(tasks[a:end], tmp)
}
