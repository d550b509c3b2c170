package cpm

import (
	"fmt"
	"sort"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/calendar"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/graph"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/wbs"
)

// run carries the state of one scheduling pass. Nothing survives between calls.
type run struct {
	p    *model.Project
	cal  *calendar.Calendar
	g    *graph.TaskGraph
	tree *wbs.Tree
	res  *Result
}

// Analyze schedules the project and writes the derived fields onto its tasks.
// On error no task is modified.
func Analyze(p *model.Project) (*Result, error) {
	res, err := Compute(p)
	if err != nil {
		return nil, err
	}
	Apply(p, res)
	return res, nil
}

// Compute runs the full critical path analysis without modifying p:
// validation, graph build, forward pass, summary rollup, backward pass.
func Compute(p *model.Project) (*Result, error) {
	if p == nil {
		return nil, &model.ValidationError{Msg: "nil project"}
	}
	if err := p.ValidateStructure(); err != nil {
		return nil, err
	}
	for _, t := range p.Tasks {
		if t.LinkErr != nil {
			return nil, t.LinkErr
		}
	}

	cal, err := calendar.New(p.Calendar)
	if err != nil {
		return nil, err
	}

	levels := p.Levels()
	tree := wbs.BuildTree(levels)
	if err := checkSummaryLinks(p.Tasks, tree); err != nil {
		return nil, err
	}

	g, err := graph.Build(p.Tasks)
	if err != nil {
		return nil, err
	}

	r := &run{p: p, cal: cal, g: g, tree: tree, res: &Result{
		Tasks:     make(map[int]*TaskSchedule, len(p.Tasks)),
		TopoOrder: g.Topo,
	}}
	codes := wbs.Assign(levels)
	for i, t := range p.Tasks {
		ts := &TaskSchedule{
			TaskID:          t.ID,
			Duration:        t.Duration.Normalized(),
			Days:            cal.ToDays(t.Duration),
			PercentComplete: t.PercentComplete,
			Wave:            -1,
		}
		ts.WBS = codes[i]
		ts.IsSummary = tree.IsSummary(i)
		r.res.Tasks[t.ID] = ts
	}

	r.forward()
	r.rollupEarly()
	if err := r.backward(); err != nil {
		return nil, err
	}
	r.rollupLate()

	for _, id := range g.Topo {
		if ts := r.res.Tasks[id]; ts.IsCritical && !ts.IsSummary {
			r.res.CriticalPath = append(r.res.CriticalPath, id)
		}
	}
	r.res.Waves = computeWaves(r.res)
	return r.res, nil
}

// Apply copies a result's derived fields onto the project's tasks. Summary
// tasks also take the aggregated duration and percent complete.
func Apply(p *model.Project, res *Result) {
	for _, t := range p.Tasks {
		ts, ok := res.Tasks[t.ID]
		if !ok {
			continue
		}
		t.Schedule = ts.Schedule
		if ts.IsSummary {
			t.Duration = ts.Duration
			t.PercentComplete = ts.PercentComplete
		}
	}
}

// checkSummaryLinks rejects links that start or end at a summary task; a
// summary's dates come from its children only.
func checkSummaryLinks(tasks []*model.Task, tree *wbs.Tree) error {
	summary := make(map[int]bool)
	for i, t := range tasks {
		if tree.IsSummary(i) {
			summary[t.ID] = true
		}
	}
	for _, t := range tasks {
		for _, l := range t.Links {
			if summary[t.ID] {
				return &model.ValidationError{TaskID: t.ID, Msg: "summary task cannot have predecessors"}
			}
			if summary[l.PredecessorID] {
				return &model.ValidationError{TaskID: t.ID, Msg: fmt.Sprintf("predecessor %d is a summary task", l.PredecessorID)}
			}
		}
	}
	return nil
}

// computeWaves groups leaf tasks by their early start.
func computeWaves(result *Result) []Wave {
	groups := make(map[int64][]int)
	var starts []int64
	for _, id := range result.TopoOrder {
		ts := result.Tasks[id]
		if ts.IsSummary {
			continue
		}
		key := ts.EarlyStart.UnixNano()
		if _, ok := groups[key]; !ok {
			starts = append(starts, key)
		}
		groups[key] = append(groups[key], id)
	}
	sort.Slice(starts, func(a, b int) bool { return starts[a] < starts[b] })

	waves := make([]Wave, len(starts))
	for i, key := range starts {
		taskIDs := groups[key]

		hasCritical := false
		for _, id := range taskIDs {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical tasks first within a wave.
		sort.SliceStable(taskIDs, func(a, b int) bool {
			return result.Tasks[taskIDs[a]].IsCritical && !result.Tasks[taskIDs[b]].IsCritical
		})

		waves[i] = Wave{
			Index:      i,
			Start:      result.Tasks[taskIDs[0]].EarlyStart,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}
	return waves
}
