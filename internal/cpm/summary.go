package cpm

import (
	"math"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// rollupEarly aggregates each summary from its direct children, deepest level
// first so nested summaries are complete before their parents read them.
func (r *run) rollupEarly() {
	for _, row := range r.tree.SummariesDeepestFirst() {
		ts := r.res.Tasks[r.p.Tasks[row].ID]
		children := r.children(row)
		if len(children) == 0 {
			continue
		}

		var weighted, total float64
		for i, cs := range children {
			if i == 0 || cs.EarlyStart.Before(ts.EarlyStart) {
				ts.EarlyStart = cs.EarlyStart
			}
			if i == 0 || cs.EarlyFinish.After(ts.EarlyFinish) {
				ts.EarlyFinish = cs.EarlyFinish
			}
			weighted += float64(cs.PercentComplete) * cs.Days
			total += cs.Days
		}

		ts.Days = r.cal.DiffWork(ts.EarlyStart, ts.EarlyFinish, model.Day) + 1
		ts.Duration = model.Days(ts.Days)
		ts.PercentComplete = 0
		if total > 0 {
			ts.PercentComplete = int(math.Round(weighted / total))
		}
	}
}

// rollupLate gives summaries the late envelope of their children. Its float
// is the smallest child float and criticality follows from that float.
func (r *run) rollupLate() {
	for _, row := range r.tree.SummariesDeepestFirst() {
		ts := r.res.Tasks[r.p.Tasks[row].ID]
		children := r.children(row)
		if len(children) == 0 {
			continue
		}

		for i, cs := range children {
			if i == 0 || cs.LateStart.Before(ts.LateStart) {
				ts.LateStart = cs.LateStart
			}
			if i == 0 || cs.LateFinish.After(ts.LateFinish) {
				ts.LateFinish = cs.LateFinish
			}
			if i == 0 || cs.TotalFloat < ts.TotalFloat {
				ts.TotalFloat = cs.TotalFloat
			}
		}
		ts.IsCritical = math.Abs(ts.TotalFloat) < floatEpsilon
	}
}

func (r *run) children(row int) []*TaskSchedule {
	rows := r.tree.Children[row]
	out := make([]*TaskSchedule, len(rows))
	for i, c := range rows {
		out[i] = r.res.Tasks[r.p.Tasks[c].ID]
	}
	return out
}
