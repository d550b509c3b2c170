package cpm

import (
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/graph"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// forward computes early dates for every leaf task in topological order.
func (r *run) forward() {
	r.res.ProjectStart = r.cal.NextWorking(r.p.Start)

	for _, id := range r.g.Topo {
		ts := r.res.Tasks[id]
		if ts.IsSummary {
			continue
		}
		t := r.g.Tasks[id]

		// Pinned manual dates are taken as authored; successors still see them.
		if s, f, ok := model.ManualDates(t.ModeOrDefault()); ok {
			ts.EarlyStart, ts.EarlyFinish = s, f
			ts.Days = r.cal.DiffWork(s, f, model.Day)
			continue
		}

		required := r.res.ProjectStart
		for _, e := range r.g.RevAdj[id] {
			if c := r.startCandidate(e, ts.Days); c.After(required) {
				required = c
			}
		}
		r.place(t, ts, r.cal.NextWorking(required))
	}
}

// startCandidate is the earliest start the link e allows for a task lasting days.
func (r *run) startCandidate(e graph.Edge, days float64) time.Time {
	pred := r.res.Tasks[e.From]
	switch e.Kind {
	case model.SS:
		return r.cal.AddWork(pred.EarlyStart, e.Lag)
	case model.FF:
		return r.cal.AddDays(r.cal.AddWork(pred.EarlyFinish, e.Lag), -days)
	case model.SF:
		return r.cal.AddDays(r.cal.AddWork(pred.EarlyStart, e.Lag), -days)
	default:
		return r.cal.AddWork(pred.EarlyFinish, e.Lag)
	}
}

// place applies the task's constraint to the start its links require and sets
// the early dates. MSO and MFO anchors win over links, with a warning.
func (r *run) place(t *model.Task, ts *TaskSchedule, required time.Time) {
	c := t.Constraint
	switch c.KindOrDefault() {
	case model.MSO:
		if c.Anchor.Before(required) {
			r.warn(t, required, "must start on date is earlier than its links allow")
		}
		ts.EarlyStart = c.Anchor
		ts.EarlyFinish = r.cal.AddDays(c.Anchor, ts.Days)
		return
	case model.MFO:
		need := r.cal.AddDays(required, ts.Days)
		if c.Anchor.Before(need) {
			r.warn(t, need, "must finish on date is earlier than its links allow")
		}
		ts.EarlyFinish = c.Anchor
		ts.EarlyStart = r.cal.AddDays(c.Anchor, -ts.Days)
		return
	}

	es := required
	if c.KindOrDefault() == model.SNET && c.Anchor.After(es) {
		es = r.cal.NextWorking(c.Anchor)
	}
	ef := r.cal.AddDays(es, ts.Days)
	if c.KindOrDefault() == model.FNLT && ef.After(c.Anchor) {
		r.warn(t, ef, "finish no later than date cannot be met")
		ef = c.Anchor
		if ef.Before(es) {
			ef = es
		}
	}
	ts.EarlyStart, ts.EarlyFinish = es, ef
}

func (r *run) warn(t *model.Task, required time.Time, reason string) {
	r.res.Warnings = append(r.res.Warnings, model.ConstraintConflictWarning{
		TaskID:   t.ID,
		Kind:     t.Constraint.KindOrDefault(),
		Anchor:   t.Constraint.Anchor,
		Required: required,
		Reason:   reason,
	})
}
