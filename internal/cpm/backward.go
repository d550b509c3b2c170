package cpm

import (
	"fmt"
	"math"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/graph"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

const floatEpsilon = 1e-6

// backward computes late dates by relaxing finish bounds from successors until
// nothing changes, then derives float and criticality.
func (r *run) backward() error {
	finish := r.res.ProjectStart
	var leaves []int // reverse topological order
	for i := len(r.g.Topo) - 1; i >= 0; i-- {
		id := r.g.Topo[i]
		ts := r.res.Tasks[id]
		if ts.IsSummary {
			continue
		}
		leaves = append(leaves, id)
		if ts.EarlyFinish.After(finish) {
			finish = ts.EarlyFinish
		}
	}
	r.res.ProjectFinish = finish
	r.res.TotalDuration = r.cal.DiffWork(r.res.ProjectStart, finish, model.Day)

	for _, id := range leaves {
		r.setLate(id, finish)
	}

	// The graph is acyclic, so one reverse-topological sweep settles every
	// bound and the next one confirms it. Needing more than len+1 is a bug.
	for sweep := 0; ; sweep++ {
		if sweep > len(leaves) {
			return &model.EngineInvariantError{Msg: fmt.Sprintf("backward pass did not settle after %d sweeps", sweep)}
		}
		changed := false
		for _, id := range leaves {
			days := r.res.Tasks[id].Days
			lf := finish
			for _, e := range r.g.Adj[id] {
				if b := r.finishBound(e, days); b.Before(lf) {
					lf = b
				}
			}
			if r.setLate(id, lf) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, id := range leaves {
		ts := r.res.Tasks[id]
		ts.TotalFloat = r.cal.DiffWork(ts.EarlyStart, ts.LateStart, model.Day)
		ts.IsCritical = math.Abs(ts.TotalFloat) < floatEpsilon
		if ts.TotalFloat <= -floatEpsilon {
			r.warn(r.g.Tasks[id], ts.LateStart, fmt.Sprintf("negative float of %g days", ts.TotalFloat))
		}
	}
	return nil
}

// finishBound is the latest finish the link e allows its predecessor, a task lasting days.
func (r *run) finishBound(e graph.Edge, days float64) time.Time {
	succ := r.res.Tasks[e.To]
	lag := e.Lag.Neg()
	switch e.Kind {
	case model.SS:
		return r.cal.AddDays(r.cal.AddWork(succ.LateStart, lag), days)
	case model.FF:
		return r.cal.AddWork(succ.LateFinish, lag)
	case model.SF:
		return r.cal.AddDays(r.cal.AddWork(succ.LateFinish, lag), days)
	default:
		return r.cal.AddWork(succ.LateStart, lag)
	}
}

// setLate stores the late dates implied by lf and the task's constraint and
// reports whether they changed.
func (r *run) setLate(id int, lf time.Time) bool {
	ts := r.res.Tasks[id]
	c := r.g.Tasks[id].Constraint

	switch c.KindOrDefault() {
	case model.FNLT, model.MFO, model.ALAP:
		if c.HasAnchor() && c.Anchor.Before(lf) {
			lf = c.Anchor
		}
	}

	var ls time.Time
	if c.KindOrDefault() == model.MSO {
		ls = c.Anchor
		lf = r.cal.AddDays(ls, ts.Days)
	} else {
		ls = r.cal.AddDays(lf, -ts.Days)
	}

	changed := !lf.Equal(ts.LateFinish) || !ls.Equal(ts.LateStart)
	ts.LateFinish, ts.LateStart = lf, ls
	return changed
}
