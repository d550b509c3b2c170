// Package planner turns a critical path result into a Plan document.
package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/cpm"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
)

// Generate creates a Plan from a project and its CPM result. The project
// tasks supply names and links; dates and flags come from res.
func Generate(p *model.Project, res *cpm.Result, config PlanConfig) (*Plan, error) {
	plan := &Plan{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now(),
		Project:       p.Name,
		ProjectStart:  res.ProjectStart,
		ProjectFinish: res.ProjectFinish,
		TotalDuration: res.TotalDuration,
		TotalTasks:    len(p.Tasks),
		TotalWaves:    len(res.Waves),
		CriticalPath:  res.CriticalPath,
		Tasks:         make(map[int]*PlannedTask, len(p.Tasks)),
		Deps: TaskDeps{
			Predecessors: make(map[int][]int, len(p.Tasks)),
			Successors:   make(map[int][]int, len(p.Tasks)),
		},
		Warnings: res.Warnings,
	}

	for _, t := range p.Tasks {
		ts, ok := res.Tasks[t.ID]
		if !ok {
			return nil, fmt.Errorf("task %d missing from schedule result", t.ID)
		}
		plan.Order = append(plan.Order, t.ID)
		plan.Tasks[t.ID] = &PlannedTask{
			TaskID:          t.ID,
			WBS:             ts.WBS,
			Name:            t.Name,
			Level:           t.Level,
			Mode:            t.ModeOrDefault().String(),
			Duration:        parse.FormatDuration(ts.Duration),
			Days:            ts.Days,
			PercentComplete: ts.PercentComplete,
			EarlyStart:      ts.EarlyStart,
			EarlyFinish:     ts.EarlyFinish,
			LateStart:       ts.LateStart,
			LateFinish:      ts.LateFinish,
			TotalFloat:      ts.TotalFloat,
			IsCritical:      ts.IsCritical,
			IsSummary:       ts.IsSummary,
			IsMilestone:     !ts.IsSummary && ts.Days == 0,
			Predecessors:    parse.FormatLinks(t.Links),
			WaveIndex:       ts.Wave,
		}

		plan.Deps.Predecessors[t.ID] = []int{}
		if _, ok := plan.Deps.Successors[t.ID]; !ok {
			plan.Deps.Successors[t.ID] = []int{}
		}
	}
	for _, t := range p.Tasks {
		for _, l := range t.Links {
			plan.Deps.Predecessors[t.ID] = append(plan.Deps.Predecessors[t.ID], l.PredecessorID)
			plan.Deps.Successors[l.PredecessorID] = append(plan.Deps.Successors[l.PredecessorID], t.ID)
		}
	}

	for _, wave := range res.Waves {
		pw := PlanWave{
			Index:      wave.Index,
			Start:      wave.Start,
			IsCritical: wave.IsCritical,
		}
		if wave.Index > 0 {
			pw.DependsOn = []int{wave.Index - 1}
		}

		for _, id := range wave.TaskIDs {
			pt := plan.Tasks[id]
			if !config.SkipBriefs {
				brief, err := RenderBrief(briefData(plan, pt, len(wave.TaskIDs)), config.BriefTemplatePath)
				if err != nil {
					return nil, fmt.Errorf("render brief for task %d: %w", id, err)
				}
				pt.Brief = brief
			}
			pw.Tasks = append(pw.Tasks, *pt)
		}
		plan.Waves = append(plan.Waves, pw)
	}

	return plan, nil
}

func briefData(plan *Plan, pt *PlannedTask, waveSize int) BriefData {
	return BriefData{
		Project:      plan.Project,
		TaskID:       pt.TaskID,
		WBS:          pt.WBS,
		Name:         pt.Name,
		Duration:     pt.Duration,
		Start:        pt.EarlyStart.Format(dateLayout),
		Finish:       pt.EarlyFinish.Format(dateLayout),
		LateFinish:   pt.LateFinish.Format(dateLayout),
		TotalFloat:   pt.TotalFloat,
		Predecessors: plan.Deps.Predecessors[pt.TaskID],
		Successors:   plan.Deps.Successors[pt.TaskID],
		WaveIndex:    pt.WaveIndex,
		WaveSize:     waveSize,
		IsCritical:   pt.IsCritical,
		IsMilestone:  pt.IsMilestone,
	}
}
