package cpm

import (
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// Result holds the complete critical path analysis of one project.
type Result struct {
	Tasks         map[int]*TaskSchedule
	CriticalPath  []int // critical leaf tasks in topological order
	TopoOrder     []int
	Waves         []Wave // tasks grouped by early start
	ProjectStart  time.Time
	ProjectFinish time.Time
	TotalDuration float64 // working days from ProjectStart to ProjectFinish
	Warnings      []model.ConstraintConflictWarning
}

// TaskSchedule holds the scheduling info for a single task.
type TaskSchedule struct {
	TaskID int
	model.Schedule

	// Duration is what the passes used: the authored value for automatic
	// tasks, the aggregated span for summaries.
	Duration        model.Duration
	Days            float64 // Duration in working days
	PercentComplete int
	Wave            int // -1 for summaries
}

// Wave represents a group of tasks that share an early start.
type Wave struct {
	Index      int
	Start      time.Time
	TaskIDs    []int
	IsCritical bool // true if wave contains critical path tasks
}
