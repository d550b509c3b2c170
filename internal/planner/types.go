package planner

import (
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// TaskDeps holds per-task predecessor and successor lists.
type TaskDeps struct {
	Predecessors map[int][]int `json:"predecessors"`
	Successors   map[int][]int `json:"successors"`
}

// Plan is a scheduled project in the form the viewer, exports and state
// file consume.
type Plan struct {
	ID            string                            `json:"id"`
	CreatedAt     time.Time                         `json:"created_at"`
	Project       string                            `json:"project"`
	ProjectStart  time.Time                         `json:"project_start"`
	ProjectFinish time.Time                         `json:"project_finish"`
	TotalDuration float64                           `json:"total_duration_days"`
	TotalTasks    int                               `json:"total_tasks"`
	TotalWaves    int                               `json:"total_waves"`
	CriticalPath  []int                             `json:"critical_path"`
	Waves         []PlanWave                        `json:"waves"`
	Tasks         map[int]*PlannedTask              `json:"tasks"`
	Order         []int                             `json:"order"` // task list order
	Deps          TaskDeps                          `json:"deps"`
	Warnings      []model.ConstraintConflictWarning `json:"warnings,omitempty"`
}

// PlanWave is a group of leaf tasks sharing an early start.
type PlanWave struct {
	Index      int           `json:"index"`
	Start      time.Time     `json:"start"`
	IsCritical bool          `json:"is_critical"`
	Tasks      []PlannedTask `json:"tasks"`
	DependsOn  []int         `json:"depends_on"`
}

// PlannedTask is one scheduled row.
type PlannedTask struct {
	TaskID          int       `json:"task_id"`
	WBS             string    `json:"wbs"`
	Name            string    `json:"name"`
	Level           int       `json:"level"`
	Mode            string    `json:"mode"`
	Duration        string    `json:"duration"`
	Days            float64   `json:"days"`
	PercentComplete int       `json:"percent_complete"`
	EarlyStart      time.Time `json:"early_start"`
	EarlyFinish     time.Time `json:"early_finish"`
	LateStart       time.Time `json:"late_start"`
	LateFinish      time.Time `json:"late_finish"`
	TotalFloat      float64   `json:"total_float"`
	IsCritical      bool      `json:"is_critical"`
	IsSummary       bool      `json:"is_summary"`
	IsMilestone     bool      `json:"is_milestone"`
	Predecessors    string    `json:"predecessors,omitempty"`
	WaveIndex       int       `json:"wave_index"`
	Brief           string    `json:"brief,omitempty"`
}

// PlanConfig controls plan generation.
type PlanConfig struct {
	BriefTemplatePath string `json:"brief_template_path"`
	SkipBriefs        bool   `json:"skip_briefs"`
}
