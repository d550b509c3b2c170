package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/planner"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/state"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/ui"
)

// Reporter renders a scheduled plan for the terminal.
type Reporter struct {
	Plan *planner.Plan
}

// New creates a new Reporter.
func New(plan *planner.Plan) *Reporter {
	return &Reporter{Plan: plan}
}

// PrintSchedule writes the task grid in list order, indented by outline level.
func (r *Reporter) PrintSchedule(w io.Writer) {
	fmt.Fprintf(w, "  %-8s %-36s %8s  %-16s %-16s %8s\n",
		ui.Bold("WBS"), ui.Bold("Task"), ui.Bold("Duration"), ui.Bold("Start"), ui.Bold("Finish"), ui.Bold("Float"))

	for _, id := range r.Plan.Order {
		task := r.Plan.Tasks[id]
		name := strings.Repeat("  ", task.Level) + task.Name
		if len(name) > 36 {
			name = name[:33] + "..."
		}
		if task.IsSummary {
			name = ui.Bold(name)
		}
		if task.IsMilestone {
			name += " " + ui.Cyan("◆")
		}

		fmt.Fprintf(w, "%s %-8s %-36s %8s  %-16s %-16s %8s\n",
			ui.CriticalMark(task.IsCritical),
			task.WBS, name, task.Duration,
			formatTime(task.EarlyStart), formatTime(task.EarlyFinish),
			ui.Float(task.TotalFloat))
	}
}

// PrintWaves lists leaf tasks grouped by early start.
func (r *Reporter) PrintWaves(w io.Writer) {
	for _, wave := range r.Plan.Waves {
		fmt.Fprintf(w, "  %s %d  %s  (%s)\n",
			ui.BoldWhite("WAVE"), wave.Index+1, formatTime(wave.Start), ui.WaveStatus(wave.IsCritical))
		for _, task := range wave.Tasks {
			r.printTask(w, task)
		}
		fmt.Fprintln(w)
	}
}

func (r *Reporter) printTask(w io.Writer, task planner.PlannedTask) {
	critical := " "
	if task.IsCritical {
		critical = ui.BoldYellow("⚡")
	}

	name := task.Name
	if len(name) > 40 {
		name = name[:37] + "..."
	}

	fmt.Fprintf(w, "    %s %-8s %-40s %s  %s\n",
		ui.CriticalMark(task.IsCritical), ui.BoldMagenta(task.WBS), name, critical,
		ui.Dim(fmt.Sprintf("[%s, float %gd]", task.Duration, task.TotalFloat)))
}

// JSON returns the machine-readable schedule.
func (r *Reporter) JSON() ([]byte, error) {
	type taskRow struct {
		TaskID      int     `json:"task_id"`
		WBS         string  `json:"wbs"`
		Name        string  `json:"name"`
		Duration    string  `json:"duration"`
		EarlyStart  string  `json:"early_start"`
		EarlyFinish string  `json:"early_finish"`
		LateStart   string  `json:"late_start"`
		LateFinish  string  `json:"late_finish"`
		TotalFloat  float64 `json:"total_float"`
		IsCritical  bool    `json:"is_critical"`
		IsSummary   bool    `json:"is_summary"`
		Wave        int     `json:"wave"`
	}

	type output struct {
		PlanID        string    `json:"plan_id"`
		Project       string    `json:"project"`
		ProjectStart  string    `json:"project_start"`
		ProjectFinish string    `json:"project_finish"`
		TotalDuration float64   `json:"total_duration_days"`
		TotalTasks    int       `json:"total_tasks"`
		TotalWaves    int       `json:"total_waves"`
		CriticalPath  []int     `json:"critical_path"`
		Warnings      []string  `json:"warnings"`
		Tasks         []taskRow `json:"tasks"`
	}

	o := output{
		PlanID:        r.Plan.ID,
		Project:       r.Plan.Project,
		ProjectStart:  r.Plan.ProjectStart.Format(time.RFC3339),
		ProjectFinish: r.Plan.ProjectFinish.Format(time.RFC3339),
		TotalDuration: r.Plan.TotalDuration,
		TotalTasks:    r.Plan.TotalTasks,
		TotalWaves:    r.Plan.TotalWaves,
		CriticalPath:  r.Plan.CriticalPath,
		Warnings:      []string{},
	}
	for _, wn := range r.Plan.Warnings {
		o.Warnings = append(o.Warnings, wn.String())
	}

	for _, id := range r.Plan.Order {
		task := r.Plan.Tasks[id]
		o.Tasks = append(o.Tasks, taskRow{
			TaskID:      task.TaskID,
			WBS:         task.WBS,
			Name:        task.Name,
			Duration:    task.Duration,
			EarlyStart:  task.EarlyStart.Format(time.RFC3339),
			EarlyFinish: task.EarlyFinish.Format(time.RFC3339),
			LateStart:   task.LateStart.Format(time.RFC3339),
			LateFinish:  task.LateFinish.Format(time.RFC3339),
			TotalFloat:  task.TotalFloat,
			IsCritical:  task.IsCritical,
			IsSummary:   task.IsSummary,
			Wave:        task.WaveIndex,
		})
	}

	return json.MarshalIndent(o, "", "  ")
}

// PrintSummaryReport writes the schedule header, critical path and any
// constraint warnings. The output is also returned as a string for reuse
// (e.g. as context for link inference).
func (r *Reporter) PrintSummaryReport(w io.Writer) string {
	var b strings.Builder
	mw := io.MultiWriter(w, &b)

	statusEmoji := "✅"
	if len(r.Plan.Warnings) > 0 {
		statusEmoji = "⚠️"
	}

	fmt.Fprintf(mw, "\n%s %s\n", statusEmoji, ui.BoldCyan("Schedule Summary"))
	fmt.Fprintf(mw, "%s\n", ui.Cyan("══════════════════════════"))
	fmt.Fprintf(mw, "Project:   %s\n", ui.Bold(r.Plan.Project))
	fmt.Fprintf(mw, "Plan:      %s\n", ui.Dim(r.Plan.ID))
	fmt.Fprintf(mw, "Start:     %s\n", formatTime(r.Plan.ProjectStart))
	fmt.Fprintf(mw, "Finish:    %s\n", ui.Bold(formatTime(r.Plan.ProjectFinish)))
	fmt.Fprintf(mw, "Duration:  %s working days\n", strconv.FormatFloat(r.Plan.TotalDuration, 'f', -1, 64))
	fmt.Fprintf(mw, "Tasks:     %d total, %d waves\n", r.Plan.TotalTasks, r.Plan.TotalWaves)

	if len(r.Plan.CriticalPath) > 0 {
		names := make([]string, len(r.Plan.CriticalPath))
		for i, id := range r.Plan.CriticalPath {
			names[i] = r.label(id)
		}
		fmt.Fprintf(mw, "Critical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(names, " → ")))
	}

	if len(r.Plan.Warnings) > 0 {
		fmt.Fprintf(mw, "\n%s\n", ui.BoldYellow("Constraint conflicts:"))
		for _, wn := range r.Plan.Warnings {
			fmt.Fprintf(mw, "  %s %s %s: %s %s\n",
				ui.Yellow("!"), ui.BoldMagenta(r.label(wn.TaskID)), wn.Kind,
				wn.Reason, ui.Dim(fmt.Sprintf("(anchor %s, required %s)", formatTime(wn.Anchor), formatTime(wn.Required))))
		}
	}
	fmt.Fprintf(mw, "%s\n", ui.Cyan("──────────────────────────"))

	return b.String()
}

// label names a task by WBS code, falling back to its id.
func (r *Reporter) label(id int) string {
	if t, ok := r.Plan.Tasks[id]; ok && t.WBS != "" {
		return t.WBS + " " + t.Name
	}
	return "#" + strconv.Itoa(id)
}

// PrintStatus writes the last recorded run per project file.
func PrintStatus(w io.Writer, st *state.RunState) {
	files := st.Files()
	fmt.Fprintf(w, "%s %s %s\n\n",
		ui.BoldCyan("ganttloom"), ui.Dim("last run"), ui.Dim(st.UpdatedAt.Format(time.RFC3339)))
	if len(files) == 0 {
		fmt.Fprintln(w, ui.Dim("  no projects scheduled yet"))
		return
	}

	for _, f := range files {
		pr := st.Get(f)
		detail := ""
		switch pr.Status {
		case state.StatusScheduled:
			finish := ""
			if pr.Finish != nil {
				finish = formatTime(*pr.Finish)
			}
			detail = fmt.Sprintf("finish %s, %d tasks", finish, pr.TotalTasks)
			if pr.Warnings > 0 {
				detail += ui.Yellow(fmt.Sprintf(", %d warnings", pr.Warnings))
			}
		case state.StatusFailed:
			detail = ui.Red(pr.Error)
		}
		fmt.Fprintf(w, "  %s %-30s %s\n", ui.StatusIcon(string(pr.Status)), f, detail)
	}

	if failed := st.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldRed(fmt.Sprintf("%d project(s) failed to schedule", len(failed))))
	}
}

// formatTime drops the clock on midnight timestamps.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if h, m, _ := t.Clock(); h == 0 && m == 0 {
		return t.Format("Mon 2006-01-02")
	}
	return t.Format("Mon 2006-01-02 15:04")
}
