package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/cpm"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/projectfile"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/ui"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/wbs"
)

func wbsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wbs",
		Short: "Edit the task hierarchy of a project file",
		Long: `Hierarchy edits move a task together with all of its descendants and
keep the outline valid. The file is rescheduled and rewritten after each edit.`,
	}

	moves := []struct {
		use, short string
		fn         func([]*model.Task, int) error
	}{
		{"indent", "Nest a task under the row above it", wbs.Indent},
		{"outdent", "Lift a task one level", wbs.Outdent},
		{"up", "Swap a task with its previous sibling", wbs.MoveUp},
		{"down", "Swap a task with its next sibling", wbs.MoveDown},
	}
	for _, m := range moves {
		cmd.AddCommand(&cobra.Command{
			Use:   m.use + " <project-file> <task-id>",
			Short: m.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editProject(args[0], args[1], func(p *model.Project, id int) error {
					return m.fn(p.Tasks, id)
				})
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <project-file> <task-id>",
		Short: "Delete a task and its descendants",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProject(args[0], args[1], func(p *model.Project, id int) error {
				tasks, err := wbs.Delete(p.Tasks, id)
				if err != nil {
					return err
				}
				p.Tasks = tasks
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "link <project-file> <task-id> <task-id>...",
		Short: "Chain tasks with finish-to-start links in the order given",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args)-1)
			for _, a := range args[1:] {
				id, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("invalid task id %q", a)
				}
				ids = append(ids, id)
			}
			return editProject(args[0], args[1], func(p *model.Project, _ int) error {
				return wbs.Link(p.Tasks, ids...)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unlink <project-file> <task-id>",
		Short: "Remove every predecessor of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProject(args[0], args[1], func(p *model.Project, id int) error {
				return wbs.Unlink(p.Tasks, id)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "milestone <project-file> <task-id>",
		Short: "Turn a task into a zero-length milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProject(args[0], args[1], func(p *model.Project, id int) error {
				return wbs.SetMilestone(p.Tasks, id)
			})
		},
	})

	cmd.AddCommand(wbsInsertCmd())
	return cmd
}

func wbsInsertCmd() *cobra.Command {
	var (
		flagAfter        int
		flagName         string
		flagDuration     string
		flagPredecessors string
	)

	cmd := &cobra.Command{
		Use:   "insert <project-file>",
		Short: "Insert a task after another task's block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(flagName) == "" {
				return fmt.Errorf("--name is required")
			}
			d, err := parse.Duration(flagDuration)
			if err != nil {
				return err
			}
			links, err := parse.Links(flagPredecessors)
			if err != nil {
				return err
			}

			return editProject(args[0], strconv.Itoa(flagAfter), func(p *model.Project, after int) error {
				t := &model.Task{ID: p.NextID(), Name: flagName, Duration: d, Links: links}
				tasks, err := wbs.Insert(p.Tasks, after, t)
				if err != nil {
					return err
				}
				p.Tasks = tasks
				fmt.Printf("➕ Inserted task %s as %s\n", ui.BoldMagenta(t.ID), ui.Bold(t.WBS))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&flagAfter, "after", 0, "Insert after this task's block (0 appends at top level)")
	cmd.Flags().StringVar(&flagName, "name", "", "Task name")
	cmd.Flags().StringVar(&flagDuration, "duration", "1d", "Task duration (e.g. 2d, 4h, 1w)")
	cmd.Flags().StringVar(&flagPredecessors, "predecessors", "", "Predecessor links (e.g. 2fs+1d, 3ss)")

	return cmd
}

// editProject loads path, applies edit to the task with the given id, then
// reschedules and saves. A project that no longer schedules is still saved,
// without derived dates, and the scheduling error is reported as a warning.
func editProject(path, idArg string, edit func(*model.Project, int) error) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("invalid task id %q", idArg)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := projectfile.Load(path, cfg.Calendar.Settings())
	if err != nil {
		return err
	}

	if err := edit(p, id); err != nil {
		return err
	}

	if err := rescheduleAndSave(path, p); err != nil {
		return err
	}

	for _, t := range p.Tasks {
		fmt.Printf("  %s%-8s %s\n", strings.Repeat("  ", t.Level), ui.BoldMagenta(t.WBS), t.Name)
	}
	return nil
}

// rescheduleAndSave drops every derived date, renumbers the outline and runs
// the analysis again before writing p to path. When the analysis fails the
// file is written without dates and the error is only a warning.
func rescheduleAndSave(path string, p *model.Project) error {
	for _, t := range p.Tasks {
		t.Schedule = model.Schedule{}
	}
	wbs.Renumber(p.Tasks)

	if _, err := cpm.Analyze(p); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Yellow("⚠️  schedule:"), err)
	}
	return projectfile.Save(path, p)
}
