package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/claude"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/config"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/cpm"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/graph"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/planner"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/projectfile"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/reporter"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/state"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/store"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/ui"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/viewer"
)

const localConfig = "ganttloom.toml"

var (
	flagConfig        string
	flagJSON          bool
	flagFilter        string
	flagFormat        string
	flagOutput        string
	flagBriefTemplate string
	flagBriefs        bool
	flagWrite         bool
	flagPush          string
	flagNarrate       bool
	flagModel         string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ganttloom",
		Short: "Critical path scheduling for project files",
		Long: `Ganttloom reads YAML or JSON project files, schedules them against a
working calendar with FS/SS/FF/SF links and date constraints, and reports
early/late dates, float, the critical path and waves of parallel work.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./ganttloom.toml or $GANTTLOOM_HOME/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(wbsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(inferLinksCmd())
	rootCmd.AddCommand(calendarCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config, then ./ganttloom.toml, then the home config.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		if _, err := os.Stat(localConfig); err == nil {
			path = localConfig
		}
	}
	return config.Load(path)
}

// buildPlan loads, schedules and plans one project file. The project is
// returned with its derived fields written.
func buildPlan(path string, cfg config.Config) (*model.Project, *cpm.Result, *planner.Plan, error) {
	p, err := projectfile.Load(path, cfg.Calendar.Settings())
	if err != nil {
		return nil, nil, nil, err
	}

	res, err := cpm.Analyze(p)
	if err != nil {
		return p, nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	plan, err := planner.Generate(p, res, planner.PlanConfig{
		BriefTemplatePath: flagBriefTemplate,
		SkipBriefs:        !flagBriefs && flagBriefTemplate == "",
	})
	if err != nil {
		return p, res, nil, fmt.Errorf("generate plan: %w", err)
	}
	return p, res, plan, nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <project-file>...",
		Short: "Schedule project files and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := state.New(uuid.NewString())
			if err != nil {
				return err
			}

			var (
				outMu sync.Mutex
				g     errgroup.Group
				plans = make([]*planner.Plan, len(args))
			)
			g.SetLimit(runtime.NumCPU())

			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					var out io.Writer = os.Stdout
					if len(args) > 1 && !flagJSON {
						pw := ui.NewPrefixWriter(path, os.Stdout, &outMu)
						defer pw.Flush()
						out = pw
					}
					plan, err := scheduleOne(cmd.Context(), path, cfg, st, out)
					plans[i] = plan
					return err
				})
			}
			runErr := g.Wait()

			if flagJSON {
				if len(args) == 1 {
					if plans[0] == nil {
						return runErr
					}
					return outputJSON(plans[0])
				}
				if err := outputJSON(plans); err != nil {
					return err
				}
			}

			if failed := st.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d project files failed: %s", len(failed), len(args), strings.Join(failed, ", "))
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&flagWrite, "write", false, "Write derived dates back to the project file")
	cmd.Flags().StringVar(&flagBriefTemplate, "brief-template", "", "Custom task brief template path")
	cmd.Flags().BoolVar(&flagBriefs, "briefs", false, "Render a text brief per task into the plan")
	cmd.Flags().StringVar(&flagPush, "push", "", "Also push the project to a running server (e.g. http://127.0.0.1:7171)")
	cmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Ask Claude for a short narrative of the schedule")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use with --narrate")

	return cmd
}

// scheduleOne schedules a single file, records the outcome in st and prints
// the report to out unless JSON output was requested.
func scheduleOne(ctx context.Context, path string, cfg config.Config, st *state.RunState, out io.Writer) (*planner.Plan, error) {
	p, _, plan, err := buildPlan(path, cfg)
	if err != nil {
		pr := &state.ProjectRun{Status: state.StatusFailed, Error: err.Error()}
		if p != nil {
			pr.Name = p.Name
		}
		if rerr := st.Record(path, pr); rerr != nil {
			fmt.Fprintf(os.Stderr, "%s record state: %v\n", ui.Yellow("warning:"), rerr)
		}
		fmt.Fprintf(out, "%s %v\n", ui.Red("❌"), err)
		return nil, err
	}

	now := time.Now()
	finish := plan.ProjectFinish
	pr := &state.ProjectRun{
		Status:       state.StatusScheduled,
		Name:         plan.Project,
		PlanID:       plan.ID,
		ScheduledAt:  &now,
		Finish:       &finish,
		TotalTasks:   plan.TotalTasks,
		CriticalPath: plan.CriticalPath,
		Warnings:     len(plan.Warnings),
	}
	if err := st.Record(path, pr); err != nil {
		return plan, err
	}

	if flagWrite {
		if err := projectfile.Save(path, p); err != nil {
			return plan, fmt.Errorf("write %s: %w", path, err)
		}
	}

	if flagPush != "" {
		if _, err := viewer.PushProject(flagPush, p); err != nil {
			return plan, fmt.Errorf("push %s: %w", path, err)
		}
	}

	if flagJSON {
		return plan, nil
	}

	rpt := reporter.New(plan)
	rpt.PrintSchedule(out)
	summary := rpt.PrintSummaryReport(out)
	if flagWrite {
		fmt.Fprintf(out, "📝 Wrote derived dates to %s\n", ui.Dim(path))
	}
	if flagPush != "" {
		fmt.Fprintf(out, "📤 Pushed %s to %s\n", ui.Bold(p.Name), ui.Dim(flagPush))
	}

	if flagNarrate {
		client, err := claude.NewClient("", firstNonEmpty(flagModel, cfg.Claude.Model), int64(cfg.Claude.MaxTokens))
		if err != nil {
			return plan, err
		}
		text, err := client.NarrateSchedule(ctx, summary)
		if err != nil {
			return plan, fmt.Errorf("narrate schedule: %w", err)
		}
		fmt.Fprintf(out, "\n💡 %s\n%s\n", ui.BoldWhite("Narrative:"), text)
	}
	return plan, nil
}

func statusCmd() *cobra.Command {
	var flagProject string
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last scheduling run, or stored run history for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagProject != "" {
				return printRunHistory(flagProject, flagLimit)
			}

			if !state.Exists() {
				return fmt.Errorf("no ganttloom run found (no .ganttloom/state.json)")
			}
			st, err := state.Load()
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(st)
			}
			reporter.PrintStatus(os.Stdout, st)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagProject, "project", "", "Show stored run history for a server project")
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum runs to show with --project")

	return cmd
}

func printRunHistory(project string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Store.Dir)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(project, limit)
	if err != nil {
		return err
	}
	if flagJSON {
		return outputJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Printf("No runs recorded for %s\n", ui.Bold(project))
		return nil
	}

	fmt.Printf("🧵 %s %s\n\n", ui.BoldCyan("Runs for"), ui.Bold(project))
	for _, r := range runs {
		status := "scheduled"
		if r.Error != "" {
			status = "failed"
		}
		fmt.Printf("  %s %s  %s  %s\n", ui.StatusIcon(status), ui.Dim(r.ID[:8]),
			r.StartedAt.Format("2006-01-02 15:04:05"), ui.Dim(r.Elapsed.Round(time.Millisecond).String()))
		if r.Error != "" {
			fmt.Printf("      %s\n", ui.Red(r.Error))
			continue
		}
		fmt.Printf("      finish %s, critical %s, %d warnings\n",
			r.Finish.Format("2006-01-02"), joinIDs(r.Critical), r.Warnings)
	}
	return nil
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz <project-file>",
		Short: "Print the task network as ASCII waves or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, res, plan, err := buildPlan(args[0], cfg)
			if err != nil {
				return err
			}

			g, err := graph.Build(p.Tasks)
			if err != nil {
				return err
			}
			if flagFilter != "" {
				g, err = applyFilter(g, flagFilter)
				if err != nil {
					return fmt.Errorf("apply filter: %w", err)
				}
			}

			switch flagFormat {
			case "dot":
				printDOT(os.Stdout, g, res)
			case "ascii", "":
				printASCIIDAG(os.Stdout, plan, g)
			default:
				return fmt.Errorf("unknown format %q (ascii, dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().StringVar(&flagFilter, "filter", "", "Filter tasks (critical, level<=N, name=text)")

	return cmd
}

func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printASCIIDAG(w io.Writer, plan *planner.Plan, g *graph.TaskGraph) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Network"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range plan.Waves {
		var tasks []planner.PlannedTask
		for _, t := range wave.Tasks {
			if _, ok := g.Tasks[t.TaskID]; ok {
				tasks = append(tasks, t)
			}
		}
		if len(tasks) == 0 {
			continue
		}

		fmt.Fprintf(w, "%s 🌊 Wave %d %s %s\n", ui.Cyan("──"), wave.Index+1,
			ui.Dim(wave.Start.Format("Mon 2006-01-02")), ui.Cyan("──────────────────────"))
		for _, t := range tasks {
			fmt.Fprintf(w, "  %s [%s] %s\n", ui.CriticalMark(t.IsCritical), ui.BoldMagenta(t.WBS), t.Name)
			for _, e := range g.Adj[t.TaskID] {
				to := plan.Tasks[e.To]
				if to == nil {
					continue
				}
				fmt.Fprintf(w, "      %s %s %s\n", ui.Dim("└──→"), ui.Magenta(to.WBS), ui.Dim(edgeLabel(e)))
			}
		}
		fmt.Fprintln(w)
	}
}

func printDOT(w io.Writer, g *graph.TaskGraph, res *cpm.Result) {
	critical := func(id int) bool {
		ts, ok := res.Tasks[id]
		return ok && ts.IsCritical
	}

	fmt.Fprintln(w, "digraph ganttloom {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, id := range g.Order {
		t := g.Tasks[id]
		label := fmt.Sprintf("%s %s", t.WBS, t.Name)
		if ts, ok := res.Tasks[id]; ok {
			label += fmt.Sprintf("\\n%s → %s", ts.EarlyStart.Format("01-02"), ts.EarlyFinish.Format("01-02"))
		}
		attrs := fmt.Sprintf(`label="%s"`, strings.ReplaceAll(label, `"`, `\"`))
		switch {
		case t.IsMilestone():
			attrs += ", shape=diamond"
		case t.IsSummary:
			attrs += `, style="rounded,filled", fillcolor=lightgrey`
		}
		if critical(id) {
			attrs += `, color=red`
		}
		fmt.Fprintf(w, "  t%d [%s];\n", id, attrs)
	}

	fmt.Fprintln(w)

	for _, id := range g.Order {
		for _, e := range g.Adj[id] {
			attrs := fmt.Sprintf("label=%q", edgeLabel(e))
			if critical(e.From) && critical(e.To) {
				attrs += ", color=red, penwidth=2"
			}
			fmt.Fprintf(w, "  t%d -> t%d [%s];\n", e.From, e.To, attrs)
		}
	}

	fmt.Fprintln(w, "}")
}

func edgeLabel(e graph.Edge) string {
	s := strings.ToUpper(string(e.Kind))
	if !e.Lag.IsZero() {
		if e.Lag.Value > 0 {
			s += "+"
		}
		s += e.Lag.String()
	}
	return s
}

// applyFilter narrows the graph. Supported forms: critical, level<=N,
// level=N and name=text (case-insensitive substring).
func applyFilter(g *graph.TaskGraph, filter string) (*graph.TaskGraph, error) {
	switch {
	case filter == "critical":
		return g.Filter(func(t *model.Task) bool { return t.IsCritical })
	case strings.HasPrefix(filter, "level<="):
		n, err := strconv.Atoi(strings.TrimPrefix(filter, "level<="))
		if err != nil {
			return nil, fmt.Errorf("invalid level: %w", err)
		}
		return g.Filter(func(t *model.Task) bool { return t.Level <= n })
	case strings.HasPrefix(filter, "level="):
		n, err := strconv.Atoi(strings.TrimPrefix(filter, "level="))
		if err != nil {
			return nil, fmt.Errorf("invalid level: %w", err)
		}
		return g.Filter(func(t *model.Task) bool { return t.Level == n })
	case strings.HasPrefix(filter, "name="):
		text := strings.ToLower(strings.TrimPrefix(filter, "name="))
		return g.Filter(func(t *model.Task) bool { return strings.Contains(strings.ToLower(t.Name), text) })
	default:
		return nil, fmt.Errorf("unsupported filter %q (critical, level<=N, level=N, name=text)", filter)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " → ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
