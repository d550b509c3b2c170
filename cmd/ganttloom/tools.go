package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/calendar"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/claude"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/export"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/parse"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/projectfile"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/ui"
)

func exportCmd() *cobra.Command {
	var flagExportFormat string

	cmd := &cobra.Command{
		Use:   "export <project-file>",
		Short: "Schedule a project file and export it as CSV or MS Project XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, _, _, err := buildPlan(args[0], cfg)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch flagExportFormat {
			case "csv":
				err = export.CSV(&buf, p)
			case "xml":
				err = export.MSProjectXML(&buf, p)
			default:
				return fmt.Errorf("unknown format %q (csv, xml)", flagExportFormat)
			}
			if err != nil {
				return err
			}

			if flagOutput == "" {
				_, err := io.Copy(os.Stdout, &buf)
				return err
			}
			if err := projectfile.AtomicWrite(flagOutput, buf.Bytes()); err != nil {
				return err
			}
			fmt.Printf("📦 Exported %s to %s\n", ui.Bold(p.Name), ui.Dim(flagOutput))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagExportFormat, "format", "csv", "Export format (csv, xml)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <legacy.json> <project-file>",
		Short: "Convert a browser Gantt export into a project file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read legacy export: %w", err)
			}
			p, err := projectfile.ImportLegacy(data, cfg.Calendar.Settings())
			if err != nil {
				return err
			}
			if p.Name == "" {
				p.Name = strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
			}

			if err := rescheduleAndSave(args[1], p); err != nil {
				return err
			}
			fmt.Printf("📥 Imported %s tasks into %s\n", ui.Bold(len(p.Tasks)), ui.Dim(args[1]))
			return nil
		},
	}
	return cmd
}

func inferLinksCmd() *cobra.Command {
	var (
		flagApply    bool
		flagFromFile string
	)

	cmd := &cobra.Command{
		Use:   "infer-links <project-file>",
		Short: "Use Claude to propose links between tasks from their names",
		Long: `Sends the task outline to Claude and proposes predecessor links.
By default runs in dry-run mode; use --apply to write accepted links to the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := projectfile.Load(args[0], cfg.Calendar.Settings())
			if err != nil {
				return err
			}
			if len(p.Tasks) == 0 {
				return fmt.Errorf("no tasks in %s", args[0])
			}

			var result *claude.InferLinksResult
			if flagFromFile != "" {
				data, err := os.ReadFile(flagFromFile)
				if err != nil {
					return fmt.Errorf("read from-file: %w", err)
				}
				result, err = claude.ParseInferLinks(string(data))
				if err != nil {
					return fmt.Errorf("parse from-file: %w", err)
				}
				fmt.Printf("📂 Loaded %s links from %s\n", ui.Bold(len(result.Links)), ui.Dim(flagFromFile))
			} else {
				summaries := claude.Summaries(p)
				fmt.Printf("🔍 Sending %s tasks to Claude for link inference...\n", ui.Bold(len(summaries)))

				client, err := claude.NewClient("", firstNonEmpty(flagModel, cfg.Claude.Model), int64(cfg.Claude.MaxTokens))
				if err != nil {
					return err
				}
				result, err = client.InferLinks(cmd.Context(), summaries)
				if err != nil {
					return fmt.Errorf("infer links: %w", err)
				}
			}

			accepted, rejected := claude.ApplyLinks(p, result.Links)
			for _, r := range rejected {
				fmt.Printf("  %s %d → %d: %s\n", ui.Yellow("⏭️  SKIP:"), r.Link.PredecessorID, r.Link.SuccessorID, r.Reason)
			}

			if flagJSON {
				out := claude.InferLinksResult{Links: accepted, Summary: result.Summary}
				if flagOutput != "" {
					data, err := json.MarshalIndent(out, "", "  ")
					if err != nil {
						return err
					}
					if err := os.WriteFile(flagOutput, data, 0644); err != nil {
						return err
					}
					fmt.Printf("Wrote %d links to %s\n", len(accepted), flagOutput)
					return nil
				}
				return outputJSON(out)
			}

			fmt.Printf("\n🔗 Inferred %s links (%d from Claude, %d after validation):\n\n",
				ui.Bold(len(accepted)), len(result.Links), len(accepted))
			for _, e := range accepted {
				succ, pred := p.Task(e.SuccessorID), p.Task(e.PredecessorID)
				fmt.Printf("  %s %s after %s %s  %s\n", ui.Cyan("→"),
					ui.BoldMagenta(succ.Name), ui.BoldMagenta(pred.Name),
					ui.Dim(strings.ToUpper(firstNonEmpty(e.Kind, "fs"))+e.Lag), ui.Dim(e.Reason))
			}
			if result.Summary != "" {
				fmt.Printf("\n💡 %s %s\n", ui.BoldWhite("Summary:"), result.Summary)
			}

			if !flagApply {
				fmt.Printf("\n🎯 %s\n", ui.Yellow("Dry run: use --apply to write these links to the project file."))
				return nil
			}
			if len(accepted) == 0 {
				return nil
			}

			if err := rescheduleAndSave(args[0], p); err != nil {
				return err
			}
			fmt.Printf("\n🏁 Applied %s links to %s\n", ui.BoldGreen(len(accepted)), ui.Dim(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write accepted links to the project file (default: dry-run)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model to use (default from config)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Save JSON output to file (use with --json)")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Load proposed links from a JSON file instead of calling Claude")

	return cmd
}

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Working-time arithmetic on the configured calendar",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <date> <duration>",
		Short: "Add (or with a negative duration, subtract) working time to a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := configuredCalendar()
			if err != nil {
				return err
			}
			start, err := parseCLIDate(args[0])
			if err != nil {
				return err
			}
			text := args[1]
			neg := strings.HasPrefix(text, "-")
			d, err := parse.Duration(strings.TrimPrefix(text, "-"))
			if err != nil {
				return err
			}
			if neg {
				d = d.Neg()
			}
			fmt.Println(formatCLIDate(cal.AddWork(start, d)))
			return nil
		},
	})

	var flagUnit string
	diff := &cobra.Command{
		Use:   "diff <start> <end>",
		Short: "Working time between two dates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := configuredCalendar()
			if err != nil {
				return err
			}
			start, err := parseCLIDate(args[0])
			if err != nil {
				return err
			}
			end, err := parseCLIDate(args[1])
			if err != nil {
				return err
			}
			unit := model.Unit(strings.ToLower(flagUnit))
			if !unit.Valid() {
				return fmt.Errorf("unknown unit %q (h, d, w)", flagUnit)
			}
			fmt.Printf("%s%s\n", strconv.FormatFloat(cal.DiffWork(start, end, unit), 'f', -1, 64), unit)
			return nil
		},
	}
	diff.Flags().StringVar(&flagUnit, "unit", "d", "Result unit (h, d, w)")
	cmd.AddCommand(diff)

	return cmd
}

func configuredCalendar() (*calendar.Calendar, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return calendar.New(cfg.Calendar.Settings())
}

func parseCLIDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (YYYY-MM-DD or YYYY-MM-DDTHH:MM)", s)
}

func formatCLIDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Mon 2006-01-02")
	}
	return t.Format("Mon 2006-01-02 15:04")
}
