package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/reporter"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/store"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/ui"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/viewer"
)

func serveCmd() *cobra.Command {
	var (
		flagHost string
		flagPort int
		flagDir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = flagHost
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = flagPort
			}
			if flagDir != "" {
				cfg.Store.Dir = flagDir
			}

			addr := cfg.Server.Addr()
			if viewer.IsPortOpen(addr) {
				return fmt.Errorf("%s is already in use", addr)
			}

			db, err := store.Open(cfg.Store.Dir)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := viewer.NewServer(db, cfg.Calendar.Settings())
			if cfg.Server.MetricsEnabled {
				srv.EnableMetrics()
			}

			ctx, stop := signalContext()
			defer stop()

			ui.PrintLogo()
			fmt.Printf("🌐 %s http://%s %s\n", ui.BoldCyan("Serving"), addr, ui.Dim("(Ctrl+C to stop)"))
			fmt.Printf("   store %s\n", ui.Dim(cfg.Store.Dir))
			return srv.Start(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&flagHost, "host", "127.0.0.1", "Listen host")
	cmd.Flags().IntVar(&flagPort, "port", 7171, "Listen port")
	cmd.Flags().StringVar(&flagDir, "store-dir", "", "Directory for the sqlite store (default from config)")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <project-file>",
		Short: "Reschedule a project file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			debounce, err := cfg.Watch.DebounceDuration()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create fsnotify watcher: %w", err)
			}
			defer watcher.Close()

			// Editors and AtomicWrite replace the file, so watch its directory.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
			}

			ctx, stop := signalContext()
			defer stop()

			reschedule := func() {
				fmt.Print("\033[2J\033[H") // clear screen
				_, _, plan, err := buildPlan(path, cfg)
				if err != nil {
					fmt.Printf("%s %v\n", ui.Red("❌"), err)
				} else {
					rpt := reporter.New(plan)
					rpt.PrintSchedule(os.Stdout)
					rpt.PrintSummaryReport(os.Stdout)
				}
				fmt.Printf("\n👀 %s %s\n", ui.Dim("watching"), ui.Dim(args[0]))
			}
			reschedule()

			timer := time.NewTimer(debounce)
			timer.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != path {
						continue
					}
					if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
						timer.Reset(debounce)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Printf("[watch] fsnotify error: %v", err)
				case <-timer.C:
					reschedule()
				}
			}
		},
	}

	return cmd
}
