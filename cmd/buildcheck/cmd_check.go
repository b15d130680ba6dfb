package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/report"
	"github.com/IshaanBansal2006/p5-sub000/internal/runner"
)

var (
	checkAll      bool
	checkWatch    bool
	checkNoReport bool
)

var checkCmd = &cobra.Command{
	Use:   "check [stage]",
	Short: "Run a verification stage against the project",
	Long: `Runs the ordered verification tasks for a stage (pre-commit, pre-push, ci)
against the project root. Tasks whose tools are not installed are skipped;
one task's failure never stops the rest. Detected errors are submitted to
the triage service on a best-effort basis.

Exits 0 when every task passes and 1 when any task fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "run every known task regardless of stage")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "re-run the stage when project files change")
	checkCmd.Flags().BoolVar(&checkNoReport, "no-report", false, "skip submitting errors to the triage service")
}

func runCheck(cmd *cobra.Command, args []string) error {
	stage := "pre-commit"
	if len(args) > 0 {
		stage = args[0]
	}

	if checkWatch {
		return watchAndCheck(cmd.Context(), stage)
	}
	return checkOnce(cmd.Context(), stage)
}

func checkOnce(ctx context.Context, stage string) error {
	r := runner.New(root, cfg, logger.Named("runner"))

	fmt.Printf("Running stage %q...\n", stage)
	rep := r.Run(ctx, stage, checkAll)
	fmt.Print(rep.Render())

	if !rep.Success && !checkNoReport {
		transmit(ctx, stage, rep)
	}

	if !rep.Success {
		return errChecksFailed
	}
	return nil
}

// transmit submits the run's errors. Failures are logged, never fatal.
func transmit(ctx context.Context, stage string, rep *runner.Report) {
	errs := rep.Errors()
	if len(errs) == 0 {
		return
	}
	identity := report.RepoIdentity(ctx, root)
	col := report.BuildCollection(identity, stage, rep.TotalDurationMs, errs)

	tx := report.NewTransmitter(cfg.Endpoint, 10*time.Second, logger.Named("report"))
	if err := tx.Send(ctx, col); err != nil {
		logger.Warn("error report not delivered", zap.Error(err))
	}
}

// watchAndCheck re-runs the stage whenever project files change, with a
// short debounce so one save burst triggers one run.
func watchAndCheck(ctx context.Context, stage string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	// Initial run; watch mode never exits non-zero on task failures.
	if err := checkOnce(ctx, stage); err != nil && err != errChecksFailed {
		return err
	}

	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	runs := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignoredPath(event.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-runs:
			fmt.Println("\nChange detected, re-running...")
			if err := checkOnce(ctx, stage); err != nil && err != errChecksFailed {
				return err
			}
		}
	}
}

// addWatchDirs registers the project tree, skipping the usual noisy dirs.
func addWatchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredPath(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func ignoredPath(path string) bool {
	base := filepath.Base(path)
	if base == "node_modules" || base == ".git" || base == "dist" || base == "build" {
		return true
	}
	return strings.Contains(path, string(filepath.Separator)+"node_modules"+string(filepath.Separator)) ||
		strings.Contains(path, string(filepath.Separator)+".git"+string(filepath.Separator))
}
