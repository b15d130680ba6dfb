// Package runner orchestrates the ordered verification tasks for a stage:
// tool probe, process execution, and result aggregation. Tasks run strictly
// sequentially, since they share the working directory and interleaved
// output would make failures unreadable. One task's failure never halts the
// rest of the run.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/config"
	"github.com/IshaanBansal2006/p5-sub000/internal/executor"
	"github.com/IshaanBansal2006/p5-sub000/internal/extract"
	"github.com/IshaanBansal2006/p5-sub000/internal/probe"
	"github.com/IshaanBansal2006/p5-sub000/internal/types"
	"github.com/IshaanBansal2006/p5-sub000/internal/website"
)

// breakdownLines caps how much of a failing task's output the report prints.
const breakdownLines = 20

// Runner executes verification stages against a single project root.
type Runner struct {
	probe   *probe.Probe
	exec    *executor.Executor
	checker *website.Checker
	stages  *config.StageConfig
	cfg     *config.Config
	logger  *zap.Logger
}

// New wires a runner for the given project root.
func New(root string, cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := probe.New(root)
	exec := executor.New(executor.Config{WorkingDirectory: root}, logger.Named("executor"))
	checker := website.NewChecker(website.Config{
		BrowserBin:        cfg.Browser.Bin,
		NavigationTimeout: time.Duration(cfg.Browser.NavigationTimeoutMs) * time.Millisecond,
	}, logger.Named("website"))

	return &Runner{
		probe:   p,
		exec:    exec,
		checker: checker,
		stages:  config.LoadStages(root),
		cfg:     cfg,
		logger:  logger,
	}
}

// Report is the aggregate outcome of one stage run.
type Report struct {
	Stage           string
	Results         []types.TaskResult
	Success         bool
	TotalDurationMs int64
}

// Errors extracts every failed task's structured diagnostics. Skipped and
// passed tasks contribute nothing.
func (r *Report) Errors() []types.DetailedError {
	var all []types.DetailedError
	for _, res := range r.Results {
		if res.Success {
			continue
		}
		all = append(all, extract.Errors(res.Name, res.Error, res)...)
	}
	return all
}

// Render produces the user-facing per-task status lines plus, for each
// failing task, an itemized breakdown capped at breakdownLines lines.
func (r *Report) Render() string {
	var b strings.Builder
	for _, res := range r.Results {
		switch {
		case res.Success && strings.Contains(res.Output, "Skipped"):
			fmt.Fprintf(&b, "  - %-10s %s\n", res.Name, res.Output)
		case res.Success:
			fmt.Fprintf(&b, "  ✓ %-10s (%dms)\n", res.Name, res.DurationMs)
		default:
			fmt.Fprintf(&b, "  ✗ %-10s (%dms)\n", res.Name, res.DurationMs)
		}
	}
	for _, res := range r.Results {
		if res.Success || res.Error == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s errors:\n", res.Name)
		lines := strings.Split(strings.TrimSpace(res.Error), "\n")
		if len(lines) > breakdownLines {
			lines = append(lines[:breakdownLines], fmt.Sprintf("... (%d more lines)", len(lines)-breakdownLines))
		}
		for _, line := range lines {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	if r.Success {
		fmt.Fprintf(&b, "\nAll checks passed.\n")
	} else {
		fmt.Fprintf(&b, "\nStage %q failed.\n", r.Stage)
	}
	return b.String()
}

// taskFor returns the handler for a known task name.
func (r *Runner) taskFor(name string) (Task, bool) {
	switch name {
	case "lint":
		return &lintTask{probe: r.probe, exec: r.exec, timeout: parseTimeout(r.cfg.Timeouts.Lint)}, true
	case "typecheck":
		return &typecheckTask{probe: r.probe, exec: r.exec, timeout: parseTimeout(r.cfg.Timeouts.Typecheck)}, true
	case "build":
		return &buildTask{probe: r.probe, exec: r.exec, timeout: parseTimeout(r.cfg.Timeouts.Build)}, true
	case "test":
		return &testTask{probe: r.probe, exec: r.exec, timeout: parseTimeout(r.cfg.Timeouts.Test)}, true
	case "website":
		return &websiteTask{probe: r.probe, checker: r.checker, timeout: parseTimeout(r.cfg.Timeouts.Website)}, true
	}
	return nil, false
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return executor.DefaultTimeout
	}
	return d
}

// Run executes the named stage. With all set, every known task runs instead
// of the stage's configured list. An unrecognized stage is recorded as a
// single failed task rather than an abort.
func (r *Runner) Run(ctx context.Context, stage string, all bool) *Report {
	report := &Report{Stage: stage, Success: true}

	var names []string
	if all {
		names = KnownTasks
	} else {
		var ok bool
		names, ok = r.stages.Resolve(stage)
		if !ok {
			report.Success = false
			report.Results = append(report.Results, types.TaskResult{
				Name:    stage,
				Success: false,
				Error:   "Unknown task",
			})
			return report
		}
	}

	for _, name := range names {
		result := r.runOne(ctx, name)
		report.Results = append(report.Results, result)
		report.TotalDurationMs += result.DurationMs
		if !result.Success {
			report.Success = false
		}
	}
	return report
}

// runOne takes a single task through Pending -> Running -> terminal state.
func (r *Runner) runOne(ctx context.Context, name string) types.TaskResult {
	task, ok := r.taskFor(name)
	if !ok {
		return types.TaskResult{Name: name, Success: false, Error: "Unknown task"}
	}

	if !task.Probe() {
		r.logger.Info("task skipped", zap.String("task", name))
		return types.TaskResult{Name: name, Success: true, Output: task.SkipMessage()}
	}

	r.logger.Info("task running", zap.String("task", name))
	result := task.Run(ctx)
	r.logger.Info("task finished",
		zap.String("task", name),
		zap.Bool("success", result.Success),
		zap.Int64("duration_ms", result.DurationMs))
	return result
}
