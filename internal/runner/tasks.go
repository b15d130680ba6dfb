package runner

import (
	"context"
	"time"

	"github.com/IshaanBansal2006/p5-sub000/internal/executor"
	"github.com/IshaanBansal2006/p5-sub000/internal/probe"
	"github.com/IshaanBansal2006/p5-sub000/internal/types"
	"github.com/IshaanBansal2006/p5-sub000/internal/website"
)

// Task is one named verification step. Probe is a read-only availability
// check; Run only executes when Probe reported the tool present.
type Task interface {
	Name() string
	Probe() bool
	SkipMessage() string
	Run(ctx context.Context) types.TaskResult
}

// KnownTasks is the closed, ordered set of task names the runner understands.
var KnownTasks = []string{"lint", "typecheck", "build", "test", "website"}

// lintTask runs ESLint in unix output format for line-oriented extraction.
type lintTask struct {
	probe   *probe.Probe
	exec    *executor.Executor
	timeout time.Duration
}

func (t *lintTask) Name() string { return "lint" }
func (t *lintTask) Probe() bool  { return t.probe.HasLinter() }
func (t *lintTask) SkipMessage() string {
	return "Skipped: eslint not installed"
}
func (t *lintTask) Run(ctx context.Context) types.TaskResult {
	return t.exec.Run(ctx, t.Name(), "npx", []string{"eslint", ".", "--format", "unix"}, t.timeout)
}

// typecheckTask runs the TypeScript compiler without emitting output.
type typecheckTask struct {
	probe   *probe.Probe
	exec    *executor.Executor
	timeout time.Duration
}

func (t *typecheckTask) Name() string { return "typecheck" }
func (t *typecheckTask) Probe() bool  { return t.probe.HasTypeChecker() }
func (t *typecheckTask) SkipMessage() string {
	return "Skipped: typescript not installed"
}
func (t *typecheckTask) Run(ctx context.Context) types.TaskResult {
	return t.exec.Run(ctx, t.Name(), "npx", []string{"tsc", "--noEmit"}, t.timeout)
}

// buildTask runs the project's declared build script.
type buildTask struct {
	probe   *probe.Probe
	exec    *executor.Executor
	timeout time.Duration
}

func (t *buildTask) Name() string { return "build" }
func (t *buildTask) Probe() bool  { return t.probe.HasBuild() }
func (t *buildTask) SkipMessage() string {
	return "Skipped: no build script declared"
}
func (t *buildTask) Run(ctx context.Context) types.TaskResult {
	return t.exec.Run(ctx, t.Name(), "npm", []string{"run", "build"}, t.timeout)
}

// testTask runs the project's declared test script.
type testTask struct {
	probe   *probe.Probe
	exec    *executor.Executor
	timeout time.Duration
}

func (t *testTask) Name() string { return "test" }
func (t *testTask) Probe() bool  { return t.probe.HasTests() }
func (t *testTask) SkipMessage() string {
	return "Skipped: no test script declared"
}
func (t *testTask) Run(ctx context.Context) types.TaskResult {
	return t.exec.Run(ctx, t.Name(), "npm", []string{"test"}, t.timeout)
}

// websiteTask runs the headless-browser smoke check against a detected
// development server.
type websiteTask struct {
	probe   *probe.Probe
	checker *website.Checker
	timeout time.Duration
}

func (t *websiteTask) Name() string { return "website" }
func (t *websiteTask) Probe() bool  { return t.probe.BrowserBinary() != "" }
func (t *websiteTask) SkipMessage() string {
	return "Skipped: chrome not installed"
}

func (t *websiteTask) Run(ctx context.Context) types.TaskResult {
	started := time.Now()
	url := website.DetectServerURL(t.probe.StartCommand())
	if url == "" {
		return types.TaskResult{
			Name:       t.Name(),
			Success:    false,
			Error:      "no development server detected; start your dev server (npm run dev) and re-run",
			DurationMs: time.Since(started).Milliseconds(),
		}
	}

	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	report, err := t.checker.Check(runCtx, url)
	result := types.TaskResult{
		Name:       t.Name(),
		DurationMs: time.Since(started).Milliseconds(),
	}
	if err != nil {
		result.Success = false
		result.Error = "browser check could not run: " + err.Error()
		return result
	}

	result.Success = report.Success()
	result.Output = report.Summary()
	if !result.Success {
		result.Error = report.Summary()
	}
	return result
}
