// Package executor runs external verification tools as child processes with
// timeout enforcement and bounded output capture. Arguments are always passed
// as a list to the child process, never concatenated into a shell command
// string, so tool invocations cannot be injected through project metadata.
package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// TimeoutMessage is the fixed error detail reported when a process exceeds
// its deadline.
const TimeoutMessage = "Command timed out"

// DefaultTimeout bounds task processes that do not configure their own.
const DefaultTimeout = 60 * time.Second

// DefaultMaxOutputBytes caps captured stdout+stderr per stream.
const DefaultMaxOutputBytes int64 = 10 << 20

// Config tunes an Executor. The zero value is usable; Default* constants
// fill the gaps.
type Config struct {
	WorkingDirectory string
	DefaultTimeout   time.Duration
	MaxOutputBytes   int64
	// Environment entries (KEY=VALUE) appended to the parent environment.
	Environment []string
}

// Executor spawns commands and converts their outcomes into TaskResults.
// Failures at any level (spawn, timeout, non-zero exit) are captured in the
// result, never propagated as faults.
type Executor struct {
	cfg    Config
	logger *zap.Logger
}

// New creates an executor. A nil logger is replaced with a no-op one.
func New(cfg Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return &Executor{cfg: cfg, logger: logger}
}

// Run executes name with args, waits at most timeout (or the configured
// default when timeout <= 0), and returns a TaskResult labelled taskName.
func (e *Executor) Run(ctx context.Context, taskName, name string, args []string, timeout time.Duration) types.TaskResult {
	if timeout <= 0 {
		timeout = e.cfg.DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, name, args...)
	cmd.Dir = e.cfg.WorkingDirectory
	cmd.Env = append(os.Environ(), e.cfg.Environment...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &cappedWriter{w: &stdout, max: e.cfg.MaxOutputBytes}
	cmd.Stderr = &cappedWriter{w: &stderr, max: e.cfg.MaxOutputBytes}

	e.logger.Debug("running task process",
		zap.String("task", taskName),
		zap.String("binary", name),
		zap.Strings("args", args),
		zap.Duration("timeout", timeout))

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	result := types.TaskResult{
		Name:       taskName,
		Output:     stdout.String(),
		DurationMs: elapsed.Milliseconds(),
	}

	switch {
	case execCtx.Err() == context.DeadlineExceeded:
		result.Success = false
		result.Error = TimeoutMessage
		e.logger.Warn("task process killed on timeout",
			zap.String("task", taskName),
			zap.Duration("timeout", timeout))

	case err == nil:
		result.Success = true

	default:
		result.Success = false
		if _, ok := err.(*exec.ExitError); ok {
			// Tool ran and reported problems; prefer stderr as the detail.
			result.Error = stderr.String()
			if result.Error == "" {
				result.Error = stdout.String()
			}
		} else {
			// Spawn-level failure: binary missing, permission denied, etc.
			result.Error = err.Error()
		}
		e.logger.Debug("task process failed",
			zap.String("task", taskName),
			zap.Error(err),
			zap.Duration("elapsed", elapsed))
	}

	return result
}

// cappedWriter limits total bytes written, silently discarding the excess.
// Discarded writes still report full length so the child process never sees
// a short-write error.
type cappedWriter struct {
	w       io.Writer
	max     int64
	written int64
}

func (cw *cappedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if cw.written >= cw.max {
		return n, nil
	}
	remaining := cw.max - cw.written
	if int64(n) > remaining {
		wrote, err := cw.w.Write(p[:remaining])
		cw.written += int64(wrote)
		return n, err
	}
	wrote, err := cw.w.Write(p)
	cw.written += int64(wrote)
	return wrote, err
}
