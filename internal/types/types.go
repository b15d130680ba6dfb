// Package types defines the shared data model for the verification pipeline:
// task results produced by the runner, detailed errors produced by extraction,
// the wire payload sent to the triage service, and the per-repository ledger
// entries the service maintains.
package types

import (
	"fmt"
	"time"
)

// ErrorKind identifies which verification task produced an error.
type ErrorKind string

const (
	KindLint      ErrorKind = "lint"
	KindTypecheck ErrorKind = "typecheck"
	KindBuild     ErrorKind = "build"
	KindTest      ErrorKind = "test"
	KindWebsite   ErrorKind = "website"
	KindUnknown   ErrorKind = "unknown"
)

// Severity is the raw severity reported by a tool (pre-triage).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Priority is the triage-assigned severity tier of a processed error.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns a sortable weight for a priority; higher is more urgent.
// Unknown values rank below low so malformed entries never jump the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TaskResult is the outcome of a single verification task execution.
// It is immutable after creation and owned by the run that produced it.
type TaskResult struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Duration returns the task duration as a time.Duration.
func (r TaskResult) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// Location points at the source position a diagnostic refers to.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String renders the location in file:line:col form.
func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// DetailedError is one structured diagnostic extracted from a failed task.
type DetailedError struct {
	TaskName   string    `json:"taskName"`
	Kind       ErrorKind `json:"errorKind"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	Location   *Location `json:"location,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"durationMs,omitempty"`
	RawOutput  string    `json:"rawOutput,omitempty"`
}

// RepoIdentity identifies the repository a submission belongs to.
type RepoIdentity struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// Key returns the durable-store key for this repository.
func (r RepoIdentity) Key() string {
	return r.Owner + "-" + r.Repo
}

// CollectionSummary aggregates an ErrorCollection by task and by kind.
type CollectionSummary struct {
	ByTask map[string]int `json:"byTask"`
	ByType map[string]int `json:"byType"`
}

// ErrorCollection is the wire payload submitted to the triage service.
// It exists only for the duration of one transmission.
type ErrorCollection struct {
	SessionID       string            `json:"sessionId"`
	Repository      RepoIdentity      `json:"repository"`
	Stage           string            `json:"stage"`
	TotalErrors     int               `json:"totalErrors"`
	TotalWarnings   int               `json:"totalWarnings"`
	TotalDurationMs int64             `json:"totalDurationMs"`
	Errors          []DetailedError   `json:"errors"`
	Summary         CollectionSummary `json:"summary"`
}

// ProcessedError is a triaged, deduplicated bug in the repository ledger.
// Occurrences and LastSeen advance in place on re-submission; entries are
// never deleted automatically.
type ProcessedError struct {
	ID           int       `json:"id"`
	TaskName     string    `json:"taskName"`
	Kind         ErrorKind `json:"errorKind"`
	Severity     Priority  `json:"severity"`
	Priority     Priority  `json:"priority"`
	Message      string    `json:"message"`
	Location     *Location `json:"location,omitempty"`
	FirstSeen    time.Time `json:"firstSeen"`
	LastSeen     time.Time `json:"lastSeen"`
	Occurrences  int       `json:"occurrences"`
	Category     string    `json:"category,omitempty"`
	SuggestedFix string    `json:"suggestedFix,omitempty"`
	Status       string    `json:"status,omitempty"`
}

// DedupKey identifies "the same" error across submissions.
type DedupKey struct {
	Message  string
	TaskName string
	File     string
	Line     int
}

// Dedup returns the dedup key for a processed error.
func (p ProcessedError) Dedup() DedupKey {
	k := DedupKey{Message: p.Message, TaskName: p.TaskName}
	if p.Location != nil {
		k.File = p.Location.File
		k.Line = p.Location.Line
	}
	return k
}

// ErrDedup returns the dedup key for an incoming detailed error.
func ErrDedup(e DetailedError) DedupKey {
	k := DedupKey{Message: e.Message, TaskName: e.TaskName}
	if e.Location != nil {
		k.File = e.Location.File
		k.Line = e.Location.Line
	}
	return k
}

// WorkItem is a tracked unit of work unrelated to any specific bug.
type WorkItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Terminal statuses for bugs and work items. Anything else counts as open.
const (
	StatusChecked  = "checked"
	StatusDone     = "done"
	StatusResolved = "resolved"
	StatusClosed   = "closed"
)

// IsOpenStatus reports whether a status string still needs attention.
func IsOpenStatus(status string) bool {
	switch status {
	case StatusChecked, StatusDone, StatusResolved, StatusClosed:
		return false
	}
	return true
}

// RepositoryLedger is the durable per-repository record of bugs and tasks.
// It is always read and written as a whole snapshot.
type RepositoryLedger struct {
	Bugs  []ProcessedError `json:"bugs"`
	Tasks []WorkItem       `json:"tasks"`
}

// NextBugID returns the next ledger-scoped bug identifier.
func (l *RepositoryLedger) NextBugID() int {
	max := 0
	for _, b := range l.Bugs {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}
