// Package triage classifies, deduplicates, and merges incoming error
// submissions into the persistent per-repository ledger. Classification is a
// two-stage strategy: an AI-assisted classifier is tried first, and any
// failure there (timeout, malformed response, missing credentials) selects
// the deterministic rule-based classifier instead; the merge itself never
// aborts because a model call failed.
package triage

import (
	"context"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// ClassifiedError is one deduplicated error cluster with a triage severity.
type ClassifiedError struct {
	TaskName     string          `json:"taskName"`
	Kind         types.ErrorKind `json:"errorKind"`
	Severity     types.Priority  `json:"severity"`
	Message      string          `json:"message"`
	Location     *types.Location `json:"location,omitempty"`
	Category     string          `json:"category,omitempty"`
	SuggestedFix string          `json:"suggestedFix,omitempty"`
	// Count is how many submitted errors collapsed into this cluster.
	Count int `json:"count"`
}

// Classifier reduces raw detailed errors to severity-ranked clusters.
type Classifier interface {
	Classify(ctx context.Context, errs []types.DetailedError) ([]ClassifiedError, error)
}

// SeverityFor applies the fixed severity rules: build, type-check, and test
// failures plus runtime/console errors are high; static-analysis errors are
// medium; warnings are always low.
func SeverityFor(kind types.ErrorKind, severity types.Severity) types.Priority {
	if severity == types.SeverityWarning {
		return types.PriorityLow
	}
	switch kind {
	case types.KindBuild, types.KindTypecheck, types.KindTest, types.KindWebsite:
		return types.PriorityHigh
	case types.KindLint:
		return types.PriorityMedium
	}
	return types.PriorityMedium
}

// RuleClassifier is the deterministic fallback. Deduplication is exact match
// on (message, taskName, file) rather than semantic clustering, so the same
// input always produces the same clusters in the same order.
type RuleClassifier struct{}

// Classify never fails.
func (RuleClassifier) Classify(_ context.Context, errs []types.DetailedError) ([]ClassifiedError, error) {
	type ruleKey struct {
		message  string
		taskName string
		file     string
	}

	index := make(map[ruleKey]int)
	var out []ClassifiedError
	for _, e := range errs {
		key := ruleKey{message: e.Message, taskName: e.TaskName}
		if e.Location != nil {
			key.file = e.Location.File
		}
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, ClassifiedError{
			TaskName: e.TaskName,
			Kind:     e.Kind,
			Severity: SeverityFor(e.Kind, e.Severity),
			Message:  e.Message,
			Location: e.Location,
			Count:    1,
		})
	}
	return out, nil
}
