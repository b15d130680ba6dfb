package triage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/IshaanBansal2006/p5-sub000/internal/ledger"
	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// ProcessedCounts reports how a submission collapsed during triage.
type ProcessedCounts struct {
	// Original is the number of errors submitted.
	Original int `json:"original"`
	// Unique is the number of clusters after deduplication.
	Unique int `json:"unique"`
	// Total is the bug count in the ledger after the merge.
	Total int `json:"total"`
}

// PriorityBreakdown counts this submission's clusters per severity tier.
type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Response is the triage API result for one submission.
type Response struct {
	Success      bool                   `json:"success"`
	Processed    ProcessedCounts        `json:"processed"`
	Priority     PriorityBreakdown      `json:"priority"`
	Insights     []string               `json:"insights"`
	Suggestions  []string               `json:"suggestions"`
	Repository   string                 `json:"repository"`
	UniqueErrors []types.ProcessedError `json:"uniqueErrors"`
}

// Service runs the classification and merge pipeline for submissions.
type Service struct {
	store    *ledger.Store
	primary  Classifier
	fallback Classifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the triage pipeline. primary may be nil, in which case
// every submission is classified by the deterministic rules.
func NewService(store *ledger.Store, primary Classifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		primary:  primary,
		fallback: RuleClassifier{},
		logger:   logger,
		now:      time.Now,
	}
}

// Process triages one error collection and merges it into the repository
// ledger. A persistence failure is returned to the caller and leaves the
// prior ledger state untouched; a classification failure is not a failure
// at all, since the fallback takes over silently.
func (s *Service) Process(ctx context.Context, col types.ErrorCollection) (*Response, error) {
	classified := s.classify(ctx, col.Errors)
	now := s.now()

	var merged []types.ProcessedError
	var totalBugs int
	err := s.store.Update(col.Repository.Key(), func(l *types.RepositoryLedger) error {
		MergeInto(l, classified, now)
		merged = touchedBugs(l, classified)
		totalBugs = len(l.Bugs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge into ledger: %w", err)
	}

	resp := &Response{
		Success: true,
		Processed: ProcessedCounts{
			Original: len(col.Errors),
			Unique:   len(classified),
			Total:    totalBugs,
		},
		Repository:   col.Repository.Key(),
		UniqueErrors: merged,
	}
	for _, ce := range classified {
		switch ce.Severity {
		case types.PriorityHigh, types.PriorityCritical:
			resp.Priority.High++
		case types.PriorityMedium:
			resp.Priority.Medium++
		default:
			resp.Priority.Low++
		}
	}
	resp.Insights, resp.Suggestions = deriveInsights(merged)

	s.logger.Info("submission triaged",
		zap.String("repository", resp.Repository),
		zap.Int("original", resp.Processed.Original),
		zap.Int("unique", resp.Processed.Unique),
		zap.Int("total", resp.Processed.Total))
	return resp, nil
}

// classify runs the primary classifier and falls back to the deterministic
// rules on any failure.
func (s *Service) classify(ctx context.Context, errs []types.DetailedError) []ClassifiedError {
	if len(errs) == 0 {
		return nil
	}
	if s.primary != nil {
		classified, err := s.primary.Classify(ctx, errs)
		if err == nil {
			return classified
		}
		s.logger.Warn("AI classification failed, using rule-based fallback", zap.Error(err))
	}
	classified, _ := s.fallback.Classify(ctx, errs)
	return classified
}

// touchedBugs returns the ledger entries this submission created or updated,
// for the response's uniqueErrors list.
func touchedBugs(l *types.RepositoryLedger, classified []ClassifiedError) []types.ProcessedError {
	keys := make(map[types.DedupKey]bool, len(classified))
	for _, ce := range classified {
		key := types.DedupKey{Message: ce.Message, TaskName: ce.TaskName}
		if ce.Location != nil {
			key.File = ce.Location.File
			key.Line = ce.Location.Line
		}
		keys[key] = true
	}
	var out []types.ProcessedError
	for _, bug := range l.Bugs {
		if keys[bug.Dedup()] {
			out = append(out, bug)
		}
	}
	return out
}

// deriveInsights produces short human-readable insight and suggestion lines
// from the highest-severity unresolved bugs.
func deriveInsights(bugs []types.ProcessedError) (insights, suggestions []string) {
	open := make([]types.ProcessedError, 0, len(bugs))
	counts := map[types.Priority]int{}
	for _, b := range bugs {
		if !types.IsOpenStatus(b.Status) {
			continue
		}
		open = append(open, b)
		counts[b.Priority]++
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Priority.Rank() > open[j].Priority.Rank()
	})

	if len(open) == 0 {
		return []string{"No open issues. Everything submitted has been resolved."}, nil
	}

	if n := counts[types.PriorityHigh] + counts[types.PriorityCritical]; n > 0 {
		insights = append(insights, fmt.Sprintf("%d high priority issue(s) need attention first", n))
	}
	if n := counts[types.PriorityMedium]; n > 0 {
		insights = append(insights, fmt.Sprintf("%d medium priority issue(s) from static analysis", n))
	}
	if n := counts[types.PriorityLow]; n > 0 {
		insights = append(insights, fmt.Sprintf("%d low priority warning(s) can wait", n))
	}

	limit := 3
	if len(open) < limit {
		limit = len(open)
	}
	for _, bug := range open[:limit] {
		if bug.SuggestedFix != "" {
			suggestions = append(suggestions, bug.SuggestedFix)
			continue
		}
		suggestions = append(suggestions, defaultSuggestion(bug))
	}
	return insights, suggestions
}

func defaultSuggestion(bug types.ProcessedError) string {
	where := ""
	if bug.Location != nil {
		where = " at " + bug.Location.String()
	}
	switch bug.Kind {
	case types.KindLint:
		return fmt.Sprintf("Run eslint --fix for %q%s", bug.Message, where)
	case types.KindTypecheck:
		return fmt.Sprintf("Fix the type error%s: %s", where, bug.Message)
	case types.KindBuild:
		return "Fix the build failure: " + bug.Message
	case types.KindTest:
		return "Fix the failing test: " + bug.Message
	case types.KindWebsite:
		return "Fix the runtime page error: " + bug.Message
	}
	return "Investigate: " + bug.Message
}
