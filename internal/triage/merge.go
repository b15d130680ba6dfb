package triage

import (
	"time"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// MergeInto folds classified clusters into a ledger snapshot. A cluster
// whose dedup key (message, taskName, file, line) matches an existing bug
// increments that bug's occurrence count and advances lastSeen; anything
// else is appended as a new bug. The invariant that no two bugs share a
// dedup key holds by construction.
func MergeInto(l *types.RepositoryLedger, classified []ClassifiedError, now time.Time) (appended, updated int) {
	index := make(map[types.DedupKey]int, len(l.Bugs))
	for i, bug := range l.Bugs {
		index[bug.Dedup()] = i
	}

	for _, ce := range classified {
		key := types.DedupKey{Message: ce.Message, TaskName: ce.TaskName}
		if ce.Location != nil {
			key.File = ce.Location.File
			key.Line = ce.Location.Line
		}

		if i, ok := index[key]; ok {
			l.Bugs[i].Occurrences += ce.Count
			l.Bugs[i].LastSeen = now
			if ce.SuggestedFix != "" && l.Bugs[i].SuggestedFix == "" {
				l.Bugs[i].SuggestedFix = ce.SuggestedFix
			}
			updated++
			continue
		}

		bug := types.ProcessedError{
			ID:           l.NextBugID(),
			TaskName:     ce.TaskName,
			Kind:         ce.Kind,
			Severity:     ce.Severity,
			Priority:     ce.Severity,
			Message:      ce.Message,
			Location:     ce.Location,
			FirstSeen:    now,
			LastSeen:     now,
			Occurrences:  ce.Count,
			Category:     ce.Category,
			SuggestedFix: ce.SuggestedFix,
			Status:       "unchecked",
		}
		index[bug.Dedup()] = len(l.Bugs)
		l.Bugs = append(l.Bugs, bug)
		appended++
	}
	return appended, updated
}
