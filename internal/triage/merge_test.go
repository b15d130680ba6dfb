package triage

import (
	"testing"
	"time"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

func TestMergeInto_NewBugs(t *testing.T) {
	l := &types.RepositoryLedger{}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	appended, updated := MergeInto(l, []ClassifiedError{
		{TaskName: "lint", Kind: types.KindLint, Severity: types.PriorityMedium, Message: "unused var", Location: &types.Location{File: "src/a.ts", Line: 10}, Count: 2},
		{TaskName: "typecheck", Kind: types.KindTypecheck, Severity: types.PriorityHigh, Message: "TS2322", Location: &types.Location{File: "src/b.ts", Line: 3}, Count: 1},
	}, now)

	if appended != 2 || updated != 0 {
		t.Fatalf("appended=%d updated=%d, want 2/0", appended, updated)
	}
	if len(l.Bugs) != 2 {
		t.Fatalf("ledger has %d bugs, want 2", len(l.Bugs))
	}

	first := l.Bugs[0]
	if first.ID != 1 || l.Bugs[1].ID != 2 {
		t.Errorf("ids = %d,%d, want 1,2", first.ID, l.Bugs[1].ID)
	}
	if first.Occurrences != 2 {
		t.Errorf("occurrences = %d, want cluster count 2", first.Occurrences)
	}
	if first.Status != "unchecked" {
		t.Errorf("status = %q, want unchecked", first.Status)
	}
	if !first.FirstSeen.Equal(now) || !first.LastSeen.Equal(now) {
		t.Errorf("timestamps not set to merge time")
	}
	if first.Priority != types.PriorityMedium || first.Severity != types.PriorityMedium {
		t.Errorf("priority/severity = %s/%s", first.Priority, first.Severity)
	}
}

func TestMergeInto_ExistingBugIncrements(t *testing.T) {
	firstSeen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := &types.RepositoryLedger{Bugs: []types.ProcessedError{{
		ID:          1,
		TaskName:    "lint",
		Message:     "unused var",
		Location:    &types.Location{File: "src/a.ts", Line: 10, Column: 5},
		FirstSeen:   firstSeen,
		LastSeen:    firstSeen,
		Occurrences: 2,
		Status:      "unchecked",
	}}}

	later := firstSeen.Add(time.Hour)
	// Same message, task, file, and line. Column differs and must not matter.
	appended, updated := MergeInto(l, []ClassifiedError{
		{TaskName: "lint", Kind: types.KindLint, Severity: types.PriorityMedium, Message: "unused var", Location: &types.Location{File: "src/a.ts", Line: 10, Column: 9}, Count: 1},
	}, later)

	if appended != 0 || updated != 1 {
		t.Fatalf("appended=%d updated=%d, want 0/1", appended, updated)
	}
	bug := l.Bugs[0]
	if bug.Occurrences != 3 {
		t.Errorf("occurrences = %d, want 3", bug.Occurrences)
	}
	if !bug.FirstSeen.Equal(firstSeen) {
		t.Errorf("firstSeen must not move on re-submission")
	}
	if !bug.LastSeen.Equal(later) {
		t.Errorf("lastSeen must advance to %v, got %v", later, bug.LastSeen)
	}
}

func TestMergeInto_BackfillsSuggestedFix(t *testing.T) {
	l := &types.RepositoryLedger{Bugs: []types.ProcessedError{{
		ID: 1, TaskName: "lint", Message: "unused var",
	}}}

	MergeInto(l, []ClassifiedError{
		{TaskName: "lint", Message: "unused var", SuggestedFix: "remove the variable", Count: 1},
	}, time.Now())

	if l.Bugs[0].SuggestedFix != "remove the variable" {
		t.Errorf("empty suggestedFix should be backfilled, got %q", l.Bugs[0].SuggestedFix)
	}

	// An existing fix is never overwritten.
	MergeInto(l, []ClassifiedError{
		{TaskName: "lint", Message: "unused var", SuggestedFix: "different advice", Count: 1},
	}, time.Now())

	if l.Bugs[0].SuggestedFix != "remove the variable" {
		t.Errorf("existing suggestedFix overwritten: %q", l.Bugs[0].SuggestedFix)
	}
}

func TestMergeInto_IDsNeverReused(t *testing.T) {
	// Bug 2 was resolved and the slice compacted around it previously; the
	// highest historical ID still wins.
	l := &types.RepositoryLedger{Bugs: []types.ProcessedError{
		{ID: 1, TaskName: "lint", Message: "a"},
		{ID: 5, TaskName: "lint", Message: "b"},
	}}

	MergeInto(l, []ClassifiedError{
		{TaskName: "build", Kind: types.KindBuild, Severity: types.PriorityHigh, Message: "boom", Count: 1},
	}, time.Now())

	if got := l.Bugs[2].ID; got != 6 {
		t.Errorf("new bug id = %d, want 6", got)
	}
}

func TestMergeInto_DuplicateClustersInOneSubmission(t *testing.T) {
	l := &types.RepositoryLedger{}

	// Two clusters with the same dedup key in a single call: the second
	// must update the bug the first one just appended.
	appended, updated := MergeInto(l, []ClassifiedError{
		{TaskName: "lint", Message: "dup", Count: 1},
		{TaskName: "lint", Message: "dup", Count: 1},
	}, time.Now())

	if appended != 1 || updated != 1 {
		t.Fatalf("appended=%d updated=%d, want 1/1", appended, updated)
	}
	if len(l.Bugs) != 1 || l.Bugs[0].Occurrences != 2 {
		t.Errorf("bugs=%d occurrences=%d, want 1 bug with 2 occurrences", len(l.Bugs), l.Bugs[0].Occurrences)
	}
}
