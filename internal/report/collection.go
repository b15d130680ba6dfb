// Package report packages a run's detailed errors into the wire payload and
// submits it to the triage service. Transmission is best-effort: a network
// failure is logged and swallowed, never surfaced as a run failure.
package report

import (
	"github.com/google/uuid"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// BuildCollection assembles the transmission payload for one run.
func BuildCollection(identity types.RepoIdentity, stage string, totalDurationMs int64, errs []types.DetailedError) types.ErrorCollection {
	col := types.ErrorCollection{
		SessionID:       uuid.NewString(),
		Repository:      identity,
		Stage:           stage,
		TotalDurationMs: totalDurationMs,
		Errors:          errs,
		Summary: types.CollectionSummary{
			ByTask: make(map[string]int),
			ByType: make(map[string]int),
		},
	}
	for _, e := range errs {
		if e.Severity == types.SeverityWarning {
			col.TotalWarnings++
		} else {
			col.TotalErrors++
		}
		col.Summary.ByTask[e.TaskName]++
		col.Summary.ByType[string(e.Kind)]++
	}
	return col
}
