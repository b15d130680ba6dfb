// Package next selects the single "work on this next" recommendation from a
// repository ledger's open bugs and tasks.
package next

import (
	"sort"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// ItemType distinguishes what kind of ledger entry was recommended.
type ItemType string

const (
	ItemBug  ItemType = "bug"
	ItemTask ItemType = "task"
)

// Suggestion is the selector's answer. Done is an explicit completion state:
// there is nothing open to work on, which is never represented as a nil or
// empty recommendation.
type Suggestion struct {
	Done     bool           `json:"done"`
	Type     ItemType       `json:"type,omitempty"`
	ID       int            `json:"id,omitempty"`
	Priority types.Priority `json:"priority,omitempty"`
	Title    string         `json:"title,omitempty"`
	Fix      string         `json:"suggestedFix,omitempty"`
}

// candidate normalizes bugs and tasks for sorting.
type candidate struct {
	itemType ItemType
	id       int
	priority types.Priority
	title    string
	fix      string
}

// Select picks one recommendation: highest priority first, bugs before
// tasks at equal priority, then ascending numeric identifier.
func Select(l *types.RepositoryLedger) Suggestion {
	var open []candidate
	for _, b := range l.Bugs {
		if !types.IsOpenStatus(b.Status) {
			continue
		}
		open = append(open, candidate{
			itemType: ItemBug,
			id:       b.ID,
			priority: b.Priority,
			title:    b.Message,
			fix:      b.SuggestedFix,
		})
	}
	for _, t := range l.Tasks {
		if !types.IsOpenStatus(t.Status) {
			continue
		}
		open = append(open, candidate{
			itemType: ItemTask,
			id:       t.ID,
			priority: t.Priority,
			title:    t.Title,
		})
	}

	if len(open) == 0 {
		return Suggestion{Done: true}
	}

	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if a.priority.Rank() != b.priority.Rank() {
			return a.priority.Rank() > b.priority.Rank()
		}
		if a.itemType != b.itemType {
			return a.itemType == ItemBug
		}
		return a.id < b.id
	})

	top := open[0]
	return Suggestion{
		Type:     top.itemType,
		ID:       top.id,
		Priority: top.priority,
		Title:    top.title,
		Fix:      top.fix,
	}
}
