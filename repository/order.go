package repository

import (
	"sort"

	"github.com/truckmitra/backend/domain"
)

// SortNewestFirst orders loads by posted time descending, breaking ties by id
// so listings are deterministic.
func SortNewestFirst(loads []domain.Load) {
	sort.SliceStable(loads, func(i, j int) bool {
		if loads[i].PostedAt.Equal(loads[j].PostedAt) {
			return loads[i].ID > loads[j].ID
		}
		return loads[i].PostedAt.After(loads[j].PostedAt)
	})
}

// MatchStatus reports whether status is one of statuses; an empty filter matches everything.
func MatchStatus(status domain.Status, statuses []domain.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
