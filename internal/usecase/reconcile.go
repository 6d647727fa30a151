package usecase

import (
	"sort"

	"github.com/riskibarqy/castilla-calendar/internal/domain/match"
)

// mergeMatchLists concatenates per-source match lists, already ordered by
// source priority, and drops later duplicates of the same real-world
// fixture. The first record for a key wins wholesale; fields are never
// blended across sources, so a reconciled record is always internally
// consistent.
func mergeMatchLists(lists ...[]match.Match) []match.Match {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	merged := make([]match.Match, 0, total)
	seen := make(map[match.Key]struct{}, total)
	for _, list := range lists {
		for _, m := range list {
			key := m.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, m)
		}
	}
	return merged
}

func countScheduled(matches []match.Match) int {
	count := 0
	for _, m := range matches {
		if match.NormalizeStatus(m.Status) == match.StatusScheduled {
			count++
		}
	}
	return count
}

// sortChronological orders matches ascending by date, then kickoff.
func sortChronological(matches []match.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date < matches[j].Date
		}
		return matches[i].KickoffLocal.Before(matches[j].KickoffLocal)
	})
}

// sortRecentFirst orders finished matches newest-first ahead of the
// chronological upcoming list, the shape "recent results + next fixtures"
// consumers want.
func sortRecentFirst(matches []match.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		finishedI := match.IsFinishedStatus(matches[i].Status)
		finishedJ := match.IsFinishedStatus(matches[j].Status)
		if finishedI != finishedJ {
			return finishedI
		}
		if finishedI {
			if matches[i].Date != matches[j].Date {
				return matches[i].Date > matches[j].Date
			}
			return matches[j].KickoffLocal.Before(matches[i].KickoffLocal)
		}
		if matches[i].Date != matches[j].Date {
			return matches[i].Date < matches[j].Date
		}
		return matches[i].KickoffLocal.Before(matches[j].KickoffLocal)
	})
}
