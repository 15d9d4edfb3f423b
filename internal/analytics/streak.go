// Package analytics derives read-only statistics from habit completion sets.
package analytics

import (
	"slices"
	"time"

	"github.com/julianstephens/daylog/internal/utils"
)

// Streaks summarizes one habit's completion history.
type Streaks struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
	Total   int `json:"totalCompletions"`
}

// ComputeStreaks computes streaks from a completion set relative to today.
//
// The current streak is alive only if the most recent completion is today or
// yesterday; it then counts consecutive days walking backwards. Duplicate keys
// and keys that do not parse are ignored.
func ComputeStreaks(completedDates []string, today time.Time) Streaks {
	days := sortedDays(completedDates)
	if len(days) == 0 {
		return Streaks{}
	}

	return Streaks{
		Current: currentStreak(days, today),
		Longest: longestStreak(days),
		Total:   len(days),
	}
}

func currentStreak(days []time.Time, today time.Time) int {
	last := len(days) - 1
	if utils.CalendarDayDiff(today, days[last]) > 1 {
		return 0
	}

	streak := 1
	for i := last; i > 0; i-- {
		switch utils.CalendarDayDiff(days[i], days[i-1]) {
		case 0:
			continue
		case 1:
			streak++
		default:
			return streak
		}
	}
	return streak
}

func longestStreak(days []time.Time) int {
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		switch gap := utils.CalendarDayDiff(days[i], days[i-1]); {
		case gap == 0:
		case gap == 1:
			run++
		default:
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// sortedDays parses, de-duplicates and sorts date keys ascending.
func sortedDays(keys []string) []time.Time {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	// Zero-padded keys sort lexically in calendar order.
	slices.Sort(uniq)

	days := make([]time.Time, 0, len(uniq))
	for _, k := range uniq {
		d, err := utils.ParseDateKey(k)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}
