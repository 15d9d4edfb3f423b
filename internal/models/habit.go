package models

import (
	"slices"
	"strings"
)

// Habit represents a recurring practice whose completions are tracked per day
type Habit struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category,omitempty"`
	CompletedDates []string `json:"completedDates"`  // YYYY-MM-DD keys, unordered, unique
	Month          string   `json:"month,omitempty"` // YYYY-MM; empty means global
}

// IsGlobal reports whether the habit is active in every month.
func (h Habit) IsGlobal() bool {
	return h.Month == ""
}

// ActiveIn reports whether the habit counts toward the given month.
func (h Habit) ActiveIn(month string) bool {
	return h.Month == "" || h.Month == month
}

// IsCompleted reports whether date is in the completion set.
func (h Habit) IsCompleted(date string) bool {
	return slices.Contains(h.CompletedDates, date)
}

// WithCompletion returns a copy of h with date added to or removed from the
// completion set. The set never gains a duplicate.
func (h Habit) WithCompletion(date string, done bool) Habit {
	dates := make([]string, 0, len(h.CompletedDates)+1)
	for _, d := range h.CompletedDates {
		if d != date {
			dates = append(dates, d)
		}
	}
	if done {
		dates = append(dates, date)
	}
	h.CompletedDates = dates
	return h
}

// WithoutDates returns a copy of h without any completion matching drop.
func (h Habit) WithoutDates(drop func(date string) bool) Habit {
	dates := make([]string, 0, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		if !drop(d) {
			dates = append(dates, d)
		}
	}
	h.CompletedDates = dates
	return h
}

// Clone returns a deep copy of the habit.
func (h Habit) Clone() Habit {
	h.CompletedDates = slices.Clone(h.CompletedDates)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h
}

// NormalizeName trims surrounding whitespace from a habit or todo label.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}

// ActiveHabits returns the habits active in month, global ones first, each
// group ordered by name.
func ActiveHabits(habits []Habit, month string) []Habit {
	var out []Habit
	for _, h := range habits {
		if h.ActiveIn(month) {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b Habit) int {
		if a.IsGlobal() != b.IsGlobal() {
			if a.IsGlobal() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}
