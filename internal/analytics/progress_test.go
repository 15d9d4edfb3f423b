package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/daylog/internal/models"
)

func monthDates(month string, from, to int) []string {
	var out []string
	for d := from; d <= to; d++ {
		out = append(out, fmt.Sprintf("%s-%02d", month, d))
	}
	return out
}

func TestComputeProgressMonthly(t *testing.T) {
	// February 2026 has 28 days; today is its last day.
	today := time.Date(2026, time.February, 28, 20, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		habits []models.Habit
		want   int
	}{
		{
			name:   "global habit every day",
			habits: []models.Habit{{ID: "a", CompletedDates: monthDates("2026-02", 1, 28)}},
			want:   100,
		},
		{
			name:   "global habit never",
			habits: []models.Habit{{ID: "a", CompletedDates: []string{}}},
			want:   0,
		},
		{
			name:   "half the month",
			habits: []models.Habit{{ID: "a", CompletedDates: monthDates("2026-02", 1, 14)}},
			want:   50,
		},
		{
			name: "habit scoped to another month is excluded",
			habits: []models.Habit{
				{ID: "a", CompletedDates: monthDates("2026-02", 1, 28)},
				{ID: "b", Month: "2026-01", CompletedDates: monthDates("2026-01", 1, 31)},
			},
			want: 100,
		},
		{
			name: "habit scoped to this month counts",
			habits: []models.Habit{
				{ID: "a", CompletedDates: monthDates("2026-02", 1, 28)},
				{ID: "b", Month: "2026-02"},
			},
			want: 50,
		},
		{
			name:   "no habits",
			habits: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProgress(tt.habits, today, today)
			if got.Monthly != tt.want {
				t.Errorf("Monthly = %d, want %d", got.Monthly, tt.want)
			}
		})
	}
}

func TestComputeProgressClampsTo100(t *testing.T) {
	today := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.Local)
	reference := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.Local)

	// Keys past the 28th are malformed but still inside the month range.
	h := models.Habit{ID: "a", CompletedDates: monthDates("2026-02", 1, 31)}
	got := ComputeProgress([]models.Habit{h}, reference, today)
	if got.Monthly != 100 {
		t.Errorf("Monthly = %d, want 100", got.Monthly)
	}
	if got.Yearly > 100 {
		t.Errorf("Yearly = %d exceeds 100", got.Yearly)
	}
}

func TestComputeProgressExcludesFutureCompletions(t *testing.T) {
	today := time.Date(2026, time.April, 10, 9, 0, 0, 0, time.Local)
	h := models.Habit{ID: "a", CompletedDates: monthDates("2026-04", 1, 30)}

	got := ComputeProgress([]models.Habit{h}, today, today)
	// 10 countable completions out of 30 possible days.
	if got.Monthly != 33 {
		t.Errorf("Monthly = %d, want 33", got.Monthly)
	}
	// Jan 1 through Apr 10 is 100 days.
	if got.Yearly != 10 {
		t.Errorf("Yearly = %d, want 10", got.Yearly)
	}
}

func TestComputeProgressPastMonthCountsAll(t *testing.T) {
	today := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.Local)
	reference := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)
	h := models.Habit{ID: "a", CompletedDates: monthDates("2026-03", 1, 31)}

	if got := ComputeProgress([]models.Habit{h}, reference, today); got.Monthly != 100 {
		t.Errorf("Monthly = %d, want 100", got.Monthly)
	}
}

func TestComputeProgressYearlyUsesAllHabits(t *testing.T) {
	today := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.Local)
	habits := []models.Habit{
		{ID: "a", CompletedDates: monthDates("2026-01", 1, 10)},
		{ID: "b", Month: "2025-12"},
	}

	got := ComputeProgress(habits, today, today)
	if got.Monthly != 32 { // 10 of 31
		t.Errorf("Monthly = %d, want 32", got.Monthly)
	}
	if got.Yearly != 50 { // 10 of 2 habits * 10 days
		t.Errorf("Yearly = %d, want 50", got.Yearly)
	}
}

func TestComputeProgressOtherYear(t *testing.T) {
	today := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.Local)
	reference := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.Local)

	var dates []string
	for _, m := range []string{"2024-01", "2024-02", "2024-03"} {
		dates = append(dates, monthDates(m, 1, 28)...)
	}
	dates = append(dates, "2025-01-01")

	got := ComputeProgress([]models.Habit{{ID: "a", CompletedDates: dates}}, reference, today)
	if got.Yearly != 23 { // 84 of 366
		t.Errorf("Yearly = %d, want 23", got.Yearly)
	}
	if got.Monthly != 97 { // 28 of 29
		t.Errorf("Monthly = %d, want 97", got.Monthly)
	}
}

func TestDaysElapsedInYear(t *testing.T) {
	today := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	tests := []struct {
		year int
		want int
	}{
		{2024, 61},
		{2023, 365},
		{2028, 366},
	}
	for _, tt := range tests {
		if got := DaysElapsedInYear(tt.year, today); got != tt.want {
			t.Errorf("DaysElapsedInYear(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestMonthCompletions(t *testing.T) {
	h := models.Habit{CompletedDates: []string{"2026-01-31", "2026-02-01", "2026-02-14", "2025-02-01"}}
	if got := MonthCompletions(h, "2026-02"); got != 2 {
		t.Errorf("MonthCompletions() = %d, want 2", got)
	}
}
