package analytics

import (
	"testing"
	"time"

	"github.com/julianstephens/daylog/internal/utils"
)

func daysAgo(today time.Time, n int) string {
	return utils.FormatISODate(today.AddDate(0, 0, -n))
}

func TestComputeStreaks(t *testing.T) {
	today := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		dates []string
		want  Streaks
	}{
		{
			name:  "empty",
			dates: nil,
			want:  Streaks{},
		},
		{
			name:  "only today",
			dates: []string{daysAgo(today, 0)},
			want:  Streaks{Current: 1, Longest: 1, Total: 1},
		},
		{
			name:  "only yesterday keeps streak alive",
			dates: []string{daysAgo(today, 1)},
			want:  Streaks{Current: 1, Longest: 1, Total: 1},
		},
		{
			name:  "today and yesterday",
			dates: []string{daysAgo(today, 1), daysAgo(today, 0)},
			want:  Streaks{Current: 2, Longest: 2, Total: 2},
		},
		{
			name:  "today and three days ago",
			dates: []string{daysAgo(today, 3), daysAgo(today, 0)},
			want:  Streaks{Current: 1, Longest: 1, Total: 2},
		},
		{
			name:  "last completion two days ago breaks current",
			dates: []string{daysAgo(today, 4), daysAgo(today, 3), daysAgo(today, 2)},
			want:  Streaks{Current: 0, Longest: 3, Total: 3},
		},
		{
			name: "longest run earlier than current",
			dates: []string{
				daysAgo(today, 20), daysAgo(today, 19), daysAgo(today, 18), daysAgo(today, 17),
				daysAgo(today, 1), daysAgo(today, 0),
			},
			want: Streaks{Current: 2, Longest: 4, Total: 6},
		},
		{
			name:  "unordered input",
			dates: []string{daysAgo(today, 0), daysAgo(today, 2), daysAgo(today, 1)},
			want:  Streaks{Current: 3, Longest: 3, Total: 3},
		},
		{
			name:  "across month boundary",
			dates: []string{"2025-02-27", "2025-02-28", "2025-03-01"},
			want:  Streaks{Current: 0, Longest: 3, Total: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStreaks(tt.dates, today); got != tt.want {
				t.Errorf("ComputeStreaks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeStreaksIgnoresDuplicates(t *testing.T) {
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local)
	clean := []string{daysAgo(today, 5), daysAgo(today, 2), daysAgo(today, 1), daysAgo(today, 0)}
	dup := append([]string{daysAgo(today, 0), daysAgo(today, 1), daysAgo(today, 5)}, clean...)

	want := ComputeStreaks(clean, today)
	if got := ComputeStreaks(dup, today); got != want {
		t.Errorf("with duplicates = %+v, want %+v", got, want)
	}
	if want.Total != 4 {
		t.Errorf("Total = %d, want 4", want.Total)
	}
}

func TestComputeStreaksNearMidnight(t *testing.T) {
	// 00:05 in a zone far east of UTC: today's key must still be the local day.
	loc := time.FixedZone("UTC+13", 13*60*60)
	today := time.Date(2025, time.January, 2, 0, 5, 0, 0, loc)

	got := ComputeStreaks([]string{"2025-01-01", "2025-01-02"}, today)
	if got.Current != 2 {
		t.Errorf("Current = %d, want 2", got.Current)
	}
}
