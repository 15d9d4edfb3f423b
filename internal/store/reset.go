package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/utils"
)

// ResetAll clears every collection. Remote deletes run concurrently since no
// collection depends on another being gone first.
func (s *Store) ResetAll() {
	s.apply(func(st *models.Snapshot) {
		*st = models.NewSnapshot()
	})

	uid, online := s.user()
	if !online {
		return
	}

	s.dispatch("reset", allCollections, func(ctx context.Context) error {
		return s.deleteAll(ctx, uid)
	}, nil)
}

func (s *Store) deleteAll(ctx context.Context, uid string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range remote.Collections {
		g.Go(func() error {
			return s.remote.Delete(ctx, c, remote.ByUser(uid))
		})
	}
	return g.Wait()
}

// ResetMonth removes everything dated or scoped to month and leaves every
// other month untouched: achievements for the month, journal entries and
// metrics whose date starts with it, and habit completions inside its range.
func (s *Store) ResetMonth(month string) error {
	if !utils.IsValidMonthKey(month) {
		return fmt.Errorf("invalid month %q (expected YYYY-MM)", month)
	}
	first, last := utils.MonthBounds(month)
	inRange := func(d string) bool { return d >= first && d <= last }

	s.apply(func(st *models.Snapshot) {
		st.Achievements = slices.DeleteFunc(st.Achievements, func(a models.Achievement) bool {
			return a.Month == month
		})
		for date := range st.Journal {
			if strings.HasPrefix(date, month) {
				delete(st.Journal, date)
			}
		}
		for i, h := range st.Habits {
			st.Habits[i] = h.WithoutDates(inRange)
		}
		st.Metrics = slices.DeleteFunc(st.Metrics, func(m models.Metric) bool {
			return strings.HasPrefix(m.Date, month)
		})
	})

	uid, online := s.user()
	if !online {
		return nil
	}

	s.dispatch("reset-month", allCollections, func(ctx context.Context) error {
		deletes := map[remote.Collection]remote.Filter{
			remote.Achievements:     remote.ByUser(uid, remote.Eq("month", month)),
			remote.JournalEntries:   remote.ByUser(uid, remote.Prefix("date", month)),
			remote.HabitCompletions: remote.ByUser(uid, remote.Gte("completed_date", first), remote.Lte("completed_date", last)),
			remote.Metrics:          remote.ByUser(uid, remote.Prefix("date", month)),
		}
		g, ctx := errgroup.WithContext(ctx)
		for c, f := range deletes {
			g.Go(func() error {
				return s.remote.Delete(ctx, c, f)
			})
		}
		return g.Wait()
	}, nil)
	return nil
}
