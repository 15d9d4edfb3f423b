package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/utils"
)

// AddHabit creates a habit and returns its temporary id. An empty month makes
// the habit global.
func (s *Store) AddHabit(name, category, month string) (string, error) {
	name = models.NormalizeName(name)
	if name == "" {
		return "", errors.New("habit name cannot be empty")
	}
	if month != "" && !utils.IsValidMonthKey(month) {
		return "", fmt.Errorf("invalid month %q (expected YYYY-MM)", month)
	}

	h := models.Habit{ID: newTempID(), Name: name, Category: models.NormalizeName(category), Month: month, CompletedDates: []string{}}
	uid, online := s.user()
	if online {
		s.beginCreate(h.ID)
	}
	s.apply(func(st *models.Snapshot) {
		st.Habits = append(st.Habits, h)
	})
	if !online {
		return h.ID, nil
	}

	s.dispatch("add", remote.Habits, func(ctx context.Context) error {
		return s.insertAndReconcile(ctx, remote.Habits, h.ID, habitRow(uid, h))
	}, func(st *models.Snapshot) {
		st.Habits = slices.DeleteFunc(st.Habits, func(x models.Habit) bool { return x.ID == h.ID })
	})
	return h.ID, nil
}

// ToggleHabit flips whether the habit was completed on date and returns the
// new state. Insert-or-delete is decided from the state before the flip.
func (s *Store) ToggleHabit(habitID, date string) (bool, error) {
	if !utils.IsValidDateKey(date) {
		return false, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	found, wasDone := false, false
	s.apply(func(st *models.Snapshot) {
		i := s.habitIndex(habitID)
		if i < 0 {
			return
		}
		found = true
		wasDone = st.Habits[i].IsCompleted(date)
		st.Habits[i] = st.Habits[i].WithCompletion(date, !wasDone)
	})
	if !found {
		return false, fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
	}

	uid, online := s.user()
	if !online {
		return !wasDone, nil
	}

	op := "complete"
	if wasDone {
		op = "uncomplete"
	}
	s.dispatch(op, remote.HabitCompletions, func(ctx context.Context) error {
		rid, err := s.resolve(ctx, habitID)
		if err != nil {
			return err
		}
		if wasDone {
			return s.remote.Delete(ctx, remote.HabitCompletions,
				remote.ByUser(uid, remote.Eq("habit_id", rid), remote.Eq("completed_date", date)))
		}
		_, err = s.remote.Insert(ctx, remote.HabitCompletions, completionRow(uid, rid, date))
		return err
	}, func(st *models.Snapshot) {
		i := s.habitIndex(habitID)
		// Only revert if no later toggle has already moved it back.
		if i >= 0 && st.Habits[i].IsCompleted(date) != wasDone {
			st.Habits[i] = st.Habits[i].WithCompletion(date, wasDone)
		}
	})
	return !wasDone, nil
}

// RemoveHabit deletes a habit and its completion records.
func (s *Store) RemoveHabit(habitID string) error {
	var removed models.Habit
	idx := -1
	s.apply(func(st *models.Snapshot) {
		idx = s.habitIndex(habitID)
		if idx < 0 {
			return
		}
		removed = st.Habits[idx]
		st.Habits = slices.Delete(st.Habits, idx, idx+1)
	})
	if idx < 0 {
		return fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
	}

	uid, online := s.user()
	if !online {
		return nil
	}

	s.dispatch("remove", remote.Habits, func(ctx context.Context) error {
		rid, err := s.resolve(ctx, habitID)
		if err != nil {
			return err
		}
		if err := s.remote.Delete(ctx, remote.HabitCompletions, remote.ByUser(uid, remote.Eq("habit_id", rid))); err != nil {
			return err
		}
		return s.remote.Delete(ctx, remote.Habits, remote.ByUser(uid, remote.Eq("id", rid)))
	}, func(st *models.Snapshot) {
		st.Habits = slices.Insert(st.Habits, min(idx, len(st.Habits)), removed)
	})
	return nil
}
