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

// AddAchievement records an achievement for month and returns its temporary id.
func (s *Store) AddAchievement(month, text string) (string, error) {
	text = models.NormalizeName(text)
	if text == "" {
		return "", errors.New("achievement text cannot be empty")
	}
	if !utils.IsValidMonthKey(month) {
		return "", fmt.Errorf("invalid month %q (expected YYYY-MM)", month)
	}

	a := models.Achievement{ID: newTempID(), Month: month, Text: text}
	uid, online := s.user()
	if online {
		s.beginCreate(a.ID)
	}
	s.apply(func(st *models.Snapshot) {
		st.Achievements = append(st.Achievements, a)
	})
	if !online {
		return a.ID, nil
	}

	s.dispatch("add", remote.Achievements, func(ctx context.Context) error {
		return s.insertAndReconcile(ctx, remote.Achievements, a.ID, achievementRow(uid, a))
	}, func(st *models.Snapshot) {
		st.Achievements = slices.DeleteFunc(st.Achievements, func(x models.Achievement) bool { return x.ID == a.ID })
	})
	return a.ID, nil
}

// RemoveAchievement deletes an achievement.
func (s *Store) RemoveAchievement(id string) error {
	var removed models.Achievement
	idx := -1
	s.apply(func(st *models.Snapshot) {
		idx = s.achievementIndex(id)
		if idx < 0 {
			return
		}
		removed = st.Achievements[idx]
		st.Achievements = slices.Delete(st.Achievements, idx, idx+1)
	})
	if idx < 0 {
		return fmt.Errorf("achievement %s: %w", id, ErrNotFound)
	}

	uid, online := s.user()
	if !online {
		return nil
	}

	s.dispatch("remove", remote.Achievements, func(ctx context.Context) error {
		rid, err := s.resolve(ctx, id)
		if err != nil {
			return err
		}
		return s.remote.Delete(ctx, remote.Achievements, remote.ByUser(uid, remote.Eq("id", rid)))
	}, func(st *models.Snapshot) {
		st.Achievements = slices.Insert(st.Achievements, min(idx, len(st.Achievements)), removed)
	})
	return nil
}
