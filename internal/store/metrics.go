package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/utils"
)

// SetMetric records value for (date, label), replacing any earlier reading
// for the same pair, and returns the metric's id.
func (s *Store) SetMetric(date, label string, value float64) (string, error) {
	if !utils.IsValidDateKey(date) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "", errors.New("metric label cannot be empty")
	}

	m := models.Metric{Date: date, Label: label, Value: value}
	var prev *models.Metric
	uid, online := s.user()
	s.apply(func(st *models.Snapshot) {
		i := slices.IndexFunc(st.Metrics, func(x models.Metric) bool { return x.Date == date && x.Label == label })
		if i >= 0 {
			old := st.Metrics[i]
			prev = &old
			m.ID = old.ID
			st.Metrics[i].Value = value
			return
		}
		m.ID = newTempID()
		if online {
			s.beginCreateLocked(m.ID)
		}
		st.Metrics = append(st.Metrics, m)
	})
	if !online {
		return m.ID, nil
	}

	s.dispatch("upsert", remote.Metrics, func(ctx context.Context) error {
		err := s.remote.Upsert(ctx, remote.Metrics, metricRow(uid, m), metricKey)
		if prev != nil {
			return err
		}
		if err != nil {
			s.finishCreate(remote.Metrics, m.ID, "")
			return err
		}
		// Upsert returns no id; read it back to reconcile the new metric.
		rows, err := s.remote.Select(ctx, remote.Metrics, remote.ByUser(uid, remote.Eq("date", date), remote.Eq("label", label)))
		if err == nil && len(rows) == 0 {
			err = fmt.Errorf("metric %s/%s after upsert: %w", date, label, remote.ErrNotFound)
		}
		if err != nil {
			s.finishCreate(remote.Metrics, m.ID, "")
			return err
		}
		s.finishCreate(remote.Metrics, m.ID, rows[0].String("id"))
		return nil
	}, func(st *models.Snapshot) {
		i := s.metricIndex(m.ID)
		if i < 0 || st.Metrics[i].Value != value {
			return
		}
		if prev != nil {
			st.Metrics[i].Value = prev.Value
		} else {
			st.Metrics = slices.Delete(st.Metrics, i, i+1)
		}
	})
	return m.ID, nil
}

// Metrics returns the readings for date.
func (s *Store) Metrics(date string) []models.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Metric
	for _, m := range s.state.Metrics {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out
}
