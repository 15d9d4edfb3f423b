package store

import (
	"context"
	"fmt"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/utils"
)

// SetJournal writes the entry for date. Blank content deletes the entry
// locally and remotely; the journal never holds a blank value.
func (s *Store) SetJournal(date, content string) error {
	if !utils.IsValidDateKey(date) {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	blank := models.IsBlank(content)
	var prev string
	var hadPrev bool
	s.apply(func(st *models.Snapshot) {
		prev, hadPrev = st.Journal[date]
		if blank {
			delete(st.Journal, date)
		} else {
			st.Journal[date] = content
		}
	})

	uid, online := s.user()
	if !online {
		return nil
	}

	undo := func(st *models.Snapshot) {
		cur, ok := st.Journal[date]
		// A later write has already replaced this one.
		if blank && ok || !blank && (!ok || cur != content) {
			return
		}
		if hadPrev {
			st.Journal[date] = prev
		} else {
			delete(st.Journal, date)
		}
	}

	if blank {
		s.dispatch("delete", remote.JournalEntries, func(ctx context.Context) error {
			return s.remote.Delete(ctx, remote.JournalEntries, remote.ByUser(uid, remote.Eq("date", date)))
		}, undo)
		return nil
	}

	s.dispatch("upsert", remote.JournalEntries, func(ctx context.Context) error {
		return s.remote.Upsert(ctx, remote.JournalEntries, journalRow(uid, date, content), journalKey)
	}, undo)
	return nil
}

// Journal returns the entry for date.
func (s *Store) Journal(date string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.Journal[date]
	return c, ok
}
