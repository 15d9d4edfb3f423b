package store

import (
	"context"
	"fmt"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
)

// MergeResult counts what an import added.
type MergeResult struct {
	Habits  int
	Todos   int
	Journal int
}

// MergeImport merges an import without deleting anything. Journal entries
// overwrite only their own dates; habits and todos are appended with fresh
// ids and are not matched against existing ones.
func (s *Store) MergeImport(p models.PartialSnapshot) (MergeResult, error) {
	if p.IsEmpty() {
		return MergeResult{}, ErrEmptyImport
	}

	var habits []models.Habit
	for _, h := range p.Habits {
		if name := models.NormalizeName(h.Name); name != "" {
			h = uniqueDates(h.Clone())
			h.ID, h.Name = newTempID(), name
			habits = append(habits, h)
		}
	}
	var todos []models.Todo
	for _, t := range p.Todos {
		if text := models.NormalizeName(t.Text); text != "" {
			t.ID, t.Text = newTempID(), text
			if !t.Type.Valid() {
				t.Type = models.TodoDaily
			}
			if t.CreatedAt.IsZero() {
				t.CreatedAt = s.opts.Now()
			}
			todos = append(todos, t)
		}
	}
	journal := make(map[string]string)
	for date, content := range p.Journal {
		if !models.IsBlank(content) {
			journal[date] = content
		}
	}
	res := MergeResult{Habits: len(habits), Todos: len(todos), Journal: len(journal)}
	if res == (MergeResult{}) {
		return res, ErrEmptyImport
	}

	uid, online := s.user()
	if online {
		for _, ref := range entityRefs(models.Snapshot{Habits: habits, Todos: todos}) {
			s.beginCreate(ref.id)
		}
	}
	s.apply(func(st *models.Snapshot) {
		st.Habits = append(st.Habits, habits...)
		st.Todos = append(st.Todos, todos...)
		for date, content := range journal {
			st.Journal[date] = content
		}
	})
	if !online {
		return res, nil
	}

	for _, h := range habits {
		s.dispatch("import", remote.Habits, func(ctx context.Context) error {
			return s.pushHabit(ctx, uid, h)
		}, nil)
	}
	for _, t := range todos {
		s.dispatch("import", remote.Todos, func(ctx context.Context) error {
			return s.insertAndReconcile(ctx, remote.Todos, t.ID, todoRow(uid, t))
		}, nil)
	}
	for date, content := range journal {
		s.dispatch("import", remote.JournalEntries, func(ctx context.Context) error {
			return s.remote.Upsert(ctx, remote.JournalEntries, journalRow(uid, date, content), journalKey)
		}, nil)
	}
	return res, nil
}

// pushHabit inserts a habit and then its completions under the server id.
func (s *Store) pushHabit(ctx context.Context, uid string, h models.Habit) error {
	if err := s.insertAndReconcile(ctx, remote.Habits, h.ID, habitRow(uid, h)); err != nil {
		return err
	}
	rid, err := s.resolve(ctx, h.ID)
	if err != nil {
		return err
	}
	for _, d := range h.CompletedDates {
		if _, err := s.remote.Insert(ctx, remote.HabitCompletions, completionRow(uid, rid, d)); err != nil {
			return fmt.Errorf("habit %s completion %s: %w", rid, d, err)
		}
	}
	return nil
}

// Restore replaces the whole state with snap. An invalid snapshot is
// rejected and the current state is left as it was. When online the remote
// copy is wiped and rebuilt from snap, reconciling ids as rows come back.
func (s *Store) Restore(snap models.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	next := normalize(snap)

	uid, online := s.user()
	if online {
		var ids []string
		for _, ref := range entityRefs(next) {
			ids = append(ids, ref.id)
		}
		s.beginCreate(ids...)
	}
	s.apply(func(st *models.Snapshot) {
		*st = next.Clone()
	})
	if !online {
		return nil
	}

	s.dispatch("restore", allCollections, func(ctx context.Context) error {
		return s.resync(ctx, uid, next)
	}, nil)
	return nil
}

type entityRef struct {
	c  remote.Collection
	id string
}

// entityRefs lists every entity in snap that carries an id.
func entityRefs(snap models.Snapshot) []entityRef {
	var refs []entityRef
	for _, h := range snap.Habits {
		refs = append(refs, entityRef{remote.Habits, h.ID})
	}
	for _, t := range snap.Todos {
		refs = append(refs, entityRef{remote.Todos, t.ID})
	}
	for _, a := range snap.Achievements {
		refs = append(refs, entityRef{remote.Achievements, a.ID})
	}
	for _, m := range snap.Metrics {
		refs = append(refs, entityRef{remote.Metrics, m.ID})
	}
	return refs
}

// resync wipes the user's remote rows and re-inserts snap. Every pending id
// is resolved even when a step fails, so no waiter blocks forever.
func (s *Store) resync(ctx context.Context, uid string, snap models.Snapshot) (err error) {
	defer func() {
		if err != nil {
			for _, ref := range entityRefs(snap) {
				s.finishCreate(ref.c, ref.id, "")
			}
		}
	}()

	if err := s.deleteAll(ctx, uid); err != nil {
		return fmt.Errorf("clearing remote: %w", err)
	}
	for _, h := range snap.Habits {
		if err := s.pushHabit(ctx, uid, h); err != nil {
			return err
		}
	}
	for _, t := range snap.Todos {
		if err := s.insertAndReconcile(ctx, remote.Todos, t.ID, todoRow(uid, t)); err != nil {
			return err
		}
	}
	for _, a := range snap.Achievements {
		if err := s.insertAndReconcile(ctx, remote.Achievements, a.ID, achievementRow(uid, a)); err != nil {
			return err
		}
	}
	for date, content := range snap.Journal {
		if err := s.remote.Upsert(ctx, remote.JournalEntries, journalRow(uid, date, content), journalKey); err != nil {
			return err
		}
	}
	for _, m := range snap.Metrics {
		if err := s.remote.Upsert(ctx, remote.Metrics, metricRow(uid, m), metricKey); err != nil {
			s.finishCreate(remote.Metrics, m.ID, "")
			return err
		}
		rows, err := s.remote.Select(ctx, remote.Metrics, remote.ByUser(uid, remote.Eq("date", m.Date), remote.Eq("label", m.Label)))
		if err != nil {
			return err
		}
		sid := ""
		if len(rows) > 0 {
			sid = rows[0].String("id")
		}
		s.finishCreate(remote.Metrics, m.ID, sid)
	}
	return nil
}
