package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
)

var errCreateFailed = errors.New("remote create failed")

// allCollections labels dispatches that touch every collection.
const allCollections remote.Collection = "*"

// tracker counts background dispatches without the reuse rules of
// sync.WaitGroup, so Wait may overlap new mutations.
type tracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *tracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
}

func (t *tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
}

func (t *tracker) wait() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return t.idle
}

func (t *tracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// pendingID is a local id whose remote insert is in flight.
type pendingID struct {
	done chan struct{}
	id   string // server id; empty if the insert failed
}

// Wait blocks until every dispatched remote call has finished or ctx ends.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.tasks.wait():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of remote calls still running.
func (s *Store) Pending() int {
	return s.tasks.count()
}

// Failures returns how many remote calls have failed since the store was created.
func (s *Store) Failures() int64 {
	return s.failures.Load()
}

// dispatch runs fn in the background. On failure the error is logged and,
// when rollback is enabled, undo is applied to local state.
func (s *Store) dispatch(op string, c remote.Collection, fn func(ctx context.Context) error, undo func(st *models.Snapshot)) {
	s.tasks.add()
	go func() {
		defer s.tasks.done()
		ctx := context.Background()

		err := s.limiter.Wait(ctx)
		if err == nil {
			err = fn(ctx)
		}
		if err == nil {
			logger.Debug("Remote dispatch succeeded", "op", op, "collection", c)
			return
		}

		s.failures.Add(1)
		logger.Warn("Remote dispatch failed", "op", op, "collection", c, "error", err)
		if undo != nil && s.opts.RollbackOnFailure {
			logger.Info("Rolling back local change", "op", op, "collection", c)
			s.apply(undo)
		}
	}()
}

// beginCreate marks local ids as awaiting a server id. It is called before
// the entities become visible so no mutation can dispatch them unresolved.
func (s *Store) beginCreate(localIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range localIDs {
		s.beginCreateLocked(id)
	}
}

// beginCreateLocked also forgets earlier outcomes for localID: a restore
// re-creates entities under ids that may have been reconciled or failed
// before.
func (s *Store) beginCreateLocked(localID string) {
	delete(s.aliases, localID)
	delete(s.failed, localID)
	if _, ok := s.inflight[localID]; !ok {
		s.inflight[localID] = &pendingID{done: make(chan struct{})}
	}
}

// insertAndReconcile inserts row and swaps localID for the server id in
// collection c. The match is by id, never by content.
func (s *Store) insertAndReconcile(ctx context.Context, c remote.Collection, localID string, row remote.Row) error {
	serverID, err := s.remote.Insert(ctx, c, row)
	if err != nil {
		s.finishCreate(c, localID, "")
		return err
	}
	s.finishCreate(c, localID, serverID)
	return nil
}

// finishCreate resolves the pending entry for localID. With a server id the
// entity is renamed and the alias recorded in the same critical section, so
// a caller holding localID never observes the entity under neither id. An
// empty serverID marks the create as failed for later resolves.
func (s *Store) finishCreate(c remote.Collection, localID, serverID string) {
	s.mu.Lock()
	if serverID != "" {
		replaceID(&s.state, c, localID, serverID)
		s.aliases[localID] = serverID
	} else {
		s.failed[localID] = struct{}{}
	}
	if p, ok := s.inflight[localID]; ok {
		p.id = serverID
		close(p.done)
		delete(s.inflight, localID)
	}
	var snap models.Snapshot
	publish := serverID != "" && s.opts.OnChange != nil
	if publish {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	if publish {
		s.opts.OnChange(snap)
	}
}

// resolve returns the id to send remotely for a local id, waiting for an
// in-flight create of that entity to finish first. Ids whose create failed
// never resolve: the server has no row for them.
func (s *Store) resolve(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	if sid, ok := s.aliases[id]; ok {
		s.mu.Unlock()
		return sid, nil
	}
	if _, ok := s.failed[id]; ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w for %s", errCreateFailed, id)
	}
	p, ok := s.inflight[id]
	s.mu.Unlock()
	if !ok {
		return id, nil
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if p.id == "" {
		return "", fmt.Errorf("%w for %s", errCreateFailed, id)
	}
	return p.id, nil
}

func replaceID(st *models.Snapshot, c remote.Collection, oldID, newID string) {
	switch c {
	case remote.Habits:
		for i := range st.Habits {
			if st.Habits[i].ID == oldID {
				st.Habits[i].ID = newID
				return
			}
		}
	case remote.Todos:
		for i := range st.Todos {
			if st.Todos[i].ID == oldID {
				st.Todos[i].ID = newID
				return
			}
		}
	case remote.Achievements:
		for i := range st.Achievements {
			if st.Achievements[i].ID == oldID {
				st.Achievements[i].ID = newID
				return
			}
		}
	case remote.Metrics:
		for i := range st.Metrics {
			if st.Metrics[i].ID == oldID {
				st.Metrics[i].ID = newID
				return
			}
		}
	}
}
