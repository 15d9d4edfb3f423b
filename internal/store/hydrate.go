package store

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/session"
)

// Hydrate replaces local state with the user's remote rows. Unlike
// mutations it is awaited and returns its error; on failure local state is
// unchanged. Call Wait first so in-flight writes are included.
func (s *Store) Hydrate(ctx context.Context) error {
	uid, online := s.user()
	if !online {
		return session.ErrNoSession
	}

	var mu sync.Mutex
	rows := make(map[remote.Collection][]remote.Row, len(remote.Collections))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range remote.Collections {
		g.Go(func() error {
			rs, err := s.remote.Select(gctx, c, remote.ByUser(uid))
			if err != nil {
				return fmt.Errorf("loading %s: %w", c, err)
			}
			mu.Lock()
			rows[c] = rs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	snap := normalize(snapshotFromRows(rows))
	s.apply(func(st *models.Snapshot) {
		*st = snap
	})
	return nil
}
