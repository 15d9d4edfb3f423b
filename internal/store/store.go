// Package store holds the canonical in-memory state and applies every
// mutation optimistically before dispatching it to the remote provider.
//
// Mutations return as soon as local state has changed. Remote calls run in
// the background; their failures are logged and, unless RollbackOnFailure is
// set, never undone locally. Without a logged-in identity or a provider the
// store runs local-only and entities keep their temporary ids.
package store

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/session"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmptyImport = errors.New("nothing to import")
)

const tempIDPrefix = "tmp-"

// Options tunes a Store. The zero value is usable.
type Options struct {
	// RollbackOnFailure reverts single-entity mutations whose remote call
	// fails. Bulk resets, imports and restores are never reverted.
	RollbackOnFailure bool

	// OnChange receives a copy of the state after every local transition,
	// including reconciliations and rollbacks.
	OnChange func(models.Snapshot)

	// Now is the clock used for todo timestamps. Defaults to time.Now.
	Now func() time.Time

	// Rate and Burst throttle remote calls. Rate <= 0 disables throttling.
	Rate  float64
	Burst int
}

// Store is the single writer of the tracked state.
type Store struct {
	mu    sync.Mutex
	state models.Snapshot

	remote   remote.Provider
	identity session.Identity
	opts     Options
	limiter  *rate.Limiter

	// inflight tracks local ids whose remote insert has not finished;
	// aliases maps reconciled local ids to their server ids; failed holds
	// local ids whose insert was rejected.
	inflight map[string]*pendingID
	aliases  map[string]string
	failed   map[string]struct{}

	tasks    tracker
	failures atomic.Int64
}

// New returns a store seeded with initial. provider and identity may be nil
// for local-only use.
func New(initial models.Snapshot, provider remote.Provider, identity session.Identity, opts Options) *Store {
	if identity == nil {
		identity = session.Anonymous()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = constants.DefaultDispatchBurst
	}

	return &Store{
		state:    normalize(initial),
		remote:   provider,
		identity: identity,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, burst),
		inflight: make(map[string]*pendingID),
		aliases:  make(map[string]string),
		failed:   make(map[string]struct{}),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Habit returns the habit with id.
func (s *Store) Habit(id string) (models.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.habitIndex(id)
	if i < 0 {
		return models.Habit{}, false
	}
	return s.state.Habits[i].Clone(), true
}

// Online reports whether mutations are currently dispatched remotely.
func (s *Store) Online() bool {
	_, ok := s.user()
	return ok
}

// UserID returns the identity mutations are scoped to, if any.
func (s *Store) UserID() (string, bool) {
	return s.user()
}

func (s *Store) user() (string, bool) {
	if s.remote == nil {
		return "", false
	}
	return s.identity.UserID()
}

// apply runs fn on the state under the lock and publishes the result.
func (s *Store) apply(fn func(st *models.Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	var snap models.Snapshot
	if s.opts.OnChange != nil {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	if s.opts.OnChange != nil {
		s.opts.OnChange(snap)
	}
}

// liveID maps an id the caller may still hold from before reconciliation
// to the id now in state. Callers hold s.mu.
func (s *Store) liveID(id string) string {
	if sid, ok := s.aliases[id]; ok {
		return sid
	}
	return id
}

func (s *Store) habitIndex(id string) int {
	id = s.liveID(id)
	return slices.IndexFunc(s.state.Habits, func(h models.Habit) bool { return h.ID == id })
}

func (s *Store) todoIndex(id string) int {
	id = s.liveID(id)
	return slices.IndexFunc(s.state.Todos, func(t models.Todo) bool { return t.ID == id })
}

func (s *Store) achievementIndex(id string) int {
	id = s.liveID(id)
	return slices.IndexFunc(s.state.Achievements, func(a models.Achievement) bool { return a.ID == id })
}

func (s *Store) metricIndex(id string) int {
	id = s.liveID(id)
	return slices.IndexFunc(s.state.Metrics, func(m models.Metric) bool { return m.ID == id })
}

func newTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was generated locally and never reconciled.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// normalize enforces the model invariants on loaded state: unique
// completion dates and no blank journal entries.
func normalize(in models.Snapshot) models.Snapshot {
	out := in.Clone()
	for i, h := range out.Habits {
		out.Habits[i] = uniqueDates(h)
	}
	for date, content := range out.Journal {
		if models.IsBlank(content) {
			delete(out.Journal, date)
		}
	}
	return out
}

func uniqueDates(h models.Habit) models.Habit {
	seen := make(map[string]struct{}, len(h.CompletedDates))
	return h.WithoutDates(func(d string) bool {
		if _, dup := seen[d]; dup {
			return true
		}
		seen[d] = struct{}{}
		return false
	})
}
