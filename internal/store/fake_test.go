package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
	"github.com/julianstephens/daylog/internal/session"
)

var errBoom = errors.New("boom")

type call struct {
	op     string
	c      remote.Collection
	row    remote.Row
	filter remote.Filter
}

// fakeRemote wraps the in-memory provider, recording calls and optionally
// failing or holding them until the test releases them.
type fakeRemote struct {
	*remote.Memory

	mu     sync.Mutex
	calls  []call
	failOn map[remote.Collection]error
	hidden map[remote.Collection]bool
	hold   bool
	held   []chan struct{}
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	m, err := remote.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory failed: %v", err)
	}
	return &fakeRemote{
		Memory: m,
		failOn: make(map[remote.Collection]error),
		hidden: make(map[remote.Collection]bool),
	}
}

func (f *fakeRemote) before(op string, c remote.Collection, row remote.Row, filter remote.Filter) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{op: op, c: c, row: row, filter: filter})
	err := f.failOn[c]
	var gate chan struct{}
	if f.hold {
		gate = make(chan struct{})
		f.held = append(f.held, gate)
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeRemote) Select(ctx context.Context, c remote.Collection, filter remote.Filter) ([]remote.Row, error) {
	if err := f.before("select", c, nil, filter); err != nil {
		return nil, err
	}
	f.mu.Lock()
	hidden := f.hidden[c]
	f.mu.Unlock()
	if hidden {
		return nil, nil
	}
	return f.Memory.Select(ctx, c, filter)
}

func (f *fakeRemote) Insert(ctx context.Context, c remote.Collection, row remote.Row) (string, error) {
	if err := f.before("insert", c, row, nil); err != nil {
		return "", err
	}
	return f.Memory.Insert(ctx, c, row)
}

func (f *fakeRemote) Update(ctx context.Context, c remote.Collection, filter remote.Filter, patch remote.Row) error {
	if err := f.before("update", c, patch, filter); err != nil {
		return err
	}
	return f.Memory.Update(ctx, c, filter, patch)
}

func (f *fakeRemote) Delete(ctx context.Context, c remote.Collection, filter remote.Filter) error {
	if err := f.before("delete", c, nil, filter); err != nil {
		return err
	}
	return f.Memory.Delete(ctx, c, filter)
}

func (f *fakeRemote) Upsert(ctx context.Context, c remote.Collection, row remote.Row, key []string) error {
	if err := f.before("upsert", c, row, nil); err != nil {
		return err
	}
	return f.Memory.Upsert(ctx, c, row, key)
}

func (f *fakeRemote) setHold(hold bool) {
	f.mu.Lock()
	f.hold = hold
	f.mu.Unlock()
}

func (f *fakeRemote) fail(c remote.Collection, err error) {
	f.mu.Lock()
	f.failOn[c] = err
	f.mu.Unlock()
}

// hide makes Select on c report no rows while writes still land.
func (f *fakeRemote) hide(c remote.Collection) {
	f.mu.Lock()
	f.hidden[c] = true
	f.mu.Unlock()
}

// waitHeld blocks until at least n calls are held.
func (f *fakeRemote) waitHeld(t *testing.T, n int) []chan struct{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.held) >= n {
			held := append([]chan struct{}(nil), f.held...)
			f.mu.Unlock()
			return held
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d held calls", n)
	return nil
}

func (f *fakeRemote) callsFor(op string, c remote.Collection) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, cl := range f.calls {
		if cl.op == op && cl.c == c {
			out = append(out, cl)
		}
	}
	return out
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

const testUser = "user-1"

func setupOnlineStore(t *testing.T, initial models.Snapshot, opts Options) (*Store, *fakeRemote) {
	t.Helper()
	f := newFakeRemote(t)
	return New(initial, f, session.Static(testUser), opts), f
}

func waitIdle(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func remoteRows(t *testing.T, f *fakeRemote, c remote.Collection, user string) []remote.Row {
	t.Helper()
	rows, err := f.Memory.Select(context.Background(), c, remote.ByUser(user))
	if err != nil {
		t.Fatalf("Select %s failed: %v", c, err)
	}
	return rows
}
