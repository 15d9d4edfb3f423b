package remote

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is an in-process Provider. It backs the "memory" driver and tests.
type Memory struct {
	mu     sync.Mutex
	tables map[Collection][]Row
	ids    *idGenerator
}

var _ Provider = (*Memory)(nil)

func NewMemory() (*Memory, error) {
	ids, err := newIDGenerator(1)
	if err != nil {
		return nil, err
	}
	return &Memory{tables: make(map[Collection][]Row), ids: ids}, nil
}

func (m *Memory) Select(ctx context.Context, c Collection, f Filter) ([]Row, error) {
	if err := m.check(ctx, c, f.Columns()...); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for _, r := range m.tables[c] {
		if f.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, c Collection, row Row) (string, error) {
	if err := m.check(ctx, c, slices.Collect(maps.Keys(row))...); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row = row.Clone()
	var id string
	if HasID(c) {
		id = m.ids.next()
		row["id"] = id
	}
	m.tables[c] = append(m.tables[c], row)
	return id, nil
}

func (m *Memory) Update(ctx context.Context, c Collection, f Filter, patch Row) error {
	if len(f) == 0 {
		return ErrUnscopedWrite
	}
	if err := m.check(ctx, c, append(f.Columns(), slices.Collect(maps.Keys(patch))...)...); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.tables[c] {
		if f.Matches(r) {
			maps.Copy(r, patch)
		}
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, c Collection, f Filter) error {
	if len(f) == 0 {
		return ErrUnscopedWrite
	}
	if err := m.check(ctx, c, f.Columns()...); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[c] = slices.DeleteFunc(m.tables[c], f.Matches)
	return nil
}

func (m *Memory) Upsert(ctx context.Context, c Collection, row Row, conflictKey []string) error {
	if len(conflictKey) == 0 {
		return ErrUnscopedWrite
	}
	if err := m.check(ctx, c, append(slices.Collect(maps.Keys(row)), conflictKey...)...); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	match := make(Filter, 0, len(conflictKey))
	for _, k := range conflictKey {
		match = append(match, Eq(k, row[k]))
	}
	for _, r := range m.tables[c] {
		if match.Matches(r) {
			for k, v := range row {
				if k != "id" {
					r[k] = v
				}
			}
			return nil
		}
	}

	row = row.Clone()
	if HasID(c) && row.String("id") == "" {
		row["id"] = m.ids.next()
	}
	m.tables[c] = append(m.tables[c], row)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Len returns the number of rows in c.
func (m *Memory) Len(c Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[c])
}

func (m *Memory) check(ctx context.Context, c Collection, cols ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := schemaFor(c)
	if err != nil {
		return err
	}
	return s.checkColumns(c, cols...)
}
