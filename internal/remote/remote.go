// Package remote defines the persistence collaborator the store dispatches
// mutations to, along with in-memory and SQL implementations.
package remote

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnscopedWrite     = errors.New("refusing to write without a filter")
	ErrNotFound          = errors.New("no matching rows")
)

// Collection names a remote table.
type Collection string

const (
	Habits           Collection = "habits"
	HabitCompletions Collection = "habit_completions"
	Achievements     Collection = "achievements"
	Todos            Collection = "todos"
	JournalEntries   Collection = "journal_entries"
	Metrics          Collection = "metrics"
)

// Collections lists every collection, in the order a full resync inserts them.
var Collections = []Collection{Habits, HabitCompletions, Achievements, Todos, JournalEntries, Metrics}

// Provider is the remote store. Every call is scoped by the caller through
// a user_id column in the row or filter.
type Provider interface {
	// Select returns rows matching every condition in f.
	Select(ctx context.Context, c Collection, f Filter) ([]Row, error)
	// Insert creates a row and returns the id the store assigned. Collections
	// without an id column return "".
	Insert(ctx context.Context, c Collection, row Row) (string, error)
	// Update sets the columns in patch on rows matching f.
	Update(ctx context.Context, c Collection, f Filter, patch Row) error
	// Delete removes rows matching f. An empty filter is rejected.
	Delete(ctx context.Context, c Collection, f Filter) error
	// Upsert inserts row, or replaces the non-key columns of the row that
	// shares its conflictKey values.
	Upsert(ctx context.Context, c Collection, row Row, conflictKey []string) error
	Close() error
}

type schema struct {
	columns []string
	hasID   bool
	orderBy string
}

var schemas = map[Collection]schema{
	Habits:           {columns: []string{"id", "user_id", "name", "category", "month"}, hasID: true, orderBy: "id"},
	HabitCompletions: {columns: []string{"habit_id", "completed_date", "user_id"}, orderBy: "completed_date"},
	Achievements:     {columns: []string{"id", "user_id", "text", "month"}, hasID: true, orderBy: "id"},
	Todos:            {columns: []string{"id", "user_id", "text", "completed", "type", "created_at"}, hasID: true, orderBy: "created_at"},
	JournalEntries:   {columns: []string{"user_id", "date", "content"}, orderBy: "date"},
	Metrics:          {columns: []string{"id", "user_id", "date", "label", "value"}, hasID: true, orderBy: "date"},
}

func schemaFor(c Collection) (schema, error) {
	s, ok := schemas[c]
	if !ok {
		return schema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	return s, nil
}

func (s schema) checkColumns(c Collection, cols ...string) error {
	for _, col := range cols {
		if !slices.Contains(s.columns, col) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, c, col)
		}
	}
	return nil
}

// HasID reports whether rows in c carry a store-assigned id.
func HasID(c Collection) bool {
	return schemas[c].hasID
}
