package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/julianstephens/daylog/internal/utils"
)

// ErrInvalidSnapshot is returned when a document does not have the snapshot shape.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the full tracked state: the document written by export and
// backups and accepted by restore.
type Snapshot struct {
	Habits       []Habit           `json:"habits"`
	Todos        []Todo            `json:"todos"`
	Achievements []Achievement     `json:"achievements"`
	Journal      map[string]string `json:"journal"` // date key -> non-blank content
	Metrics      []Metric          `json:"metrics"`
}

// NewSnapshot returns an empty snapshot with non-nil collections.
func NewSnapshot() Snapshot {
	return Snapshot{
		Habits:       []Habit{},
		Todos:        []Todo{},
		Achievements: []Achievement{},
		Journal:      map[string]string{},
		Metrics:      []Metric{},
	}
}

// Clone returns a deep copy. Nil collections come back empty.
func (s Snapshot) Clone() Snapshot {
	out := NewSnapshot()
	for _, h := range s.Habits {
		out.Habits = append(out.Habits, h.Clone())
	}
	out.Todos = append(out.Todos, s.Todos...)
	out.Achievements = append(out.Achievements, s.Achievements...)
	maps.Copy(out.Journal, s.Journal)
	out.Metrics = append(out.Metrics, s.Metrics...)
	return out
}

// IsEmpty reports whether every collection is empty.
func (s Snapshot) IsEmpty() bool {
	return len(s.Habits) == 0 && len(s.Todos) == 0 && len(s.Achievements) == 0 &&
		len(s.Journal) == 0 && len(s.Metrics) == 0
}

// Validate checks the document shape: ids present, keys well formed, todo
// types known. Finer-grained consistency is left to the validation package.
func (s Snapshot) Validate() error {
	for i, h := range s.Habits {
		if h.ID == "" {
			return fmt.Errorf("%w: habit %d has no id", ErrInvalidSnapshot, i)
		}
		if h.Month != "" && !utils.IsValidMonthKey(h.Month) {
			return fmt.Errorf("%w: habit %s has malformed month %q", ErrInvalidSnapshot, h.ID, h.Month)
		}
		for _, d := range h.CompletedDates {
			if !utils.IsValidDateKey(d) {
				return fmt.Errorf("%w: habit %s has malformed date %q", ErrInvalidSnapshot, h.ID, d)
			}
		}
	}
	for i, t := range s.Todos {
		if t.ID == "" {
			return fmt.Errorf("%w: todo %d has no id", ErrInvalidSnapshot, i)
		}
		if !t.Type.Valid() {
			return fmt.Errorf("%w: todo %s has unknown type %q", ErrInvalidSnapshot, t.ID, t.Type)
		}
	}
	for i, a := range s.Achievements {
		if a.ID == "" {
			return fmt.Errorf("%w: achievement %d has no id", ErrInvalidSnapshot, i)
		}
		if !utils.IsValidMonthKey(a.Month) {
			return fmt.Errorf("%w: achievement %s has malformed month %q", ErrInvalidSnapshot, a.ID, a.Month)
		}
	}
	for date := range s.Journal {
		if !utils.IsValidDateKey(date) {
			return fmt.Errorf("%w: journal has malformed date %q", ErrInvalidSnapshot, date)
		}
	}
	for i, m := range s.Metrics {
		if m.ID == "" {
			return fmt.Errorf("%w: metric %d has no id", ErrInvalidSnapshot, i)
		}
		if !utils.IsValidDateKey(m.Date) {
			return fmt.Errorf("%w: metric %s has malformed date %q", ErrInvalidSnapshot, m.ID, m.Date)
		}
	}
	return nil
}

// JournalDates returns the journal keys in ascending order.
func (s Snapshot) JournalDates() []string {
	return slices.Sorted(maps.Keys(s.Journal))
}

// PartialSnapshot is what an import produces: collections merged into the
// current state without deleting anything.
type PartialSnapshot struct {
	Habits  []Habit           `json:"habits,omitempty"`
	Todos   []Todo            `json:"todos,omitempty"`
	Journal map[string]string `json:"journal,omitempty"`
}

// IsEmpty reports whether the import carries nothing to merge.
func (p PartialSnapshot) IsEmpty() bool {
	return len(p.Habits) == 0 && len(p.Todos) == 0 && len(p.Journal) == 0
}

// IsBlank reports whether journal content counts as absent.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}
