package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingID           ConflictType = "missing_id"
	ConflictDuplicateID         ConflictType = "duplicate_id"
	ConflictInvalidDate         ConflictType = "invalid_date"
	ConflictInvalidMonth        ConflictType = "invalid_month"
	ConflictDuplicateCompletion ConflictType = "duplicate_completion"
	ConflictDuplicateHabitName  ConflictType = "duplicate_habit_name"
	ConflictBlankJournal        ConflictType = "blank_journal"
	ConflictDuplicateMetric     ConflictType = "duplicate_metric"
	ConflictUnknownTodoType     ConflictType = "unknown_todo_type"
)

// Conflict represents a detected problem in the tracked state
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Names or texts involved
	IDs         []string // IDs of entities involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string   // Human-readable description of the action
	SourceConflict Conflict // The conflict that triggered this fix action
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Fixable reports whether Fix can resolve at least one conflict.
func (vr *ValidationResult) Fixable() bool {
	return slices.ContainsFunc(vr.Conflicts, func(c Conflict) bool { return isFixable(c.Type) })
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func isFixable(t ConflictType) bool {
	switch t {
	case ConflictDuplicateCompletion, ConflictBlankJournal, ConflictDuplicateMetric:
		return true
	}
	return false
}

// Validator validates snapshots for conflicts
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Validate checks every collection of snap.
func (v *Validator) Validate(snap models.Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	result.Conflicts = append(result.Conflicts, v.validateHabits(snap.Habits)...)
	result.Conflicts = append(result.Conflicts, v.validateTodos(snap.Todos)...)
	result.Conflicts = append(result.Conflicts, v.validateAchievements(snap.Achievements)...)
	result.Conflicts = append(result.Conflicts, v.validateJournal(snap.Journal)...)
	result.Conflicts = append(result.Conflicts, v.validateMetrics(snap.Metrics)...)
	return result
}

// checkIDs reports missing and repeated ids within one collection.
func checkIDs(kind string, ids, labels []string) []Conflict {
	var conflicts []Conflict
	seen := make(map[string][]string)
	var order []string
	for i, id := range ids {
		if id == "" {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictMissingID,
				Description: fmt.Sprintf("%s \"%s\" has no id", kind, labels[i]),
				Items:       []string{labels[i]},
			})
			continue
		}
		if _, ok := seen[id]; !ok {
			order = append(order, id)
		}
		seen[id] = append(seen[id], labels[i])
	}
	for _, id := range order {
		if names := seen[id]; len(names) > 1 {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateID,
				Description: fmt.Sprintf("Duplicate %s id %s shared by %v", kind, id, names),
				Items:       names,
				IDs:         []string{id},
			})
		}
	}
	return conflicts
}

func (v *Validator) validateHabits(habits []models.Habit) []Conflict {
	ids := make([]string, len(habits))
	names := make([]string, len(habits))
	for i, h := range habits {
		ids[i], names[i] = h.ID, h.Name
	}
	conflicts := checkIDs("habit", ids, names)

	// Names only collide within the same month scope.
	byScope := make(map[string][]string)
	var scopes []string
	for _, h := range habits {
		if h.Month != "" && !utils.IsValidMonthKey(h.Month) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidMonth,
				Description: fmt.Sprintf("Habit \"%s\" has invalid month: %s", h.Name, h.Month),
				Items:       []string{h.Name},
				IDs:         []string{h.ID},
			})
		}

		seen := make(map[string]bool, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			if !utils.IsValidDateKey(d) {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictInvalidDate,
					Description: fmt.Sprintf("Habit \"%s\" has invalid completion date: %s", h.Name, d),
					Date:        d,
					Items:       []string{h.Name},
					IDs:         []string{h.ID},
				})
			}
			if seen[d] {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictDuplicateCompletion,
					Description: fmt.Sprintf("Habit \"%s\" is completed more than once on %s", h.Name, d),
					Date:        d,
					Items:       []string{h.Name},
					IDs:         []string{h.ID},
				})
			}
			seen[d] = true
		}

		key := h.Month + "|" + strings.ToLower(h.Name)
		if _, ok := byScope[key]; !ok {
			scopes = append(scopes, key)
		}
		byScope[key] = append(byScope[key], h.ID)
	}

	for _, key := range scopes {
		ids := byScope[key]
		if len(ids) < 2 {
			continue
		}
		month, name, _ := strings.Cut(key, "|")
		scope := "global"
		if month != "" {
			scope = month
		}
		conflicts = append(conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: \"%s\" in %s (IDs: %v)", name, scope, ids),
			Items:       []string{name},
			IDs:         ids,
		})
	}
	return conflicts
}

func (v *Validator) validateTodos(todos []models.Todo) []Conflict {
	ids := make([]string, len(todos))
	texts := make([]string, len(todos))
	for i, t := range todos {
		ids[i], texts[i] = t.ID, t.Text
	}
	conflicts := checkIDs("todo", ids, texts)

	for _, t := range todos {
		if !t.Type.Valid() {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictUnknownTodoType,
				Description: fmt.Sprintf("Todo \"%s\" has unknown type: %s", t.Text, t.Type),
				Items:       []string{t.Text},
				IDs:         []string{t.ID},
			})
		}
	}
	return conflicts
}

func (v *Validator) validateAchievements(achievements []models.Achievement) []Conflict {
	ids := make([]string, len(achievements))
	texts := make([]string, len(achievements))
	for i, a := range achievements {
		ids[i], texts[i] = a.ID, a.Text
	}
	conflicts := checkIDs("achievement", ids, texts)

	for _, a := range achievements {
		if !utils.IsValidMonthKey(a.Month) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidMonth,
				Description: fmt.Sprintf("Achievement \"%s\" has invalid month: %s", a.Text, a.Month),
				Items:       []string{a.Text},
				IDs:         []string{a.ID},
			})
		}
	}
	return conflicts
}

func (v *Validator) validateJournal(journal map[string]string) []Conflict {
	var conflicts []Conflict
	for _, date := range (models.Snapshot{Journal: journal}).JournalDates() {
		if !utils.IsValidDateKey(date) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Journal entry has invalid date: %s", date),
				Date:        date,
			})
		}
		if models.IsBlank(journal[date]) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictBlankJournal,
				Description: fmt.Sprintf("Journal entry for %s is blank", date),
				Date:        date,
			})
		}
	}
	return conflicts
}

func (v *Validator) validateMetrics(metrics []models.Metric) []Conflict {
	ids := make([]string, len(metrics))
	labels := make([]string, len(metrics))
	for i, m := range metrics {
		ids[i], labels[i] = m.ID, m.Date+" "+m.Label
	}
	conflicts := checkIDs("metric", ids, labels)

	seen := make(map[string]bool)
	for _, m := range metrics {
		if !utils.IsValidDateKey(m.Date) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Metric \"%s\" has invalid date: %s", m.Label, m.Date),
				Date:        m.Date,
				Items:       []string{m.Label},
				IDs:         []string{m.ID},
			})
		}
		key := m.Date + "|" + m.Label
		if seen[key] {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateMetric,
				Description: fmt.Sprintf("Metric \"%s\" is recorded more than once on %s", m.Label, m.Date),
				Date:        m.Date,
				Items:       []string{m.Label},
				IDs:         []string{m.ID},
			})
		}
		seen[key] = true
	}
	return conflicts
}

// Fix returns a copy of snap with the mechanically fixable conflicts
// resolved: repeated completion dates collapse to one, blank journal entries
// are dropped, and only the last reading of a repeated metric is kept.
func (v *Validator) Fix(snap models.Snapshot) (models.Snapshot, []FixAction) {
	out := snap.Clone()
	var actions []FixAction

	for i, h := range out.Habits {
		seen := make(map[string]bool, len(h.CompletedDates))
		out.Habits[i] = h.WithoutDates(func(d string) bool {
			if !seen[d] {
				seen[d] = true
				return false
			}
			actions = append(actions, FixAction{
				Action: fmt.Sprintf("Removed duplicate completion of \"%s\" on %s", h.Name, d),
				SourceConflict: Conflict{
					Type: ConflictDuplicateCompletion, Date: d, Items: []string{h.Name}, IDs: []string{h.ID},
				},
			})
			return true
		})
	}

	for _, date := range out.JournalDates() {
		if models.IsBlank(out.Journal[date]) {
			delete(out.Journal, date)
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Removed blank journal entry for %s", date),
				SourceConflict: Conflict{Type: ConflictBlankJournal, Date: date},
			})
		}
	}

	last := make(map[string]int, len(out.Metrics))
	for i, m := range out.Metrics {
		last[m.Date+"|"+m.Label] = i
	}
	kept := out.Metrics[:0]
	for i, m := range out.Metrics {
		if last[m.Date+"|"+m.Label] == i {
			kept = append(kept, m)
			continue
		}
		actions = append(actions, FixAction{
			Action: fmt.Sprintf("Removed earlier \"%s\" reading on %s (id %s)", m.Label, m.Date, m.ID),
			SourceConflict: Conflict{
				Type: ConflictDuplicateMetric, Date: m.Date, Items: []string{m.Label}, IDs: []string{m.ID},
			},
		})
	}
	out.Metrics = kept

	return out, actions
}
