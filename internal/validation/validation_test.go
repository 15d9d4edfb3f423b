package validation

import (
	"strings"
	"testing"

	"github.com/julianstephens/daylog/internal/models"
)

func hasConflict(result ValidationResult, typ ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == typ {
			return true
		}
	}
	return false
}

func TestValidate_CleanSnapshot(t *testing.T) {
	snap := models.NewSnapshot()
	snap.Habits = []models.Habit{
		{ID: "h1", Name: "Read", CompletedDates: []string{"2025-03-01", "2025-03-02"}},
		{ID: "h2", Name: "Read", Month: "2025-03"}, // same name, different scope
	}
	snap.Todos = []models.Todo{{ID: "t1", Text: "call", Type: models.TodoDaily}}
	snap.Achievements = []models.Achievement{{ID: "a1", Month: "2025-03", Text: "shipped"}}
	snap.Journal["2025-03-01"] = "fine"
	snap.Metrics = []models.Metric{
		{ID: "m1", Date: "2025-03-01", Label: models.MetricMood, Value: 3},
		{ID: "m2", Date: "2025-03-01", Label: models.MetricEnergy, Value: 4},
	}

	result := New().Validate(snap)
	if result.HasConflicts() {
		t.Errorf("unexpected conflicts:\n%s", result.FormatReport())
	}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", got)
	}
}

func TestValidate_DetectsConflicts(t *testing.T) {
	tests := []struct {
		name string
		snap func(s *models.Snapshot)
		want ConflictType
	}{
		{
			name: "missing id",
			snap: func(s *models.Snapshot) { s.Todos = []models.Todo{{Text: "x", Type: models.TodoDaily}} },
			want: ConflictMissingID,
		},
		{
			name: "duplicate id",
			snap: func(s *models.Snapshot) {
				s.Achievements = []models.Achievement{{ID: "a", Month: "2025-01", Text: "x"}, {ID: "a", Month: "2025-01", Text: "y"}}
			},
			want: ConflictDuplicateID,
		},
		{
			name: "invalid completion date",
			snap: func(s *models.Snapshot) { s.Habits = []models.Habit{{ID: "h", Name: "x", CompletedDates: []string{"2025-02-30"}}} },
			want: ConflictInvalidDate,
		},
		{
			name: "invalid habit month",
			snap: func(s *models.Snapshot) { s.Habits = []models.Habit{{ID: "h", Name: "x", Month: "2025-3"}} },
			want: ConflictInvalidMonth,
		},
		{
			name: "duplicate completion",
			snap: func(s *models.Snapshot) {
				s.Habits = []models.Habit{{ID: "h", Name: "x", CompletedDates: []string{"2025-01-01", "2025-01-01"}}}
			},
			want: ConflictDuplicateCompletion,
		},
		{
			name: "duplicate habit name in scope",
			snap: func(s *models.Snapshot) {
				s.Habits = []models.Habit{{ID: "h1", Name: "Read"}, {ID: "h2", Name: "read"}}
			},
			want: ConflictDuplicateHabitName,
		},
		{
			name: "blank journal",
			snap: func(s *models.Snapshot) { s.Journal["2025-01-01"] = " \n" },
			want: ConflictBlankJournal,
		},
		{
			name: "invalid journal date",
			snap: func(s *models.Snapshot) { s.Journal["yesterday"] = "x" },
			want: ConflictInvalidDate,
		},
		{
			name: "duplicate metric",
			snap: func(s *models.Snapshot) {
				s.Metrics = []models.Metric{
					{ID: "m1", Date: "2025-01-01", Label: "mood", Value: 1},
					{ID: "m2", Date: "2025-01-01", Label: "mood", Value: 2},
				}
			},
			want: ConflictDuplicateMetric,
		},
		{
			name: "unknown todo type",
			snap: func(s *models.Snapshot) { s.Todos = []models.Todo{{ID: "t", Text: "x", Type: "yearly"}} },
			want: ConflictUnknownTodoType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := models.NewSnapshot()
			tt.snap(&snap)

			result := New().Validate(snap)
			if !hasConflict(result, tt.want) {
				t.Errorf("expected %s conflict, got:\n%s", tt.want, result.FormatReport())
			}
			if !strings.HasPrefix(result.FormatReport(), "Conflicts detected:") {
				t.Errorf("FormatReport() = %q", result.FormatReport())
			}
		})
	}
}

func TestFix(t *testing.T) {
	snap := models.NewSnapshot()
	snap.Habits = []models.Habit{{ID: "h", Name: "Read", CompletedDates: []string{"2025-01-01", "2025-01-02", "2025-01-01"}}}
	snap.Journal["2025-01-01"] = "kept"
	snap.Journal["2025-01-02"] = "   "
	snap.Metrics = []models.Metric{
		{ID: "m1", Date: "2025-01-01", Label: "mood", Value: 1},
		{ID: "m2", Date: "2025-01-01", Label: "energy", Value: 5},
		{ID: "m3", Date: "2025-01-01", Label: "mood", Value: 4},
	}

	v := New()
	before := v.Validate(snap)
	if !before.Fixable() {
		t.Fatal("expected fixable conflicts")
	}

	fixed, actions := v.Fix(snap)
	if len(actions) != 3 {
		t.Errorf("actions = %d, want 3: %+v", len(actions), actions)
	}
	if after := v.Validate(fixed); after.HasConflicts() {
		t.Errorf("conflicts remain after Fix:\n%s", after.FormatReport())
	}

	if got := fixed.Habits[0].CompletedDates; len(got) != 2 {
		t.Errorf("dates = %v, want 2 unique", got)
	}
	if _, ok := fixed.Journal["2025-01-02"]; ok {
		t.Error("blank journal entry kept")
	}
	if len(fixed.Metrics) != 2 || fixed.Metrics[1].ID != "m3" {
		t.Errorf("metrics = %+v, want energy then the latest mood", fixed.Metrics)
	}

	// The input is not modified.
	if len(snap.Habits[0].CompletedDates) != 3 || len(snap.Metrics) != 3 {
		t.Error("Fix modified its input")
	}
}

func TestFixableIgnoresStructuralConflicts(t *testing.T) {
	snap := models.NewSnapshot()
	snap.Todos = []models.Todo{{Text: "no id", Type: models.TodoDaily}}

	result := New().Validate(snap)
	if !result.HasConflicts() || result.Fixable() {
		t.Errorf("HasConflicts=%v Fixable=%v, want true/false", result.HasConflicts(), result.Fixable())
	}
}
