package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validSnapshot() Snapshot {
	s := NewSnapshot()
	s.Habits = append(s.Habits, Habit{ID: "h1", Name: "Read", CompletedDates: []string{"2025-01-01"}, Month: "2025-01"})
	s.Todos = append(s.Todos, Todo{ID: "t1", Text: "Groceries", Type: TodoWeekly, CreatedAt: time.Now()})
	s.Achievements = append(s.Achievements, Achievement{ID: "a1", Month: "2025-01", Text: "Ran 10k"})
	s.Journal["2025-01-02"] = "cold day"
	s.Metrics = append(s.Metrics, Metric{ID: "m1", Date: "2025-01-02", Label: MetricMood, Value: 4})
	return s
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Snapshot)
		wantErr bool
	}{
		{"valid", func(*Snapshot) {}, false},
		{"empty", func(s *Snapshot) { *s = Snapshot{} }, false},
		{"habit without id", func(s *Snapshot) { s.Habits[0].ID = "" }, true},
		{"habit bad month", func(s *Snapshot) { s.Habits[0].Month = "January" }, true},
		{"habit bad date", func(s *Snapshot) { s.Habits[0].CompletedDates = []string{"2025-1-1"} }, true},
		{"todo bad type", func(s *Snapshot) { s.Todos[0].Type = "yearly" }, true},
		{"achievement bad month", func(s *Snapshot) { s.Achievements[0].Month = "" }, true},
		{"journal bad key", func(s *Snapshot) { s.Journal["yesterday"] = "x" }, true},
		{"metric bad date", func(s *Snapshot) { s.Metrics[0].Date = "2025-02-30" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidSnapshot", err)
			}
		})
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	orig := validSnapshot()
	c := orig.Clone()

	c.Habits[0].CompletedDates[0] = "1999-01-01"
	c.Journal["2025-01-02"] = "changed"
	c.Todos[0].Completed = true

	if orig.Habits[0].CompletedDates[0] != "2025-01-01" {
		t.Error("clone shares habit completion slice")
	}
	if orig.Journal["2025-01-02"] != "cold day" {
		t.Error("clone shares journal map")
	}
	if orig.Todos[0].Completed {
		t.Error("clone shares todo slice")
	}
}

func TestHabitWithCompletion(t *testing.T) {
	h := Habit{ID: "h1", CompletedDates: []string{"2025-01-01"}}

	h2 := h.WithCompletion("2025-01-01", true)
	if len(h2.CompletedDates) != 1 {
		t.Errorf("adding an existing date duplicated it: %v", h2.CompletedDates)
	}

	h3 := h2.WithCompletion("2025-01-02", true)
	if !h3.IsCompleted("2025-01-02") || len(h3.CompletedDates) != 2 {
		t.Errorf("WithCompletion(add) = %v", h3.CompletedDates)
	}

	h4 := h3.WithCompletion("2025-01-01", false)
	if h4.IsCompleted("2025-01-01") {
		t.Errorf("WithCompletion(remove) = %v", h4.CompletedDates)
	}
	if !h3.IsCompleted("2025-01-01") {
		t.Error("WithCompletion mutated the receiver")
	}
}

func TestHabitActiveIn(t *testing.T) {
	global := Habit{ID: "g"}
	scoped := Habit{ID: "s", Month: "2025-02"}

	if !global.ActiveIn("2025-02") || !global.ActiveIn("1999-12") {
		t.Error("global habit should be active in every month")
	}
	if !scoped.ActiveIn("2025-02") || scoped.ActiveIn("2025-03") {
		t.Error("scoped habit should be active only in its month")
	}
}

func TestParseTodoType(t *testing.T) {
	tests := []struct {
		in      string
		want    TodoType
		wantErr bool
	}{
		{"", TodoDaily, false},
		{"daily", TodoDaily, false},
		{"Weekly", TodoWeekly, false},
		{" monthly ", TodoMonthly, false},
		{"yearly", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTodoType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTodoType(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPartialSnapshotIsEmpty(t *testing.T) {
	if !(PartialSnapshot{}).IsEmpty() {
		t.Error("zero partial should be empty")
	}
	if (PartialSnapshot{Journal: map[string]string{"2025-01-01": "x"}}).IsEmpty() {
		t.Error("partial with journal should not be empty")
	}
}

func TestActiveHabits(t *testing.T) {
	habits := []Habit{
		{ID: "1", Name: "walk", Month: "2025-03"},
		{ID: "2", Name: "Stretch"},
		{ID: "3", Name: "Read", Month: "2025-02"},
		{ID: "4", Name: "meditate"},
		{ID: "5", Name: "Journal", Month: "2025-03"},
	}

	got := ActiveHabits(habits, "2025-03")
	var ids []string
	for _, h := range got {
		ids = append(ids, h.ID)
	}
	want := []string{"4", "2", "5", "1"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("ActiveHabits() order = %v, want %v", ids, want)
	}
	if len(ActiveHabits(nil, "2025-03")) != 0 {
		t.Error("no habits should give an empty result")
	}
}
