package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/daylog/internal/models"
)

var (
	ErrNoMatch   = errors.New("no match")
	ErrAmbiguous = errors.New("ambiguous reference")
)

// minPrefix is the shortest id prefix accepted as a reference.
const minPrefix = 4

// find resolves ref against items: an exact id first, then a unique id
// prefix or suffix, then a unique case-insensitive label.
func find[T any](kind string, items []T, ref string, id, label func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%s reference cannot be empty", kind)
	}

	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}

	pick := func(match func(T) bool) (T, int) {
		var found T
		n := 0
		for _, it := range items {
			if match(it) {
				found = it
				n++
			}
		}
		return found, n
	}

	if len(ref) >= minPrefix {
		found, n := pick(func(it T) bool {
			s := strings.TrimPrefix(id(it), "tmp-")
			return strings.HasPrefix(s, ref) || strings.HasSuffix(s, ref)
		})
		switch {
		case n == 1:
			return found, nil
		case n > 1:
			return zero, fmt.Errorf("%w: %d %ss match id %q", ErrAmbiguous, n, kind, ref)
		}
	}

	found, n := pick(func(it T) bool { return strings.EqualFold(label(it), ref) })
	switch {
	case n == 1:
		return found, nil
	case n > 1:
		return zero, fmt.Errorf("%w: %d %ss are named %q, use the id instead", ErrAmbiguous, n, kind, ref)
	}
	return zero, fmt.Errorf("%w: no %s matches %q", ErrNoMatch, kind, ref)
}

// FindHabit resolves a habit by id, id prefix or name.
func FindHabit(habits []models.Habit, ref string) (models.Habit, error) {
	return find("habit", habits, ref,
		func(h models.Habit) string { return h.ID },
		func(h models.Habit) string { return h.Name })
}

// FindTodo resolves a todo by id, id prefix or text.
func FindTodo(todos []models.Todo, ref string) (models.Todo, error) {
	return find("todo", todos, ref,
		func(t models.Todo) string { return t.ID },
		func(t models.Todo) string { return t.Text })
}

// FindAchievement resolves an achievement by id, id prefix or text.
func FindAchievement(achievements []models.Achievement, ref string) (models.Achievement, error) {
	return find("achievement", achievements, ref,
		func(a models.Achievement) string { return a.ID },
		func(a models.Achievement) string { return a.Text })
}

// ShortID trims an id to its last eight characters for display. Server ids
// share their leading time bits, so the tail is what tells them apart.
func ShortID(id string) string {
	s := strings.TrimPrefix(id, "tmp-")
	if len(s) <= 8 {
		return s
	}
	return "…" + s[len(s)-8:]
}
