package store

import (
	"time"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/remote"
)

func habitRow(uid string, h models.Habit) remote.Row {
	return remote.Row{"user_id": uid, "name": h.Name, "category": h.Category, "month": h.Month}
}

func completionRow(uid, habitID, date string) remote.Row {
	return remote.Row{"habit_id": habitID, "completed_date": date, "user_id": uid}
}

func todoRow(uid string, t models.Todo) remote.Row {
	return remote.Row{
		"user_id":    uid,
		"text":       t.Text,
		"completed":  t.Completed,
		"type":       string(t.Type),
		"created_at": t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func achievementRow(uid string, a models.Achievement) remote.Row {
	return remote.Row{"user_id": uid, "text": a.Text, "month": a.Month}
}

func journalRow(uid, date, content string) remote.Row {
	return remote.Row{"user_id": uid, "date": date, "content": content}
}

func metricRow(uid string, m models.Metric) remote.Row {
	return remote.Row{"user_id": uid, "date": m.Date, "label": m.Label, "value": m.Value}
}

var (
	journalKey = []string{"user_id", "date"}
	metricKey  = []string{"user_id", "date", "label"}
)

// snapshotFromRows assembles state from a full remote select.
func snapshotFromRows(rows map[remote.Collection][]remote.Row) models.Snapshot {
	snap := models.NewSnapshot()

	completions := make(map[string][]string)
	for _, r := range rows[remote.HabitCompletions] {
		hid := r.String("habit_id")
		completions[hid] = append(completions[hid], r.String("completed_date"))
	}
	for _, r := range rows[remote.Habits] {
		id := r.String("id")
		dates := completions[id]
		if dates == nil {
			dates = []string{}
		}
		snap.Habits = append(snap.Habits, models.Habit{
			ID:             id,
			Name:           r.String("name"),
			Category:       r.String("category"),
			Month:          r.String("month"),
			CompletedDates: dates,
		})
	}
	for _, r := range rows[remote.Todos] {
		snap.Todos = append(snap.Todos, models.Todo{
			ID:        r.String("id"),
			Text:      r.String("text"),
			Completed: r.Bool("completed"),
			Type:      models.TodoType(r.String("type")),
			CreatedAt: r.Time("created_at"),
		})
	}
	for _, r := range rows[remote.Achievements] {
		snap.Achievements = append(snap.Achievements, models.Achievement{
			ID:    r.String("id"),
			Month: r.String("month"),
			Text:  r.String("text"),
		})
	}
	for _, r := range rows[remote.JournalEntries] {
		if content := r.String("content"); !models.IsBlank(content) {
			snap.Journal[r.String("date")] = content
		}
	}
	for _, r := range rows[remote.Metrics] {
		snap.Metrics = append(snap.Metrics, models.Metric{
			ID:    r.String("id"),
			Date:  r.String("date"),
			Label: r.String("label"),
			Value: r.Float("value"),
		})
	}
	return snap
}
