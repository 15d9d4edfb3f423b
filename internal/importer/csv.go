package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/julianstephens/daylog/internal/models"
)

// csvColumns are the recognized header names. Only "kind" and "text" are
// required; the rest default to empty.
var csvColumns = []string{"kind", "text", "date", "completed", "type", "category", "month"}

// parseCSV reads one entity per row. kind is habit, todo or journal:
//
//	kind,text,date,completed,type,category,month
//	habit,Read,2025-03-01,,,health,
//	todo,Call the bank,,true,weekly,,
//	journal,A quiet day,2025-03-01,,,,
//
// Habit rows with the same name and month merge, each date adding a
// completion. Journal rows for the same date are joined.
func parseCSV(r io.Reader) (models.PartialSnapshot, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.PartialSnapshot{Journal: map[string]string{}}, nil
		}
		return models.PartialSnapshot{}, fmt.Errorf("failed to read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if !slices.Contains(csvColumns, name) {
			return models.PartialSnapshot{}, fmt.Errorf("unknown csv column %q", h)
		}
		col[name] = i
	}
	for _, required := range []string{"kind", "text"} {
		if _, ok := col[required]; !ok {
			return models.PartialSnapshot{}, fmt.Errorf("csv header is missing the %q column", required)
		}
	}

	p := models.PartialSnapshot{Journal: map[string]string{}}
	habitIdx := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.PartialSnapshot{}, fmt.Errorf("failed to read csv: %w", err)
		}
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		text := field("text")
		switch kind := strings.ToLower(field("kind")); kind {
		case "habit":
			name := models.NormalizeName(text)
			if name == "" {
				return models.PartialSnapshot{}, fmt.Errorf("line %d: habit has no name", line)
			}
			key := strings.ToLower(name) + "|" + field("month")
			i, ok := habitIdx[key]
			if !ok {
				i = len(p.Habits)
				habitIdx[key] = i
				p.Habits = append(p.Habits, models.Habit{
					Name:           name,
					Category:       field("category"),
					Month:          field("month"),
					CompletedDates: []string{},
				})
			}
			if d := field("date"); d != "" {
				p.Habits[i] = p.Habits[i].WithCompletion(d, true)
			}
		case "todo":
			typ, err := models.ParseTodoType(field("type"))
			if err != nil {
				return models.PartialSnapshot{}, fmt.Errorf("line %d: %w", line, err)
			}
			done := false
			if v := field("completed"); v != "" {
				if done, err = strconv.ParseBool(v); err != nil {
					return models.PartialSnapshot{}, fmt.Errorf("line %d: invalid completed value %q", line, v)
				}
			}
			p.Todos = append(p.Todos, models.Todo{Text: text, Completed: done, Type: typ})
		case "journal":
			date := field("date")
			if date == "" {
				return models.PartialSnapshot{}, fmt.Errorf("line %d: journal row has no date", line)
			}
			if prev, ok := p.Journal[date]; ok && prev != "" {
				text = prev + "\n" + text
			}
			p.Journal[date] = text
		default:
			return models.PartialSnapshot{}, fmt.Errorf("line %d: unknown kind %q (expected habit, todo or journal)", line, kind)
		}
	}
	return p, nil
}
