package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

var (
	checklistRe = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\]\s+(.*)$`)
	headingRe   = regexp.MustCompile(`^#{1,6}\s+(.*?)\s*#*\s*$`)
	typeTagRe   = regexp.MustCompile(`\s+#(daily|weekly|monthly)\s*$`)
)

type mdSection int

const (
	sectionTodos mdSection = iota
	sectionHabits
	sectionJournal
)

// parseMarkdown reads checklists and dated notes:
//
//	## Habits
//	- [ ] Read
//	## Todos
//	- [x] Call the bank #weekly
//	## 2025-03-01
//	Free text becomes that day's journal entry.
//
// Checklist items outside a Habits section are todos.
func parseMarkdown(r io.Reader) (models.PartialSnapshot, error) {
	p := models.PartialSnapshot{Journal: map[string]string{}}
	section := sectionTodos
	var date string
	var entry []string

	flush := func() {
		if date != "" {
			if content := strings.TrimSpace(strings.Join(entry, "\n")); content != "" {
				if prev, ok := p.Journal[date]; ok {
					content = prev + "\n\n" + content
				}
				p.Journal[date] = content
			}
		}
		entry = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			title := strings.TrimSpace(m[1])
			switch {
			case utils.IsValidDateKey(title):
				section, date = sectionJournal, title
			case strings.EqualFold(title, "habits"):
				section, date = sectionHabits, ""
			default:
				section, date = sectionTodos, ""
			}
			continue
		}

		if m := checklistRe.FindStringSubmatch(line); m != nil {
			done := m[1] != " "
			text := strings.TrimSpace(m[2])
			if text == "" {
				continue
			}
			if section == sectionHabits {
				p.Habits = append(p.Habits, models.Habit{Name: text, CompletedDates: []string{}})
				continue
			}
			todo := models.Todo{Text: text, Completed: done, Type: models.TodoDaily}
			if tag := typeTagRe.FindStringSubmatch(text); tag != nil {
				todo.Type = models.TodoType(tag[1])
				todo.Text = strings.TrimSpace(typeTagRe.ReplaceAllString(text, ""))
			}
			p.Todos = append(p.Todos, todo)
			continue
		}

		if section == sectionJournal {
			entry = append(entry, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return models.PartialSnapshot{}, fmt.Errorf("failed to read markdown: %w", err)
	}
	flush()
	return p, nil
}
