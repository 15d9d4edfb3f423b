package models

import (
	"fmt"
	"strings"
	"time"
)

type TodoType string

const (
	TodoDaily   TodoType = "daily"
	TodoWeekly  TodoType = "weekly"
	TodoMonthly TodoType = "monthly"
)

// TodoTypes lists the valid todo types in display order.
var TodoTypes = []TodoType{TodoDaily, TodoWeekly, TodoMonthly}

func (t TodoType) Valid() bool {
	switch t {
	case TodoDaily, TodoWeekly, TodoMonthly:
		return true
	}
	return false
}

// ParseTodoType parses a case-insensitive todo type. An empty string is daily.
func ParseTodoType(s string) (TodoType, error) {
	if strings.TrimSpace(s) == "" {
		return TodoDaily, nil
	}
	t := TodoType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid todo type %q (expected daily, weekly or monthly)", s)
	}
	return t, nil
}

// Todo is a checklist item. Completed is the only field that changes after creation.
type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Type      TodoType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Achievement is an immutable note pinned to the month it was created in
type Achievement struct {
	ID    string `json:"id"`
	Month string `json:"month"` // YYYY-MM
	Text  string `json:"text"`
}

// Metric is a numeric reading for a day. (Date, Label) is treated as unique.
type Metric struct {
	ID    string  `json:"id"`
	Date  string  `json:"date"` // YYYY-MM-DD
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Common metric labels.
const (
	MetricMood   = "mood"
	MetricEnergy = "energy"
)
