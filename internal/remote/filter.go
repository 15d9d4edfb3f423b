package remote

import (
	"fmt"
	"strings"
)

type Op string

const (
	OpEq     Op = "eq"
	OpGte    Op = "gte"
	OpLte    Op = "lte"
	OpPrefix Op = "prefix"
)

// Condition compares one column against a value.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// Filter is a conjunction of conditions.
type Filter []Condition

func Eq(column string, value any) Condition {
	return Condition{Column: column, Op: OpEq, Value: value}
}

func Gte(column string, value any) Condition {
	return Condition{Column: column, Op: OpGte, Value: value}
}

func Lte(column string, value any) Condition {
	return Condition{Column: column, Op: OpLte, Value: value}
}

func Prefix(column, prefix string) Condition {
	return Condition{Column: column, Op: OpPrefix, Value: prefix}
}

// ByUser scopes conds to one user.
func ByUser(userID string, conds ...Condition) Filter {
	return append(Filter{Eq("user_id", userID)}, conds...)
}

// Columns returns the columns the filter references.
func (f Filter) Columns() []string {
	cols := make([]string, len(f))
	for i, c := range f {
		cols[i] = c.Column
	}
	return cols
}

// Matches evaluates the filter against a row. Range and prefix comparisons
// are lexical, which is what date keys need.
func (f Filter) Matches(r Row) bool {
	for _, c := range f {
		v, ok := r[c.Column]
		if !ok {
			return false
		}
		got, want := text(v), text(c.Value)
		switch c.Op {
		case OpEq:
			if got != want {
				return false
			}
		case OpGte:
			if got < want {
				return false
			}
		case OpLte:
			if got > want {
				return false
			}
		case OpPrefix:
			if !strings.HasPrefix(got, want) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
