// Package filter evaluates the filter sidebar's conditions against task rows.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/dmdash/internal/errors"
)

// Operator names a comparison.
type Operator string

const (
	OpEqual       Operator = "equal"
	OpNotEqual    Operator = "not_equal"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreater     Operator = "greater"
	OpLess        Operator = "less"
	OpMatches     Operator = "matches" // glob pattern, e.g. "*.jpg"
	OpEmpty       Operator = "empty"
)

// Conjunction combines filters.
type Conjunction string

const (
	And Conjunction = "and"
	Or  Conjunction = "or"
)

// Operators returns every supported operator in sidebar order.
func Operators() []Operator {
	return []Operator{OpEqual, OpNotEqual, OpContains, OpNotContains, OpGreater, OpLess, OpMatches, OpEmpty}
}

// Filter is one sidebar condition. Column is either a task field
// ("id", "completed", "annotations", "predictions") or "data.<key>".
// For OpEmpty, Value is "true" or "false".
type Filter struct {
	Column   string   `yaml:"column" json:"column"`
	Operator Operator `yaml:"operator" json:"operator"`
	Value    string   `yaml:"value" json:"value"`
}

// String renders the filter the way the sidebar lists it.
func (f Filter) String() string {
	if f.Operator == OpEmpty {
		return fmt.Sprintf("%s is empty=%s", f.Column, f.Value)
	}
	return fmt.Sprintf("%s %s %q", f.Column, f.Operator, f.Value)
}

// Validate checks the operator and, for OpMatches, that the pattern compiles.
func (f Filter) Validate() error {
	if strings.TrimSpace(f.Column) == "" {
		return errors.NewValidationError("filter column must not be empty").WithField("column")
	}
	if !slices.Contains(Operators(), f.Operator) {
		return errors.NewValidationError("unknown filter operator").WithField("operator").WithValue(f.Operator)
	}
	if f.Operator == OpMatches {
		if _, err := glob.Compile(f.Value); err != nil {
			return errors.NewValidationError("invalid glob pattern").WithField("value").WithValue(f.Value)
		}
	}
	return nil
}

// Row is the view of a task that filters evaluate against.
type Row interface {
	// Field returns the string form of a column and whether it is present.
	Field(column string) (string, bool)
}

// Set is a compiled list of filters sharing a conjunction.
type Set struct {
	conj    Conjunction
	filters []Filter
	globs   map[int]glob.Glob
}

// Compile prepares filters for repeated evaluation. Invalid filters are
// reported together; valid ones are still usable via the returned Set.
func Compile(conj Conjunction, filters []Filter) (*Set, error) {
	if conj != Or {
		conj = And
	}
	s := &Set{conj: conj, globs: make(map[int]glob.Glob)}

	var errs []error
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if f.Operator == OpMatches {
			s.globs[len(s.filters)] = glob.MustCompile(f.Value)
		}
		s.filters = append(s.filters, f)
	}
	return s, errors.Join(errs...)
}

// Len returns the number of usable filters.
func (s *Set) Len() int { return len(s.filters) }

// Match reports whether the row satisfies the set. An empty set matches everything.
func (s *Set) Match(row Row) bool {
	if len(s.filters) == 0 {
		return true
	}
	for i, f := range s.filters {
		ok := s.eval(i, f, row)
		if s.conj == Or && ok {
			return true
		}
		if s.conj == And && !ok {
			return false
		}
	}
	return s.conj == And
}

// Apply returns the rows that match, preserving order.
func Apply[R Row](s *Set, rows []R) []R {
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Set) eval(i int, f Filter, row Row) bool {
	val, present := row.Field(f.Column)

	switch f.Operator {
	case OpEmpty:
		want := strings.EqualFold(f.Value, "true")
		return (!present || val == "") == want
	case OpEqual:
		return present && val == f.Value
	case OpNotEqual:
		return !present || val != f.Value
	case OpContains:
		return present && strings.Contains(strings.ToLower(val), strings.ToLower(f.Value))
	case OpNotContains:
		return !present || !strings.Contains(strings.ToLower(val), strings.ToLower(f.Value))
	case OpGreater, OpLess:
		if !present {
			return false
		}
		a, errA := strconv.ParseFloat(val, 64)
		b, errB := strconv.ParseFloat(f.Value, 64)
		if errA != nil || errB != nil {
			return false
		}
		if f.Operator == OpGreater {
			return a > b
		}
		return a < b
	case OpMatches:
		return present && s.globs[i].Match(val)
	}
	return false
}
