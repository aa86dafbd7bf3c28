// Package filter holds the attribute filters applied to source records
// before any report stage.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"estadistica/pkg/contracts/domain"
)

// Condition allows records whose attribute equals one of Values.
type Condition struct {
	Attribute string   `json:"attribute" yaml:"attribute" validate:"required"`
	Values    []string `json:"values" yaml:"values" validate:"required,min=1"`
}

// Set is a conjunction of conditions. The zero value matches everything.
type Set struct {
	conditions []Condition
}

// New creates a filter set from conditions. Conditions on the same
// attribute are merged into one allowed-value set.
func New(conditions ...Condition) Set {
	var s Set
	for _, c := range conditions {
		s = s.Add(c.Attribute, c.Values...)
	}
	return s
}

// Add returns a copy of s with values allowed for attribute.
func (s Set) Add(attribute string, values ...string) Set {
	out := Set{conditions: make([]Condition, len(s.conditions))}
	for i, c := range s.conditions {
		out.conditions[i] = Condition{Attribute: c.Attribute, Values: append([]string(nil), c.Values...)}
	}
	for i := range out.conditions {
		if out.conditions[i].Attribute == attribute {
			out.conditions[i].Values = appendUnique(out.conditions[i].Values, values...)
			return out
		}
	}
	out.conditions = append(out.conditions, Condition{Attribute: attribute, Values: appendUnique(nil, values...)})
	return out
}

// Remove returns a copy of s without the condition on attribute.
func (s Set) Remove(attribute string) Set {
	out := Set{}
	for _, c := range s.conditions {
		if c.Attribute != attribute {
			out.conditions = append(out.conditions, c)
		}
	}
	return out
}

// Conditions returns the conditions in insertion order.
func (s Set) Conditions() []Condition {
	return append([]Condition(nil), s.conditions...)
}

// Empty reports whether the set has no conditions.
func (s Set) Empty() bool {
	return len(s.conditions) == 0
}

// Attributes returns the filtered attribute names.
func (s Set) Attributes() []string {
	names := make([]string, len(s.conditions))
	for i, c := range s.conditions {
		names[i] = c.Attribute
	}
	return names
}

// Match reports whether r satisfies every condition. Values are compared by
// their string form; a null value matches nothing.
func (s Set) Match(r domain.TransactionRecord) bool {
	for _, c := range s.conditions {
		v, ok := r.Value(c.Attribute)
		if !ok || !contains(c.Values, v) {
			return false
		}
	}
	return true
}

// Apply returns the records matching s, preserving order.
func (s Set) Apply(records []domain.TransactionRecord) []domain.TransactionRecord {
	if s.Empty() {
		return records
	}
	out := make([]domain.TransactionRecord, 0, len(records))
	for _, r := range records {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// String renders the set as "attr = a|b, attr2 = c".
func (s Set) String() string {
	parts := make([]string, len(s.conditions))
	for i, c := range s.conditions {
		parts[i] = fmt.Sprintf("%s = %s", c.Attribute, strings.Join(c.Values, "|"))
	}
	return strings.Join(parts, ", ")
}

// Parse reads "attr=value" expressions, as given on the command line.
// Several values for one attribute may be separated by "|".
func Parse(exprs []string) (Set, error) {
	var s Set
	for _, expr := range exprs {
		attr, values, ok := strings.Cut(expr, "=")
		attr = strings.TrimSpace(attr)
		if !ok || attr == "" {
			return Set{}, fmt.Errorf("invalid filter %q, want attribute=value", expr)
		}
		var vals []string
		for _, v := range strings.Split(values, "|") {
			vals = append(vals, strings.TrimSpace(v))
		}
		s = s.Add(attr, vals...)
	}
	return s, nil
}

// DistinctValues returns the sorted distinct string values of column.
func DistinctValues(records []domain.TransactionRecord, column string) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		if v, ok := r.Value(column); ok {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
