// Package filter composes declarative listing queries: a free-text
// search predicate, typed property filters from a closed operator set,
// single-field ascending ordering, and clamped skip/take paging. Queries
// are validated in full before anything is evaluated.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxTake caps the page size. Larger requests are clamped, not rejected.
const MaxTake = 50

// Kind is the comparison domain of a schema field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
	KindBool
)

// Field describes one filterable property of T: its kind and how to read
// it from a record.
type Field[T any] struct {
	Kind Kind
	Get  func(T) any
}

// Schema declares the filterable surface of a record type: named fields,
// the subset searched by free text, and the soft-delete flag accessor.
type Schema[T any] struct {
	fields     map[string]Field[T]
	searchable []string
	deleted    func(T) bool
}

func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{fields: make(map[string]Field[T])}
}

func (s *Schema[T]) String(name string, get func(T) string) *Schema[T] {
	s.fields[name] = Field[T]{Kind: KindString, Get: func(t T) any { return get(t) }}
	return s
}

func (s *Schema[T]) Number(name string, get func(T) float64) *Schema[T] {
	s.fields[name] = Field[T]{Kind: KindNumber, Get: func(t T) any { return get(t) }}
	return s
}

func (s *Schema[T]) Time(name string, get func(T) *time.Time) *Schema[T] {
	s.fields[name] = Field[T]{Kind: KindTime, Get: func(t T) any { return get(t) }}
	return s
}

func (s *Schema[T]) Bool(name string, get func(T) bool) *Schema[T] {
	s.fields[name] = Field[T]{Kind: KindBool, Get: func(t T) any { return get(t) }}
	return s
}

// Searchable marks already-declared string fields as targets of the
// free-text OR search.
func (s *Schema[T]) Searchable(names ...string) *Schema[T] {
	s.searchable = append(s.searchable, names...)
	return s
}

// SoftDelete declares the record's soft-delete flag. Records with the
// flag set are excluded from every query not run in manage mode.
func (s *Schema[T]) SoftDelete(get func(T) bool) *Schema[T] {
	s.deleted = get
	return s
}

// Condition is one property filter triple.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Query is a declarative listing request. All layers are optional and
// independent.
type Query struct {
	Search     string
	Conditions []Condition
	OrderBy    string
	Skip       int
	Take       int
	// Manage includes soft-deleted records. Off by default.
	Manage bool
}

type predicate[T any] func(T) bool

// Compiled is a validated query bound to a schema, ready to evaluate.
type Compiled[T any] struct {
	schema *Schema[T]
	query  Query
	preds  []predicate[T]
	order  *Field[T]
}

// Compile validates every condition against the schema and builds the
// typed predicates. An unknown field, unknown operator, an operator not
// applicable to the field's kind, or an unparseable value fails here,
// before any record is touched.
func (s *Schema[T]) Compile(q Query) (*Compiled[T], error) {
	c := &Compiled[T]{schema: s, query: q}

	for _, cond := range q.Conditions {
		field, ok := s.fields[cond.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, cond.Field)
		}
		op, err := ParseOperator(cond.Operator)
		if err != nil {
			return nil, err
		}
		pred, err := buildPredicate(field, op, cond)
		if err != nil {
			return nil, err
		}
		c.preds = append(c.preds, pred)
	}

	if q.OrderBy != "" {
		field, ok := s.fields[q.OrderBy]
		if !ok {
			return nil, fmt.Errorf("%w: order field %q", ErrInvalidField, q.OrderBy)
		}
		c.order = &field
	}

	return c, nil
}

// Apply evaluates the query over items and returns the requested page
// plus the total match count computed without paging. The input order is
// kept unless an order field was named; ordering is ascending only.
func (c *Compiled[T]) Apply(items []T) ([]T, int) {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if !c.query.Manage && c.schema.deleted != nil && c.schema.deleted(item) {
			continue
		}
		if !c.matchSearch(item) {
			continue
		}
		if !c.matchConditions(item) {
			continue
		}
		matched = append(matched, item)
	}

	if c.order != nil {
		field := *c.order
		sort.SliceStable(matched, func(i, j int) bool {
			return less(field.Kind, field.Get(matched[i]), field.Get(matched[j]))
		})
	}

	total := len(matched)

	skip := c.query.Skip
	if skip < 0 {
		skip = 0
	}
	take := c.query.Take
	if take <= 0 || take > MaxTake {
		take = MaxTake
	}
	if skip >= total {
		return []T{}, total
	}
	end := skip + take
	if end > total {
		end = total
	}
	return matched[skip:end], total
}

func (c *Compiled[T]) matchSearch(item T) bool {
	term := strings.TrimSpace(c.query.Search)
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, name := range c.schema.searchable {
		field, ok := c.schema.fields[name]
		if !ok || field.Kind != KindString {
			continue
		}
		if strings.Contains(strings.ToLower(field.Get(item).(string)), term) {
			return true
		}
	}
	return false
}

func (c *Compiled[T]) matchConditions(item T) bool {
	for _, pred := range c.preds {
		if !pred(item) {
			return false
		}
	}
	return true
}

func buildPredicate[T any](field Field[T], op Operator, cond Condition) (predicate[T], error) {
	switch field.Kind {
	case KindString:
		return stringPredicate(field, op, cond)
	case KindNumber:
		return numberPredicate(field, op, cond)
	case KindTime:
		return timePredicate(field, op, cond)
	case KindBool:
		return boolPredicate(field, op, cond)
	}
	return nil, fmt.Errorf("%w: field %q", ErrInvalidField, cond.Field)
}

func stringPredicate[T any](field Field[T], op Operator, cond Condition) (predicate[T], error) {
	want := strings.ToLower(cond.Value)
	cmp := func(t T) string { return strings.ToLower(field.Get(t).(string)) }
	switch op {
	case OpEqual:
		return func(t T) bool { return cmp(t) == want }, nil
	case OpNotEqual:
		return func(t T) bool { return cmp(t) != want }, nil
	case OpGreater:
		return func(t T) bool { return cmp(t) > want }, nil
	case OpGreaterEqual:
		return func(t T) bool { return cmp(t) >= want }, nil
	case OpLess:
		return func(t T) bool { return cmp(t) < want }, nil
	case OpLessEqual:
		return func(t T) bool { return cmp(t) <= want }, nil
	case OpStartsWith:
		return func(t T) bool { return strings.HasPrefix(cmp(t), want) }, nil
	case OpEndsWith:
		return func(t T) bool { return strings.HasSuffix(cmp(t), want) }, nil
	case OpContain:
		return func(t T) bool { return strings.Contains(cmp(t), want) }, nil
	case OpNotContain:
		return func(t T) bool { return !strings.Contains(cmp(t), want) }, nil
	}
	return nil, fmt.Errorf("%w: %s on string field %q", ErrInvalidOperator, op, cond.Field)
}

func numberPredicate[T any](field Field[T], op Operator, cond Condition) (predicate[T], error) {
	want, err := strconv.ParseFloat(strings.TrimSpace(cond.Value), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrInvalidValue, cond.Value)
	}
	cmp := func(t T) float64 { return field.Get(t).(float64) }
	switch op {
	case OpEqual:
		return func(t T) bool { return cmp(t) == want }, nil
	case OpNotEqual:
		return func(t T) bool { return cmp(t) != want }, nil
	case OpGreater:
		return func(t T) bool { return cmp(t) > want }, nil
	case OpGreaterEqual:
		return func(t T) bool { return cmp(t) >= want }, nil
	case OpLess:
		return func(t T) bool { return cmp(t) < want }, nil
	case OpLessEqual:
		return func(t T) bool { return cmp(t) <= want }, nil
	}
	return nil, fmt.Errorf("%w: %s on numeric field %q", ErrInvalidOperator, op, cond.Field)
}

func timePredicate[T any](field Field[T], op Operator, cond Condition) (predicate[T], error) {
	want, err := parseTime(cond.Value)
	if err != nil {
		return nil, err
	}
	get := func(t T) *time.Time { return field.Get(t).(*time.Time) }
	switch op {
	case OpEqual:
		return func(t T) bool { v := get(t); return v != nil && v.Equal(want) }, nil
	case OpNotEqual:
		return func(t T) bool { v := get(t); return v == nil || !v.Equal(want) }, nil
	case OpGreater:
		return func(t T) bool { v := get(t); return v != nil && v.After(want) }, nil
	case OpGreaterEqual:
		return func(t T) bool { v := get(t); return v != nil && !v.Before(want) }, nil
	case OpLess:
		return func(t T) bool { v := get(t); return v != nil && v.Before(want) }, nil
	case OpLessEqual:
		return func(t T) bool { v := get(t); return v != nil && !v.After(want) }, nil
	case OpDateIn:
		day := time.Date(want.Year(), want.Month(), want.Day(), 0, 0, 0, 0, want.Location())
		next := day.AddDate(0, 0, 1)
		return func(t T) bool {
			v := get(t)
			return v != nil && !v.Before(day) && v.Before(next)
		}, nil
	}
	return nil, fmt.Errorf("%w: %s on time field %q", ErrInvalidOperator, op, cond.Field)
}

func boolPredicate[T any](field Field[T], op Operator, cond Condition) (predicate[T], error) {
	want, err := strconv.ParseBool(strings.TrimSpace(cond.Value))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not boolean", ErrInvalidValue, cond.Value)
	}
	cmp := func(t T) bool { return field.Get(t).(bool) }
	switch op {
	case OpEqual:
		return func(t T) bool { return cmp(t) == want }, nil
	case OpNotEqual:
		return func(t T) bool { return cmp(t) != want }, nil
	}
	return nil, fmt.Errorf("%w: %s on boolean field %q", ErrInvalidOperator, op, cond.Field)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidValue, s)
}

func less(kind Kind, a, b any) bool {
	switch kind {
	case KindString:
		return strings.ToLower(a.(string)) < strings.ToLower(b.(string))
	case KindNumber:
		return a.(float64) < b.(float64)
	case KindTime:
		at, bt := a.(*time.Time), b.(*time.Time)
		switch {
		case at == nil:
			return false
		case bt == nil:
			return true
		}
		return at.Before(*bt)
	case KindBool:
		return !a.(bool) && b.(bool)
	}
	return false
}
