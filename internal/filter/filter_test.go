package filter_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintree/internal/filter"
)

type person struct {
	Fullname string
	Age      float64
	Birthday *time.Time
	Deleted  bool
}

func personSchema() *filter.Schema[person] {
	return filter.NewSchema[person]().
		String("Fullname", func(p person) string { return p.Fullname }).
		Number("Age", func(p person) float64 { return p.Age }).
		Time("Birthday", func(p person) *time.Time { return p.Birthday }).
		SoftDelete(func(p person) bool { return p.Deleted }).
		Searchable("Fullname")
}

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func people() []person {
	return []person{
		{Fullname: "Anna Stone", Age: 34, Birthday: date(1990, 3, 14)},
		{Fullname: "Jan Novak", Age: 52, Birthday: date(1972, 8, 2)},
		{Fullname: "Bert Miller", Age: 17, Birthday: date(2007, 1, 30)},
		{Fullname: "Susanne Vega", Age: 61, Birthday: date(1963, 8, 2)},
		{Fullname: "Removed Person", Age: 99, Deleted: true},
	}
}

func TestContainIsCaseInsensitive(t *testing.T) {
	compiled, err := personSchema().Compile(filter.Query{
		Conditions: []filter.Condition{{Field: "Fullname", Operator: "CONTAIN", Value: "an"}},
	})
	require.NoError(t, err)

	page, total := compiled.Apply(people())
	assert.Equal(t, 3, total)
	for _, p := range page {
		assert.Contains(t, []string{"Anna Stone", "Jan Novak", "Susanne Vega"}, p.Fullname)
	}
}

func TestUnknownOperatorFailsAtCompileTime(t *testing.T) {
	_, err := personSchema().Compile(filter.Query{
		Conditions: []filter.Condition{{Field: "Fullname", Operator: "BETWEEN", Value: "x"}},
	})
	assert.ErrorIs(t, err, filter.ErrInvalidOperator)
}

func TestUnknownFieldFailsAtCompileTime(t *testing.T) {
	_, err := personSchema().Compile(filter.Query{
		Conditions: []filter.Condition{{Field: "ShoeSize", Operator: "EQUAL", Value: "42"}},
	})
	assert.ErrorIs(t, err, filter.ErrInvalidField)
}

func TestOperatorKindMismatchFails(t *testing.T) {
	_, err := personSchema().Compile(filter.Query{
		Conditions: []filter.Condition{{Field: "Age", Operator: "CONTAIN", Value: "3"}},
	})
	assert.ErrorIs(t, err, filter.ErrInvalidOperator)
}

func TestBadValueFails(t *testing.T) {
	_, err := personSchema().Compile(filter.Query{
		Conditions: []filter.Condition{{Field: "Age", Operator: "GREATER", Value: "plenty"}},
	})
	assert.ErrorIs(t, err, filter.ErrInvalidValue)
}

func TestOperators(t *testing.T) {
	tests := []struct {
		name string
		cond filter.Condition
		want []string
	}{
		{
			name: "equal",
			cond: filter.Condition{Field: "Fullname", Operator: "EQUAL", Value: "jan novak"},
			want: []string{"Jan Novak"},
		},
		{
			name: "notequal",
			cond: filter.Condition{Field: "Fullname", Operator: "NOTEQUAL", Value: "jan novak"},
			want: []string{"Anna Stone", "Bert Miller", "Susanne Vega"},
		},
		{
			name: "startswith",
			cond: filter.Condition{Field: "Fullname", Operator: "STARTSWITH", Value: "su"},
			want: []string{"Susanne Vega"},
		},
		{
			name: "endswith",
			cond: filter.Condition{Field: "Fullname", Operator: "ENDSWITH", Value: "er"},
			want: []string{"Bert Miller"},
		},
		{
			name: "notcontain",
			cond: filter.Condition{Field: "Fullname", Operator: "NOTCONTAIN", Value: "an"},
			want: []string{"Bert Miller"},
		},
		{
			name: "greater_number",
			cond: filter.Condition{Field: "Age", Operator: "GREATER", Value: "52"},
			want: []string{"Susanne Vega"},
		},
		{
			name: "greaterequal_number",
			cond: filter.Condition{Field: "Age", Operator: "GREATEREQUAL", Value: "52"},
			want: []string{"Jan Novak", "Susanne Vega"},
		},
		{
			name: "lessequal_number",
			cond: filter.Condition{Field: "Age", Operator: "LESSEQUAL", Value: "17"},
			want: []string{"Bert Miller"},
		},
		{
			name: "datein",
			cond: filter.Condition{Field: "Birthday", Operator: "DATEIN", Value: "1972-08-02"},
			want: []string{"Jan Novak"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := personSchema().Compile(filter.Query{Conditions: []filter.Condition{tt.cond}})
			require.NoError(t, err)

			page, total := compiled.Apply(people())
			assert.Equal(t, len(tt.want), total)
			var names []string
			for _, p := range page {
				names = append(names, p.Fullname)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestDateInHalfOpenRange(t *testing.T) {
	edge := []person{
		{Fullname: "Start", Birthday: date(2000, 5, 1)},
		{Fullname: "Midnight Next", Birthday: date(2000, 5, 2)},
		{Fullname: "Late Same Day", Birthday: func() *time.Time {
			ts := time.Date(2000, 5, 1, 23, 59, 59, 0, time.UTC)
			return &ts
		}()},
	}

	compiled, err := personSchema().Compile(filter.Query{
		Conditions: []filter.Condition{{Field: "Birthday", Operator: "DATEIN", Value: "2000-05-01"}},
	})
	require.NoError(t, err)

	page, total := compiled.Apply(edge)
	assert.Equal(t, 2, total)
	for _, p := range page {
		assert.NotEqual(t, "Midnight Next", p.Fullname)
	}
}

func TestSoftDeleteExclusion(t *testing.T) {
	compiled, err := personSchema().Compile(filter.Query{})
	require.NoError(t, err)
	_, total := compiled.Apply(people())
	assert.Equal(t, 4, total, "soft-deleted records excluded by default")

	managed, err := personSchema().Compile(filter.Query{Manage: true})
	require.NoError(t, err)
	_, total = managed.Apply(people())
	assert.Equal(t, 5, total, "manage mode includes soft-deleted records")
}

func TestFreeTextSearch(t *testing.T) {
	compiled, err := personSchema().Compile(filter.Query{Search: "VEGA"})
	require.NoError(t, err)

	page, total := compiled.Apply(people())
	require.Equal(t, 1, total)
	assert.Equal(t, "Susanne Vega", page[0].Fullname)
}

func TestOrderingAscendingOnly(t *testing.T) {
	compiled, err := personSchema().Compile(filter.Query{OrderBy: "Age"})
	require.NoError(t, err)

	page, _ := compiled.Apply(people())
	require.Len(t, page, 4)
	for i := 1; i < len(page); i++ {
		assert.LessOrEqual(t, page[i-1].Age, page[i].Age)
	}
}

func TestTakeClampedToMaximum(t *testing.T) {
	many := make([]person, 120)
	for i := range many {
		many[i] = person{Fullname: fmt.Sprintf("Person %03d", i), Age: float64(i)}
	}

	compiled, err := personSchema().Compile(filter.Query{Skip: 0, Take: 120})
	require.NoError(t, err)

	page, total := compiled.Apply(many)
	assert.Equal(t, 120, total)
	assert.Len(t, page, filter.MaxTake, "take above the maximum is clamped, not rejected")
}

func TestConsecutivePagesPartition(t *testing.T) {
	many := make([]person, 80)
	for i := range many {
		many[i] = person{Fullname: fmt.Sprintf("Person %03d", i), Age: float64(i)}
	}

	schema := personSchema()

	first, err := schema.Compile(filter.Query{OrderBy: "Age", Skip: 0, Take: 50})
	require.NoError(t, err)
	second, err := schema.Compile(filter.Query{OrderBy: "Age", Skip: 50, Take: 50})
	require.NoError(t, err)

	pageOne, total := first.Apply(many)
	pageTwo, _ := second.Apply(many)

	assert.Equal(t, 80, total)
	require.Len(t, pageOne, 50)
	require.Len(t, pageTwo, 30)

	seen := make(map[string]bool)
	for _, p := range append(pageOne, pageTwo...) {
		assert.False(t, seen[p.Fullname], "pages overlap at %s", p.Fullname)
		seen[p.Fullname] = true
	}
	assert.Len(t, seen, 80, "pages leave a gap")
}

func TestSkipPastEnd(t *testing.T) {
	compiled, err := personSchema().Compile(filter.Query{Skip: 100, Take: 10})
	require.NoError(t, err)

	page, total := compiled.Apply(people())
	assert.Equal(t, 4, total)
	assert.Empty(t, page)
}
