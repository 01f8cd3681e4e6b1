package scopes

import (
	"testing"

	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	s, err := String("  active ")
	require.NoError(t, err)
	assert.Equal(t, "active", s)

	s, err = String([]string{"active"})
	require.NoError(t, err)
	assert.Equal(t, "active", s)

	_, err = String([]string{"a", "b"})
	assert.ErrorIs(t, err, filter.ErrInvalidValue)

	_, err = String(42)
	assert.ErrorIs(t, err, filter.ErrInvalidValue)
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name  string
		value filter.Value
		want  []string
		err   bool
	}{
		{"comma separated", "active, draft,,", []string{"active", "draft"}, false},
		{"repeated keys", []string{"active", "draft"}, []string{"active", "draft"}, false},
		{"json list", []any{"active"}, []string{"active"}, false},
		{"json list of numbers", []any{1}, nil, true},
		{"only separators", " , ", nil, true},
		{"wrong type", 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Strings(tt.value)
			if tt.err {
				assert.ErrorIs(t, err, filter.ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumber(t *testing.T) {
	n, err := Number("12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, n)

	n, err = Number(int64(7))
	require.NoError(t, err)
	assert.Equal(t, 7.0, n)

	_, err = Number("cheap")
	var invalid *filter.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "cheap", invalid.Value)
	assert.Error(t, invalid.Unwrap())

	_, err = Number(true)
	assert.ErrorIs(t, err, filter.ErrInvalidValue)
}

func TestInt(t *testing.T) {
	tests := []struct {
		value filter.Value
		want  int
		err   bool
	}{
		{"10", 10, false},
		{0, 0, false},
		{int64(3), 3, false},
		{float64(4), 4, false},
		{4.5, 0, true},
		{"-1", 0, true},
		{"ten", 0, true},
		{[]string{"1"}, 0, true},
	}
	for _, tt := range tests {
		got, err := Int(tt.value)
		if tt.err {
			assert.ErrorIs(t, err, filter.ErrInvalidValue, "value %v", tt.value)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		value string
		want  query.SortConfiguration
		err   bool
	}{
		{"price", query.SortConfiguration{Field: "price", Direction: query.SortDirectionAsc}, false},
		{"-price", query.SortConfiguration{Field: "price", Direction: query.SortDirectionDesc}, false},
		{"name:DESC", query.SortConfiguration{Field: "name", Direction: query.SortDirectionDesc}, false},
		{"name:asc", query.SortConfiguration{Field: "name", Direction: query.SortDirectionAsc}, false},
		{"name:sideways", query.SortConfiguration{}, true},
		{"password", query.SortConfiguration{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := Sort(tt.value, "name", "price")
			if tt.err {
				assert.ErrorIs(t, err, filter.ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryScopes(t *testing.T) {
	base := query.NewQueryBuilder()

	t.Run("where", func(t *testing.T) {
		qb, err := Where("status", query.ComparisonOperatorEq)(base, "active")
		require.NoError(t, err)
		dsl := qb.Build()
		require.NotNil(t, dsl.Filters)
		assert.Equal(t, &query.FilterCondition{Field: "status", Operator: query.ComparisonOperatorEq, Value: "active"}, dsl.Filters.Condition)
		assert.Nil(t, base.Build().Filters, "base builder must not change")
	})

	t.Run("where in", func(t *testing.T) {
		qb, err := WhereIn("status")(base, "active,draft")
		require.NoError(t, err)
		cond := qb.Build().Filters.Condition
		assert.Equal(t, query.ComparisonOperatorIn, cond.Operator)
		assert.Equal(t, []query.FilterValue{"active", "draft"}, cond.Value)
	})

	t.Run("where number", func(t *testing.T) {
		qb, err := WhereNumber("price", query.ComparisonOperatorGte)(base, "10")
		require.NoError(t, err)
		assert.Equal(t, 10.0, qb.Build().Filters.Condition.Value)

		_, err = WhereNumber("price", query.ComparisonOperatorGte)(base, "ten")
		assert.ErrorIs(t, err, filter.ErrInvalidValue)
	})

	t.Run("order by", func(t *testing.T) {
		qb, err := OrderBy("price")(base, "-price")
		require.NoError(t, err)
		assert.Equal(t, []query.SortConfiguration{{Field: "price", Direction: query.SortDirectionDesc}}, qb.Build().Sort)

		_, err = OrderBy("price")(base, "name")
		assert.ErrorIs(t, err, filter.ErrInvalidValue)
	})

	t.Run("limit and offset", func(t *testing.T) {
		qb, err := Limit(50)(base, "20")
		require.NoError(t, err)
		qb, err = Offset()(qb, "40")
		require.NoError(t, err)
		p := qb.Build().Pagination
		require.NotNil(t, p)
		assert.Equal(t, 20, p.Limit)
		assert.Equal(t, 40, *p.Offset)
		assert.Nil(t, base.Build().Pagination)

		_, err = Limit(50)(base, "51")
		assert.ErrorIs(t, err, filter.ErrInvalidValue)
		_, err = Limit(50)(base, "0")
		assert.ErrorIs(t, err, filter.ErrInvalidValue)
		_, err = Limit(0)(base, "1000")
		assert.NoError(t, err)
	})
}

func inventory() []schema.Document {
	return []schema.Document{
		{"name": "lamp", "status": "active", "price": 25.0},
		{"name": "desk", "status": "archived", "price": 120.0},
		{"name": "chair", "status": "active", "price": 60.0},
		{"name": "mug", "status": "draft", "price": 8.5},
	}
}

func docNames(rows []schema.Document) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["name"].(string)
	}
	return out
}

func TestDocumentScopes(t *testing.T) {
	d := NewDocuments(nil)
	rows := inventory()

	got, err := d.Where("status", query.ComparisonOperatorEq)(rows, "active")
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp", "chair"}, docNames(got))

	got, err = d.Where("name", query.ComparisonOperatorStartsWith)(rows, "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"desk"}, docNames(got))

	got, err = d.WhereIn("status")(rows, []string{"draft", "archived"})
	require.NoError(t, err)
	assert.Equal(t, []string{"desk", "mug"}, docNames(got))

	got, err = d.WhereNumber("price", query.ComparisonOperatorLte)(rows, "25")
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp", "mug"}, docNames(got))

	got, err = d.OrderBy("price")(rows, "price:desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"desk", "chair", "lamp", "mug"}, docNames(got))

	got, err = d.Limit(10)(rows, "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp", "desk"}, docNames(got))

	got, err = d.Offset()(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"mug"}, docNames(got))

	_, err = d.Limit(10)(rows, "11")
	assert.ErrorIs(t, err, filter.ErrInvalidValue)

	assert.Equal(t, []string{"lamp", "desk", "chair", "mug"}, docNames(rows), "input rows must not change")
}

func TestDocumentScopesInRegistry(t *testing.T) {
	d := NewDocuments(query.NewDataProcessor(nil))
	registry := filter.NewBuilder[[]schema.Document]("inventory").
		Register("status", d.Where("status", query.ComparisonOperatorEq)).
		Register("limit", d.Limit(10)).
		MustBuild()

	got, err := filter.Apply(inventory(), registry, filter.Requests{
		{Name: "status", Value: "active"},
		{Name: "limit", Value: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp"}, docNames(got))

	_, err = filter.Apply(inventory(), registry, filter.Requests{{Name: "limit", Value: "100"}})
	var invalid *filter.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "limit", invalid.Filter)
}
