package scopes

import (
	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/core/query"
)

// QueryFunc narrows a query builder. Every QueryFunc clones the builder it is
// given, so the base query is never modified.
type QueryFunc = filter.Func[*query.QueryBuilder]

// Where compares field against the request value with op.
func Where(field string, op query.ComparisonOperator) QueryFunc {
	return func(qb *query.QueryBuilder, v filter.Value) (*query.QueryBuilder, error) {
		s, err := String(v)
		if err != nil {
			return nil, err
		}
		return qb.Clone().Where(field).Custom(op, s), nil
	}
}

// WhereIn keeps rows whose field is one of the listed values.
func WhereIn(field string) QueryFunc {
	return func(qb *query.QueryBuilder, v filter.Value) (*query.QueryBuilder, error) {
		values, err := Strings(v)
		if err != nil {
			return nil, err
		}
		in := make([]query.FilterValue, len(values))
		for i, s := range values {
			in[i] = s
		}
		return qb.Clone().Where(field).In(in...), nil
	}
}

// WhereNumber compares a numeric field against the request value with op.
func WhereNumber(field string, op query.ComparisonOperator) QueryFunc {
	return func(qb *query.QueryBuilder, v filter.Value) (*query.QueryBuilder, error) {
		n, err := Number(v)
		if err != nil {
			return nil, err
		}
		return qb.Clone().Where(field).Custom(op, n), nil
	}
}

// OrderBy appends a sort on one of the sortable fields.
func OrderBy(sortable ...string) QueryFunc {
	return func(qb *query.QueryBuilder, v filter.Value) (*query.QueryBuilder, error) {
		cfg, err := Sort(v, sortable...)
		if err != nil {
			return nil, err
		}
		return qb.Clone().OrderBy(cfg.Field, cfg.Direction), nil
	}
}

// Limit caps the page size. Values above maxLimit are rejected, not clamped.
func Limit(maxLimit int) QueryFunc {
	return func(qb *query.QueryBuilder, v filter.Value) (*query.QueryBuilder, error) {
		n, err := pageSize(v, maxLimit)
		if err != nil {
			return nil, err
		}
		return qb.Clone().Limit(n), nil
	}
}

// Offset skips the given number of rows.
func Offset() QueryFunc {
	return func(qb *query.QueryBuilder, v filter.Value) (*query.QueryBuilder, error) {
		n, err := Int(v)
		if err != nil {
			return nil, err
		}
		return qb.Clone().Offset(n), nil
	}
}
