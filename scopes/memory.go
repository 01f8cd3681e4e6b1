package scopes

import (
	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
)

// DocumentFunc narrows an in-memory list of documents.
type DocumentFunc = filter.Func[[]schema.Document]

// Documents builds scopes evaluated in memory by a DataProcessor. They mirror
// the query scopes, so one set of filter names can back both collections.
type Documents struct {
	processor *query.DataProcessor
}

// NewDocuments creates Documents scopes. A nil processor is replaced by a
// processor without custom predicates.
func NewDocuments(processor *query.DataProcessor) Documents {
	if processor == nil {
		processor = query.NewDataProcessor(nil)
	}
	return Documents{processor: processor}
}

func (d Documents) filter(rows []schema.Document, field string, op query.ComparisonOperator, value query.FilterValue) ([]schema.Document, error) {
	return d.processor.FilterRows(rows, &query.QueryFilter{Condition: &query.FilterCondition{
		Field:    field,
		Operator: op,
		Value:    value,
	}})
}

// Where compares field against the request value with op.
func (d Documents) Where(field string, op query.ComparisonOperator) DocumentFunc {
	return func(rows []schema.Document, v filter.Value) ([]schema.Document, error) {
		s, err := String(v)
		if err != nil {
			return nil, err
		}
		return d.filter(rows, field, op, s)
	}
}

// WhereIn keeps documents whose field is one of the listed values.
func (d Documents) WhereIn(field string) DocumentFunc {
	return func(rows []schema.Document, v filter.Value) ([]schema.Document, error) {
		values, err := Strings(v)
		if err != nil {
			return nil, err
		}
		return d.filter(rows, field, query.ComparisonOperatorIn, values)
	}
}

// WhereNumber compares a numeric field against the request value with op.
func (d Documents) WhereNumber(field string, op query.ComparisonOperator) DocumentFunc {
	return func(rows []schema.Document, v filter.Value) ([]schema.Document, error) {
		n, err := Number(v)
		if err != nil {
			return nil, err
		}
		return d.filter(rows, field, op, n)
	}
}

// OrderBy sorts on one of the sortable fields. The sort is stable, so an
// earlier order is kept between equal keys.
func (d Documents) OrderBy(sortable ...string) DocumentFunc {
	return func(rows []schema.Document, v filter.Value) ([]schema.Document, error) {
		cfg, err := Sort(v, sortable...)
		if err != nil {
			return nil, err
		}
		return d.processor.SortRows(rows, []query.SortConfiguration{cfg}), nil
	}
}

// Limit keeps the first n documents. Values above maxLimit are rejected.
func (d Documents) Limit(maxLimit int) DocumentFunc {
	return func(rows []schema.Document, v filter.Value) ([]schema.Document, error) {
		n, err := pageSize(v, maxLimit)
		if err != nil {
			return nil, err
		}
		return d.processor.Paginate(rows, &query.PaginationOptions{Limit: n}), nil
	}
}

// Offset drops the first n documents.
func (d Documents) Offset() DocumentFunc {
	return func(rows []schema.Document, v filter.Value) ([]schema.Document, error) {
		n, err := Int(v)
		if err != nil {
			return nil, err
		}
		return d.processor.Paginate(rows, &query.PaginationOptions{Offset: &n}), nil
	}
}
