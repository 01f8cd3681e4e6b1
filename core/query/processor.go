package query

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/asaidimu/go-sieve/core/schema"
	"go.uber.org/zap"
)

// PredicateFunction is a pure Go function that performs custom filtering logic on a row.
// It takes a Row and returns true if the row passes the filter, false otherwise,
// and an error if evaluation fails.
type PredicateFunction func(doc schema.Document, field string, args FilterValue) (bool, error)

// DataProcessor evaluates a QueryDSL against documents held in memory. Standard
// operators are built in; custom operators must be registered first.
type DataProcessor struct {
	goFilterFunctions map[ComparisonOperator]PredicateFunction
	mu                sync.RWMutex
	logger            *zap.Logger
}

// NewDataProcessor creates a new DataProcessor instance.
func NewDataProcessor(logger *zap.Logger) *DataProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataProcessor{
		goFilterFunctions: make(map[ComparisonOperator]PredicateFunction),
		logger:            logger,
	}
}

// RegisterFilterFunction registers a Go function for custom filtering.
func (p *DataProcessor) RegisterFilterFunction(operator ComparisonOperator, fn PredicateFunction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goFilterFunctions[operator] = fn
	p.logger.Info("Registered filter function", zap.String("operator", string(operator)))
}

// RegisterFilterFunctions registers multiple PredicateFunction functions from a map.
func (p *DataProcessor) RegisterFilterFunctions(functionMap map[ComparisonOperator]PredicateFunction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for operator, fn := range functionMap {
		p.goFilterFunctions[operator] = fn
		p.logger.Info("Registered filter function", zap.String("operator", string(operator)))
	}
}

// Execute filters, sorts and paginates rows according to dsl. The input slice
// is left untouched; the result is a new slice sharing the row maps.
func (p *DataProcessor) Execute(rows []schema.Document, dsl *QueryDSL) ([]schema.Document, error) {
	if dsl == nil {
		return slices.Clone(rows), nil
	}
	filtered, err := p.FilterRows(rows, dsl.Filters)
	if err != nil {
		return nil, err
	}
	sorted := p.SortRows(filtered, dsl.Sort)
	return p.Paginate(sorted, dsl.Pagination), nil
}

// FilterRows returns the rows that match filter, in their original order.
// PRODUCTION WARNING: This filtering happens in-memory. Prefer pushing filters
// to a QueryGenerator when the collection is backed by a database.
func (p *DataProcessor) FilterRows(rows []schema.Document, filter *QueryFilter) ([]schema.Document, error) {
	if filter == nil {
		return slices.Clone(rows), nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	filtered := make([]schema.Document, 0, len(rows))
	for _, row := range rows {
		passes, err := p.evaluate(row, filter)
		if err != nil {
			return nil, fmt.Errorf("error evaluating filter for row %+v: %w", row, err)
		}
		if passes {
			filtered = append(filtered, row)
		}
	}
	p.logger.Debug("Rows remaining after filters", zap.Int("count", len(filtered)))
	return filtered, nil
}

// SortRows returns a stably sorted copy of rows. Earlier sort entries take
// precedence; rows missing the field sort first.
func (p *DataProcessor) SortRows(rows []schema.Document, sorts []SortConfiguration) []schema.Document {
	sorted := slices.Clone(rows)
	if len(sorts) == 0 {
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b schema.Document) int {
		for _, s := range sorts {
			c := compareForSort(a[s.Field], b[s.Field])
			if s.Direction == SortDirectionDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// Paginate applies offset and limit to rows. A zero limit means no limit.
func (p *DataProcessor) Paginate(rows []schema.Document, pagination *PaginationOptions) []schema.Document {
	if pagination == nil {
		return slices.Clone(rows)
	}
	start := 0
	if pagination.Offset != nil && *pagination.Offset > 0 {
		start = min(*pagination.Offset, len(rows))
	}
	end := len(rows)
	if pagination.Limit > 0 {
		end = min(start+pagination.Limit, len(rows))
	}
	return slices.Clone(rows[start:end])
}

// Match evaluates a given document against filters. A nil filter matches
// everything.
func (p *DataProcessor) Match(ctx context.Context, filters *QueryFilter, data schema.Document) (bool, error) {
	if filters == nil {
		return true, nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.evaluate(data, filters)
}

// evaluate recursively evaluates a QueryFilter. Callers hold the read lock.
func (p *DataProcessor) evaluate(row schema.Document, filter *QueryFilter) (bool, error) {
	if filter.Condition != nil {
		if !filter.Condition.Operator.IsStandard() {
			fn, ok := p.goFilterFunctions[filter.Condition.Operator]
			if !ok {
				return false, fmt.Errorf("unregistered Go filter function for operator: %s", filter.Condition.Operator)
			}
			return fn(row, filter.Condition.Field, filter.Condition.Value)
		}
		return evaluateStandardCondition(row, filter.Condition)
	}
	if filter.Group != nil {
		switch filter.Group.Operator {
		case schema.LogicalAnd:
			for i := range filter.Group.Conditions {
				passes, err := p.evaluate(row, &filter.Group.Conditions[i])
				if err != nil || !passes {
					return false, err
				}
			}
			return true, nil
		case schema.LogicalOr:
			for i := range filter.Group.Conditions {
				passes, err := p.evaluate(row, &filter.Group.Conditions[i])
				if err != nil {
					return false, err
				}
				if passes {
					return true, nil
				}
			}
			return false, nil
		default:
			return false, fmt.Errorf("unsupported logical operator for Go evaluation: %s", filter.Group.Operator)
		}
	}
	return false, fmt.Errorf("empty or invalid filter structure for Go evaluation")
}

// evaluateStandardCondition performs the in-memory evaluation for standard comparison operators.
func evaluateStandardCondition(row schema.Document, condition *FilterCondition) (bool, error) {
	fieldValue, ok := row[condition.Field]
	if condition.Operator == ComparisonOperatorExists {
		return ok && fieldValue != nil, nil
	}
	if condition.Operator == ComparisonOperatorNotExists {
		return !ok || fieldValue == nil, nil
	}
	if !ok {
		// If the field doesn't exist in the row, the condition fails.
		return false, nil
	}

	switch condition.Operator {
	case ComparisonOperatorEq:
		return valuesEqual(fieldValue, condition.Value), nil
	case ComparisonOperatorNeq:
		return !valuesEqual(fieldValue, condition.Value), nil
	case ComparisonOperatorGt, ComparisonOperatorGte, ComparisonOperatorLt, ComparisonOperatorLte:
		c, err := compareValues(fieldValue, condition.Value)
		if err != nil {
			return false, fmt.Errorf("unsupported %s comparison: %w", condition.Operator, err)
		}
		switch condition.Operator {
		case ComparisonOperatorGt:
			return c > 0, nil
		case ComparisonOperatorGte:
			return c >= 0, nil
		case ComparisonOperatorLt:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case ComparisonOperatorIn, ComparisonOperatorNin:
		found := false
		for _, candidate := range toSlice(condition.Value) {
			if valuesEqual(fieldValue, candidate) {
				found = true
				break
			}
		}
		if condition.Operator == ComparisonOperatorIn {
			return found, nil
		}
		return !found, nil
	case ComparisonOperatorContains, ComparisonOperatorNotContains, ComparisonOperatorStartsWith, ComparisonOperatorEndsWith:
		s, ok := fieldValue.(string)
		if !ok {
			return false, fmt.Errorf("operator %s requires a string field, got %T for '%s'", condition.Operator, fieldValue, condition.Field)
		}
		needle := fmt.Sprintf("%v", condition.Value)
		switch condition.Operator {
		case ComparisonOperatorContains:
			return strings.Contains(s, needle), nil
		case ComparisonOperatorNotContains:
			return !strings.Contains(s, needle), nil
		case ComparisonOperatorStartsWith:
			return strings.HasPrefix(s, needle), nil
		default:
			return strings.HasSuffix(s, needle), nil
		}
	default:
		return false, fmt.Errorf("unsupported standard comparison operator for Go evaluation: %s", condition.Operator)
	}
}

// valuesEqual compares numbers by value regardless of their Go type, and
// everything else structurally.
func valuesEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		fa, _ := ToFloat64(a)
		fb, _ := ToFloat64(b)
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders numbers, strings and times.
func compareValues(a, b any) (int, error) {
	if fa, ok := ToFloat64(a); ok {
		if fb, ok := ToFloat64(b); ok {
			return cmp.Compare(fa, fb), nil
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// compareForSort is a total order over document values: nil first, then
// comparable values, falling back to their printed form.
func compareForSort(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c, err := compareValues(a, b); err == nil {
		return c
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// toSlice turns a slice of any element type into []any. Non-slices become a
// single element list.
func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	if vals, ok := v.([]any); ok {
		return vals
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
