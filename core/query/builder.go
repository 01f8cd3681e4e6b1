package query

import (
	"slices"

	"github.com/asaidimu/go-sieve/core/schema"
)

// QueryBuilder provides a fluent API for building QueryDSL structures. Each
// Where call narrows the query further: conditions accumulate under a single
// AND group. Builders are mutable; use Clone before narrowing a shared one.
type QueryBuilder struct {
	query QueryDSL
}

// NewQueryBuilder creates a new, empty query builder instance. An empty
// builder selects everything.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		query: QueryDSL{},
	}
}

// Build returns a copy of the constructed QueryDSL.
func (qb *QueryBuilder) Build() QueryDSL {
	return qb.Clone().query
}

// Clone creates a deep copy of the builder, so the copy can be narrowed
// without affecting the original.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	out := &QueryBuilder{}
	out.query.Filters = qb.query.Filters.Clone()
	out.query.Sort = slices.Clone(qb.query.Sort)
	if qb.query.Pagination != nil {
		p := *qb.query.Pagination
		if p.Offset != nil {
			p.Offset = IntPtr(*p.Offset)
		}
		out.query.Pagination = &p
	}
	return out
}

// Where begins the construction of a filter condition for a specific field.
func (qb *QueryBuilder) Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{
		parent: qb,
		field:  field,
	}
}

// WhereGroup begins a group of conditions combined with operator. The group
// is AND-ed with the existing filters when End is called.
func (qb *QueryBuilder) WhereGroup(operator schema.LogicalOperator) *FilterGroupBuilder {
	return &FilterGroupBuilder{
		parent:     qb,
		operator:   operator,
		conditions: []QueryFilter{},
	}
}

// And adds filter to the query, AND-ed with any existing filters.
func (qb *QueryBuilder) And(filter QueryFilter) *QueryBuilder {
	current := qb.query.Filters
	switch {
	case current == nil:
		qb.query.Filters = &filter
	case current.Group != nil && current.Group.Operator == schema.LogicalAnd:
		current.Group.Conditions = append(current.Group.Conditions, filter)
	default:
		qb.query.Filters = &QueryFilter{
			Group: &FilterGroup{
				Operator:   schema.LogicalAnd,
				Conditions: []QueryFilter{*current, filter},
			},
		}
	}
	return qb
}

// FilterConditionBuilder is used to build a single filter condition (e.g., field = value).
type FilterConditionBuilder struct {
	parent *QueryBuilder
	field  string
}

// Eq adds an equality condition to the query.
func (fcb *FilterConditionBuilder) Eq(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorEq, value)
}

// Neq adds a not-equal condition to the query.
func (fcb *FilterConditionBuilder) Neq(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNeq, value)
}

// Lt adds a less-than condition to the query.
func (fcb *FilterConditionBuilder) Lt(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorLt, value)
}

// Lte adds a less-than-or-equal condition to the query.
func (fcb *FilterConditionBuilder) Lte(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorLte, value)
}

// Gt adds a greater-than condition to the query.
func (fcb *FilterConditionBuilder) Gt(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorGt, value)
}

// Gte adds a greater-than-or-equal condition to the query.
func (fcb *FilterConditionBuilder) Gte(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorGte, value)
}

// In adds an "in" condition, checking if a field's value is within a set of values.
func (fcb *FilterConditionBuilder) In(values ...FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorIn, values)
}

// Nin adds a "not in" condition.
func (fcb *FilterConditionBuilder) Nin(values ...FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNin, values)
}

// Contains adds a condition to check if a string field contains a substring.
func (fcb *FilterConditionBuilder) Contains(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorContains, value)
}

// StartsWith adds a condition to check if a string field starts with a specific prefix.
func (fcb *FilterConditionBuilder) StartsWith(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorStartsWith, value)
}

// EndsWith adds a condition to check if a string field ends with a specific suffix.
func (fcb *FilterConditionBuilder) EndsWith(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorEndsWith, value)
}

// Exists adds a condition to check if a field exists and is not null.
func (fcb *FilterConditionBuilder) Exists() *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorExists, true)
}

// Custom allows for the use of a custom comparison operator.
func (fcb *FilterConditionBuilder) Custom(operator ComparisonOperator, value FilterValue) *QueryBuilder {
	return fcb.addCondition(operator, value)
}

func (fcb *FilterConditionBuilder) addCondition(operator ComparisonOperator, value FilterValue) *QueryBuilder {
	return fcb.parent.And(QueryFilter{Condition: &FilterCondition{
		Field:    fcb.field,
		Operator: operator,
		Value:    value,
	}})
}

// FilterGroupBuilder is used to build a group of filter conditions.
type FilterGroupBuilder struct {
	parent     *QueryBuilder
	operator   schema.LogicalOperator
	conditions []QueryFilter
}

// Where adds a condition to the group.
func (fgb *FilterGroupBuilder) Where(field string, operator ComparisonOperator, value FilterValue) *FilterGroupBuilder {
	fgb.conditions = append(fgb.conditions, QueryFilter{Condition: &FilterCondition{
		Field:    field,
		Operator: operator,
		Value:    value,
	}})
	return fgb
}

// End finalizes the group and returns to the query builder. An empty group
// leaves the query unchanged.
func (fgb *FilterGroupBuilder) End() *QueryBuilder {
	if len(fgb.conditions) == 0 {
		return fgb.parent
	}
	return fgb.parent.And(QueryFilter{Group: &FilterGroup{
		Operator:   fgb.operator,
		Conditions: fgb.conditions,
	}})
}

// OrderBy adds a sorting configuration to the query.
func (qb *QueryBuilder) OrderBy(field string, direction SortDirection) *QueryBuilder {
	qb.query.Sort = append(qb.query.Sort, SortConfiguration{
		Field:     field,
		Direction: direction,
	})
	return qb
}

// OrderByAsc adds an ascending sort order for a specific field.
func (qb *QueryBuilder) OrderByAsc(field string) *QueryBuilder {
	return qb.OrderBy(field, SortDirectionAsc)
}

// OrderByDesc adds a descending sort order for a specific field.
func (qb *QueryBuilder) OrderByDesc(field string) *QueryBuilder {
	return qb.OrderBy(field, SortDirectionDesc)
}

// Limit sets the maximum number of records to be returned by the query.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	if qb.query.Pagination == nil {
		qb.query.Pagination = &PaginationOptions{}
	}
	qb.query.Pagination.Limit = limit
	return qb
}

// Offset sets the starting point for the result set.
func (qb *QueryBuilder) Offset(offset int) *QueryBuilder {
	if qb.query.Pagination == nil {
		qb.query.Pagination = &PaginationOptions{}
	}
	qb.query.Pagination.Offset = IntPtr(offset)
	return qb
}
