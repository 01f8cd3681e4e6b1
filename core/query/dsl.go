// Package query defines the Domain-Specific Language (DSL) for describing a
// narrowed view of a collection: filters, sorting and pagination. A QueryDSL is
// data only; executing it is left to a QueryGenerator or the DataProcessor.
package query

import (
	"maps"

	"github.com/asaidimu/go-sieve/core/schema"
)

// ComparisonOperator defines the set of operators that can be used in a filter condition.
type ComparisonOperator string

// Supported comparison operators.
const (
	ComparisonOperatorEq          ComparisonOperator = "eq"
	ComparisonOperatorNeq         ComparisonOperator = "neq"
	ComparisonOperatorLt          ComparisonOperator = "lt"
	ComparisonOperatorLte         ComparisonOperator = "lte"
	ComparisonOperatorGt          ComparisonOperator = "gt"
	ComparisonOperatorGte         ComparisonOperator = "gte"
	ComparisonOperatorIn          ComparisonOperator = "in"
	ComparisonOperatorNin         ComparisonOperator = "nin"
	ComparisonOperatorContains    ComparisonOperator = "contains"
	ComparisonOperatorNotContains ComparisonOperator = "ncontains"
	ComparisonOperatorStartsWith  ComparisonOperator = "startswith"
	ComparisonOperatorEndsWith    ComparisonOperator = "endswith"
	ComparisonOperatorExists      ComparisonOperator = "exists"
	ComparisonOperatorNotExists   ComparisonOperator = "nexists"
)

// FilterValue represents the value used in a filter condition.
type FilterValue any

// FilterCondition defines a single condition for filtering the results of a query.
type FilterCondition struct {
	Field    string             // The field to apply the filter on.
	Operator ComparisonOperator // The comparison operator to use.
	Value    FilterValue        // The value to compare against.
}

// FilterGroup combines multiple filter conditions using a logical operator.
type FilterGroup struct {
	Operator   schema.LogicalOperator // The logical operator (AND, OR) to combine the conditions.
	Conditions []QueryFilter          // The list of conditions or nested groups.
}

// QueryFilter is a union type that can represent either a single filter condition
// or a group of conditions.
type QueryFilter struct {
	Condition *FilterCondition `json:",omitempty"`
	Group     *FilterGroup     `json:",omitempty"`
}

// Clone returns a deep copy of the filter tree. Condition values are copied by
// assignment; slice values are copied.
func (f *QueryFilter) Clone() *QueryFilter {
	if f == nil {
		return nil
	}
	out := &QueryFilter{}
	if f.Condition != nil {
		cond := *f.Condition
		if vals, ok := cond.Value.([]FilterValue); ok {
			cond.Value = append([]FilterValue(nil), vals...)
		}
		out.Condition = &cond
	}
	if f.Group != nil {
		group := &FilterGroup{Operator: f.Group.Operator}
		if f.Group.Conditions != nil {
			group.Conditions = make([]QueryFilter, len(f.Group.Conditions))
			for i := range f.Group.Conditions {
				group.Conditions[i] = *f.Group.Conditions[i].Clone()
			}
		}
		out.Group = group
	}
	return out
}

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// SortConfiguration defines the sorting order for a specific field.
type SortConfiguration struct {
	Field     string
	Direction SortDirection
}

// PaginationOptions defines how the query results should be paginated.
type PaginationOptions struct {
	Limit  int  // The maximum number of records to return; 0 means no limit.
	Offset *int `json:",omitempty"`
}

// QueryDSL is the top-level structure that represents a complete query.
type QueryDSL struct {
	Filters    *QueryFilter        `json:",omitempty"`
	Sort       []SortConfiguration `json:",omitempty"`
	Pagination *PaginationOptions  `json:",omitempty"`
}

// standardComparisonOperators is a set of all the standard, built-in comparison operators.
var standardComparisonOperators = map[ComparisonOperator]struct{}{
	ComparisonOperatorEq:          {},
	ComparisonOperatorNeq:         {},
	ComparisonOperatorLt:          {},
	ComparisonOperatorLte:         {},
	ComparisonOperatorGt:          {},
	ComparisonOperatorGte:         {},
	ComparisonOperatorIn:          {},
	ComparisonOperatorNin:         {},
	ComparisonOperatorContains:    {},
	ComparisonOperatorNotContains: {},
	ComparisonOperatorStartsWith:  {},
	ComparisonOperatorEndsWith:    {},
	ComparisonOperatorExists:      {},
	ComparisonOperatorNotExists:   {},
}

// IsStandard checks if a comparison operator is one of the standard, built-in operators.
func (c ComparisonOperator) IsStandard() bool {
	_, ok := standardComparisonOperators[c]
	return ok
}

// GetStandardComparisonOperators returns a copy of the set of standard
// comparison operators.
func GetStandardComparisonOperators() map[ComparisonOperator]struct{} {
	return maps.Clone(standardComparisonOperators)
}
