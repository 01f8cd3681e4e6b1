package catalog

import (
	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
	"github.com/asaidimu/go-sieve/scopes"
)

// DefaultMaxLimit bounds the page size clients may request.
const DefaultMaxLimit = 100

// Sortable lists the fields clients may sort products by.
var Sortable = []string{"name", "price", "created_at"}

// QueryFilters is the product whitelist for queries run by a store.
func QueryFilters(maxLimit int) *filter.Registry[*query.QueryBuilder] {
	return filter.NewBuilder[*query.QueryBuilder]("products").
		Register("status", scopes.Where("status", query.ComparisonOperatorEq)).
		Register("location", scopes.Where("location", query.ComparisonOperatorEq)).
		Register("starts_with", scopes.Where("name", query.ComparisonOperatorStartsWith)).
		Register("min_price", scopes.WhereNumber("price", query.ComparisonOperatorGte)).
		Register("max_price", scopes.WhereNumber("price", query.ComparisonOperatorLte)).
		Register("statuses", scopes.WhereIn("status")).
		Register("sort", scopes.OrderBy(Sortable...)).
		Register("limit", scopes.Limit(maxLimit)).
		Register("offset", scopes.Offset()).
		MustBuild()
}

// DocumentFilters is the same whitelist evaluated in memory by p.
func DocumentFilters(p *query.DataProcessor, maxLimit int) *filter.Registry[[]schema.Document] {
	d := scopes.NewDocuments(p)
	return filter.NewBuilder[[]schema.Document]("products").
		Register("status", d.Where("status", query.ComparisonOperatorEq)).
		Register("location", d.Where("location", query.ComparisonOperatorEq)).
		Register("starts_with", d.Where("name", query.ComparisonOperatorStartsWith)).
		Register("min_price", d.WhereNumber("price", query.ComparisonOperatorGte)).
		Register("max_price", d.WhereNumber("price", query.ComparisonOperatorLte)).
		Register("statuses", d.WhereIn("status")).
		Register("sort", d.OrderBy(Sortable...)).
		Register("limit", d.Limit(maxLimit)).
		Register("offset", d.Offset()).
		MustBuild()
}
