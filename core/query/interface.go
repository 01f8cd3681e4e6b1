package query

import (
	"github.com/asaidimu/go-sieve/core/schema"
)

// QueryGeneratorFactory creates QueryGenerator instances bound to a schema.
type QueryGeneratorFactory interface {
	CreateGenerator(schema *schema.SchemaDefinition) (QueryGenerator, error)
}

// QueryGenerator translates a QueryDSL into a database-specific statement.
type QueryGenerator interface {
	// GenerateSelectSQL creates a SELECT statement and its bound parameters,
	// translating filters, sorting and pagination into the target dialect.
	GenerateSelectSQL(dsl *QueryDSL) (string, []any, error)

	// GenerateCountSQL creates a statement counting the rows that match filters.
	GenerateCountSQL(filters *QueryFilter) (string, []any, error)

	// GenerateInsertSQL creates an INSERT statement for records.
	GenerateInsertSQL(records []map[string]any) (string, []any, error)
}
