package sqlite

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
)

// SqliteQueryGeneratorFactory implements the QueryGeneratorFactory for SQLite.
type SqliteQueryGeneratorFactory struct{}

// NewSqliteQueryGeneratorFactory creates a new instance of SqliteQueryGeneratorFactory.
func NewSqliteQueryGeneratorFactory() *SqliteQueryGeneratorFactory {
	return &SqliteQueryGeneratorFactory{}
}

// CreateGenerator creates a new SqliteQuery (which is a QueryGenerator) for the given schema.
func (f *SqliteQueryGeneratorFactory) CreateGenerator(schema *schema.SchemaDefinition) (query.QueryGenerator, error) {
	return NewSqliteQuery(schema)
}

// SqliteQuery is a schema-aware query generator for SQLite. Field references
// are checked against the schema, so a DSL can never name a column the schema
// does not declare.
type SqliteQuery struct {
	schema *schema.SchemaDefinition
}

// NewSqliteQuery creates a new schema-aware query generator for SQLite.
func NewSqliteQuery(schema *schema.SchemaDefinition) (*SqliteQuery, error) {
	if schema == nil {
		return nil, fmt.Errorf("SchemaDefinition cannot be nil")
	}
	if schema.Name == "" {
		return nil, fmt.Errorf("schema must define a table name")
	}
	return &SqliteQuery{schema: schema}, nil
}

// quoteIdentifier properly quotes an identifier for SQLite.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// fieldSQL returns the quoted column for a declared field.
func (s *SqliteQuery) fieldSQL(field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("field name cannot be empty")
	}
	if _, ok := s.schema.Fields[field]; !ok {
		return "", fmt.Errorf("field '%s' not found in schema", field)
	}
	return quoteIdentifier(field), nil
}

// prepareValueForQuery converts a Go value into the storage representation of
// the field it is compared with.
func (s *SqliteQuery) prepareValueForQuery(fieldName string, value any) (any, error) {
	field, exists := s.schema.Fields[fieldName]
	if !exists {
		return nil, fmt.Errorf("field '%s' not found in schema for value preparation", fieldName)
	}
	if value == nil {
		return nil, nil
	}

	switch field.Type {
	case schema.FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		case string:
			switch strings.ToLower(v) {
			case "true", "1":
				return 1, nil
			case "false", "0":
				return 0, nil
			}
		case int, int64:
			return v, nil
		}
		return nil, fmt.Errorf("expected boolean for FieldTypeBoolean, got %T for field '%s'", value, fieldName)

	case schema.FieldTypeRecord:
		return marshalJSON(fieldName, value)

	case schema.FieldTypeEnum:
		if strVal, ok := value.(string); ok {
			return strVal, nil
		}
		return fmt.Sprintf("%v", value), nil

	default:
		return value, nil
	}
}

// GenerateSelectSQL creates a complete SQL SELECT query string and its
// parameters from a QueryDSL.
func (s *SqliteQuery) GenerateSelectSQL(dsl *query.QueryDSL) (string, []any, error) {
	if dsl == nil {
		return "", nil, fmt.Errorf("QueryDSL cannot be nil")
	}

	var queryParams []any
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(s.schema.Name)))

	if dsl.Filters != nil {
		whereSQL, err := s.buildWhereClause(dsl.Filters, &queryParams)
		if err != nil {
			return "", nil, fmt.Errorf("error building WHERE clause: %w", err)
		}
		if whereSQL != "" {
			sb.WriteString(" WHERE " + whereSQL)
		}
	}

	if len(dsl.Sort) > 0 {
		orderBy := make([]string, 0, len(dsl.Sort))
		for _, sortCfg := range dsl.Sort {
			accessor, err := s.fieldSQL(sortCfg.Field)
			if err != nil {
				return "", nil, fmt.Errorf("sort error: %w", err)
			}
			direction := "ASC"
			if sortCfg.Direction == query.SortDirectionDesc {
				direction = "DESC"
			}
			orderBy = append(orderBy, accessor+" "+direction)
		}
		sb.WriteString(" ORDER BY " + strings.Join(orderBy, ", "))
	}

	if p := dsl.Pagination; p != nil {
		offset := 0
		if p.Offset != nil {
			offset = *p.Offset
		}
		switch {
		case p.Limit > 0:
			sb.WriteString(" LIMIT ?")
			queryParams = append(queryParams, p.Limit)
		case offset > 0:
			// SQLite only accepts OFFSET after a LIMIT clause.
			sb.WriteString(" LIMIT -1")
		}
		if offset > 0 {
			sb.WriteString(" OFFSET ?")
			queryParams = append(queryParams, offset)
		}
	}

	return sb.String() + ";", queryParams, nil
}

// GenerateCountSQL creates a SELECT COUNT(*) statement for the rows matching filters.
func (s *SqliteQuery) GenerateCountSQL(filters *query.QueryFilter) (string, []any, error) {
	var queryParams []any
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(s.schema.Name))
	if filters != nil {
		whereSQL, err := s.buildWhereClause(filters, &queryParams)
		if err != nil {
			return "", nil, fmt.Errorf("error building WHERE clause for count: %w", err)
		}
		if whereSQL != "" {
			sql += " WHERE " + whereSQL
		}
	}
	return sql + ";", queryParams, nil
}

// buildWhereClause recursively builds the WHERE clause from a QueryFilter.
func (s *SqliteQuery) buildWhereClause(filter *query.QueryFilter, params *[]any) (string, error) {
	if filter.Condition != nil {
		return s.buildCondition(filter.Condition, params)
	}
	if filter.Group != nil {
		var op string
		switch filter.Group.Operator {
		case schema.LogicalAnd:
			op = "AND"
		case schema.LogicalOr:
			op = "OR"
		case "":
			return "", fmt.Errorf("logical operator missing in filter group")
		default:
			return "", fmt.Errorf("unsupported logical operator: %s", filter.Group.Operator)
		}
		var clauses []string
		for i := range filter.Group.Conditions {
			clause, err := s.buildWhereClause(&filter.Group.Conditions[i], params)
			if err != nil {
				return "", err
			}
			if clause != "" {
				clauses = append(clauses, clause)
			}
		}
		if len(clauses) == 0 {
			return "", nil
		}
		return fmt.Sprintf("(%s)", strings.Join(clauses, " "+op+" ")), nil
	}
	return "", fmt.Errorf("invalid filter structure: neither Condition nor Group is set")
}

// buildCondition translates a single FilterCondition into a SQL condition string.
func (s *SqliteQuery) buildCondition(cond *query.FilterCondition, params *[]any) (string, error) {
	accessor, err := s.fieldSQL(cond.Field)
	if err != nil {
		return "", err
	}

	switch cond.Operator {
	case query.ComparisonOperatorExists:
		return fmt.Sprintf("%s IS NOT NULL", accessor), nil
	case query.ComparisonOperatorNotExists:
		return fmt.Sprintf("%s IS NULL", accessor), nil
	case query.ComparisonOperatorIn, query.ComparisonOperatorNin:
		return s.buildInCondition(accessor, cond, params)
	}

	preparedValue, err := s.prepareValueForQuery(cond.Field, cond.Value)
	if err != nil {
		return "", fmt.Errorf("failed to prepare value for condition field '%s': %w", cond.Field, err)
	}

	binary := map[query.ComparisonOperator]string{
		query.ComparisonOperatorEq:  "=",
		query.ComparisonOperatorNeq: "!=",
		query.ComparisonOperatorLt:  "<",
		query.ComparisonOperatorLte: "<=",
		query.ComparisonOperatorGt:  ">",
		query.ComparisonOperatorGte: ">=",
	}
	if op, ok := binary[cond.Operator]; ok {
		*params = append(*params, preparedValue)
		return fmt.Sprintf("%s %s ?", accessor, op), nil
	}

	pattern := escapeLike(fmt.Sprintf("%v", preparedValue))
	switch cond.Operator {
	case query.ComparisonOperatorContains:
		*params = append(*params, "%"+pattern+"%")
		return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, accessor), nil
	case query.ComparisonOperatorNotContains:
		*params = append(*params, "%"+pattern+"%")
		return fmt.Sprintf(`%s NOT LIKE ? ESCAPE '\'`, accessor), nil
	case query.ComparisonOperatorStartsWith:
		*params = append(*params, pattern+"%")
		return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, accessor), nil
	case query.ComparisonOperatorEndsWith:
		*params = append(*params, "%"+pattern)
		return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, accessor), nil
	default:
		return "", fmt.Errorf("unsupported comparison operator for direct SQL: %s", cond.Operator)
	}
}

func (s *SqliteQuery) buildInCondition(accessor string, cond *query.FilterCondition, params *[]any) (string, error) {
	var vals []any
	switch v := cond.Value.(type) {
	case []query.FilterValue:
		for _, item := range v {
			vals = append(vals, item)
		}
	case []any:
		vals = v
	case []string:
		for _, item := range v {
			vals = append(vals, item)
		}
	case nil:
	default:
		vals = []any{v}
	}

	if len(vals) == 0 {
		if cond.Operator == query.ComparisonOperatorIn {
			return "1=0", nil // IN empty list is always false
		}
		return "1=1", nil // NOT IN empty list is always true
	}

	for _, v := range vals {
		prepared, err := s.prepareValueForQuery(cond.Field, v)
		if err != nil {
			return "", fmt.Errorf("failed to prepare value for condition field '%s': %w", cond.Field, err)
		}
		*params = append(*params, prepared)
	}
	placeholders := strings.Repeat("?,", len(vals)-1) + "?"
	op := "IN"
	if cond.Operator == query.ComparisonOperatorNin {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", accessor, op, placeholders), nil
}

// escapeLike escapes LIKE wildcards so user supplied text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GenerateInsertSQL creates a SQL INSERT statement for records. Columns are
// the union of the records' keys in lexical order; missing values are NULL.
func (s *SqliteQuery) GenerateInsertSQL(records []map[string]any) (string, []any, error) {
	if len(records) == 0 {
		return "", nil, fmt.Errorf("no records provided for insert")
	}

	fieldSet := make(map[string]struct{})
	for _, record := range records {
		for fieldName := range record {
			if _, exists := s.schema.Fields[fieldName]; !exists {
				return "", nil, fmt.Errorf("field '%s' not found in schema", fieldName)
			}
			fieldSet[fieldName] = struct{}{}
		}
	}
	var fields []string
	for _, name := range s.schema.FieldNames() {
		if _, ok := fieldSet[name]; ok {
			fields = append(fields, name)
		}
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no valid fields found in records")
	}

	quotedFields := make([]string, len(fields))
	for i, field := range fields {
		quotedFields[i] = quoteIdentifier(field)
	}

	rowPlaceholder := "(" + strings.Repeat("?, ", len(fields)-1) + "?)"
	valuesClauses := make([]string, 0, len(records))
	var queryParams []any
	for _, record := range records {
		for _, fieldName := range fields {
			preparedValue, err := s.prepareValueForQuery(fieldName, record[fieldName])
			if err != nil {
				return "", nil, fmt.Errorf("error preparing value for field '%s': %w", fieldName, err)
			}
			queryParams = append(queryParams, preparedValue)
		}
		valuesClauses = append(valuesClauses, rowPlaceholder)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;",
		quoteIdentifier(s.schema.Name), strings.Join(quotedFields, ", "), strings.Join(valuesClauses, ", "))
	return sql, queryParams, nil
}
