package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

// Open opens a SQLite database at path. In-memory databases are limited to a
// single connection, since every connection would otherwise see its own
// empty database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Store executes queries for one schema against a SQLite database.
type Store struct {
	db        *sql.DB
	schema    *schema.SchemaDefinition
	generator query.QueryGenerator
	logger    *zap.Logger
}

// NewStore creates a Store for sc. A nil logger is replaced by a no-op logger.
func NewStore(db *sql.DB, sc *schema.SchemaDefinition, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store requires a database connection")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sc == nil {
		return nil, fmt.Errorf("SchemaDefinition cannot be nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	generator, err := NewSqliteQueryGeneratorFactory().CreateGenerator(sc)
	if err != nil {
		return nil, fmt.Errorf("could not get a query generator instance: %w", err)
	}
	return &Store{
		db:        db,
		schema:    sc,
		generator: generator,
		logger:    logger.With(zap.String("collection", sc.Name)),
	}, nil
}

// Schema returns the schema the store was created for.
func (s *Store) Schema() *schema.SchemaDefinition {
	return s.schema
}

// CreateTable creates the table and its indexes if they do not exist yet.
func (s *Store) CreateTable(ctx context.Context) error {
	statements, err := CreateTableSQL(s.schema)
	if err != nil {
		return fmt.Errorf("failed to generate SQL for table %s: %w", s.schema.Name, err)
	}
	for _, stmt := range statements {
		s.logger.Debug("Executing DDL", zap.String("sql", stmt))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
		}
	}
	return nil
}

// Insert validates docs against the schema, then writes them in a single
// statement. It returns the number of rows written.
func (s *Store) Insert(ctx context.Context, docs ...schema.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	validator := schema.NewValidator(s.schema)
	records := make([]map[string]any, len(docs))
	for i, doc := range docs {
		if err := validator.Check(doc); err != nil {
			return 0, fmt.Errorf("document %d: %w", i, err)
		}
		records[i] = doc
	}

	sqlQuery, queryParams, err := s.generator.GenerateInsertSQL(records)
	if err != nil {
		return 0, fmt.Errorf("failed to generate INSERT SQL: %w", err)
	}
	s.logger.Debug("Executing SQL INSERT", zap.String("sql", sqlQuery), zap.Int("records", len(records)))

	result, err := s.db.ExecContext(ctx, sqlQuery, queryParams...)
	if err != nil {
		s.logger.Error("Failed to execute INSERT query", zap.Error(err), zap.String("sql", sqlQuery))
		return 0, fmt.Errorf("failed to execute INSERT query: %w", err)
	}
	return result.RowsAffected()
}

// Find runs the query held by qb. A nil builder selects every row.
func (s *Store) Find(ctx context.Context, qb *query.QueryBuilder) ([]schema.Document, error) {
	if qb == nil {
		qb = query.NewQueryBuilder()
	}
	dsl := qb.Build()
	return s.Select(ctx, &dsl)
}

// Select executes a SELECT for dsl and returns the matching documents.
func (s *Store) Select(ctx context.Context, dsl *query.QueryDSL) ([]schema.Document, error) {
	sqlQuery, queryParams, err := s.generator.GenerateSelectSQL(dsl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SQL query: %w", err)
	}

	s.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.Any("params", queryParams))

	rows, err := s.db.QueryContext(ctx, sqlQuery, queryParams...)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()
	return readRows(s.logger, s.schema, rows)
}

// Count returns the number of rows matching filters.
func (s *Store) Count(ctx context.Context, filters *query.QueryFilter) (int64, error) {
	sqlQuery, queryParams, err := s.generator.GenerateCountSQL(filters)
	if err != nil {
		return 0, fmt.Errorf("failed to generate COUNT SQL: %w", err)
	}
	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, queryParams...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to execute COUNT query: %w", err)
	}
	return count, nil
}

// readRows reads all rows into documents, converting column values back to the
// Go types their schema field types describe.
func readRows(logger *zap.Logger, sc *schema.SchemaDefinition, rows *sql.Rows) ([]schema.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := []schema.Document{}
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(schema.Document, len(columns))
		for i, col := range columns {
			fieldDef, ok := sc.Fields[col]
			if !ok {
				logger.Warn("Column not found in schema, using raw value", zap.String("column", col))
				row[col] = values[i]
				continue
			}
			row[col] = fromColumn(fieldDef.Type, values[i])
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func fromColumn(fieldType schema.FieldType, val any) any {
	if val == nil {
		return nil
	}
	switch fieldType {
	case schema.FieldTypeBoolean:
		if intVal, ok := val.(int64); ok {
			return intVal != 0
		}
	case schema.FieldTypeString, schema.FieldTypeEnum:
		if byteVal, ok := val.([]byte); ok {
			return string(byteVal)
		}
	case schema.FieldTypeInteger:
		if floatVal, ok := val.(float64); ok {
			return int64(floatVal)
		}
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		if intVal, ok := val.(int64); ok {
			return float64(intVal)
		}
	case schema.FieldTypeRecord:
		var raw []byte
		switch v := val.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		}
		if raw != nil {
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err == nil {
				return decoded
			}
		}
	}
	return val
}
