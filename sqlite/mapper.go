// Package sqlite stores schema described collections in SQLite and executes
// query DSLs against them. It maps schema definitions to DDL, translates the
// DSL into parameterised SQL and reads rows back into documents.
package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/asaidimu/go-sieve/core/schema"
)

// CreateTableSQL generates the DDL statements for a schema: the table itself
// followed by one statement per non-primary index. Columns are emitted in
// lexical order.
func CreateTableSQL(sc *schema.SchemaDefinition) ([]string, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS " + quoteIdentifier(sc.Name) + " (\n")

	var primaryKeys []string
	for _, index := range sc.Indexes {
		if index.Type == schema.IndexTypePrimary && len(index.Fields) > 0 {
			primaryKeys = index.Fields
			break
		}
	}

	columns := make([]string, 0, len(sc.Fields))
	for _, name := range sc.FieldNames() {
		columnDef, err := buildColumnDefinition(name, sc.Fields[name])
		if err != nil {
			return nil, fmt.Errorf("error on field '%s': %w", name, err)
		}
		columns = append(columns, "    "+columnDef)
	}
	sb.WriteString(strings.Join(columns, ",\n"))

	if len(primaryKeys) > 0 {
		quotedPKs := make([]string, len(primaryKeys))
		for i, pk := range primaryKeys {
			quotedPKs[i] = quoteIdentifier(pk)
		}
		sb.WriteString(",\n    PRIMARY KEY (" + strings.Join(quotedPKs, ", ") + ")")
	}
	sb.WriteString("\n);")

	statements := []string{sb.String()}
	for _, index := range sc.Indexes {
		if index.Type == schema.IndexTypePrimary {
			continue
		}
		statements = append(statements, createIndexSQL(sc.Name, index))
	}
	return statements, nil
}

// buildColumnDefinition constructs the DDL string for a single column, including its
// name, data type, and any constraints.
func buildColumnDefinition(fieldName string, field *schema.FieldDefinition) (string, error) {
	parts := []string{quoteIdentifier(fieldName), columnType(field.Type)}

	if field.Required != nil && *field.Required {
		parts = append(parts, "NOT NULL")
	}
	if field.Default != nil {
		defVal, err := formatDefaultValue(field.Default, field.Type)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+defVal)
	}
	if field.Unique != nil && *field.Unique {
		parts = append(parts, "UNIQUE")
	}
	if field.Type == schema.FieldTypeEnum && len(field.Values) > 0 {
		checkValues := make([]string, 0, len(field.Values))
		for _, v := range field.Values {
			valStr, _ := formatDefaultValue(v, schema.FieldTypeString)
			checkValues = append(checkValues, valStr)
		}
		parts = append(parts, fmt.Sprintf("CHECK(%s IN (%s))", quoteIdentifier(fieldName), strings.Join(checkValues, ", ")))
	}
	return strings.Join(parts, " "), nil
}

// columnType maps a schema.FieldType to its SQLite column type.
func columnType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeEnum, schema.FieldTypeRecord:
		return "TEXT"
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		return "REAL"
	case schema.FieldTypeInteger, schema.FieldTypeBoolean:
		return "INTEGER"
	default:
		return "BLOB"
	}
}

// formatDefaultValue formats a default value for use in a DDL statement.
func formatDefaultValue(value any, fieldType schema.FieldType) (string, error) {
	if value == nil {
		return "NULL", nil
	}
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeEnum:
		return quoteLiteral(fmt.Sprintf("%v", value)), nil
	case schema.FieldTypeNumber, schema.FieldTypeInteger, schema.FieldTypeDecimal:
		if _, ok := value.(string); ok {
			return "", fmt.Errorf("numeric default must not be a string: %q", value)
		}
		return fmt.Sprintf("%v", value), nil
	case schema.FieldTypeBoolean:
		if b, ok := value.(bool); ok && b {
			return "1", nil
		}
		return "0", nil
	case schema.FieldTypeRecord:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal default value to JSON: %w", err)
		}
		return quoteLiteral(string(jsonBytes)), nil
	default:
		return "", fmt.Errorf("unsupported type for default value: %s", fieldType)
	}
}

// createIndexSQL generates the DDL for a secondary index.
func createIndexSQL(table string, index schema.IndexDefinition) string {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if index.Type == schema.IndexTypeUnique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX IF NOT EXISTS ")
	indexName := index.Name
	if indexName == "" {
		indexName = fmt.Sprintf("idx_%s_%s", table, strings.Join(index.Fields, "_"))
	}
	sb.WriteString(quoteIdentifier(indexName))
	sb.WriteString(fmt.Sprintf(" ON %s (", quoteIdentifier(table)))

	fieldParts := make([]string, len(index.Fields))
	for i, field := range index.Fields {
		part := quoteIdentifier(field)
		if index.Order != nil && strings.EqualFold(*index.Order, "desc") {
			part += " DESC"
		}
		fieldParts[i] = part
	}
	sb.WriteString(strings.Join(fieldParts, ", ") + ");")
	return sb.String()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func marshalJSON(fieldName string, value any) (string, error) {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to serialize field '%s' to JSON: %w", fieldName, err)
	}
	return string(jsonBytes), nil
}
