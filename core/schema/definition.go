// Package schema describes the shape of the records a collection holds. The
// definitions are used to generate storage DDL, to validate field references
// in queries and to coerce values read back from storage.
package schema

import (
	"fmt"
	"slices"
)

// Document is a single record, keyed by field name.
type Document map[string]any

// LogicalOperator for combining conditions.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and" // All conditions must be true
	LogicalOr  LogicalOperator = "or"  // At least one condition must be true
)

// FieldType represents the basic field types supported by the schema system.
type FieldType string

const (
	FieldTypeString  FieldType = "string"  // Text data
	FieldTypeNumber  FieldType = "number"  // Numeric data
	FieldTypeInteger FieldType = "integer" // Numeric data
	FieldTypeDecimal FieldType = "decimal" // Numeric data
	FieldTypeBoolean FieldType = "boolean" // True/false values
	FieldTypeEnum    FieldType = "enum"    // One out of a set of pre-defined items
	FieldTypeRecord  FieldType = "record"  // Unorganized key-value object, resolves to map[string]any
)

// IndexType represents index types for optimizing different query patterns.
type IndexType string

const (
	IndexTypeNormal  IndexType = "normal"  // General-purpose index
	IndexTypeUnique  IndexType = "unique"  // Unique index
	IndexTypePrimary IndexType = "primary" // Primary key index (implies unique)
)

// FieldDefinition defines a field within a schema.
type FieldDefinition struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
	// Required indicates if the field is mandatory.
	Required *bool `json:"required,omitempty"`
	// Default provides a default value for the field.
	Default any `json:"default,omitempty"`
	// Values specifies the allowed values for an 'enum' type field.
	Values []any `json:"values,omitempty"`
	// Unique indicates if the field must have unique values.
	Unique      *bool   `json:"unique,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IndexDefinition defines an index for optimizing queries or enforcing uniqueness.
type IndexDefinition struct {
	Name   string    `json:"name"`
	Fields []string  `json:"fields"`
	Type   IndexType `json:"type"`
	Order  *string   `json:"order,omitempty"` // "asc" | "desc"
}

// SchemaDefinition is the top level description of a collection.
type SchemaDefinition struct {
	Name        string                      `json:"name"`
	Version     string                      `json:"version"`
	Description *string                     `json:"description,omitempty"`
	Fields      map[string]*FieldDefinition `json:"fields"`
	Indexes     []IndexDefinition           `json:"indexes,omitempty"`
}

// Validate checks that the definition is usable: it must be named, declare at
// least one field, and every index must reference declared fields.
func (s *SchemaDefinition) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema must define a name")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema '%s' declares no fields", s.Name)
	}
	for key, field := range s.Fields {
		if field == nil {
			return fmt.Errorf("schema '%s': field '%s' has no definition", s.Name, key)
		}
		if field.Name != "" && field.Name != key {
			return fmt.Errorf("schema '%s': field key '%s' does not match field name '%s'", s.Name, key, field.Name)
		}
	}
	for _, index := range s.Indexes {
		for _, name := range index.Fields {
			if _, ok := s.Fields[name]; !ok {
				return fmt.Errorf("schema '%s': index '%s' references unknown field '%s'", s.Name, index.Name, name)
			}
		}
	}
	return nil
}

// FieldNames returns the declared field names in lexical order, so that DDL and
// projections generated from a schema are stable.
func (s *SchemaDefinition) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
