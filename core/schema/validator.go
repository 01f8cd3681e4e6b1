package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Issue describes a single validation problem found in a document.
type Issue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Severity string `json:"severity"`
}

// Validator checks documents against a schema: required fields, field types,
// enum membership and unexpected keys. It is not safe for concurrent use.
type Validator struct {
	schema *SchemaDefinition
	issues []Issue
}

// NewValidator creates a Validator for a schema. The returned validator can be
// reused for multiple validation operations.
func NewValidator(schema *SchemaDefinition) *Validator {
	return &Validator{
		schema: schema,
		issues: make([]Issue, 0),
	}
}

// Validate checks if data conforms to the validator's schema and returns the
// issues found. With loose set, missing required fields are not reported.
func (v *Validator) Validate(data map[string]any, loose bool) (bool, []Issue) {
	v.issues = make([]Issue, 0)
	v.validateData(data)

	finalIssues := v.issues
	if loose {
		finalIssues = slices.DeleteFunc(slices.Clone(v.issues), func(issue Issue) bool {
			return issue.Code == "REQUIRED_FIELD_MISSING"
		})
	}
	return len(finalIssues) == 0, finalIssues
}

// ValidationError reports every issue found in a rejected document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = fmt.Sprintf("%s: %s", issue.Path, issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Check validates data strictly and returns a *ValidationError if it does not
// conform.
func (v *Validator) Check(data map[string]any) error {
	if ok, issues := v.Validate(data, false); !ok {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// coerceValue attempts to convert a string value to the expected type.
func coerceValue(value any, expectedType FieldType) (any, bool) {
	str, ok := value.(string)
	if !ok {
		return value, false
	}

	switch expectedType {
	case FieldTypeBoolean:
		switch strings.ToLower(str) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	case FieldTypeInteger:
		if intVal, err := strconv.ParseInt(str, 10, 64); err == nil {
			if strconv.FormatInt(intVal, 10) == str {
				return int(intVal), true
			}
		}
	case FieldTypeNumber, FieldTypeDecimal:
		if floatVal, err := strconv.ParseFloat(str, 64); err == nil {
			return floatVal, true
		}
	}
	return value, false
}

func (v *Validator) validateData(data map[string]any) {
	for _, fieldName := range v.schema.FieldNames() {
		fieldDef := v.schema.Fields[fieldName]
		value, exists := data[fieldName]

		if isRequired(fieldDef) && !exists {
			v.addIssue("REQUIRED_FIELD_MISSING", fmt.Sprintf("Required field '%s' is missing", fieldName), fieldName)
			continue
		}
		if !exists {
			continue
		}
		v.validateFieldValue(value, fieldDef, fieldName)
	}

	for dataKey := range data {
		if _, exists := v.schema.Fields[dataKey]; !exists {
			v.addIssue("UNEXPECTED_FIELD", fmt.Sprintf("Unexpected field '%s' not defined in schema", dataKey), dataKey)
		}
	}
}

func (v *Validator) validateFieldValue(value any, fieldDef *FieldDefinition, path string) {
	if value == nil {
		if isRequired(fieldDef) {
			v.addIssue("NULL_VALUE", "Field cannot be null", path)
		}
		return
	}
	if coerced, ok := coerceValue(value, fieldDef.Type); ok {
		value = coerced
	}
	if !v.validateFieldType(value, fieldDef.Type, path) {
		return
	}
	if fieldDef.Type == FieldTypeEnum && len(fieldDef.Values) > 0 {
		v.validateEnumValue(value, fieldDef.Values, path)
	}
}

func (v *Validator) validateFieldType(value any, expectedType FieldType, path string) bool {
	var ok bool
	switch expectedType {
	case FieldTypeString:
		_, ok = value.(string)
	case FieldTypeNumber, FieldTypeDecimal:
		ok = isNumericType(value)
	case FieldTypeInteger:
		ok = isIntegerType(value)
	case FieldTypeBoolean:
		_, ok = value.(bool)
	case FieldTypeRecord:
		ok = reflect.ValueOf(value).Kind() == reflect.Map
	default:
		ok = true
	}
	if !ok {
		v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected %s, got %T", expectedType, value), path)
	}
	return ok
}

func (v *Validator) validateEnumValue(value any, allowedValues []any, path string) {
	for _, allowedValue := range allowedValues {
		if reflect.DeepEqual(value, allowedValue) {
			return
		}
	}
	v.addIssue("ENUM_VIOLATION", fmt.Sprintf("Value must be one of: %v", allowedValues), path)
}

func isRequired(fieldDef *FieldDefinition) bool {
	return fieldDef.Required != nil && *fieldDef.Required
}

func isNumericType(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func isIntegerType(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func (v *Validator) addIssue(code, message, path string) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Message:  message,
		Path:     path,
		Severity: "error",
	})
}
