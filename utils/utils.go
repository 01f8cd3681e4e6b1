// Package utils converts between typed records and the untyped documents
// collections store.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// StructToMap converts a struct, or a pointer to one, into a map[string]any by
// way of its JSON encoding. Field names follow the `json` tags; nested structs
// become map[string]any values and times become RFC 3339 strings.
//
// Example:
//
//	type Item struct {
//		ID    string  `json:"id"`
//		Price float64 `json:"price"`
//	}
//	m, err := StructToMap(Item{ID: "a1", Price: 9.5})
//	// m == map[string]any{"id": "a1", "price": 9.5}
func StructToMap[T any](record T) (map[string]any, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to unmarshal JSON to map: %w", err)
	}
	return out, nil
}

// MapToStruct is the inverse of StructToMap: it decodes input into a new T
// through JSON. T must be a struct type or a pointer to one.
func MapToStruct[T any](input map[string]any) (T, error) {
	var zero T
	if input == nil {
		return zero, fmt.Errorf("MapToStruct: input map cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("MapToStruct: generic type T must be a struct type (or pointer to struct)")
	}

	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to marshal input map to JSON: %w", err)
	}
	var result T
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to unmarshal JSON to target struct: %w", err)
	}
	return result, nil
}
