package filter

import (
	"reflect"
	"strings"
)

// IsPresent reports whether a request value should be applied. Absent values are
// nil, blank strings, false, empty slices, arrays and maps, and nil pointers.
// Numbers are always present, zero included.
func IsPresent(v Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []string:
		return len(val) > 0
	case bool:
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return IsPresent(rv.Elem().Interface())
	case reflect.String:
		return strings.TrimSpace(rv.String()) != ""
	case reflect.Bool:
		return rv.Bool()
	}
	return true
}
