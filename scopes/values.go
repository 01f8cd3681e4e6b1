// Package scopes provides constructors for common filter functions. Each
// constructor returns a filter.Func that parses its request value, rejects
// values it cannot use with a *filter.InvalidValueError and narrows a
// collection. Query scopes narrow a *query.QueryBuilder; Documents scopes
// narrow an in-memory []schema.Document.
package scopes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asaidimu/go-sieve/core/filter"
	"github.com/asaidimu/go-sieve/core/query"
)

// String returns v as a single trimmed string. A one element slice counts as a
// single value.
func String(v filter.Value) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case []string:
		if len(val) == 1 {
			return strings.TrimSpace(val[0]), nil
		}
		return "", filter.NewInvalidValueError(v, "expected a single value", nil)
	case fmt.Stringer:
		return val.String(), nil
	}
	return "", filter.NewInvalidValueError(v, fmt.Sprintf("expected a string, got %T", v), nil)
}

// Strings returns v as a list. A single string is split on commas; blank
// entries are dropped.
func Strings(v filter.Value) ([]string, error) {
	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, filter.NewInvalidValueError(v, fmt.Sprintf("expected a list of strings, found %T", item), nil)
			}
			raw = append(raw, s)
		}
	default:
		return nil, filter.NewInvalidValueError(v, fmt.Sprintf("expected a list, got %T", v), nil)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, filter.NewInvalidValueError(v, "list is empty", nil)
	}
	return out, nil
}

// Number returns v as a float64. Numeric strings are parsed.
func Number(v filter.Value) (float64, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, filter.NewInvalidValueError(v, "expected a number", err)
		}
		return f, nil
	}
	if f, ok := query.ToFloat64(v); ok {
		return f, nil
	}
	return 0, filter.NewInvalidValueError(v, fmt.Sprintf("expected a number, got %T", v), nil)
}

// Int returns v as a non-negative integer.
func Int(v filter.Value) (int, error) {
	var n int
	switch val := v.(type) {
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, filter.NewInvalidValueError(v, "expected an integer", err)
		}
		n = parsed
	case int:
		n = val
	case int32:
		n = int(val)
	case int64:
		n = int(val)
	case float64:
		if val != float64(int(val)) {
			return 0, filter.NewInvalidValueError(v, "expected an integer", nil)
		}
		n = int(val)
	default:
		return 0, filter.NewInvalidValueError(v, fmt.Sprintf("expected an integer, got %T", v), nil)
	}
	if n < 0 {
		return 0, filter.NewInvalidValueError(v, "must not be negative", nil)
	}
	return n, nil
}

// Sort parses a sort value: "field" or "field:asc" sorts ascending, "-field"
// or "field:desc" sorts descending. The field must be one of sortable.
func Sort(v filter.Value, sortable ...string) (query.SortConfiguration, error) {
	s, err := String(v)
	if err != nil {
		return query.SortConfiguration{}, err
	}

	field, direction := s, query.SortDirectionAsc
	if name, dir, ok := strings.Cut(s, ":"); ok {
		field = name
		switch strings.ToLower(dir) {
		case "asc":
		case "desc":
			direction = query.SortDirectionDesc
		default:
			return query.SortConfiguration{}, filter.NewInvalidValueError(v, fmt.Sprintf("unknown sort direction %q", dir), nil)
		}
	} else if rest, ok := strings.CutPrefix(s, "-"); ok {
		field, direction = rest, query.SortDirectionDesc
	}

	for _, allowed := range sortable {
		if field == allowed {
			return query.SortConfiguration{Field: field, Direction: direction}, nil
		}
	}
	return query.SortConfiguration{}, filter.NewInvalidValueError(v, fmt.Sprintf("cannot sort by %q", field), nil)
}

// pageSize validates a limit against maxLimit. A maxLimit of zero means unbounded.
func pageSize(v filter.Value, maxLimit int) (int, error) {
	n, err := Int(v)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, filter.NewInvalidValueError(v, "must be at least 1", nil)
	}
	if maxLimit > 0 && n > maxLimit {
		return 0, filter.NewInvalidValueError(v, fmt.Sprintf("must not exceed %d", maxLimit), nil)
	}
	return n, nil
}
