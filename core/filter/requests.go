package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Request asks for the filter called Name to be applied with Value.
type Request struct {
	Name  string
	Value Value
}

// Requests is an ordered list of filter requests. Order is significant: filters
// do not commute in general.
type Requests []Request

// Names returns the requested filter names, in order.
func (rs Requests) Names() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// Only keeps the requests whose name is listed in keys, preserving the request
// order. It is the place for business-level whitelisting on top of registry
// membership.
func (rs Requests) Only(keys ...string) Requests {
	kept := make(Requests, 0, len(rs))
	for _, r := range rs {
		if slices.Contains(keys, r.Name) {
			kept = append(kept, r)
		}
	}
	return kept
}

// FromValues takes the listed keys from values, in the order of keys. Keys with
// a single value produce a string; repeated keys produce a []string. Keys not in
// values are left out.
func FromValues(values url.Values, keys ...string) Requests {
	requests := make(Requests, 0, len(keys))
	for _, key := range keys {
		vs, ok := values[key]
		if !ok {
			continue
		}
		requests = append(requests, Request{Name: key, Value: collapse(vs)})
	}
	return requests
}

// FromMap builds requests from m for the listed keys, in the order of keys.
func FromMap(m map[string]any, keys ...string) Requests {
	requests := make(Requests, 0, len(keys))
	for _, key := range keys {
		if v, ok := m[key]; ok {
			requests = append(requests, Request{Name: key, Value: v})
		}
	}
	return requests
}

// ParseQuery parses a raw URL query string into requests, keeping the order in
// which keys first appear. Repeated keys are merged into a []string at the
// position of their first occurrence.
func ParseQuery(raw string) (Requests, error) {
	var names []string
	values := make(map[string][]string)

	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid value for query key %q: %w", key, err)
		}
		if key == "" {
			continue
		}
		if _, seen := values[key]; !seen {
			names = append(names, key)
		}
		values[key] = append(values[key], value)
	}

	requests := make(Requests, 0, len(names))
	for _, name := range names {
		requests = append(requests, Request{Name: name, Value: collapse(values[name])})
	}
	return requests, nil
}

func collapse(vs []string) Value {
	switch len(vs) {
	case 0:
		return nil
	case 1:
		return vs[0]
	default:
		return slices.Clone(vs)
	}
}
