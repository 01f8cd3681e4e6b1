// Package filter narrows a collection by applying an ordered list of named
// filter requests. Only names registered in a Registry can be invoked, which
// makes it safe to drive the chain from untrusted input such as URL parameters:
// an unregistered name fails the whole request instead of being ignored.
package filter

import (
	"slices"
)

// Value is the raw value of a filter request, usually a string or []string
// taken from a query string.
type Value any

// Func narrows collection using value. It must not modify collection; it
// returns the narrowed collection or an error, typically *InvalidValueError.
type Func[C any] func(collection C, value Value) (C, error)

// Registry maps filter names to filter functions for one record type. It is
// immutable once built and can be shared between goroutines without locking.
type Registry[C any] struct {
	name    string
	entries map[string]Func[C]
	order   []string
}

// Builder collects registrations for a Registry. Errors are reported by Build.
type Builder[C any] struct {
	name    string
	entries map[string]Func[C]
	order   []string
	errs    []error
}

// NewBuilder starts a registry for the record type called name.
func NewBuilder[C any](name string) *Builder[C] {
	return &Builder[C]{
		name:    name,
		entries: make(map[string]Func[C]),
	}
}

// Register adds fn under name. Empty names, nil functions and names that are
// already registered are rejected when Build is called.
func (b *Builder[C]) Register(name string, fn Func[C]) *Builder[C] {
	switch {
	case name == "":
		b.errs = append(b.errs, &RegistrationError{Name: name, Reason: "name is empty"})
	case fn == nil:
		b.errs = append(b.errs, &RegistrationError{Name: name, Reason: "function is nil"})
	default:
		if _, exists := b.entries[name]; exists {
			b.errs = append(b.errs, &RegistrationError{Name: name, Reason: "already registered"})
			return b
		}
		b.entries[name] = fn
		b.order = append(b.order, name)
	}
	return b
}

// RegisterAll adds every entry of fns. Map iteration order is random, so
// Names reports these entries in lexical order.
func (b *Builder[C]) RegisterAll(fns map[string]Func[C]) *Builder[C] {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b.Register(name, fns[name])
	}
	return b
}

// Build returns the immutable registry, or the first registration error.
func (b *Builder[C]) Build() (*Registry[C], error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	entries := make(map[string]Func[C], len(b.entries))
	for name, fn := range b.entries {
		entries[name] = fn
	}
	return &Registry[C]{
		name:    b.name,
		entries: entries,
		order:   slices.Clone(b.order),
	}, nil
}

// MustBuild is like Build but panics on a registration error. It is meant for
// registries declared at package level.
func (b *Builder[C]) MustBuild() *Registry[C] {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the record type the registry belongs to.
func (r *Registry[C]) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Has reports whether name is registered.
func (r *Registry[C]) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Names returns the registered names in registration order.
func (r *Registry[C]) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.order)
}

// Len returns the number of registered filters.
func (r *Registry[C]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

func (r *Registry[C]) lookup(name string) (Func[C], bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.entries[name]
	return fn, ok
}

// Apply narrows base with requests. See the package level Apply.
func (r *Registry[C]) Apply(base C, requests Requests) (C, error) {
	return Apply(base, r, requests)
}
