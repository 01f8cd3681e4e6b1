package filter

// Apply threads base through the filters named by requests, in order.
//
// Requests whose value is not present are skipped. A request naming a filter
// that is not in registry fails with *UnknownFilterError. Errors returned by a
// filter function are passed through; an *InvalidValueError without a filter
// name is returned as a copy carrying the request name. On any error the zero value of C is
// returned, never the partially narrowed collection.
func Apply[C any](base C, registry *Registry[C], requests Requests) (C, error) {
	var zero C
	acc := base
	for _, req := range requests {
		next, err := step(acc, registry, req)
		if err != nil {
			return zero, err
		}
		acc = next
	}
	return acc, nil
}

// step applies one request to acc. A skipped request returns acc unchanged.
func step[C any](acc C, registry *Registry[C], req Request) (C, error) {
	if !IsPresent(req.Value) {
		return acc, nil
	}
	fn, ok := registry.lookup(req.Name)
	if !ok {
		return acc, &UnknownFilterError{Name: req.Name}
	}
	next, err := fn(acc, req.Value)
	if err != nil {
		// The function owns its error value; name a copy.
		if invalid, ok := err.(*InvalidValueError); ok && invalid != nil && invalid.Filter == "" {
			named := *invalid
			named.Filter = req.Name
			return acc, &named
		}
		return acc, err
	}
	return next, nil
}
