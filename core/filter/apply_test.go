package filter

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name     string
	Status   string
	Location string
}

var inventory = []item{
	{Name: "alpha", Status: "active", Location: "nairobi"},
	{Name: "bravo", Status: "inactive", Location: "nairobi"},
	{Name: "charlie", Status: "active", Location: "mombasa"},
	{Name: "delta", Status: "active", Location: "kisumu"},
}

func where(pred func(item, string) bool) Func[[]item] {
	return func(items []item, value Value) ([]item, error) {
		s, ok := value.(string)
		if !ok {
			return nil, NewInvalidValueError(value, "expected a string", nil)
		}
		var out []item
		for _, it := range items {
			if pred(it, s) {
				out = append(out, it)
			}
		}
		return out, nil
	}
}

func limit(items []item, value Value) ([]item, error) {
	n, err := strconv.Atoi(value.(string))
	if err != nil {
		return nil, NewInvalidValueError(value, "not an integer", err)
	}
	if n < len(items) {
		return items[:n:n], nil
	}
	return items, nil
}

func testRegistry(t *testing.T) *Registry[[]item] {
	t.Helper()
	r, err := NewBuilder[[]item]("items").
		Register("status", where(func(it item, v string) bool { return it.Status == v })).
		Register("location", where(func(it item, v string) bool { return it.Location == v })).
		Register("starts_with", where(func(it item, v string) bool { return strings.HasPrefix(it.Name, v) })).
		Register("limit", limit).
		Build()
	require.NoError(t, err)
	return r
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestApply_NoRequestsReturnsBase(t *testing.T) {
	r := testRegistry(t)

	result, err := Apply(inventory, r, nil)
	require.NoError(t, err)
	assert.Equal(t, inventory, result)

	result, err = Apply(inventory, r, Requests{})
	require.NoError(t, err)
	assert.Equal(t, inventory, result)
}

func TestApply_EmptyValuesAreSkipped(t *testing.T) {
	r := testRegistry(t)
	requests := Requests{
		{Name: "status", Value: ""},
		{Name: "location", Value: "   "},
		{Name: "limit", Value: nil},
		{Name: "starts_with", Value: []string{}},
	}

	result, err := Apply(inventory, r, requests)
	require.NoError(t, err)
	assert.Equal(t, inventory, result)
}

func TestApply_EmptyValueForUnknownNameIsSkipped(t *testing.T) {
	r := testRegistry(t)

	result, err := Apply(inventory, r, Requests{{Name: "foo", Value: ""}})
	require.NoError(t, err)
	assert.Equal(t, inventory, result)
}

func TestApply_SkipsEmptyAndAppliesPresent(t *testing.T) {
	r := testRegistry(t)
	requests := Requests{
		{Name: "status", Value: "active"},
		{Name: "location", Value: ""},
	}

	result, err := Apply(inventory, r, requests)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "charlie", "delta"}, names(result))
}

func TestApply_UnknownFilter(t *testing.T) {
	r := testRegistry(t)

	result, err := Apply(inventory, r, Requests{{Name: "foo", Value: "bar"}})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrUnknownFilter))

	var unknown *UnknownFilterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "foo", unknown.Name)
	assert.Equal(t, `unknown filter "foo"`, err.Error())
}

func TestApply_UnknownFilterAfterSuccessfulStepsReturnsNoPartialResult(t *testing.T) {
	r := testRegistry(t)
	requests := Requests{
		{Name: "status", Value: "active"},
		{Name: "destroy_all", Value: "true"},
	}

	result, err := Apply(inventory, r, requests)
	assert.ErrorIs(t, err, ErrUnknownFilter)
	assert.Nil(t, result)
}

func TestApply_OrderIsPreserved(t *testing.T) {
	r := testRegistry(t)

	statusFirst, err := Apply(inventory, r, Requests{
		{Name: "status", Value: "inactive"},
		{Name: "limit", Value: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bravo"}, names(statusFirst))

	limitFirst, err := Apply(inventory, r, Requests{
		{Name: "limit", Value: "1"},
		{Name: "status", Value: "inactive"},
	})
	require.NoError(t, err)
	assert.Empty(t, limitFirst)
}

func TestApply_InvalidValueIsNamedAndPropagated(t *testing.T) {
	r := testRegistry(t)

	result, err := Apply(inventory, r, Requests{{Name: "limit", Value: "ten"}})
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrInvalidValue)

	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "limit", invalid.Filter)
	assert.Equal(t, "ten", invalid.Value)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
}

func TestApply_SharedInvalidValueErrorIsNotModified(t *testing.T) {
	shared := &InvalidValueError{Reason: "bad"}
	reject := func([]item, Value) ([]item, error) { return nil, shared }
	r, err := NewBuilder[[]item]("items").
		Register("a", reject).
		Register("b", reject).
		Build()
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "a"} {
		t.Run(name, func(t *testing.T) {
			_, err := Apply(inventory, r, Requests{{Name: name, Value: "x"}})
			var invalid *InvalidValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, name, invalid.Filter)
			assert.Equal(t, "bad", invalid.Reason)
			assert.NotSame(t, shared, invalid)
		})
	}
	assert.Empty(t, shared.Filter)
}

func TestApply_NamedInvalidValueErrorPassesThrough(t *testing.T) {
	named := &InvalidValueError{Filter: "custom", Reason: "bad"}
	r, err := NewBuilder[[]item]("items").
		Register("a", func([]item, Value) ([]item, error) { return nil, named }).
		Build()
	require.NoError(t, err)

	_, err = Apply(inventory, r, Requests{{Name: "a", Value: "x"}})
	assert.Same(t, named, err)
}

func TestApply_FilterErrorsPassThroughUnchanged(t *testing.T) {
	boom := errors.New("boom")
	r, err := NewBuilder[[]item]("items").
		Register("fail", func([]item, Value) ([]item, error) { return nil, boom }).
		Build()
	require.NoError(t, err)

	_, err = Apply(inventory, r, Requests{{Name: "fail", Value: "x"}})
	assert.Same(t, boom, err)
}

func TestApply_DoesNotModifyBase(t *testing.T) {
	r := testRegistry(t)
	base := append([]item(nil), inventory...)

	_, err := Apply(base, r, Requests{
		{Name: "status", Value: "active"},
		{Name: "limit", Value: "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory, base)
}

func TestApply_NilRegistryFailsClosed(t *testing.T) {
	var r *Registry[[]item]

	result, err := Apply(inventory, r, nil)
	require.NoError(t, err)
	assert.Equal(t, inventory, result)

	_, err = Apply(inventory, r, Requests{{Name: "status", Value: "active"}})
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestRegistry_Apply(t *testing.T) {
	r := testRegistry(t)

	result, err := r.Apply(inventory, Requests{{Name: "starts_with", Value: "ch"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie"}, names(result))
}
