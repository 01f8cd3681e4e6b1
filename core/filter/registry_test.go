package filter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(c []int, _ Value) ([]int, error) { return c, nil }

func TestBuilder_Build(t *testing.T) {
	r, err := NewBuilder[[]int]("numbers").
		Register("b", identity).
		Register("a", identity).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "numbers", r.Name())
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"b", "a"}, r.Names())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.False(t, r.Has("A"))
}

func TestBuilder_RejectsBadRegistrations(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder[[]int]
		entry   string
	}{
		{"empty name", NewBuilder[[]int]("n").Register("", identity), ""},
		{"nil function", NewBuilder[[]int]("n").Register("limit", nil), "limit"},
		{"duplicate", NewBuilder[[]int]("n").Register("limit", identity).Register("limit", identity), "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.builder.Build()
			assert.Nil(t, r)
			require.ErrorIs(t, err, ErrInvalidRegistration)

			var regErr *RegistrationError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, tt.entry, regErr.Name)
		})
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder[[]int]("n").Register("", identity).MustBuild()
	})
	assert.NotPanics(t, func() {
		NewBuilder[[]int]("n").Register("x", identity).MustBuild()
	})
}

func TestBuilder_RegisterAllSortsNames(t *testing.T) {
	r, err := NewBuilder[[]int]("n").
		RegisterAll(map[string]Func[[]int]{"zeta": identity, "alpha": identity, "mu": identity}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, r.Names())
}

func TestRegistry_IsIsolatedFromBuilder(t *testing.T) {
	b := NewBuilder[[]int]("n").Register("a", identity)
	r, err := b.Build()
	require.NoError(t, err)

	b.Register("b", identity)
	assert.False(t, r.Has("b"))

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.Names())
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var r *Registry[[]int]
	assert.Equal(t, "", r.Name())
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Names())
	assert.False(t, r.Has("a"))
}

func TestRegistry_ConcurrentApply(t *testing.T) {
	double := func(c []int, _ Value) ([]int, error) {
		out := make([]int, len(c))
		for i, v := range c {
			out[i] = v * 2
		}
		return out, nil
	}
	r := NewBuilder[[]int]("n").Register("double", double).MustBuild()
	base := []int{1, 2, 3}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := r.Apply(base, Requests{{Name: "double", Value: "x"}, {Name: "double", Value: "x"}})
			assert.NoError(t, err)
			assert.Equal(t, []int{4, 8, 12}, result)
		}()
	}
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3}, base)
}
