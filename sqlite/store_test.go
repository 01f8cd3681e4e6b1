package sqlite

import (
	"context"
	"testing"

	"github.com/asaidimu/go-sieve/core/query"
	"github.com/asaidimu/go-sieve/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, testSchema(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.CreateTable(context.Background()))

	n, err := store.Insert(context.Background(),
		schema.Document{"id": "1", "name": "lamp", "status": "active", "price": 25.0, "stock": 3, "featured": true},
		schema.Document{"id": "2", "name": "desk", "status": "inactive", "price": 120.0, "stock": 0},
		schema.Document{"id": "3", "name": "chair", "status": "active", "price": 60.0, "stock": 12, "meta": map[string]any{"legs": 4}},
		schema.Document{"id": "4", "name": "mug", "status": "active", "price": 8.5, "stock": 40},
	)
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
	return store
}

func names(docs []schema.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i], _ = d["name"].(string)
	}
	return out
}

func TestNewStore(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewStore(nil, testSchema(), nil)
	assert.Error(t, err)

	_, err = NewStore(db, nil, nil)
	assert.Error(t, err)

	_, err = NewStore(db, &schema.SchemaDefinition{Name: "broken"}, nil)
	assert.Error(t, err)

	store, err := NewStore(db, testSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, "items", store.Schema().Name)
}

func TestStore_Find(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("nil builder returns every row", func(t *testing.T) {
		docs, err := store.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, docs, 4)
	})

	t.Run("filters accumulate", func(t *testing.T) {
		qb := query.NewQueryBuilder().
			Where("status").Eq("active").
			Where("price").Lt(50).
			OrderByAsc("price")
		docs, err := store.Find(ctx, qb)
		require.NoError(t, err)
		assert.Equal(t, []string{"mug", "lamp"}, names(docs))
	})

	t.Run("pagination", func(t *testing.T) {
		qb := query.NewQueryBuilder().OrderByDesc("price").Limit(2).Offset(1)
		docs, err := store.Find(ctx, qb)
		require.NoError(t, err)
		assert.Equal(t, []string{"chair", "lamp"}, names(docs))
	})

	t.Run("no match returns an empty slice", func(t *testing.T) {
		docs, err := store.Find(ctx, query.NewQueryBuilder().Where("name").StartsWith("zz"))
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("unknown field fails", func(t *testing.T) {
		_, err := store.Find(ctx, query.NewQueryBuilder().Where("password").Eq("x"))
		assert.Error(t, err)
	})
}

func TestStore_ColumnTypes(t *testing.T) {
	store := newTestStore(t)
	docs, err := store.Find(context.Background(), query.NewQueryBuilder().OrderByAsc("id"))
	require.NoError(t, err)
	require.Len(t, docs, 4)

	lamp := docs[0]
	assert.Equal(t, "lamp", lamp["name"])
	assert.Equal(t, true, lamp["featured"])
	assert.Equal(t, 25.0, lamp["price"])
	assert.EqualValues(t, 3, lamp["stock"])
	assert.Nil(t, lamp["meta"])

	desk := docs[1]
	assert.Equal(t, false, desk["featured"])

	chair := docs[2]
	assert.Equal(t, map[string]any{"legs": float64(4)}, chair["meta"])
}

func TestStore_Count(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	filters := query.NewQueryBuilder().Where("status").Eq("active").Build().Filters
	n, err = store.Count(ctx, filters)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestStore_Insert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.Insert(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Insert(ctx, schema.Document{"id": "1", "name": "duplicate"})
	assert.Error(t, err)

	_, err = store.Insert(ctx, schema.Document{"id": "9", "name": "rug", "status": "discontinued"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ENUM_VIOLATION", verr.Issues[0].Code)

	count, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}
