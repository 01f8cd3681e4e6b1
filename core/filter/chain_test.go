package filter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) waitFor(t *testing.T, n int) []Event {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.snapshot()) >= n }, time.Second, 5*time.Millisecond)
	return r.snapshot()
}

func countTypes(events []Event) map[EventType]int {
	counts := make(map[EventType]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}

func TestNewChain(t *testing.T) {
	_, err := NewChain[[]item](nil, nil)
	assert.Error(t, err)

	c, err := NewChain(testRegistry(t), nil)
	require.NoError(t, err)
	assert.NotNil(t, c.logger)
	assert.Equal(t, "items", c.Registry().Name())
}

func TestChain_ApplyMatchesApply(t *testing.T) {
	r := testRegistry(t)
	c, err := NewChain(r, zap.NewNop())
	require.NoError(t, err)

	requests := Requests{
		{Name: "status", Value: "active"},
		{Name: "location", Value: ""},
		{Name: "limit", Value: "2"},
	}
	expected, err := Apply(inventory, r, requests)
	require.NoError(t, err)

	result, err := c.Apply(inventory, requests)
	require.NoError(t, err)
	assert.Equal(t, expected, result)
	assert.Equal(t, []string{"alpha", "charlie"}, names(result))
}

func TestChain_PublishesEvents(t *testing.T) {
	c, err := NewChain(testRegistry(t), nil)
	require.NoError(t, err)

	rec := &recorder{}
	unsubscribe := c.SubscribeAll(rec.record)
	defer unsubscribe()

	_, err = c.Apply(inventory, Requests{
		{Name: "status", Value: "active"},
		{Name: "location", Value: ""},
	})
	require.NoError(t, err)

	events := rec.waitFor(t, 3)
	counts := countTypes(events)
	assert.Equal(t, 1, counts[EventFilterApplied])
	assert.Equal(t, 1, counts[EventFilterSkipped])
	assert.Equal(t, 1, counts[EventChainSucceeded])
	for _, e := range events {
		assert.Equal(t, "items", e.Registry)
		assert.Nil(t, e.Error)
		if e.Filter != "" {
			assert.True(t, e.Registered, e.Filter)
		}
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestChain_UnknownFilterPublishesRejection(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c, err := NewChain(testRegistry(t), zap.New(core))
	require.NoError(t, err)

	rec := &recorder{}
	unsubscribe := c.SubscribeAll(rec.record)
	defer unsubscribe()

	result, err := c.Apply(inventory, Requests{
		{Name: "status", Value: "active"},
		{Name: "foo", Value: "bar"},
	})
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrUnknownFilter)

	events := rec.waitFor(t, 3)
	counts := countTypes(events)
	assert.Equal(t, 1, counts[EventFilterApplied])
	assert.Equal(t, 1, counts[EventFilterRejected])
	assert.Equal(t, 1, counts[EventChainFailed])
	assert.Zero(t, counts[EventChainSucceeded])

	for _, e := range events {
		if e.Type == EventFilterRejected {
			assert.Equal(t, "foo", e.Filter)
			assert.False(t, e.Registered)
			require.NotNil(t, e.Error)
			assert.Contains(t, *e.Error, "foo")
		}
	}

	warnings := logs.FilterMessage("Rejected unregistered filter").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "foo", warnings[0].ContextMap()["filter"])
	assert.Equal(t, "items", warnings[0].ContextMap()["registry"])
}

func TestChain_Unsubscribe(t *testing.T) {
	c, err := NewChain(testRegistry(t), nil)
	require.NoError(t, err)

	rec := &recorder{}
	unsubscribe := c.Subscribe(EventChainSucceeded, rec.record)

	_, err = c.Apply(inventory, nil)
	require.NoError(t, err)
	rec.waitFor(t, 1)

	unsubscribe()
	_, err = c.Apply(inventory, nil)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}
