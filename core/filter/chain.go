package filter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"
)

// EventType identifies what happened during a chain run.
type EventType string

const (
	EventFilterApplied  EventType = "filter.applied"
	EventFilterSkipped  EventType = "filter.skipped"
	EventFilterRejected EventType = "filter.rejected"
	EventChainSucceeded EventType = "chain.succeeded"
	EventChainFailed    EventType = "chain.failed"
)

// Event is published on the chain's bus for every request and once per run.
// Filter and Value are empty on chain events. Registered reports whether Filter
// names a filter of the registry; otherwise Filter is client input.
type Event struct {
	Type       EventType     `json:"type"`
	Registry   string        `json:"registry"`
	Filter     string        `json:"filter,omitempty"`
	Registered bool          `json:"registered,omitempty"`
	Value      Value         `json:"value,omitempty"`
	Error      *string       `json:"error,omitempty"`
	Requests   int           `json:"requests,omitempty"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
}

// EventCallback receives chain events.
type EventCallback func(ctx context.Context, event Event) error

// Chain applies a registry like Apply does, and additionally logs every step and
// publishes it as an Event.
type Chain[C any] struct {
	registry *Registry[C]
	logger   *zap.Logger
	bus      *events.TypedEventBus[Event]
}

// NewChain wraps registry. A nil logger is replaced by a no-op logger.
func NewChain[C any](registry *Registry[C], logger *zap.Logger) (*Chain[C], error) {
	if registry == nil {
		return nil, fmt.Errorf("filter chain requires a registry")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &Chain[C]{
		registry: registry,
		logger:   logger.With(zap.String("registry", registry.Name())),
		bus:      bus,
	}, nil
}

// Registry returns the wrapped registry.
func (c *Chain[C]) Registry() *Registry[C] {
	return c.registry
}

// Subscribe registers cb for events of type t and returns a function that
// removes the subscription.
func (c *Chain[C]) Subscribe(t EventType, cb EventCallback) func() {
	return c.bus.Subscribe(string(t), cb)
}

// SubscribeAll registers cb for every event type.
func (c *Chain[C]) SubscribeAll(cb EventCallback) func() {
	types := []EventType{EventFilterApplied, EventFilterSkipped, EventFilterRejected, EventChainSucceeded, EventChainFailed}
	unsubscribers := make([]func(), 0, len(types))
	for _, t := range types {
		unsubscribers = append(unsubscribers, c.Subscribe(t, cb))
	}
	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

// Apply has the same semantics as the package level Apply.
func (c *Chain[C]) Apply(base C, requests Requests) (C, error) {
	var zero C
	started := time.Now()
	acc := base

	for _, req := range requests {
		stepStarted := time.Now()
		registered := c.registry.Has(req.Name)
		if !IsPresent(req.Value) {
			c.logger.Debug("Skipping filter with empty value", zap.String("filter", req.Name))
			c.emit(Event{Type: EventFilterSkipped, Filter: req.Name, Registered: registered, Value: req.Value}, stepStarted, nil)
			continue
		}

		next, err := step(acc, c.registry, req)
		if err != nil {
			if errors.Is(err, ErrUnknownFilter) {
				c.logger.Warn("Rejected unregistered filter", zap.String("filter", req.Name))
			} else {
				c.logger.Info("Filter failed", zap.String("filter", req.Name), zap.Any("value", req.Value), zap.Error(err))
			}
			c.emit(Event{Type: EventFilterRejected, Filter: req.Name, Registered: registered, Value: req.Value}, stepStarted, err)
			c.emit(Event{Type: EventChainFailed, Requests: len(requests)}, started, err)
			return zero, err
		}

		c.logger.Debug("Applied filter", zap.String("filter", req.Name), zap.Any("value", req.Value))
		c.emit(Event{Type: EventFilterApplied, Filter: req.Name, Registered: true, Value: req.Value}, stepStarted, nil)
		acc = next
	}

	c.emit(Event{Type: EventChainSucceeded, Requests: len(requests)}, started, nil)
	return acc, nil
}

func (c *Chain[C]) emit(event Event, started time.Time, err error) {
	if c.bus == nil {
		return
	}
	event.Registry = c.registry.Name()
	event.Timestamp = time.Now()
	event.Duration = event.Timestamp.Sub(started)
	if err != nil {
		msg := err.Error()
		event.Error = &msg
	}
	c.bus.Emit(string(event.Type), event)
}
