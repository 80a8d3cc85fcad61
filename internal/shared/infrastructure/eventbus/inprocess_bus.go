package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Handler processes an event delivered by the in-process bus.
type Handler func(ctx context.Context, envelope Envelope) error

// InProcessBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to registered handlers.
type InProcessBus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a routing key.
func (b *InProcessBus) Subscribe(routingKey string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// Publish dispatches an event synchronously to every matching handler.
// Handler failures are logged, never surfaced: local delivery must not fail
// the write that produced the event.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	handlers := b.handlers[routingKey]
	b.mu.Unlock()

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if envelope.RoutingKey == "" {
		envelope.RoutingKey = routingKey
	}

	for _, handler := range handlers {
		if err := handler(ctx, envelope); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", routingKey,
				"event_id", envelope.EventID,
				"error", err,
			)
		}
	}
	return nil
}

// Close implements Publisher; nothing to release.
func (b *InProcessBus) Close() error {
	return nil
}
