package events

import (
	"log/slog"
	"sync"
)

const defaultBufferSize = 256

// Bus fans out events from one session's components to its subscribers.
// Each component receives the Bus at construction and publishes through it;
// no component reaches into another component's internals. The owning
// session creates the Bus, subscribes consumers, and closes it when done.
//
// Delivery to each subscriber preserves publication order. A slow subscriber
// whose buffer fills up loses events rather than blocking the session; drops
// are logged.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	closed bool
	logger *slog.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBusLogger sets a custom logger.
// Default is slog.Default().
func WithBusLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber and returns its channel.
// A buffer of 0 uses the default size. The channel is closed by Close.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers an event to all subscribers. Publishing to a closed bus
// is a logged no-op.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Debug("event published to closed bus", "event", event)
		return
	}

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber buffer full, dropping event", "event", event)
		}
	}
}

// Close closes the bus and all subscriber channels. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
