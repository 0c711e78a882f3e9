package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// Event is a domain event travelling through the bus.
type Event struct {
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Handler consumes one event. Errors are logged, never returned to the publisher.
type Handler func(ctx context.Context, event Event) error

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Forwarder receives every event after local handlers ran, e.g. Redis fan-out.
type Forwarder interface {
	Forward(ctx context.Context, event Event) error
}

// Bus is an asynchronous in-process publisher. One worker delivers events in
// publish order; Close stops intake and drains what is queued.
type Bus struct {
	logger     *slog.Logger
	queue      chan Event
	done       chan struct{}
	closeMu    sync.RWMutex // guards closed and the queue's close
	closed     bool
	handlersMu sync.RWMutex
	handlers   map[string][]Handler
	forwarders []Forwarder
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used for handler failures.
func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithForwarder adds a forwarder that sees every event.
func WithForwarder(f Forwarder) BusOption {
	return func(b *Bus) {
		b.forwarders = append(b.forwarders, f)
	}
}

// NewBus starts a bus with a queue of the given capacity.
func NewBus(capacity int, opts ...BusOption) *Bus {
	if capacity <= 0 {
		capacity = 256
	}
	b := &Bus{
		logger:   slog.Default(),
		queue:    make(chan Event, capacity),
		done:     make(chan struct{}),
		handlers: make(map[string][]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

// Subscribe registers h for events of eventType.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish enqueues an event. It blocks while the queue is full until ctx is done.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if strings.TrimSpace(event.Type) == "" {
		return errors.New("missing event type")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	select {
	case b.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for queued ones to be delivered or ctx to end.
func (b *Bus) Close(ctx context.Context) error {
	b.closeMu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.closeMu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) run() {
	defer close(b.done)
	for event := range b.queue {
		b.dispatch(event)
	}
}

func (b *Bus) dispatch(event Event) {
	b.handlersMu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.handlersMu.RUnlock()

	ctx := context.Background()
	for _, h := range handlers {
		if err := b.safeCall(ctx, h, event); err != nil {
			b.logger.Error("Event handler failed", slog.String("event_type", event.Type), slog.String("error", err.Error()))
		}
	}
	for _, f := range b.forwarders {
		if err := f.Forward(ctx, event); err != nil {
			b.logger.Warn("Event forward failed", slog.String("event_type", event.Type), slog.String("error", err.Error()))
		}
	}
}

func (b *Bus) safeCall(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("handler panicked")
		}
	}()
	return h(ctx, event)
}

var _ Publisher = (*Bus)(nil)
