// Package events is the in-process publish/subscribe dispatcher that connects
// membership, complaint and listing changes to the services reacting to them.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event is implemented by every payload type in this package. EventName must
// not depend on field values: Subscribe calls it on the zero value.
type Event interface {
	EventName() string
}

type handler func(ctx context.Context, e Event)

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]handler
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{handlers: make(map[string][]handler), log: log}
}

// Subscribe registers fn for events of type T.
func Subscribe[T Event](b *Bus, fn func(ctx context.Context, e T)) {
	var zero T
	name := zero.EventName()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], func(ctx context.Context, e Event) {
		if typed, ok := e.(T); ok {
			fn(ctx, typed)
		}
	})
}

// Publish runs every handler subscribed to e's type. A panicking handler is
// logged and does not stop the remaining handlers.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := append([]handler(nil), b.handlers[e.EventName()]...)
	b.mu.RUnlock()

	for _, h := range hs {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", zap.String("event", e.EventName()), zap.Any("panic", r))
		}
	}()
	h(ctx, e)
}
