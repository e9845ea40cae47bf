// Package event is an in-process dispatcher for storefront events such as
// cart.changed, theme.changed and order.paid.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Dispatcher routes fired events to their listeners.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Default is the process-wide dispatcher. Services fall back to it when
// they are built without one.
var Default = NewDispatcher()

// Listen registers a handler for event.
func (d *Dispatcher) Listen(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

func (d *Dispatcher) snapshot(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[event]))
	copy(hs, d.handlers[event])
	return hs
}

// Fire calls every listener synchronously, in registration order. A
// panicking listener is logged and does not stop the others.
func (d *Dispatcher) Fire(ctx context.Context, event string, payload any) {
	for _, h := range d.snapshot(event) {
		call(ctx, event, h, payload)
	}
}

func call(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "panic", fmt.Sprint(r))
		}
	}()
	h(ctx, payload)
}
