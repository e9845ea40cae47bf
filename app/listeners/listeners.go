// Package listeners reacts to storefront events: live pushes to the
// visitor's open tabs and audit logging.
package listeners

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// Publisher delivers a payload to every connection in room.
type Publisher interface {
	Publish(room string, data []byte)
}

// Publishers sends to each of its members, e.g. the websocket hub and the
// SSE broker.
type Publishers []Publisher

func (ps Publishers) Publish(room string, data []byte) {
	for _, p := range ps {
		p.Publish(room, data)
	}
}

// Message is the push payload.
type Message struct {
	Type  string `json:"type"`
	Count *int   `json:"count,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// Register subscribes the listeners on d. pub may be nil, in which case
// nothing is pushed.
func Register(d *event.Dispatcher, pub Publisher) {
	d.Listen(services.EventCartChanged, func(ctx context.Context, payload any) {
		e, ok := payload.(services.CartChanged)
		if !ok {
			return
		}
		push(ctx, pub, e.Visitor, Message{Type: "cart", Count: &e.Count})
	})

	d.Listen(services.EventThemeChanged, func(ctx context.Context, payload any) {
		e, ok := payload.(services.ThemeChanged)
		if !ok {
			return
		}
		push(ctx, pub, e.Visitor, Message{Type: "theme", Theme: e.Theme})
	})

	d.Listen(services.EventOrderPaid, func(ctx context.Context, payload any) {
		e, ok := payload.(services.OrderPaid)
		if !ok {
			return
		}
		logger.WithCtx(ctx).Info("order recorded",
			"order_id", e.Order.ID,
			"method", e.Order.Method,
			"amount", e.Order.Amount,
			"items", len(e.Order.Items),
		)
	})
}

func push(ctx context.Context, pub Publisher, visitor string, msg Message) {
	if pub == nil || visitor == "" {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithCtx(ctx).Error("listeners: encode push", "error", err)
		return
	}
	pub.Publish(visitor, data)
}
