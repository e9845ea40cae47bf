package listeners

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/services"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
)

type fakePub struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (f *fakePub) Publish(room string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[string][]string{}
	}
	f.sent[room] = append(f.sent[room], string(data))
}

func TestPushesToVisitorRoom(t *testing.T) {
	d := event.NewDispatcher()
	pub := &fakePub{}
	Register(d, pub)
	ctx := context.Background()

	d.Fire(ctx, services.EventCartChanged, services.CartChanged{Visitor: "v1", Count: 0})
	d.Fire(ctx, services.EventThemeChanged, services.ThemeChanged{Visitor: "v1", Theme: "dark"})
	d.Fire(ctx, services.EventCartChanged, services.CartChanged{Visitor: "v2", Count: 3})
	d.Fire(ctx, services.EventOrderPaid, services.OrderPaid{Visitor: "v1", Order: models.Order{ID: "ORD1"}})

	require.Len(t, pub.sent["v1"], 2)
	assert.JSONEq(t, `{"type":"cart","count":0}`, pub.sent["v1"][0])
	assert.JSONEq(t, `{"type":"theme","theme":"dark"}`, pub.sent["v1"][1])
	assert.Equal(t, []string{`{"type":"cart","count":3}`}, pub.sent["v2"])
}

func TestNilPublisherAndMissingVisitor(t *testing.T) {
	d := event.NewDispatcher()
	Register(d, nil)
	d.Fire(context.Background(), services.EventCartChanged, services.CartChanged{Visitor: "v1", Count: 1})

	pub := &fakePub{}
	d2 := event.NewDispatcher()
	Register(d2, pub)
	d2.Fire(context.Background(), services.EventCartChanged, services.CartChanged{Count: 1})
	assert.Empty(t, pub.sent)
}

func TestPublishersFanOut(t *testing.T) {
	a, b := &fakePub{}, &fakePub{}
	d := event.NewDispatcher()
	Register(d, Publishers{a, b})

	d.Fire(context.Background(), services.EventThemeChanged, services.ThemeChanged{Visitor: "v1", Theme: "light"})

	assert.Equal(t, []string{`{"type":"theme","theme":"light"}`}, a.sent["v1"])
	assert.Equal(t, a.sent, b.sent)
}
