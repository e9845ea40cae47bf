// Package sse streams storefront updates as Server-Sent Events. It is the
// fallback for browsers or proxies that cannot hold a websocket open:
//
//	broker := sse.NewBroker()
//	r.Get("/events", "events", ctx.Wrap(func(c *ctx.Context) {
//	    broker.Serve(c.W, c.R, c.Visitor())
//	}))
//	broker.Publish(visitorID, []byte(`{"type":"cart","count":2}`))
package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

const (
	streamBuffer = 16
	heartbeat    = 25 * time.Second
)

// Broker fans published payloads out to the open streams of a room.
type Broker struct {
	mu        sync.Mutex
	rooms     map[string]map[chan []byte]struct{}
	heartbeat time.Duration
}

func NewBroker() *Broker {
	return &Broker{rooms: map[string]map[chan []byte]struct{}{}, heartbeat: heartbeat}
}

// Publish queues data for every stream in room. A stream whose buffer is
// full misses the update.
func (b *Broker) Publish(room string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.rooms[room] {
		select {
		case ch <- data:
		default:
			logger.Debug("sse: slow stream, update dropped", "room", room)
		}
	}
}

// StreamCount is the number of open streams in room.
func (b *Broker) StreamCount(room string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rooms[room])
}

func (b *Broker) subscribe(room string) chan []byte {
	ch := make(chan []byte, streamBuffer)
	b.mu.Lock()
	if b.rooms[room] == nil {
		b.rooms[room] = map[chan []byte]struct{}{}
	}
	b.rooms[room][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(room string, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms[room], ch)
	if len(b.rooms[room]) == 0 {
		delete(b.rooms, room)
	}
}

// Serve holds the request open and writes each payload published to room
// as a "message" event until the client goes away.
func (b *Broker) Serve(w http.ResponseWriter, r *http.Request, room string) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{}) // outlive the server's WriteTimeout

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logger.WithCtx(r.Context()).Warn("sse: streaming unsupported", "error", err)
		return
	}

	ch := b.subscribe(room)
	defer b.unsubscribe(room, ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
