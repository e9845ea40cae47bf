// Package ws pushes live storefront updates over gorilla/websocket. Every
// connection joins a room (the visitor id), so a cart change in one tab
// reaches every other open tab of the same visitor.
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	r.Get("/ws", "ws", ctx.Wrap(func(c *ctx.Context) {
//	    _ = ws.Upgrade(c.W, c.R, hub, c.Visitor())
//	}))
//
//	hub.Publish(visitorID, payload)
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

// A nil CheckOrigin refuses cross-origin upgrades.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one connection.
type Client struct {
	hub  *Hub
	room string
	conn *websocket.Conn
	send chan []byte
}

// readPump only services control frames; clients never send data.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type publication struct {
	room string
	data []byte
}

// Hub owns every connection, grouped by room.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	publish    chan publication
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
}

// NewHub creates a hub. Start it with go hub.Run(ctx).
func NewHub() *Hub {
	return &Hub{
		rooms:      map[string]map[*Client]struct{}{},
		publish:    make(chan publication, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub event loop. On ctx cancellation every client is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.rooms {
				for c := range clients {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = map[*Client]struct{}{}
			}
			h.rooms[c.room][c] = struct{}{}
			h.count.Add(1)
			metrics.WSClients.Inc()

		case c := <-h.unregister:
			h.drop(c)

		case p := <-h.publish:
			for c := range h.rooms[p.room] {
				select {
				case c.send <- p.data:
				default:
					h.drop(c) // slow consumer
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	clients, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
	close(c.send)
	h.count.Add(-1)
	metrics.WSClients.Dec()
}

// Publish queues data for every client in room. It never blocks; when the
// hub is saturated the update is dropped.
func (h *Hub) Publish(room string, data []byte) {
	select {
	case h.publish <- publication{room: room, data: data}:
	default:
		logger.Warn("ws: publish queue full, update dropped", "room", room)
	}
}

// ClientCount is the number of open connections.
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Upgrade turns the request into a websocket that joins room.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, room string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
		return err
	}
	c := &Client{hub: hub, room: room, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case hub.register <- c:
	case <-hub.done:
		conn.Close()
		return errors.New("ws: hub stopped")
	}
	go c.writePump()
	go c.readPump()
	return nil
}
