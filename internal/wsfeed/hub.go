// Package wsfeed is a remote broadcast.Sink that fans every domain
// event out to connected WebSocket observers as JSON. Scoped down from
// 0xtitan6-polymarket-mm's internal/api/stream.go Hub/Client pattern:
// the same bounded-per-client-channel, register/unregister-via-channel
// design, with the HTTP route and dashboard payload shapes stripped —
// this package implements the Sink side and the upgrade handler
// (Hub.ServeHTTP); mounting that handler on a route is the caller's
// (cmd/glazed's) job.
package wsfeed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"glaze/internal/broadcast"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const clientSendQueueSize = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub holds every connected client and implements broadcast.Sink by
// marshalling each Event to JSON and fanning it out.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     zerolog.Logger

	register   chan *client
	unregister chan *client
}

func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*client]struct{}),
		log:        log.With().Str("component", "wsfeed").Logger(),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// resulting connection as a client. Connections are write-only from
// the server's perspective; any client message is discarded (read
// loop exists solely to notice disconnects).
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendQueueSize)}
	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() { h.unregister <- c }()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) broadcastJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn().Msg("client send queue full, dropping event")
		}
	}
}

type wireEvent struct {
	Kind      string `json:"kind"`
	At        string `json:"at"`
	Payload   any    `json:"payload,omitempty"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
	ProductID string `json:"productId,omitempty"`
}

func (h *Hub) OnTradeExecuted(ev broadcast.Event) {
	h.broadcastJSON(wireEvent{Kind: "TRADE_EXECUTED", At: ev.At.Format(time.RFC3339Nano), Payload: ev.Trade})
}

func (h *Hub) OnBookUpdated(ev broadcast.Event) {
	h.broadcastJSON(wireEvent{Kind: "BOOK_UPDATED", At: ev.At.Format(time.RFC3339Nano), ProductID: ev.ProductID})
}

func (h *Hub) OnCustomerPurchased(ev broadcast.Event) {
	h.broadcastJSON(wireEvent{Kind: "CUSTOMER_PURCHASED", At: ev.At.Format(time.RFC3339Nano), Payload: ev.Sale})
}

func (h *Hub) OnError(ev broadcast.Event) {
	h.broadcastJSON(wireEvent{Kind: "ERROR", At: ev.At.Format(time.RFC3339Nano), Message: ev.Message, Source: ev.Source})
}
