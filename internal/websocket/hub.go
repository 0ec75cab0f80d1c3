// Package websocket fans planner change messages out to connected clients.
package websocket

import (
	"context"
	"sync"

	"github.com/weekly-planner/backend/internal/log"
)

const sendBuffer = 256

// Hub tracks connected clients and broadcasts to all of them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.close()
			}
			h.mu.Unlock()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug("websocket client connected", "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				c.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug("websocket client disconnected", "clients", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it rather than block everyone else.
					delete(h.clients, c)
					c.close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues message for every client. It never blocks.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		log.Warn("websocket broadcast queue full, dropping message")
	}
}

// Register adds c. After Run has returned, c is closed immediately.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one connection's outbound queue.
type Client struct {
	hub    *Hub
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBuffer)}
}

// Send is the channel the connection's write pump drains. It is closed when the
// hub drops the client.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Reply queues a message for this client only. It reports false if the buffer is
// full or the hub has dropped the client.
func (c *Client) Reply(msg Message) bool {
	data, err := msg.JSON()
	if err != nil {
		log.Error("encoding websocket reply", err, "type", msg.Type)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
