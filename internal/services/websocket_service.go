package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	clientBuffer   = 32
)

// Envelope is every message pushed to viewers
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ViewerCommand is a message received from a viewer
type ViewerCommand struct {
	Type    string  `json:"type"`
	Index   int     `json:"index,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Surface string  `json:"surface,omitempty"`
	Visible bool    `json:"visible,omitempty"`
}

// CommandHandler executes viewer commands
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd ViewerCommand) error
}

// Client is one connected viewer
type Client struct {
	ID   string
	hub  *WebSocketService
	conn *websocket.Conn
	send chan []byte
}

// WebSocketService fans viewer state out to every connected client
type WebSocketService struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	last    map[string][]byte
	handler CommandHandler

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewWebSocketService creates a new hub; start it with Run
func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients:    make(map[*Client]bool),
		last:       make(map[string][]byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// SetCommandHandler sets who executes inbound viewer commands
func (s *WebSocketService) SetCommandHandler(h CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Run serves registrations and broadcasts until ctx ends
func (s *WebSocketService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(s.done)
			s.mu.Lock()
			for c := range s.clients {
				close(c.send)
				delete(s.clients, c)
			}
			s.mu.Unlock()
			return
		case c := <-s.register:
			s.mu.Lock()
			s.clients[c] = true
			for _, msg := range s.last {
				c.send <- msg
			}
			s.mu.Unlock()
			log.Printf("Viewer connected: %s (%d total)", c.ID, s.ClientCount())
		case c := <-s.unregister:
			s.mu.Lock()
			if s.clients[c] {
				delete(s.clients, c)
				close(c.send)
			}
			s.mu.Unlock()
			log.Printf("Viewer disconnected: %s", c.ID)
		case msg := <-s.broadcast:
			s.mu.Lock()
			for c := range s.clients {
				select {
				case c.send <- msg:
				default:
					log.Printf("Viewer %s is too slow, dropping", c.ID)
					delete(s.clients, c)
					close(c.send)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Publish sends a typed message to every viewer. The latest message of
// each type is replayed to viewers that connect later.
func (s *WebSocketService) Publish(msgType string, data any) {
	payload, err := json.Marshal(Envelope{Type: msgType, Data: data})
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", msgType, err)
		return
	}
	s.mu.Lock()
	s.last[msgType] = payload
	s.mu.Unlock()

	select {
	case s.broadcast <- payload:
	default:
		log.Printf("Broadcast queue full, dropping %s", msgType)
	}
}

// ClientCount returns the number of connected viewers
func (s *WebSocketService) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ServeClient registers conn and pumps messages until it disconnects
func (s *WebSocketService) ServeClient(ctx context.Context, conn *websocket.Conn) {
	c := &Client{
		ID:   uuid.NewString(),
		hub:  s,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	select {
	case s.register <- c:
	case <-s.done:
		conn.Close()
		return
	case <-ctx.Done():
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd ViewerCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Viewer %s read error: %v", c.ID, err)
			}
			return
		}

		c.hub.mu.RLock()
		handler := c.hub.handler
		c.hub.mu.RUnlock()
		if handler == nil {
			continue
		}
		if err := handler.HandleCommand(ctx, cmd); err != nil {
			c.reply(Envelope{Type: "error", Data: map[string]string{"command": cmd.Type, "message": err.Error()}})
		}
	}
}

func (c *Client) reply(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- payload:
	default:
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
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
