package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// WebSocket configuration
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192 // 8KB max message size from client
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The HTTP layer already restricts CORS to localhost; WebSocket
		// upgrades follow the same local-tooling assumption.
		return true
	},
}

// WebSocketClient represents a connected WebSocket client subscribed to
// session events (state, output, execution).
type WebSocketClient struct {
	conn         *websocket.Conn
	send         chan BroadcastEvent
	subscription *Subscription
	broadcaster  *Broadcaster
	mu           sync.Mutex
}

// ClientRequest is a message from the WebSocket client: "subscribe" to
// select the session and event types to receive, or "unsubscribe" to stop
// receiving events without closing the connection.
type ClientRequest struct {
	Type       string   `json:"type"`      // "subscribe" or "unsubscribe"
	SessionID  string   `json:"sessionId"` // Empty string = all sessions
	EventTypes []string `json:"events"`    // Empty = all event types
}

// handleWebSocket handles WebSocket upgrade and client management
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &WebSocketClient{
		conn:        conn,
		send:        make(chan BroadcastEvent, 256),
		broadcaster: s.broadcaster,
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// readPump handles incoming messages from the WebSocket client
func (c *WebSocketClient) readPump() {
	defer func() {
		c.unsubscribe()
		if err := c.conn.Close(); err != nil {
			log.Printf("WebSocket close error: %v", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("SetReadDeadline error: %v", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var req ClientRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Printf("Failed to parse client request: %v", err)
			continue
		}

		switch req.Type {
		case "subscribe":
			c.handleSubscribe(req)
		case "unsubscribe":
			c.unsubscribe()
		default:
			log.Printf("Unknown WebSocket request type: %q", req.Type)
		}
	}
}

// writePump sends events to the WebSocket client
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			log.Printf("WebSocket close error: %v", err)
		}
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("SetWriteDeadline error: %v", err)
				return
			}
			if !ok {
				// Channel closed
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Printf("WriteMessage error: %v", err)
				}
				return
			}

			// Send event as JSON
			if err := c.conn.WriteJSON(event); err != nil {
				log.Printf("WriteJSON error: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("SetWriteDeadline error: %v", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleSubscribe replaces the client's subscription with the requested
// filters and acknowledges it, so the client knows exactly when events
// start flowing.
func (c *WebSocketClient) handleSubscribe(req ClientRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscription != nil {
		c.broadcaster.Unsubscribe(c.subscription)
	}

	eventTypes := make([]EventType, 0, len(req.EventTypes))
	for _, et := range req.EventTypes {
		eventTypes = append(eventTypes, EventType(et))
	}

	c.subscription = c.broadcaster.Subscribe(req.SessionID, eventTypes)

	// Acknowledge before any event can arrive on the new subscription.
	select {
	case c.send <- BroadcastEvent{
		Type:      EventTypeSubscribed,
		SessionID: req.SessionID,
		Data:      SubscriptionAck{Events: req.EventTypes},
	}:
	default:
	}

	go c.forwardEvents(c.subscription)
}

// forwardEvents copies events from one subscription to the client until
// that subscription's channel is closed (by unsubscribe or broadcaster
// shutdown). Each subscription gets its own forwarder, so a re-subscribe
// simply ends the old one.
func (c *WebSocketClient) forwardEvents(sub *Subscription) {
	for event := range sub.Channel {
		select {
		case c.send <- event:
		default:
			// Client is too slow, skip this event
		}
	}
}

// unsubscribe drops the active subscription, if any.
func (c *WebSocketClient) unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscription != nil {
		c.broadcaster.Unsubscribe(c.subscription)
		c.subscription = nil
	}
}
