package hub

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"JasaKita/pkg/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16 // 64KB
)

// Client is one websocket connection of an authenticated user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// NewClient registers a fresh connection with the hub and announces the
// user as online. Call Serve to start the pumps.
func NewClient(h *Hub, conn *websocket.Conn, userID uint) *Client {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 256), userID: userID}
	h.register <- c
	h.announceOnline(userID)
	return c
}

// Serve runs the write pump in the background and blocks on the read pump
// until the connection dies.
func (c *Client) Serve() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error (user %d): %v", c.userID, err)
			}
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.sendError("invalid payload")
			continue
		}
		c.handleEvent(ev)
	}
}

func (c *Client) handleEvent(ev inboundEvent) {
	switch ev.Type {
	case EventJoinConversation:
		// joins are re-authorized here: knowing a conversation id is not
		// enough to observe its channel
		ok, err := c.hub.chat.IsParticipant(ev.ConversationID, c.userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.sendError("conversation not found")
			} else {
				log.Printf("[ws] join check (user %d, conversation %d): %v", c.userID, ev.ConversationID, err)
				c.sendError("failed to join conversation")
			}
			return
		}
		if !ok {
			c.sendError("not a participant of this conversation")
			return
		}
		c.hub.join <- subscription{client: c, conversationID: ev.ConversationID}
	case EventLeaveConversation:
		c.hub.leave <- subscription{client: c, conversationID: ev.ConversationID}
	case EventNewMessage:
		// same write path as the HTTP endpoint; authorization and the
		// fan-out publish happen inside the service
		if _, err := c.hub.chat.SendMessage(ev.ConversationID, c.userID, ev.Content); err != nil {
			c.sendError(sendErrorText(err))
		}
	case EventTyping:
		c.hub.relayTyping(c, ev.ConversationID)
	case EventUserOnline:
		c.hub.announceOnline(c.userID)
	default:
		c.sendError("unsupported event type")
	}
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return "message content is required"
	case errors.Is(err, services.ErrForbidden):
		return "not a participant of this conversation"
	case errors.Is(err, services.ErrNotFound):
		return "conversation not found"
	default:
		log.Printf("[ws] send message: %v", err)
		return "failed to send message"
	}
}

func (c *Client) sendError(text string) {
	payload, _ := json.Marshal(errorPayload{Type: EventError, Error: text})
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
