package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"JasaKita/pkg/services"

	"github.com/redis/go-redis/v9"
)

// Hub owns all live websocket state: which users are connected and which
// clients subscribed to which conversation channel. Membership is purely
// in-memory; a restart drops it and clients rejoin. With a Redis client the
// hub also bridges publishes across instances via pub/sub channels named
// conversation:<id>; without one everything loops back locally.
type Hub struct {
	chat *services.ChatService
	rdb  *redis.Client

	clients  map[uint]map[*Client]bool // userID -> connections
	channels map[uint]map[*Client]bool // conversationID -> subscribers

	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	broadcast  chan channelEvent
	status     chan statusEvent
}

type subscription struct {
	client         *Client
	conversationID uint
}

type channelEvent struct {
	conversationID uint
	exclude        *Client // nil = deliver to every subscriber
	payload        []byte
}

type statusEvent struct {
	userID uint
	online bool
}

func New(chat *services.ChatService, rdb *redis.Client) *Hub {
	h := &Hub{
		chat:       chat,
		rdb:        rdb,
		clients:    make(map[uint]map[*Client]bool),
		channels:   make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		leave:      make(chan subscription),
		broadcast:  make(chan channelEvent, 256),
		status:     make(chan statusEvent, 64),
	}
	go h.run()
	if rdb != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			if _, ok := h.clients[c.userID]; !ok {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
			log.Printf("[ws] client registered: user %d", c.userID)
		case c := <-h.unregister:
			h.dropClient(c)
		case sub := <-h.join:
			if _, ok := h.channels[sub.conversationID]; !ok {
				h.channels[sub.conversationID] = make(map[*Client]bool)
			}
			h.channels[sub.conversationID][sub.client] = true
		case sub := <-h.leave:
			if subs, ok := h.channels[sub.conversationID]; ok {
				delete(subs, sub.client)
				if len(subs) == 0 {
					delete(h.channels, sub.conversationID)
				}
			}
		case ev := <-h.broadcast:
			h.deliver(ev)
		case st := <-h.status:
			h.broadcastStatus(st)
		}
	}
}

func (h *Hub) dropClient(c *Client) {
	conns, ok := h.clients[c.userID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
		h.broadcastStatus(statusEvent{userID: c.userID, online: false})
	}
	for convID, subs := range h.channels {
		if subs[c] {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.channels, convID)
			}
		}
	}
}

// deliver pushes payload to every subscriber of the channel; subscribers
// whose send buffer is full are dropped as slow consumers.
func (h *Hub) deliver(ev channelEvent) {
	subs, ok := h.channels[ev.conversationID]
	if !ok {
		return
	}
	for c := range subs {
		if c == ev.exclude {
			continue
		}
		select {
		case c.send <- ev.payload:
		default:
			h.dropClient(c)
		}
	}
}

func (h *Hub) broadcastStatus(st statusEvent) {
	payload, _ := json.Marshal(statusPayload{
		Type:   EventUserStatus,
		UserID: st.userID,
		Status: map[bool]string{true: "online", false: "offline"}[st.online],
	})
	for _, conns := range h.clients {
		for c := range conns {
			select {
			case c.send <- payload:
			default:
				h.dropClient(c)
			}
		}
	}
}

// PublishMessage fans a freshly persisted message out to the conversation's
// channel. It is installed as the ChatService publisher, so both the HTTP
// and ws send paths end up here after a successful save.
func (h *Hub) PublishMessage(conversationID uint, msg services.MessageView) {
	payload, err := json.Marshal(messagePayload{Type: EventReceiveMessage, Message: msg})
	if err != nil {
		log.Printf("[ws] marshal message %d: %v", msg.ID, err)
		return
	}
	if h.rdb != nil {
		channel := fmt.Sprintf("conversation:%d", conversationID)
		if err := h.rdb.Publish(context.Background(), channel, payload).Err(); err != nil {
			log.Printf("[ws] redis publish %s: %v", channel, err)
			// fall back to local delivery so this instance's clients still see it
			h.broadcast <- channelEvent{conversationID: conversationID, payload: payload}
		}
		return
	}
	h.broadcast <- channelEvent{conversationID: conversationID, payload: payload}
}

// subscribeRedis feeds cross-instance publishes into the local broadcast
// loop. Channel names carry the conversation id after the colon.
func (h *Hub) subscribeRedis() {
	pubsub := h.rdb.PSubscribe(context.Background(), "conversation:*")
	for msg := range pubsub.Channel() {
		idStr := strings.TrimPrefix(msg.Channel, "conversation:")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			log.Printf("[ws] bad pubsub channel %q", msg.Channel)
			continue
		}
		h.broadcast <- channelEvent{conversationID: uint(id), payload: []byte(msg.Payload)}
	}
}

func (h *Hub) relayTyping(from *Client, conversationID uint) {
	payload, _ := json.Marshal(typingPayload{
		Type:           EventUserTyping,
		ConversationID: conversationID,
		UserID:         from.userID,
	})
	h.broadcast <- channelEvent{conversationID: conversationID, exclude: from, payload: payload}
}

func (h *Hub) announceOnline(userID uint) {
	h.status <- statusEvent{userID: userID, online: true}
}
