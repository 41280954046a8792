package hub

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"JasaKita/models"
	"JasaKita/pkg/cache"
	"JasaKita/pkg/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	hub  *Hub
	chat *services.ChatService
	db   *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	chat := services.NewChatService(db, cache.New(100), time.Minute)
	h := New(chat, nil)
	chat.SetPublisher(h.PublishMessage)
	return &fixture{hub: h, chat: chat, db: db}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Email: username + "@example.com", Username: username, Role: models.RoleUser, PasswordHash: "x"}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// client registers a bare connection with the hub; pumps are not started,
// tests read c.send directly.
func (f *fixture) client(userID uint) *Client {
	c := &Client{hub: f.hub, send: make(chan []byte, 16), userID: userID}
	f.hub.register <- c
	return c
}

func recv(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if !ok {
			t.Fatalf("send channel closed")
		}
		var m map[string]any
		if err := json.Unmarshal(payload, &m); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for payload")
		return nil
	}
}

func expectNone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("expected no payload, got %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestJoinedClientsReceiveMessages(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	budi := f.user(t, "budi")
	conv, err := f.chat.GetOrCreateConversation(alice.ID, budi.ID)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	ca := f.client(alice.ID)
	cb := f.client(budi.ID)
	ca.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})
	cb.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})

	ca.handleEvent(inboundEvent{Type: EventNewMessage, ConversationID: conv.ID, Content: "halo"})

	// both subscribers get the resolved message, including the sender
	for _, c := range []*Client{ca, cb} {
		got := recv(t, c)
		if got["type"] != EventReceiveMessage {
			t.Fatalf("expected %q event, got %v", EventReceiveMessage, got["type"])
		}
		msg := got["message"].(map[string]any)
		if msg["content"] != "halo" {
			t.Fatalf("expected content 'halo', got %v", msg["content"])
		}
		sender := msg["sender"].(map[string]any)
		if sender["username"] != "alice" {
			t.Fatalf("expected resolved sender, got %v", sender)
		}
	}
}

func TestUnauthorizedJoinRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	budi := f.user(t, "budi")
	eve := f.user(t, "eve")
	conv, err := f.chat.GetOrCreateConversation(alice.ID, budi.ID)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	ce := f.client(eve.ID)
	ce.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})
	got := recv(t, ce)
	if got["type"] != EventError {
		t.Fatalf("expected error event, got %v", got)
	}

	// eve must not observe traffic on the channel
	ca := f.client(alice.ID)
	ca.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})
	ca.handleEvent(inboundEvent{Type: EventNewMessage, ConversationID: conv.ID, Content: "secret"})
	recv(t, ca) // alice sees her own message
	expectNone(t, ce)
}

func TestJoinUnknownConversation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	ca := f.client(alice.ID)

	ca.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: 999})
	got := recv(t, ca)
	if got["type"] != EventError {
		t.Fatalf("expected error event, got %v", got)
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	budi := f.user(t, "budi")
	conv, err := f.chat.GetOrCreateConversation(alice.ID, budi.ID)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	ca := f.client(alice.ID)
	cb := f.client(budi.ID)
	ca.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})
	cb.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})
	cb.handleEvent(inboundEvent{Type: EventLeaveConversation, ConversationID: conv.ID})

	ca.handleEvent(inboundEvent{Type: EventNewMessage, ConversationID: conv.ID, Content: "halo"})
	recv(t, ca)
	expectNone(t, cb)

	// the message is persisted regardless of who is listening
	msgs, err := f.chat.ListMessages(conv.ID, budi.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(msgs))
	}
}

func TestSendViaSocketValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	budi := f.user(t, "budi")
	eve := f.user(t, "eve")
	conv, err := f.chat.GetOrCreateConversation(alice.ID, budi.ID)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	// empty content
	ca := f.client(alice.ID)
	ca.handleEvent(inboundEvent{Type: EventNewMessage, ConversationID: conv.ID, Content: "   "})
	if got := recv(t, ca); got["type"] != EventError {
		t.Fatalf("expected error for empty content, got %v", got)
	}

	// non-participant: the shared service path rejects the socket write too
	ce := f.client(eve.ID)
	ce.handleEvent(inboundEvent{Type: EventNewMessage, ConversationID: conv.ID, Content: "hi"})
	if got := recv(t, ce); got["type"] != EventError {
		t.Fatalf("expected error for non-participant, got %v", got)
	}

	var count int64
	if err := f.db.Model(&models.Message{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no persisted messages, got %d", count)
	}
}

func TestTypingRelayExcludesSender(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	budi := f.user(t, "budi")
	conv, err := f.chat.GetOrCreateConversation(alice.ID, budi.ID)
	if err != nil {
		t.Fatalf("get-or-create: %v", err)
	}

	ca := f.client(alice.ID)
	cb := f.client(budi.ID)
	ca.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})
	cb.handleEvent(inboundEvent{Type: EventJoinConversation, ConversationID: conv.ID})

	ca.handleEvent(inboundEvent{Type: EventTyping, ConversationID: conv.ID})
	got := recv(t, cb)
	if got["type"] != EventUserTyping {
		t.Fatalf("expected %q, got %v", EventUserTyping, got["type"])
	}
	if uint(got["user_id"].(float64)) != alice.ID {
		t.Fatalf("expected typing user %d, got %v", alice.ID, got["user_id"])
	}
	expectNone(t, ca)
}

func TestOnlineStatusBroadcast(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	budi := f.user(t, "budi")

	ca := f.client(alice.ID)
	cb := f.client(budi.ID)

	cb.handleEvent(inboundEvent{Type: EventUserOnline})
	for _, c := range []*Client{ca, cb} {
		got := recv(t, c)
		if got["type"] != EventUserStatus {
			t.Fatalf("expected %q, got %v", EventUserStatus, got["type"])
		}
		if got["status"] != "online" || uint(got["user_id"].(float64)) != budi.ID {
			t.Fatalf("unexpected status payload %v", got)
		}
	}

	// last connection of a user going away broadcasts offline
	f.hub.unregister <- cb
	got := recv(t, ca)
	if got["type"] != EventUserStatus || got["status"] != "offline" {
		t.Fatalf("expected offline status, got %v", got)
	}
}
