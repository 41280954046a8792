package hub

import "JasaKita/pkg/services"

// Wire event names. Client to server: join/leave conversation, new message,
// typing, user online. Server to client: receive message, user typing,
// user status, error.
const (
	EventJoinConversation  = "join conversation"
	EventLeaveConversation = "leave conversation"
	EventNewMessage        = "new message"
	EventReceiveMessage    = "receive message"
	EventTyping            = "typing"
	EventUserTyping        = "user typing"
	EventUserOnline        = "user online"
	EventUserStatus        = "user status"
	EventError             = "error"
)

type inboundEvent struct {
	Type           string `json:"type"`
	ConversationID uint   `json:"conversation_id"`
	Content        string `json:"content"`
}

type messagePayload struct {
	Type    string               `json:"type"`
	Message services.MessageView `json:"message"`
}

type typingPayload struct {
	Type           string `json:"type"`
	ConversationID uint   `json:"conversation_id"`
	UserID         uint   `json:"user_id"`
}

type statusPayload struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
	Status string `json:"status"`
}

type errorPayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
