package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"JasaKita/middleware"
	svc "JasaKita/pkg/services"

	"github.com/gin-gonic/gin"
)

// ListConversations returns the caller's conversation overview, most
// recently active first. A user with no conversations gets an empty list.
func ListConversations(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		convs, err := chat.ListConversations(uid)
		if err != nil {
			log.Printf("[chat] list conversations (user %d): %v", uid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to load conversations"})
			return
		}
		c.JSON(http.StatusOK, convs)
	}
}

// GetOrCreateConversation resolves the thread between the caller and the
// user in the path, creating it on first contact. Registered for both GET
// and POST; the operation is idempotent either way.
func GetOrCreateConversation(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		otherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid user id"})
			return
		}

		conv, err := chat.GetOrCreateConversation(uid, uint(otherID))
		if err != nil {
			respondChatError(c, err, "failed to open conversation")
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}

// ListMessages returns the full history of a conversation, oldest first.
func ListMessages(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid conversation id"})
			return
		}

		msgs, err := chat.ListMessages(uint(convID), uid)
		if err != nil {
			respondChatError(c, err, "failed to load messages")
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

// SendMessage persists a message and returns it resolved; the fan-out to
// live subscribers happens inside the service after the save.
func SendMessage(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid conversation id"})
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		// empty content falls through so validation answers with 400
		if strings.TrimSpace(body.Content) != "" && !middleware.DuplicateGuard(uid, body.Content) {
			c.JSON(http.StatusTooManyRequests, gin.H{"msg": "duplicate message, slow down"})
			return
		}

		msg, err := chat.SendMessage(uint(convID), uid, body.Content)
		if err != nil {
			respondChatError(c, err, "failed to send message")
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// respondChatError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is logged and reported generically.
func respondChatError(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, svc.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	case errors.Is(err, svc.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
	case errors.Is(err, svc.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": err.Error()})
	default:
		log.Printf("[chat] %s: %v", generic, err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": generic})
	}
}
