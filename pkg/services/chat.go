package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"JasaKita/models"
	"JasaKita/pkg/cache"

	"gorm.io/gorm"
)

const snippetLimit = 160

// UserSummary is the participant/sender identity resolved onto conversation
// and message payloads.
type UserSummary struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	Role            string `json:"role"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// ConversationView is a conversation as seen by one of its participants:
// the other party resolved, plus the denormalized last-message snippet.
type ConversationView struct {
	ID          uint        `json:"id"`
	Participant UserSummary `json:"participant"`
	LastMessage string      `json:"last_message"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MessageView is a persisted message with its sender resolved.
type MessageView struct {
	ID             uint        `json:"id"`
	ConversationID uint        `json:"conversation_id"`
	Sender         UserSummary `json:"sender"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ChatService is the single write/read path for conversations and messages.
// Both the HTTP controllers and the ws hub go through it, so participant
// authorization lives here and nowhere else.
type ChatService struct {
	db      *gorm.DB
	users   *cache.Cache
	userTTL time.Duration
	publish func(conversationID uint, msg MessageView)
}

func NewChatService(db *gorm.DB, users *cache.Cache, userTTL time.Duration) *ChatService {
	return &ChatService{db: db, users: users, userTTL: userTTL}
}

// SetPublisher installs the fan-out hook called after a message is persisted.
// Publishing is fire-and-forget; a nil publisher disables fan-out.
func (s *ChatService) SetPublisher(fn func(conversationID uint, msg MessageView)) {
	s.publish = fn
}

// ListConversations returns every conversation userID takes part in, most
// recently updated first. A user with no conversations gets an empty slice.
func (s *ChatService) ListConversations(userID uint) ([]ConversationView, error) {
	var convs []models.Conversation
	if err := s.db.
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		other, err := s.resolveUser(conv.OtherParticipant(userID))
		if err != nil {
			// participant row gone; skip rather than fail the whole list
			log.Printf("[chat] resolve participant %d of conversation %d: %v", conv.OtherParticipant(userID), conv.ID, err)
			continue
		}
		views = append(views, ConversationView{
			ID:          conv.ID,
			Participant: other,
			LastMessage: conv.LastMessage,
			CreatedAt:   conv.CreatedAt,
			UpdatedAt:   conv.UpdatedAt,
		})
	}
	return views, nil
}

// GetOrCreateConversation finds the conversation between the two users,
// creating it on first contact. Safe against both sides racing the first
// create: the pair unique index rejects the loser, who then re-reads.
func (s *ChatService) GetOrCreateConversation(currentID, otherID uint) (*ConversationView, error) {
	if currentID == otherID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", ErrInvalidRequest)
	}
	other, err := s.resolveUser(otherID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, otherID)
		}
		return nil, fmt.Errorf("resolve user %d: %w", otherID, err)
	}

	low, high := models.NormalizePair(currentID, otherID)
	var conv models.Conversation
	err = s.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&conv).Error
	if err == gorm.ErrRecordNotFound {
		conv = models.Conversation{UserLowID: low, UserHighID: high}
		if cerr := s.db.Create(&conv).Error; cerr != nil {
			// likely lost the first-contact race; the unique index kept a
			// single row, fetch that one
			if ferr := s.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&conv).Error; ferr != nil {
				return nil, fmt.Errorf("create conversation: %w", cerr)
			}
		}
	} else if err != nil {
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}

	return &ConversationView{
		ID:          conv.ID,
		Participant: other,
		LastMessage: conv.LastMessage,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.UpdatedAt,
	}, nil
}

// ListMessages returns the conversation history oldest first. The caller
// must be a participant.
func (s *ChatService) ListMessages(conversationID, callerID uint) ([]MessageView, error) {
	conv, err := s.loadConversation(conversationID, callerID)
	if err != nil {
		return nil, err
	}

	var msgs []models.Message
	if err := s.db.
		Where("conversation_id = ?", conv.ID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		sender, err := s.resolveUser(m.SenderID)
		if err != nil {
			log.Printf("[chat] resolve sender %d of message %d: %v", m.SenderID, m.ID, err)
			sender = UserSummary{ID: m.SenderID}
		}
		views = append(views, MessageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Sender:         sender,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		})
	}
	return views, nil
}

// SendMessage persists a message, refreshes the conversation snippet and
// publishes the resolved message to the fan-out hook. The snippet update is
// best-effort: a failure is logged, the message stands.
func (s *ChatService) SendMessage(conversationID, callerID uint, content string) (*MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidRequest)
	}
	conv, err := s.loadConversation(conversationID, callerID)
	if err != nil {
		return nil, err
	}

	msg := models.Message{ConversationID: conv.ID, SenderID: callerID, Content: content}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	if err := s.db.Model(conv).Update("last_message", snippet(content)).Error; err != nil {
		log.Printf("[chat] update snippet of conversation %d: %v", conv.ID, err)
	}

	sender, err := s.resolveUser(callerID)
	if err != nil {
		log.Printf("[chat] resolve sender %d: %v", callerID, err)
		sender = UserSummary{ID: callerID}
	}
	view := MessageView{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         sender,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if s.publish != nil {
		s.publish(conv.ID, view)
	}
	return &view, nil
}

// IsParticipant reports whether userID belongs to the conversation. Used by
// the ws hub to authorize channel joins.
func (s *ChatService) IsParticipant(conversationID, userID uint) (bool, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, fmt.Errorf("%w: conversation %d", ErrNotFound, conversationID)
		}
		return false, fmt.Errorf("lookup conversation: %w", err)
	}
	return conv.HasParticipant(userID), nil
}

func (s *ChatService) loadConversation(conversationID, callerID uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: conversation %d", ErrNotFound, conversationID)
		}
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}
	if !conv.HasParticipant(callerID) {
		return nil, fmt.Errorf("%w: not a participant of conversation %d", ErrForbidden, conversationID)
	}
	return &conv, nil
}

// resolveUser returns the identity summary for id, cached to keep the hot
// messaging paths off the users table.
func (s *ChatService) resolveUser(id uint) (UserSummary, error) {
	key := userSummaryKey(id)
	if s.users != nil {
		if v, ok := s.users.Get(key); ok {
			if sum, ok2 := v.(UserSummary); ok2 {
				return sum, nil
			}
		}
	}
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return UserSummary{}, err
	}
	sum := UserSummary{
		ID:              user.ID,
		Username:        user.Username,
		DisplayName:     user.Name(),
		Role:            user.Role,
		ProfileImageURL: user.ProfileImageURL,
	}
	if s.users != nil {
		s.users.Set(key, sum, s.userTTL)
	}
	return sum, nil
}

// InvalidateUser drops the cached identity summary for id, e.g. after a
// profile update.
func InvalidateUser(c *cache.Cache, id uint) {
	c.Delete(userSummaryKey(id))
}

func userSummaryKey(id uint) string {
	return cache.KeyFromStrings("user-summary", strconv.FormatUint(uint64(id), 10))
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLimit {
		return content
	}
	return string(runes[:snippetLimit]) + "..."
}
