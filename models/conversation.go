package models

import "gorm.io/gorm"

// Conversation is a persistent thread between exactly two users. The pair is
// stored in canonical order (UserLowID < UserHighID) so lookup and the
// duplicate-prevention unique index work regardless of which side initiates.
type Conversation struct {
	gorm.Model
	UserLowID   uint      `gorm:"not null;uniqueIndex:idx_conversation_pair"`
	UserHighID  uint      `gorm:"not null;uniqueIndex:idx_conversation_pair"`
	LastMessage string    `gorm:"size:500"`
	Messages    []Message `gorm:"constraint:OnDelete:CASCADE"`
}

// NormalizePair returns the two user IDs in canonical (low, high) order.
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether uid is one of the two participants.
func (c *Conversation) HasParticipant(uid uint) bool {
	return uid == c.UserLowID || uid == c.UserHighID
}

// OtherParticipant returns the participant that is not uid.
func (c *Conversation) OtherParticipant(uid uint) uint {
	if uid == c.UserLowID {
		return c.UserHighID
	}
	return c.UserLowID
}
