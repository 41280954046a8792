package models

import "gorm.io/gorm"

// Message is a single chat line. Messages are immutable once created.
type Message struct {
	gorm.Model
	ConversationID uint   `gorm:"index;not null"`
	SenderID       uint   `gorm:"index;not null"`
	Content        string `gorm:"type:text;not null"`
}
