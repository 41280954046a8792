package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingPending   = "pending"
	BookingAccepted  = "accepted"
	BookingDeclined  = "declined"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking ties a customer to a listing at a scheduled time. Code is a public
// reference shown to both parties; Status transitions are provider-driven
// except cancellation.
type Booking struct {
	gorm.Model
	Code        string    `gorm:"uniqueIndex;size:36;not null"`
	ListingID   uint      `gorm:"index;not null"`
	CustomerID  uint      `gorm:"index;not null"`
	ProviderID  uint      `gorm:"index;not null"`
	ScheduledAt time.Time `gorm:"not null"`
	Note        string    `gorm:"size:500"`
	Status      string    `gorm:"size:20;not null;default:pending"`
}
