package models

import "gorm.io/gorm"

// Review is left by the customer of a completed booking. One review per
// booking, enforced by the unique index.
type Review struct {
	gorm.Model
	BookingID uint   `gorm:"uniqueIndex;not null"`
	ListingID uint   `gorm:"index;not null"`
	AuthorID  uint   `gorm:"index;not null"`
	Rating    int    `gorm:"not null"`
	Comment   string `gorm:"size:1000"`
}
