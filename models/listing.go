package models

import "gorm.io/gorm"

// Listing is a service offer published by a provider (plumbing, tutoring,
// cleaning, ...). Searchable by free text, category and city.
type Listing struct {
	gorm.Model
	ProviderID  uint   `gorm:"index;not null"`
	Title       string `gorm:"size:200;not null"`
	Category    string `gorm:"size:80;index;not null"`
	Description string `gorm:"type:text"`
	City        string `gorm:"size:80;index"`
	PriceCents  int64  `gorm:"not null;default:0"`
	Active      bool   `gorm:"not null;default:true"`
}
