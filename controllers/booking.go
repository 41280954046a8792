package controllers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"JasaKita/middleware"
	"JasaKita/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBooking books an active listing for the caller. Providers cannot
// book their own listings.
func CreateBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var body struct {
			ListingID   uint   `json:"listing_id"`
			ScheduledAt string `json:"scheduled_at"`
			Note        string `json:"note"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ListingID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "listing_id is required"})
			return
		}
		scheduledAt, err := time.Parse(time.RFC3339, body.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "scheduled_at must be RFC3339"})
			return
		}
		if scheduledAt.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "scheduled_at must be in the future"})
			return
		}

		var listing models.Listing
		if err := db.Where("id = ? AND active = ?", body.ListingID, true).First(&listing).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "listing not found"})
			return
		}
		if listing.ProviderID == uid {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Cannot book your own listing"})
			return
		}

		booking := models.Booking{
			Code:        uuid.NewString(),
			ListingID:   listing.ID,
			CustomerID:  uid,
			ProviderID:  listing.ProviderID,
			ScheduledAt: scheduledAt,
			Note:        strings.TrimSpace(body.Note),
			Status:      models.BookingPending,
		}
		if err := db.Create(&booking).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create booking"})
			return
		}
		c.JSON(http.StatusCreated, bookingJSON(&booking))
	}
}

// ListBookings returns the caller's bookings, both sides: as customer and
// (for providers) as the booked party.
func ListBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var bookings []models.Booking
		if err := db.
			Where("customer_id = ? OR provider_id = ?", uid, uid).
			Order("scheduled_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		result := make([]gin.H, 0, len(bookings))
		for _, b := range bookings {
			result = append(result, bookingJSON(&b))
		}
		c.JSON(http.StatusOK, result)
	}
}

// allowed status transitions per role
var providerTransitions = map[string][]string{
	models.BookingPending:  {models.BookingAccepted, models.BookingDeclined},
	models.BookingAccepted: {models.BookingCompleted},
}

// UpdateBookingStatus moves a booking through its lifecycle. The provider
// accepts/declines/completes; either party may cancel before completion.
func UpdateBookingStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		id, _ := strconv.Atoi(c.Param("booking_id"))

		var booking models.Booking
		if err := db.First(&booking, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "booking not found"})
			return
		}
		if booking.CustomerID != uid && booking.ProviderID != uid {
			c.JSON(http.StatusForbidden, gin.H{"msg": "not your booking"})
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		next := strings.TrimSpace(strings.ToLower(body.Status))

		allowed := false
		switch {
		case next == models.BookingCancelled:
			allowed = booking.Status == models.BookingPending || booking.Status == models.BookingAccepted
		case uid == booking.ProviderID:
			allowed = slices.Contains(providerTransitions[booking.Status], next)
		}
		if !allowed {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid status transition"})
			return
		}

		booking.Status = next
		if err := db.Save(&booking).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update booking"})
			return
		}
		c.JSON(http.StatusOK, bookingJSON(&booking))
	}
}

func bookingJSON(b *models.Booking) gin.H {
	return gin.H{
		"id":           b.ID,
		"code":         b.Code,
		"listing_id":   b.ListingID,
		"customer_id":  b.CustomerID,
		"provider_id":  b.ProviderID,
		"scheduled_at": b.ScheduledAt,
		"note":         b.Note,
		"status":       b.Status,
		"created_at":   b.CreatedAt,
	}
}
