package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"JasaKita/middleware"
	"JasaKita/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReview lets the customer of a completed booking rate the listing.
// One review per booking; the unique index backs the application check.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var body struct {
			BookingID uint   `json:"booking_id"`
			Rating    int    `json:"rating"`
			Comment   string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.BookingID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "booking_id is required"})
			return
		}
		if body.Rating < 1 || body.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Rating must be between 1 and 5"})
			return
		}

		var booking models.Booking
		if err := db.First(&booking, body.BookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "booking not found"})
			return
		}
		if booking.CustomerID != uid {
			c.JSON(http.StatusForbidden, gin.H{"msg": "Only the customer can review a booking"})
			return
		}
		if booking.Status != models.BookingCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Booking must be completed before reviewing"})
			return
		}

		var exists models.Review
		if err := db.Where("booking_id = ?", booking.ID).First(&exists).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"msg": "Booking already reviewed"})
			return
		} else if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		review := models.Review{
			BookingID: booking.ID,
			ListingID: booking.ListingID,
			AuthorID:  uid,
			Rating:    body.Rating,
			Comment:   strings.TrimSpace(body.Comment),
		}
		if err := db.Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create review"})
			return
		}
		c.JSON(http.StatusCreated, reviewJSON(&review))
	}
}

// ListListingReviews returns a listing's reviews newest first, plus the
// average rating.
func ListListingReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("listing_id"))

		var listing models.Listing
		if err := db.First(&listing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "listing not found"})
			return
		}

		var reviews []models.Review
		if err := db.Where("listing_id = ?", listing.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		var sum int
		result := make([]gin.H, 0, len(reviews))
		for _, r := range reviews {
			sum += r.Rating
			result = append(result, reviewJSON(&r))
		}
		avg := 0.0
		if len(reviews) > 0 {
			avg = float64(sum) / float64(len(reviews))
		}
		c.JSON(http.StatusOK, gin.H{"average_rating": avg, "count": len(reviews), "reviews": result})
	}
}

func reviewJSON(r *models.Review) gin.H {
	return gin.H{
		"id":         r.ID,
		"booking_id": r.BookingID,
		"listing_id": r.ListingID,
		"author_id":  r.AuthorID,
		"rating":     r.Rating,
		"comment":    r.Comment,
		"created_at": r.CreatedAt,
	}
}
