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

// SearchListings is the public marketplace search: free text over title and
// description, optional category and city filters, newest first.
func SearchListings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		category := strings.TrimSpace(c.Query("category"))
		city := strings.TrimSpace(c.Query("city"))

		tx := db.Model(&models.Listing{}).Where("active = ?", true)
		if q != "" {
			p := "%" + strings.ToLower(q) + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", p, p)
		}
		if category != "" {
			tx = tx.Where("category = ?", strings.ToLower(category))
		}
		if city != "" {
			tx = tx.Where("LOWER(city) = ?", strings.ToLower(city))
		}

		var listings []models.Listing
		if err := tx.Order("created_at DESC").Limit(100).Find(&listings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		result := make([]gin.H, 0, len(listings))
		for _, l := range listings {
			result = append(result, listingJSON(&l))
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetListing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("listing_id"))
		var listing models.Listing
		if err := db.First(&listing, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "listing not found"})
			return
		}
		c.JSON(http.StatusOK, listingJSON(&listing))
	}
}

// CreateListing lets providers publish a service offer.
func CreateListing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		if user.Role != models.RoleProvider {
			c.JSON(http.StatusForbidden, gin.H{"msg": "Only providers can create listings"})
			return
		}

		var body struct {
			Title       string `json:"title"`
			Category    string `json:"category"`
			Description string `json:"description"`
			City        string `json:"city"`
			PriceCents  int64  `json:"price_cents"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		title := strings.TrimSpace(body.Title)
		category := strings.TrimSpace(strings.ToLower(body.Category))
		if title == "" || category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Title and category are required"})
			return
		}
		if body.PriceCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Price cannot be negative"})
			return
		}

		city := strings.TrimSpace(body.City)
		if city == "" {
			city = user.City
		}
		listing := models.Listing{
			ProviderID:  uid,
			Title:       title,
			Category:    category,
			Description: strings.TrimSpace(body.Description),
			City:        city,
			PriceCents:  body.PriceCents,
			Active:      true,
		}
		if err := db.Create(&listing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create listing"})
			return
		}
		c.JSON(http.StatusCreated, listingJSON(&listing))
	}
}

// UpdateListing edits or deactivates an owned listing.
func UpdateListing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		id, _ := strconv.Atoi(c.Param("listing_id"))

		var listing models.Listing
		if err := db.Where("id = ? AND provider_id = ?", id, uid).First(&listing).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "listing not found"})
			return
		}

		var body struct {
			Title       *string `json:"title"`
			Category    *string `json:"category"`
			Description *string `json:"description"`
			City        *string `json:"city"`
			PriceCents  *int64  `json:"price_cents"`
			Active      *bool   `json:"active"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		if body.Title != nil && strings.TrimSpace(*body.Title) != "" {
			listing.Title = strings.TrimSpace(*body.Title)
		}
		if body.Category != nil && strings.TrimSpace(*body.Category) != "" {
			listing.Category = strings.TrimSpace(strings.ToLower(*body.Category))
		}
		if body.Description != nil {
			listing.Description = strings.TrimSpace(*body.Description)
		}
		if body.City != nil && strings.TrimSpace(*body.City) != "" {
			listing.City = strings.TrimSpace(*body.City)
		}
		if body.PriceCents != nil && *body.PriceCents >= 0 {
			listing.PriceCents = *body.PriceCents
		}
		if body.Active != nil {
			listing.Active = *body.Active
		}
		if err := db.Save(&listing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update listing"})
			return
		}
		c.JSON(http.StatusOK, listingJSON(&listing))
	}
}

func DeleteListing(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		id, _ := strconv.Atoi(c.Param("listing_id"))

		var listing models.Listing
		if err := db.Where("id = ? AND provider_id = ?", id, uid).First(&listing).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "listing not found"})
			return
		}
		if err := db.Delete(&listing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to delete listing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "listing deleted"})
	}
}

func listingJSON(l *models.Listing) gin.H {
	return gin.H{
		"id":          l.ID,
		"provider_id": l.ProviderID,
		"title":       l.Title,
		"category":    l.Category,
		"description": l.Description,
		"city":        l.City,
		"price_cents": l.PriceCents,
		"active":      l.Active,
		"created_at":  l.CreatedAt,
	}
}
