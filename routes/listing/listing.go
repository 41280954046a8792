package listing

import (
	"JasaKita/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterPublic registers browse/search routes; no auth required.
func RegisterPublic(r *gin.Engine, db *gorm.DB) {
	r.GET("/listings", controllers.SearchListings(db))
	r.GET("/listings/:listing_id", controllers.GetListing(db))
	r.GET("/listings/:listing_id/reviews", controllers.ListListingReviews(db))
}

// RegisterProtected registers the provider-side write routes.
func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/listings", controllers.CreateListing(db))
	g.PUT("/listings/:listing_id", controllers.UpdateListing(db))
	g.DELETE("/listings/:listing_id", controllers.DeleteListing(db))
}
