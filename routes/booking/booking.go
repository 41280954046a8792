package booking

import (
	"JasaKita/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers booking and review routes (protected).
func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/bookings", controllers.CreateBooking(db))
	g.GET("/bookings", controllers.ListBookings(db))
	g.PUT("/bookings/:booking_id/status", controllers.UpdateBookingStatus(db))
	g.POST("/reviews", controllers.CreateReview(db))
}
