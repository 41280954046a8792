package routes

import (
	"net/http"

	"JasaKita/middleware"
	"JasaKita/pkg/hub"
	svc "JasaKita/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authRoutes "JasaKita/routes/auth"
	bookingRoutes "JasaKita/routes/booking"
	convRoutes "JasaKita/routes/conversation"
	listingRoutes "JasaKita/routes/listing"
	profileRoutes "JasaKita/routes/profile"
	uploadsRoutes "JasaKita/routes/uploads"
	websocketRoutes "JasaKita/routes/websocket"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, chat *svc.ChatService, h *hub.Hub, store *svc.ImageStore) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "JasaKita marketplace backend running"})
	})

	websocketRoutes.Register(r, h)
	authRoutes.RegisterPublic(r, db)
	listingRoutes.RegisterPublic(r, db)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected)
	profileRoutes.Register(protected, db)
	convRoutes.Register(protected, chat)
	listingRoutes.RegisterProtected(protected, db)
	bookingRoutes.Register(protected, db)
	uploadsRoutes.Register(r, protected, db, store)
}
