package uploads

import (
	"JasaKita/controllers"
	"JasaKita/pkg/config"
	svc "JasaKita/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register serves stored images and registers the protected upload flow.
func Register(r *gin.Engine, g *gin.RouterGroup, db *gorm.DB, store *svc.ImageStore) {
	r.Static("/uploads/profiles", config.UploadDir)
	g.POST("/uploads/token", controllers.UploadToken(store))
	g.POST("/profile/image", controllers.UploadProfileImage(db, store))
}
