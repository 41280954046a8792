package controllers

import (
	"log"
	"net/http"

	"JasaKita/middleware"
	"JasaKita/models"
	"JasaKita/pkg/cache"
	svc "JasaKita/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UploadToken hands out a signed, short-lived token for the image upload.
func UploadToken(store *svc.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		c.JSON(http.StatusOK, store.IssueUploadToken(uid))
	}
}

// UploadProfileImage stores the posted image and points the user's profile
// at it; the previous image is removed best-effort.
func UploadProfileImage(db *gorm.DB, store *svc.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}

		token := c.PostForm("upload_token")
		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "image file is required"})
			return
		}
		defer file.Close()

		stored, err := store.SaveImage(uid, file, header, token)
		if err != nil {
			respondChatError(c, err, "failed to save image")
			return
		}

		user.ProfileImageURL = stored.PublicURL
		if err := db.Save(&user).Error; err != nil {
			// image is on disk but not referenced; clean it up
			if derr := store.DeleteImage(stored.FilePath); derr != nil {
				log.Printf("[images] cleanup orphaned image: %v", derr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update profile"})
			return
		}
		svc.InvalidateUser(cache.Default(), user.ID)

		c.JSON(http.StatusOK, stored)
	}
}
