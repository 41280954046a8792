package controllers

import (
	"net/http"
	"strings"

	"JasaKita/middleware"
	"JasaKita/models"
	"JasaKita/pkg/cache"
	svc "JasaKita/pkg/services"
	utils "JasaKita/pkg/utills"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Profile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)

		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}

		if c.Request.Method == http.MethodGet {
			c.JSON(http.StatusOK, gin.H{
				"id":                user.ID,
				"email":             user.Email,
				"username":          user.Username,
				"display_name":      user.Name(),
				"role":              user.Role,
				"address":           user.Address,
				"city":              user.City,
				"profile_image_url": user.ProfileImageURL,
			})
			return
		}

		// PUT
		var body struct {
			Email       string `json:"email"`
			Username    string `json:"username"`
			DisplayName string `json:"display_name"`
			Address     string `json:"address"`
			City        string `json:"city"`
			Password    string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		newEmail := strings.TrimSpace(strings.ToLower(body.Email))
		if newEmail == "" {
			newEmail = user.Email
		}
		newUsername := strings.TrimSpace(body.Username)
		if newUsername == "" {
			newUsername = user.Username
		}

		// check email uniqueness
		if newEmail != user.Email {
			var t models.User
			if err := db.Where("email = ?", newEmail).First(&t).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"msg": "Email already exists"})
				return
			}
		}
		// check username uniqueness
		if newUsername != user.Username {
			var t models.User
			if err := db.Where("username = ?", newUsername).First(&t).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"msg": "Username already exists"})
				return
			}
		}

		user.Email = newEmail
		user.Username = newUsername
		if s := strings.TrimSpace(body.DisplayName); s != "" {
			user.DisplayName = s
		}
		if s := strings.TrimSpace(body.Address); s != "" {
			user.Address = s
		}
		if s := strings.TrimSpace(body.City); s != "" {
			user.City = s
		}
		if body.Password != "" {
			if !utils.HasLetter(body.Password) || !utils.HasNumber(body.Password) {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "New password must contain at least one letter and one number"})
				return
			}
			if err := user.SetPassword(body.Password); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to set password"})
				return
			}
		}
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update profile"})
			return
		}

		// drop the cached identity summary used on messaging paths
		svc.InvalidateUser(cache.Default(), user.ID)

		c.JSON(http.StatusOK, gin.H{"msg": "Profile updated successfully"})
	}
}
