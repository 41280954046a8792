package main

import (
	"log"
	"time"

	"JasaKita/middleware"
	"JasaKita/models"
	"JasaKita/pkg/cache"
	"JasaKita/pkg/config"
	"JasaKita/pkg/hub"
	svc "JasaKita/pkg/services"
	"JasaKita/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// config init via package init()

	db, err := openDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// auto-migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Listing{},
		&models.Booking{},
		&models.Review{},
	); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
		config.UserConcurrencyLimit,
	)
	middleware.SetDuplicateTTL(time.Duration(config.DuplicateWindowSeconds) * time.Second)
	cache.SetMaxItems(config.UserCacheMaxItems)

	// optional Redis bridge for multi-instance fan-out
	var rdb *redis.Client
	if config.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	}

	chat := svc.NewChatService(db, cache.Default(), time.Duration(config.UserCacheTTLSeconds)*time.Second)
	h := hub.New(chat, rdb)
	chat.SetPublisher(h.PublishMessage)

	store := svc.NewImageStore(config.UploadDir, config.UploadBaseURL, config.JWTSecret)

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, chat, h, store)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// openDB connects to MySQL when DATABASE_DSN is set, otherwise falls back
// to a local SQLite file for development.
func openDB() (*gorm.DB, error) {
	if config.DatabaseDSN != "" {
		return gorm.Open(mysql.Open(config.DatabaseDSN), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(config.DBFile), &gorm.Config{})
}
