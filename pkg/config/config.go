package config

import (
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	// storage
	DatabaseDSN string // MySQL DSN; empty = use SQLite file
	DBFile      string
	RedisAddr   string // optional pub/sub bridge for the ws hub

	JWTSecret string
	Port      string

	// profile image uploads
	UploadDir     string
	UploadBaseURL string

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	UserConcurrencyLimit   int
	DuplicateWindowSeconds int
	UserCacheTTLSeconds    int
	UserCacheMaxItems      int
)

// loadAppEnv: only load .env outside production; in production everything
// must come from the host environment.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

func init() {
	loadAppEnv()

	// re-read APP_ENV so host env and .env agree
	AppEnv = os.Getenv("APP_ENV")
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		log.Printf("[config] APP_ENV %q not set to 'staging' or 'production', assuming staging", AppEnv)
		AppEnv = "staging"
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	DatabaseDSN = os.Getenv("DATABASE_DSN")
	DBFile = os.Getenv("DB_FILE")
	if DBFile == "" {
		DBFile = "app.db"
	}
	RedisAddr = os.Getenv("REDIS_ADDR")

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	UploadDir = os.Getenv("UPLOAD_DIR")
	if UploadDir == "" {
		UploadDir = "./uploads/profiles"
	}
	UploadBaseURL = os.Getenv("UPLOAD_BASE_URL")
	if UploadBaseURL == "" {
		UploadBaseURL = "http://127.0.0.1:" + Port + "/uploads/profiles"
	}

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserConcurrencyLimit = atoiOr(os.Getenv("USER_CONCURRENCY_LIMIT"), 2)
	DuplicateWindowSeconds = atoiOr(os.Getenv("DUPLICATE_WINDOW_SECONDS"), 45)
	UserCacheTTLSeconds = atoiOr(os.Getenv("USER_CACHE_TTL_SECONDS"), 300)
	UserCacheMaxItems = atoiOr(os.Getenv("USER_CACHE_MAX_ITEMS"), 500)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}
	if IsProduction && DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] MySQL=%v RedisAddr=%q DBFile=%s", DatabaseDSN != "", RedisAddr, DBFile)
	log.Printf("[config] RateLimit window=%ds capacity=%d userConc=%d dupWindow=%ds userCacheTTL=%ds userCacheMax=%d",
		RateLimitWindowSeconds, RateLimitCapacity, UserConcurrencyLimit, DuplicateWindowSeconds, UserCacheTTLSeconds, UserCacheMaxItems)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
