package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pellicule/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles all API traffic per client IP.
func RateLimiter(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return rateLimit(redisClient, "rate_limit", cfg.RateLimitRequests, cfg.RateLimitDuration)
}

// UploadRateLimit throttles ingest endpoints more tightly than the global
// limiter; uploads are the expensive path (staging, hashing, ffmpeg).
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return rateLimit(redisClient, "upload_rate_limit", cfg.UploadRateLimitRequests, cfg.UploadRateLimitDuration)
}
