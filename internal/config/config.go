package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string // "sqlite" | "postgres"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Storage layout. Media, thumbs and tmp directories all live under DataPath.
	DataPath string

	// Uploads
	UploadMaxFileSize int64
	UploadMaxFiles    int
	AllowedExtensions []string
	FingerprintMode   string // "sha256" | "name-size"

	// Albums
	FavoriteAlbumID uint

	// Previews
	ThumbnailMaxSize int
	ThumbnailQuality int
	FFmpegPath       string
	FFprobePath      string
	ProbeTimeout     time.Duration

	// Membership reconciliation
	ReconcileInterval  time.Duration
	ReconcileOnStartup bool

	// Security
	RateLimitRequests       int
	RateLimitDuration       time.Duration
	UploadRateLimitRequests int
	UploadRateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
}

func New() *Config {
	dataPath := getEnv("DATA_PATH", "./data")

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pellicule"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "pellicule_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", filepath.Join(dataPath, "db", "pellicule.db")),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Storage
		DataPath: dataPath,

		// Uploads
		UploadMaxFileSize: getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 50*1024*1024),
		UploadMaxFiles:    getEnvAsInt("UPLOAD_MAX_FILES", 10),
		AllowedExtensions: getEnvAsSlice("ALLOWED_EXTENSIONS", []string{
			"jpg", "jpeg", "png", "gif", "webp", "mp4", "webm", "mov", "avi", "mkv",
		}),
		FingerprintMode: getEnv("FINGERPRINT_MODE", "sha256"),

		// Albums
		FavoriteAlbumID: uint(getEnvAsInt("FAVORITE_ALBUM_ID", 1)),

		// Previews
		ThumbnailMaxSize: getEnvAsInt("THUMBNAIL_MAX_SIZE", 300),
		ThumbnailQuality: getEnvAsInt("THUMBNAIL_QUALITY", 80),
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:      getEnv("FFPROBE_PATH", "ffprobe"),
		ProbeTimeout:     getEnvAsDuration("PROBE_TIMEOUT", "15s"),

		// Membership reconciliation
		ReconcileInterval:  getEnvAsDuration("RECONCILE_INTERVAL", "1h"),
		ReconcileOnStartup: getEnv("RECONCILE_ON_STARTUP", "true") == "true",

		// Security
		RateLimitRequests:       getEnvAsInt("RATE_LIMIT_REQUESTS", 300),
		RateLimitDuration:       getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		UploadRateLimitRequests: getEnvAsInt("UPLOAD_RATE_LIMIT_REQUESTS", 30),
		UploadRateLimitDuration: getEnvAsDuration("UPLOAD_RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// MediaPath is the directory holding original media files.
func (c *Config) MediaPath() string { return filepath.Join(c.DataPath, "media") }

// ThumbsPath is the directory holding generated thumbnails.
func (c *Config) ThumbsPath() string { return filepath.Join(c.DataPath, "thumbs") }

// TmpPath is the staging directory for in-flight uploads.
func (c *Config) TmpPath() string { return filepath.Join(c.DataPath, "tmp") }

// ExtensionAllowed reports whether ext (with or without the leading dot) is accepted.
func (c *Config) ExtensionAllowed(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, allowed := range c.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
