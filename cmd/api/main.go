package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pellicule/backend/internal/config"
	"github.com/pellicule/backend/internal/handlers"
	"github.com/pellicule/backend/internal/middleware"
	"github.com/pellicule/backend/internal/models"
	"github.com/pellicule/backend/internal/repository"
	"github.com/pellicule/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories and services
	mediaRepo := repository.NewMediaRepository(db)
	albumRepo := repository.NewAlbumRepository(db)

	storageService := services.NewStorageService(cfg)
	deriveService := services.NewDeriveService(cfg, storageService)
	albumService := services.NewAlbumService(albumRepo, mediaRepo, cfg)
	mediaService := services.NewMediaService(mediaRepo, albumService, storageService, deriveService, cfg)
	statsService := services.NewStatsService(cfg, storageService)

	// Create the favorites album if not exists
	if err := albumService.EnsureFavoriteAlbum(); err != nil {
		log.Fatalf("Failed to ensure favorites album: %v", err)
	}

	// Membership reconciliation: sweep orphaned album links on start, then
	// periodically. A crash between trash and membership cleanup leaves
	// stragglers; the sweep converges the catalog back.
	if cfg.ReconcileOnStartup {
		go func() {
			removed, err := albumService.ReconcileMemberships()
			if err != nil {
				log.Printf("Startup reconciliation error: %v", err)
			} else if removed > 0 {
				log.Printf("Startup reconciliation: removed %d orphaned memberships", removed)
			}
		}()
	}
	go func() {
		for {
			time.Sleep(cfg.ReconcileInterval)
			removed, err := albumService.ReconcileMemberships()
			if err != nil {
				log.Printf("Reconciliation error: %v", err)
			} else if removed > 0 {
				log.Printf("Reconciliation: removed %d orphaned memberships", removed)
			}
		}
	}()

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))
	router.Use(middleware.Metrics())

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService, cfg)
	albumHandler := handlers.NewAlbumHandler(albumService)
	storageHandler := handlers.NewStorageHandler(statsService)

	// Health check and metrics outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Static serving of originals and thumbnails
	router.Static("/media", cfg.MediaPath())
	router.Static("/thumbs", cfg.ThumbsPath())

	// Setup routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Media ingest with tighter rate limiting than the rest
		uploadGroup := api.Group("")
		uploadGroup.Use(middleware.UploadRateLimit(redisClient, cfg))
		{
			uploadGroup.POST("/media", mediaHandler.Upload)
		}

		// Media library
		api.GET("/media", mediaHandler.List)
		api.GET("/media/:id", mediaHandler.Get)
		api.GET("/media/:id/file", mediaHandler.Download)
		api.GET("/media/:id/thumb", mediaHandler.Thumb)
		api.PUT("/media/:id", mediaHandler.Update)
		api.PUT("/media/:id/favorite", albumHandler.SetFavorite)
		api.DELETE("/media/:id", mediaHandler.Trash)
		api.POST("/media/:id/restore", mediaHandler.Restore)
		api.DELETE("/media/:id/permanent", mediaHandler.DeletePermanently)

		// Trash
		api.GET("/trash", mediaHandler.GetTrash)
		api.DELETE("/trash", mediaHandler.EmptyTrash)

		// Albums
		api.GET("/albums", albumHandler.List)
		api.POST("/albums", albumHandler.Create)
		api.GET("/albums/:id", albumHandler.Get)
		api.PUT("/albums/:id", albumHandler.Update)
		api.DELETE("/albums/:id", albumHandler.Delete)
		api.GET("/albums/:id/media", albumHandler.GetMedia)
		api.POST("/albums/:id/media", albumHandler.AddMedia)
		api.DELETE("/albums/:id/media/:mediaId", albumHandler.RemoveMedia)

		// Storage stats
		api.GET("/storage/stats", storageHandler.GetStats)
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // large video uploads
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
