package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SanderWeide/sneaker-engine-v3/internal/api/handlers"
	"github.com/SanderWeide/sneaker-engine-v3/internal/api/middleware"
	"github.com/SanderWeide/sneaker-engine-v3/internal/config"
	"github.com/SanderWeide/sneaker-engine-v3/internal/services"
	"github.com/SanderWeide/sneaker-engine-v3/internal/storage"
)

// SetupRouter configures and returns the main Gin engine. taskClient may be
// nil; the image routes then answer 503.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.TaskEnqueuer) *gin.Engine {
	// Initialize services needed by API handlers
	userService := services.NewUserService(db, rdb)
	sneakerService := services.NewSneakerService(db, cfg, rdb)
	propositionService := services.NewPropositionService(db)

	var s3StorageService storage.IS3Storage
	if cfg.AwsS3Bucket != "" {
		var err error
		s3StorageService, err = storage.NewS3Storage(cfg)
		if err != nil {
			log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
		}
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled.")
	}

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware(cfg.CorsAllowedOrigins))
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg)
	sneakerHandler := handlers.NewSneakerHandler(sneakerService, s3StorageService, taskClient, cfg)
	propositionHandler := handlers.NewPropositionHandler(propositionService, cfg)

	// Public routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to " + cfg.AppName})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)

		authed := authGroup.Group("/")
		authed.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authed.GET("/me", authHandler.Me)
			authed.DELETE("/me", authHandler.DeleteMe)
		}
	}

	// Everything under /api requires a valid token
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.AuthMiddleware(cfg.JwtSecret))
	{
		apiGroup.GET("/sneakers", sneakerHandler.ListSneakers)
		apiGroup.POST("/sneakers", sneakerHandler.CreateSneaker)
		apiGroup.GET("/sneakers/:id", sneakerHandler.GetSneaker)
		apiGroup.PATCH("/sneakers/:id", sneakerHandler.UpdateSneaker)
		apiGroup.DELETE("/sneakers/:id", sneakerHandler.DeleteSneaker)
		apiGroup.POST("/sneakers/:id/image-upload", sneakerHandler.ImageUpload)
		apiGroup.POST("/sneakers/:id/image-complete", sneakerHandler.ImageComplete)

		apiGroup.GET("/propositions", propositionHandler.ListPropositions)
		apiGroup.POST("/propositions", propositionHandler.CreateProposition)
		apiGroup.GET("/propositions/:id", propositionHandler.GetProposition)
		apiGroup.POST("/propositions/:id/accept", propositionHandler.AcceptProposition)
		apiGroup.POST("/propositions/:id/reject", propositionHandler.RejectProposition)
		apiGroup.DELETE("/propositions/:id", propositionHandler.CancelProposition)
	}

	return r
}
