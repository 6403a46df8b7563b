package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mememuseum/backend/internal/handlers"
	"github.com/mememuseum/backend/internal/middleware"
	"github.com/mememuseum/backend/internal/models"
	"github.com/mememuseum/backend/internal/repositories"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Meme{},
		&models.Tag{},
		&models.Vote{},
		&models.Comment{},
		&models.FeaturedMeme{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	memeRepo := repositories.NewPostgresMemeRepository(db)
	tagRepo := repositories.NewPostgresTagRepository(db)
	voteRepo := repositories.NewPostgresVoteRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	featuredRepo := repositories.NewPostgresFeaturedMemeRepository(db)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public read routes (principal attached when a token is present) ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalJWTAuthMiddleware())

	// --- Protected routes (require JWT authentication) ---
	protected := e.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware())

	// Meme routes (feed, single meme, upload, meme of the day)
	memeHandler := handlers.NewMemeHandler(memeRepo, voteRepo, tagRepo, featuredRepo)
	memeHandler.RegisterMemeRoutes(public, protected)
	log.Println("Meme routes configured.")

	// Vote routes
	voteHandler := handlers.NewVoteHandler(voteRepo, memeRepo)
	voteHandler.RegisterVoteRoutes(protected)
	log.Println("Vote routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, memeRepo)
	commentHandler.RegisterCommentRoutes(public, protected)
	log.Println("Comment routes configured.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(protected)
	log.Println("User routes configured.")

	log.Println("All routes configured.")
}
