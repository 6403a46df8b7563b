package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/mememuseum/backend/internal/router"
	"github.com/mememuseum/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
