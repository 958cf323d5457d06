package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/video-vault/internal/api"
	"github.com/video-vault/internal/config"
	"github.com/video-vault/internal/models"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := models.NewDatabase(cfg.DBConnection, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is not set; all mutation requests will be rejected")
	}

	// Initialize server
	server := api.NewServer(cfg, db, logger)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := server.Start(cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
