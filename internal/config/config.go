package config

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrMissingConnection = errors.New("database connection string is required")
)

// Config holds the application configuration
type Config struct {
	DBConnection  string
	AdminPassword string
	YouTubeAPIKey string
	Port          string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Get SQLite Cloud connection string from environment
	connStr := os.Getenv("DB_CONNECTION")
	if connStr == "" {
		return nil, fmt.Errorf("DB_CONNECTION environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		DBConnection: connStr,
		// ADMIN_PASSWORD may be unset; mutations fail closed in that case.
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		// YOUTUBE_API_KEY is optional; the lookup endpoint stays disabled
		// without it.
		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		Port:          port,
	}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DBConnection == "" {
		return fmt.Errorf("%w: DB_CONNECTION environment variable is not set", ErrMissingConnection)
	}
	return nil
}
