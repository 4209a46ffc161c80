package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort       string
	DatabaseType     string
	DatabasePath     string
	DatabaseURL      string
	MigrationsPath   string
	APIBaseURL       string
	SessionDuration  time.Duration
	AudioPath        string
	PracticeLanguage string
	AWSRegion        string
	SESFromEmail     string
	SESFromName      string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:       getEnv("PORT", "8080"),
		DatabaseType:     getEnv("DB_TYPE", "sqlite"),
		DatabasePath:     getEnv("DB_PATH", "./lingoclash.db"),
		DatabaseURL:      getEnv("DB_URL", ""),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "./migrations"),
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8000"),
		SessionDuration:  24 * time.Hour,
		AudioPath:        getEnv("AUDIO_PATH", "./static/audio"),
		PracticeLanguage: getEnv("PRACTICE_LANGUAGE", "de"),
		AWSRegion:        getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SESFromName:      getEnv("SES_FROM_NAME", "LingoClash"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
