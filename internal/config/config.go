package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string // sqlite, postgres or mysql
	DatabasePath   string // sqlite only
	DatabaseURL    string // postgres/mysql
	MigrationsPath string

	SessionDuration time.Duration

	InviteCodeLength   int
	InviteCodeAttempts int

	// AWS SES notification settings; email is disabled when SESFromEmail is empty
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Social sign-in
	GoogleClientID     string
	GoogleClientSecret string
	AppleClientID      string
	OAuthRedirectURL   string

	Debug bool
}

// Load reads configuration from the environment, with an optional .env file
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./antgiftbox.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		SessionDuration: getDurationEnv("SESSION_DURATION", 24*time.Hour),

		InviteCodeLength:   getIntEnv("INVITE_CODE_LENGTH", 6),
		InviteCodeAttempts: getIntEnv("INVITE_CODE_ATTEMPTS", 20),

		AWSRegion:    getEnv("AWS_REGION", "ap-northeast-2"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "개미의 선물 상자"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		AppleClientID:      getEnv("APPLE_CLIENT_ID", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),

		Debug: getEnv("DEBUG", "") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default", key, value)
		return defaultValue
	}
	return n
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default", key, value)
		return defaultValue
	}
	return d
}
