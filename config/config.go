package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the visibility wizard service
type Config struct {
	// Server
	Host string
	Port string

	// Visibility backend API
	VisibilityAPIURL string
	RequestTimeout   time.Duration

	// Database (free-scan gate)
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Gate backend: "mysql" or "memory"
	GateBackend string

	// Wizard behavior
	MaxCompetitors     int
	PromptsPerCategory int
	RequireEmail       bool

	// Rate limiting
	RateLimitPerMinute int

	// CORS
	AllowedOrigins string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8080"),

		VisibilityAPIURL: getEnv("VISIBILITY_API_URL", "http://localhost:8000"),
		RequestTimeout:   getDurationEnv("REQUEST_TIMEOUT", 60*time.Second),

		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "visibility"),

		GateBackend: getEnv("GATE_BACKEND", "memory"),

		MaxCompetitors:     getIntEnv("MAX_COMPETITORS", 5),
		PromptsPerCategory: getIntEnv("PROMPTS_PER_CATEGORY", 3),
		RequireEmail:       getBoolEnv("REQUIRE_EMAIL", false),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 10),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
