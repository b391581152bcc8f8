package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	MongoURI string
	MongoDB  string

	JWTSecret      string
	JWTExpireHours int
	JWTIssuer      string

	FrontendURL string

	// RedisURL empty keeps the leaderboard cache in process.
	RedisURL            string
	LeaderboardCacheTTL time.Duration

	AllowAdminSignup bool
	AuthRateLimit    int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "mangrovewatch"),
		JWTSecret:           getEnv("JWT_SECRET", "secret"),
		JWTExpireHours:      getEnvInt("JWT_EXPIRE_HOURS", 24),
		JWTIssuer:           getEnv("JWT_ISSUER", "mangrovewatch-api"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:            getEnv("REDIS_URL", ""),
		LeaderboardCacheTTL: getEnvDuration("LEADERBOARD_CACHE_TTL", 5*time.Minute),
		AllowAdminSignup:    getEnvBool("ALLOW_ADMIN_SIGNUP", false),
		AuthRateLimit:       getEnvInt("AUTH_RATE_LIMIT", 20),
	}
}

// IsProduction reports whether the API runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("Invalid boolean for %s: %q, using %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
		log.Printf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
	}
	return defaultValue
}
