package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Storage and session backends selectable through the environment
const (
	StoreMemory    = "memory" // Map-backed repository
	StoreSQLite    = "sqlite" // GORM over in-memory SQLite
	SessionsMemory = "memory" // Process-local session registry
	SessionsRedis  = "redis"  // Redis session registry
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	JWTSecret      string        // JWT secret key
	SessionTTL     time.Duration // Lifetime of a login
	StoreDriver    string        // memory or sqlite
	SessionBackend string        // memory or redis
	RedisAddr      string        // Redis server address
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	LogLevel       string        // Logrus level name
	IsProd         bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() *Config {
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttl, err := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour // Default session lifetime
	}
	return &Config{
		AppPort:        getEnv("APP_PORT", "8000"),                // Application port
		JWTSecret:      os.Getenv("JWT_SECRET"),                   // JWT secret key
		SessionTTL:     ttl,                                       // Lifetime of a login
		StoreDriver:    getEnv("STORE_DRIVER", StoreMemory),       // Repository backend
		SessionBackend: getEnv("SESSION_BACKEND", SessionsMemory), // Session registry backend
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),    // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                   // Redis password
		RedisDB:        redisDB,                                   // Redis database number
		LogLevel:       getEnv("LOG_LEVEL", "info"),               // Logrus level
		IsProd:         os.Getenv("IS_PROD") == "true",            // Is production environment
	}
}

// getEnv returns the variable's value or def when unset or empty
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
