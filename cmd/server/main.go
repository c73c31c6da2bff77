package main

import (
	"context"                            // context package is needed for Redis operations
	"weight_tracker/internal/api"        // Custom package for API handlers
	"weight_tracker/internal/auth"       // Session registries
	"weight_tracker/internal/config"     // Custom package for configuration
	"weight_tracker/internal/db"         // GORM storage
	"weight_tracker/internal/metrics"    // Prometheus metrics
	"weight_tracker/internal/repository" // Storage interface and in-memory store
	"weight_tracker/internal/service"    // Record store

	"github.com/gin-gonic/gin"       // Gin web framework
	"github.com/jonboulle/clockwork" // Clock shared by store and sessions
	"github.com/redis/go-redis/v9"   // Redis client
	"github.com/sirupsen/logrus"     // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Setup storage
	var repo repository.Repository
	switch cfg.StoreDriver {
	case config.StoreMemory:
		repo = repository.NewMemory()
	case config.StoreSQLite:
		gdb, err := db.Open(db.MemoryDSN, log)
		if err != nil {
			log.Fatalf("failed to open DB: %v", err) // Fatal error if DB setup fails
		}
		dbRepo := db.NewRepository(gdb)
		defer dbRepo.Close()
		repo = dbRepo
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// Setup session registry
	clock := clockwork.NewRealClock()
	var sessions auth.SessionRegistry
	switch cfg.SessionBackend {
	case config.SessionsMemory:
		sessions = auth.NewMemorySessions(clock)
	case config.SessionsRedis:
		// Setup Redis client
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()

		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		sessions = auth.NewRedisSessions(redisClient, clock)
	default:
		log.Fatalf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	reg := metrics.NewRegistry() // Prometheus registry
	store := service.New(repo, sessions, service.Options{
		Clock:      clock,
		SessionTTL: cfg.SessionTTL,
		Logger:     log,
		Observer:   metrics.NewStoreMetrics(reg),
	})

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.RouterConfig{
		Store:          store,
		JWTSecret:      cfg.JWTSecret,
		Logger:         log,
		Registry:       reg,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		log.Fatalf("failed to set up router: %v", err)
	}

	log.WithFields(logrus.Fields{
		"port":     cfg.AppPort,
		"store":    cfg.StoreDriver,
		"sessions": cfg.SessionBackend,
	}).Info("Server running") // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
