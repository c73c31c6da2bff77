package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"                       // Gin web framework
	"github.com/prometheus/client_golang/prometheus" // Metrics registry
	"github.com/sirupsen/logrus"                     // Logging library

	"weight_tracker/internal/metrics"    // HTTP metrics
	"weight_tracker/internal/middleware" // Session and logging middleware
	"weight_tracker/internal/service"    // Record store
)

// RouterConfig carries what the HTTP layer needs
type RouterConfig struct {
	Store          *service.RecordStore // Record store behind every route
	JWTSecret      string               // Token signing secret
	Logger         logrus.FieldLogger   // Request logger
	Registry       *prometheus.Registry // Served on /metrics, nil disables it
	TrustedProxies []string             // Forwarded header sources
}

// NewRouter wires the REST routes onto a fresh gin engine
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	r := gin.New() // Gin router instance
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Logger))
	if cfg.Registry != nil {
		r.Use(metrics.NewHTTPMetrics(cfg.Registry).Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Registry))) // Prometheus scrape endpoint
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rs := cfg.Store
	apiGroup := r.Group("/api")
	// Every API route sees the caller's session, if any; the store decides what it may do
	apiGroup.Use(middleware.SessionMiddleware(cfg.JWTSecret))

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", RegisterHandler(rs, cfg.JWTSecret)) // Registration endpoint
	authGroup.POST("/login", LoginHandler(rs, cfg.JWTSecret))       // Login endpoint
	authGroup.POST("/logout", LogoutHandler(rs))                    // Logout endpoint
	authGroup.GET("/user", CurrentUserHandler(rs))                  // Current user endpoint

	// Client routes
	clientGroup := apiGroup.Group("/clients")
	clientGroup.GET("", ListClientsHandler(rs))         // List clients endpoint
	clientGroup.POST("", AddClientHandler(rs))          // Add client endpoint
	clientGroup.GET("/:id", GetClientHandler(rs))       // Get client endpoint
	clientGroup.DELETE("/:id", DeleteClientHandler(rs)) // Delete client endpoint

	// Weight routes
	weightGroup := apiGroup.Group("/weight")
	weightGroup.GET("/client/:id", ListWeightHandler(rs)) // Client history endpoint
	weightGroup.POST("", AddWeightHandler(rs))            // Add entry endpoint
	weightGroup.PUT("/:id", UpdateWeightHandler(rs))      // Update entry endpoint
	weightGroup.DELETE("/:id", DeleteWeightHandler(rs))   // Delete entry endpoint

	return r, nil
}
