package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aimerfeng/PawPals/internal/config"
	apierrors "github.com/aimerfeng/PawPals/internal/errors"
	"github.com/aimerfeng/PawPals/internal/logging"
	"github.com/aimerfeng/PawPals/internal/middleware"
	"github.com/aimerfeng/PawPals/internal/monitoring"
	"github.com/aimerfeng/PawPals/internal/ratelimit"
	"github.com/aimerfeng/PawPals/internal/search"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the API server is built from
type Deps struct {
	Search  *search.Service
	Limiter *ratelimit.RateLimiter
	// Checks are reported by /health keyed by dependency name
	Checks map[string]HealthCheck
}

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	search           *search.Service
	limiter          *ratelimit.RateLimiter
	checks           map[string]HealthCheck
	jwtAuthenticator *middleware.JWTAuthenticator
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, deps Deps) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	srv := &APIServer{
		config:           cfg,
		router:           router,
		search:           deps.Search,
		limiter:          deps.Limiter,
		checks:           deps.Checks,
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	v1.Use(s.jwtAuthenticator.OptionalAuth())
	{
		// Search routes are rate limited per viewer
		searches := v1.Group("/search")
		searches.Use(ratelimit.Middleware(s.limiter))
		{
			searches.GET("", s.handleSearch)
			searches.GET("/list", s.handleSearchList)
			searches.GET("/map", s.handleSearchMap)
		}

		providers := v1.Group("/providers")
		{
			providers.GET("/:id", s.handleGetProvider)
			providers.GET("/:id/reviews", s.handleGetProviderReviews)
		}

		v1.GET("/jobs/:id", s.handleGetJob)
		v1.GET("/breeds", s.handleGetBreeds)
	}

	s.router.NoRoute(func(c *gin.Context) {
		respondError(c, apierrors.ErrNotFoundError)
	})
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	deps := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			deps[name] = "unhealthy"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      "api",
		"dependencies": deps,
	})
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	reqID := middleware.GetRequestIDFromContext(c)
	corrID := middleware.GetCorrelationIDFromContext(c)
	if corrID == "" {
		corrID = reqID
	}

	status := err.HTTPStatus
	if status == 0 {
		status = apierrors.GetHTTPStatusFromCode(err.Code)
	}
	c.JSON(status, apierrors.NewErrorResponse(
		err,
		reqID,
		corrID,
		c.Request.URL.Path,
		c.Request.Method,
	))
}
