package logging

import (
	"io"
	"os"
	"time"

	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger based on configuration
func Setup(cfg *config.LoggingConfig, env string) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure time format
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Configure output based on format and environment
	var output io.Writer
	if cfg.Format == "json" || env == "production" {
		output = os.Stdout
	} else {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	// Set global logger
	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", "pawpals").
		Logger()
}

// NewLogger creates a new logger with additional context
func NewLogger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// RequestLogger is a Gin middleware for structured request logging
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Get request ID
		requestID := c.GetString("request_id")

		// Build log event
		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		} else if c.Writer.Status() >= 400 {
			event = log.Warn()
		}

		// Log request details
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", raw).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("body_size", c.Writer.Size()).
			Msg("HTTP request")
	}
}

// SearchLogEntry represents a structured log entry for a completed search
type SearchLogEntry struct {
	RequestID      string        `json:"request_id"`
	Session        string        `json:"session,omitempty"`
	Viewer         string        `json:"viewer,omitempty"`
	ServiceType    string        `json:"service_type,omitempty"`
	ResultType     string        `json:"result_type"`
	Breeds         int           `json:"breeds"`
	LocationSource string        `json:"location_source"`
	DistanceMiles  float64       `json:"distance_miles"`
	Jobs           int           `json:"jobs"`
	Providers      int           `json:"providers"`
	Results        int           `json:"results"`
	Latency        time.Duration `json:"latency_ms"`
	Status         string        `json:"status"`
	Error          string        `json:"error,omitempty"`
}

// LogSearch logs a search with structured data
func LogSearch(entry *SearchLogEntry) {
	event := log.Info()
	switch entry.Status {
	case "error":
		event = log.Error()
	case "superseded":
		event = log.Debug()
	}

	event.
		Str("request_id", entry.RequestID).
		Str("session", entry.Session).
		Str("viewer", entry.Viewer).
		Str("service_type", entry.ServiceType).
		Str("result_type", entry.ResultType).
		Int("breeds", entry.Breeds).
		Str("location_source", entry.LocationSource).
		Float64("distance_miles", entry.DistanceMiles).
		Int("jobs", entry.Jobs).
		Int("providers", entry.Providers).
		Int("results", entry.Results).
		Dur("latency", entry.Latency).
		Str("status", entry.Status).
		Str("error", entry.Error).
		Msg("Search")
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, userID, clientIP, details string) {
	log.Warn().
		Str("event_type", eventType).
		Str("user_id", userID).
		Str("client_ip", clientIP).
		Str("details", details).
		Msg("Security event")
}

// LogError logs an error with context
func LogError(err error, requestID, component, operation string) {
	log.Error().
		Err(err).
		Str("request_id", requestID).
		Str("component", component).
		Str("operation", operation).
		Msg("Error occurred")
}

// SanitizeForLog removes sensitive data from strings for logging
func SanitizeForLog(data string, maxLen int) string {
	if len(data) > maxLen {
		return data[:maxLen] + "...[truncated]"
	}
	return data
}
