package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// SchoolContextKey is the key used to store school information in gin.Context
const (
	SchoolIDKey     = "school_id"
	SchoolHeaderKey = "X-School-ID"
)

// SchoolMiddlewareConfig holds configuration for school middleware
type SchoolMiddlewareConfig struct {
	// HeaderEnabled enables X-School-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SkipPaths are paths that don't require school context (e.g., health check)
	SkipPaths []string
	// Required determines if school context is mandatory
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultSchoolConfig returns default school middleware configuration
func DefaultSchoolConfig() SchoolMiddlewareConfig {
	return SchoolMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/api/v1/health"},
		Required:      true,
		Logger:        nil,
	}
}

// SchoolMiddleware extracts the school scope from the request.
// Extraction order: JWT claims > X-School-ID header
func SchoolMiddleware() gin.HandlerFunc {
	return SchoolMiddlewareWithConfig(DefaultSchoolConfig())
}

// SchoolMiddlewareWithConfig returns school middleware with custom configuration
func SchoolMiddlewareWithConfig(cfg SchoolMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		var schoolID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtSchoolID, exists := c.Get(JWTSchoolIDKey); exists {
				if sid, ok := jwtSchoolID.(string); ok && sid != "" {
					schoolID = sid
					extractionMethod = "jwt"
				}
			}
		}

		// Priority 2: X-School-ID header
		if schoolID == "" && cfg.HeaderEnabled {
			if headerSchoolID := c.GetHeader(SchoolHeaderKey); headerSchoolID != "" {
				schoolID = headerSchoolID
				extractionMethod = "header"
			}
		}

		// Validate school ID format if present
		if schoolID != "" {
			if _, err := uuid.Parse(schoolID); err != nil {
				respondUnauthorized(c, "Invalid school ID format")
				return
			}
		}

		// Check if school is required
		if schoolID == "" && cfg.Required {
			respondUnauthorized(c, "School identification required")
			return
		}

		// Set school information in context
		if schoolID != "" {
			c.Set(SchoolIDKey, schoolID)

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithSchoolID(ctx, log, schoolID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("School identified",
					zap.String("school_id", schoolID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetSchoolID retrieves the school ID from gin.Context
func GetSchoolID(c *gin.Context) string {
	if schoolID, exists := c.Get(SchoolIDKey); exists {
		if sid, ok := schoolID.(string); ok {
			return sid
		}
	}
	return ""
}

// GetSchoolUUID retrieves the school ID as UUID from gin.Context
func GetSchoolUUID(c *gin.Context) (uuid.UUID, error) {
	schoolID := GetSchoolID(c)
	if schoolID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(schoolID)
}

// MustGetSchoolUUID retrieves the school ID as UUID or panics if not found.
// Use this only in handlers behind the school middleware.
func MustGetSchoolUUID(c *gin.Context) uuid.UUID {
	schoolUUID, err := GetSchoolUUID(c)
	if err != nil || schoolUUID == uuid.Nil {
		panic("valid school_id not found in context")
	}
	return schoolUUID
}

// OptionalSchoolMiddleware creates middleware that doesn't require a school scope
func OptionalSchoolMiddleware() gin.HandlerFunc {
	cfg := DefaultSchoolConfig()
	cfg.Required = false
	return SchoolMiddlewareWithConfig(cfg)
}
