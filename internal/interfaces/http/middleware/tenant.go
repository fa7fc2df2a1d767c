package middleware

import (
	"strings"

	"github.com/dyehouse/backend/internal/infrastructure/logger"
	"github.com/dyehouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// DefaultTenantID is used when the request carries no X-Tenant-ID
	DefaultTenantID uuid.UUID
	// SkipPaths are served without a tenant (health checks)
	SkipPaths []string
	Logger    *zap.Logger
}

// Tenant resolves the tenant from X-Tenant-ID, falling back to the
// configured default. A malformed header is a 400.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if raw := strings.TrimSpace(c.GetHeader(TenantHeaderKey)); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil || parsed == uuid.Nil {
				log.Debug("rejected tenant header", zap.String("value", raw))
				c.AbortWithStatusJSON(dto.GetHTTPStatus("INVALID_TENANT"),
					dto.NewErrorResponse("INVALID_TENANT", "X-Tenant-ID must be a UUID", c.GetString(RequestIDKey)))
				return
			}
			tenantID = parsed
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by Tenant, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
