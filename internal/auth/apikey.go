package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

const (
	apiKeyHeader   = "X-API-Key"
	platformKey    = "auth_platform"
	platformPrefix = "platform_key:"
)

// APIKeyMiddleware resolves the X-API-Key header to a platform name. The
// platform identity is server-determined: a missing or unknown key rejects
// intake outright, it is never defaulted from the payload.
type APIKeyMiddleware struct {
	platforms repository.PlatformRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAPIKeyMiddleware constructs middleware. cache may be nil, lookups then
// always hit the repository.
func NewAPIKeyMiddleware(platforms repository.PlatformRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *APIKeyMiddleware {
	return &APIKeyMiddleware{platforms: platforms, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Handle authenticates an intake request and stores the platform name.
func (m *APIKeyMiddleware) Handle(c *fiber.Ctx) error {
	apiKey := c.Get(apiKeyHeader)
	if apiKey == "" {
		return apperrors.NewUnauthorized("missing API key")
	}

	if name, ok := m.cachedName(c, apiKey); ok {
		c.Locals(platformKey, name)
		return c.Next()
	}

	platform, err := m.platforms.GetByAPIKey(c.Context(), apiKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid API key")
		}
		return apperrors.MapError(err)
	}

	m.cacheName(c, apiKey, platform.Name)
	c.Locals(platformKey, platform.Name)
	return c.Next()
}

func (m *APIKeyMiddleware) cachedName(c *fiber.Ctx, apiKey string) (string, bool) {
	if m.cache == nil {
		return "", false
	}
	name, err := m.cache.Get(c.Context(), platformPrefix+apiKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && m.logger != nil {
			m.logger.Warn("platform cache lookup failed", zap.Error(err))
		}
		return "", false
	}
	return name, true
}

func (m *APIKeyMiddleware) cacheName(c *fiber.Ctx, apiKey, name string) {
	if m.cache == nil || m.cacheTTL <= 0 {
		return
	}
	if err := m.cache.Set(c.Context(), platformPrefix+apiKey, name, m.cacheTTL).Err(); err != nil && m.logger != nil {
		m.logger.Warn("platform cache store failed", zap.Error(err))
	}
}

// PlatformFromContext retrieves the authenticated platform name.
func PlatformFromContext(c *fiber.Ctx) (string, bool) {
	name, ok := c.Locals(platformKey).(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// InvalidatePlatformKey drops a cached key, used when a platform is revoked.
func InvalidatePlatformKey(ctx context.Context, cache *redis.Client, apiKey string) {
	if cache == nil {
		return
	}
	_ = cache.Del(ctx, platformPrefix+apiKey).Err()
}
