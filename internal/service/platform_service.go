package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/helpdesk-central/ticket-hub/internal/auth"
	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// PlatformService manages intake credentials for external platforms. All
// operations are administrative.
type PlatformService struct {
	platforms repository.PlatformRepository
	cache     *redis.Client
}

// NewPlatformService constructs the service. cache may be nil.
func NewPlatformService(platforms repository.PlatformRepository, cache *redis.Client) *PlatformService {
	return &PlatformService{platforms: platforms, cache: cache}
}

// RegisterPlatform mints an API key for a new platform. The key is returned
// once here; tickets later record only the platform name.
func (s *PlatformService) RegisterPlatform(ctx context.Context, actor domain.Principal, name string) (*domain.Platform, error) {
	if !actor.Privileged {
		return nil, apperrors.NewForbidden("administrator access required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("platform name required", map[string]any{"name": "this field is required"})
	}

	platform := &domain.Platform{
		Name:   name,
		APIKey: strings.ReplaceAll(uuid.NewString(), "-", ""),
		Active: true,
	}
	if err := s.platforms.Create(ctx, platform); err != nil {
		return nil, apperrors.MapError(err)
	}
	return platform, nil
}

// ListPlatforms returns registered platforms.
func (s *PlatformService) ListPlatforms(ctx context.Context, actor domain.Principal) ([]domain.Platform, error) {
	if !actor.Privileged {
		return nil, apperrors.NewForbidden("administrator access required")
	}
	platforms, err := s.platforms.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return platforms, nil
}

// RevokePlatform removes a platform and evicts its cached key so intake
// rejections take effect immediately.
func (s *PlatformService) RevokePlatform(ctx context.Context, actor domain.Principal, platformID int64) error {
	if !actor.Privileged {
		return apperrors.NewForbidden("administrator access required")
	}
	platforms, err := s.platforms.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	var apiKey string
	for _, p := range platforms {
		if p.ID == platformID {
			apiKey = p.APIKey
			break
		}
	}
	if err := s.platforms.Delete(ctx, platformID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("platform", map[string]any{"platform_id": platformID})
		}
		return apperrors.MapError(err)
	}
	if apiKey != "" {
		auth.InvalidatePlatformKey(ctx, s.cache, apiKey)
	}
	return nil
}
