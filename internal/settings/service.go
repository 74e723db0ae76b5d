// AngelaMos | 2026
// service.go

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casannunci/backend/internal/core"
)

const (
	cacheKey = "site_settings"
	cacheTTL = 5 * time.Minute
)

type Service struct {
	repo   Repository
	redis  *redis.Client
	logger *slog.Logger
}

func NewService(
	repo Repository,
	redisClient *redis.Client,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		redis:  redisClient,
		logger: logger,
	}
}

// Get serves the public settings, cache first. Cache failures fall through
// to the store; a site render never depends on redis.
func (s *Service) Get(ctx context.Context) (*SiteSettings, error) {
	if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var settings SiteSettings
		if err := json.Unmarshal(cached, &settings); err == nil {
			return &settings, nil
		}
	}

	settings, err := s.repo.Get(ctx)
	if errors.Is(err, core.ErrNotFound) {
		settings = defaultSettings()
	} else if err != nil {
		return nil, err
	}

	s.cache(ctx, settings)

	return settings, nil
}

// Update patches the singleton. Admin gate, upsert, cache invalidation.
func (s *Service) Update(
	ctx context.Context,
	identity core.Identity,
	req UpdateSettingsRequest,
) (*SiteSettings, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("update site settings: %w", core.ErrForbidden)
	}

	settings, err := s.repo.Get(ctx)
	if errors.Is(err, core.ErrNotFound) {
		settings = defaultSettings()
	} else if err != nil {
		return nil, err
	}

	applyUpdate(settings, req)

	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}

	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("invalidate settings cache", "error", err)
	}

	return settings, nil
}

func (s *Service) cache(ctx context.Context, settings *SiteSettings) {
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
		s.logger.Warn("cache settings", "error", err)
	}
}

func defaultSettings() *SiteSettings {
	return &SiteSettings{
		ID:              SingletonID,
		SiteName:        "CasAnnunci",
		SiteDescription: "Annunci immobiliari",
		PrimaryColor:    "#1e40af",
		SecondaryColor:  "#f59e0b",
		ContactEmail:    "info@casannunci.it",
	}
}

func applyUpdate(s *SiteSettings, req UpdateSettingsRequest) {
	if req.SiteName != nil {
		s.SiteName = *req.SiteName
	}
	if req.SiteDescription != nil {
		s.SiteDescription = *req.SiteDescription
	}
	if req.LogoURL != nil {
		s.LogoURL = req.LogoURL
	}
	if req.PrimaryColor != nil {
		s.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		s.SecondaryColor = *req.SecondaryColor
	}
	if req.ContactEmail != nil {
		s.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		s.ContactPhone = req.ContactPhone
	}
	if req.FacebookURL != nil {
		s.FacebookURL = req.FacebookURL
	}
	if req.InstagramURL != nil {
		s.InstagramURL = req.InstagramURL
	}
}
