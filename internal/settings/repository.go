// AngelaMos | 2026
// repository.go

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/casannunci/backend/internal/core"
)

type Repository interface {
	Get(ctx context.Context) (*SiteSettings, error)
	Update(ctx context.Context, s *SiteSettings) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const settingsColumns = `id, site_name, site_description, logo_url,
       primary_color, secondary_color, contact_email, contact_phone,
       facebook_url, instagram_url, created_at, updated_at`

func (r *repository) Get(ctx context.Context) (*SiteSettings, error) {
	query := `SELECT ` + settingsColumns + `
		FROM site_settings
		WHERE id = $1`

	var s SiteSettings
	err := r.db.GetContext(ctx, &s, query, SingletonID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get site settings: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}

	return &s, nil
}

// Update upserts the singleton so a fresh database works without a seed row.
func (r *repository) Update(ctx context.Context, s *SiteSettings) error {
	query := `
		INSERT INTO site_settings (
			id, site_name, site_description, logo_url, primary_color,
			secondary_color, contact_email, contact_phone,
			facebook_url, instagram_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (id) DO UPDATE SET
			site_name = EXCLUDED.site_name,
			site_description = EXCLUDED.site_description,
			logo_url = EXCLUDED.logo_url,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			facebook_url = EXCLUDED.facebook_url,
			instagram_url = EXCLUDED.instagram_url,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, s, query,
		SingletonID,
		s.SiteName,
		s.SiteDescription,
		s.LogoURL,
		s.PrimaryColor,
		s.SecondaryColor,
		s.ContactEmail,
		s.ContactPhone,
		s.FacebookURL,
		s.InstagramURL,
	)
	if err != nil {
		return fmt.Errorf("update site settings: %w", err)
	}

	return nil
}
