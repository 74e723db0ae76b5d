// AngelaMos | 2026
// service_test.go

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casannunci/backend/internal/core"
)

type fakeRepository struct {
	settings *SiteSettings
}

func (f *fakeRepository) Get(_ context.Context) (*SiteSettings, error) {
	if f.settings == nil {
		return nil, fmt.Errorf("get site settings: %w", core.ErrNotFound)
	}
	out := *f.settings
	return &out, nil
}

func (f *fakeRepository) Update(_ context.Context, s *SiteSettings) error {
	now := time.Now()
	if f.settings == nil {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	stored := *s
	f.settings = &stored
	return nil
}

// deadRedis points at a closed port. The service treats cache errors as
// misses, so these tests double as coverage for the fall-through path.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func newTestService(repo *fakeRepository) *Service {
	return NewService(repo, deadRedis(), slog.New(slog.DiscardHandler))
}

func adminIdentity() core.Identity {
	return core.Identity{ID: "admin-1", Role: core.RoleAdmin}
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to defaults on empty store", func(t *testing.T) {
		svc := newTestService(&fakeRepository{})

		got, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "CasAnnunci", got.SiteName)
		assert.Equal(t, "#1e40af", got.PrimaryColor)
		assert.Equal(t, "info@casannunci.it", got.ContactEmail)
	})

	t.Run("serves the stored row", func(t *testing.T) {
		repo := &fakeRepository{settings: &SiteSettings{
			ID:           SingletonID,
			SiteName:     "Case di Mario",
			PrimaryColor: "#000000",
			ContactEmail: "mario@example.it",
		}}
		svc := newTestService(repo)

		got, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Case di Mario", got.SiteName)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("patches over defaults", func(t *testing.T) {
		repo := &fakeRepository{}
		svc := newTestService(repo)

		name := "Case di Mario"
		color := "#c0ffee"

		got, err := svc.Update(ctx, adminIdentity(), UpdateSettingsRequest{
			SiteName:     &name,
			PrimaryColor: &color,
		})
		require.NoError(t, err)
		assert.Equal(t, name, got.SiteName)
		assert.Equal(t, color, got.PrimaryColor)

		// Untouched fields keep their defaults.
		assert.Equal(t, "#f59e0b", got.SecondaryColor)
		require.NotNil(t, repo.settings)
		assert.Equal(t, name, repo.settings.SiteName)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		svc := newTestService(&fakeRepository{})

		_, err := svc.Update(ctx,
			core.Identity{ID: "u1", Role: core.RoleUtente},
			UpdateSettingsRequest{})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})
}
