// AngelaMos | 2026
// service.go

package favorite

import (
	"context"
	"fmt"

	"github.com/casannunci/backend/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Toggle(
	ctx context.Context,
	identity core.Identity,
	listingID string,
) (bool, error) {
	if identity.IsAnonymous() {
		return false, fmt.Errorf("toggle favorite: %w", core.ErrUnauthorized)
	}

	return s.repo.Toggle(ctx, identity.ID, listingID)
}

// Remove deletes a ledger row by its own id. Only the row's owner may
// remove it.
func (s *Service) Remove(
	ctx context.Context,
	identity core.Identity,
	favoriteID string,
) error {
	if identity.IsAnonymous() {
		return fmt.Errorf("remove favorite: %w", core.ErrUnauthorized)
	}

	f, err := s.repo.GetByID(ctx, favoriteID)
	if err != nil {
		return err
	}

	if f.UserID != identity.ID {
		return fmt.Errorf(
			"remove favorite: not the owner: %w",
			core.ErrForbidden,
		)
	}

	return s.repo.Delete(ctx, favoriteID)
}

func (s *Service) ListMine(
	ctx context.Context,
	identity core.Identity,
) ([]FavoriteWithListing, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("list favorites: %w", core.ErrUnauthorized)
	}

	return s.repo.ListByUser(ctx, identity.ID)
}
