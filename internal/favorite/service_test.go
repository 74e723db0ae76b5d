// AngelaMos | 2026
// service_test.go

package favorite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casannunci/backend/internal/core"
)

type fakeRepository struct {
	favorites map[string]*Favorite
	listings  map[string]*ListingCard
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		favorites: make(map[string]*Favorite),
		listings:  make(map[string]*ListingCard),
	}
}

func (f *fakeRepository) Toggle(
	_ context.Context,
	userID, listingID string,
) (bool, error) {
	if _, ok := f.listings[listingID]; !ok {
		return false, fmt.Errorf("toggle favorite: %w", core.ErrNotFound)
	}
	for id, fav := range f.favorites {
		if fav.UserID == userID && fav.ListingID == listingID {
			delete(f.favorites, id)
			return false, nil
		}
	}
	id := uuid.New().String()
	f.favorites[id] = &Favorite{
		ID:        id,
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (f *fakeRepository) GetByID(
	_ context.Context,
	id string,
) (*Favorite, error) {
	fav, ok := f.favorites[id]
	if !ok {
		return nil, fmt.Errorf("get favorite: %w", core.ErrNotFound)
	}
	out := *fav
	return &out, nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.favorites[id]; !ok {
		return fmt.Errorf("delete favorite: %w", core.ErrNotFound)
	}
	delete(f.favorites, id)
	return nil
}

func (f *fakeRepository) ListByUser(
	_ context.Context,
	userID string,
) ([]FavoriteWithListing, error) {
	var out []FavoriteWithListing
	for _, fav := range f.favorites {
		if fav.UserID != userID {
			continue
		}
		entry := FavoriteWithListing{Favorite: *fav}
		if card, ok := f.listings[fav.ListingID]; ok {
			c := *card
			entry.Listing = &c
		}
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeRepository) addListing(title string) string {
	id := uuid.New().String()
	f.listings[id] = &ListingCard{
		ID:       id,
		Title:    title,
		Type:     "vendita",
		Price:    250000,
		City:     "Bologna",
		Province: "Bologna",
		Status:   "pubblicato",
	}
	return id
}

func activeUser() core.Identity {
	return core.Identity{
		ID:     uuid.New().String(),
		Email:  "anna@example.it",
		Role:   core.RoleUtente,
		Status: core.StatusAttivo,
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("first toggle saves, second removes", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		caller := activeUser()
		listingID := repo.addListing("Bilocale in Bolognina")

		saved, err := svc.Toggle(ctx, caller, listingID)
		require.NoError(t, err)
		assert.True(t, saved)
		assert.Len(t, repo.favorites, 1)

		saved, err = svc.Toggle(ctx, caller, listingID)
		require.NoError(t, err)
		assert.False(t, saved)
		assert.Empty(t, repo.favorites)
	})

	t.Run("unknown listing", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)

		_, err := svc.Toggle(ctx, activeUser(), uuid.New().String())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		listingID := repo.addListing("Bilocale in Bolognina")

		_, err := svc.Toggle(ctx, core.Identity{}, listingID)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("two users favorite independently", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		listingID := repo.addListing("Bilocale in Bolognina")

		_, err := svc.Toggle(ctx, activeUser(), listingID)
		require.NoError(t, err)
		_, err = svc.Toggle(ctx, activeUser(), listingID)
		require.NoError(t, err)

		assert.Len(t, repo.favorites, 2)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("owner removes own row", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		caller := activeUser()
		listingID := repo.addListing("Villetta a schiera")

		_, err := svc.Toggle(ctx, caller, listingID)
		require.NoError(t, err)

		var favID string
		for id := range repo.favorites {
			favID = id
		}

		require.NoError(t, svc.Remove(ctx, caller, favID))
		assert.Empty(t, repo.favorites)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		listingID := repo.addListing("Villetta a schiera")

		_, err := svc.Toggle(ctx, activeUser(), listingID)
		require.NoError(t, err)

		var favID string
		for id := range repo.favorites {
			favID = id
		}

		err = svc.Remove(ctx, activeUser(), favID)
		assert.ErrorIs(t, err, core.ErrForbidden)
		assert.Len(t, repo.favorites, 1)
	})

	t.Run("unknown favorite", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)

		err := svc.Remove(ctx, activeUser(), uuid.New().String())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepository()
	svc := NewService(repo)
	caller := activeUser()

	kept := repo.addListing("Attico con terrazzo")
	gone := repo.addListing("Monolocale da demolire")

	_, err := svc.Toggle(ctx, caller, kept)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, caller, gone)
	require.NoError(t, err)

	// The listing disappears but the ledger row survives.
	delete(repo.listings, gone)

	favorites, err := svc.ListMine(ctx, caller)
	require.NoError(t, err)
	require.Len(t, favorites, 2)

	byListing := make(map[string]*ListingCard, len(favorites))
	for _, f := range favorites {
		byListing[f.ListingID] = f.Listing
	}
	require.NotNil(t, byListing[kept])
	assert.Equal(t, "Attico con terrazzo", byListing[kept].Title)
	assert.Nil(t, byListing[gone])

	_, err = svc.ListMine(ctx, core.Identity{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
