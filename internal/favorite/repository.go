// AngelaMos | 2026
// repository.go

package favorite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/casannunci/backend/internal/core"
)

type Repository interface {
	Toggle(ctx context.Context, userID, listingID string) (bool, error)
	GetByID(ctx context.Context, id string) (*Favorite, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]FavoriteWithListing, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Toggle flips the favorite state for (user, listing) and reports the new
// state. ON CONFLICT DO NOTHING makes a double-click race resolve to one
// row; the unique constraint is the arbiter, not the service.
func (r *repository) Toggle(
	ctx context.Context,
	userID, listingID string,
) (bool, error) {
	insert := `
		INSERT INTO favorites (id, user_id, listing_id)
		VALUES (gen_random_uuid(), $1, $2)
		ON CONFLICT (user_id, listing_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, insert, userID, listingID)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return false, fmt.Errorf("toggle favorite: %w", core.ErrNotFound)
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	// Row already existed: this toggle removes it.
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`,
		userID, listingID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	return false, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Favorite, error) {
	query := `
		SELECT id, user_id, listing_id, created_at
		FROM favorites
		WHERE id = $1`

	var f Favorite
	err := r.db.GetContext(ctx, &f, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get favorite: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}

	return &f, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete favorite: %w", core.ErrNotFound)
	}

	return nil
}

type favoriteRow struct {
	Favorite
	LID          *string        `db:"l_id"`
	LTitle       *string        `db:"l_title"`
	LDescription *string        `db:"l_description"`
	LType        *string        `db:"l_type"`
	LPrice       *float64       `db:"l_price"`
	LCity        *string        `db:"l_city"`
	LProvince    *string        `db:"l_province"`
	LStatus      *string        `db:"l_status"`
	LImages      pq.StringArray `db:"l_images"`
	LSurface     *int           `db:"l_surface"`
	LRooms       *int           `db:"l_rooms"`
	LBathrooms   *int           `db:"l_bathrooms"`
}

// ListByUser returns the ledger with listing summaries. A favorite whose
// listing is gone comes back with a nil card, never an error.
func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]FavoriteWithListing, error) {
	query := `
		SELECT
			f.id, f.user_id, f.listing_id, f.created_at,
			l.id AS l_id, l.title AS l_title,
			l.description AS l_description, l.type AS l_type,
			l.price AS l_price, l.city AS l_city,
			l.province AS l_province, l.status AS l_status,
			l.images AS l_images, l.surface AS l_surface,
			l.rooms AS l_rooms, l.bathrooms AS l_bathrooms
		FROM favorites f
		LEFT JOIN listings l ON l.id = f.listing_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`

	var rows []favoriteRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	favorites := make([]FavoriteWithListing, 0, len(rows))
	for _, row := range rows {
		fav := FavoriteWithListing{Favorite: row.Favorite}

		if row.LID != nil {
			fav.Listing = &ListingCard{
				ID:          *row.LID,
				Title:       *row.LTitle,
				Description: *row.LDescription,
				Type:        *row.LType,
				Price:       *row.LPrice,
				City:        *row.LCity,
				Province:    *row.LProvince,
				Status:      *row.LStatus,
				Images:      row.LImages,
				Surface:     row.LSurface,
				Rooms:       row.LRooms,
				Bathrooms:   row.LBathrooms,
			}
		}

		favorites = append(favorites, fav)
	}

	return favorites, nil
}
