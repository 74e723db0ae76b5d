// AngelaMos | 2026
// entity.go

package favorite

import (
	"time"

	"github.com/lib/pq"
)

type Favorite struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ListingID string    `db:"listing_id"`
	CreatedAt time.Time `db:"created_at"`
}

// ListingCard is the listing summary joined onto a favorite for the
// dashboard. All fields come from the LEFT JOIN and are nil-safe through
// the row scan.
type ListingCard struct {
	ID          string         `db:"l_id"`
	Title       string         `db:"l_title"`
	Description string         `db:"l_description"`
	Type        string         `db:"l_type"`
	Price       float64        `db:"l_price"`
	City        string         `db:"l_city"`
	Province    string         `db:"l_province"`
	Status      string         `db:"l_status"`
	Images      pq.StringArray `db:"l_images"`
	Surface     *int           `db:"l_surface"`
	Rooms       *int           `db:"l_rooms"`
	Bathrooms   *int           `db:"l_bathrooms"`
}

// FavoriteWithListing pairs the ledger row with its listing. Listing is nil
// when the listing has been removed; the favorite survives as "no longer
// available".
type FavoriteWithListing struct {
	Favorite
	Listing *ListingCard
}
