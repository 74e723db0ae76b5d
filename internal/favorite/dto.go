// AngelaMos | 2026
// dto.go

package favorite

import (
	"time"
)

type ToggleRequest struct {
	ListingID string `json:"listing_id" validate:"required,uuid4"`
}

type ToggleResponse struct {
	ListingID  string `json:"listing_id"`
	IsFavorite bool   `json:"is_favorite"`
}

type ListingCardResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Price       float64  `json:"price"`
	City        string   `json:"city"`
	Province    string   `json:"province"`
	Status      string   `json:"status"`
	Images      []string `json:"images"`
	Surface     *int     `json:"surface,omitempty"`
	Rooms       *int     `json:"rooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
}

type FavoriteResponse struct {
	ID        string               `json:"id"`
	ListingID string               `json:"listing_id"`
	CreatedAt time.Time            `json:"created_at"`
	Listing   *ListingCardResponse `json:"listing"`
}

func ToFavoriteResponse(f *FavoriteWithListing) FavoriteResponse {
	resp := FavoriteResponse{
		ID:        f.ID,
		ListingID: f.ListingID,
		CreatedAt: f.CreatedAt,
	}

	if f.Listing != nil {
		images := []string(f.Listing.Images)
		if images == nil {
			images = []string{}
		}
		resp.Listing = &ListingCardResponse{
			ID:          f.Listing.ID,
			Title:       f.Listing.Title,
			Description: f.Listing.Description,
			Type:        f.Listing.Type,
			Price:       f.Listing.Price,
			City:        f.Listing.City,
			Province:    f.Listing.Province,
			Status:      f.Listing.Status,
			Images:      images,
			Surface:     f.Listing.Surface,
			Rooms:       f.Listing.Rooms,
			Bathrooms:   f.Listing.Bathrooms,
		}
	}

	return resp
}

func ToFavoriteResponseList(favorites []FavoriteWithListing) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(favorites))
	for i := range favorites {
		out = append(out, ToFavoriteResponse(&favorites[i]))
	}
	return out
}
