// AngelaMos | 2026
// dto.go

package listing

import (
	"time"
)

type CreateListingRequest struct {
	Title       string   `json:"title"        validate:"required,min=3,max=200"`
	Description string   `json:"description"  validate:"required,min=10,max=5000"`
	Type        string   `json:"type"         validate:"required,oneof=vendita affitto_breve affitto_lungo cercasi"`
	Category    string   `json:"category"     validate:"required,oneof=appartamento villa terreno commerciale altro"`
	Price       float64  `json:"price"        validate:"required,gt=0"`
	Location    string   `json:"location"     validate:"required,max=200"`
	City        string   `json:"city"         validate:"required,max=100"`
	Province    string   `json:"province"     validate:"required"`
	Address     *string  `json:"address"      validate:"omitempty,max=300"`
	Images      []string `json:"images"       validate:"omitempty,dive,url"`
	Surface     *int     `json:"surface"      validate:"omitempty,gt=0"`
	Rooms       *int     `json:"rooms"        validate:"omitempty,gt=0"`
	Bathrooms   *int     `json:"bathrooms"    validate:"omitempty,gt=0"`
	Floor       *int     `json:"floor"        validate:"omitempty,gte=-5,lte=200"`
	EnergyClass *string  `json:"energy_class"`
	Features    []string `json:"features"`
	Status      string   `json:"status"       validate:"omitempty,oneof=bozza in_attesa"`
}

// UpdateListingRequest carries only the fields present in the request body.
// Status is applied only when explicitly included.
type UpdateListingRequest struct {
	Title       *string   `json:"title"        validate:"omitempty,min=3,max=200"`
	Description *string   `json:"description"  validate:"omitempty,min=10,max=5000"`
	Type        *string   `json:"type"         validate:"omitempty,oneof=vendita affitto_breve affitto_lungo cercasi"`
	Category    *string   `json:"category"     validate:"omitempty,oneof=appartamento villa terreno commerciale altro"`
	Price       *float64  `json:"price"        validate:"omitempty,gt=0"`
	Location    *string   `json:"location"     validate:"omitempty,max=200"`
	City        *string   `json:"city"         validate:"omitempty,max=100"`
	Province    *string   `json:"province"`
	Address     *string   `json:"address"      validate:"omitempty,max=300"`
	Images      *[]string `json:"images"       validate:"omitempty,dive,url"`
	Surface     *int      `json:"surface"      validate:"omitempty,gt=0"`
	Rooms       *int      `json:"rooms"        validate:"omitempty,gt=0"`
	Bathrooms   *int      `json:"bathrooms"    validate:"omitempty,gt=0"`
	Floor       *int      `json:"floor"        validate:"omitempty,gte=-5,lte=200"`
	EnergyClass *string   `json:"energy_class"`
	Features    *[]string `json:"features"`
	Status      *string   `json:"status"       validate:"omitempty,oneof=bozza in_attesa pubblicato scaduto rifiutato"`
}

type RejectListingRequest struct {
	Note string `json:"note" validate:"omitempty,max=1000"`
}

type ListingResponse struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Location    string     `json:"location"`
	City        string     `json:"city"`
	Province    string     `json:"province"`
	Address     *string    `json:"address,omitempty"`
	Images      []string   `json:"images"`
	Surface     *int       `json:"surface,omitempty"`
	Rooms       *int       `json:"rooms,omitempty"`
	Bathrooms   *int       `json:"bathrooms,omitempty"`
	Floor       *int       `json:"floor,omitempty"`
	EnergyClass *string    `json:"energy_class,omitempty"`
	Features    []string   `json:"features"`
	Status      string     `json:"status"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func ToListingResponse(l *Listing) ListingResponse {
	images := []string(l.Images)
	if images == nil {
		images = []string{}
	}
	features := []string(l.Features)
	if features == nil {
		features = []string{}
	}

	return ListingResponse{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Type:        l.Type,
		Category:    l.Category,
		Price:       l.Price,
		Location:    l.Location,
		City:        l.City,
		Province:    l.Province,
		Address:     l.Address,
		Images:      images,
		Surface:     l.Surface,
		Rooms:       l.Rooms,
		Bathrooms:   l.Bathrooms,
		Floor:       l.Floor,
		EnergyClass: l.EnergyClass,
		Features:    features,
		Status:      l.Status,
		Views:       l.Views,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		PublishedAt: l.PublishedAt,
		ExpiresAt:   l.ExpiresAt,
	}
}

func ToListingResponseList(listings []Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToListingResponse(&listings[i]))
	}
	return out
}

// ListParams is the filter set for listing queries. All filters are
// conjunctive. Status and OwnerID are set by the service according to who is
// asking, never directly from the request.
type ListParams struct {
	Page     int
	PageSize int

	Search   string
	Type     string
	Category string
	City     string
	Province string
	MinPrice *float64
	MaxPrice *float64

	Status    string
	OwnerID   string
	OnlyLive  bool
	AnyStatus bool
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type StatusCounts struct {
	Bozza      int `json:"bozza"`
	InAttesa   int `json:"in_attesa"`
	Pubblicato int `json:"pubblicato"`
	Scaduto    int `json:"scaduto"`
	Rifiutato  int `json:"rifiutato"`
	Total      int `json:"total"`
}
