// AngelaMos | 2026
// dto.go

package settings

import (
	"time"
)

type UpdateSettingsRequest struct {
	SiteName        *string `json:"site_name"        validate:"omitempty,min=1,max=100"`
	SiteDescription *string `json:"site_description" validate:"omitempty,max=500"`
	LogoURL         *string `json:"logo_url"         validate:"omitempty,url"`
	PrimaryColor    *string `json:"primary_color"    validate:"omitempty,hexcolor"`
	SecondaryColor  *string `json:"secondary_color"  validate:"omitempty,hexcolor"`
	ContactEmail    *string `json:"contact_email"    validate:"omitempty,email"`
	ContactPhone    *string `json:"contact_phone"    validate:"omitempty,max=30"`
	FacebookURL     *string `json:"facebook_url"     validate:"omitempty,url"`
	InstagramURL    *string `json:"instagram_url"    validate:"omitempty,url"`
}

type SettingsResponse struct {
	SiteName        string    `json:"site_name"`
	SiteDescription string    `json:"site_description"`
	LogoURL         *string   `json:"logo_url,omitempty"`
	PrimaryColor    string    `json:"primary_color"`
	SecondaryColor  string    `json:"secondary_color"`
	ContactEmail    string    `json:"contact_email"`
	ContactPhone    *string   `json:"contact_phone,omitempty"`
	FacebookURL     *string   `json:"facebook_url,omitempty"`
	InstagramURL    *string   `json:"instagram_url,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToSettingsResponse(s *SiteSettings) SettingsResponse {
	return SettingsResponse{
		SiteName:        s.SiteName,
		SiteDescription: s.SiteDescription,
		LogoURL:         s.LogoURL,
		PrimaryColor:    s.PrimaryColor,
		SecondaryColor:  s.SecondaryColor,
		ContactEmail:    s.ContactEmail,
		ContactPhone:    s.ContactPhone,
		FacebookURL:     s.FacebookURL,
		InstagramURL:    s.InstagramURL,
		UpdatedAt:       s.UpdatedAt,
	}
}
