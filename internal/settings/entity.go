// AngelaMos | 2026
// entity.go

package settings

import (
	"time"
)

// SiteSettings is a singleton row keyed by a fixed id.
type SiteSettings struct {
	ID              string    `db:"id"`
	SiteName        string    `db:"site_name"`
	SiteDescription string    `db:"site_description"`
	LogoURL         *string   `db:"logo_url"`
	PrimaryColor    string    `db:"primary_color"`
	SecondaryColor  string    `db:"secondary_color"`
	ContactEmail    string    `db:"contact_email"`
	ContactPhone    *string   `db:"contact_phone"`
	FacebookURL     *string   `db:"facebook_url"`
	InstagramURL    *string   `db:"instagram_url"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// SingletonID pins the one settings row.
const SingletonID = "00000000-0000-0000-0000-000000000001"
