// AngelaMos | 2026
// entity.go

package account

import (
	"time"

	"github.com/casannunci/backend/internal/core"
)

// User mirrors a row in the users table. Role is the capability tier,
// Status the account gate; the two move independently.
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FullName     *string    `db:"full_name"`
	Phone        *string    `db:"phone"`
	AvatarURL    *string    `db:"avatar_url"`
	Role         string     `db:"role"`
	Status       string     `db:"status"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

func (u *User) IsAdvertiser() bool {
	return u.Role == core.RoleInserzionista
}

func (u *User) IsActive() bool {
	return u.Status == core.StatusAttivo
}

func (u *User) Identity() core.Identity {
	return core.Identity{
		ID:     u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}
