// AngelaMos | 2026
// entity.go

package rolerequest

import (
	"time"
)

const (
	StatusInAttesa  = "in_attesa"
	StatusApprovato = "approvato"
	StatusRifiutato = "rifiutato"
)

// RequestedRole is fixed: the only upgrade this workflow grants is
// utente to inserzionista.
const RequestedRole = "inserzionista"

func ValidStatus(s string) bool {
	switch s {
	case StatusInAttesa, StatusApprovato, StatusRifiutato:
		return true
	}
	return false
}

type RoleRequest struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	RequestedRole string     `db:"requested_role"`
	Status        string     `db:"status"`
	Reason        string     `db:"reason"`
	AdminNotes    *string    `db:"admin_notes"`
	ReviewedBy    *string    `db:"reviewed_by"`
	ReviewedAt    *time.Time `db:"reviewed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r *RoleRequest) IsPending() bool {
	return r.Status == StatusInAttesa
}
