// AngelaMos | 2026
// identity.go

package core

const (
	RoleUtente        = "utente"
	RoleInserzionista = "inserzionista"
	RoleAdmin         = "admin"
)

const (
	StatusAttivo   = "attivo"
	StatusSospeso  = "sospeso"
	StatusInAttesa = "in_attesa"
)

func ValidRole(role string) bool {
	switch role {
	case RoleUtente, RoleInserzionista, RoleAdmin:
		return true
	}
	return false
}

func ValidAccountStatus(status string) bool {
	switch status {
	case StatusAttivo, StatusSospeso, StatusInAttesa:
		return true
	}
	return false
}

// Identity is the authenticated caller, threaded explicitly into every
// workflow operation. The zero value means anonymous.
type Identity struct {
	ID     string
	Email  string
	Role   string
	Status string
}

func (i Identity) IsAnonymous() bool {
	return i.ID == ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanPublish reports whether the identity may create and manage listings.
func (i Identity) CanPublish() bool {
	return i.Role == RoleInserzionista || i.Role == RoleAdmin
}

func (i Identity) IsActive() bool {
	return i.Status == StatusAttivo
}
