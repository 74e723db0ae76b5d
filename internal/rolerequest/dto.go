// AngelaMos | 2026
// dto.go

package rolerequest

import (
	"time"
)

type SubmitRequest struct {
	Reason string `json:"reason" validate:"required,min=20,max=2000"`
}

type ReviewRequest struct {
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=2000"`
}

type EditNotesRequest struct {
	AdminNotes string `json:"admin_notes" validate:"required,max=2000"`
}

type RoleRequestResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	RequestedRole string     `json:"requested_role"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ToRoleRequestResponse(r *RoleRequest) RoleRequestResponse {
	return RoleRequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		RequestedRole: r.RequestedRole,
		Status:        r.Status,
		Reason:        r.Reason,
		AdminNotes:    r.AdminNotes,
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func ToRoleRequestResponseList(requests []RoleRequest) []RoleRequestResponse {
	out := make([]RoleRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, ToRoleRequestResponse(&requests[i]))
	}
	return out
}

type ListParams struct {
	Page     int
	PageSize int
	Status   string
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
