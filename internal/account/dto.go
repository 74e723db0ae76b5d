// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty"     validate:"omitempty,max=30"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=utente inserzionista admin"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=attivo sospeso in_attesa"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Phone     *string   `json:"phone"`
	AvatarURL *string   `json:"avatar_url"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Status   string
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
