// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/casannunci/backend/internal/auth"
	"github.com/casannunci/backend/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetMe(
	ctx context.Context,
	identity core.Identity,
) (*User, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, identity.ID)
}

// UpdateMe touches contact fields only; role and status are reachable
// exclusively through the admin operations below.
func (s *Service) UpdateMe(
	ctx context.Context,
	identity core.Identity,
	req UpdateProfileRequest,
) (*User, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(
	ctx context.Context,
	admin core.Identity,
	targetID string,
) (*User, error) {
	if !admin.IsAdmin() {
		return nil, fmt.Errorf("get user: %w", core.ErrForbidden)
	}

	return s.repo.GetByID(ctx, targetID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	admin core.Identity,
	params ListUsersParams,
) ([]User, int, error) {
	if !admin.IsAdmin() {
		return nil, 0, fmt.Errorf("list users: %w", core.ErrForbidden)
	}

	return s.repo.List(ctx, params)
}

func (s *Service) SetRole(
	ctx context.Context,
	admin core.Identity,
	targetID, newRole string,
) (*User, error) {
	if !admin.IsAdmin() {
		return nil, fmt.Errorf("set role: %w", core.ErrForbidden)
	}

	if !core.ValidRole(newRole) {
		return nil, fmt.Errorf(
			"set role: invalid role %q: %w",
			newRole,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// no-op when already there
	if user.Role == newRole {
		return user, nil
	}

	if err := s.repo.UpdateRole(ctx, targetID, newRole); err != nil {
		return nil, err
	}

	user.Role = newRole
	return user, nil
}

func (s *Service) SetStatus(
	ctx context.Context,
	admin core.Identity,
	targetID, newStatus string,
) (*User, error) {
	if !admin.IsAdmin() {
		return nil, fmt.Errorf("set status: %w", core.ErrForbidden)
	}

	if !core.ValidAccountStatus(newStatus) {
		return nil, fmt.Errorf(
			"set status: invalid status %q: %w",
			newStatus,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if user.Status == newStatus {
		return user, nil
	}

	if err := s.repo.UpdateStatus(ctx, targetID, newStatus); err != nil {
		return nil, err
	}

	user.Status = newStatus
	return user, nil
}

// Degrade drops an advertiser back to a base user. It refuses any other
// starting role so an admin account can never be demoted through this path.
func (s *Service) Degrade(
	ctx context.Context,
	admin core.Identity,
	targetID string,
) (*User, error) {
	if !admin.IsAdmin() {
		return nil, fmt.Errorf("degrade: %w", core.ErrForbidden)
	}

	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if user.Role != core.RoleInserzionista {
		return nil, fmt.Errorf(
			"degrade: role is %s, not %s: %w",
			user.Role,
			core.RoleInserzionista,
			core.ErrConflict,
		)
	}

	if err := s.repo.UpdateRole(ctx, targetID, core.RoleUtente); err != nil {
		return nil, err
	}

	user.Role = core.RoleUtente
	return user, nil
}

func (s *Service) DeleteAccount(
	ctx context.Context,
	admin core.Identity,
	targetID string,
) error {
	if !admin.IsAdmin() {
		return fmt.Errorf("delete account: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf(
			"delete account: cannot delete admin accounts: %w",
			core.ErrForbidden,
		)
	}

	return s.repo.DeleteCascade(ctx, targetID)
}

// --- auth.UserProvider ---

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a fresh account. Every registration starts as an active
// base user; advertiser privileges only arrive through the role-request
// workflow.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, fullName string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         core.RoleUtente,
		Status:       core.StatusAttivo,
	}
	if fullName != "" {
		user.FullName = &fullName
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func toUserInfo(u *User) *auth.UserInfo {
	name := ""
	if u.FullName != nil {
		name = *u.FullName
	}

	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
