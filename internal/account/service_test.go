// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casannunci/backend/internal/core"
)

type fakeRepository struct {
	users map[string]*User

	// cascaded records DeleteCascade calls so tests can assert the
	// hard-delete path was taken.
	cascaded []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[string]*User)}
}

func (f *fakeRepository) Create(_ context.Context, user *User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (f *fakeRepository) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (f *fakeRepository) UpdateProfile(_ context.Context, user *User) error {
	u, ok := f.users[user.ID]
	if !ok {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	u.FullName = user.FullName
	u.Phone = user.Phone
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepository) UpdateRole(_ context.Context, id, role string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	u.Role = role
	return nil
}

func (f *fakeRepository) UpdateStatus(
	_ context.Context,
	id, status string,
) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update status: %w", core.ErrNotFound)
	}
	u.Status = status
	return nil
}

func (f *fakeRepository) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepository) IncrementTokenVersion(
	_ context.Context,
	id string,
) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return nil
}

func (f *fakeRepository) DeleteCascade(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("delete account: %w", core.ErrNotFound)
	}
	delete(f.users, id)
	f.cascaded = append(f.cascaded, id)
	return nil
}

func (f *fakeRepository) List(
	_ context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var out []User
	for _, u := range f.users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Status != "" && u.Status != params.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeRepository) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeRepository) seed(role, status string) *User {
	u := &User{
		ID:           uuid.New().String(),
		Email:        fmt.Sprintf("%s@example.it", uuid.New().String()[:8]),
		PasswordHash: "hash",
		Role:         role,
		Status:       status,
	}
	f.users[u.ID] = u
	return u
}

func adminIdentity() core.Identity {
	return core.Identity{
		ID:     uuid.New().String(),
		Email:  "admin@example.it",
		Role:   core.RoleAdmin,
		Status: core.StatusAttivo,
	}
}

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepository()
	svc := NewService(repo)
	u := repo.seed(core.RoleUtente, core.StatusAttivo)

	name := "Anna Bianchi"
	phone := "+39 333 1234567"

	updated, err := svc.UpdateMe(ctx, u.Identity(), UpdateProfileRequest{
		FullName: &name,
		Phone:    &phone,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, name, *updated.FullName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	// Role and status are not reachable here.
	assert.Equal(t, core.RoleUtente, updated.Role)
	assert.Equal(t, core.StatusAttivo, updated.Status)

	_, err = svc.UpdateMe(ctx, core.Identity{}, UpdateProfileRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin changes a role", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleUtente, core.StatusAttivo)

		updated, err := svc.SetRole(ctx, adminIdentity(), u.ID,
			core.RoleInserzionista)
		require.NoError(t, err)
		assert.Equal(t, core.RoleInserzionista, updated.Role)
		assert.Equal(t, core.RoleInserzionista, repo.users[u.ID].Role)
	})

	t.Run("invalid role", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleUtente, core.StatusAttivo)

		_, err := svc.SetRole(ctx, adminIdentity(), u.ID, "superuser")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleUtente, core.StatusAttivo)

		updated, err := svc.SetRole(ctx, adminIdentity(), u.ID, core.RoleUtente)
		require.NoError(t, err)
		assert.Equal(t, core.RoleUtente, updated.Role)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleUtente, core.StatusAttivo)

		_, err := svc.SetRole(ctx, u.Identity(), u.ID, core.RoleAdmin)
		assert.ErrorIs(t, err, core.ErrForbidden)
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepository()
	svc := NewService(repo)
	u := repo.seed(core.RoleInserzionista, core.StatusAttivo)

	updated, err := svc.SetStatus(ctx, adminIdentity(), u.ID, core.StatusSospeso)
	require.NoError(t, err)
	assert.Equal(t, core.StatusSospeso, updated.Status)

	// Suspension leaves the role alone.
	assert.Equal(t, core.RoleInserzionista, updated.Role)

	_, err = svc.SetStatus(ctx, adminIdentity(), u.ID, "bannato")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.SetStatus(ctx, u.Identity(), u.ID, core.StatusAttivo)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestDegrade(t *testing.T) {
	ctx := context.Background()

	t.Run("advertiser drops to base user", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleInserzionista, core.StatusAttivo)

		updated, err := svc.Degrade(ctx, adminIdentity(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, core.RoleUtente, updated.Role)
	})

	t.Run("base user cannot be degraded further", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleUtente, core.StatusAttivo)

		_, err := svc.Degrade(ctx, adminIdentity(), u.ID)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("admin cannot be degraded through this path", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleAdmin, core.StatusAttivo)

		_, err := svc.Degrade(ctx, adminIdentity(), u.ID)
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, core.RoleAdmin, repo.users[u.ID].Role)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades through owned data", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleInserzionista, core.StatusAttivo)

		require.NoError(t, svc.DeleteAccount(ctx, adminIdentity(), u.ID))
		assert.Equal(t, []string{u.ID}, repo.cascaded)
	})

	t.Run("refuses admin targets", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleAdmin, core.StatusAttivo)

		err := svc.DeleteAccount(ctx, adminIdentity(), u.ID)
		assert.ErrorIs(t, err, core.ErrForbidden)
		assert.Contains(t, repo.users, u.ID)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo)
		u := repo.seed(core.RoleUtente, core.StatusAttivo)

		err := svc.DeleteAccount(ctx, u.Identity(), u.ID)
		assert.ErrorIs(t, err, core.ErrForbidden)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepository()
	svc := NewService(repo)

	info, err := svc.Create(ctx, "Mario.Rossi@Example.IT", "hash",
		"Mario Rossi")
	require.NoError(t, err)

	// Registration lowercases the email and starts everyone as an active
	// base user.
	assert.Equal(t, "mario.rossi@example.it", info.Email)
	assert.Equal(t, core.RoleUtente, info.Role)
	assert.Equal(t, core.StatusAttivo, info.Status)
	assert.Equal(t, "Mario Rossi", info.FullName)

	_, err = svc.Create(ctx, "mario.rossi@example.it", "hash", "Impostore")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	found, err := svc.GetByEmail(ctx,
		strings.ToUpper("mario.rossi@example.it"))
	require.NoError(t, err)
	assert.Equal(t, info.ID, found.ID)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepository()
	svc := NewService(repo)

	repo.seed(core.RoleUtente, core.StatusAttivo)
	repo.seed(core.RoleInserzionista, core.StatusAttivo)
	repo.seed(core.RoleInserzionista, core.StatusSospeso)

	all, total, err := svc.ListUsers(ctx, adminIdentity(), ListUsersParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	advertisers, total, err := svc.ListUsers(ctx, adminIdentity(),
		ListUsersParams{Role: core.RoleInserzionista})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, u := range advertisers {
		assert.Equal(t, core.RoleInserzionista, u.Role)
	}

	_, _, err = svc.ListUsers(ctx,
		core.Identity{ID: "x", Role: core.RoleUtente}, ListUsersParams{})
	assert.ErrorIs(t, err, core.ErrForbidden)
}
