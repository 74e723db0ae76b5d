// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casannunci/backend/internal/config"
	"github.com/casannunci/backend/internal/core"
)

type fakeTokenRepo struct {
	tokens map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *RefreshToken) error {
	token.CreatedAt = time.Now()
	stored := *token
	f.tokens[token.ID] = &stored
	return nil
}

func (f *fakeTokenRepo) FindByHash(
	_ context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	for _, t := range f.tokens {
		if t.TokenHash == tokenHash {
			out := *t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
}

func (f *fakeTokenRepo) FindByID(
	_ context.Context,
	id string,
) (*RefreshToken, error) {
	t, ok := f.tokens[id]
	if !ok {
		return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
	}
	out := *t
	return &out, nil
}

func (f *fakeTokenRepo) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	t, ok := f.tokens[id]
	if !ok {
		return fmt.Errorf("mark token used: %w", core.ErrNotFound)
	}
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
	return nil
}

func (f *fakeTokenRepo) RevokeByID(_ context.Context, id string) error {
	t, ok := f.tokens[id]
	if !ok {
		return fmt.Errorf("revoke token: %w", core.ErrNotFound)
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (f *fakeTokenRepo) RevokeByFamilyID(
	_ context.Context,
	familyID string,
) error {
	now := time.Now()
	for _, t := range f.tokens {
		if t.FamilyID == familyID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(
	_ context.Context,
	userID string,
) error {
	now := time.Now()
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) GetActiveSessionsForUser(
	_ context.Context,
	userID string,
) ([]RefreshToken, error) {
	var out []RefreshToken
	for _, t := range f.tokens {
		if t.UserID == userID && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var deleted int64
	for id, t := range f.tokens {
		if t.IsExpired() {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserProvider struct {
	users map[string]*UserInfo
}

func newFakeUserProvider() *fakeUserProvider {
	return &fakeUserProvider{users: make(map[string]*UserInfo)}
}

func (f *fakeUserProvider) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (f *fakeUserProvider) GetByID(
	_ context.Context,
	id string,
) (*UserInfo, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserProvider) Create(
	_ context.Context,
	email, passwordHash, fullName string,
) (*UserInfo, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u := &UserInfo{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         core.RoleUtente,
		Status:       core.StatusAttivo,
	}
	f.users[u.ID] = u
	out := *u
	return &out, nil
}

func (f *fakeUserProvider) IncrementTokenVersion(
	_ context.Context,
	userID string,
) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return nil
}

func (f *fakeUserProvider) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserProvider) seed(
	t *testing.T,
	email, password, status string,
) *UserInfo {
	t.Helper()

	hash, err := core.HashPassword(password)
	require.NoError(t, err)

	u := &UserInfo{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         core.RoleUtente,
		Status:       status,
	}
	f.users[u.ID] = u
	return u
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	mgr, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 168 * time.Hour,
		Issuer:             "casannunci",
		Audience:           "casannunci-api",
	})
	require.NoError(t, err)
	return mgr
}

func newTestService(t *testing.T) (*Service, *fakeTokenRepo, *fakeUserProvider) {
	t.Helper()

	repo := newFakeTokenRepo()
	users := newFakeUserProvider()
	return NewService(repo, newTestJWTManager(t), users, nil), repo, users
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, repo, users := newTestService(t)
		u := users.seed(t, "mario@example.it", "Str0ngPassw0rd!", core.StatusAttivo)

		resp, err := svc.Login(ctx, LoginRequest{
			Email:    "mario@example.it",
			Password: "Str0ngPassw0rd!",
		}, "go-test", "127.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, u.ID, resp.User.ID)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)
		assert.Equal(t, "Bearer", resp.Tokens.TokenType)
		assert.Len(t, repo.tokens, 1)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, users := newTestService(t)
		users.seed(t, "mario@example.it", "Str0ngPassw0rd!", core.StatusAttivo)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "mario@example.it",
			Password: "wrong",
		}, "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "nessuno@example.it",
			Password: "whatever",
		}, "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended account", func(t *testing.T) {
		svc, _, users := newTestService(t)
		users.seed(t, "mario@example.it", "Str0ngPassw0rd!", core.StatusSospeso)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "mario@example.it",
			Password: "Str0ngPassw0rd!",
		}, "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestService(t)

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:    "anna@example.it",
		Password: "Str0ngPassw0rd!",
		FullName: "Anna Bianchi",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, core.RoleUtente, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "anna@example.it",
		Password: "AnotherPassw0rd!",
	}, "go-test", "127.0.0.1")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	login := func(
		t *testing.T,
		svc *Service,
		users *fakeUserProvider,
	) (*AuthResponse, *UserInfo) {
		t.Helper()
		u := users.seed(t, "mario@example.it", "Str0ngPassw0rd!", core.StatusAttivo)
		resp, err := svc.Login(ctx, LoginRequest{
			Email:    "mario@example.it",
			Password: "Str0ngPassw0rd!",
		}, "go-test", "127.0.0.1")
		require.NoError(t, err)
		return resp, u
	}

	t.Run("rotation issues a new pair", func(t *testing.T) {
		svc, repo, users := newTestService(t)
		first, _ := login(t, svc, users)

		second, err := svc.Refresh(ctx,
			first.Tokens.RefreshToken, "go-test", "127.0.0.1")
		require.NoError(t, err)
		assert.NotEqual(t,
			first.Tokens.RefreshToken, second.Tokens.RefreshToken)
		assert.Len(t, repo.tokens, 2)
	})

	t.Run("reuse takes down the family", func(t *testing.T) {
		svc, repo, users := newTestService(t)
		first, _ := login(t, svc, users)

		second, err := svc.Refresh(ctx,
			first.Tokens.RefreshToken, "go-test", "127.0.0.1")
		require.NoError(t, err)

		// Replaying the consumed token trips reuse detection.
		_, err = svc.Refresh(ctx,
			first.Tokens.RefreshToken, "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, ErrTokenReuse)

		// The newer token in the family is revoked too.
		_, err = svc.Refresh(ctx,
			second.Tokens.RefreshToken, "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, core.ErrTokenRevoked)

		for _, token := range repo.tokens {
			assert.True(t, token.IsRevoked())
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Refresh(ctx, "bogus", "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("suspension lands on refresh", func(t *testing.T) {
		svc, repo, users := newTestService(t)
		first, u := login(t, svc, users)

		users.users[u.ID].Status = core.StatusSospeso

		_, err := svc.Refresh(ctx,
			first.Tokens.RefreshToken, "go-test", "127.0.0.1")
		assert.ErrorIs(t, err, ErrAccountSuspended)

		for _, token := range repo.tokens {
			assert.True(t, token.IsRevoked())
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	svc, repo, users := newTestService(t)
	u := users.seed(t, "mario@example.it", "Str0ngPassw0rd!", core.StatusAttivo)

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "mario@example.it",
		Password: "Str0ngPassw0rd!",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Tokens.RefreshToken, u.ID))
	for _, token := range repo.tokens {
		assert.True(t, token.IsRevoked())
	}

	// Logging out an already-gone token is not an error.
	assert.NoError(t, svc.Logout(ctx, "bogus", u.ID))

	// A different user cannot revoke someone else's token.
	resp2, err := svc.Login(ctx, LoginRequest{
		Email:    "mario@example.it",
		Password: "Str0ngPassw0rd!",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	err = svc.Logout(ctx, resp2.Tokens.RefreshToken, "someone-else")
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	svc, repo, users := newTestService(t)
	u := users.seed(t, "mario@example.it", "OldPassw0rd!", core.StatusAttivo)

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "mario@example.it",
		Password: "OldPassw0rd!",
	}, "go-test", "127.0.0.1")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, "wrong", "NewPassw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t,
		svc.ChangePassword(ctx, u.ID, "OldPassw0rd!", "NewPassw0rd!"))

	// Every session is revoked and the token version bumped.
	for _, token := range repo.tokens {
		assert.True(t, token.IsRevoked())
	}
	assert.Equal(t, 1, users.users[u.ID].TokenVersion)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "mario@example.it",
		Password: "OldPassw0rd!",
	}, "go-test", "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "mario@example.it",
		Password: "NewPassw0rd!",
	}, "go-test", "127.0.0.1")
	assert.NoError(t, err)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()

	svc, _, users := newTestService(t)
	u := users.seed(t, "mario@example.it", "Str0ngPassw0rd!", core.StatusAttivo)

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, LoginRequest{
			Email:    "mario@example.it",
			Password: "Str0ngPassw0rd!",
		}, fmt.Sprintf("device-%d", i), "127.0.0.1")
		require.NoError(t, err)
	}

	sessions, err := svc.GetActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	require.NoError(t, svc.RevokeSession(ctx, u.ID, sessions[0].ID))

	remaining, err := svc.GetActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	err = svc.RevokeSession(ctx, "someone-else", remaining[0].ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	mgr := newTestJWTManager(t)

	token, err := mgr.CreateAccessToken(AccessTokenClaims{
		UserID:       "user-1",
		Email:        "mario@example.it",
		Role:         core.RoleInserzionista,
		Status:       core.StatusAttivo,
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := mgr.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "mario@example.it", claims.Email)
	assert.Equal(t, core.RoleInserzionista, claims.Role)
	assert.Equal(t, core.StatusAttivo, claims.Status)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	_, err = mgr.VerifyAccessToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	other := newTestJWTManager(t)
	_, err = other.VerifyAccessToken(ctx, token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
