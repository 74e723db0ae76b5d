// AngelaMos | 2026
// service_test.go

package rolerequest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casannunci/backend/internal/core"
	"github.com/casannunci/backend/internal/events"
)

type fakeRepository struct {
	requests map[string]*RoleRequest

	// roles mirrors the account side of Approve so the test can assert
	// the upgrade landed.
	roles map[string]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		requests: make(map[string]*RoleRequest),
		roles:    make(map[string]string),
	}
}

func (f *fakeRepository) Create(_ context.Context, req *RoleRequest) error {
	for _, existing := range f.requests {
		if existing.UserID == req.UserID && existing.IsPending() {
			return fmt.Errorf("create role request: %w", core.ErrDuplicateKey)
		}
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	stored := *req
	f.requests[req.ID] = &stored
	return nil
}

func (f *fakeRepository) GetByID(
	_ context.Context,
	id string,
) (*RoleRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("get role request: %w", core.ErrNotFound)
	}
	out := *r
	return &out, nil
}

func (f *fakeRepository) HasPending(
	_ context.Context,
	userID string,
) (bool, error) {
	for _, r := range f.requests {
		if r.UserID == userID && r.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) Approve(
	_ context.Context,
	id, reviewerID string,
) error {
	r, ok := f.requests[id]
	if !ok {
		return fmt.Errorf("approve role request: %w", core.ErrNotFound)
	}
	if !r.IsPending() {
		return fmt.Errorf(
			"approve role request: already reviewed: %w", core.ErrConflict)
	}
	now := time.Now()
	r.Status = StatusApprovato
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	f.roles[r.UserID] = RequestedRole
	return nil
}

func (f *fakeRepository) Reject(
	_ context.Context,
	id, reviewerID, notes string,
) error {
	r, ok := f.requests[id]
	if !ok {
		return fmt.Errorf("reject role request: %w", core.ErrNotFound)
	}
	if !r.IsPending() {
		return fmt.Errorf(
			"reject role request: already reviewed: %w", core.ErrConflict)
	}
	now := time.Now()
	r.Status = StatusRifiutato
	r.AdminNotes = &notes
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	return nil
}

func (f *fakeRepository) UpdateNotes(
	_ context.Context,
	id, notes string,
) error {
	r, ok := f.requests[id]
	if !ok {
		return fmt.Errorf("update role request notes: %w", core.ErrNotFound)
	}
	r.AdminNotes = &notes
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.requests[id]; !ok {
		return fmt.Errorf("delete role request: %w", core.ErrNotFound)
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeRepository) List(
	_ context.Context,
	params ListParams,
) ([]RoleRequest, int, error) {
	var out []RoleRequest
	for _, r := range f.requests {
		if params.Status != "" && r.Status != params.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListByUser(
	_ context.Context,
	userID string,
) ([]RoleRequest, error) {
	var out []RoleRequest
	for _, r := range f.requests {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepository) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, r := range f.requests {
		if r.IsPending() {
			count++
		}
	}
	return count, nil
}

type recordedEvent struct {
	subject string
	payload any
}

type recordingPublisher struct {
	published []recordedEvent
}

func (p *recordingPublisher) Publish(subject string, payload any) {
	p.published = append(p.published, recordedEvent{subject, payload})
}

func (p *recordingPublisher) Close() {}

func newTestService() (*Service, *fakeRepository, *recordingPublisher) {
	repo := newFakeRepository()
	pub := &recordingPublisher{}
	return NewService(repo, pub), repo, pub
}

func plainUser() core.Identity {
	return core.Identity{
		ID:     uuid.New().String(),
		Email:  "anna@example.it",
		Role:   core.RoleUtente,
		Status: core.StatusAttivo,
	}
}

func admin() core.Identity {
	return core.Identity{
		ID:     uuid.New().String(),
		Email:  "admin@example.it",
		Role:   core.RoleAdmin,
		Status: core.StatusAttivo,
	}
}

const validReason = "Vorrei pubblicare gli annunci della mia agenzia immobiliare."

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("user files a request", func(t *testing.T) {
		svc, _, _ := newTestService()

		r, err := svc.Submit(ctx, plainUser(), SubmitRequest{Reason: validReason})
		require.NoError(t, err)
		assert.Equal(t, StatusInAttesa, r.Status)
		assert.Equal(t, RequestedRole, r.RequestedRole)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Submit(ctx, core.Identity{},
			SubmitRequest{Reason: validReason})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("advertiser already holds the role", func(t *testing.T) {
		svc, _, _ := newTestService()

		caller := plainUser()
		caller.Role = core.RoleInserzionista

		_, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("admin has nothing to request", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Submit(ctx, admin(), SubmitRequest{Reason: validReason})
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("reason too short after trimming", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Submit(ctx, plainUser(),
			SubmitRequest{Reason: "   perché sì          "})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("reason length counts runes not bytes", func(t *testing.T) {
		svc, _, _ := newTestService()

		// 17 characters, 21 bytes once the accents are encoded.
		reason := "perché è già così"
		require.GreaterOrEqual(t, len(reason), MinReasonLength)

		_, err := svc.Submit(ctx, plainUser(), SubmitRequest{Reason: reason})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("second pending request conflicts", func(t *testing.T) {
		svc, _, _ := newTestService()
		caller := plainUser()

		_, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		_, err = svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("duplicate key from the index maps to conflict", func(t *testing.T) {
		svc, repo, _ := newTestService()
		caller := plainUser()

		// Seed a pending row directly so HasPending misses are simulated
		// by Create hitting the unique index.
		repo.requests["race"] = &RoleRequest{
			ID:     "race",
			UserID: caller.ID,
			Status: StatusInAttesa,
		}

		_, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("new request allowed after rejection", func(t *testing.T) {
		svc, repo, _ := newTestService()
		caller := plainUser()

		first, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		require.NoError(t, err)
		require.NoError(t, repo.Reject(ctx, first.ID, "rev", "non basta"))

		_, err = svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		assert.NoError(t, err)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("grants the upgrade", func(t *testing.T) {
		svc, repo, pub := newTestService()
		caller := plainUser()
		reviewer := admin()

		r, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		approved, err := svc.Approve(ctx, reviewer, r.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusApprovato, approved.Status)
		require.NotNil(t, approved.ReviewedBy)
		assert.Equal(t, reviewer.ID, *approved.ReviewedBy)
		assert.NotNil(t, approved.ReviewedAt)

		assert.Equal(t, core.RoleInserzionista, repo.roles[caller.ID])

		require.Len(t, pub.published, 1)
		assert.Equal(t,
			events.SubjectRoleRequestApproved, pub.published[0].subject)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		svc, _, _ := newTestService()
		caller := plainUser()

		r, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		_, err = svc.Approve(ctx, caller, r.ID)
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("already reviewed conflicts", func(t *testing.T) {
		svc, _, _ := newTestService()
		reviewer := admin()

		r, err := svc.Submit(ctx, plainUser(),
			SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		_, err = svc.Approve(ctx, reviewer, r.ID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, reviewer, r.ID)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("unknown request", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Approve(ctx, admin(), uuid.New().String())
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps notes and reviewer", func(t *testing.T) {
		svc, _, pub := newTestService()
		reviewer := admin()

		r, err := svc.Submit(ctx, plainUser(),
			SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		rejected, err := svc.Reject(ctx, reviewer, r.ID,
			"Serve una partita IVA attiva")
		require.NoError(t, err)
		assert.Equal(t, StatusRifiutato, rejected.Status)
		require.NotNil(t, rejected.AdminNotes)
		assert.Equal(t, "Serve una partita IVA attiva", *rejected.AdminNotes)

		require.Len(t, pub.published, 1)
		assert.Equal(t,
			events.SubjectRoleRequestRejected, pub.published[0].subject)
	})

	t.Run("notes are required", func(t *testing.T) {
		svc, _, _ := newTestService()

		r, err := svc.Submit(ctx, plainUser(),
			SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		_, err = svc.Reject(ctx, admin(), r.ID, "   ")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("already reviewed conflicts", func(t *testing.T) {
		svc, _, _ := newTestService()
		reviewer := admin()

		r, err := svc.Submit(ctx, plainUser(),
			SubmitRequest{Reason: validReason})
		require.NoError(t, err)

		_, err = svc.Approve(ctx, reviewer, r.ID)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, reviewer, r.ID, "troppo tardi")
		assert.ErrorIs(t, err, core.ErrConflict)
	})
}

func TestEditNotes(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestService()
	reviewer := admin()

	r, err := svc.Submit(ctx, plainUser(), SubmitRequest{Reason: validReason})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, reviewer, r.ID)
	require.NoError(t, err)

	// Notes are editable regardless of status.
	annotated, err := svc.EditNotes(ctx, reviewer, r.ID, "Verificato telefonicamente")
	require.NoError(t, err)
	assert.Equal(t, StatusApprovato, annotated.Status)
	require.NotNil(t, annotated.AdminNotes)
	assert.Equal(t, "Verificato telefonicamente", *annotated.AdminNotes)

	_, err = svc.EditNotes(ctx, plainUser(), r.ID, "no")
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestListAll(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestService()
	reviewer := admin()

	first, err := svc.Submit(ctx, plainUser(), SubmitRequest{Reason: validReason})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, plainUser(), SubmitRequest{Reason: validReason})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, reviewer, first.ID)
	require.NoError(t, err)

	all, total, err := svc.ListAll(ctx, reviewer, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	pending, total, err := svc.ListPending(ctx, reviewer, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].IsPending())

	_, _, err = svc.ListAll(ctx, reviewer, ListParams{Status: "limbo"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, _, err = svc.ListAll(ctx, plainUser(), ListParams{})
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestGetMine(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestService()
	caller := plainUser()

	_, err := svc.Submit(ctx, caller, SubmitRequest{Reason: validReason})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, plainUser(), SubmitRequest{Reason: validReason})
	require.NoError(t, err)

	mine, err := svc.GetMine(ctx, caller)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, caller.ID, mine[0].UserID)

	_, err = svc.GetMine(ctx, core.Identity{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
