// AngelaMos | 2026
// service.go

package rolerequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/casannunci/backend/internal/core"
	"github.com/casannunci/backend/internal/events"
)

// MinReasonLength is the shortest motivation an upgrade request may carry.
const MinReasonLength = 20

type Service struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Submit files an upgrade request. Only plain users may ask: advertisers
// already hold the role and admins have nothing to gain.
func (s *Service) Submit(
	ctx context.Context,
	identity core.Identity,
	req SubmitRequest,
) (*RoleRequest, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("submit role request: %w", core.ErrUnauthorized)
	}
	if identity.Role != core.RoleUtente {
		return nil, fmt.Errorf(
			"submit role request: role %s cannot request an upgrade: %w",
			identity.Role, core.ErrForbidden,
		)
	}

	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) < MinReasonLength {
		return nil, fmt.Errorf(
			"submit role request: reason must be at least %d characters: %w",
			MinReasonLength, core.ErrInvalidInput,
		)
	}

	pending, err := s.repo.HasPending(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf(
			"submit role request: a pending request already exists: %w",
			core.ErrConflict,
		)
	}

	request := &RoleRequest{
		ID:            uuid.New().String(),
		UserID:        identity.ID,
		RequestedRole: RequestedRole,
		Status:        StatusInAttesa,
		Reason:        reason,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		// The partial unique index catches the race the HasPending
		// check cannot.
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf(
				"submit role request: a pending request already exists: %w",
				core.ErrConflict,
			)
		}
		return nil, err
	}

	return request, nil
}

// Approve grants the upgrade: request stamped approvato and user role
// raised to inserzionista, atomically.
func (s *Service) Approve(
	ctx context.Context,
	identity core.Identity,
	id string,
) (*RoleRequest, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("approve role request: %w", core.ErrForbidden)
	}

	if err := s.repo.Approve(ctx, id, identity.ID); err != nil {
		return nil, err
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(
		events.SubjectRoleRequestApproved,
		events.RoleRequestEvent{
			RequestID:  request.ID,
			UserID:     request.UserID,
			Status:     request.Status,
			ReviewedBy: identity.ID,
			OccurredAt: time.Now(),
		},
	)

	return request, nil
}

// Reject requires a motivation so the requester learns why.
func (s *Service) Reject(
	ctx context.Context,
	identity core.Identity,
	id, adminNotes string,
) (*RoleRequest, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("reject role request: %w", core.ErrForbidden)
	}

	adminNotes = strings.TrimSpace(adminNotes)
	if adminNotes == "" {
		return nil, fmt.Errorf(
			"reject role request: admin notes required: %w",
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.Reject(ctx, id, identity.ID, adminNotes); err != nil {
		return nil, err
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(
		events.SubjectRoleRequestRejected,
		events.RoleRequestEvent{
			RequestID:  request.ID,
			UserID:     request.UserID,
			Status:     request.Status,
			ReviewedBy: identity.ID,
			OccurredAt: time.Now(),
		},
	)

	return request, nil
}

// EditNotes annotates a request in any status without touching the status.
func (s *Service) EditNotes(
	ctx context.Context,
	identity core.Identity,
	id, notes string,
) (*RoleRequest, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("edit role request notes: %w", core.ErrForbidden)
	}

	if err := s.repo.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(
	ctx context.Context,
	identity core.Identity,
	id string,
) error {
	if !identity.IsAdmin() {
		return fmt.Errorf("delete role request: %w", core.ErrForbidden)
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAll(
	ctx context.Context,
	identity core.Identity,
	params ListParams,
) ([]RoleRequest, int, error) {
	if !identity.IsAdmin() {
		return nil, 0, fmt.Errorf("list role requests: %w", core.ErrForbidden)
	}

	if params.Status != "" && !ValidStatus(params.Status) {
		return nil, 0, fmt.Errorf(
			"list role requests: invalid status %q: %w",
			params.Status, core.ErrInvalidInput,
		)
	}

	return s.repo.List(ctx, params)
}

func (s *Service) ListPending(
	ctx context.Context,
	identity core.Identity,
	params ListParams,
) ([]RoleRequest, int, error) {
	params.Status = StatusInAttesa
	return s.ListAll(ctx, identity, params)
}

func (s *Service) GetMine(
	ctx context.Context,
	identity core.Identity,
) ([]RoleRequest, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("get own role requests: %w", core.ErrUnauthorized)
	}

	return s.repo.ListByUser(ctx, identity.ID)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}
