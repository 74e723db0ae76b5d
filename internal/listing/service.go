// AngelaMos | 2026
// service.go

package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/casannunci/backend/internal/config"
	"github.com/casannunci/backend/internal/core"
	"github.com/casannunci/backend/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	cfg       config.ListingConfig
}

func NewService(
	repo Repository,
	publisher events.Publisher,
	cfg config.ListingConfig,
) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create inserts a new listing for the caller. Only advertisers and admins
// may own listings; new rows start as bozza unless explicitly submitted for
// review.
func (s *Service) Create(
	ctx context.Context,
	identity core.Identity,
	req CreateListingRequest,
) (*Listing, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("create listing: %w", core.ErrUnauthorized)
	}
	if !identity.CanPublish() {
		return nil, fmt.Errorf(
			"create listing: advertiser role required: %w",
			core.ErrForbidden,
		)
	}

	status := req.Status
	if status == "" {
		status = StatusBozza
	}

	if err := s.validateFields(
		req.Province, req.Images, req.Features, req.EnergyClass,
	); err != nil {
		return nil, err
	}

	l := &Listing{
		ID:          uuid.New().String(),
		OwnerID:     identity.ID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Price:       req.Price,
		Location:    req.Location,
		City:        req.City,
		Province:    req.Province,
		Address:     req.Address,
		Images:      pq.StringArray(req.Images),
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Bathrooms:   req.Bathrooms,
		Floor:       req.Floor,
		EnergyClass: req.EnergyClass,
		Features:    pq.StringArray(req.Features),
		Status:      status,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Update applies the fields present in the request. Owners may only move
// their listing between draft and review; every other status change is
// moderation's job.
func (s *Service) Update(
	ctx context.Context,
	identity core.Identity,
	id string,
	req UpdateListingRequest,
) (*Listing, error) {
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("update listing: %w", core.ErrUnauthorized)
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !l.IsOwnedBy(identity.ID) && !identity.IsAdmin() {
		return nil, fmt.Errorf(
			"update listing: not the owner: %w",
			core.ErrForbidden,
		)
	}

	applyUpdate(l, req)

	if req.Status != nil && *req.Status != "" {
		next := *req.Status
		if !ValidStatus(next) {
			return nil, fmt.Errorf(
				"update listing: invalid status %q: %w",
				next, core.ErrInvalidInput,
			)
		}
		if !identity.IsAdmin() && !OwnerCanSetStatus(l.Status, next) {
			return nil, fmt.Errorf(
				"update listing: owner cannot move %s to %s: %w",
				l.Status, next, core.ErrForbidden,
			)
		}
		if l.Status == StatusPubblicato && next != StatusPubblicato {
			l.PublishedAt = nil
			l.ExpiresAt = nil
		}
		l.Status = next
	}

	if err := s.validateFields(
		l.Province, l.Images, l.Features, l.EnergyClass,
	); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Delete(
	ctx context.Context,
	identity core.Identity,
	id string,
) error {
	if identity.IsAnonymous() {
		return fmt.Errorf("delete listing: %w", core.ErrUnauthorized)
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !l.IsOwnedBy(identity.ID) && !identity.IsAdmin() {
		return fmt.Errorf(
			"delete listing: not the owner: %w",
			core.ErrForbidden,
		)
	}

	return s.repo.Delete(ctx, id)
}

// Get returns the listing if the caller may see it. Live listings are
// public; everything else, including pubblicato rows past their expiry
// that the sweep has not flipped yet, is visible only to the owner and
// admins.
func (s *Service) Get(
	ctx context.Context,
	identity core.Identity,
	id string,
) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.IsLive(time.Now()) {
		return l, nil
	}

	if l.IsOwnedBy(identity.ID) || identity.IsAdmin() {
		return l, nil
	}

	return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
}

// Browse is the public search. Only live published listings come back.
func (s *Service) Browse(
	ctx context.Context,
	params ListParams,
) ([]Listing, int, error) {
	params.Status = ""
	params.OwnerID = ""
	params.AnyStatus = false
	params.OnlyLive = true

	return s.repo.List(ctx, params)
}

// ListMine is the owner dashboard: every own row in any status.
func (s *Service) ListMine(
	ctx context.Context,
	identity core.Identity,
	params ListParams,
) ([]Listing, int, error) {
	if identity.IsAnonymous() {
		return nil, 0, fmt.Errorf("list own listings: %w", core.ErrUnauthorized)
	}

	params.OwnerID = identity.ID
	params.OnlyLive = false
	params.AnyStatus = params.Status == ""

	return s.repo.List(ctx, params)
}

// ListForModeration is the admin queue; status filter optional.
func (s *Service) ListForModeration(
	ctx context.Context,
	identity core.Identity,
	params ListParams,
) ([]Listing, int, error) {
	if !identity.IsAdmin() {
		return nil, 0, fmt.Errorf("moderation list: %w", core.ErrForbidden)
	}

	if params.Status != "" && !ValidStatus(params.Status) {
		return nil, 0, fmt.Errorf(
			"moderation list: invalid status %q: %w",
			params.Status, core.ErrInvalidInput,
		)
	}

	params.OnlyLive = false
	params.AnyStatus = params.Status == ""

	return s.repo.List(ctx, params)
}

// Approve publishes a listing awaiting review. The publish window starts
// now and runs for the configured TTL.
func (s *Service) Approve(
	ctx context.Context,
	identity core.Identity,
	id string,
) (*Listing, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("approve listing: %w", core.ErrForbidden)
	}

	now := time.Now()
	if err := s.repo.Approve(ctx, id, now, now.Add(s.cfg.PublishTTL)); err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.SubjectListingApproved, events.ListingEvent{
		ListingID:  l.ID,
		OwnerID:    l.OwnerID,
		Title:      l.Title,
		Status:     l.Status,
		ReviewedBy: identity.ID,
		OccurredAt: now,
	})

	return l, nil
}

// Reject sends a listing back to its owner. The note is not persisted on
// the listing, it rides on the rejection event for the notification
// consumer, and an empty note is fine.
func (s *Service) Reject(
	ctx context.Context,
	identity core.Identity,
	id, note string,
) (*Listing, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("reject listing: %w", core.ErrForbidden)
	}

	if err := s.repo.Reject(ctx, id); err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.SubjectListingRejected, events.ListingEvent{
		ListingID:  l.ID,
		OwnerID:    l.OwnerID,
		Title:      l.Title,
		Status:     l.Status,
		ReviewedBy: identity.ID,
		Note:       note,
		OccurredAt: time.Now(),
	})

	return l, nil
}

// IncrementView bumps the counter without touching updated_at. Best-effort:
// a failed bump never breaks the page view.
func (s *Service) IncrementView(ctx context.Context, id string) {
	//nolint:errcheck // view counting is best-effort
	_ = s.repo.IncrementView(ctx, id)
}

func (s *Service) CountByStatus(
	ctx context.Context,
	identity core.Identity,
) (StatusCounts, error) {
	if !identity.IsAdmin() {
		return StatusCounts{}, fmt.Errorf(
			"listing counts: %w", core.ErrForbidden)
	}

	return s.repo.CountByStatus(ctx)
}

// MarkExpired runs the expiry sweep. Exposed on the admin surface instead
// of an in-process scheduler so operators control when it runs.
func (s *Service) MarkExpired(
	ctx context.Context,
	identity core.Identity,
) (int64, error) {
	if !identity.IsAdmin() {
		return 0, fmt.Errorf("expire listings: %w", core.ErrForbidden)
	}

	swept, err := s.repo.MarkExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		s.publisher.Publish(events.SubjectListingExpired, map[string]any{
			"count":       swept,
			"occurred_at": time.Now(),
		})
	}

	return swept, nil
}

func (s *Service) validateFields(
	province string,
	images, features []string,
	energyClass *string,
) error {
	if !ValidProvince(province) {
		return fmt.Errorf(
			"listing: unknown province %q: %w",
			province, core.ErrInvalidInput,
		)
	}

	if len(images) > s.cfg.MaxImages {
		return fmt.Errorf(
			"listing: at most %d images allowed: %w",
			s.cfg.MaxImages, core.ErrInvalidInput,
		)
	}

	for _, f := range features {
		if !ValidFeature(f) {
			return fmt.Errorf(
				"listing: unknown feature %q: %w",
				f, core.ErrInvalidInput,
			)
		}
	}

	if energyClass != nil && *energyClass != "" &&
		!ValidEnergyClass(*energyClass) {
		return fmt.Errorf(
			"listing: unknown energy class %q: %w",
			*energyClass, core.ErrInvalidInput,
		)
	}

	return nil
}

func applyUpdate(l *Listing, req UpdateListingRequest) {
	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Type != nil {
		l.Type = *req.Type
	}
	if req.Category != nil {
		l.Category = *req.Category
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Location != nil {
		l.Location = *req.Location
	}
	if req.City != nil {
		l.City = *req.City
	}
	if req.Province != nil {
		l.Province = *req.Province
	}
	if req.Address != nil {
		l.Address = req.Address
	}
	if req.Images != nil {
		l.Images = pq.StringArray(*req.Images)
	}
	if req.Surface != nil {
		l.Surface = req.Surface
	}
	if req.Rooms != nil {
		l.Rooms = req.Rooms
	}
	if req.Bathrooms != nil {
		l.Bathrooms = req.Bathrooms
	}
	if req.Floor != nil {
		l.Floor = req.Floor
	}
	if req.EnergyClass != nil {
		l.EnergyClass = req.EnergyClass
	}
	if req.Features != nil {
		l.Features = pq.StringArray(*req.Features)
	}
}
