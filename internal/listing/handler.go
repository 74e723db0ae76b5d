// AngelaMos | 2026
// handler.go

package listing

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/casannunci/backend/internal/core"
	"github.com/casannunci/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterPublicRoutes mounts the anonymous browse surface. OptionalAuth lets
// owners and admins see their unpublished rows through the same endpoints.
func (h *Handler) RegisterPublicRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/listings", func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/", h.Browse)
		r.Get("/{listingID}", h.Get)
	})
}

// RegisterOwnerRoutes mounts the advertiser dashboard under /my/listings.
func (h *Handler) RegisterOwnerRoutes(
	r chi.Router,
	authenticator, activeOnly, advertiserOnly func(http.Handler) http.Handler,
) {
	r.Route("/my/listings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(activeOnly)
		r.Use(advertiserOnly)

		r.Get("/", h.ListMine)
		r.Post("/", h.Create)
		r.Put("/{listingID}", h.Update)
		r.Delete("/{listingID}", h.Delete)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/listings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListForModeration)
		r.Get("/counts", h.CountByStatus)
		r.Post("/expire", h.MarkExpired)
		r.Post("/{listingID}/approve", h.Approve)
		r.Post("/{listingID}/reject", h.Reject)
	})
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	listings, total, err := h.service.Browse(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w,
		ToListingResponseList(listings),
		params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "listingID")

	l, err := h.service.Get(r.Context(), identity, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	// Only live public views count; owners checking their own listing
	// do not inflate the counter.
	if l.IsLive(time.Now()) && !l.IsOwnedBy(identity.ID) {
		h.service.IncrementView(r.Context(), id)
		l.Views++
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	params := parseListParams(r)
	params.Status = r.URL.Query().Get("status")

	listings, total, err := h.service.ListMine(r.Context(), identity, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w,
		ToListingResponseList(listings),
		params.Page, params.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, err := h.service.Create(r.Context(), identity, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToListingResponse(l))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "listingID")

	var req UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	l, err := h.service.Update(r.Context(), identity, id, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "listingID")

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListForModeration(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	params := parseListParams(r)
	params.Status = r.URL.Query().Get("status")

	listings, total, err := h.service.ListForModeration(
		r.Context(), identity, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w,
		ToListingResponseList(listings),
		params.Page, params.PageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "listingID")

	l, err := h.service.Approve(r.Context(), identity, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "listingID")

	// Body is optional; a bare POST rejects without a note.
	var req RejectListingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			core.BadRequest(w, core.FormatValidationError(err))
			return
		}
	}

	l, err := h.service.Reject(r.Context(), identity, id, req.Note)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToListingResponse(l))
}

func (h *Handler) CountByStatus(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	counts, err := h.service.CountByStatus(r.Context(), identity)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, counts)
}

func (h *Handler) MarkExpired(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	swept, err := h.service.MarkExpired(r.Context(), identity)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]int64{"expired": swept})
}

func parseListParams(r *http.Request) ListParams {
	q := r.URL.Query()

	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   q.Get("search"),
		Type:     q.Get("type"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Province: q.Get("province"),
	}

	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			params.MinPrice = &f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			params.MaxPrice = &f
		}
	}

	return params
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return defaultVal
	}

	return n
}
