// AngelaMos | 2026
// handler.go

package rolerequest

import (
	"encoding/json"
	"net/http"
	"strconv"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, activeOnly func(http.Handler) http.Handler,
) {
	r.Route("/role-requests", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/mine", h.GetMine)

		r.Group(func(r chi.Router) {
			r.Use(activeOnly)
			r.Post("/", h.Submit)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/role-requests", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAll)
		r.Get("/pending", h.ListPending)
		r.Post("/{requestID}/approve", h.Approve)
		r.Post("/{requestID}/reject", h.Reject)
		r.Put("/{requestID}/notes", h.EditNotes)
		r.Delete("/{requestID}", h.Delete)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.Submit(r.Context(), identity, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToRoleRequestResponse(request))
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	requests, err := h.service.GetMine(r.Context(), identity)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRoleRequestResponseList(requests))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	params := parseListParams(r)
	params.Status = r.URL.Query().Get("status")

	requests, total, err := h.service.ListAll(r.Context(), identity, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w,
		ToRoleRequestResponseList(requests),
		params.Page, params.PageSize, total)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	params := parseListParams(r)

	requests, total, err := h.service.ListPending(r.Context(), identity, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w,
		ToRoleRequestResponseList(requests),
		params.Page, params.PageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "requestID")

	request, err := h.service.Approve(r.Context(), identity, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRoleRequestResponse(request))
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "requestID")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.Reject(r.Context(), identity, id, req.AdminNotes)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRoleRequestResponse(request))
}

func (h *Handler) EditNotes(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "requestID")

	var req EditNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.EditNotes(
		r.Context(), identity, id, req.AdminNotes)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRoleRequestResponse(request))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "requestID")

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func parseListParams(r *http.Request) ListParams {
	return ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}
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
