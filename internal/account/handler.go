// AngelaMos | 2026
// handler.go

package account

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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.With(activeOnly).Put("/me", h.UpdateMe)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	user, err := h.service.GetMe(r.Context(), identity)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateMe(r.Context(), identity, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/role", h.SetRole)
		r.Put("/{userID}/status", h.SetStatus)
		r.Post("/{userID}/degrade", h.Degrade)
		r.Delete("/{userID}", h.DeleteAccount)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
		Status:   r.URL.Query().Get("status"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), identity, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	targetID := chi.URLParam(r, "userID")

	user, err := h.service.GetUser(r.Context(), identity, targetID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	targetID := chi.URLParam(r, "userID")

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.SetRole(r.Context(), identity, targetID, req.Role)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	targetID := chi.URLParam(r, "userID")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.SetStatus(
		r.Context(),
		identity,
		targetID,
		req.Status,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) Degrade(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	targetID := chi.URLParam(r, "userID")

	user, err := h.service.Degrade(r.Context(), identity, targetID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := h.service.DeleteAccount(r.Context(), identity, targetID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
