// AngelaMos | 2026
// handler.go

package settings

import (
	"encoding/json"
	"net/http"

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

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/settings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Put("/", h.Update)
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSettingsResponse(settings))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	settings, err := h.service.Update(r.Context(), identity, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSettingsResponse(settings))
}
