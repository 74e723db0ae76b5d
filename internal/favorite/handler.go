// AngelaMos | 2026
// handler.go

package favorite

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, activeOnly func(http.Handler) http.Handler,
) {
	r.Route("/favorites", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListMine)
		r.With(activeOnly).Post("/toggle", h.Toggle)
		r.With(activeOnly).Delete("/{favoriteID}", h.Remove)
	})
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	isFavorite, err := h.service.Toggle(r.Context(), identity, req.ListingID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToggleResponse{
		ListingID:  req.ListingID,
		IsFavorite: isFavorite,
	})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	favorites, err := h.service.ListMine(r.Context(), identity)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToFavoriteResponseList(favorites))
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := chi.URLParam(r, "favoriteID")

	if err := h.service.Remove(r.Context(), identity, id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
