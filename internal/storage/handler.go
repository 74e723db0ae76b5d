// AngelaMos | 2026
// handler.go

package storage

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casannunci/backend/internal/config"
	"github.com/casannunci/backend/internal/core"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type Handler struct {
	uploader Uploader
	maxBytes int64
}

func NewHandler(uploader Uploader, cfg config.StorageConfig) *Handler {
	return &Handler{
		uploader: uploader,
		maxBytes: cfg.MaxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, activeOnly, advertiserOnly func(http.Handler) http.Handler,
) {
	r.Route("/uploads", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(activeOnly)
		r.Use(advertiserOnly)

		r.Post("/images", h.UploadImage)
	})
}

// UploadImage streams one multipart image into the bucket and returns its
// public URL. The client accumulates URLs and persists them with the listing.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		core.BadRequest(w, "missing or oversized image file")
		return
	}
	defer file.Close() //nolint:errcheck // read-only close

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		core.Unprocessable(w, "image must be jpeg, png or webp")
		return
	}

	key := ObjectKey("listings", header.Filename)

	url, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, UploadResponse{URL: url, Key: key})
}

type UploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
