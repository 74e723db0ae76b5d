// AngelaMos | 2026
// logging_test.go

package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverer(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("panic becomes a json 500", func(t *testing.T) {
		panicking := http.HandlerFunc(
			func(http.ResponseWriter, *http.Request) {
				panic("boom")
			},
		)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/listings", nil)

		require.NotPanics(t, func() {
			Recoverer(logger)(panicking).ServeHTTP(rec, req)
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "application/json",
			rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"internal_error"`)
	})

	t.Run("healthy handler passes through", func(t *testing.T) {
		next := http.HandlerFunc(
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/listings", nil)

		Recoverer(logger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
