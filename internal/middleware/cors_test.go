package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("Wildcard", func(t *testing.T) {
		handler := middleware.CORS([]string{"*"})(next)

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Preflight", func(t *testing.T) {
		handler := middleware.CORS(nil)(next)

		req := httptest.NewRequest(http.MethodOptions, "/students", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("ListedOrigin", func(t *testing.T) {
		handler := middleware.CORS([]string{"https://app.example"})(next)

		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/students", nil)
		req.Header.Set("Origin", "https://other.example")
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
