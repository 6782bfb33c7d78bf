package handler

import (
	"net/http"

	"github.com/portfolio/backend/internal/repository"
)

// Handler serves the endpoints that are not tied to a resource.
type Handler struct {
	db          repository.DB
	frontendURL string
}

func New(db repository.DB, frontendURL string) *Handler {
	return &Handler{db: db, frontendURL: frontendURL}
}

// CORS allows the portfolio frontend to call the API. A frontendURL of "*"
// allows any origin without credentials.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.frontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if h.frontendURL != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Welcome handles GET /.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Portfolio API"})
}

// NotFound is the catch-all for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "Not found"})
}
