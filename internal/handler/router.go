package handler

import (
	"net/http"

	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
)

// RouterConfig carries everything the API routes need.
type RouterConfig struct {
	DB             repository.DB
	ContactService service.ContactService
	FrontendURL    string
	Detail         ErrorDetail
	RateLimiter    *RateLimiter
	// RequireAuth wraps the admin routes.
	RequireAuth func(http.Handler) http.Handler
}

// NewRouter builds the API mux and its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	h := New(cfg.DB, cfg.FrontendURL)
	contactHandler := NewContactHandler(cfg.ContactService, cfg.Detail)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Welcome)
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/contact", contactHandler.Submit)
	mux.Handle("GET /api/contact", cfg.RequireAuth(http.HandlerFunc(contactHandler.List)))
	mux.HandleFunc("/", h.NotFound)

	var next http.Handler = mux
	if cfg.RateLimiter != nil {
		next = cfg.RateLimiter.Middleware(next)
	}
	next = h.CORS(next)
	next = SecurityHeaders(next)
	next = RequestLogger(next)
	return Recover(cfg.Detail)(next)
}
