package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Akseler/landing/internal/calendar"
	httpmiddleware "github.com/Akseler/landing/internal/http/middleware"
	"github.com/Akseler/landing/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Calendar           *calendar.Handler
	SubmitLimiter      *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Calendar != nil {
		var submit func(http.Handler) http.Handler
		if cfg.SubmitLimiter != nil {
			submit = httpmiddleware.RateLimit(cfg.SubmitLimiter)
		}
		r.Mount("/api/calendar", cfg.Calendar.Routes(submit))
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
