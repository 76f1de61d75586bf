package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"outfit-advisor/internal/common/observability"
)

// NewRouter assembles the full HTTP surface.
func NewRouter(s *Server, obs *observability.Observability) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(requestID)
	r.Use(requestLogger(s.logger, obs))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/quick-analyze", s.handleQuickAnalyze)
		r.Post("/clothing-images", s.handleClothingImages)
		r.Get("/occasions", s.handleOccasions)
		r.Get("/styles", s.handleStyles)
	})

	return r
}
