package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-itinerary-builder/internal/api/planner"
	"github.com/FACorreiaa/go-itinerary-builder/internal/api/sites"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PlannerHandler *planner.HandlerImpl
	SitesHandler   *sites.HandlerImpl
	// RateLimitMiddleware guards the trip-building routes. May be nil.
	RateLimitMiddleware func(http.Handler) http.Handler
	AllowedOrigins      []string
}

// SetupRouter builds the API router. Server-wide middleware (request ID,
// logging, recovery) is applied by the caller before mounting it.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sites", cfg.SitesHandler.ListSites)

		r.Group(func(r chi.Router) {
			if cfg.RateLimitMiddleware != nil {
				r.Use(cfg.RateLimitMiddleware)
			}
			r.Post("/trips", cfg.PlannerHandler.CreateTrip)
		})
		r.Get("/trips/{tripID}", cfg.PlannerHandler.GetTrip)
	})

	return r
}
