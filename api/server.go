/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logging:    One zerolog line per request
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Timeout:    Bounds slow requests
  5. CORS:       Cross-origin requests for a frontend

ROUTE GROUPS:
  /health               Liveness
  /api/banks/*          Bank management
  /api/deposits/*       Deposit management and accrual schedules
  /api/suggestions      Reallocation advice
  /api/timeline         Timeline and summary
  /api/allocation       Per-bank shares
  /api/staleness        Data age check
  /api/portfolio/*      Import / export
  /api/scenarios/*      Demo portfolios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(h.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/banks", func(r chi.Router) {
			r.Get("/", h.ListBanks)
			r.Post("/", h.CreateBank)
			r.Get("/{name}", h.GetBank)
			r.Delete("/{name}", h.DeleteBank)
		})

		r.Route("/deposits", func(r chi.Router) {
			r.Get("/", h.ListDeposits)
			r.Post("/", h.CreateDeposit)
			r.Get("/{id}", h.GetDeposit)
			r.Delete("/{id}", h.DeleteDeposit)
			r.Get("/{id}/schedule", h.GetSchedule)
		})

		r.Get("/suggestions", h.GetSuggestions)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/allocation", h.GetAllocation)
		r.Get("/staleness", h.GetStaleness)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", h.ExportPortfolio)
			r.Post("/import", h.ImportPortfolio)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
