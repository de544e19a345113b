package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

const requestTimeout = 15 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(requestTimeout))

			r.Get("/catalog", s.handleGetCatalog)
			r.Post("/catalog/reload", s.handleReloadCatalog)
			r.Get("/users", s.handleListUsers)
		})

		r.Route("/users/{userID}/progress", func(r chi.Router) {
			// The event stream holds its connection open, so it stays
			// outside the timeout wrapper.
			r.Get("/events", s.handleProgressEvents)

			r.Group(func(r chi.Router) {
				r.Use(timeoutMiddleware(requestTimeout))

				r.Get("/", s.handleGetProgress)
				r.Delete("/", s.handleResetProgress)
				r.Post("/attempts", s.handleRecordAttempt)
				r.Get("/attempts", s.handleGetAttempts)
				// Topic IDs span path segments ("scales/major"), so the
				// completion route is a catch-all.
				r.Post("/topics/*", s.handleCompleteTopic)
				r.Get("/sections", s.handleSectionOverview)
				r.Post("/sections/{sectionID}/complete", s.handleCompleteSection)
				r.Put("/sections/{sectionID}", s.handleSyncSection)
				r.Get("/stats", s.handleStats)
			})
		})
	})

	return r
}
