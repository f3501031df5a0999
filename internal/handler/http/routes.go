package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(h.withTraceID, h.withLogging, middleware.Recoverer)

	router.Get("/api/version", h.getServerVersion)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Use(h.withTimeout)
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/refresh", h.refresh)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/records/changes", h.changes)

		r.Group(func(r chi.Router) {
			r.Use(h.withTimeout)
			r.Get("/api/auth/session", h.session)
			r.Get("/api/records/", h.listRecords)
			r.Post("/api/records/", h.saveRecord)
			r.Delete("/api/records/{id}", h.deleteRecord)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
