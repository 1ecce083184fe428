package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/grievance/pkg/usecase"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/complaints", func(r chi.Router) {
			r.Post("/", s.createComplaint)
			r.Get("/", s.listComplaints)
			r.Post("/similar", s.findSimilar)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getComplaint)
				r.Delete("/", s.deleteComplaint)
				r.Post("/status", s.transitionComplaint)
				r.Post("/department", s.deriveComplaint)
				r.Post("/adherents", s.adhereComplaint)
			})
		})

		r.Get("/departments", s.listDepartments)
		r.Get("/departments/{department}/stats", s.departmentStats)
		r.Get("/stats", s.allStats)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
