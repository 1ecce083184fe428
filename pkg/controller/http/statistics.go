package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
)

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.uc.Complaint.ListDepartments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if departments == nil {
		departments = []*model.DepartmentEntry{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"departments": departments})
}

func (s *Server) departmentStats(w http.ResponseWriter, r *http.Request) {
	department := types.Department(chi.URLParam(r, "department"))

	snapshot, err := s.uc.Statistics.Aggregate(r.Context(), department)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) allStats(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.uc.Statistics.AggregateAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"departments": snapshots})
}
