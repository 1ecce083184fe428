package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/usecase"
)

type createComplaintRequest struct {
	Description   string `json:"description"`
	Department    string `json:"department"`
	UserID        string `json:"user_id"`
	AttachmentRef string `json:"attachment_ref"`
}

type transitionRequest struct {
	Status        string        `json:"status"`
	EstimatedDays estimateInput `json:"estimated_days"`
}

// estimateInput accepts estimated_days as a JSON number or a string typed into
// an operator form. Validation is left to model.ParseEstimatedDays.
type estimateInput string

func (e *estimateInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*e = ""
	case strings.HasPrefix(raw, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*e = estimateInput(str)
	default:
		*e = estimateInput(raw)
	}
	return nil
}

type deriveRequest struct {
	Department string `json:"department"`
}

type adhereRequest struct {
	UserID string `json:"user_id"`
}

type similarRequest struct {
	Description string `json:"description"`
}

func complaintID(r *http.Request) (types.ComplaintID, error) {
	raw := chi.URLParam(r, "id")
	id, err := types.ParseComplaintID(raw)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(errBadRequest, "invalid complaint ID", goerr.V("id", raw))
	}
	return id, nil
}

func (s *Server) createComplaint(w http.ResponseWriter, r *http.Request) {
	var req createComplaintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.uc.Complaint.CreateComplaint(r.Context(), usecase.CreateComplaintInput{
		Description:   req.Description,
		Department:    types.Department(req.Department),
		OwnerUserID:   types.UserID(req.UserID),
		AttachmentRef: req.AttachmentRef,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toComplaintResponse(created))
}

func (s *Server) listComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var opts []interfaces.ListComplaintOption
	if d := q.Get("department"); d != "" {
		opts = append(opts, interfaces.WithDepartment(types.Department(d)))
	}
	if raw := q.Get("status"); raw != "" {
		status, err := types.ParseComplaintStatus(raw)
		if err != nil {
			writeError(w, r, goerr.Wrap(errBadRequest, "invalid status filter", goerr.V("status", raw)))
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if o := q.Get("owner"); o != "" {
		opts = append(opts, interfaces.WithOwner(types.UserID(o)))
	}

	views, err := s.uc.Complaint.ListComplaints(r.Context(), opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]*complaintResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toComplaintViewResponse(v))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"complaints": resp})
}

func (s *Server) getComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := complaintID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.uc.Complaint.GetComplaint(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toComplaintResponse(c))
}

func (s *Server) deleteComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := complaintID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.uc.Complaint.DeleteComplaint(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) transitionComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := complaintID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	next, err := types.ParseComplaintStatus(req.Status)
	if err != nil {
		writeError(w, r, goerr.Wrap(model.ErrInvalidTransition, "unknown status", goerr.V("status", req.Status)))
		return
	}
	days, err := model.ParseEstimatedDays(string(req.EstimatedDays))
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.uc.Complaint.Transition(r.Context(), id, next, days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toComplaintResponse(updated))
}

func (s *Server) deriveComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := complaintID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req deriveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.uc.Complaint.DeriveDepartment(r.Context(), id, types.Department(req.Department))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toComplaintResponse(updated))
}

func (s *Server) adhereComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := complaintID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req adhereRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID == "" {
		writeError(w, r, goerr.Wrap(errBadRequest, "user_id is required"))
		return
	}

	if err := s.uc.Complaint.Adhere(r.Context(), types.UserID(req.UserID), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	similar, err := s.uc.Complaint.FindSimilar(r.Context(), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]*complaintResponse, 0, len(similar))
	for _, c := range similar {
		resp = append(resp, toComplaintResponse(c))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"complaints": resp})
}
