package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/usecase"
	"github.com/secmon-lab/grievance/pkg/utils/errutil"
	"github.com/secmon-lab/grievance/pkg/utils/median"
	"github.com/secmon-lab/grievance/pkg/utils/safe"
)

// errBadRequest marks malformed request input
var errBadRequest = errors.New("bad request")

type complaintResponse struct {
	ID             int64      `json:"id"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Department     string     `json:"department"`
	OwnerUserID    string     `json:"owner_user_id"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	ResolutionDays *int       `json:"resolution_days"`
	AttachmentRef  string     `json:"attachment_ref,omitempty"`
	Version        int64      `json:"version"`
	Adherents      *int       `json:"adherents,omitempty"`
}

func toComplaintResponse(c *model.Complaint) *complaintResponse {
	return &complaintResponse{
		ID:             int64(c.ID),
		Description:    c.Description,
		Status:         c.Status.String(),
		Department:     c.Department.String(),
		OwnerUserID:    c.OwnerUserID.String(),
		CreatedAt:      c.CreatedAt,
		ResolvedAt:     c.ResolvedAt,
		ResolutionDays: c.ResolutionDays(),
		AttachmentRef:  c.AttachmentRef,
		Version:        c.Version,
	}
}

func toComplaintViewResponse(v *usecase.ComplaintView) *complaintResponse {
	resp := toComplaintResponse(v.Complaint)
	adherents := v.Adherents
	resp.Adherents = &adherents
	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

// statusOf maps domain and use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrComplaintNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAlreadyAdhered),
		errors.Is(err, usecase.ErrVersionConflict),
		errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidComplaint),
		errors.Is(err, model.ErrInvalidEstimate),
		errors.Is(err, model.ErrInvalidDerivation),
		errors.Is(err, usecase.ErrUnknownDepartment),
		errors.Is(err, median.ErrInvalidSample):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrClassifierNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, usecase.ErrInvalidClassification):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
