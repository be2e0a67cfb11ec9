package v1handler

import (
	"net/http"
	"strconv"

	"leadscout/internal/scoring"
	"leadscout/pkg/controller"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"
	"leadscout/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// Lead is the API view of a lead: the stored record plus its opportunity
// score, recomputed on every read.
type Lead struct {
	domain.Lead

	Score scoring.Result `json:"score"`
}

func leadView(l domain.Lead) Lead {
	return Lead{Lead: l, Score: scoring.Evaluate(l)}
}

// LeadList is one page of leads.
type LeadList struct {
	Items      []Lead `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// UpdateLeadRequest carries the editable lead fields. Only present fields are
// changed; an empty string clears the field.
type UpdateLeadRequest struct {
	Stage        *domain.PipelineStage `json:"pipelineStage,omitempty"`
	ContactName  *string               `json:"contactName,omitempty"`
	ContactEmail *string               `json:"contactEmail,omitempty"`
	ContactPhone *string               `json:"contactPhone,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
}

// CreateLead adds one manually supplied business as a lead. The payload goes
// through the same classification and normalization as discovered candidates
// and a successful add consumes one unit of discovery budget.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req domain.DiscoveryCandidate
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode request"))

		return
	}

	lead, err := h.deps.Discoverer.AddLead(r.Context(), controller.GetUserID(r.Context()), req)
	if err != nil {
		renderError(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, leadView(*lead))
}

// ListLeads returns a page of the caller's leads, optionally filtered by
// pipeline stage and paginated with an RFC3339 cursor.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	limit := uint(DefaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			renderError(w, r, serrors.With(serrors.ErrBadRequest, "invalid limit %q", raw))

			return
		}
		limit = min(uint(parsed), MaxLimit)
	}

	leads, nextCursor, err := h.deps.Discoverer.UserLeads(r.Context(),
		controller.GetUserID(r.Context()),
		domain.PipelineStage(r.URL.Query().Get("stage")),
		r.URL.Query().Get("cursor"),
		limit)
	if err != nil {
		renderError(w, r, err)

		return
	}

	resp := LeadList{Items: make([]Lead, 0, len(leads)), NextCursor: nextCursor}
	for i := range leads {
		resp.Items = append(resp.Items, leadView(leads[i]))
	}

	render.JSON(w, r, resp)
}

// GetLead returns one lead with its current score.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		renderError(w, r, err)

		return
	}

	lead, err := h.deps.Discoverer.Lead(r.Context(), controller.GetUserID(r.Context()), id)
	if err != nil {
		renderError(w, r, err)

		return
	}

	render.JSON(w, r, leadView(*lead))
}

// UpdateLead applies pipeline-stage and contact edits to a lead.
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		renderError(w, r, err)

		return
	}

	var req UpdateLeadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode request"))

		return
	}

	lead, err := h.deps.Discoverer.UpdateLead(r.Context(), controller.GetUserID(r.Context()), id, storage.LeadUpdates{
		Stage:        req.Stage,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		renderError(w, r, err)

		return
	}

	render.JSON(w, r, leadView(*lead))
}

// DeleteLead soft-deletes a lead. The budget already spent on it is not refunded.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		renderError(w, r, err)

		return
	}

	if err := h.deps.Discoverer.DeleteLead(r.Context(), controller.GetUserID(r.Context()), id); err != nil {
		renderError(w, r, err)

		return
	}

	render.NoContent(w, r)
}

func leadID(r *http.Request) (domain.LeadID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		return domain.LeadID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid lead ID")
	}

	return domain.LeadID(id), nil
}
