package v1handler

import (
	"net/http"

	"leadscout/pkg/controller"
	"leadscout/pkg/domain"
	"leadscout/pkg/serrors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// CreateDiscoveryRequest is the payload for starting a discovery run.
type CreateDiscoveryRequest struct {
	// Query is the business search query, e.g. "plumbers".
	Query string `json:"query"`
	// Location optionally narrows the search, e.g. "Austin, TX".
	Location string `json:"location,omitempty"`
}

// DiscoveryResponse is a discovery run together with the leads it created.
type DiscoveryResponse struct {
	domain.DiscoveryRun

	Leads []Lead `json:"leads"`
}

// CreateDiscoveryResponse is the accepted run together with the caller's
// current budget usage.
type CreateDiscoveryResponse struct {
	domain.DiscoveryRun

	DiscoveriesUsed int `json:"discoveriesUsed"`
	DiscoveryLimit  int `json:"discoveryLimit"`
}

// CreateDiscovery starts a discovery run. The run is processed in the
// background; its record is returned immediately in the pending state.
func (h *Handler) CreateDiscovery(w http.ResponseWriter, r *http.Request) {
	var req CreateDiscoveryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode request"))

		return
	}

	userID := controller.GetUserID(r.Context())
	run, err := h.deps.Discoverer.StartRun(r.Context(), userID, req.Query, req.Location)
	if err != nil {
		renderError(w, r, err)

		return
	}

	plan, err := h.deps.Guard.CurrentPlan(r.Context(), h.deps.Storage, userID)
	if err != nil {
		renderError(w, r, err)

		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, CreateDiscoveryResponse{
		DiscoveryRun:    *run,
		DiscoveriesUsed: plan.DiscoveriesUsed,
		DiscoveryLimit:  plan.DiscoveryLimit,
	})
}

// GetDiscovery returns a run's current state and the leads it created so far.
func (h *Handler) GetDiscovery(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "discoveryID"))
	if err != nil {
		renderError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid discovery ID"))

		return
	}

	run, leads, err := h.deps.Discoverer.Run(r.Context(), controller.GetUserID(r.Context()), domain.RunID(id))
	if err != nil {
		renderError(w, r, err)

		return
	}

	resp := DiscoveryResponse{DiscoveryRun: *run, Leads: make([]Lead, 0, len(leads))}
	for i := range leads {
		resp.Leads = append(resp.Leads, leadView(leads[i]))
	}

	render.JSON(w, r, resp)
}
