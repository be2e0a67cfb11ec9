package v1handler

import (
	"net/http"
	"time"

	"leadscout/pkg/controller"
	"leadscout/pkg/domain"

	"github.com/go-chi/render"
)

// PlanResponse is the caller's subscription tier and current monthly usage.
type PlanResponse struct {
	Status          domain.PlanStatus `json:"planStatus"`
	DiscoveriesUsed int               `json:"discoveriesUsed"`
	DiscoveryLimit  int               `json:"discoveryLimit"`
	Remaining       int               `json:"remaining"`
	UsageResetDate  time.Time         `json:"usageResetDate"`
}

// GetPlan returns the caller's plan and usage, provisioning the free-tier
// record on first contact.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.deps.Guard.CurrentPlan(r.Context(), h.deps.Storage, controller.GetUserID(r.Context()))
	if err != nil {
		renderError(w, r, err)

		return
	}

	render.JSON(w, r, PlanResponse{
		Status:          plan.Status,
		DiscoveriesUsed: plan.DiscoveriesUsed,
		DiscoveryLimit:  plan.DiscoveryLimit,
		Remaining:       plan.Remaining(),
		UsageResetDate:  plan.UsageResetDate,
	})
}
