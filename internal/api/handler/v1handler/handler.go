// Package v1handler implements the v1 HTTP API: discovery runs, the lead
// pipeline, plan status and the billing webhook.
package v1handler

import (
	"net/http"

	"leadscout/internal/billing"
	"leadscout/internal/config"
	"leadscout/internal/discovery"
	"leadscout/internal/quota"
	"leadscout/pkg/storage"

	"github.com/go-chi/chi/v5"
)

// DefaultLimit is the page size used when a list request does not specify one.
const DefaultLimit = 20

// MaxLimit caps the page size of list requests.
const MaxLimit = 100

// Options holds configuration for the v1 handlers.
type Options struct {
	// SignatureHeader is the request header carrying the billing event signature.
	SignatureHeader string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SignatureHeader: cfg.Billing.SignatureHeader,
	}
}

// Deps groups the services the v1 handlers dispatch to.
type Deps struct {
	Discoverer discovery.Discoverer
	Guard      quota.Guard
	Reconciler *billing.Reconciler
	Storage    storage.Storage
}

// Handler serves the v1 API routes.
type Handler struct {
	options Options
	deps    Deps
}

// New creates a Handler with the given dependencies.
func New(deps Deps, options Options) *Handler {
	return &Handler{
		options: options,
		deps:    deps,
	}
}

// Routes assembles the v1 router. The billing webhook authenticates with its
// own signature scheme; every other route requires a bearer token.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/billing/webhook", h.BillingWebhook)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/discoveries", h.CreateDiscovery)
		r.Get("/discoveries/{discoveryID}", h.GetDiscovery)

		r.Post("/leads", h.CreateLead)
		r.Get("/leads", h.ListLeads)
		r.Get("/leads/{leadID}", h.GetLead)
		r.Patch("/leads/{leadID}", h.UpdateLead)
		r.Delete("/leads/{leadID}", h.DeleteLead)

		r.Get("/plan", h.GetPlan)
	})

	return r
}
