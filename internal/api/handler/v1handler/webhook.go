package v1handler

import (
	"io"
	"net/http"

	"leadscout/pkg/serrors"

	"github.com/go-chi/render"
)

// maxWebhookBody caps the size of an inbound billing event payload.
const maxWebhookBody = 1 << 20

// WebhookResponse reports how a billing event was handled.
type WebhookResponse struct {
	Outcome string `json:"outcome"`
}

// BillingWebhook receives billing events from the payment processor. The raw
// body is verified against the signature header before anything is parsed.
// Duplicates and unknown customers are acknowledged with 200 so the processor
// stops re-sending.
func (h *Handler) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		renderError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body"))

		return
	}

	outcome, err := h.deps.Reconciler.ProcessEvent(r.Context(), body, r.Header.Get(h.options.SignatureHeader))
	if err != nil {
		renderError(w, r, err)

		return
	}

	render.JSON(w, r, WebhookResponse{Outcome: string(outcome)})
}
