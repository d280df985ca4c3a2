package webhook

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-api/internal/common"
)

// AcceptedBody is the literal body the gateway expects for a processed batch.
const AcceptedBody = "[accepted]"

// Handler receives notification batches from the gateway.
type Handler struct {
	Dispatcher *Dispatcher
	Logger     zerolog.Logger
}

// Notifications decodes the batch, runs the dispatcher once and writes
// exactly one response: 200 "[accepted]" or 401 on the first invalid item.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	var batch Batch
	if err := common.DecodeJSON(r, &batch); err != nil {
		h.Logger.Warn().Err(err).Msg("malformed webhook batch")
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed notification batch", nil)
		return
	}

	verdict := h.Dispatcher.Process(batch)
	if !verdict.Accepted() {
		common.Text(w, http.StatusUnauthorized, "Invalid HMAC signature")
		return
	}
	common.Text(w, http.StatusOK, AcceptedBody)
}
