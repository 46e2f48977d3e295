package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudshelf/storefront/internal/order"
)

type OrderHandler struct {
	resolver *order.Resolver
	logger   *log.Logger
}

func NewOrderHandler(resolver *order.Resolver, logger *log.Logger) *OrderHandler {
	return &OrderHandler{resolver: resolver, logger: logger}
}

// Get fetches the confirmation record from the authority. Upstream
// failures keep the authority's status and message so the confirmation
// page can show what actually happened.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	o, err := h.resolver.Resolve(r.Context(), orderID)
	if err != nil {
		var rErr *order.RetrievalError
		if errors.As(err, &rErr) {
			status := rErr.Status
			if status == 0 {
				status = http.StatusBadGateway
			}
			writeError(w, r, status, rErr.Message)
			return
		}
		h.logger.Printf("resolve order %s: %v", orderID, err)
		writeError(w, r, http.StatusInternalServerError, "failed to retrieve order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
