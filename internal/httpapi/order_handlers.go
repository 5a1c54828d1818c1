package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ucp-merchant/core/internal/ucp"
)

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.Engine.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateOrder handles PUT /orders/{id} (spec.md §4.11 "update_order").
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var order ucp.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body", Code: "INVALID_REQUEST"})
		return
	}

	updated, err := h.Engine.UpdateOrder(r.Context(), id, &order)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SimulateShipping handles POST /testing/simulate-shipping/{id}, gated by
// the Simulation-Secret header (spec.md §6).
func (h *Handler) SimulateShipping(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Simulation-Secret") != h.SimulationSecret {
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: "invalid simulation secret", Code: "INVALID_REQUEST"})
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.Engine.ShipOrder(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shipped"})
}

// InboundOrderEvent handles POST /webhooks/partners/{pid}/events/order: a
// partner callback pushing an authoritative order snapshot
// (spec.md §6). Implemented last-writer-wins per spec.md §9 (no
// optimistic locking).
func (h *Handler) InboundOrderEvent(w http.ResponseWriter, r *http.Request) {
	var order ucp.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body", Code: "INVALID_REQUEST"})
		return
	}

	updated, err := h.Engine.UpdateOrder(r.Context(), order.ID, &order)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
