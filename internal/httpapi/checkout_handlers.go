package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ucp-merchant/core/internal/ucp"
)

// CreateCheckout handles POST /checkout-sessions.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req ucp.CheckoutCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body", Code: "INVALID_REQUEST"})
		return
	}

	result, err := h.Engine.Create(r.Context(), req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result.Status, result.Session)
}

// GetCheckout handles GET /checkout-sessions/{id}.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.Engine.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// UpdateCheckout handles PUT /checkout-sessions/{id}.
func (h *Handler) UpdateCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ucp.CheckoutUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body", Code: "INVALID_REQUEST"})
		return
	}

	result, err := h.Engine.Update(r.Context(), id, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result.Status, result.Session)
}

// CompleteCheckout handles POST /checkout-sessions/{id}/complete.
func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ucp.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body", Code: "INVALID_REQUEST"})
		return
	}

	result, err := h.Engine.Complete(r.Context(), id, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result.Status, result.Session)
}

// CancelCheckout handles POST /checkout-sessions/{id}/cancel.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.Engine.Cancel(r.Context(), id, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result.Status, result.Session)
}
