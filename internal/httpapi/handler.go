/*
Package httpapi implements the HTTP boundary (C8, spec.md §6): chi
routing, mandatory-header validation, UCP-Agent version negotiation, the
error envelope, and the request log insert that precedes dispatch to the
checkout engine.

A Handler struct holds its dependencies, one method per endpoint,
writeJSON/writeDomainError/writeMissingHeader helpers, and chi.URLParam
for path parameters.
*/
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ucp-merchant/core/internal/checkout"
	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// Handler holds the dependencies every endpoint needs.
type Handler struct {
	Engine           *checkout.Engine
	Tx               *txstore.Store
	ServerVersion    string // ISO date this server implements (§6 version negotiation)
	SimulationSecret string
	ShopID           string
}

// NewHandler constructs a Handler.
func NewHandler(engine *checkout.Engine, tx *txstore.Store, serverVersion, simulationSecret, shopID string) *Handler {
	return &Handler{
		Engine:           engine,
		Tx:               tx,
		ServerVersion:    serverVersion,
		SimulationSecret: simulationSecret,
		ShopID:           shopID,
	}
}

// errorResponse is the §6 error envelope: {detail, code}.
type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDomainError serialises err via the §6 envelope, using the status
// and code carried on a *ucperr.Error, or 500/INTERNAL_ERROR for anything
// else (a defensive fallback — every engine error should already be a
// *ucperr.Error).
func writeDomainError(w http.ResponseWriter, err error) {
	if ucpErr, ok := ucperr.As(err); ok {
		writeJSON(w, ucpErr.Status, errorResponse{Detail: ucpErr.Message, Code: string(ucpErr.Code)})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error", Code: string(ucperr.CodeInternal)})
}

func writeMissingHeader(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Detail: "missing required header " + name,
		Code:   "INVALID_REQUEST",
	})
}
