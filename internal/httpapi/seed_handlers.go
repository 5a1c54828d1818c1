package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ucp-merchant/core/internal/seed"
)

// ListScenarios handles GET /dev/scenarios: the fixture sets internal/seed
// knows how to load.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, seed.Scenarios)
}

// LoadScenario handles POST /dev/scenarios/load: {"scenario_id": "..."}
// resets the catalog/transaction fixtures to a named scenario.
// Development tooling only — not part of the checkout core's command
// surface and carries none of its idempotency/header requirements.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body", Code: "INVALID_REQUEST"})
		return
	}

	loader := seed.NewLoader(h.Engine.Catalog, h.Tx)
	if err := loader.Load(r.Context(), body.ScenarioID); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}
