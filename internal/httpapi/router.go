package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func idFromPath(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// NewRouter wires the routes of spec.md §6. The checkout-session and
// order groups carry the mandatory-header check, version negotiation,
// and request logging; the discovery, testing, and inbound-webhook
// endpoints have their own narrower gates.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "UCP-Agent", "Request-Signature", "Idempotency-Key", "Request-Id", "Simulation-Secret"},
		AllowCredentials: false,
	}))

	r.Route("/checkout-sessions", func(r chi.Router) {
		r.Use(requireHeaders)
		r.Use(h.negotiateVersion)
		r.Use(h.logRequest(idFromPath))

		r.Post("/", h.CreateCheckout)
		r.Get("/{id}", h.GetCheckout)
		r.Put("/{id}", h.UpdateCheckout)
		r.Post("/{id}/complete", h.CompleteCheckout)
		r.Post("/{id}/cancel", h.CancelCheckout)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(requireHeaders)
		r.Use(h.negotiateVersion)
		r.Use(h.logRequest(idFromPath))

		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}", h.UpdateOrder)
	})

	r.Post("/testing/simulate-shipping/{id}", h.SimulateShipping)
	r.Post("/webhooks/partners/{pid}/events/order", h.InboundOrderEvent)
	r.Get("/.well-known/ucp", h.Discovery)

	r.Route("/dev/scenarios", func(r chi.Router) {
		r.Get("/", h.ListScenarios)
		r.Post("/load", h.LoadScenario)
	})

	return r
}
