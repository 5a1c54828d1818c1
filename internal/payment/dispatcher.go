/*
Package payment implements the payment dispatcher (C4, spec.md §4.7): a
polymorphic handler registry that validates a selected instrument and
accepts or rejects a charge attempt, recast as a small strategy interface
rather than a single mock class, with named constructors per handler.
*/
package payment

import (
	"context"

	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// Attempt is a charge attempt handed to a Handler.
type Attempt struct {
	Instrument  ucp.PaymentInstrument
	RiskSignals ucp.RiskSignals
	Ap2         ucp.Ap2Mandate
}

// Handler validates a selected instrument and decides whether to accept
// the charge. A non-nil error is always a *ucperr.Error with code
// PAYMENT_FAILED or INVALID_REQUEST.
type Handler interface {
	Charge(ctx context.Context, attempt Attempt) error
}

// Dispatcher routes a charge attempt to the handler named by the
// instrument's HandlerID.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher constructs a Dispatcher with the three handlers the core
// ships (spec.md §4.7 table).
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: map[string]Handler{
			"mock_payment_handler": mockHandler{},
			"google_pay":           acceptAllHandler{},
			"shop_pay":             acceptAllHandler{},
		},
	}
}

// Charge validates preconditions (spec.md §4.7: instruments non-empty,
// selected instrument resolves, credential present) then dispatches to
// the named handler. An unknown handler id is INVALID_REQUEST, never
// PAYMENT_FAILED (spec.md §4.7 closing line).
func (d *Dispatcher) Charge(ctx context.Context, payment ucp.Payment, risk ucp.RiskSignals, ap2 ucp.Ap2Mandate) error {
	if len(payment.Instruments) == 0 {
		return ucperr.InvalidRequest("no payment instruments on checkout")
	}
	instrument, ok := payment.SelectedInstrument()
	if !ok {
		return ucperr.InvalidRequest("selected_instrument_id does not resolve to an instrument")
	}
	if instrument.Credential == nil {
		return ucperr.InvalidRequest("selected instrument carries no credential")
	}

	handler, ok := d.handlers[instrument.HandlerID]
	if !ok {
		return ucperr.InvalidRequest("unknown payment handler %q", instrument.HandlerID)
	}

	return handler.Charge(ctx, Attempt{Instrument: instrument, RiskSignals: risk, Ap2: ap2})
}
