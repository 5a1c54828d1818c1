package checkout

import (
	"context"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// Complete runs the atomic complete path of spec.md §4.6: idempotency
// guard, payment dispatch, fulfillment preconditions, atomic reserve per
// line item, order materialisation, and commit. The webhook notification
// fires only after the enclosing transaction has committed successfully
// (spec.md §4.6 step 9 "After commit, best-effort notify").
func (e *Engine) Complete(ctx context.Context, id string, req ucp.CompleteRequest, idemKey string) (*CommandResult, error) {
	var result *CommandResult
	var order *ucp.Order

	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		hashPayload := struct {
			Payment     *ucp.PaymentCreate `json:"payment"`
			RiskSignals ucp.RiskSignals    `json:"risk_signals"`
			Ap2         ucp.Ap2Mandate     `json:"ap2"`
		}{req.PaymentData, req.RiskSignals, req.Ap2}

		r, err := runGuarded(ctx, tx, idemKey, hashPayload, 200, func() (*ucp.CheckoutSession, error) {
			session, o, err := e.complete(ctx, tx, id, req)
			order = o
			return session, err
		})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order != nil {
		e.Webhook.Notify(result.Session, order, ucp.EventOrderPlaced)
	}
	return result, nil
}

func (e *Engine) complete(ctx context.Context, tx *txstore.Tx, id string, req ucp.CompleteRequest) (*ucp.CheckoutSession, *ucp.Order, error) {
	session, ok, err := tx.LoadCheckout(ctx, id)
	if err != nil {
		return nil, nil, ucperr.Internal(err)
	}
	if !ok {
		return nil, nil, ucperr.NotFound("checkout session %q not found", id)
	}
	if session.Status != ucp.StatusReadyForComplete {
		return nil, nil, ucperr.CheckoutNotModifiable("cannot complete checkout in state %q", session.Status)
	}

	// Step 3: dispatch payment. A fresh instrument carried on the
	// complete request takes precedence over whatever was selected at
	// update time; absent one, the session's existing selection is used.
	payment := session.Payment
	if req.PaymentData != nil {
		instrument := ucp.PaymentInstrument{
			ID:         newID(),
			HandlerID:  req.PaymentData.HandlerID,
			Credential: req.PaymentData.Credential,
		}
		payment = ucp.Payment{
			Instruments:          []ucp.PaymentInstrument{instrument},
			SelectedInstrumentID: instrument.ID,
		}
	}
	if err := e.Payment.Charge(ctx, payment, req.RiskSignals, req.Ap2); err != nil {
		// Session stays at ready_for_complete (spec.md §4.6 step 3) — not
		// persisted here, so the failed attempt leaves no trace beyond
		// the idempotency record runGuarded would otherwise write; since
		// we return an error, runGuarded never reaches Persist.
		return nil, nil, err
	}

	// Step 4: fulfillment completion preconditions.
	if err := validateFulfillmentForComplete(session); err != nil {
		return nil, nil, err
	}

	// Step 5: atomic reserve per line item.
	for _, li := range session.LineItems {
		ok, err := tx.ReserveStock(ctx, li.Item.ProductID, li.Quantity)
		if err != nil {
			return nil, nil, ucperr.Internal(err)
		}
		if !ok {
			return nil, nil, ucperr.OutOfStock(409, "insufficient stock for product %q", li.Item.ProductID)
		}
	}

	// Step 6: materialise the order.
	order := materializeOrder(session, e.BaseURL)

	// Step 7: land the session in its terminal state.
	session.Status = ucp.StatusCompleted
	session.Order = &ucp.OrderRef{ID: order.ID, PermalinkURL: order.PermalinkURL}
	session.Payment = payment

	// Step 8: persist session and order in the same transaction.
	if err := tx.SaveOrder(ctx, order); err != nil {
		return nil, nil, ucperr.Internal(err)
	}
	if err := tx.SaveCheckout(ctx, session); err != nil {
		return nil, nil, ucperr.Internal(err)
	}

	return session, order, nil
}

// validateFulfillmentForComplete implements spec.md §4.2's complete
// clause. The literal rule names shipping methods specifically; a
// checkout with no shipping method at all (pure pickup/digital) has
// nothing to validate here and is waved through (see DESIGN.md).
func validateFulfillmentForComplete(session *ucp.CheckoutSession) error {
	if session.Fulfillment == nil {
		return nil
	}

	var hasShipping bool
	for _, method := range session.Fulfillment.Methods {
		if method.Type != ucp.FulfillmentShipping {
			continue
		}
		hasShipping = true

		if _, ok := method.SelectedDestination(); !ok {
			continue
		}
		for _, group := range method.Groups {
			if _, ok := group.SelectedOption(); ok {
				return nil
			}
		}
	}
	if !hasShipping {
		return nil
	}
	return ucperr.InvalidRequest("checkout has a shipping method without a resolved destination and selected option")
}
