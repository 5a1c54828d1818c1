package checkout

import (
	"context"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// Update applies a partial update to a checkout session and reruns
// recompute+validate, landing the session at ready_for_complete or
// surfacing the relevant error (spec.md §4.2
// "ready_for_complete --update--> ready_for_complete (via incomplete)").
func (e *Engine) Update(ctx context.Context, id string, req ucp.CheckoutUpdate, idemKey string) (*CommandResult, error) {
	var result *CommandResult
	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		r, err := runGuarded(ctx, tx, idemKey, req, 200, func() (*ucp.CheckoutSession, error) {
			return e.update(ctx, tx, id, req)
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
	return result, nil
}

func (e *Engine) update(ctx context.Context, tx *txstore.Tx, id string, req ucp.CheckoutUpdate) (*ucp.CheckoutSession, error) {
	session, ok, err := tx.LoadCheckout(ctx, id)
	if err != nil {
		return nil, ucperr.Internal(err)
	}
	if !ok {
		return nil, ucperr.NotFound("checkout session %q not found", id)
	}
	if session.Status.IsTerminal() {
		return nil, ucperr.CheckoutNotModifiable("cannot update checkout in state %q", session.Status)
	}

	// A mutation on a ready_for_complete session first drops it back to
	// incomplete before recompute re-promotes it (spec.md §4.2's "via
	// incomplete" transition).
	session.Status = ucp.StatusIncomplete

	session.LineItems = applyLineItems(session.LineItems, req.LineItems)
	if req.Buyer != nil {
		session.Buyer = req.Buyer
	}
	fulfillment, err := mergeFulfillment(ctx, tx, session.Buyer, session.Fulfillment, req.Fulfillment)
	if err != nil {
		return nil, err
	}
	session.Fulfillment = fulfillment
	if req.Discounts != nil {
		if session.Discounts == nil {
			session.Discounts = &ucp.Discounts{}
		}
		session.Discounts.Codes = req.Discounts.Codes
	}
	if req.Payment != nil {
		session.Payment = paymentFromInput(*req.Payment)
	}
	if req.Platform != nil {
		session.Platform = &ucp.Platform{WebhookURL: req.Platform.WebhookURL}
	}

	if err := e.recomputeAndValidate(ctx, tx, session); err != nil {
		return nil, err
	}

	if err := tx.SaveCheckout(ctx, session); err != nil {
		return nil, ucperr.Internal(err)
	}
	return session, nil
}
