package checkout

import (
	"context"

	"github.com/ucp-merchant/core/internal/fulfillment"
	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// recomputeAndValidate runs recompute (spec.md §4.3) followed by
// inventory validation (spec.md §4.4), then lands the session at
// ready_for_complete on success. On failure the session is left
// unmodified by the caller (its in-memory fields may have been
// partially rewritten, but the caller never persists on error).
func (e *Engine) recomputeAndValidate(ctx context.Context, tx *txstore.Tx, session *ucp.CheckoutSession) error {
	if err := e.recompute(ctx, tx, session); err != nil {
		return err
	}
	if err := e.validateInventory(ctx, tx, session); err != nil {
		return err
	}
	session.Status = ucp.StatusReadyForComplete
	return nil
}

// recompute is the pure(-ish) six-step pass of spec.md §4.3: catalog
// price refresh, line totals, session subtotal seed, fulfillment
// options + selected-option totals, discount application, and the
// trailing grand total.
func (e *Engine) recompute(ctx context.Context, tx *txstore.Tx, session *ucp.CheckoutSession) error {
	// Step 1-2: reload catalog prices, compute per-line totals.
	var subtotal int64
	for i := range session.LineItems {
		li := &session.LineItems[i]
		product, err := e.Catalog.GetProduct(ctx, li.Item.ProductID)
		if err != nil {
			return ucperr.InvalidRequest("unknown product %q on line item %s", li.Item.ProductID, li.ID)
		}
		li.Item.Price = product.Price
		li.Item.Title = product.Title

		lineSubtotal := product.Price * int64(li.Quantity)
		li.Totals = []ucp.Total{
			{Type: ucp.TotalSubtotal, Amount: lineSubtotal},
			{Type: ucp.TotalTotal, Amount: lineSubtotal},
		}
		subtotal += lineSubtotal
	}

	// Step 3: seed session totals with the subtotal; grandTotal tracks
	// the running total through fulfillment and discount passes.
	totals := []ucp.Total{{Type: ucp.TotalSubtotal, Amount: subtotal}}
	grandTotal := subtotal

	// Step 4: fulfillment pass.
	if session.Fulfillment != nil {
		promotions, err := e.Catalog.ListActivePromotions(ctx)
		if err != nil {
			return ucperr.Internal(err)
		}

		for mi := range session.Fulfillment.Methods {
			method := &session.Fulfillment.Methods[mi]
			dest, ok := method.SelectedDestination()
			if !ok {
				continue
			}

			productIDs := productIDsForMethod(session, *method)
			options, err := e.Fulfillment.Evaluate(ctx, fulfillment.Input{
				Destination:      dest.Address,
				GrandTotal:       grandTotal,
				ProductIDs:       productIDs,
				ActivePromotions: promotions,
			})
			if err != nil {
				return ucperr.Internal(err)
			}

			if len(method.Groups) == 0 {
				method.Groups = []ucp.FulfillmentGroup{{
					ID:          newID(),
					LineItemIDs: method.LineItemIDs,
					Options:     options,
				}}
			} else {
				for gi := range method.Groups {
					method.Groups[gi].Options = options
				}
			}

			for _, group := range method.Groups {
				option, ok := group.SelectedOption()
				if !ok {
					continue
				}
				grandTotal += option.Total()
				totals = append(totals, ucp.Total{Type: ucp.TotalFulfillment, Amount: option.Total()})
			}
		}
	}

	// Step 5: discount pass, iterating codes in stored order.
	var applied []ucp.AppliedDiscount
	if session.Discounts != nil {
		codes, err := e.Catalog.GetDiscounts(ctx, session.Discounts.Codes)
		if err != nil {
			return ucperr.Internal(err)
		}
		for _, code := range session.Discounts.Codes {
			discount, ok := codes[code]
			if !ok {
				// Unknown codes are silently dropped (spec.md §4.3 step 5,
				// §9 open question).
				continue
			}

			var amount int64
			switch discount.Kind {
			case ucp.DiscountPercentage:
				amount = (grandTotal * discount.Value) / 100
			case ucp.DiscountFixedAmount:
				amount = discount.Value
			}
			if amount <= 0 {
				continue
			}

			grandTotal -= amount
			applied = append(applied, ucp.AppliedDiscount{
				Code:  discount.Code,
				Title: discount.Title,
				Amount: amount,
				Allocations: []ucp.Allocation{
					{Target: "$.totals[?(@.type=='subtotal')]", Amount: amount},
				},
			})
			totals = append(totals, ucp.Total{Type: ucp.TotalDiscount, Amount: amount})
		}
	}
	if session.Discounts != nil {
		session.Discounts.Applied = applied
	}

	// Step 6: trailing total.
	totals = append(totals, ucp.Total{Type: ucp.TotalTotal, Amount: grandTotal})
	session.Totals = totals

	return nil
}

// productIDsForMethod resolves a method's line_item_ids into the
// product ids they reference, for the evaluator's free-shipping
// eligibility check (spec.md §4.5 step 4).
func productIDsForMethod(session *ucp.CheckoutSession, method ucp.FulfillmentMethod) []string {
	var ids []string
	for _, liID := range method.LineItemIDs {
		if li, ok := session.LineItem(liID); ok {
			ids = append(ids, li.Item.ProductID)
		}
	}
	return ids
}
