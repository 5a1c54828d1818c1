package checkout

import (
	"context"
	"fmt"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// materializeOrder builds the Order record for a session transitioning to
// completed (spec.md §4.9).
func materializeOrder(session *ucp.CheckoutSession, baseURL string) *ucp.Order {
	id := newID()
	order := &ucp.Order{
		ID:           id,
		CheckoutID:   session.ID,
		PermalinkURL: fmt.Sprintf("%s/orders/%s", baseURL, id),
		Totals:       session.Totals,
		Currency:     session.Currency,
	}

	for _, li := range session.LineItems {
		order.LineItems = append(order.LineItems, ucp.OrderLineItem{
			ID:       li.ID,
			Item:     li.Item,
			Quantity: ucp.OrderLineItemQuantity{Total: li.Quantity, Fulfilled: 0},
			Totals:   li.Totals,
			Status:   "processing",
		})
	}

	if session.Fulfillment != nil {
		for _, method := range session.Fulfillment.Methods {
			dest, ok := method.SelectedDestination()
			if !ok {
				continue
			}
			for _, group := range method.Groups {
				option, ok := group.SelectedOption()
				if !ok {
					continue
				}
				exp := ucp.Expectation{
					ID:          newID(),
					MethodType:  method.Type,
					Destination: dest.Address,
					Description: option.Title,
				}
				for _, liID := range group.LineItemIDs {
					li, ok := session.LineItem(liID)
					if !ok {
						continue
					}
					exp.LineItems = append(exp.LineItems, ucp.ExpectationLineItem{ID: li.ID, Quantity: li.Quantity})
				}
				order.Fulfillment.Expectations = append(order.Fulfillment.Expectations, exp)
			}
		}
	}
	order.Fulfillment.Events = []ucp.ShipmentEvent{}

	return order
}

// GetOrder returns an order by id. Reads need no write transaction but
// share WithTx for a single code path over the one sqlite connection.
func (e *Engine) GetOrder(ctx context.Context, id string) (*ucp.Order, error) {
	var order *ucp.Order
	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		o, ok, err := tx.LoadOrder(ctx, id)
		if err != nil {
			return ucperr.Internal(err)
		}
		if !ok {
			return ucperr.NotFound("order %q not found", id)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder replaces the stored order body after verifying existence
// (spec.md §4.11 "update_order"). Not idempotency-guarded — orders are
// mutated directly by the merchant platform, outside the checkout
// command set.
func (e *Engine) UpdateOrder(ctx context.Context, id string, order *ucp.Order) (*ucp.Order, error) {
	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		_, ok, err := tx.LoadOrder(ctx, id)
		if err != nil {
			return ucperr.Internal(err)
		}
		if !ok {
			return ucperr.NotFound("order %q not found", id)
		}
		order.ID = id
		if err := tx.SaveOrder(ctx, order); err != nil {
			return ucperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ShipOrder appends a shipped event to the order's fulfillment stream and
// best-effort notifies the webhook (spec.md §4.11 "ship_order"). No
// idempotency protection — repeated calls append additional events, by
// design (spec.md §9).
func (e *Engine) ShipOrder(ctx context.Context, id string) (*ucp.Order, error) {
	var order *ucp.Order
	var session *ucp.CheckoutSession

	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		o, ok, err := tx.LoadOrder(ctx, id)
		if err != nil {
			return ucperr.Internal(err)
		}
		if !ok {
			return ucperr.NotFound("order %q not found", id)
		}

		o.Fulfillment.Events = append(o.Fulfillment.Events, ucp.ShipmentEvent{
			ID:        newID(),
			Type:      "shipped",
			Timestamp: newTimestamp(),
		})
		if err := tx.SaveOrder(ctx, o); err != nil {
			return ucperr.Internal(err)
		}
		order = o

		s, ok, err := tx.LoadCheckout(ctx, o.CheckoutID)
		if err != nil {
			return ucperr.Internal(err)
		}
		if ok {
			session = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if session != nil {
		e.Webhook.Notify(session, order, ucp.EventOrderShipped)
	}
	return order, nil
}
