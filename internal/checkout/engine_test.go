package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucp-merchant/core/internal/catalogstore"
	"github.com/ucp-merchant/core/internal/checkout"
	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// newTestEngine seeds a fresh in-memory catalog/transaction store pair
// with two products, a domestic shipping rate, a free-shipping promotion,
// and a percentage discount code, mirroring internal/seed's flower-shop
// fixture at a smaller scale.
func newTestEngine(t *testing.T) *checkout.Engine {
	t.Helper()
	ctx := context.Background()

	catalog, err := catalogstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })

	tx, err := txstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { tx.Close() })

	require.NoError(t, catalog.UpsertProduct(ctx, ucp.Product{ID: "tulip", Title: "Dutch Tulip Bouquet", Price: 2500}))
	require.NoError(t, catalog.UpsertProduct(ctx, ucp.Product{ID: "rose", Title: "Dozen Red Roses", Price: 4500}))
	require.NoError(t, catalog.UpsertShippingRate(ctx, ucp.ShippingRate{ID: "us-standard", CountryCode: "US", ServiceLevel: "standard", Title: "Standard Shipping", Price: 599}))
	require.NoError(t, catalog.UpsertPromotion(ctx, "free-over-50", ucp.Promotion{Type: "free_shipping", MinSubtotal: 5000}))
	require.NoError(t, catalog.UpsertDiscount(ctx, ucp.Discount{Code: "WELCOME10", Title: "Welcome discount", Kind: ucp.DiscountPercentage, Value: 10}))

	require.NoError(t, tx.WithTx(ctx, func(t *txstore.Tx) error {
		if err := t.SetInventory(ctx, "tulip", 5); err != nil {
			return err
		}
		return t.SetInventory(ctx, "rose", 2)
	}))

	return checkout.New(catalog, tx, "http://localhost:8080")
}

func basicCreate() ucp.CheckoutCreate {
	return ucp.CheckoutCreate{
		Currency: "USD",
		LineItems: []ucp.LineItemInput{
			{Item: ucp.Item{ProductID: "tulip"}, Quantity: 2},
		},
	}
}

func successfulPaymentRequest() ucp.CompleteRequest {
	return ucp.CompleteRequest{
		PaymentData: &ucp.PaymentCreate{
			HandlerID:  "mock_payment_handler",
			Credential: &ucp.PaymentCredential{Token: "success_token"},
		},
	}
}

// TestCreate_RecomputesAndReachesReadyForComplete covers spec.md §4.2's
// "(none) --create--> incomplete --recompute+validate--> ready_for_complete"
// happy path (scenario S1).
func TestCreate_RecomputesAndReachesReadyForComplete(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Create(context.Background(), basicCreate(), "idem-create-1")
	require.NoError(t, err)

	assert.Equal(t, 201, result.Status)
	assert.Equal(t, ucp.StatusReadyForComplete, result.Session.Status)
	require.Len(t, result.Session.LineItems, 1)
	assert.Equal(t, int64(2500), result.Session.LineItems[0].Item.Price)
	assert.Equal(t, "Dutch Tulip Bouquet", result.Session.LineItems[0].Item.Title)
	assert.Equal(t, int64(5000), result.Session.GrandTotal())
}

// TestCreate_UnknownProductIsInvalidRequest covers recompute step 1's
// catalog lookup failure path (spec.md §4.3).
func TestCreate_UnknownProductIsInvalidRequest(t *testing.T) {
	engine := newTestEngine(t)
	req := ucp.CheckoutCreate{
		Currency:  "USD",
		LineItems: []ucp.LineItemInput{{Item: ucp.Item{ProductID: "does-not-exist"}, Quantity: 1}},
	}

	_, err := engine.Create(context.Background(), req, "idem-create-bad-product")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeInvalidRequest, ucpErr.Code)
}

// TestCreate_InsufficientStockIsOutOfStock400 covers the advisory
// pre-validation path of spec.md §4.4.
func TestCreate_InsufficientStockIsOutOfStock400(t *testing.T) {
	engine := newTestEngine(t)
	req := ucp.CheckoutCreate{
		Currency:  "USD",
		LineItems: []ucp.LineItemInput{{Item: ucp.Item{ProductID: "rose"}, Quantity: 99}},
	}

	_, err := engine.Create(context.Background(), req, "idem-create-oos")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeOutOfStock, ucpErr.Code)
	assert.Equal(t, 400, ucpErr.Status)
}

// TestCreate_IdempotentReplayReturnsCachedSession covers scenario S3:
// replaying the same idempotency key with an identical body returns the
// original response without re-running the command.
func TestCreate_IdempotentReplayReturnsCachedSession(t *testing.T) {
	engine := newTestEngine(t)
	req := basicCreate()

	first, err := engine.Create(context.Background(), req, "idem-replay-1")
	require.NoError(t, err)

	second, err := engine.Create(context.Background(), req, "idem-replay-1")
	require.NoError(t, err)

	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, first.Status, second.Status)
}

// TestCreate_IdempotencyConflictOnMismatchedBody covers spec.md §4.8: the
// same key reused with a different request body is rejected rather than
// silently replayed or silently re-executed.
func TestCreate_IdempotencyConflictOnMismatchedBody(t *testing.T) {
	engine := newTestEngine(t)
	key := "idem-conflict-1"

	_, err := engine.Create(context.Background(), basicCreate(), key)
	require.NoError(t, err)

	conflicting := basicCreate()
	conflicting.LineItems[0].Quantity = 3

	_, err = engine.Create(context.Background(), conflicting, key)
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeIdempotencyConflict, ucpErr.Code)
	assert.Equal(t, 409, ucpErr.Status)
}

// TestUpdate_DiscountAndFreeShippingApply covers scenario S4 (discount
// application) together with the free-shipping promotion threshold, in a
// single checkout large enough to clear both.
func TestUpdate_DiscountAndFreeShippingApply(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, ucp.CheckoutCreate{
		Currency:  "USD",
		LineItems: []ucp.LineItemInput{{Item: ucp.Item{ProductID: "rose"}, Quantity: 2}},
	}, "idem-discount-create")
	require.NoError(t, err)
	require.Equal(t, int64(9000), created.Session.GrandTotal())

	update := ucp.CheckoutUpdate{
		Fulfillment: &ucp.FulfillmentInput{Methods: []ucp.FulfillmentMethodInput{{
			Type:        ucp.FulfillmentShipping,
			LineItemIDs: []string{created.Session.LineItems[0].ID},
			Destinations: []ucp.FulfillmentDestinationInput{
				{ID: "dest-1", Address: ucp.PostalAddress{AddressCountry: "US"}},
			},
			SelectedDestinationID: "dest-1",
		}}},
		Discounts: &ucp.DiscountsInput{Codes: []string{"WELCOME10"}},
	}

	updated, err := engine.Update(ctx, created.Session.ID, update, "idem-discount-update")
	require.NoError(t, err)

	session := updated.Session
	require.NotNil(t, session.Fulfillment)
	require.Len(t, session.Fulfillment.Methods, 1)
	method := session.Fulfillment.Methods[0]
	require.Len(t, method.Groups, 1)
	require.Len(t, method.Groups[0].Options, 1)

	// Select the only shipping option so the fulfillment total folds in.
	selectUpdate := ucp.CheckoutUpdate{
		Fulfillment: &ucp.FulfillmentInput{Methods: []ucp.FulfillmentMethodInput{{
			ID: method.ID,
			Groups: []ucp.FulfillmentGroupInput{{
				ID:               method.Groups[0].ID,
				SelectedOptionID: method.Groups[0].Options[0].ID,
			}},
		}}},
	}
	final, err := engine.Update(ctx, created.Session.ID, selectUpdate, "idem-discount-select")
	require.NoError(t, err)

	// Subtotal 9000 is over the 5000 free-shipping threshold, so the
	// standard option is zeroed; WELCOME10 then takes 10% off the
	// running total (9000 + 0 fulfillment = 9000 -> 900 off -> 8100).
	session = final.Session
	require.Len(t, session.Discounts.Applied, 1)
	assert.Equal(t, "WELCOME10", session.Discounts.Applied[0].Code)
	assert.Equal(t, int64(900), session.Discounts.Applied[0].Amount)
	assert.Equal(t, int64(8100), session.GrandTotal())
}

// TestUpdate_UnknownDiscountCodeSilentlyDropped covers the §9 open
// question resolution: a code with no catalog entry neither errors the
// command nor shows up in Applied.
func TestUpdate_UnknownDiscountCodeSilentlyDropped(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-unknown-code-create")
	require.NoError(t, err)

	updated, err := engine.Update(ctx, created.Session.ID, ucp.CheckoutUpdate{
		Discounts: &ucp.DiscountsInput{Codes: []string{"DOES-NOT-EXIST"}},
	}, "idem-unknown-code-update")
	require.NoError(t, err)
	assert.Empty(t, updated.Session.Discounts.Applied)
	assert.Equal(t, int64(5000), updated.Session.GrandTotal())
}

// TestComplete_HappyPathReservesStockAndMaterializesOrder covers scenario
// S1's completion leg: a ready_for_complete session with a successful
// payment token reserves inventory, lands at completed, and produces an
// order that GetOrder can retrieve.
func TestComplete_HappyPathReservesStockAndMaterializesOrder(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-complete-create")
	require.NoError(t, err)

	result, err := engine.Complete(ctx, created.Session.ID, successfulPaymentRequest(), "idem-complete-1")
	require.NoError(t, err)

	assert.Equal(t, ucp.StatusCompleted, result.Session.Status)
	require.NotNil(t, result.Session.Order)

	order, err := engine.GetOrder(ctx, result.Session.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Session.ID, order.CheckoutID)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, 2, order.LineItems[0].Quantity.Total)
	assert.Equal(t, 0, order.LineItems[0].Quantity.Fulfilled)
}

// TestComplete_PaymentFailureLeavesSessionReadyForComplete covers spec.md
// §4.6 step 3: a declined payment does not move the session off
// ready_for_complete, so the buyer can retry with different credentials.
func TestComplete_PaymentFailureLeavesSessionReadyForComplete(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-payfail-create")
	require.NoError(t, err)

	failing := ucp.CompleteRequest{PaymentData: &ucp.PaymentCreate{
		HandlerID:  "mock_payment_handler",
		Credential: &ucp.PaymentCredential{Token: "fail_token"},
	}}
	_, err = engine.Complete(ctx, created.Session.ID, failing, "idem-payfail-1")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodePaymentFailed, ucpErr.Code)

	session, err := engine.Get(ctx, created.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, ucp.StatusReadyForComplete, session.Status)
}

// TestComplete_InventoryDepletedBetweenValidateAndCompleteIsConflict
// covers scenario S2: stock drained by a second checkout after the first
// reached ready_for_complete is caught by the atomic reserve, not the
// advisory pre-check, and surfaces as 409 rather than 400.
func TestComplete_InventoryDepletedBetweenValidateAndCompleteIsConflict(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	req := ucp.CheckoutCreate{
		Currency:  "USD",
		LineItems: []ucp.LineItemInput{{Item: ucp.Item{ProductID: "rose"}, Quantity: 2}},
	}
	created, err := engine.Create(ctx, req, "idem-race-create")
	require.NoError(t, err)

	// A second checkout reserves the remaining stock out from under the
	// first before it completes.
	require.NoError(t, engine.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		_, err := tx.ReserveStock(ctx, "rose", 2)
		return err
	}))

	_, err = engine.Complete(ctx, created.Session.ID, successfulPaymentRequest(), "idem-race-complete")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeOutOfStock, ucpErr.Code)
	assert.Equal(t, 409, ucpErr.Status)
}

// TestComplete_IdempotentReplayDoesNotDoubleReserveStock covers scenario
// S3 at the complete boundary: replaying the same idempotency key must
// not reserve inventory twice.
func TestComplete_IdempotentReplayDoesNotDoubleReserveStock(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-double-create")
	require.NoError(t, err)

	paymentReq := successfulPaymentRequest()
	first, err := engine.Complete(ctx, created.Session.ID, paymentReq, "idem-double-complete")
	require.NoError(t, err)

	second, err := engine.Complete(ctx, created.Session.ID, paymentReq, "idem-double-complete")
	require.NoError(t, err)
	assert.Equal(t, first.Session.Order.ID, second.Session.Order.ID)

	var qty int
	var ok bool
	err = engine.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		q, present, err := tx.GetInventory(ctx, "tulip")
		qty, ok = q, present
		return err
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, qty) // 5 seeded - 2 reserved, exactly once
}

// TestComplete_TerminalStateRejectsSecondCompletion covers spec.md §4.2
// invariant 4: once completed, further complete attempts with a fresh
// idempotency key are rejected as CHECKOUT_NOT_MODIFIABLE rather than
// silently re-running.
func TestComplete_TerminalStateRejectsSecondCompletion(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-terminal-create")
	require.NoError(t, err)
	_, err = engine.Complete(ctx, created.Session.ID, successfulPaymentRequest(), "idem-terminal-complete-1")
	require.NoError(t, err)

	_, err = engine.Complete(ctx, created.Session.ID, successfulPaymentRequest(), "idem-terminal-complete-2")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeCheckoutNotModifiable, ucpErr.Code)
}

// TestCancel_TerminalStatesRejectFurtherMutation covers scenario S6 and
// spec.md §4.2 invariant 4 from the cancel side: once a checkout is
// canceled, updating it and canceling it again both fail.
func TestCancel_TerminalStatesRejectFurtherMutation(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-cancel-create")
	require.NoError(t, err)

	canceled, err := engine.Cancel(ctx, created.Session.ID, "idem-cancel-1")
	require.NoError(t, err)
	assert.Equal(t, ucp.StatusCanceled, canceled.Session.Status)

	_, err = engine.Update(ctx, created.Session.ID, ucp.CheckoutUpdate{}, "idem-cancel-update")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeCheckoutNotModifiable, ucpErr.Code)

	_, err = engine.Cancel(ctx, created.Session.ID, "idem-cancel-2")
	require.Error(t, err)
	ucpErr, ok = ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeCheckoutNotModifiable, ucpErr.Code)
}

// TestCancel_IdempotencyPayloadIsFixedEmptyObject covers spec.md §9:
// cancel's idempotency hash is always over {}, so the key alone dedups
// repeated cancel calls regardless of request body.
func TestCancel_IdempotencyPayloadIsFixedEmptyObject(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-cancel-fixed-create")
	require.NoError(t, err)

	first, err := engine.Cancel(ctx, created.Session.ID, "idem-cancel-fixed")
	require.NoError(t, err)
	second, err := engine.Cancel(ctx, created.Session.ID, "idem-cancel-fixed")
	require.NoError(t, err)

	assert.Equal(t, first.Session.Status, second.Session.Status)
	assert.Equal(t, ucp.StatusCanceled, second.Session.Status)
}

// TestGet_UnknownCheckoutIsNotFound covers the 404 path independent of
// any mutating command.
func TestGet_UnknownCheckoutIsNotFound(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Get(context.Background(), "does-not-exist")
	require.Error(t, err)
	ucpErr, ok := ucperr.As(err)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeResourceNotFound, ucpErr.Code)
}

// TestShipOrder_AppendsEventWithoutIdempotencyGuard documents spec.md
// §4.11's deliberate absence of dedup on ship_order: two calls append
// two events.
func TestShipOrder_AppendsEventWithoutIdempotencyGuard(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.Create(ctx, basicCreate(), "idem-ship-create")
	require.NoError(t, err)
	completed, err := engine.Complete(ctx, created.Session.ID, successfulPaymentRequest(), "idem-ship-complete")
	require.NoError(t, err)

	orderID := completed.Session.Order.ID
	_, err = engine.ShipOrder(ctx, orderID)
	require.NoError(t, err)
	order, err := engine.ShipOrder(ctx, orderID)
	require.NoError(t, err)

	assert.Len(t, order.Fulfillment.Events, 2)
}
