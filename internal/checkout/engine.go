/*
Package checkout implements the checkout engine (C6, spec.md §4.2-§4.11):
the core's core. It orchestrates state transitions, authoritative
recomputation of totals, atomic inventory reservation, payment dispatch,
order materialisation, and the idempotency guard around every mutating
command.

The engine holds no mutable state of its own; every read and write goes
through the catalog and transaction stores, keeping a thin domain-
orchestration layer separate from the persistence it calls into.
*/
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ucp-merchant/core/internal/catalogstore"
	"github.com/ucp-merchant/core/internal/fulfillment"
	"github.com/ucp-merchant/core/internal/idempotency"
	"github.com/ucp-merchant/core/internal/payment"
	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
	"github.com/ucp-merchant/core/internal/webhook"
)

// Engine is the checkout core (C6).
type Engine struct {
	Catalog     *catalogstore.Store
	Tx          *txstore.Store
	Fulfillment *fulfillment.Evaluator
	Payment     *payment.Dispatcher
	Webhook     *webhook.Notifier
	BaseURL     string
}

// New constructs an Engine from its collaborators (C1-C4, C7).
func New(catalog *catalogstore.Store, tx *txstore.Store, baseURL string) *Engine {
	return &Engine{
		Catalog:     catalog,
		Tx:          tx,
		Fulfillment: fulfillment.New(catalog),
		Payment:     payment.NewDispatcher(),
		Webhook:     webhook.New(),
		BaseURL:     baseURL,
	}
}

// CommandResult is what every mutating command returns: the HTTP status
// to answer with (canonical for a fresh execution, cached for a replay)
// and the resulting checkout session.
type CommandResult struct {
	Status  int
	Session *ucp.CheckoutSession
}

// runGuarded wraps fn (a command executed over tx) with the idempotency
// guard of spec.md §4.8: on a cache hit it decodes and returns the cached
// session without running fn; on a miss it runs fn, then persists the
// result at canonicalStatus within the same transaction.
func runGuarded(ctx context.Context, tx *txstore.Tx, idemKey string, payload any, canonicalStatus int, fn func() (*ucp.CheckoutSession, error)) (*CommandResult, error) {
	hash, err := idempotency.Hash(payload)
	if err != nil {
		return nil, ucperr.Internal(fmt.Errorf("hash idempotency payload: %w", err))
	}

	cached, err := idempotency.Check(ctx, tx, idemKey, hash)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		var session ucp.CheckoutSession
		if err := json.Unmarshal(cached.Body, &session); err != nil {
			return nil, ucperr.Internal(fmt.Errorf("decode cached idempotency body: %w", err))
		}
		return &CommandResult{Status: cached.Status, Session: &session}, nil
	}

	session, err := fn()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(session)
	if err != nil {
		return nil, ucperr.Internal(fmt.Errorf("marshal session for idempotency record: %w", err))
	}
	if err := idempotency.Persist(ctx, tx, idemKey, hash, canonicalStatus, body); err != nil {
		return nil, err
	}

	return &CommandResult{Status: canonicalStatus, Session: session}, nil
}

// Get returns a checkout session by id. GET commands are not guarded by
// idempotency (spec.md §4.8 closing line) and need no write transaction.
func (e *Engine) Get(ctx context.Context, id string) (*ucp.CheckoutSession, error) {
	var session *ucp.CheckoutSession
	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		s, ok, err := tx.LoadCheckout(ctx, id)
		if err != nil {
			return ucperr.Internal(err)
		}
		if !ok {
			return ucperr.NotFound("checkout session %q not found", id)
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Create creates a new checkout session (spec.md §4.2 "(none) --create-->
// incomplete"), immediately runs recompute+validate, and lands it at
// ready_for_complete or surfaces the relevant error (spec.md §4.2).
func (e *Engine) Create(ctx context.Context, req ucp.CheckoutCreate, idemKey string) (*CommandResult, error) {
	var result *CommandResult
	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		r, err := runGuarded(ctx, tx, idemKey, req, 201, func() (*ucp.CheckoutSession, error) {
			return e.create(ctx, tx, req)
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

func (e *Engine) create(ctx context.Context, tx *txstore.Tx, req ucp.CheckoutCreate) (*ucp.CheckoutSession, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	session := &ucp.CheckoutSession{
		ID:       id,
		Status:   ucp.StatusIncomplete,
		Currency: req.Currency,
		Buyer:    req.Buyer,
	}

	for _, li := range req.LineItems {
		session.LineItems = append(session.LineItems, ucp.LineItem{
			ID:       uuid.NewString(),
			Item:     li.Item,
			Quantity: li.Quantity,
		})
	}

	if req.Fulfillment != nil {
		f, err := newFulfillmentFromInput(ctx, tx, session.Buyer, *req.Fulfillment)
		if err != nil {
			return nil, err
		}
		session.Fulfillment = f
	}
	if req.Discounts != nil {
		session.Discounts = &ucp.Discounts{Codes: req.Discounts.Codes}
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

// Cancel transitions any non-terminal session to canceled (spec.md §4.2
// "any non-terminal --cancel--> canceled"). Per spec.md §9, the
// idempotency payload for cancel is the literal empty object {}, making
// the key alone the dedup token.
func (e *Engine) Cancel(ctx context.Context, id string, idemKey string) (*CommandResult, error) {
	var result *CommandResult
	err := e.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		r, err := runGuarded(ctx, tx, idemKey, struct{}{}, 200, func() (*ucp.CheckoutSession, error) {
			return e.cancel(ctx, tx, id)
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

func (e *Engine) cancel(ctx context.Context, tx *txstore.Tx, id string) (*ucp.CheckoutSession, error) {
	session, ok, err := tx.LoadCheckout(ctx, id)
	if err != nil {
		return nil, ucperr.Internal(err)
	}
	if !ok {
		return nil, ucperr.NotFound("checkout session %q not found", id)
	}
	if session.Status.IsTerminal() {
		return nil, ucperr.CheckoutNotModifiable("cannot cancel checkout in state %q", session.Status)
	}

	session.Status = ucp.StatusCanceled
	if err := tx.SaveCheckout(ctx, session); err != nil {
		return nil, ucperr.Internal(err)
	}
	return session, nil
}

func newTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
