package checkout

import (
	"context"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// validateInventory is the advisory stock check of spec.md §4.4: it reads
// current quantities but reserves nothing, raising OUT_OF_STOCK(400) the
// first time a requested quantity exceeds what's on hand. The atomic
// reservation that actually decrements stock only happens at complete
// time (spec.md §4.6).
func (e *Engine) validateInventory(ctx context.Context, tx *txstore.Tx, session *ucp.CheckoutSession) error {
	for _, li := range session.LineItems {
		qty, ok, err := tx.GetInventory(ctx, li.Item.ProductID)
		if err != nil {
			return ucperr.Internal(err)
		}
		if !ok || qty < li.Quantity {
			return ucperr.OutOfStock(400, "insufficient stock for product %q", li.Item.ProductID)
		}
	}
	return nil
}
