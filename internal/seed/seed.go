/*
Package seed provides development/demo fixture loading for the catalog
and transaction stores — out of the checkout core's scope (spec.md §1
Non-goals don't name it, but it is pure dev tooling, not part of the
checkout engine itself): named, resettable scenarios that populate a
fresh database with realistic data for demos and manual testing.

A Loader builds products/promotions/shipping rates/discounts/inventory
via catalogstore and txstore.
*/
package seed

import (
	"context"
	"fmt"

	"github.com/ucp-merchant/core/internal/catalogstore"
	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
)

// Loader populates a catalog store and transaction store with a named
// scenario's fixtures.
type Loader struct {
	Catalog *catalogstore.Store
	Tx      *txstore.Store
}

// NewLoader constructs a Loader.
func NewLoader(catalog *catalogstore.Store, tx *txstore.Store) *Loader {
	return &Loader{Catalog: catalog, Tx: tx}
}

// Scenario describes one loadable fixture set: a stable id plus
// human-readable metadata.
type Scenario struct {
	ID          string
	Name        string
	Description string
}

// Scenarios lists the fixture sets this Loader knows how to load.
var Scenarios = []Scenario{
	{ID: "flower-shop", Name: "Flower Shop", Description: "Small flower-shop catalog with domestic/international shipping and a free-shipping promotion"},
}

// Load populates the stores with the named scenario's fixtures. Unknown
// scenario ids return an error.
func (l *Loader) Load(ctx context.Context, scenarioID string) error {
	switch scenarioID {
	case "flower-shop":
		return l.loadFlowerShop(ctx)
	default:
		return fmt.Errorf("unknown scenario %q", scenarioID)
	}
}

// loadFlowerShop seeds a small flower-shop catalog: tulips, roses and a
// vase, standard/express domestic rates plus an international default
// rate, a free-shipping-over-threshold promotion, and a 10% welcome
// discount.
func (l *Loader) loadFlowerShop(ctx context.Context) error {
	products := []ucp.Product{
		{ID: "tulip", Title: "Dutch Tulip Bouquet", Price: 2500},
		{ID: "rose", Title: "Dozen Red Roses", Price: 4500},
		{ID: "vase", Title: "Glass Vase", Price: 1200},
	}
	for _, p := range products {
		if err := l.Catalog.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}

	rates := []ucp.ShippingRate{
		{ID: "us-standard", CountryCode: "US", ServiceLevel: "standard", Title: "Standard Shipping", Price: 599},
		{ID: "us-express", CountryCode: "US", ServiceLevel: "express", Title: "Express Shipping", Price: 1499},
		{ID: "intl-standard", CountryCode: "default", ServiceLevel: "standard", Title: "International Standard", Price: 2499},
	}
	for _, r := range rates {
		if err := l.Catalog.UpsertShippingRate(ctx, r); err != nil {
			return fmt.Errorf("seed shipping rate %s: %w", r.ID, err)
		}
	}

	if err := l.Catalog.UpsertPromotion(ctx, "free-shipping-over-50", ucp.Promotion{
		Type:        "free_shipping",
		MinSubtotal: 5000,
	}); err != nil {
		return fmt.Errorf("seed promotion: %w", err)
	}

	if err := l.Catalog.UpsertDiscount(ctx, ucp.Discount{
		Code: "WELCOME10", Title: "Welcome discount", Kind: ucp.DiscountPercentage, Value: 10,
	}); err != nil {
		return fmt.Errorf("seed discount: %w", err)
	}

	return l.Tx.WithTx(ctx, func(tx *txstore.Tx) error {
		stock := map[string]int{"tulip": 50, "rose": 30, "vase": 100}
		for productID, qty := range stock {
			if err := tx.SetInventory(ctx, productID, qty); err != nil {
				return fmt.Errorf("seed inventory %s: %w", productID, err)
			}
		}
		return nil
	})
}
