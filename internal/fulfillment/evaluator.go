/*
Package fulfillment implements the fulfillment evaluator (C3,
spec.md §4.5): a pure(-ish) function over (destination, grand-total-so-
far, product ids, active promotions) that returns priced shipping
options. It is deterministic given its inputs — repeated calls during one
command return identical output (spec.md §4.5 closing note).

Translated from the service's pricing algorithm into explicit structs,
with reads supplied by a narrow interface rather than a concrete store
type.
*/
package fulfillment

import (
	"context"
	"sort"

	"github.com/ucp-merchant/core/internal/ucp"
)

// RateSource is the read-only dependency the evaluator needs from the
// catalog (spec.md §4.1 "get shipping rates for a country plus fallback
// default").
type RateSource interface {
	GetShippingRates(ctx context.Context, country string) ([]ucp.ShippingRate, error)
}

// Evaluator computes fulfillment options for a destination.
type Evaluator struct {
	rates RateSource
}

// New constructs an Evaluator backed by rates.
func New(rates RateSource) *Evaluator {
	return &Evaluator{rates: rates}
}

// Input bundles the evaluator's pure inputs (spec.md §4.5).
type Input struct {
	Destination     ucp.PostalAddress
	GrandTotal      int64
	ProductIDs      []string
	ActivePromotions []ucp.Promotion
}

// Evaluate returns the priced fulfillment options for in, or an empty
// slice if the destination has no country (spec.md §4.5 step 1).
func (e *Evaluator) Evaluate(ctx context.Context, in Input) ([]ucp.FulfillmentOption, error) {
	if in.Destination.AddressCountry == "" {
		return nil, nil
	}

	rates, err := e.rates.GetShippingRates(ctx, in.Destination.AddressCountry)
	if err != nil {
		return nil, err
	}

	// Bucket by service_level, preferring a country-specific rate over
	// "default" within the same level (step 3).
	byLevel := make(map[string]ucp.ShippingRate)
	var order []string
	for _, rate := range rates {
		existing, ok := byLevel[rate.ServiceLevel]
		if !ok {
			byLevel[rate.ServiceLevel] = rate
			order = append(order, rate.ServiceLevel)
			continue
		}
		if existing.CountryCode == "default" && rate.CountryCode != "default" {
			byLevel[rate.ServiceLevel] = rate
		}
	}

	bucketed := make([]ucp.ShippingRate, 0, len(order))
	for _, level := range order {
		bucketed = append(bucketed, byLevel[level])
	}

	freeEligible := isFreeShippingEligible(in.ActivePromotions, in.GrandTotal, in.ProductIDs)

	sort.SliceStable(bucketed, func(i, j int) bool { return bucketed[i].Price < bucketed[j].Price })

	options := make([]ucp.FulfillmentOption, 0, len(bucketed))
	for _, rate := range bucketed {
		price := rate.Price
		title := rate.Title
		if freeEligible && rate.ServiceLevel == "standard" {
			price = 0
			title += " (Free)"
		}
		options = append(options, ucp.FulfillmentOption{
			ID:    rate.ID,
			Title: title,
			Totals: []ucp.Total{
				{Type: ucp.TotalSubtotal, Amount: price},
				{Type: ucp.TotalTotal, Amount: price},
			},
		})
	}
	return options, nil
}

// isFreeShippingEligible implements spec.md §4.5 step 4: true if any
// free_shipping promotion's min_subtotal is met, or any such promotion
// lists one of the order's product ids as eligible.
func isFreeShippingEligible(promos []ucp.Promotion, grandTotal int64, productIDs []string) bool {
	ids := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		ids[id] = true
	}
	for _, promo := range promos {
		if promo.Type != "free_shipping" {
			continue
		}
		if promo.MinSubtotal > 0 && grandTotal >= promo.MinSubtotal {
			return true
		}
		for _, eligible := range promo.EligibleItemIDs {
			if ids[eligible] {
				return true
			}
		}
	}
	return false
}
