package checkout

import (
	"context"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
)

// applyLineItems merges an update's line items onto the session. A
// provided (non-nil) list replaces the full set: items referencing an
// existing id are updated in place (keeping that id stable across the
// update, spec.md §3); items with no id are appended as new. Items
// omitted from a provided list are dropped. A nil list leaves the
// session's line items untouched.
func applyLineItems(existing []ucp.LineItem, in []ucp.LineItemInput) []ucp.LineItem {
	if in == nil {
		return existing
	}
	out := make([]ucp.LineItem, 0, len(in))
	for _, li := range in {
		id := li.ID
		if id == "" {
			id = newID()
		}
		out = append(out, ucp.LineItem{
			ID:       id,
			Item:     li.Item,
			Quantity: li.Quantity,
		})
	}
	return out
}

// mergeFulfillment implements spec.md §9 "Fulfillment update merge": a
// nil input leaves the existing tree untouched; otherwise each input
// method is merged onto the method it matches (by id, or by position
// when unambiguous), missing destinations/groups preserve prior values,
// and an explicit empty list replaces. buyer carries the session's
// (possibly just-updated) buyer email, used to auto-save and auto-fill
// fulfillment destinations against the customer address book (spec.md
// §4.1).
func mergeFulfillment(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer, existing *ucp.Fulfillment, in *ucp.FulfillmentInput) (*ucp.Fulfillment, error) {
	if in == nil {
		return existing, nil
	}
	if existing == nil {
		existing = &ucp.Fulfillment{}
	}

	merged := make([]ucp.FulfillmentMethod, 0, len(in.Methods))
	for i, m := range in.Methods {
		matched := matchMethod(existing.Methods, m.ID, i)
		mm, err := mergeMethod(ctx, tx, buyer, matched, m)
		if err != nil {
			return nil, err
		}
		merged = append(merged, mm)
	}
	existing.Methods = merged
	return existing, nil
}

// matchMethod resolves an input method against the existing slice: by id
// if given, else by position when there is exactly one existing method
// (spec.md §9's literal rule), else by matching index whenever an
// existing method sits at that index. The number of input methods is not
// compared with the number of existing ones.
func matchMethod(existing []ucp.FulfillmentMethod, id string, index int) *ucp.FulfillmentMethod {
	if id != "" {
		for i := range existing {
			if existing[i].ID == id {
				return &existing[i]
			}
		}
		return nil
	}
	if len(existing) == 1 {
		return &existing[0]
	}
	if index < len(existing) {
		return &existing[index]
	}
	return nil
}

func mergeMethod(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer, existing *ucp.FulfillmentMethod, in ucp.FulfillmentMethodInput) (ucp.FulfillmentMethod, error) {
	var m ucp.FulfillmentMethod
	if existing != nil {
		m = *existing
	} else {
		m.ID = in.ID
		if m.ID == "" {
			m.ID = newID()
		}
	}

	if in.Type != "" {
		m.Type = in.Type
	}
	if in.LineItemIDs != nil {
		m.LineItemIDs = in.LineItemIDs
	}
	if in.SelectedDestinationID != "" {
		m.SelectedDestinationID = in.SelectedDestinationID
	}

	switch {
	case in.Destinations != nil:
		dests, err := destinationsFromInput(ctx, tx, buyer, in.Destinations)
		if err != nil {
			return ucp.FulfillmentMethod{}, err
		}
		m.Destinations = dests
	case len(m.Destinations) == 0:
		// No destinations supplied on this update and none on file yet:
		// auto-fill from the buyer's saved address book.
		dests, err := resolveSavedDestinations(ctx, tx, buyer)
		if err != nil {
			return ucp.FulfillmentMethod{}, err
		}
		m.Destinations = dests
	}

	if in.Groups != nil {
		m.Groups = mergeGroups(m.Groups, in.Groups)
	}
	return m, nil
}

// destinationsFromInput builds the destination list from an update's input
// shape and auto-saves each address to the buyer's address book (spec.md
// §4.1), de-duplicating field-for-field under the same customer email.
func destinationsFromInput(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer, in []ucp.FulfillmentDestinationInput) ([]ucp.FulfillmentDestination, error) {
	out := make([]ucp.FulfillmentDestination, 0, len(in))
	for _, d := range in {
		id := d.ID
		if id == "" {
			id = newID()
		}
		out = append(out, ucp.FulfillmentDestination{ID: id, Address: d.Address})
	}
	if err := saveDestinationsToAddressBook(ctx, tx, buyer, out); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeGroups(existing []ucp.FulfillmentGroup, in []ucp.FulfillmentGroupInput) []ucp.FulfillmentGroup {
	out := make([]ucp.FulfillmentGroup, 0, len(in))
	for i, g := range in {
		matched := matchGroup(existing, g.ID, i)

		var merged ucp.FulfillmentGroup
		if matched != nil {
			merged = *matched
		} else {
			merged.ID = g.ID
			if merged.ID == "" {
				merged.ID = newID()
			}
		}
		if g.LineItemIDs != nil {
			merged.LineItemIDs = g.LineItemIDs
		}
		if g.SelectedOptionID != "" {
			merged.SelectedOptionID = g.SelectedOptionID
		}
		out = append(out, merged)
	}
	return out
}

func matchGroup(existing []ucp.FulfillmentGroup, id string, index int) *ucp.FulfillmentGroup {
	if id != "" {
		for i := range existing {
			if existing[i].ID == id {
				return &existing[i]
			}
		}
		return nil
	}
	if len(existing) == 1 {
		return &existing[0]
	}
	if index < len(existing) {
		return &existing[index]
	}
	return nil
}
