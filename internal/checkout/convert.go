package checkout

import (
	"context"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
)

// newFulfillmentFromInput builds a fresh Fulfillment tree from a create
// request's input shape (no merge semantics — that only applies to
// updates, spec.md §9). buyer drives the same address-book auto-save/
// auto-fill behavior as the update path (spec.md §4.1): a method with
// destinations supplied has each saved to the buyer's address book; a
// method with none supplied is filled from whatever the buyer already has
// on file.
func newFulfillmentFromInput(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer, in ucp.FulfillmentInput) (*ucp.Fulfillment, error) {
	f := &ucp.Fulfillment{}
	for _, m := range in.Methods {
		method, err := methodFromInput(ctx, tx, buyer, m)
		if err != nil {
			return nil, err
		}
		f.Methods = append(f.Methods, method)
	}
	return f, nil
}

func methodFromInput(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer, in ucp.FulfillmentMethodInput) (ucp.FulfillmentMethod, error) {
	m := ucp.FulfillmentMethod{
		ID:                    in.ID,
		Type:                  in.Type,
		LineItemIDs:           in.LineItemIDs,
		SelectedDestinationID: in.SelectedDestinationID,
	}
	if m.ID == "" {
		m.ID = newID()
	}

	switch {
	case in.Destinations != nil:
		for _, d := range in.Destinations {
			dest := ucp.FulfillmentDestination{ID: d.ID, Address: d.Address}
			if dest.ID == "" {
				dest.ID = newID()
			}
			m.Destinations = append(m.Destinations, dest)
		}
		if err := saveDestinationsToAddressBook(ctx, tx, buyer, m.Destinations); err != nil {
			return ucp.FulfillmentMethod{}, err
		}
	default:
		dests, err := resolveSavedDestinations(ctx, tx, buyer)
		if err != nil {
			return ucp.FulfillmentMethod{}, err
		}
		m.Destinations = dests
	}

	for _, g := range in.Groups {
		grp := ucp.FulfillmentGroup{
			ID:               g.ID,
			LineItemIDs:      g.LineItemIDs,
			SelectedOptionID: g.SelectedOptionID,
		}
		if grp.ID == "" {
			grp.ID = newID()
		}
		m.Groups = append(m.Groups, grp)
	}
	return m, nil
}

func paymentFromInput(in ucp.PaymentInput) ucp.Payment {
	p := ucp.Payment{
		Handlers:             in.Handlers,
		SelectedInstrumentID: in.SelectedInstrumentID,
	}
	for _, i := range in.Instruments {
		inst := ucp.PaymentInstrument{ID: i.ID, HandlerID: i.HandlerID, Credential: i.Credential}
		if inst.ID == "" {
			inst.ID = newID()
		}
		p.Instruments = append(p.Instruments, inst)
	}
	return p
}
