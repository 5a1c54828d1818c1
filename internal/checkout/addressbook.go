package checkout

import (
	"context"
	"fmt"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// saveDestinationsToAddressBook persists each destination's address to the
// buyer's saved address book (spec.md §4.1 "persist a new customer
// address... de-duplicating by field-for-field equality"), via the active
// transaction so it lands atomically with the rest of the command. A nil
// buyer or blank email is a no-op: there is no customer to key the address
// book on.
func saveDestinationsToAddressBook(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer, dests []ucp.FulfillmentDestination) error {
	if buyer == nil || buyer.Email == "" {
		return nil
	}
	for _, d := range dests {
		if _, err := tx.SaveCustomerAddress(ctx, ucp.CustomerAddress{
			CustomerEmail:   buyer.Email,
			StreetAddress:   d.Address.StreetAddress,
			AddressLocality: d.Address.AddressLocality,
			AddressRegion:   d.Address.AddressRegion,
			PostalCode:      d.Address.PostalCode,
			AddressCountry:  d.Address.AddressCountry,
		}); err != nil {
			return ucperr.Internal(fmt.Errorf("save destination to address book: %w", err))
		}
	}
	return nil
}

// resolveSavedDestinations auto-fills a method's destinations from the
// buyer's saved address book when a command supplied none and the method
// carries none yet (spec.md §4.1's "resolve customer addresses by buyer
// email", applied as the auto-fill half of the update flow). A nil buyer
// or blank email yields no destinations, not an error.
func resolveSavedDestinations(ctx context.Context, tx *txstore.Tx, buyer *ucp.Buyer) ([]ucp.FulfillmentDestination, error) {
	if buyer == nil || buyer.Email == "" {
		return nil, nil
	}
	saved, err := tx.ResolveCustomerAddresses(ctx, buyer.Email)
	if err != nil {
		return nil, ucperr.Internal(fmt.Errorf("resolve customer addresses: %w", err))
	}
	out := make([]ucp.FulfillmentDestination, 0, len(saved))
	for _, a := range saved {
		out = append(out, ucp.FulfillmentDestination{
			ID: newID(),
			Address: ucp.PostalAddress{
				StreetAddress:   a.StreetAddress,
				AddressLocality: a.AddressLocality,
				AddressRegion:   a.AddressRegion,
				PostalCode:      a.PostalCode,
				AddressCountry:  a.AddressCountry,
			},
		})
	}
	return out, nil
}
