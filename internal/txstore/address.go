package txstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/ucp-merchant/core/internal/ucp"
)

// ResolveCustomerAddresses returns every address on file for a buyer
// email (spec.md §4.1 "resolve customer addresses by buyer email").
func (t *Tx) ResolveCustomerAddresses(ctx context.Context, email string) ([]ucp.CustomerAddress, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, customer_email, street_address, address_locality, address_region, postal_code, address_country
		 FROM customer_addresses WHERE customer_email = ?`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ucp.CustomerAddress
	for rows.Next() {
		var a ucp.CustomerAddress
		if err := rows.Scan(&a.ID, &a.CustomerEmail, &a.StreetAddress, &a.AddressLocality, &a.AddressRegion, &a.PostalCode, &a.AddressCountry); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveCustomerAddress persists a new customer address and returns its id,
// de-duplicating by field-for-field equality under the same customer
// (spec.md §4.1). If an identical address already exists for this
// customer, its existing id is returned instead of inserting a
// duplicate.
func (t *Tx) SaveCustomerAddress(ctx context.Context, addr ucp.CustomerAddress) (string, error) {
	existing, err := t.ResolveCustomerAddresses(ctx, addr.CustomerEmail)
	if err != nil {
		return "", err
	}
	for _, e := range existing {
		if e.StreetAddress == addr.StreetAddress &&
			e.AddressLocality == addr.AddressLocality &&
			e.AddressRegion == addr.AddressRegion &&
			e.PostalCode == addr.PostalCode &&
			e.AddressCountry == addr.AddressCountry {
			return e.ID, nil
		}
	}

	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO customer_addresses (id, customer_email, street_address, address_locality, address_region, postal_code, address_country)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		addr.ID, addr.CustomerEmail, addr.StreetAddress, addr.AddressLocality, addr.AddressRegion, addr.PostalCode, addr.AddressCountry)
	if err != nil {
		return "", err
	}
	return addr.ID, nil
}
