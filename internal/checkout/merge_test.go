package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
)

// newTestTx opens a throwaway in-memory store and hands the running test a
// live *txstore.Tx for the merge functions that need one.
func newTestTx(t *testing.T, fn func(ctx context.Context, tx *txstore.Tx)) {
	t.Helper()
	store, err := txstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.WithTx(ctx, func(tx *txstore.Tx) error {
		fn(ctx, tx)
		return nil
	}))
}

func shippingMethod(id string, destIDs ...string) ucp.FulfillmentMethod {
	m := ucp.FulfillmentMethod{ID: id, Type: ucp.FulfillmentShipping}
	for _, d := range destIDs {
		m.Destinations = append(m.Destinations, ucp.FulfillmentDestination{
			ID:      d,
			Address: ucp.PostalAddress{StreetAddress: d + " Main St", AddressCountry: "US"},
		})
	}
	return m
}

// WHEN exactly one existing method exists and the input carries no id,
// THEN it is matched by position rather than left unmatched (spec.md §9).
func TestMatchMethod_SingleExistingMatchedByPosition(t *testing.T) {
	existing := []ucp.FulfillmentMethod{shippingMethod("m1", "d1")}

	matched := matchMethod(existing, "", 0)

	require.NotNil(t, matched)
	assert.Equal(t, "m1", matched.ID)
}

// WHEN several existing methods are present and the input gives no id,
// THEN matching falls back to index position for each slot.
func TestMatchMethod_MultiMethodMatchedByIndex(t *testing.T) {
	existing := []ucp.FulfillmentMethod{
		shippingMethod("m1", "d1"),
		shippingMethod("m2", "d2"),
	}

	m0 := matchMethod(existing, "", 0)
	m1 := matchMethod(existing, "", 1)
	m2 := matchMethod(existing, "", 2)

	require.NotNil(t, m0)
	require.NotNil(t, m1)
	assert.Equal(t, "m1", m0.ID)
	assert.Equal(t, "m2", m1.ID)
	assert.Nil(t, m2, "index past the end of a multi-method slice has nothing to match")
}

// WHEN an id is given, THEN matching always resolves by id regardless of
// position, even with a single existing method.
func TestMatchMethod_IDTakesPrecedenceOverPosition(t *testing.T) {
	existing := []ucp.FulfillmentMethod{shippingMethod("m1", "d1")}

	matched := matchMethod(existing, "does-not-exist", 0)

	assert.Nil(t, matched)
}

// WHEN an update supplies an explicit empty destinations list for a
// method that already has destinations, THEN the existing list is
// replaced with empty rather than preserved (spec.md §9's
// nil-preserves/empty-replaces rule).
func TestMergeMethod_ExplicitEmptyDestinationsReplacesExisting(t *testing.T) {
	newTestTx(t, func(ctx context.Context, tx *txstore.Tx) {
		existing := shippingMethod("m1", "d1", "d2")

		merged, err := mergeMethod(ctx, tx, nil, &existing, ucp.FulfillmentMethodInput{
			ID:           "m1",
			Destinations: []ucp.FulfillmentDestinationInput{},
		})

		require.NoError(t, err)
		assert.Empty(t, merged.Destinations)
	})
}

// WHEN an update omits destinations entirely (nil, not empty) and the
// method already has some, THEN the prior destinations are preserved.
func TestMergeMethod_NilDestinationsPreservesExisting(t *testing.T) {
	newTestTx(t, func(ctx context.Context, tx *txstore.Tx) {
		existing := shippingMethod("m1", "d1")

		merged, err := mergeMethod(ctx, tx, nil, &existing, ucp.FulfillmentMethodInput{ID: "m1"})

		require.NoError(t, err)
		require.Len(t, merged.Destinations, 1)
		assert.Equal(t, "d1", merged.Destinations[0].ID)
	})
}

// WHEN an update supplies an explicit empty groups list for a method that
// already has groups, THEN the existing groups are replaced with empty.
func TestMergeGroups_ExplicitEmptyListReplacesExisting(t *testing.T) {
	existing := []ucp.FulfillmentGroup{{ID: "g1", LineItemIDs: []string{"li1"}}}

	merged := mergeGroups(existing, []ucp.FulfillmentGroupInput{})

	assert.Empty(t, merged)
}

// WHEN several existing groups are present and an update's group input
// carries no id, THEN matching falls back to index position, mirroring
// matchMethod's multi-item behavior.
func TestMatchGroup_MultiGroupMatchedByIndex(t *testing.T) {
	existing := []ucp.FulfillmentGroup{
		{ID: "g1", LineItemIDs: []string{"li1"}},
		{ID: "g2", LineItemIDs: []string{"li2"}},
	}

	g0 := matchGroup(existing, "", 0)
	g1 := matchGroup(existing, "", 1)

	require.NotNil(t, g0)
	require.NotNil(t, g1)
	assert.Equal(t, "g1", g0.ID)
	assert.Equal(t, "g2", g1.ID)
}

// WHEN a method's update carries no destinations and none exist yet, and
// the buyer has a saved address on file, THEN the method auto-fills from
// the address book (spec.md §4.1).
func TestMergeMethod_AutoFillsFromSavedAddressBookWhenNoneProvidedOrOnFile(t *testing.T) {
	newTestTx(t, func(ctx context.Context, tx *txstore.Tx) {
		buyer := &ucp.Buyer{Email: "buyer@example.com"}
		_, err := tx.SaveCustomerAddress(ctx, ucp.CustomerAddress{
			CustomerEmail:  buyer.Email,
			StreetAddress:  "1 Greenhouse Way",
			AddressCountry: "US",
		})
		require.NoError(t, err)

		existing := ucp.FulfillmentMethod{ID: "m1", Type: ucp.FulfillmentShipping}
		merged, err := mergeMethod(ctx, tx, buyer, &existing, ucp.FulfillmentMethodInput{ID: "m1"})

		require.NoError(t, err)
		require.Len(t, merged.Destinations, 1)
		assert.Equal(t, "1 Greenhouse Way", merged.Destinations[0].Address.StreetAddress)
	})
}

// WHEN a method's update supplies a destination, THEN it is saved to the
// buyer's address book and a later lookup with an identical address
// de-duplicates to the same record (spec.md §4.1).
func TestMergeMethod_SavesSuppliedDestinationToAddressBookDeduplicated(t *testing.T) {
	newTestTx(t, func(ctx context.Context, tx *txstore.Tx) {
		buyer := &ucp.Buyer{Email: "buyer@example.com"}
		in := ucp.FulfillmentMethodInput{
			ID: "m1",
			Destinations: []ucp.FulfillmentDestinationInput{
				{Address: ucp.PostalAddress{StreetAddress: "2 Rose Ln", AddressCountry: "US"}},
			},
		}

		_, err := mergeMethod(ctx, tx, buyer, nil, in)
		require.NoError(t, err)
		_, err = mergeMethod(ctx, tx, buyer, nil, in)
		require.NoError(t, err)

		saved, err := tx.ResolveCustomerAddresses(ctx, buyer.Email)
		require.NoError(t, err)
		assert.Len(t, saved, 1, "identical address saved twice should dedup to one record")
	})
}

// WHEN a line items update carries a mix of an existing id and an id-less
// entry, THEN the existing id's identity is preserved and the id-less
// entry is appended as new (spec.md §3).
func TestApplyLineItems_PreservesExistingIDAndAppendsNew(t *testing.T) {
	existing := []ucp.LineItem{{ID: "li1", Item: ucp.Item{ProductID: "tulip"}, Quantity: 1}}

	out := applyLineItems(existing, []ucp.LineItemInput{
		{ID: "li1", Item: ucp.Item{ProductID: "tulip"}, Quantity: 3},
		{Item: ucp.Item{ProductID: "rose"}, Quantity: 1},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "li1", out[0].ID)
	assert.Equal(t, 3, out[0].Quantity)
	assert.NotEmpty(t, out[1].ID)
	assert.NotEqual(t, "li1", out[1].ID)
}

// WHEN a nil line items list is given, THEN the existing list passes
// through untouched.
func TestApplyLineItems_NilLeavesExistingUntouched(t *testing.T) {
	existing := []ucp.LineItem{{ID: "li1", Item: ucp.Item{ProductID: "tulip"}, Quantity: 1}}

	out := applyLineItems(existing, nil)

	assert.Equal(t, existing, out)
}
