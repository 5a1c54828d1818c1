package catalogstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucp-merchant/core/internal/catalogstore"
	"github.com/ucp-merchant/core/internal/ucp"
)

func newTestStore(t *testing.T) *catalogstore.Store {
	t.Helper()
	store, err := catalogstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertProduct_GetProductRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, ucp.Product{ID: "tulip", Title: "Tulip", Price: 2500, ImageURL: "https://example.com/tulip.jpg"}))

	got, err := store.GetProduct(ctx, "tulip")
	require.NoError(t, err)
	assert.Equal(t, "Tulip", got.Title)
	assert.Equal(t, int64(2500), got.Price)
	assert.Equal(t, "https://example.com/tulip.jpg", got.ImageURL)
}

func TestUpsertProduct_UpdatesExistingRowOnConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertProduct(ctx, ucp.Product{ID: "tulip", Title: "Tulip", Price: 2500}))
	require.NoError(t, store.UpsertProduct(ctx, ucp.Product{ID: "tulip", Title: "Tulip Bouquet", Price: 2700}))

	got, err := store.GetProduct(ctx, "tulip")
	require.NoError(t, err)
	assert.Equal(t, "Tulip Bouquet", got.Title)
	assert.Equal(t, int64(2700), got.Price)
}

func TestGetProduct_UnknownIDReturnsError(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetProduct(context.Background(), "nope")
	assert.Error(t, err)
}

func TestGetShippingRates_IncludesCountryAndDefaultRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertShippingRate(ctx, ucp.ShippingRate{ID: "us-standard", CountryCode: "US", ServiceLevel: "standard", Title: "Standard", Price: 599}))
	require.NoError(t, store.UpsertShippingRate(ctx, ucp.ShippingRate{ID: "intl-standard", CountryCode: "default", ServiceLevel: "standard", Title: "International", Price: 2499}))
	require.NoError(t, store.UpsertShippingRate(ctx, ucp.ShippingRate{ID: "ca-standard", CountryCode: "CA", ServiceLevel: "standard", Title: "Canada", Price: 899}))

	rates, err := store.GetShippingRates(ctx, "US")
	require.NoError(t, err)
	ids := make([]string, 0, len(rates))
	for _, r := range rates {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"us-standard", "intl-standard"}, ids)
}

func TestGetDiscounts_SilentlyOmitsUnknownCodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertDiscount(ctx, ucp.Discount{Code: "WELCOME10", Title: "Welcome", Kind: ucp.DiscountPercentage, Value: 10}))

	found, err := store.GetDiscounts(ctx, []string{"WELCOME10", "GHOST-CODE"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, "WELCOME10")
}

func TestListActivePromotions_ParsesEligibleItemIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertPromotion(ctx, "promo-1", ucp.Promotion{
		Type:            "free_shipping",
		EligibleItemIDs: []string{"tulip", "rose"},
	}))

	promos, err := store.ListActivePromotions(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.ElementsMatch(t, []string{"tulip", "rose"}, promos[0].EligibleItemIDs)
}
