package sync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

func TestProductReconcilerCreate(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewProductReconciler(store, zaptest.NewLogger(t))

	page := []marketplace.RawProduct{
		{ProductID: 100, OfferID: "SKU-A", SKU: 11, Name: "Widget", Price: "99.90", OldPrice: "120.00", Stock: 5},
		{ProductID: 101, OfferID: "SKU-B", SKU: 12, Name: "Gadget", Price: "49.00", Stock: 0, Archived: true},
	}

	processed, err := reconciler.ReconcilePage(ctx, sh, page)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	products, err := store.Products().FindByOfferIDs(ctx, sh.ID, []string{"SKU-A", "SKU-B"})
	require.NoError(t, err)
	require.Len(t, products, 2)

	byOffer := map[string]bool{}
	for _, p := range products {
		byOffer[p.OfferID] = true
		if p.OfferID == "SKU-A" {
			assert.Equal(t, int64(100), p.RemoteProductID)
			assert.Equal(t, "99.9", p.Price.String())
			assert.Equal(t, 5, p.Stock)
			assert.False(t, p.Archived)
		}
	}
	assert.True(t, byOffer["SKU-A"])
	assert.True(t, byOffer["SKU-B"])
}

func TestProductReconcilerPreservesLocalState(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	product := seedProduct(t, store, sh, "SKU-A")
	require.NoError(t, product.SetPurchasePrice(decimalFromString(t, "30.00")))
	product.SalesCount = 7
	require.NoError(t, store.Products().Save(ctx, product))

	reconciler := appsync.NewProductReconciler(store, zaptest.NewLogger(t))
	_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawProduct{
		{ProductID: 100, OfferID: "SKU-A", SKU: 11, Name: "Renamed", Price: "55.00", Stock: 3},
	})
	require.NoError(t, err)

	products, err := store.Products().FindByOfferIDs(ctx, sh.ID, []string{"SKU-A"})
	require.NoError(t, err)
	require.Len(t, products, 1)

	got := products[0]
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "55", got.Price.String())
	require.NotNil(t, got.PurchasePrice, "purchase price is locally owned and must survive sync")
	assert.Equal(t, "30", got.PurchasePrice.String())
	assert.Equal(t, int64(7), got.SalesCount, "the sales counter is never read back from the platform")
}

func TestProductReconcilerDuplicateOffers(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewProductReconciler(store, zaptest.NewLogger(t))
	processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawProduct{
		{ProductID: 100, OfferID: "SKU-A", Name: "First", Price: "10.00"},
		{ProductID: 100, OfferID: "SKU-A", Name: "Last", Price: "20.00"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	products, err := store.Products().FindByOfferIDs(ctx, sh.ID, []string{"SKU-A"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Last", products[0].Name, "the last occurrence in a page wins")
	assert.Equal(t, "20", products[0].Price.String())
}

func TestProductReconcilerSkipsRecordsWithoutOfferID(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewProductReconciler(store, zaptest.NewLogger(t))
	processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawProduct{
		{ProductID: 100, Name: "Orphan"},
		{ProductID: 101, OfferID: "SKU-A", Name: "Kept"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	products, err := store.Products().FindByOfferIDs(ctx, sh.ID, []string{"SKU-A"})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductReconcilerEmptyPage(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)

	reconciler := appsync.NewProductReconciler(store, zaptest.NewLogger(t))
	processed, err := reconciler.ReconcilePage(context.Background(), sh, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}
