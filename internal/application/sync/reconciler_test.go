package sync_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/domain/shop"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestStore(t *testing.T) *persistence.GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ShopModel{},
		&models.OrderModel{},
		&models.PostingModel{},
		&models.PostingItemModel{},
		&models.PackageModel{},
		&models.ProductModel{},
	))

	return persistence.NewGormStore(db)
}

func seedShop(t *testing.T, store *persistence.GormStore) *shop.Shop {
	t.Helper()
	sh := &shop.Shop{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        "test shop",
		ClientID:    "client-1",
		APIKey:      "key-1",
		SyncEnabled: true,
	}
	require.NoError(t, store.Shops().Save(context.Background(), sh))
	return sh
}

func seedProduct(t *testing.T, store *persistence.GormStore, sh *shop.Shop, offerID string) *catalog.Product {
	t.Helper()
	product := catalog.NewProduct(sh.ID, 1000, offerID, 0, "product "+offerID)
	require.NoError(t, store.Products().CreateBatch(context.Background(), []*catalog.Product{product}))
	return product
}

func productSalesCount(t *testing.T, store *persistence.GormStore, sh *shop.Shop, offerID string) int64 {
	t.Helper()
	products, err := store.Products().FindByOfferIDs(context.Background(), sh.ID, []string{offerID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	return products[0].SalesCount
}

func activePosting(number string, items ...marketplace.RawPostingProduct) marketplace.RawPosting {
	return marketplace.RawPosting{
		PostingNumber: number,
		OrderID:       1,
		OrderNumber:   "order-" + number,
		Status:        "awaiting_packaging",
		Products:      items,
		Raw:           []byte(`{"posting_number":"` + number + `"}`),
	}
}

func TestPostingReconcilerCreate(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	seedProduct(t, store, sh, "SKU-A")
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))

	raw := activePosting("0001-1",
		marketplace.RawPostingProduct{OfferID: "SKU-A", Quantity: 2, Price: "100.50"},
		marketplace.RawPostingProduct{OfferID: "SKU-B", Quantity: 1, Price: "49.99"},
	)

	processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{raw})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	assert.Equal(t, marketplace.RemoteStatusAwaitingPackaging, posting.RemoteStatus)
	assert.Equal(t, fulfillment.OperationStatusAwaitingPack, posting.OperationStatus)
	assert.Equal(t, []string{"SKU-A", "SKU-B"}, posting.SKUList)
	assert.Equal(t, "251.99", posting.TotalPrice.String())
	assert.Equal(t, raw.Raw, []byte(posting.RawPayload))
	assert.False(t, posting.HasCostInfo, "no purchase prices recorded yet")
	require.Len(t, posting.Items, 2)

	orders, err := store.Orders().FindByNumbers(ctx, sh.ID, []string{"order-0001-1"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "251.99", orders[0].ItemsAmount.String())

	// Only the locally known offer accumulates sales.
	assert.Equal(t, int64(2), productSalesCount(t, store, sh, "SKU-A"))
}

func TestPostingReconcilerIdempotence(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	seedProduct(t, store, sh, "SKU-A")
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))
	page := []marketplace.RawPosting{activePosting("0001-1",
		marketplace.RawPostingProduct{OfferID: "SKU-A", Quantity: 2, Price: "10"},
	)}

	for i := 0; i < 2; i++ {
		processed, err := reconciler.ReconcilePage(ctx, sh, page)
		require.NoError(t, err)
		assert.Equal(t, 1, processed)
	}

	postings, _, err := store.Postings().ListByShop(ctx, sh.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, postings, 1, "a replayed page must not duplicate the posting")
	assert.Len(t, postings[0].Items, 1)

	assert.Equal(t, int64(2), productSalesCount(t, store, sh, "SKU-A"),
		"an unchanged status must not move the counter again")
}

func TestPostingReconcilerItemMirroring(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))

	first := activePosting("0001-1",
		marketplace.RawPostingProduct{OfferID: "SKU-A", Quantity: 1, Price: "10"},
		marketplace.RawPostingProduct{OfferID: "SKU-B", Quantity: 2, Price: "20"},
	)
	_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{first})
	require.NoError(t, err)

	second := activePosting("0001-1",
		marketplace.RawPostingProduct{OfferID: "SKU-B", Quantity: 3, Price: "20"},
		marketplace.RawPostingProduct{OfferID: "SKU-C", Quantity: 1, Price: "30"},
	)
	_, err = reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{second})
	require.NoError(t, err)

	posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	require.Len(t, posting.Items, 2)

	byOffer := map[string]fulfillment.PostingItem{}
	for _, item := range posting.Items {
		byOffer[item.OfferID] = item
	}
	assert.NotContains(t, byOffer, "SKU-A", "stale line item must be removed")
	assert.Equal(t, 3, byOffer["SKU-B"].Quantity, "surviving line item must be updated in place")
	assert.Contains(t, byOffer, "SKU-C")
	assert.Equal(t, "90", posting.TotalPrice.String())
}

func TestPostingReconcilerCancellation(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	seedProduct(t, store, sh, "SKU-A")
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))
	item := marketplace.RawPostingProduct{OfferID: "SKU-A", Quantity: 2, Price: "10"}

	active := activePosting("0001-1", item)
	_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{active})
	require.NoError(t, err)
	require.Equal(t, int64(2), productSalesCount(t, store, sh, "SKU-A"))

	cancelled := active
	cancelled.Status = "cancelled"
	_, err = reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{cancelled})
	require.NoError(t, err)

	posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OperationStatusCancelled, posting.OperationStatus)
	assert.Equal(t, int64(0), productSalesCount(t, store, sh, "SKU-A"),
		"cancellation rolls the sales counter back")

	// Replaying the cancelled page must not decrement again.
	_, err = reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{cancelled})
	require.NoError(t, err)
	assert.Equal(t, int64(0), productSalesCount(t, store, sh, "SKU-A"))

	// Reinstatement re-increments.
	_, err = reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{active})
	require.NoError(t, err)
	assert.Equal(t, int64(2), productSalesCount(t, store, sh, "SKU-A"))
}

func TestPostingReconcilerFirstSeenCancelled(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	seedProduct(t, store, sh, "SKU-A")
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))
	raw := activePosting("0001-1", marketplace.RawPostingProduct{OfferID: "SKU-A", Quantity: 2, Price: "10"})
	raw.Status = "cancelled"

	processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{raw})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, int64(0), productSalesCount(t, store, sh, "SKU-A"),
		"a posting born cancelled never counts as a sale")
}

func TestPostingReconcilerPageDedupe(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))

	first := activePosting("0001-1")
	last := activePosting("0001-1")
	last.Status = "delivering"

	processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{first, last})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	assert.Equal(t, marketplace.RemoteStatusDelivering, posting.RemoteStatus, "last occurrence wins")
}

func TestPostingReconcilerSkipsUnmappable(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))

	processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{
		{Status: "awaiting_packaging"}, // no posting number
		activePosting("0001-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, processed, "unkeyable records are skipped, not fatal")
}

func TestPostingReconcilerManualOverride(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))

	_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{activePosting("0001-1")})
	require.NoError(t, err)

	posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	require.NoError(t, posting.SetOperationStatusManually(fulfillment.OperationStatusInTransit))
	require.NoError(t, store.Postings().Save(ctx, posting))

	// A later sync with a non-cancellation status keeps the override.
	next := activePosting("0001-1")
	next.Status = "awaiting_deliver"
	_, err = reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{next})
	require.NoError(t, err)

	posting, err = store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OperationStatusInTransit, posting.OperationStatus)
	assert.True(t, posting.StatusManual)
	assert.Equal(t, marketplace.RemoteStatusAwaitingDeliver, posting.RemoteStatus)

	// Remote cancellation overrides the operator.
	cancelled := activePosting("0001-1")
	cancelled.Status = "cancelled"
	_, err = reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{cancelled})
	require.NoError(t, err)

	posting, err = store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OperationStatusCancelled, posting.OperationStatus)
	assert.False(t, posting.StatusManual)
}

func TestPostingReconcilerTrackingDetail(t *testing.T) {
	t.Run("fetches detail when tracking is expected but absent", func(t *testing.T) {
		store := newTestStore(t)
		sh := seedShop(t, store)
		ctx := context.Background()

		client := &fakeClient{details: map[string]*marketplace.RawPostingDetail{
			"0001-1": {
				RawPosting: marketplace.RawPosting{PostingNumber: "0001-1"},
				Packages: []marketplace.RawPackage{
					{Carrier: "dhl", TrackingNumber: "TRK-1", Status: "in_transit"},
				},
			},
		}}
		reconciler := appsync.NewPostingReconciler(store, client, zaptest.NewLogger(t))

		raw := activePosting("0001-1")
		raw.Status = "delivering"
		_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{raw})
		require.NoError(t, err)

		assert.Equal(t, []string{"0001-1"}, client.detailCalls)

		posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
		require.NoError(t, err)
		assert.Equal(t, "TRK-1", posting.TrackingNumber)
		require.Len(t, posting.Packages, 1)
		assert.Equal(t, "dhl", posting.Packages[0].Carrier)
	})

	t.Run("skips detail when the list payload carried tracking", func(t *testing.T) {
		store := newTestStore(t)
		sh := seedShop(t, store)
		ctx := context.Background()

		client := &fakeClient{}
		reconciler := appsync.NewPostingReconciler(store, client, zaptest.NewLogger(t))

		raw := activePosting("0001-1")
		raw.Status = "delivering"
		raw.TrackingNumber = "LIST-TRK"
		_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{raw})
		require.NoError(t, err)

		assert.Empty(t, client.detailCalls)
	})

	t.Run("detail failure does not fail the page", func(t *testing.T) {
		store := newTestStore(t)
		sh := seedShop(t, store)
		ctx := context.Background()

		client := &fakeClient{detailErr: marketplace.ErrUnavailable}
		reconciler := appsync.NewPostingReconciler(store, client, zaptest.NewLogger(t))

		raw := activePosting("0001-1")
		raw.Status = "delivering"
		processed, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{raw})
		require.NoError(t, err)
		assert.Equal(t, 1, processed)

		posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
		require.NoError(t, err)
		assert.Empty(t, posting.TrackingNumber, "tracking stays absent and is retried next pass")
	})
}

func TestPostingReconcilerCostInfoFlag(t *testing.T) {
	store := newTestStore(t)
	sh := seedShop(t, store)
	ctx := context.Background()

	product := seedProduct(t, store, sh, "SKU-A")
	require.NoError(t, product.SetPurchasePrice(decimalFromString(t, "42.00")))
	require.NoError(t, store.Products().Save(ctx, product))

	reconciler := appsync.NewPostingReconciler(store, &fakeClient{}, zaptest.NewLogger(t))
	raw := activePosting("0001-1", marketplace.RawPostingProduct{OfferID: "SKU-A", Quantity: 1, Price: "10"})

	_, err := reconciler.ReconcilePage(ctx, sh, []marketplace.RawPosting{raw})
	require.NoError(t, err)

	posting, err := store.Postings().FindByNumber(ctx, sh.ID, "0001-1")
	require.NoError(t, err)
	assert.True(t, posting.HasCostInfo, "every referenced offer has a recorded cost")
}
