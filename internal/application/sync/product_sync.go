package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// ProductReconciler applies one page of raw catalog records to the local
// product mirror. Same shape as the posting reconciler: one bulk lookup, one
// bulk insert, per-record updates, one transaction per page.
//
// Locally-owned product state (purchase price, sales counter) is never
// touched here; only the platform-owned fields are overwritten.
type ProductReconciler struct {
	store Store
	log   *zap.Logger
}

// NewProductReconciler creates a catalog reconciler
func NewProductReconciler(store Store, log *zap.Logger) *ProductReconciler {
	return &ProductReconciler{
		store: store,
		log:   log.Named("product-reconciler"),
	}
}

// ReconcilePage reconciles a catalog page inside one transaction
func (r *ProductReconciler) ReconcilePage(ctx context.Context, sh *shop.Shop, page []marketplace.RawProduct) (int, error) {
	if len(page) == 0 {
		return 0, nil
	}

	processed := 0
	err := r.store.Transaction(ctx, func(tx Store) error {
		n, err := r.reconcile(ctx, tx, sh, page)
		processed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

func (r *ProductReconciler) reconcile(ctx context.Context, tx Store, sh *shop.Shop, page []marketplace.RawProduct) (int, error) {
	offerIDs := make([]string, 0, len(page))
	seen := make(map[string]struct{}, len(page))
	for _, raw := range page {
		if raw.OfferID == "" {
			continue
		}
		if _, ok := seen[raw.OfferID]; !ok {
			seen[raw.OfferID] = struct{}{}
			offerIDs = append(offerIDs, raw.OfferID)
		}
	}
	if len(offerIDs) == 0 {
		return 0, nil
	}

	existing, err := tx.Products().FindByOfferIDs(ctx, sh.ID, offerIDs)
	if err != nil {
		return 0, err
	}
	byOffer := make(map[string]*catalog.Product, len(existing))
	for _, product := range existing {
		byOffer[product.OfferID] = product
	}

	// Last occurrence of a duplicated offer wins within a page.
	lastIndex := make(map[string]int, len(page))
	for i, raw := range page {
		lastIndex[raw.OfferID] = i
	}

	var creates []*catalog.Product
	processed := 0
	for i, raw := range page {
		if raw.OfferID == "" {
			r.log.Warn("Skipping catalog record without offer id",
				zap.String("shop_id", sh.ID.String()),
				zap.Int64("product_id", raw.ProductID),
			)
			continue
		}
		if lastIndex[raw.OfferID] != i {
			continue
		}

		product, exists := byOffer[raw.OfferID]
		if !exists {
			product = catalog.NewProduct(sh.ID, raw.ProductID, raw.OfferID, raw.SKU, raw.Name)
			byOffer[raw.OfferID] = product
			creates = append(creates, product)
		}
		applyProductFields(product, raw)
		if exists {
			if err := tx.Products().Save(ctx, product); err != nil {
				return 0, err
			}
		}
		processed++
	}

	if len(creates) > 0 {
		if err := tx.Products().CreateBatch(ctx, creates); err != nil {
			return 0, err
		}
	}
	return processed, nil
}

func applyProductFields(product *catalog.Product, raw marketplace.RawProduct) {
	product.RemoteProductID = raw.ProductID
	product.SKU = raw.SKU
	if raw.Name != "" {
		product.Name = raw.Name
	}
	product.Price = marketplace.DecimalOrZero(raw.Price)
	product.OldPrice = marketplace.DecimalOrZero(raw.OldPrice)
	product.Stock = raw.Stock
	product.Archived = raw.Archived
	product.Touch()
}
