package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SalesDelta is one product's sales-counter adjustment produced by posting
// reconciliation. Quantity may be negative (cancellation).
type SalesDelta struct {
	ProductID uuid.UUID
	Quantity  int64
	SoldAt    time.Time
}

// ProductRepository persists the catalog mirror. Lookups are bulk:
// the reconciler resolves every offer referenced by a page in one query.
type ProductRepository interface {
	// FindByOfferIDs bulk-loads products for a set of offer identifiers
	FindByOfferIDs(ctx context.Context, shopID uuid.UUID, offerIDs []string) ([]*Product, error)

	// FindByID loads one product
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// CreateBatch bulk-inserts new products
	CreateBatch(ctx context.Context, products []*Product) error

	// Save updates a product row
	Save(ctx context.Context, product *Product) error

	// ApplySalesDeltas applies counter adjustments in bulk, clamping each
	// counter at zero and advancing last_sale_at for positive deltas
	ApplySalesDeltas(ctx context.Context, deltas []SalesDelta) error
}
