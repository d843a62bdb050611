package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/sellerdesk/backend/internal/domain/shared"
)

// PostingRepository persists postings with the bulk operations the batch
// reconciler needs: one existence lookup and one insert per page, not per
// record.
type PostingRepository interface {
	// FindByNumbers bulk-loads postings (with items and packages) for a page
	// of posting numbers
	FindByNumbers(ctx context.Context, shopID uuid.UUID, numbers []string) ([]*Posting, error)

	// FindByNumber loads a single posting with items and packages
	FindByNumber(ctx context.Context, shopID uuid.UUID, number string) (*Posting, error)

	// CreateBatch bulk-inserts new postings together with their items
	CreateBatch(ctx context.Context, postings []*Posting) error

	// Save updates a posting row (statuses, denormalized fields, raw payload)
	Save(ctx context.Context, posting *Posting) error

	// InsertItems, UpdateItems and DeleteItems apply a line-item diff
	InsertItems(ctx context.Context, items []*PostingItem) error
	UpdateItems(ctx context.Context, items []*PostingItem) error
	DeleteItems(ctx context.Context, ids []uuid.UUID) error

	// ReplacePackages replaces the package set of one posting
	ReplacePackages(ctx context.Context, postingID uuid.UUID, packages []*Package) error

	// ListByShop pages through the local mirror for read endpoints
	ListByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]*Posting, int64, error)
}

// OrderRepository persists order mirror rows
type OrderRepository interface {
	// FindByNumbers bulk-loads orders for a page of order numbers
	FindByNumbers(ctx context.Context, shopID uuid.UUID, numbers []string) ([]*Order, error)

	// CreateBatch bulk-inserts new orders
	CreateBatch(ctx context.Context, orders []*Order) error

	// Save updates an order row
	Save(ctx context.Context, order *Order) error
}
