package sync

import (
	"context"

	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// Store is the unit-of-work port over the local mirror. Transaction yields a
// Store bound to one database transaction; the reconciler commits exactly
// once per page by running the whole page inside one Transaction call.
type Store interface {
	Postings() fulfillment.PostingRepository
	Orders() fulfillment.OrderRepository
	Products() catalog.ProductRepository
	Shops() shop.Repository

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
