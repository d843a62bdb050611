package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// GormStore implements the sync engine's unit-of-work port. Transaction
// yields a store whose repositories share one database transaction, so a
// page either commits whole or not at all.
type GormStore struct {
	db       *gorm.DB
	postings *GormPostingRepository
	orders   *GormOrderRepository
	products *GormProductRepository
	shops    *GormShopRepository
}

// NewGormStore creates a store over a database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		postings: NewGormPostingRepository(db),
		orders:   NewGormOrderRepository(db),
		products: NewGormProductRepository(db),
		shops:    NewGormShopRepository(db),
	}
}

var _ sync.Store = (*GormStore)(nil)

// Postings returns the posting repository
func (s *GormStore) Postings() fulfillment.PostingRepository {
	return s.postings
}

// Orders returns the order repository
func (s *GormStore) Orders() fulfillment.OrderRepository {
	return s.orders
}

// Products returns the product repository
func (s *GormStore) Products() catalog.ProductRepository {
	return s.products
}

// Shops returns the shop repository
func (s *GormStore) Shops() shop.Repository {
	return s.shops
}

// Transaction runs fn against a store bound to one database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx sync.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(NewGormStore(txDB))
	})
}
