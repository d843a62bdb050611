package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)

// FindByNumbers bulk-loads orders for a page of order numbers
func (r *GormOrderRepository) FindByNumbers(ctx context.Context, shopID uuid.UUID, numbers []string) ([]*fulfillment.Order, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND order_number IN ?", shopID, numbers).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*fulfillment.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].ToDomain())
	}
	return orders, nil
}

// CreateBatch bulk-inserts new orders
func (r *GormOrderRepository) CreateBatch(ctx context.Context, orders []*fulfillment.Order) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([]models.OrderModel, len(orders))
	for i, order := range orders {
		rows[i].FromDomain(order)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Save updates an order row
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	var row models.OrderModel
	row.FromDomain(order)
	return r.db.WithContext(ctx).Save(&row).Error
}
