package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// FindByOfferIDs bulk-loads products for a set of offer identifiers
func (r *GormProductRepository) FindByOfferIDs(ctx context.Context, shopID uuid.UUID, offerIDs []string) ([]*catalog.Product, error) {
	if len(offerIDs) == 0 {
		return nil, nil
	}

	var rows []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND offer_id IN ?", shopID, offerIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	products := make([]*catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].ToDomain())
	}
	return products, nil
}

// FindByID loads one product
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var row models.ProductModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// CreateBatch bulk-inserts new products
func (r *GormProductRepository) CreateBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.ProductModel, len(products))
	for i, product := range products {
		rows[i].FromDomain(product)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Save updates a product row
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	var row models.ProductModel
	row.FromDomain(product)
	return r.db.WithContext(ctx).Save(&row).Error
}

// ApplySalesDeltas applies counter adjustments in bulk. The counter is
// clamped at zero in SQL so a stray negative delta can never drive it below
// zero, and last_sale_at only moves forward.
func (r *GormProductRepository) ApplySalesDeltas(ctx context.Context, deltas []catalog.SalesDelta) error {
	for _, delta := range deltas {
		if delta.Quantity == 0 {
			continue
		}

		updates := map[string]any{
			"sales_count": gorm.Expr(
				"CASE WHEN sales_count + ? < 0 THEN 0 ELSE sales_count + ? END",
				delta.Quantity, delta.Quantity,
			),
		}
		if delta.Quantity > 0 {
			updates["last_sale_at"] = gorm.Expr(
				"CASE WHEN last_sale_at IS NULL OR last_sale_at < ? THEN ? ELSE last_sale_at END",
				delta.SoldAt, delta.SoldAt,
			)
		}

		err := r.db.WithContext(ctx).
			Model(&models.ProductModel{}).
			Where("id = ?", delta.ProductID).
			Updates(updates).Error
		if err != nil {
			return err
		}
	}
	return nil
}
