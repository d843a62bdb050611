package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/domain/shop"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
)

// GormShopRepository implements shop.Repository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new shop repository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

var _ shop.Repository = (*GormShopRepository)(nil)

// FindByID loads one shop
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	var row models.ShopModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindAll lists all shops
func (r *GormShopRepository) FindAll(ctx context.Context) ([]*shop.Shop, error) {
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	shops := make([]*shop.Shop, 0, len(rows))
	for i := range rows {
		shops = append(shops, rows[i].ToDomain())
	}
	return shops, nil
}

// FindSyncEnabled lists shops eligible for scheduled syncs
func (r *GormShopRepository) FindSyncEnabled(ctx context.Context) ([]*shop.Shop, error) {
	var rows []models.ShopModel
	err := r.db.WithContext(ctx).
		Where("sync_enabled = ?", true).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	shops := make([]*shop.Shop, 0, len(rows))
	for i := range rows {
		shops = append(shops, rows[i].ToDomain())
	}
	return shops, nil
}

// Save creates or updates a shop
func (r *GormShopRepository) Save(ctx context.Context, s *shop.Shop) error {
	var row models.ShopModel
	row.FromDomain(s)
	return r.db.WithContext(ctx).Save(&row).Error
}

// StampSynced sets the shop's last-synced-at watermark
func (r *GormShopRepository) StampSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ShopModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_synced_at": at,
			"updated_at":     time.Now(),
		}).Error
}
