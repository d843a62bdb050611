package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
)

// GormPostingRepository implements fulfillment.PostingRepository using GORM
type GormPostingRepository struct {
	db *gorm.DB
}

// NewGormPostingRepository creates a new posting repository
func NewGormPostingRepository(db *gorm.DB) *GormPostingRepository {
	return &GormPostingRepository{db: db}
}

var _ fulfillment.PostingRepository = (*GormPostingRepository)(nil)

// FindByNumbers bulk-loads postings with their items and packages
func (r *GormPostingRepository) FindByNumbers(ctx context.Context, shopID uuid.UUID, numbers []string) ([]*fulfillment.Posting, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	var rows []models.PostingModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Packages").
		Where("shop_id = ? AND posting_number IN ?", shopID, numbers).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	postings := make([]*fulfillment.Posting, 0, len(rows))
	for i := range rows {
		postings = append(postings, rows[i].ToDomain())
	}
	return postings, nil
}

// FindByNumber loads a single posting with items and packages
func (r *GormPostingRepository) FindByNumber(ctx context.Context, shopID uuid.UUID, number string) (*fulfillment.Posting, error) {
	var row models.PostingModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Packages").
		Where("shop_id = ? AND posting_number = ?", shopID, number).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// CreateBatch bulk-inserts new postings together with their items
func (r *GormPostingRepository) CreateBatch(ctx context.Context, postings []*fulfillment.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	rows := make([]models.PostingModel, len(postings))
	var items []models.PostingItemModel
	for i, posting := range postings {
		rows[i].FromDomain(posting)
		for j := range posting.Items {
			var item models.PostingItemModel
			item.FromDomain(&posting.Items[j])
			items = append(items, item)
		}
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// Save updates a posting row. Items and packages are managed through the
// dedicated diff operations, never implicitly.
func (r *GormPostingRepository) Save(ctx context.Context, posting *fulfillment.Posting) error {
	var row models.PostingModel
	row.FromDomain(posting)
	return r.db.WithContext(ctx).
		Omit("Items", "Packages").
		Save(&row).Error
}

// InsertItems bulk-inserts line items
func (r *GormPostingRepository) InsertItems(ctx context.Context, items []*fulfillment.PostingItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.PostingItemModel, len(items))
	for i, item := range items {
		rows[i].FromDomain(item)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// UpdateItems saves changed line items one by one; pages are small enough
// that per-row updates inside the page transaction are acceptable
func (r *GormPostingRepository) UpdateItems(ctx context.Context, items []*fulfillment.PostingItem) error {
	for _, item := range items {
		var row models.PostingItemModel
		row.FromDomain(item)
		if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteItems removes line items by ID
func (r *GormPostingRepository) DeleteItems(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.PostingItemModel{}).Error
}

// ReplacePackages replaces the package set of one posting
func (r *GormPostingRepository) ReplacePackages(ctx context.Context, postingID uuid.UUID, packages []*fulfillment.Package) error {
	err := r.db.WithContext(ctx).
		Where("posting_id = ?", postingID).
		Delete(&models.PackageModel{}).Error
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		return nil
	}

	rows := make([]models.PackageModel, len(packages))
	for i, pkg := range packages {
		rows[i].FromDomain(pkg)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListByShop pages through the local mirror ordered by newest first
func (r *GormPostingRepository) ListByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]*fulfillment.Posting, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PostingModel{}).
		Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PostingModel
	err := query.
		Preload("Items").
		Preload("Packages").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	postings := make([]*fulfillment.Posting, 0, len(rows))
	for i := range rows {
		postings = append(postings, rows[i].ToDomain())
	}
	return postings, total, nil
}
