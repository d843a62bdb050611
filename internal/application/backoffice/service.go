package backoffice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// Service covers the seller-facing back-office operations that sit beside the
// sync engine: shop management, manual posting-status overrides, and product
// cost upkeep.
type Service struct {
	store sync.Store
	log   *zap.Logger
}

// NewService creates a back-office service
func NewService(store sync.Store, log *zap.Logger) *Service {
	return &Service{
		store: store,
		log:   log.Named("backoffice"),
	}
}

// CreateShop registers a seller account
func (s *Service) CreateShop(ctx context.Context, name, clientID, apiKey string) (*shop.Shop, error) {
	if name == "" || clientID == "" || apiKey == "" {
		return nil, shared.ErrInvalidInput
	}

	sh := &shop.Shop{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		ClientID:    clientID,
		APIKey:      apiKey,
		SyncEnabled: true,
	}
	if err := s.store.Shops().Save(ctx, sh); err != nil {
		return nil, err
	}

	s.log.Info("Shop created",
		zap.String("shop_id", sh.ID.String()),
		zap.String("name", sh.Name),
	)
	return sh, nil
}

// GetShop loads one shop
func (s *Service) GetShop(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	return s.store.Shops().FindByID(ctx, id)
}

// ListShops lists all shops
func (s *Service) ListShops(ctx context.Context) ([]*shop.Shop, error) {
	return s.store.Shops().FindAll(ctx)
}

// SetShopSyncEnabled toggles scheduled syncs for a shop
func (s *Service) SetShopSyncEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*shop.Shop, error) {
	sh, err := s.store.Shops().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sh.SyncEnabled = enabled
	sh.Touch()
	if err := s.store.Shops().Save(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// ListPostings pages through a shop's posting mirror
func (s *Service) ListPostings(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]*fulfillment.Posting, int64, error) {
	return s.store.Postings().ListByShop(ctx, shopID, filter)
}

// GetPosting loads one posting by number
func (s *Service) GetPosting(ctx context.Context, shopID uuid.UUID, number string) (*fulfillment.Posting, error) {
	return s.store.Postings().FindByNumber(ctx, shopID, number)
}

// OverridePostingStatus sets a posting's operation status manually. The
// override sticks until the platform reports a cancellation, which always
// wins over operator intent.
func (s *Service) OverridePostingStatus(ctx context.Context, shopID uuid.UUID, number string, status fulfillment.OperationStatus) (*fulfillment.Posting, error) {
	posting, err := s.store.Postings().FindByNumber(ctx, shopID, number)
	if err != nil {
		return nil, err
	}
	if err := posting.SetOperationStatusManually(status); err != nil {
		return nil, err
	}
	if err := s.store.Postings().Save(ctx, posting); err != nil {
		return nil, err
	}

	s.log.Info("Posting status overridden",
		zap.String("shop_id", shopID.String()),
		zap.String("posting_number", number),
		zap.String("status", string(status)),
	)
	return posting, nil
}

// GetProduct loads one product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.store.Products().FindByID(ctx, id)
}

// SetPurchasePrice records the cost of goods for one product
func (s *Service) SetPurchasePrice(ctx context.Context, productID uuid.UUID, price decimal.Decimal) (*catalog.Product, error) {
	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.SetPurchasePrice(price); err != nil {
		return nil, err
	}
	if err := s.store.Products().Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
