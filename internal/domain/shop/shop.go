package shop

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/domain/shared"
)

// Shop is one seller account on the marketplace. LastSyncedAt is the
// watermark stamped after each successful posting sync.
type Shop struct {
	shared.BaseEntity
	Name         string
	ClientID     string
	APIKey       string
	SyncEnabled  bool
	LastSyncedAt *time.Time
}

// Credentials returns the marketplace credentials for this shop
func (s *Shop) Credentials() marketplace.Credentials {
	return marketplace.Credentials{
		ClientID: s.ClientID,
		APIKey:   s.APIKey,
	}
}

// Repository persists shops
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindAll(ctx context.Context) ([]*Shop, error)
	FindSyncEnabled(ctx context.Context) ([]*Shop, error)
	Save(ctx context.Context, shop *Shop) error

	// StampSynced sets the shop's last-synced-at watermark
	StampSynced(ctx context.Context, id uuid.UUID, at time.Time) error
}
