package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/shared"
)

// Product mirrors one marketplace catalog record, extended with locally-owned
// economics: the purchase cost entered by the seller and a denormalized sales
// counter mutated only as a side effect of posting reconciliation.
type Product struct {
	shared.BaseEntity
	ShopID          uuid.UUID
	RemoteProductID int64
	OfferID         string
	SKU             int64
	Name            string
	Price           decimal.Decimal
	OldPrice        decimal.Decimal
	Stock           int
	Archived        bool

	// PurchasePrice is the seller-entered cost of goods; nil means unknown.
	PurchasePrice *decimal.Decimal

	// SalesCount and LastSaleAt are maintained by the sync engine, never read
	// back from the platform. SalesCount never goes below zero.
	SalesCount int64
	LastSaleAt *time.Time
}

// NewProduct creates a catalog mirror row for a first-seen offer
func NewProduct(shopID uuid.UUID, remoteProductID int64, offerID string, sku int64, name string) *Product {
	return &Product{
		BaseEntity:      shared.NewBaseEntity(),
		ShopID:          shopID,
		RemoteProductID: remoteProductID,
		OfferID:         offerID,
		SKU:             sku,
		Name:            name,
		Price:           decimal.Zero,
		OldPrice:        decimal.Zero,
	}
}

// HasCostInfo returns true when a positive purchase price is recorded
func (p *Product) HasCostInfo() bool {
	return p.PurchasePrice != nil && p.PurchasePrice.IsPositive()
}

// SetPurchasePrice records the cost of goods for profit computation
func (p *Product) SetPurchasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.ErrInvalidInput
	}
	p.PurchasePrice = &price
	p.Touch()
	return nil
}
