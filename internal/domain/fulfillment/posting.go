package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/domain/shared"
)

// Posting is the unit of physical fulfillment for part or all of an order.
// The posting number is the natural key: globally unique per store and
// immutable. Postings are created on first sight of a number and updated on
// every later sync that observes it; the engine never deletes them.
type Posting struct {
	shared.BaseEntity
	ShopID        uuid.UUID
	OrderID       uuid.UUID
	PostingNumber string

	// RemoteStatus is the latest status reported by the marketplace.
	RemoteStatus marketplace.RemoteStatus
	// OperationStatus is the locally-owned stage; see NextOperationStatus.
	OperationStatus OperationStatus
	// StatusManual is true when OperationStatus was last set by an operator
	// rather than a sync pass.
	StatusManual bool

	// Denormalized fields derived from the raw payload.
	SKUList     []string
	TotalPrice  decimal.Decimal
	HasCostInfo bool

	TrackingNumber string
	InProcessAt    *time.Time
	ShipmentDate   *time.Time

	// RawPayload is the verbatim upstream record, kept for audit and replay.
	RawPayload []byte

	Items    []PostingItem
	Packages []Package
}

// NewPosting creates a posting for a number seen for the first time.
// The operation status is initialized purely from the remote status.
func NewPosting(shopID, orderID uuid.UUID, postingNumber string, remote marketplace.RemoteStatus) *Posting {
	return &Posting{
		BaseEntity:      shared.NewBaseEntity(),
		ShopID:          shopID,
		OrderID:         orderID,
		PostingNumber:   postingNumber,
		RemoteStatus:    remote,
		OperationStatus: InitialOperationStatus(remote),
		TotalPrice:      decimal.Zero,
	}
}

// ApplyRemoteStatus reconciles the posting's statuses against the latest
// remote status, honoring manual overrides. A forced cancellation clears the
// override flag so later syncs track remote truth again.
func (p *Posting) ApplyRemoteStatus(remote marketplace.RemoteStatus) {
	next := NextOperationStatus(p.OperationStatus, remote, p.StatusManual)
	if p.StatusManual && next != p.OperationStatus {
		p.StatusManual = false
	}
	p.RemoteStatus = remote
	p.OperationStatus = next
}

// SetOperationStatusManually records an operator-chosen stage
func (p *Posting) SetOperationStatusManually(status OperationStatus) error {
	if !status.IsValid() {
		return shared.ErrInvalidInput
	}
	p.OperationStatus = status
	p.StatusManual = true
	p.Touch()
	return nil
}

// HasUsableTracking returns true when the list payload already carried a
// tracking number, making a detail-endpoint fetch unnecessary.
func (p *Posting) HasUsableTracking() bool {
	if p.TrackingNumber != "" {
		return true
	}
	for _, pkg := range p.Packages {
		if pkg.TrackingNumber != "" {
			return true
		}
	}
	return false
}

// NeedsTrackingDetail reports whether the tracking detail endpoint should be
// called for this posting: the remote status says tracking should exist and
// none is present yet.
func (p *Posting) NeedsTrackingDetail() bool {
	return p.RemoteStatus.TrackingExpected() && !p.HasUsableTracking()
}

// PostingItem is one order line item of a posting, keyed by (posting, offer).
// The item set always mirrors the current upstream line-item list exactly.
type PostingItem struct {
	ID        uuid.UUID
	PostingID uuid.UUID
	OfferID   string
	SKU       int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPostingItem creates a line item for a posting
func NewPostingItem(postingID uuid.UUID, offerID string, sku int64, name string, quantity int, unitPrice, discount decimal.Decimal) *PostingItem {
	now := time.Now()
	return &PostingItem{
		ID:        uuid.New(),
		PostingID: postingID,
		OfferID:   offerID,
		SKU:       sku,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Discount:  discount,
		Total:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Package is one physical parcel with carrier tracking attached to a posting
type Package struct {
	ID             uuid.UUID
	PostingID      uuid.UUID
	Carrier        string
	TrackingNumber string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPackage creates a package row for a posting
func NewPackage(postingID uuid.UUID, carrier, trackingNumber, status string) *Package {
	now := time.Now()
	return &Package{
		ID:             uuid.New(),
		PostingID:      postingID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
