package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/shared"
)

// Order mirrors one marketplace order. An order owns one or more postings;
// money totals are denormalized from the raw payload on every sync.
type Order struct {
	shared.BaseEntity
	ShopID        uuid.UUID
	RemoteOrderID int64
	OrderNumber   string
	Status        string

	// TotalAmount is the platform-declared order total; ItemsAmount is the
	// line-item sum this system computes itself (the declared total is often
	// stale or absent upstream).
	TotalAmount   decimal.Decimal
	ItemsAmount   decimal.Decimal
	DeliveryPrice decimal.Decimal
	Commission    decimal.Decimal

	OrderedAt   *time.Time
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// NewOrder creates an order mirror row for a first-seen order number
func NewOrder(shopID uuid.UUID, remoteOrderID int64, orderNumber string) *Order {
	return &Order{
		BaseEntity:    shared.NewBaseEntity(),
		ShopID:        shopID,
		RemoteOrderID: remoteOrderID,
		OrderNumber:   orderNumber,
		TotalAmount:   decimal.Zero,
		ItemsAmount:   decimal.Zero,
		DeliveryPrice: decimal.Zero,
		Commission:    decimal.Zero,
	}
}
