package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// OrderModel is the persistence model for order mirror rows
type OrderModel struct {
	BaseModel
	ShopID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_shop_number,priority:1"`
	RemoteOrderID int64           `gorm:"not null;index"`
	OrderNumber   string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_shop_number,priority:2"`
	Status        string          `gorm:"type:varchar(32);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ItemsAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Commission    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OrderedAt     *time.Time
	ConfirmedAt   *time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
}

// TableName specifies the table name
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to a domain order
func (m *OrderModel) ToDomain() *fulfillment.Order {
	return &fulfillment.Order{
		BaseEntity:    m.BaseModel.ToDomain(),
		ShopID:        m.ShopID,
		RemoteOrderID: m.RemoteOrderID,
		OrderNumber:   m.OrderNumber,
		Status:        m.Status,
		TotalAmount:   m.TotalAmount,
		ItemsAmount:   m.ItemsAmount,
		DeliveryPrice: m.DeliveryPrice,
		Commission:    m.Commission,
		OrderedAt:     m.OrderedAt,
		ConfirmedAt:   m.ConfirmedAt,
		ShippedAt:     m.ShippedAt,
		DeliveredAt:   m.DeliveredAt,
		CancelledAt:   m.CancelledAt,
	}
}

// FromDomain populates the model from a domain order
func (m *OrderModel) FromDomain(o *fulfillment.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ShopID = o.ShopID
	m.RemoteOrderID = o.RemoteOrderID
	m.OrderNumber = o.OrderNumber
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.ItemsAmount = o.ItemsAmount
	m.DeliveryPrice = o.DeliveryPrice
	m.Commission = o.Commission
	m.OrderedAt = o.OrderedAt
	m.ConfirmedAt = o.ConfirmedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
}

// PostingModel is the persistence model for postings.
// The posting number is unique per shop; the engine upserts by that key.
type PostingModel struct {
	BaseModel
	ShopID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_postings_shop_number,priority:1"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PostingNumber   string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_postings_shop_number,priority:2"`
	RemoteStatus    string          `gorm:"type:varchar(32);not null;index"`
	OperationStatus string          `gorm:"type:varchar(32);not null;index"`
	StatusManual    bool            `gorm:"not null;default:false"`
	SKUList         StringList      `gorm:"type:text"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HasCostInfo     bool            `gorm:"not null;default:false"`
	TrackingNumber  string          `gorm:"type:varchar(128)"`
	InProcessAt     *time.Time
	ShipmentDate    *time.Time
	RawPayload      []byte `gorm:"type:bytea"`

	Items    []PostingItemModel `gorm:"foreignKey:PostingID"`
	Packages []PackageModel     `gorm:"foreignKey:PostingID"`
}

// TableName specifies the table name
func (PostingModel) TableName() string {
	return "postings"
}

// ToDomain converts the model to a domain posting, including its associations
func (m *PostingModel) ToDomain() *fulfillment.Posting {
	p := &fulfillment.Posting{
		BaseEntity:      m.BaseModel.ToDomain(),
		ShopID:          m.ShopID,
		OrderID:         m.OrderID,
		PostingNumber:   m.PostingNumber,
		RemoteStatus:    marketplace.RemoteStatus(m.RemoteStatus),
		OperationStatus: fulfillment.OperationStatus(m.OperationStatus),
		StatusManual:    m.StatusManual,
		SKUList:         m.SKUList,
		TotalPrice:      m.TotalPrice,
		HasCostInfo:     m.HasCostInfo,
		TrackingNumber:  m.TrackingNumber,
		InProcessAt:     m.InProcessAt,
		ShipmentDate:    m.ShipmentDate,
		RawPayload:      m.RawPayload,
	}
	for i := range m.Items {
		p.Items = append(p.Items, *m.Items[i].ToDomain())
	}
	for i := range m.Packages {
		p.Packages = append(p.Packages, *m.Packages[i].ToDomain())
	}
	return p
}

// FromDomain populates the model from a domain posting. Associations are
// handled by the repository explicitly, not here.
func (m *PostingModel) FromDomain(p *fulfillment.Posting) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ShopID = p.ShopID
	m.OrderID = p.OrderID
	m.PostingNumber = p.PostingNumber
	m.RemoteStatus = string(p.RemoteStatus)
	m.OperationStatus = string(p.OperationStatus)
	m.StatusManual = p.StatusManual
	m.SKUList = p.SKUList
	m.TotalPrice = p.TotalPrice
	m.HasCostInfo = p.HasCostInfo
	m.TrackingNumber = p.TrackingNumber
	m.InProcessAt = p.InProcessAt
	m.ShipmentDate = p.ShipmentDate
	m.RawPayload = p.RawPayload
}

// PostingItemModel is the persistence model for posting line items
type PostingItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	PostingID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_posting_items_offer,priority:1"`
	OfferID   string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_posting_items_offer,priority:2"`
	SKU       int64           `gorm:"not null;default:0"`
	Name      string          `gorm:"type:varchar(255)"`
	Quantity  int             `gorm:"not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name
func (PostingItemModel) TableName() string {
	return "posting_items"
}

// ToDomain converts the model to a domain posting item
func (m *PostingItemModel) ToDomain() *fulfillment.PostingItem {
	return &fulfillment.PostingItem{
		ID:        m.ID,
		PostingID: m.PostingID,
		OfferID:   m.OfferID,
		SKU:       m.SKU,
		Name:      m.Name,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Discount:  m.Discount,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain posting item
func (m *PostingItemModel) FromDomain(item *fulfillment.PostingItem) {
	m.ID = item.ID
	m.PostingID = item.PostingID
	m.OfferID = item.OfferID
	m.SKU = item.SKU
	m.Name = item.Name
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.Discount = item.Discount
	m.Total = item.Total
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
}

// PackageModel is the persistence model for posting packages
type PackageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	PostingID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Carrier        string    `gorm:"type:varchar(128)"`
	TrackingNumber string    `gorm:"type:varchar(128)"`
	Status         string    `gorm:"type:varchar(32)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (PackageModel) TableName() string {
	return "posting_packages"
}

// ToDomain converts the model to a domain package
func (m *PackageModel) ToDomain() *fulfillment.Package {
	return &fulfillment.Package{
		ID:             m.ID,
		PostingID:      m.PostingID,
		Carrier:        m.Carrier,
		TrackingNumber: m.TrackingNumber,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain package
func (m *PackageModel) FromDomain(pkg *fulfillment.Package) {
	m.ID = pkg.ID
	m.PostingID = pkg.PostingID
	m.Carrier = pkg.Carrier
	m.TrackingNumber = pkg.TrackingNumber
	m.Status = pkg.Status
	m.CreatedAt = pkg.CreatedAt
	m.UpdatedAt = pkg.UpdatedAt
}
