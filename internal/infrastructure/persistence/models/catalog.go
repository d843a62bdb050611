package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog mirror rows
type ProductModel struct {
	BaseModel
	ShopID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_products_shop_offer,priority:1"`
	RemoteProductID int64            `gorm:"not null;index"`
	OfferID         string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_shop_offer,priority:2"`
	SKU             int64            `gorm:"not null;default:0;index"`
	Name            string           `gorm:"type:varchar(255)"`
	Price           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	OldPrice        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Stock           int              `gorm:"not null;default:0"`
	Archived        bool             `gorm:"not null;default:false"`
	PurchasePrice   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SalesCount      int64            `gorm:"not null;default:0"`
	LastSaleAt      *time.Time
}

// TableName specifies the table name
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:      m.BaseModel.ToDomain(),
		ShopID:          m.ShopID,
		RemoteProductID: m.RemoteProductID,
		OfferID:         m.OfferID,
		SKU:             m.SKU,
		Name:            m.Name,
		Price:           m.Price,
		OldPrice:        m.OldPrice,
		Stock:           m.Stock,
		Archived:        m.Archived,
		PurchasePrice:   m.PurchasePrice,
		SalesCount:      m.SalesCount,
		LastSaleAt:      m.LastSaleAt,
	}
}

// FromDomain populates the model from a domain product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ShopID = p.ShopID
	m.RemoteProductID = p.RemoteProductID
	m.OfferID = p.OfferID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Price = p.Price
	m.OldPrice = p.OldPrice
	m.Stock = p.Stock
	m.Archived = p.Archived
	m.PurchasePrice = p.PurchasePrice
	m.SalesCount = p.SalesCount
	m.LastSaleAt = p.LastSaleAt
}
