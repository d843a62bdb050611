package models

import (
	"time"

	"github.com/sellerdesk/backend/internal/domain/shop"
)

// ShopModel is the persistence model for seller accounts
type ShopModel struct {
	BaseModel
	Name         string `gorm:"type:varchar(128);not null"`
	ClientID     string `gorm:"type:varchar(128);not null"`
	APIKey       string `gorm:"type:varchar(256);not null"`
	SyncEnabled  bool   `gorm:"not null;default:true"`
	LastSyncedAt *time.Time
}

// TableName specifies the table name
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the model to a domain shop
func (m *ShopModel) ToDomain() *shop.Shop {
	return &shop.Shop{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		ClientID:     m.ClientID,
		APIKey:       m.APIKey,
		SyncEnabled:  m.SyncEnabled,
		LastSyncedAt: m.LastSyncedAt,
	}
}

// FromDomain populates the model from a domain shop
func (m *ShopModel) FromDomain(s *shop.Shop) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.ClientID = s.ClientID
	m.APIKey = s.APIKey
	m.SyncEnabled = s.SyncEnabled
	m.LastSyncedAt = s.LastSyncedAt
}
