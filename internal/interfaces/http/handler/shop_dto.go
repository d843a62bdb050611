package handler

import (
	"time"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// ShopResponse is the API representation of a shop. The API key is never
// echoed back.
type ShopResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	ClientID     string     `json:"client_id"`
	SyncEnabled  bool       `json:"sync_enabled"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toShopResponse(s *shop.Shop) ShopResponse {
	return ShopResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		ClientID:     s.ClientID,
		SyncEnabled:  s.SyncEnabled,
		LastSyncedAt: s.LastSyncedAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// PostingResponse is the API representation of a posting
type PostingResponse struct {
	ID              string                `json:"id"`
	PostingNumber   string                `json:"posting_number"`
	OrderID         string                `json:"order_id"`
	RemoteStatus    string                `json:"remote_status"`
	OperationStatus string                `json:"operation_status"`
	StatusManual    bool                  `json:"status_manual"`
	SKUList         []string              `json:"sku_list"`
	TotalPrice      string                `json:"total_price"`
	HasCostInfo     bool                  `json:"has_cost_info"`
	TrackingNumber  string                `json:"tracking_number,omitempty"`
	InProcessAt     *time.Time            `json:"in_process_at,omitempty"`
	ShipmentDate    *time.Time            `json:"shipment_date,omitempty"`
	Items           []PostingItemResponse `json:"items"`
	Packages        []PackageResponse     `json:"packages"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// PostingItemResponse is the API representation of a posting line item
type PostingItemResponse struct {
	OfferID   string `json:"offer_id"`
	SKU       int64  `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
}

// PackageResponse is the API representation of a posting package
type PackageResponse struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

func toPostingResponse(p *fulfillment.Posting) PostingResponse {
	resp := PostingResponse{
		ID:              p.ID.String(),
		PostingNumber:   p.PostingNumber,
		OrderID:         p.OrderID.String(),
		RemoteStatus:    string(p.RemoteStatus),
		OperationStatus: string(p.OperationStatus),
		StatusManual:    p.StatusManual,
		SKUList:         p.SKUList,
		TotalPrice:      p.TotalPrice.String(),
		HasCostInfo:     p.HasCostInfo,
		TrackingNumber:  p.TrackingNumber,
		InProcessAt:     p.InProcessAt,
		ShipmentDate:    p.ShipmentDate,
		Items:           make([]PostingItemResponse, 0, len(p.Items)),
		Packages:        make([]PackageResponse, 0, len(p.Packages)),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	for _, item := range p.Items {
		resp.Items = append(resp.Items, PostingItemResponse{
			OfferID:   item.OfferID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Discount:  item.Discount.String(),
			Total:     item.Total.String(),
		})
	}
	for _, pkg := range p.Packages {
		resp.Packages = append(resp.Packages, PackageResponse{
			Carrier:        pkg.Carrier,
			TrackingNumber: pkg.TrackingNumber,
			Status:         pkg.Status,
		})
	}
	return resp
}
