package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/application/backoffice"
	"github.com/sellerdesk/backend/internal/domain/catalog"
)

// ProductHandler exposes catalog back-office endpoints
type ProductHandler struct {
	BaseHandler
	service *backoffice.Service
}

// NewProductHandler creates a product handler
func NewProductHandler(service *backoffice.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// SetPurchasePriceRequest records the cost of goods
type SetPurchasePriceRequest struct {
	PurchasePrice string `json:"purchase_price" binding:"required"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID            string     `json:"id"`
	OfferID       string     `json:"offer_id"`
	SKU           int64      `json:"sku"`
	Name          string     `json:"name"`
	Price         string     `json:"price"`
	OldPrice      string     `json:"old_price"`
	Stock         int        `json:"stock"`
	Archived      bool       `json:"archived"`
	PurchasePrice *string    `json:"purchase_price,omitempty"`
	SalesCount    int64      `json:"sales_count"`
	LastSaleAt    *time.Time `json:"last_sale_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:         p.ID.String(),
		OfferID:    p.OfferID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      p.Price.String(),
		OldPrice:   p.OldPrice.String(),
		Stock:      p.Stock,
		Archived:   p.Archived,
		SalesCount: p.SalesCount,
		LastSaleAt: p.LastSaleAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.PurchasePrice != nil {
		s := p.PurchasePrice.String()
		resp.PurchasePrice = &s
	}
	return resp
}

// Get loads one product
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// SetPurchasePrice records the cost of goods for one product
// PUT /api/v1/products/:id/purchase-price
func (h *ProductHandler) SetPurchasePrice(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req SetPurchasePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	price, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil {
		h.BadRequest(c, "Invalid purchase price")
		return
	}

	product, err := h.service.SetPurchasePrice(c.Request.Context(), productID, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}
