package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sellerdesk/backend/internal/application/backoffice"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/shared"
	"github.com/sellerdesk/backend/internal/interfaces/http/dto"
)

// ShopHandler exposes shop and posting back-office endpoints
type ShopHandler struct {
	BaseHandler
	service *backoffice.Service
}

// NewShopHandler creates a shop handler
func NewShopHandler(service *backoffice.Service) *ShopHandler {
	return &ShopHandler{service: service}
}

// CreateShopRequest is the body of the shop creation endpoint
type CreateShopRequest struct {
	Name     string `json:"name" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

// SetSyncEnabledRequest toggles scheduled syncs
type SetSyncEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// OverrideStatusRequest sets a posting's operation status manually
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create registers a shop
// POST /api/v1/shops
func (h *ShopHandler) Create(c *gin.Context) {
	var req CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	sh, err := h.service.CreateShop(c.Request.Context(), req.Name, req.ClientID, req.APIKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toShopResponse(sh))
}

// List lists all shops
// GET /api/v1/shops
func (h *ShopHandler) List(c *gin.Context) {
	shops, err := h.service.ListShops(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]ShopResponse, 0, len(shops))
	for _, sh := range shops {
		resp = append(resp, toShopResponse(sh))
	}
	h.Success(c, resp)
}

// Get loads one shop
// GET /api/v1/shops/:id
func (h *ShopHandler) Get(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	sh, err := h.service.GetShop(c.Request.Context(), shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toShopResponse(sh))
}

// SetSyncEnabled toggles scheduled syncs for a shop
// PATCH /api/v1/shops/:id/sync-enabled
func (h *ShopHandler) SetSyncEnabled(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	var req SetSyncEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	sh, err := h.service.SetShopSyncEnabled(c.Request.Context(), shopID, *req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toShopResponse(sh))
}

// ListPostings pages through a shop's posting mirror
// GET /api/v1/shops/:id/postings
func (h *ShopHandler) ListPostings(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	filter := shared.DefaultFilter()
	if listReq.Page > 0 {
		filter.Page = listReq.Page
	}
	if listReq.PageSize > 0 {
		filter.PageSize = listReq.PageSize
	}

	postings, total, err := h.service.ListPostings(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]PostingResponse, 0, len(postings))
	for _, posting := range postings {
		resp = append(resp, toPostingResponse(posting))
	}
	h.SuccessWithMeta(c, resp, total, filter.Page, filter.Limit())
}

// GetPosting loads one posting by number
// GET /api/v1/shops/:id/postings/:number
func (h *ShopHandler) GetPosting(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	posting, err := h.service.GetPosting(c.Request.Context(), shopID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPostingResponse(posting))
}

// OverridePostingStatus sets a posting's operation status manually
// PATCH /api/v1/shops/:id/postings/:number/status
func (h *ShopHandler) OverridePostingStatus(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	posting, err := h.service.OverridePostingStatus(
		c.Request.Context(), shopID, c.Param("number"),
		fulfillment.OperationStatus(req.Status),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPostingResponse(posting))
}
