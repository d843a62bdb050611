package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
)

// SyncHandler exposes the sync engine over HTTP
type SyncHandler struct {
	BaseHandler
	orchestrator *appsync.Orchestrator
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(orchestrator *appsync.Orchestrator) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator}
}

// StartSyncRequest is the body of the start-sync endpoint
type StartSyncRequest struct {
	Kind string `json:"kind" binding:"omitempty,oneof=orders products"`
	Mode string `json:"mode" binding:"omitempty,oneof=incremental full"`
}

// StartSyncResponse carries the fire-and-forget task handle
type StartSyncResponse struct {
	TaskID string `json:"task_id"`
}

// StartSync begins an asynchronous sync run for a shop
// POST /api/v1/shops/:id/sync
func (h *SyncHandler) StartSync(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID")
		return
	}

	var req StartSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body")
		return
	}

	kind := appsync.TaskKind(req.Kind)
	if req.Kind == "" {
		kind = appsync.TaskKindOrders
	}
	mode := appsync.Mode(req.Mode)
	if req.Mode == "" {
		mode = appsync.ModeIncremental
	}

	taskID, err := h.orchestrator.StartSync(c.Request.Context(), shopID, kind, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, StartSyncResponse{TaskID: taskID})
}

// GetTask returns a sync task snapshot
// GET /api/v1/sync/tasks/:id
func (h *SyncHandler) GetTask(c *gin.Context) {
	task, ok := h.orchestrator.GetTask(c.Param("id"))
	if !ok {
		h.NotFound(c, "Task not found")
		return
	}
	h.Success(c, task)
}
