package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/IngCuriel/MariamPos-sub000/internal/apierror"
	"github.com/IngCuriel/MariamPos-sub000/internal/dto"
	"github.com/IngCuriel/MariamPos-sub000/internal/service"
	"github.com/IngCuriel/MariamPos-sub000/internal/worker"
)

type InventoryHandler struct {
	svc        service.InventoryService
	dispatcher *worker.Dispatcher
}

func NewInventoryHandler(svc service.InventoryService, dispatcher *worker.Dispatcher) *InventoryHandler {
	return &InventoryHandler{svc: svc, dispatcher: dispatcher}
}

// ApplyMovement handles POST /v1/inventory/movements
func (h *InventoryHandler) ApplyMovement(c *gin.Context) {
	var req dto.InventoryMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ApplyMovement(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Stock handles GET /v1/inventory/products/:id/stock
func (h *InventoryHandler) Stock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	resp, err := h.svc.CurrentStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Kardex handles GET /v1/inventory/products/:id/kardex?page=&limit=
func (h *InventoryHandler) Kardex(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	resp, err := h.svc.Kardex(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockAsOf handles GET /v1/inventory/products/:id/stock-as-of/:movement_id
func (h *InventoryHandler) StockAsOf(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	movementID, err := uuid.Parse(c.Param("movement_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid movement id"))
		return
	}
	stock, err := h.svc.StockAsOf(c.Request.Context(), productID, movementID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":  productID.String(),
		"movement_id": movementID.String(),
		"balance":     stock,
	})
}

// VerifySnapshot handles GET /v1/inventory/products/:id/snapshot
func (h *InventoryHandler) VerifySnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	match, folded, cached, err := h.svc.VerifySnapshot(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": id.String(),
		"match":      match,
		"folded":     folded,
		"snapshot":   cached,
	})
}

// RebuildSnapshot handles POST /v1/inventory/products/:id/snapshot/rebuild.
// The rebuild itself runs on the worker pool; this only enqueues.
func (h *InventoryHandler) RebuildSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	if err := h.dispatcher.EnqueueSnapshotRebuild(c.Request.Context(), worker.SnapshotRebuildPayload{
		ProductID: id.String(),
	}); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
