package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/shopstack/backend/internal/application/inventory"
)

// InventoryHandler exposes the inventory record endpoints.
type InventoryHandler struct {
	BaseHandler
	service           *inventoryapp.Service
	lowStockThreshold int64
}

// NewInventoryHandler creates an InventoryHandler. The threshold is the
// default used by the low-stock listing when the query omits one.
func NewInventoryHandler(service *inventoryapp.Service, lowStockThreshold int64) *InventoryHandler {
	return &InventoryHandler{
		service:           service,
		lowStockThreshold: lowStockThreshold,
	}
}

// RegisterRoutes registers inventory routes on the given group.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.POST("", h.Create)
		inventory.GET("/low-stock", h.GetLowStock)
		inventory.POST("/transfer", h.Transfer)
		inventory.GET("/warehouse/:id", h.GetByWarehouse)
		inventory.GET("/product/:id", h.GetByProduct)
		inventory.GET("/:id", h.GetByID)
		inventory.POST("/:id/increase", h.Increase)
		inventory.DELETE("/:id", h.Delete)
		inventory.POST("/:id/restore", h.Restore)
	}
}

// Create handles POST /inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	var req inventoryapp.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateInventory(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /inventory/:id
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid inventory record id")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Increase handles POST /inventory/:id/increase
func (h *InventoryHandler) Increase(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid inventory record id")
		return
	}

	var req inventoryapp.IncreaseQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.IncreaseQuantity(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transfer handles POST /inventory/transfer
func (h *InventoryHandler) Transfer(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	var req inventoryapp.TransferQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.TransferQuantity(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /inventory/:id
func (h *InventoryHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid inventory record id")
		return
	}

	if err := h.service.DeleteInventory(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id})
}

// Restore handles POST /inventory/:id/restore
func (h *InventoryHandler) Restore(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid inventory record id")
		return
	}

	resp, err := h.service.RestoreInventory(c.Request.Context(), actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByWarehouse handles GET /inventory/warehouse/:id
func (h *InventoryHandler) GetByWarehouse(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid warehouse id")
		return
	}

	resp, err := h.service.GetByWarehouse(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByProduct handles GET /inventory/product/:id
func (h *InventoryHandler) GetByProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product id")
		return
	}

	resp, err := h.service.GetByProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetLowStock handles GET /inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	var filter inventoryapp.LowStockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	threshold := h.lowStockThreshold
	if filter.Threshold != nil {
		threshold = *filter.Threshold
	}

	resp, err := h.service.GetLowStock(c.Request.Context(), threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
