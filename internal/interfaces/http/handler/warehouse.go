package handler

import (
	"github.com/gin-gonic/gin"

	warehouseapp "github.com/shopstack/backend/internal/application/warehouse"
)

// WarehouseHandler exposes the warehouse endpoints.
type WarehouseHandler struct {
	BaseHandler
	service *warehouseapp.Service
}

// NewWarehouseHandler creates a WarehouseHandler.
func NewWarehouseHandler(service *warehouseapp.Service) *WarehouseHandler {
	return &WarehouseHandler{service: service}
}

// RegisterRoutes registers warehouse routes on the given group.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.Create)
		warehouses.GET("", h.List)
		warehouses.GET("/:id", h.GetByID)
		warehouses.PUT("/:id", h.Update)
		warehouses.DELETE("/:id", h.Delete)
		warehouses.POST("/:id/restore", h.Restore)
		warehouses.POST("/:id/transfer-inventory", h.TransferInventory)
	}
}

// Create handles POST /warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	var req warehouseapp.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	var filter warehouseapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID handles GET /warehouses/:id
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid warehouse id")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /warehouses/:id
func (h *WarehouseHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid warehouse id")
		return
	}

	var req warehouseapp.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /warehouses/:id
func (h *WarehouseHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid warehouse id")
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id})
}

// Restore handles POST /warehouses/:id/restore
func (h *WarehouseHandler) Restore(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid warehouse id")
		return
	}

	resp, err := h.service.Restore(c.Request.Context(), actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TransferInventory handles POST /warehouses/:id/transfer-inventory
func (h *WarehouseHandler) TransferInventory(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity required")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid warehouse id")
		return
	}

	var req warehouseapp.TransferInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.TransferInventory(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
