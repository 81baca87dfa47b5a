package handler

import (
	"github.com/gin-gonic/gin"

	auditapp "github.com/shopstack/backend/internal/application/audit"
)

// AuditHandler exposes the audit log query endpoint.
type AuditHandler struct {
	BaseHandler
	service *auditapp.Service
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(service *auditapp.Service) *AuditHandler {
	return &AuditHandler{service: service}
}

// RegisterRoutes registers audit routes on the given group.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit-log", h.List)
}

// List handles GET /audit-log
func (h *AuditHandler) List(c *gin.Context) {
	var filter auditapp.ListFilter
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
