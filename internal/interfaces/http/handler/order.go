package handler

import (
	ordersapp "github.com/aerofood/backend/internal/application/orders"
	"github.com/aerofood/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *ordersapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *ordersapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders", h.Create)
	rg.GET("/orders", h.List)
	rg.GET("/orders/stats/summary", h.GetStatusSummary)
	rg.GET("/orders/number/:order_number", h.GetByOrderNumber)
	rg.GET("/orders/:id", h.GetByID)
	rg.PUT("/orders/:id", h.UpdateStatus)
	rg.POST("/orders/batch-status", h.BatchUpdateStatus)
}

// Create handles POST /orders. On success the response carries the order
// plus a wa.me deep link the storefront opens to submit the order to the
// shop over WhatsApp.
func (h *OrderHandler) Create(c *gin.Context) {
	var req ordersapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID handles GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByOrderNumber handles GET /orders/number/:order_number
func (h *OrderHandler) GetByOrderNumber(c *gin.Context) {
	orderNumber := c.Param("order_number")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List handles GET /orders with optional status filter, search and paging
func (h *OrderHandler) List(c *gin.Context) {
	var filter ordersapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// UpdateStatus handles PUT /orders/:id. An invalid transition is a
// client mistake and comes back as 400 with the current and requested
// status named in the message.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ordersapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// BatchUpdateStatus handles POST /orders/batch-status. The batch is
// all-or-nothing at the precheck stage: if any order cannot take the
// requested transition the whole batch is rejected before anything is
// written. Per-order persistence failures after the precheck surface as
// partial success in the result lists.
func (h *OrderHandler) BatchUpdateStatus(c *gin.Context) {
	var req ordersapp.BatchUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.BatchUpdateStatus(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetStatusSummary handles GET /orders/stats/summary
func (h *OrderHandler) GetStatusSummary(c *gin.Context) {
	summary, err := h.orderService.GetStatusSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
