package handlers

import (
	"net/http"

	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// PlaceOrder creates a new order for the caller
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.svc.Orders.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully!",
		"order":   order,
	})
}

// GetMyOrders returns the caller's orders, optionally by status
func (h *Handler) GetMyOrders(c *gin.Context) {
	var q services.OrderFilter
	if !bindQuery(c, &q) {
		return
	}
	q.OrderType, q.Date = "", ""
	orders, page, err := h.svc.Orders.ListMine(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orders":      orders,
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

// GetOrderDetail returns a single order with items and status history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Orders.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"order":             order,
		"valid_next_states": nextOrderStates(order.Status),
	})
}

// CancelOrder lets the owner cancel an order that has not finished
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	order, err := h.svc.Orders.Cancel(c.Request.Context(), id, middleware.GetUserID(c), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled successfully",
		"order":   order,
	})
}
