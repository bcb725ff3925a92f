package handlers

import (
	"net/http"

	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/services"
	"restaurant-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// AdminListOrders returns all orders, filterable by status, orderType and date
func (h *Handler) AdminListOrders(c *gin.Context) {
	var q services.OrderFilter
	if !bindQuery(c, &q) {
		return
	}
	orders, page, err := h.svc.Orders.ListAll(c.Request.Context(), q)
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

// UpdateOrderStatus moves an order through the kitchen lifecycle
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateOrderStatusInput
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.svc.Orders.UpdateStatus(c.Request.Context(), id, middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Order status updated to " + string(order.Status),
		"order":             order,
		"valid_next_states": nextOrderStates(order.Status),
	})
}

func nextOrderStates(status models.OrderStatus) []models.OrderStatus {
	next := statemachine.Order.ValidTransitionsFrom(status)
	if next == nil {
		return []models.OrderStatus{}
	}
	return next
}
