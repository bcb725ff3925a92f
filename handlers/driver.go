package handlers

import (
	"io"
	"net/http"

	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// CalculateDeliveryTime estimates distance, time and fee to a customer (public)
func (h *Handler) CalculateDeliveryTime(c *gin.Context) {
	var req services.EstimateInput
	if !bindJSON(c, &req) {
		return
	}
	est := h.svc.Delivery.Estimate(req)
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"distance":              est.Distance,
		"estimatedTime":         est.EstimatedTime,
		"deliveryFee":           est.DeliveryFee,
		"estimatedDeliveryTime": est.EstimatedDeliveryTime,
	})
}

// CreateDelivery hands a ready delivery order to a courier
func (h *Handler) CreateDelivery(c *gin.Context) {
	var req services.CreateDeliveryInput
	if !bindJSON(c, &req) {
		return
	}
	tracking, err := h.svc.Delivery.Create(c.Request.Context(), viewer(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Delivery tracking created successfully",
		"tracking": tracking,
	})
}

// TrackDelivery returns the tracking record to the customer or staff
func (h *Handler) TrackDelivery(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	tracking, err := h.svc.Delivery.Track(c.Request.Context(), orderID, viewer(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tracking": tracking})
}

// StreamDelivery pushes the tracking record as server-sent events until
// the delivery completes or the client goes away.
func (h *Handler) StreamDelivery(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	updates, err := h.svc.Delivery.Watch(c.Request.Context(), orderID, viewer(c), h.pollInterval)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		tracking, open := <-updates
		if !open {
			return false
		}
		c.SSEvent("tracking", tracking)
		if tracking.Status == models.DeliveryDelivered {
			c.SSEvent("done", gin.H{"orderId": orderID})
			return false
		}
		return true
	})
}

// UpdateDeliveryLocation records the courier's position
func (h *Handler) UpdateDeliveryLocation(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	var req services.LocationInput
	if !bindJSON(c, &req) {
		return
	}
	tracking, err := h.svc.Delivery.UpdateLocation(c.Request.Context(), orderID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Location updated successfully",
		"currentLocation": tracking.CurrentLocation,
	})
}

// UpdateDeliveryStatus moves the delivery forward; delivered also closes the order
func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	var req services.DeliveryStatusInput
	if !bindJSON(c, &req) {
		return
	}
	tracking, err := h.svc.Delivery.UpdateStatus(c.Request.Context(), orderID, viewer(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Delivery status updated successfully",
		"tracking": tracking,
	})
}

// RateDelivery lets the customer rate a delivered order once
func (h *Handler) RateDelivery(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	var req services.RatingInput
	if !bindJSON(c, &req) {
		return
	}
	tracking, err := h.svc.Delivery.Rate(c.Request.Context(), orderID, middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thank you for your feedback", "tracking": tracking})
}

// ActiveDeliveries lists deliveries still on the road
func (h *Handler) ActiveDeliveries(c *gin.Context) {
	list, err := h.svc.Delivery.Active(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deliveries": list})
}
