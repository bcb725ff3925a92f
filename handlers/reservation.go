package handlers

import (
	"net/http"

	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// SendReservation books a table. Guests may book without logging in.
func (h *Handler) SendReservation(c *gin.Context) {
	var req services.BookInput
	if !bindJSON(c, &req) {
		return
	}
	var customerID *uint
	if id, ok := middleware.CurrentUserID(c); ok {
		customerID = &id
	}
	reservation, err := h.svc.Reservations.Book(c.Request.Context(), customerID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Reservation sent successfully!",
		"reservation": reservation,
	})
}

func (h *Handler) MyReservations(c *gin.Context) {
	list, err := h.svc.Reservations.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reservations": list})
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reservation, err := h.svc.Reservations.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reservation": reservation})
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reservation, err := h.svc.Reservations.Cancel(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Reservation cancelled successfully",
		"reservation": reservation,
	})
}
