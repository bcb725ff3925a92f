package handlers

import (
	"net/http"

	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// AdminListReservations returns reservations by date and status
func (h *Handler) AdminListReservations(c *gin.Context) {
	var q services.ReservationFilter
	if !bindQuery(c, &q) {
		return
	}
	list, page, err := h.svc.Reservations.ListAll(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"reservations": list,
		"total":        page.Total,
		"totalPages":   page.TotalPages,
		"currentPage":  page.CurrentPage,
	})
}

// UpdateReservationStatus moves a reservation through its lifecycle
func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateReservationStatusInput
	if !bindJSON(c, &req) {
		return
	}
	reservation, err := h.svc.Reservations.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Reservation status updated successfully",
		"reservation": reservation,
	})
}

// ProcessRefund refunds a completed payment, in full unless an amount is given
func (h *Handler) ProcessRefund(c *gin.Context) {
	var req services.RefundInput
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.svc.Payments.Refund(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Refund processed successfully",
		"refundAmount": payment.RefundAmount,
		"payment":      payment,
	})
}
