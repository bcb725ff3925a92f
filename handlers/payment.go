package handlers

import (
	"net/http"

	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// CreatePaymentIntent opens a payment for one of the caller's orders
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req services.CreateIntentInput
	if !bindJSON(c, &req) {
		return
	}
	intent, err := h.svc.Payments.CreateIntent(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	resp := gin.H{
		"success":   true,
		"paymentId": intent.Payment.ID,
		"amount":    intent.Payment.Amount,
		"payment":   intent.Payment,
	}
	if intent.ClientSecret != "" {
		resp["clientSecret"] = intent.ClientSecret
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmInput
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.svc.Payments.Confirm(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "Payment confirmed successfully"
	if payment.FailureReason != "" {
		msg = "Payment was not completed"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       msg,
		"paymentStatus": payment.Status,
		"payment":       payment,
	})
}

func (h *Handler) PaymentHistory(c *gin.Context) {
	var q services.Page
	if !bindQuery(c, &q) {
		return
	}
	list, page, err := h.svc.Payments.History(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"payments":    list,
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.svc.Payments.Get(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}
