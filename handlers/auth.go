package handlers

import (
	"net/http"

	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// Register creates a customer account and logs it in
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful! You are now logged in.",
		"token":   token,
		"user":    user,
	})
}

// Login authenticates and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout revokes the token the request was made with
func (h *Handler) Logout(c *gin.Context) {
	if err := h.tokens.Revoke(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.svc.Auth.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": user})
}

func (h *Handler) AddAddress(c *gin.Context) {
	var req services.AddressInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.AddAddress(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Address added successfully", "addresses": user.Addresses})
}
