package handlers

import (
	"net/http"

	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// AddMenuItem adds a dish to the menu
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req services.MenuItemInput
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Menu.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Menu item created successfully", "menuItem": item})
}

// UpdateMenuItem replaces a menu item's details
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.MenuItemInput
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.svc.Menu.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu item updated successfully", "menuItem": item})
}

// DeleteMenuItem removes a menu item that was never ordered
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Menu.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Menu item deleted successfully"})
}

func (h *Handler) ToggleMenuAvailability(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Menu.ToggleAvailability(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "Menu item is now unavailable"
	if item.IsAvailable {
		msg = "Menu item is now available"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg, "menuItem": item})
}

func (h *Handler) CreateTable(c *gin.Context) {
	var req services.TableInput
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.svc.Tables.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Table created successfully", "table": table})
}

func (h *Handler) UpdateTable(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.TableInput
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.svc.Tables.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Table updated successfully", "table": table})
}

func (h *Handler) DeleteTable(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Tables.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Table deleted successfully"})
}
