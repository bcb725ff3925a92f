package handlers

import (
	"net/http"

	"restaurant-ordering-api/services"
	"restaurant-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListMenu returns available menu items (public)
func (h *Handler) ListMenu(c *gin.Context) {
	var q services.MenuFilter
	if !bindQuery(c, &q) {
		return
	}
	items, page, err := h.svc.Menu.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"menuItems":   items,
		"total":       page.Total,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

func (h *Handler) PopularMenu(c *gin.Context) {
	items, err := h.svc.Menu.Popular(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menuItems": items})
}

func (h *Handler) MenuByCategory(c *gin.Context) {
	groups, err := h.svc.Menu.ByCategory(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": groups})
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Menu.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menuItem": item})
}

// GetStateMachineInfo returns every lifecycle's transition table for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"order":       machineInfo(statemachine.Order),
		"payment":     machineInfo(statemachine.Payment),
		"reservation": machineInfo(statemachine.Reservation),
		"delivery":    machineInfo(statemachine.Delivery),
	})
}

func machineInfo[S ~string](m *statemachine.Machine[S]) gin.H {
	return gin.H{
		"states":          m.States(),
		"transitions":     m.Transitions(),
		"terminal_states": m.TerminalStates(),
	}
}
