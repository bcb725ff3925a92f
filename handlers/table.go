package handlers

import (
	"net/http"

	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
)

// ListTables returns in-service tables; with date and time only the free ones
func (h *Handler) ListTables(c *gin.Context) {
	var q services.TableFilter
	if !bindQuery(c, &q) {
		return
	}
	tables, err := h.svc.Tables.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tables": tables, "total": len(tables)})
}

func (h *Handler) TableAvailability(c *gin.Context) {
	grid, err := h.svc.Tables.Availability(c.Request.Context(), c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"date":         grid.Date,
		"tables":       grid.Tables,
		"availability": grid.Availability,
		"timeSlots":    grid.TimeSlots,
	})
}

func (h *Handler) GetTable(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	table, err := h.svc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "table": table})
}
