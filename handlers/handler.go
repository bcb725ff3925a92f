// Package handlers adapts HTTP requests onto the services.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"restaurant-ordering-api/apperr"
	"restaurant-ordering-api/logger"
	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	svc          *services.Services
	tokens       *middleware.Tokens
	log          *logger.Logger
	db           *gorm.DB
	pollInterval time.Duration
}

func New(svc *services.Services, tokens *middleware.Tokens, log *logger.Logger, db *gorm.DB, pollInterval time.Duration) *Handler {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Handler{svc: svc, tokens: tokens, log: log, db: db, pollInterval: pollInterval}
}

// fail hands err to the error middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, apperr.Binding(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		fail(c, apperr.Binding(err))
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, apperr.BadRequest("Invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func viewer(c *gin.Context) services.Viewer {
	return services.Viewer{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// Health pings the database.
func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "Restaurant Ordering API",
		"version": "1.0.0",
	})
}
