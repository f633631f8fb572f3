package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pondokrejo/desa-monitor/internal/api/websocket"
	"github.com/pondokrejo/desa-monitor/internal/types"
	"go.uber.org/zap"
)

// GET /api/alerts?limit=
func (s *Server) listAlerts(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	alerts, err := s.lm.Store().ListAlerts(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// POST /api/alerts — manual alert from the dashboard
func (s *Server) createAlert(c *gin.Context) {
	var req struct {
		Title      string `json:"title" binding:"required"`
		Message    string `json:"message" binding:"required"`
		AlertType  string `json:"alertType" binding:"required"`
		SensorType string `json:"sensorType" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := s.lm.Store().InsertAlert(c.Request.Context(), types.AlertDraft{
		Title:      req.Title,
		Message:    req.Message,
		AlertType:  types.AlertKind(req.AlertType),
		SensorType: types.SensorType(req.SensorType),
	})
	if err != nil {
		s.logger.Error("Failed to create alert", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	s.wsHub.Broadcast(websocket.NewMessage(websocket.MessageTypeAlertCreated, alert))

	c.JSON(http.StatusCreated, alert)
}

// PATCH /api/alerts — mark as read/unread
func (s *Server) markAlertRead(c *gin.Context) {
	var req struct {
		AlertID string `json:"alertId" binding:"required"`
		IsRead  *bool  `json:"isRead" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing alertId or isRead"})
		return
	}

	alertID, err := uuid.Parse(req.AlertID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alertId"})
		return
	}

	alert, err := s.lm.Store().SetAlertRead(c.Request.Context(), alertID, *req.IsRead)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		s.logger.Error("Failed to update alert", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}

	s.wsHub.Broadcast(websocket.NewMessage(websocket.MessageTypeAlertUpdated, alert))

	c.JSON(http.StatusOK, alert)
}
