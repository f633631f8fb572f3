package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pondokrejo/desa-monitor/internal/api/websocket"
	"github.com/pondokrejo/desa-monitor/internal/auth"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"go.uber.org/zap"
)

// POST /api/devices
func (s *Server) registerDevice(c *gin.Context) {
	var req struct {
		DeviceName string `json:"deviceName"`
		DeviceType string `json:"deviceType"`
		Location   string `json:"location"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceName == "" || req.DeviceType == "" || req.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: deviceName, deviceType, location"})
		return
	}

	// The key is returned to the operator exactly once; only its hash
	// is stored.
	deviceKey, keyHash, err := auth.GenerateDeviceKey(req.DeviceName)
	if err != nil {
		s.logger.Error("Failed to generate device key", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	device, err := s.lm.Store().CreateDevice(c.Request.Context(), req.DeviceName, req.DeviceType, req.Location, keyHash)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Device already exists"})
			return
		}
		s.logger.Error("Failed to register device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	s.wsHub.Broadcast(websocket.NewMessage(websocket.MessageTypeDeviceStatus, device))

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"device":    device,
		"deviceKey": deviceKey,
		"message":   "Device registered successfully",
	})
}

// GET /api/devices
func (s *Server) listDevices(c *gin.Context) {
	devices, err := s.lm.Store().ListDevices(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list devices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch devices"})
		return
	}

	response := make([]gin.H, 0, len(devices))
	for _, device := range devices {
		latest, err := s.lm.Store().LatestReading(c.Request.Context(), device.DeviceName)
		if err != nil {
			s.logger.Warn("Failed to load latest reading",
				zap.String("device", device.DeviceName),
				zap.Error(err))
		}

		count, err := s.lm.Store().CountReadings(c.Request.Context(), device.DeviceName)
		if err != nil {
			s.logger.Warn("Failed to count readings",
				zap.String("device", device.DeviceName),
				zap.Error(err))
		}

		response = append(response, gin.H{
			"id":         device.ID,
			"deviceName": device.DeviceName,
			"deviceType": device.DeviceType,
			"location":   device.Location,
			"isActive":   device.IsActive,
			"lastSeen":   device.LastSeen,
			"createdAt":  device.CreatedAt,
			"latestData": latest,
			"dataCount":  count,
		})
	}

	c.JSON(http.StatusOK, response)
}

// PATCH /api/devices
func (s *Server) updateDevice(c *gin.Context) {
	var req struct {
		DeviceID   string  `json:"deviceId"`
		IsActive   *bool   `json:"isActive"`
		Location   *string `json:"location"`
		DeviceType *string `json:"deviceType"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing deviceId"})
		return
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deviceId"})
		return
	}

	device, err := s.lm.Store().UpdateDevice(c.Request.Context(), deviceID, req.IsActive, req.Location, req.DeviceType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
			return
		}
		s.logger.Error("Failed to update device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
		return
	}

	s.wsHub.Broadcast(websocket.NewMessage(websocket.MessageTypeDeviceStatus, device))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"device":  device,
		"message": "Device updated successfully",
	})
}

// DELETE /api/devices?deviceId=
func (s *Server) deleteDevice(c *gin.Context) {
	idStr := c.Query("deviceId")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing deviceId parameter"})
		return
	}

	deviceID, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deviceId"})
		return
	}

	// Cascades: the device's readings are deleted with it
	if err := s.lm.Store().DeleteDevice(c.Request.Context(), deviceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
			return
		}
		s.logger.Error("Failed to delete device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Device deleted successfully",
	})
}
