package rest

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"github.com/pondokrejo/desa-monitor/internal/types"
	"go.uber.org/zap"
)

// authenticateDevice resolves the x-device-id / x-device-key headers.
// On failure it writes the response and returns nil.
func (s *Server) authenticateDevice(c *gin.Context) *storage.Device {
	deviceID := c.GetHeader("x-device-id")
	deviceKey := c.GetHeader("x-device-key")

	device, err := s.lm.DeviceAuthenticator().Authenticate(c.Request.Context(), deviceID, deviceKey)
	if err == nil {
		return device
	}

	switch {
	case errors.Is(err, types.ErrMissingCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing device credentials"})
	case errors.Is(err, types.ErrDeviceUnknownOrInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "Device not found or inactive"})
	case errors.Is(err, types.ErrInvalidDeviceKey):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid device key"})
	default:
		s.logger.Error("Device authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process sensor data"})
	}
	return nil
}

// POST /api/esp32
func (s *Server) submitReading(c *gin.Context) {
	device := s.authenticateDevice(c)
	if device == nil {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	reading, err := s.lm.Pipeline().Ingest(c.Request.Context(), device, body)
	if err != nil {
		var validationErr *types.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, types.ErrDeviceIdentityMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "deviceName does not match authenticated device"})
		default:
			s.logger.Error("Ingestion failed",
				zap.String("device", device.DeviceName),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process sensor data"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dataId":  reading.ID.String(),
		"message": "Sensor data received successfully",
	})
}

// GET /api/esp32?deviceId=
func (s *Server) getDeviceConfig(c *gin.Context) {
	if s.authenticateDevice(c) == nil {
		return
	}

	deviceID := c.Query("deviceId")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing deviceId parameter"})
		return
	}

	device, err := s.lm.Store().GetDeviceByName(c.Request.Context(), deviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get device configuration"})
		return
	}

	latest, err := s.lm.Store().LatestReading(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get device configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device": gin.H{
			"name":     device.DeviceName,
			"type":     device.DeviceType,
			"location": device.Location,
			"isActive": device.IsActive,
			"lastSeen": device.LastSeen,
		},
		"latestData": latest,
		"serverTime": time.Now().UTC().Format(time.RFC3339),
	})
}
