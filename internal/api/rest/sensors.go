package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /api/sensors?limit=&deviceName=
func (s *Server) listReadings(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	readings, err := s.lm.Store().ListReadings(c.Request.Context(), limit, c.Query("deviceName"))
	if err != nil {
		s.logger.Error("Failed to list readings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sensor data"})
		return
	}

	c.JSON(http.StatusOK, readings)
}
