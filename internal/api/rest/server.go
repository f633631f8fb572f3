package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pondokrejo/desa-monitor/internal/api/websocket"
	"github.com/pondokrejo/desa-monitor/internal/auth"
	"github.com/pondokrejo/desa-monitor/internal/config"
	"github.com/pondokrejo/desa-monitor/internal/interfaces"
	"go.uber.org/zap"
)

type Server struct {
	router      *gin.Engine
	lm          interfaces.LifecycleManager
	logger      *zap.Logger
	server      *http.Server
	wsHub       *websocket.Hub
	authService *auth.AuthService
}

func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub, authService *auth.AuthService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		lm:          lm,
		logger:      logger,
		wsHub:       wsHub,
		authService: authService,
	}

	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes(cfg *config.Config) {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Public routes (no auth required)
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		// ==================== DEVICE-FACING (header auth) ====================
		api.POST("/esp32", s.submitReading)
		api.GET("/esp32", s.getDeviceConfig)

		// ==================== OPERATOR AUTH (PUBLIC) ====================
		authPublic := api.Group("/auth")
		{
			authPublic.POST("/login", s.login)
			authPublic.POST("/refresh", s.refreshToken)
		}

		// ==================== OPERATOR AUTH (AUTHENTICATED) ====================
		authProtected := api.Group("/auth")
		authProtected.Use(s.authService.AuthMiddleware())
		{
			authProtected.GET("/me", s.getCurrentUser)
		}

		// ==================== DEVICE REGISTRY ====================
		devices := api.Group("/devices")
		devices.Use(s.authService.AuthMiddleware())
		{
			devices.POST("", s.registerDevice)
			devices.GET("", s.listDevices)
			devices.PATCH("", s.updateDevice)
			devices.DELETE("", s.deleteDevice)
		}

		// ==================== READINGS ====================
		sensors := api.Group("/sensors")
		sensors.Use(s.authService.AuthMiddleware())
		{
			sensors.GET("", s.listReadings)
		}

		// ==================== ALERTS ====================
		alerts := api.Group("/alerts")
		alerts.Use(s.authService.AuthMiddleware())
		{
			alerts.GET("", s.listAlerts)
			alerts.POST("", s.createAlert)
			alerts.PATCH("", s.markAlertRead)
		}

		// ==================== WEBSOCKET (auth via first message) ====================
		ws := api.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.authService.AuthMiddleware(), s.wsStatus)
		}
	}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
