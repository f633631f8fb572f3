package system

import (
	"context"
	"fmt"
	"sync"

	"github.com/pondokrejo/desa-monitor/internal/api/rest"
	"github.com/pondokrejo/desa-monitor/internal/api/websocket"
	"github.com/pondokrejo/desa-monitor/internal/auth"
	"github.com/pondokrejo/desa-monitor/internal/config"
	"github.com/pondokrejo/desa-monitor/internal/ingest"
	"github.com/pondokrejo/desa-monitor/internal/interfaces"
	"github.com/pondokrejo/desa-monitor/internal/rules"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"github.com/pondokrejo/desa-monitor/internal/validate"
	"go.uber.org/zap"
)

// LifecycleManager owns the long-lived components and their startup and
// shutdown order.
type LifecycleManager struct {
	config      *config.Config
	storage     *storage.PostgresClient
	pipeline    *ingest.Pipeline
	deviceAuth  *auth.DeviceAuthenticator
	authService *auth.AuthService
	wsHub       *websocket.Hub
	restServer  *rest.Server
	logger      *zap.Logger

	shutdownOnce sync.Once
}

func NewLifecycleManager(db *storage.PostgresClient, cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	validator, err := validate.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create payload validator: %w", err)
	}

	ruleOpts, err := rules.LoadOptions(cfg.Alerting.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule options: %w", err)
	}

	authService := auth.NewAuthService(db, cfg.Auth)
	wsHub := websocket.NewHub(logger, authService)
	deviceAuth := auth.NewDeviceAuthenticator(db)

	pipeline := ingest.NewPipeline(
		db, db, db,
		rules.NewEvaluator(ruleOpts),
		validator,
		wsHub,
		logger,
	)

	lm := &LifecycleManager{
		config:      cfg,
		storage:     db,
		pipeline:    pipeline,
		deviceAuth:  deviceAuth,
		authService: authService,
		wsHub:       wsHub,
		logger:      logger,
	}

	lm.restServer = rest.NewServer(cfg, lm, logger, wsHub, authService)

	return lm, nil
}

// Start brings the hub and the HTTP server up.
func (lm *LifecycleManager) Start() error {
	go lm.wsHub.Run()

	if err := lm.restServer.Start(); err != nil {
		return fmt.Errorf("failed to start REST server: %w", err)
	}

	lm.logger.Info("System started",
		zap.Int("http_port", lm.config.Server.HTTPPort))
	return nil
}

func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var err error
	lm.shutdownOnce.Do(func() {
		err = lm.restServer.Shutdown(ctx)
		lm.storage.Close()
	})
	return err
}

// interfaces.LifecycleManager

func (lm *LifecycleManager) Config() *config.Config       { return lm.config }
func (lm *LifecycleManager) Store() interfaces.Store      { return lm.storage }
func (lm *LifecycleManager) Pipeline() *ingest.Pipeline   { return lm.pipeline }
func (lm *LifecycleManager) DeviceAuthenticator() *auth.DeviceAuthenticator {
	return lm.deviceAuth
}
