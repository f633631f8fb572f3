package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pondokrejo/desa-monitor/internal/auth"
	"github.com/pondokrejo/desa-monitor/internal/config"
	"github.com/pondokrejo/desa-monitor/internal/ingest"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"github.com/pondokrejo/desa-monitor/internal/types"
)

// Store is the durable-store surface the REST layer consumes. The
// postgres client implements it; tests substitute fakes.
type Store interface {
	// Device registry
	CreateDevice(ctx context.Context, name, deviceType, location, keyHash string) (*storage.Device, error)
	GetDeviceByName(ctx context.Context, name string) (*storage.Device, error)
	GetDeviceByID(ctx context.Context, id uuid.UUID) (*storage.Device, error)
	ListDevices(ctx context.Context) ([]*storage.Device, error)
	UpdateDevice(ctx context.Context, id uuid.UUID, isActive *bool, location, deviceType *string) (*storage.Device, error)
	DeleteDevice(ctx context.Context, id uuid.UUID) error
	UpdateLastSeen(ctx context.Context, name string, seenAt time.Time) error

	// Readings
	ListReadings(ctx context.Context, limit int, deviceName string) ([]*storage.SensorReading, error)
	LatestReading(ctx context.Context, deviceName string) (*storage.SensorReading, error)
	CountReadings(ctx context.Context, deviceName string) (int, error)

	// Alerts
	InsertAlert(ctx context.Context, draft types.AlertDraft) (*storage.Alert, error)
	ListAlerts(ctx context.Context, limit int) ([]*storage.Alert, error)
	SetAlertRead(ctx context.Context, id uuid.UUID, isRead bool) (*storage.Alert, error)
}

// LifecycleManager wires the long-lived components together for the API
// layer.
type LifecycleManager interface {
	Config() *config.Config
	Store() Store
	Pipeline() *ingest.Pipeline
	DeviceAuthenticator() *auth.DeviceAuthenticator
	Shutdown(ctx context.Context) error
}
