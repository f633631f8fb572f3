package ingest

import (
	"context"
	"time"

	"github.com/pondokrejo/desa-monitor/internal/api/websocket"
	"github.com/pondokrejo/desa-monitor/internal/rules"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"github.com/pondokrejo/desa-monitor/internal/types"
	"github.com/pondokrejo/desa-monitor/internal/validate"
	"go.uber.org/zap"
)

// ReadingStore is the append-only store for sensor readings.
type ReadingStore interface {
	InsertReading(ctx context.Context, r *storage.SensorReading) (*storage.SensorReading, error)
}

// AlertStore persists alert drafts produced by the rule evaluator.
type AlertStore interface {
	InsertAlert(ctx context.Context, draft types.AlertDraft) (*storage.Alert, error)
}

// LivenessTracker updates a device's last-seen timestamp.
type LivenessTracker interface {
	UpdateLastSeen(ctx context.Context, name string, seenAt time.Time) error
}

// Publisher fans events out to connected dashboard sessions.
type Publisher interface {
	Broadcast(msg websocket.Message)
}

// Pipeline accepts one reading from an authenticated device and makes it
// durable, updates liveness, evaluates the alert rules, and notifies
// subscribers. Only the reading write is on the durability contract;
// every later step is best-effort.
type Pipeline struct {
	readings  ReadingStore
	alerts    AlertStore
	liveness  LivenessTracker
	evaluator *rules.Evaluator
	validator *validate.Validator
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewPipeline(
	readings ReadingStore,
	alerts AlertStore,
	liveness LivenessTracker,
	evaluator *rules.Evaluator,
	validator *validate.Validator,
	publisher Publisher,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		readings:  readings,
		alerts:    alerts,
		liveness:  liveness,
		evaluator: evaluator,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Ingest processes one raw submission body from an authenticated device.
// Validation failures abort before any write. Once the reading is
// durable the request cannot fail anymore: liveness, alerting and
// fan-out errors are logged and swallowed, never rolled back, since a
// retry by the device would duplicate the reading.
func (p *Pipeline) Ingest(ctx context.Context, device *storage.Device, raw []byte) (*storage.SensorReading, error) {
	payload, err := p.validator.ValidateReading(raw)
	if err != nil {
		return nil, err
	}

	// A device must not write readings under another device's name.
	if payload.DeviceName != device.DeviceName {
		return nil, types.ErrDeviceIdentityMismatch
	}

	ingestedAt := p.now()
	reading := payloadToReading(payload, ingestedAt)

	stored, err := p.readings.InsertReading(ctx, reading)
	if err != nil {
		return nil, err
	}

	// Liveness is not part of the durability contract.
	if err := p.liveness.UpdateLastSeen(ctx, device.DeviceName, ingestedAt); err != nil {
		p.logger.Warn("Failed to update device last_seen",
			zap.String("device", device.DeviceName),
			zap.Error(err))
	}

	createdAlerts := p.evaluateAndStore(ctx, payload, ingestedAt)

	p.publisher.Broadcast(websocket.NewMessage(websocket.MessageTypeSensorUpdate, stored))
	for _, alert := range createdAlerts {
		p.publisher.Broadcast(websocket.NewMessage(websocket.MessageTypeAlertCreated, alert))
	}

	return stored, nil
}

func (p *Pipeline) evaluateAndStore(ctx context.Context, payload *types.ReadingPayload, at time.Time) []*storage.Alert {
	drafts := p.evaluator.Evaluate(payload, at)
	if len(drafts) == 0 {
		return nil
	}

	created := make([]*storage.Alert, 0, len(drafts))
	for _, draft := range drafts {
		alert, err := p.alerts.InsertAlert(ctx, draft)
		if err != nil {
			// A store outage here suppresses alerting but never the
			// reading that triggered it.
			p.logger.Error("Failed to persist alert",
				zap.String("title", draft.Title),
				zap.Error(err))
			continue
		}
		created = append(created, alert)
	}
	return created
}

// payloadToReading copies the variant fields and resolves the event
// time: the payload timestamp when parseable, ingestion time otherwise.
func payloadToReading(p *types.ReadingPayload, ingestedAt time.Time) *storage.SensorReading {
	timestamp := ingestedAt
	if p.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	return &storage.SensorReading{
		SensorType:    p.SensorType,
		DeviceName:    p.DeviceName,
		Voltage:       p.Voltage,
		Current:       p.Current,
		Power:         p.Power,
		Energy:        p.Energy,
		Frequency:     p.Frequency,
		PowerFactor:   p.PowerFactor,
		Tariff:        p.Tariff,
		Cost:          p.Cost,
		WaterLevel:    p.WaterLevel,
		Detected:      p.Detected,
		Room:          p.Room,
		Temperature:   p.Temperature,
		Humidity:      p.Humidity,
		SmokeLevel:    p.SmokeLevel,
		Rainfall:      p.Rainfall,
		RainIntensity: p.RainIntensity,
		IsRaining:     p.IsRaining,
		Timestamp:     timestamp,
	}
}
