package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pondokrejo/desa-monitor/internal/api/websocket"
	"github.com/pondokrejo/desa-monitor/internal/rules"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"github.com/pondokrejo/desa-monitor/internal/types"
	"github.com/pondokrejo/desa-monitor/internal/validate"
)

type fakeReadingStore struct {
	inserted []*storage.SensorReading
	err      error
}

func (s *fakeReadingStore) InsertReading(_ context.Context, r *storage.SensorReading) (*storage.SensorReading, error) {
	if s.err != nil {
		return nil, s.err
	}
	stored := *r
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	s.inserted = append(s.inserted, &stored)
	return &stored, nil
}

type fakeAlertStore struct {
	inserted []types.AlertDraft
	err      error
}

func (s *fakeAlertStore) InsertAlert(_ context.Context, draft types.AlertDraft) (*storage.Alert, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.inserted = append(s.inserted, draft)
	return &storage.Alert{
		ID:         uuid.New(),
		Title:      draft.Title,
		Message:    draft.Message,
		AlertType:  draft.AlertType,
		SensorType: string(draft.SensorType),
		CreatedAt:  time.Now(),
	}, nil
}

type fakeLiveness struct {
	calls []string
	err   error
}

func (l *fakeLiveness) UpdateLastSeen(_ context.Context, name string, _ time.Time) error {
	l.calls = append(l.calls, name)
	return l.err
}

type fakePublisher struct {
	messages []websocket.Message
}

func (p *fakePublisher) Broadcast(msg websocket.Message) {
	p.messages = append(p.messages, msg)
}

type pipelineFixture struct {
	pipeline  *Pipeline
	readings  *fakeReadingStore
	alerts    *fakeAlertStore
	liveness  *fakeLiveness
	publisher *fakePublisher
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	validator, err := validate.NewValidator()
	require.NoError(t, err)

	f := &pipelineFixture{
		readings:  &fakeReadingStore{},
		alerts:    &fakeAlertStore{},
		liveness:  &fakeLiveness{},
		publisher: &fakePublisher{},
	}
	f.pipeline = NewPipeline(
		f.readings,
		f.alerts,
		f.liveness,
		rules.NewEvaluator(rules.DefaultOptions()),
		validator,
		f.publisher,
		zap.NewNop(),
	)
	// Pin the clock inside business hours so motion tests stay
	// deterministic.
	f.pipeline.now = func() time.Time {
		return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func testDevice(name string) *storage.Device {
	return &storage.Device{
		ID:         uuid.New(),
		DeviceName: name,
		DeviceType: "water_level",
		Location:   "Tandon Belakang",
		IsActive:   true,
	}
}

func TestIngestStoresReadingAndAlert(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":22}`)
	stored, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, uuid.Nil, stored.ID)

	require.Len(t, f.readings.inserted, 1)
	require.NotNil(t, f.readings.inserted[0].WaterLevel)
	assert.Equal(t, 22.0, *f.readings.inserted[0].WaterLevel)

	require.Len(t, f.alerts.inserted, 1)
	assert.Equal(t, "Ketinggian Air Kritis", f.alerts.inserted[0].Title)

	assert.Equal(t, []string{"WaterTank01"}, f.liveness.calls)
}

func TestIngestPublishesReadingBeforeAlerts(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":22}`)
	_, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)

	require.Len(t, f.publisher.messages, 2)
	assert.Equal(t, websocket.MessageTypeSensorUpdate, f.publisher.messages[0].Type)
	assert.Equal(t, websocket.MessageTypeAlertCreated, f.publisher.messages[1].Type)
}

func TestIngestHealthyReadingNoAlert(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":85}`)
	_, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)

	assert.Empty(t, f.alerts.inserted)
	require.Len(t, f.publisher.messages, 1)
	assert.Equal(t, websocket.MessageTypeSensorUpdate, f.publisher.messages[0].Type)
}

func TestIngestValidationFailureWritesNothing(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"deviceName":"WaterTank01","waterLevel":22}`)
	_, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.Error(t, err)

	var verr *types.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, f.readings.inserted)
	assert.Empty(t, f.liveness.calls)
	assert.Empty(t, f.publisher.messages)
}

func TestIngestIdentityMismatchWritesNothing(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"sensorType":"water_level","deviceName":"SomeoneElse","waterLevel":22}`)
	_, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	assert.ErrorIs(t, err, types.ErrDeviceIdentityMismatch)

	assert.Empty(t, f.readings.inserted)
	assert.Empty(t, f.liveness.calls)
	assert.Empty(t, f.publisher.messages)
}

func TestIngestReadingInsertFailureFailsRequest(t *testing.T) {
	f := newPipelineFixture(t)
	f.readings.err = errors.New("connection refused")

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":22}`)
	_, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.Error(t, err)

	assert.Empty(t, f.liveness.calls)
	assert.Empty(t, f.alerts.inserted)
	assert.Empty(t, f.publisher.messages)
}

func TestIngestLivenessFailureSwallowed(t *testing.T) {
	f := newPipelineFixture(t)
	f.liveness.err = errors.New("row lock timeout")

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":22}`)
	stored, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Alerting and fan-out still run.
	assert.Len(t, f.alerts.inserted, 1)
	assert.Len(t, f.publisher.messages, 2)
}

func TestIngestAlertInsertFailureSwallowed(t *testing.T) {
	f := newPipelineFixture(t)
	f.alerts.err = errors.New("disk full")

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":22}`)
	stored, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// The reading broadcast goes out even though no alert was stored.
	require.Len(t, f.publisher.messages, 1)
	assert.Equal(t, websocket.MessageTypeSensorUpdate, f.publisher.messages[0].Type)
}

func TestIngestUsesPayloadTimestampWhenParseable(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":60,"timestamp":"2025-06-01T08:30:00Z"}`)
	stored, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC), stored.Timestamp)
}

func TestIngestFallsBackToIngestionTimeOnBadTimestamp(t *testing.T) {
	f := newPipelineFixture(t)

	body := []byte(`{"sensorType":"water_level","deviceName":"WaterTank01","waterLevel":60,"timestamp":"yesterday"}`)
	stored, err := f.pipeline.Ingest(context.Background(), testDevice("WaterTank01"), body)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), stored.Timestamp)
}

func TestIngestMotionProducesTwoAlerts(t *testing.T) {
	f := newPipelineFixture(t)
	f.pipeline.now = func() time.Time {
		return time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC)
	}

	body := []byte(`{"sensorType":"ir_detector","deviceName":"MotionSensor01","detected":true,"room":"Ruang Arsip"}`)
	_, err := f.pipeline.Ingest(context.Background(), testDevice("MotionSensor01"), body)
	require.NoError(t, err)

	require.Len(t, f.alerts.inserted, 2)
	require.Len(t, f.publisher.messages, 3)
	assert.Equal(t, websocket.MessageTypeSensorUpdate, f.publisher.messages[0].Type)
	assert.Equal(t, websocket.MessageTypeAlertCreated, f.publisher.messages[1].Type)
	assert.Equal(t, websocket.MessageTypeAlertCreated, f.publisher.messages[2].Type)
}
