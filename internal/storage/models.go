package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/pondokrejo/desa-monitor/internal/types"
)

type Device struct {
	ID         uuid.UUID  `json:"id"`
	DeviceName string     `json:"deviceName"`
	DeviceType string     `json:"deviceType"`
	Location   string     `json:"location"`
	KeyHash    string     `json:"-"` // never expose
	IsActive   bool       `json:"isActive"`
	LastSeen   *time.Time `json:"lastSeen"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// SensorReading is one appended observation. Variant fields are nullable;
// only the ones matching SensorType are ever set.
type SensorReading struct {
	ID         uuid.UUID `json:"id"`
	SensorType string    `json:"sensorType"`
	DeviceName string    `json:"deviceName"`

	Voltage     *float64 `json:"voltage,omitempty"`
	Current     *float64 `json:"current,omitempty"`
	Power       *float64 `json:"power,omitempty"`
	Energy      *float64 `json:"energy,omitempty"`
	Frequency   *float64 `json:"frequency,omitempty"`
	PowerFactor *float64 `json:"powerFactor,omitempty"`
	Tariff      *float64 `json:"tariff,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`

	WaterLevel *float64 `json:"waterLevel,omitempty"`

	Detected *bool   `json:"detected,omitempty"`
	Room     *string `json:"room,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`

	SmokeLevel *float64 `json:"smokeLevel,omitempty"`

	Rainfall      *float64 `json:"rainfall,omitempty"`
	RainIntensity *string  `json:"rainIntensity,omitempty"`
	IsRaining     *bool    `json:"isRaining,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

type Alert struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	AlertType  types.AlertKind `json:"alertType"`
	SensorType string          `json:"sensorType"`
	IsRead     bool            `json:"isRead"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}
