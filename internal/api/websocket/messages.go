package websocket

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Ingestion events
	MessageTypeSensorUpdate MessageType = "sensor_update"
	MessageTypeAlertCreated MessageType = "alert_created"

	// Operator actions
	MessageTypeAlertUpdated MessageType = "alert_updated"
	MessageTypeDeviceStatus MessageType = "device_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewMessage creates a new message with current timestamp. Data is the
// persisted row, verbatim.
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
