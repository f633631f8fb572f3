package types

// SensorType tags a reading with the sensor domain it came from.
type SensorType string

const (
	SensorElectricity SensorType = "electricity"
	SensorWaterLevel  SensorType = "water_level"
	SensorIRDetector  SensorType = "ir_detector"
	SensorDHT         SensorType = "temperature_humidity"
	SensorSmoke       SensorType = "smoke"
	SensorRain        SensorType = "rain"
)

// KnownSensorTypes lists every accepted sensorType tag.
var KnownSensorTypes = []SensorType{
	SensorElectricity,
	SensorWaterLevel,
	SensorIRDetector,
	SensorDHT,
	SensorSmoke,
	SensorRain,
}

func IsKnownSensorType(s string) bool {
	for _, t := range KnownSensorTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// RainIntensity values accepted on rain readings.
const (
	RainLight    = "light"
	RainModerate = "moderate"
	RainHeavy    = "heavy"
)

// ReadingPayload is the raw JSON body a device submits. Only the fields
// relevant to SensorType are expected to be set; absent fields stay nil
// so the store can distinguish "not measured" from zero.
type ReadingPayload struct {
	SensorType string `json:"sensorType"`
	DeviceName string `json:"deviceName"`
	Timestamp  string `json:"timestamp,omitempty"` // ISO-8601, optional

	// electricity (PZEM-004T)
	Voltage     *float64 `json:"voltage,omitempty"`
	Current     *float64 `json:"current,omitempty"`
	Power       *float64 `json:"power,omitempty"`
	Energy      *float64 `json:"energy,omitempty"`
	Frequency   *float64 `json:"frequency,omitempty"`
	PowerFactor *float64 `json:"powerFactor,omitempty"`
	Tariff      *float64 `json:"tariff,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`

	// water_level
	WaterLevel *float64 `json:"waterLevel,omitempty"`

	// ir_detector
	Detected *bool   `json:"detected,omitempty"`
	Room     *string `json:"room,omitempty"`

	// temperature_humidity
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`

	// smoke
	SmokeLevel *float64 `json:"smokeLevel,omitempty"`

	// rain
	Rainfall      *float64 `json:"rainfall,omitempty"`
	RainIntensity *string  `json:"rainIntensity,omitempty"`
	IsRaining     *bool    `json:"isRaining,omitempty"`
}

// AlertKind classifies the severity of an alert.
type AlertKind string

const (
	AlertInfo    AlertKind = "info"
	AlertWarning AlertKind = "warning"
	AlertDanger  AlertKind = "danger"
)

// AlertDraft is what the rule evaluator produces. It carries no identity
// or timestamps; those are assigned when the draft is persisted.
type AlertDraft struct {
	Title      string
	Message    string
	AlertType  AlertKind
	SensorType SensorType
}
