package types

// Realtime event names published on the websocket channel.
const (
	EventSensorUpdate = "sensor_update"
	EventNewLog       = "new_log"
)

// LogEvent is broadcast for every admission decision.
type LogEvent struct {
	Plate  string `json:"plate"`
	Action string `json:"action"`
	Status string `json:"status"`
	Time   string `json:"time"`
	Image  string `json:"image"`
	Fee    *int64 `json:"fee,omitempty"`
}

// SensorSample is the raw payload posted by the sensor board.
type SensorSample struct {
	// Slots holds per-slot occupancy, true = occupied.
	Slots []bool `json:"slots"`
	// AirQuality is the auxiliary air-quality reading (MQ-135).
	AirQuality float64 `json:"air_quality"`
}

// SensorUpdate is the derived occupancy view broadcast to observers.
type SensorUpdate struct {
	Slots      []bool  `json:"slots"`
	FreeSlots  int     `json:"free_slots"`
	AirQuality float64 `json:"air_quality"`
}
