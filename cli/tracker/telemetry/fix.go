package telemetry

import "encoding/json"

// Fix — одно нормализованное телематическое наблюдение.
type Fix struct {
	DeviceID          string  `json:"Id"`
	VehicleID         string  `json:"vId,omitempty"`
	Latitude          float64 `json:"lt"`
	Longitude         float64 `json:"ln"`
	Speed             float64 `json:"s"`
	Heading           float64 `json:"h"`
	ReceivedTimestamp int64   `json:"ts"`
	SourceIP          string  `json:"ip"`
}

// ToBytes сериализует наблюдение для отправки во внешние хранилища.
func (f *Fix) ToBytes() ([]byte, error) {
	return json.Marshal(f)
}
