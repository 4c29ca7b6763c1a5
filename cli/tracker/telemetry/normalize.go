package telemetry

import (
	"encoding/json"
	"errors"
	"time"
)

var now = func() int64 { return time.Now().UnixMilli() } // For mocking in tests

var (
	ErrBadPayload    = errors.New("некорректный JSON")
	ErrNoDeviceID    = errors.New("отсутствует идентификатор устройства")
	ErrNoCoordinates = errors.New("отсутствуют координаты")
)

// Поля указатели, чтобы отличать отсутствующее поле от нулевого значения.
type rawFix struct {
	ID        *string  `json:"Id"`
	VehicleID *string  `json:"vId"`
	Latitude  *float64 `json:"lt"`
	Longitude *float64 `json:"ln"`
	Speed     *float64 `json:"s"`
	Heading   *float64 `json:"h"`
}

// Clamp приводит значение к диапазону [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Normalize разбирает строку протокола и возвращает нормализованное
// наблюдение. Широта и долгота приводятся к допустимым диапазонам, метка
// времени назначается в момент приёма (миллисекунды Unix), а не берётся из
// полезной нагрузки. Второе значение — признак того, что устройство передало
// идентификатор транспорта.
func Normalize(line []byte, ip string) (Fix, bool, error) {
	var raw rawFix
	if err := json.Unmarshal(line, &raw); err != nil {
		return Fix{}, false, ErrBadPayload
	}

	if raw.ID == nil || *raw.ID == "" {
		return Fix{}, false, ErrNoDeviceID
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return Fix{}, false, ErrNoCoordinates
	}

	f := Fix{
		DeviceID:          *raw.ID,
		Latitude:          Clamp(*raw.Latitude, -90, 90),
		Longitude:         Clamp(*raw.Longitude, -180, 180),
		ReceivedTimestamp: now(),
		SourceIP:          ip,
	}

	if raw.Speed != nil {
		f.Speed = *raw.Speed
	}
	if raw.Heading != nil {
		f.Heading = *raw.Heading
	}

	hasVehicle := raw.VehicleID != nil
	if hasVehicle {
		f.VehicleID = *raw.VehicleID
	}

	return f, hasVehicle, nil
}
