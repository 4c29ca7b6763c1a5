package response

import (
	"github.com/daniil11ru/tracker/cli/tracker/devices"
	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
)

type VehicleItem struct {
	ID         string `json:"id"`
	VehicleID  string `json:"vehicleId"`
	LastSeenTs int64  `json:"lastSeenTs"`
	IP         string `json:"ip"`
}

type GetVehicles struct {
	Items []VehicleItem `json:"items"`
}

type GetDevice struct {
	Device *devices.Record `json:"device"`
	Latest *telemetry.Fix  `json:"latest"`
}

type GetLatest struct {
	Latest *telemetry.Fix `json:"latest"`
}

type Track struct {
	Points []telemetry.Fix `json:"points"`
}
