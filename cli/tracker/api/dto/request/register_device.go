package request

type RegisterDevice struct {
	ID        string `json:"id"`
	VehicleID string `json:"vehicleId"`
}
