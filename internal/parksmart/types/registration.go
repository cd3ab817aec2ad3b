package types

type RegisterVehicleRequest struct {
	Plate       string `json:"plate"`
	VehicleType string `json:"type,omitempty"`
	Owner       string `json:"owner,omitempty"`
	ExpiryDate  string `json:"expiry_date,omitempty"`
}

type VehicleRecord struct {
	ID          int64  `json:"id"`
	Plate       string `json:"plate"`
	VehicleType string `json:"vehicle_type"`
	Owner       string `json:"owner"`
	ExpiryDate  string `json:"expiry_date,omitempty"`
	CreatedAt   string `json:"created_at"`
}
