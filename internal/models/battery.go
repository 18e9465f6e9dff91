package models

import "time"

// Reading is one BMS sample as stored in bms_values.
type Reading struct {
	ID          int64     `json:"id"`
	DeviceID    string    `json:"device_id"`
	Timestamp   time.Time `json:"timestamp"`
	PackVoltage float64   `json:"pack_voltage"`
	PackCurrent float64   `json:"pack_current"`
	SOC         float64   `json:"soc"`
	SOH         float64   `json:"soh"`
	CycleCount  int       `json:"cycle_count"`
	CellTemps   []float64 `json:"cell_temps"`
}

// GPSFix is one position sample as stored in iot_gps.
type GPSFix struct {
	ID        int64     `json:"id"`
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
}

// Identification links a device to its hardware description and owner.
type Identification struct {
	DeviceID        string `json:"device_id"`
	DeviceType      string `json:"device_type"`
	BatteryNumber   string `json:"battery_number"`
	FirmwareVersion string `json:"firmware_version"`
	HardwareVersion string `json:"hardware_version"`
	UserID          *int   `json:"user_id,omitempty"` // nil = unassigned
}

// LatestState is the newest reading of a device joined with its newest GPS fix.
type LatestState struct {
	Reading
	Latitude  *float64
	Longitude *float64
}

// BatterySnapshot is the dashboard view of a device's current state.
type BatterySnapshot struct {
	ID            string    `json:"id"`
	Voltage       float64   `json:"voltage"`
	StateOfCharge float64   `json:"stateOfCharge"`
	Health        float64   `json:"health"`
	CycleCount    int       `json:"cycleCount"`
	Temperature   int       `json:"temperature"`
	Status        string    `json:"status"` // online | offline
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	LastUpdate    time.Time `json:"lastUpdate"`
}

// BatteryDetails adds the instantaneous pack current to a snapshot.
type BatteryDetails struct {
	BatterySnapshot
	Current float64 `json:"current"`
}

// RoutePoint is a single position on a device's route.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
