package fleet

// VehicleStatus represents the operational state of a tanker.
type VehicleStatus string

const (
	StatusAvailable   VehicleStatus = "AVAILABLE"
	StatusDriving     VehicleStatus = "DRIVING"
	StatusServing     VehicleStatus = "SERVING"
	StatusMaintenance VehicleStatus = "MAINTENANCE"
	StatusRefueling   VehicleStatus = "REFUELING"
	StatusReloading   VehicleStatus = "RELOADING"
	StatusIdle        VehicleStatus = "IDLE"
	StatusUnavailable VehicleStatus = "UNAVAILABLE"
)

var validStatuses = map[VehicleStatus]bool{
	StatusAvailable:   true,
	StatusDriving:     true,
	StatusServing:     true,
	StatusMaintenance: true,
	StatusRefueling:   true,
	StatusReloading:   true,
	StatusIdle:        true,
	StatusUnavailable: true,
}

// IsValid reports whether the status is a known member of the enum.
func (s VehicleStatus) IsValid() bool {
	return validStatuses[s]
}

// Assignable reports whether a vehicle in this status may receive work
// from the solver. Vehicles under maintenance or out of service after
// an incident never plan routes.
func (s VehicleStatus) Assignable() bool {
	switch s {
	case StatusAvailable, StatusIdle, StatusDriving:
		return true
	default:
		return false
	}
}

func (s VehicleStatus) String() string {
	return string(s)
}
