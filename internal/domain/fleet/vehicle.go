package fleet

import (
	"fmt"
	"math"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Vehicle entity - a GLP tanker of the delivery fleet.
//
// Invariants:
// - ID must be unique and non-empty
// - 0 <= glpM3 <= type capacity
// - 0 <= fuelGal <= fuel capacity
// - Status must be a member of VehicleStatus
//
// Identity (id, type) is immutable; position, load, fuel and status
// are the mutable state driven by plan execution and the environment's
// time advancement.
type Vehicle struct {
	id           string
	vehicleType  VehicleType
	position     shared.Position
	glpM3        float64
	fuelGal      float64
	fuelCapacity float64
	speedKmh     float64
	status       VehicleStatus
}

// NewVehicle creates a vehicle with validation.
func NewVehicle(
	id string,
	vehicleType VehicleType,
	position shared.Position,
	glpM3 float64,
	fuelGal float64,
	fuelCapacityGal float64,
	speedKmh float64,
) (*Vehicle, error) {
	v := &Vehicle{
		id:           id,
		vehicleType:  vehicleType,
		position:     position,
		glpM3:        glpM3,
		fuelGal:      fuelGal,
		fuelCapacity: fuelCapacityGal,
		speedKmh:     speedKmh,
		status:       StatusAvailable,
	}

	if err := v.validate(); err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Vehicle) validate() error {
	if v.id == "" {
		return shared.NewInvalidVehicleDataError("vehicle id cannot be empty")
	}
	if !v.vehicleType.IsValid() {
		return shared.NewInvalidVehicleDataError(fmt.Sprintf("invalid vehicle type: %s", v.vehicleType))
	}
	if v.glpM3 < 0 {
		return shared.NewInvalidVehicleDataError("glp load cannot be negative")
	}
	if v.glpM3 > v.vehicleType.CapacityM3() {
		return shared.NewInvalidVehicleDataError("glp load cannot exceed type capacity")
	}
	if v.fuelGal < 0 {
		return shared.NewInvalidVehicleDataError("fuel cannot be negative")
	}
	if v.fuelCapacity <= 0 {
		return shared.NewInvalidVehicleDataError("fuel capacity must be positive")
	}
	if v.fuelGal > v.fuelCapacity {
		return shared.NewInvalidVehicleDataError("fuel cannot exceed capacity")
	}
	if v.speedKmh <= 0 {
		return shared.NewInvalidVehicleDataError("speed must be positive")
	}
	return nil
}

// Getters

func (v *Vehicle) ID() string {
	return v.id
}

func (v *Vehicle) Type() VehicleType {
	return v.vehicleType
}

func (v *Vehicle) Position() shared.Position {
	return v.position
}

func (v *Vehicle) GLPM3() float64 {
	return v.glpM3
}

func (v *Vehicle) CapacityM3() float64 {
	return v.vehicleType.CapacityM3()
}

// AvailableCapacityM3 returns how much GLP the tank can still take.
func (v *Vehicle) AvailableCapacityM3() float64 {
	return v.vehicleType.CapacityM3() - v.glpM3
}

func (v *Vehicle) FuelGal() float64 {
	return v.fuelGal
}

func (v *Vehicle) FuelCapacityGal() float64 {
	return v.fuelCapacity
}

func (v *Vehicle) SpeedKmh() float64 {
	return v.speedKmh
}

func (v *Vehicle) Status() VehicleStatus {
	return v.status
}

// Assignable reports whether the solver may give this vehicle a plan.
func (v *Vehicle) Assignable() bool {
	return v.status.Assignable()
}

// Fuel management

// fuelConsumptionFactor is the denominator of the consumption formula.
const fuelConsumptionFactor = 360.0

// fuelEpsilon absorbs float rounding on the exactly-zero boundary.
const fuelEpsilon = 1e-9

// FuelNeededGal returns the fuel required to drive the given Manhattan
// distance with the current load: distance * (tare + glp * density) / 360.
func (v *Vehicle) FuelNeededGal(distance int) float64 {
	weight := v.vehicleType.TareTons() + v.glpM3*GLPDensityTonsPerM3
	return math.Abs(float64(distance) * weight / fuelConsumptionFactor)
}

// CanDrive reports whether the vehicle has fuel for the distance.
// Exactly reaching zero is accepted; going below is not.
func (v *Vehicle) CanDrive(distance int) bool {
	return v.fuelGal-v.FuelNeededGal(distance) >= -fuelEpsilon
}

// ConsumeFuelFor burns the fuel for the given distance. Fails without
// mutating if the tank would go strictly negative.
func (v *Vehicle) ConsumeFuelFor(distance int) error {
	needed := v.FuelNeededGal(distance)
	if v.fuelGal-needed < -fuelEpsilon {
		return shared.NewInsufficientFuelError(needed, v.fuelGal)
	}
	v.fuelGal -= needed
	if v.fuelGal < 0 {
		v.fuelGal = 0
	}
	return nil
}

// RefuelToFull fills the tank and returns the gallons added.
func (v *Vehicle) RefuelToFull() float64 {
	added := v.fuelCapacity - v.fuelGal
	v.fuelGal = v.fuelCapacity
	return added
}

// GLP management

// LoadGLP adds GLP, capped at capacity, and returns the amount
// actually loaded.
func (v *Vehicle) LoadGLP(amountM3 float64) float64 {
	if amountM3 <= 0 {
		return 0
	}
	loaded := math.Min(amountM3, v.AvailableCapacityM3())
	v.glpM3 += loaded
	return loaded
}

// DischargeGLP removes GLP for a delivery, capped at the current load,
// and returns the amount actually discharged.
func (v *Vehicle) DischargeGLP(amountM3 float64) float64 {
	if amountM3 <= 0 {
		return 0
	}
	discharged := math.Min(amountM3, v.glpM3)
	v.glpM3 -= discharged
	return discharged
}

// Movement and status

// MoveTo relocates the vehicle. Movement never implies fuel burn by
// itself; the executor debits fuel per drive action.
func (v *Vehicle) MoveTo(p shared.Position) {
	v.position = p
}

// SetStatus transitions the vehicle to the given status.
func (v *Vehicle) SetStatus(status VehicleStatus) error {
	if !status.IsValid() {
		return shared.NewInvalidVehicleStatusError(fmt.Sprintf("invalid vehicle status: %s", status))
	}
	v.status = status
	return nil
}

// CloneForPlanning returns an independent copy used by the solver to
// simulate route construction without touching live state.
func (v *Vehicle) CloneForPlanning() *Vehicle {
	clone := *v
	return &clone
}

// ReconstructVehicle creates a vehicle from persisted or cloned state,
// including its status. Used by Environment.Clone.
func ReconstructVehicle(
	id string,
	vehicleType VehicleType,
	position shared.Position,
	glpM3 float64,
	fuelGal float64,
	fuelCapacityGal float64,
	speedKmh float64,
	status VehicleStatus,
) (*Vehicle, error) {
	v := &Vehicle{
		id:           id,
		vehicleType:  vehicleType,
		position:     position,
		glpM3:        glpM3,
		fuelGal:      fuelGal,
		fuelCapacity: fuelCapacityGal,
		speedKmh:     speedKmh,
		status:       status,
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, shared.NewInvalidVehicleStatusError(fmt.Sprintf("invalid vehicle status: %s", status))
	}
	return v, nil
}

// TravelMinutes returns the minutes needed to traverse the given
// Manhattan distance at the vehicle's speed.
func (v *Vehicle) TravelMinutes(distance int) float64 {
	return float64(distance) / v.speedKmh * 60.0
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle(id=%s, type=%s, pos=%s, glp=%.1f/%.1f, fuel=%.1f/%.1f, status=%s)",
		v.id, v.vehicleType, v.position, v.glpM3, v.CapacityM3(), v.fuelGal, v.fuelCapacity, v.status)
}
