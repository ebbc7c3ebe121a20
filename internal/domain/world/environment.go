package world

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Environment is the authoritative world state: it exclusively owns
// the live vehicle, order, depot and blockage instances plus the
// incident and maintenance registries, and carries the simulation time
// cursor.
//
// The environment itself is not goroutine-safe; the orchestrator
// serialises access with its tick lock. The solver works on a Clone.
type Environment struct {
	gridWidth  int
	gridHeight int

	currentTime time.Time

	vehicles   map[string]*fleet.Vehicle
	vehicleIDs []string // insertion order, for deterministic iteration

	orders     map[string]*delivery.Order
	pendingIDs []string // pending queue in arrival order

	depots   map[string]*network.Depot
	depotIDs []string

	blockages []*network.Blockage

	incidents   []*incident.Incident
	maintenance []*incident.Maintenance
}

// NewEnvironment creates an empty environment over a width x height
// grid starting at the given simulation time.
func NewEnvironment(gridWidth, gridHeight int, startTime time.Time) (*Environment, error) {
	if gridWidth <= 0 || gridHeight <= 0 {
		return nil, shared.NewValidationError("grid", "dimensions must be positive")
	}
	return &Environment{
		gridWidth:   gridWidth,
		gridHeight:  gridHeight,
		currentTime: startTime,
		vehicles:    make(map[string]*fleet.Vehicle),
		orders:      make(map[string]*delivery.Order),
		depots:      make(map[string]*network.Depot),
	}, nil
}

// Grid and time

func (e *Environment) GridWidth() int {
	return e.gridWidth
}

func (e *Environment) GridHeight() int {
	return e.gridHeight
}

func (e *Environment) CurrentTime() time.Time {
	return e.currentTime
}

// SetCurrentTime syncs the time cursor without running the advance
// hooks. Used by the orchestrator at the top of a tick.
func (e *Environment) SetCurrentTime(t time.Time) {
	e.currentTime = t
}

// Registration

// AddVehicle registers a vehicle. Duplicate ids are rejected.
func (e *Environment) AddVehicle(v *fleet.Vehicle) error {
	if _, exists := e.vehicles[v.ID()]; exists {
		return shared.NewValidationError("vehicle_id", fmt.Sprintf("duplicate vehicle id: %s", v.ID()))
	}
	if !v.Position().InBounds(e.gridWidth, e.gridHeight) {
		return shared.NewValidationError("position", fmt.Sprintf("vehicle %s outside grid: %s", v.ID(), v.Position()))
	}
	e.vehicles[v.ID()] = v
	e.vehicleIDs = append(e.vehicleIDs, v.ID())
	return nil
}

// AddDepot registers a depot. Duplicate ids are rejected.
func (e *Environment) AddDepot(d *network.Depot) error {
	if _, exists := e.depots[d.ID()]; exists {
		return shared.NewValidationError("depot_id", fmt.Sprintf("duplicate depot id: %s", d.ID()))
	}
	e.depots[d.ID()] = d
	e.depotIDs = append(e.depotIDs, d.ID())
	return nil
}

// AddOrder registers an order and appends it to the pending queue.
func (e *Environment) AddOrder(o *delivery.Order) error {
	if _, exists := e.orders[o.ID()]; exists {
		return shared.NewValidationError("order_id", fmt.Sprintf("duplicate order id: %s", o.ID()))
	}
	if !o.Position().InBounds(e.gridWidth, e.gridHeight) {
		return shared.NewValidationError("position", fmt.Sprintf("order %s outside grid: %s", o.ID(), o.Position()))
	}
	e.orders[o.ID()] = o
	e.pendingIDs = append(e.pendingIDs, o.ID())
	return nil
}

// AddBlockage registers a blockage.
func (e *Environment) AddBlockage(b *network.Blockage) {
	e.blockages = append(e.blockages, b)
}

// RegisterIncident records a breakdown and takes the vehicle out of
// service immediately.
func (e *Environment) RegisterIncident(inc *incident.Incident) error {
	v, ok := e.vehicles[inc.VehicleID()]
	if !ok {
		return shared.NewNotFoundError("vehicle", inc.VehicleID())
	}
	e.incidents = append(e.incidents, inc)
	return v.SetStatus(fleet.StatusUnavailable)
}

// RegisterMaintenance records a scheduled maintenance window.
func (e *Environment) RegisterMaintenance(m *incident.Maintenance) {
	e.maintenance = append(e.maintenance, m)
}

// Queries

// Vehicles returns all vehicles in registration order.
func (e *Environment) Vehicles() []*fleet.Vehicle {
	out := make([]*fleet.Vehicle, 0, len(e.vehicleIDs))
	for _, id := range e.vehicleIDs {
		out = append(out, e.vehicles[id])
	}
	return out
}

// AvailableVehicles returns the vehicles eligible for assignment.
func (e *Environment) AvailableVehicles() []*fleet.Vehicle {
	var out []*fleet.Vehicle
	for _, id := range e.vehicleIDs {
		if v := e.vehicles[id]; v.Assignable() {
			out = append(out, v)
		}
	}
	return out
}

// PendingOrders returns undelivered orders in arrival order.
func (e *Environment) PendingOrders() []*delivery.Order {
	var out []*delivery.Order
	for _, id := range e.pendingIDs {
		if o := e.orders[id]; !o.Delivered() {
			out = append(out, o)
		}
	}
	return out
}

// OverdueOrders returns pending orders past their due time.
func (e *Environment) OverdueOrders() []*delivery.Order {
	var out []*delivery.Order
	for _, o := range e.PendingOrders() {
		if o.Overdue(e.currentTime) {
			out = append(out, o)
		}
	}
	return out
}

// ActiveBlockagesAt returns the blockages in force at t.
func (e *Environment) ActiveBlockagesAt(t time.Time) []*network.Blockage {
	var out []*network.Blockage
	for _, b := range e.blockages {
		if b.ActiveAt(t) {
			out = append(out, b)
		}
	}
	return out
}

// IsBlocked reports whether cell p is closed at time t. Satisfies the
// routing.BlockageOracle port.
func (e *Environment) IsBlocked(p shared.Position, t time.Time) bool {
	for _, b := range e.blockages {
		if b.Blocks(p, t) {
			return true
		}
	}
	return false
}

// FindVehicleByID resolves a vehicle id.
func (e *Environment) FindVehicleByID(id string) (*fleet.Vehicle, error) {
	v, ok := e.vehicles[id]
	if !ok {
		return nil, shared.NewNotFoundError("vehicle", id)
	}
	return v, nil
}

// FindOrderByID resolves an order id.
func (e *Environment) FindOrderByID(id string) (*delivery.Order, error) {
	o, ok := e.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("order", id)
	}
	return o, nil
}

// FindDepotByID resolves a depot id.
func (e *Environment) FindDepotByID(id string) (*network.Depot, error) {
	d, ok := e.depots[id]
	if !ok {
		return nil, shared.NewNotFoundError("depot", id)
	}
	return d, nil
}

// Depots returns all depots in registration order.
func (e *Environment) Depots() []*network.Depot {
	out := make([]*network.Depot, 0, len(e.depotIDs))
	for _, id := range e.depotIDs {
		out = append(out, e.depots[id])
	}
	return out
}

// MainDepot returns the main plant, or nil if none is registered.
func (e *Environment) MainDepot() *network.Depot {
	for _, id := range e.depotIDs {
		if d := e.depots[id]; d.IsMain() {
			return d
		}
	}
	return nil
}

// RefuelableDepots returns the depots where vehicles may refuel,
// nearest-first from the given position.
func (e *Environment) RefuelableDepots(from shared.Position) []*network.Depot {
	var out []*network.Depot
	for _, id := range e.depotIDs {
		if d := e.depots[id]; d.CanRefuel() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return from.DistanceTo(out[i].Position()) < from.DistanceTo(out[j].Position())
	})
	return out
}

// Incidents returns the incident registry.
func (e *Environment) Incidents() []*incident.Incident {
	return e.incidents
}

// UnresolvedIncidentsFor returns the incidents still holding a vehicle
// out of service at the current time.
func (e *Environment) UnresolvedIncidentsFor(vehicleID string) []*incident.Incident {
	var out []*incident.Incident
	for _, inc := range e.incidents {
		if inc.VehicleID() == vehicleID && !inc.ResolvedAt(e.currentTime) {
			out = append(out, inc)
		}
	}
	return out
}

// MaintenanceWindows returns the maintenance registry.
func (e *Environment) MaintenanceWindows() []*incident.Maintenance {
	return e.maintenance
}

// Time advancement

// AdvanceTime moves the time cursor forward by delta and runs the
// transition hooks, in order:
//  1. on a midnight crossing, refill every depot;
//  2. recompute each vehicle's status from the maintenance and
//     incident registries;
//  3. drop delivered orders from the pending queue and expired
//     blockages from the active set.
//
// Executed atomically under the orchestrator's tick lock.
func (e *Environment) AdvanceTime(delta time.Duration) error {
	if delta < 0 {
		return shared.NewValidationError("delta", "cannot be negative")
	}
	newTime := e.currentTime.Add(delta)

	if !shared.SameDay(e.currentTime, newTime) {
		for _, id := range e.depotIDs {
			e.depots[id].Refill()
		}
	}

	for _, id := range e.vehicleIDs {
		e.recomputeVehicleStatus(e.vehicles[id], newTime)
	}

	e.prunePending()
	e.pruneBlockages(newTime)

	e.currentTime = newTime
	return nil
}

// RefreshVehicleStatus re-derives one vehicle's service status from
// the registries at the current time. Commands that resolve incidents
// mid-tick use it so the vehicle does not stay out of service until
// the next time advance.
func (e *Environment) RefreshVehicleStatus(vehicleID string) error {
	v, err := e.FindVehicleByID(vehicleID)
	if err != nil {
		return err
	}
	e.recomputeVehicleStatus(v, e.currentTime)
	return nil
}

// recomputeVehicleStatus derives the service status from the
// registries. Maintenance wins over incidents; a vehicle parked in
// MAINTENANCE or UNAVAILABLE with no remaining cause returns to
// AVAILABLE.
func (e *Environment) recomputeVehicleStatus(v *fleet.Vehicle, at time.Time) {
	for _, m := range e.maintenance {
		if m.VehicleID() == v.ID() && m.ActiveAt(at) {
			_ = v.SetStatus(fleet.StatusMaintenance)
			return
		}
	}
	for _, inc := range e.incidents {
		if inc.VehicleID() == v.ID() && !inc.ResolvedAt(at) {
			_ = v.SetStatus(fleet.StatusUnavailable)
			return
		}
	}
	if v.Status() == fleet.StatusMaintenance || v.Status() == fleet.StatusUnavailable {
		_ = v.SetStatus(fleet.StatusAvailable)
	}
}

func (e *Environment) prunePending() {
	kept := e.pendingIDs[:0]
	for _, id := range e.pendingIDs {
		if !e.orders[id].Delivered() {
			kept = append(kept, id)
		}
	}
	e.pendingIDs = kept
}

func (e *Environment) pruneBlockages(at time.Time) {
	kept := e.blockages[:0]
	for _, b := range e.blockages {
		if !b.Expired(at) {
			kept = append(kept, b)
		}
	}
	e.blockages = kept
}

// Clone returns a deep copy of the environment: vehicles, depots,
// orders, blockages, incidents and maintenance are all copied. Plans
// and events are not owned here and are not cloned.
func (e *Environment) Clone() (*Environment, error) {
	clone, err := NewEnvironment(e.gridWidth, e.gridHeight, e.currentTime)
	if err != nil {
		return nil, err
	}

	for _, id := range e.vehicleIDs {
		v := e.vehicles[id]
		cv, err := fleet.ReconstructVehicle(
			v.ID(), v.Type(), v.Position(), v.GLPM3(), v.FuelGal(),
			v.FuelCapacityGal(), v.SpeedKmh(), v.Status(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to clone vehicle %s: %w", id, err)
		}
		if err := clone.AddVehicle(cv); err != nil {
			return nil, err
		}
	}

	for _, id := range e.depotIDs {
		d := e.depots[id]
		cd, err := network.ReconstructDepot(
			d.ID(), d.Position(), d.CapacityM3(), d.IsMain(), d.CanRefuel(), d.CurrentGLPM3(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to clone depot %s: %w", id, err)
		}
		if err := clone.AddDepot(cd); err != nil {
			return nil, err
		}
	}

	// Orders: copy every order, then rebuild the pending queue in the
	// same arrival order.
	for id, o := range e.orders {
		co, err := delivery.ReconstructOrder(
			o.ID(), o.ClientID(), o.ArriveTime(), o.DueTime(), o.RequestedM3(),
			o.Position(), o.RemainingM3(), o.Records(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to clone order %s: %w", id, err)
		}
		clone.orders[id] = co
	}
	clone.pendingIDs = append([]string(nil), e.pendingIDs...)

	for _, b := range e.blockages {
		cb, err := network.NewBlockage(b.ID(), b.StartTime(), b.EndTime(), b.Polyline())
		if err != nil {
			return nil, fmt.Errorf("failed to clone blockage %s: %w", b.ID(), err)
		}
		clone.blockages = append(clone.blockages, cb)
	}

	for _, inc := range e.incidents {
		clone.incidents = append(clone.incidents, inc.CloneIncident())
	}
	for _, m := range e.maintenance {
		clone.maintenance = append(clone.maintenance, m.CloneMaintenance())
	}

	return clone, nil
}
