package planning

import (
	"math"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// Infeasible is the cost of a route that violates a feasibility rule.
var Infeasible = math.Inf(1)

const (
	serveDuration  = 15 * time.Minute
	reloadDuration = 15 * time.Minute
	fuelTolerance  = 1e-9
	glpTolerance   = 1e-9
)

// Evaluator deterministically prices a route or a whole solution by
// simulating it against a problem environment. Any feasibility
// violation (dry tank, forbidden partial delivery, depot overdraw)
// prices as +Inf; lateness prices as a per-hour penalty. The evaluator
// never mutates the environment it reads.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an evaluator with the given tuning.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// RouteResult carries the outcome of simulating one route.
type RouteResult struct {
	Cost        float64
	Distance    int
	LatePenalty float64
	EndFuelGal  float64
	EndGLPM3    float64
	EndPosition shared.Position
	EndTime     time.Time
}

// SimulateRoute walks the stops from the vehicle's current state and
// prices the route. Distances are Manhattan estimates; exact paths are
// only computed for accepted solutions. Returns Cost == +Inf on the
// first violation.
func (e *Evaluator) SimulateRoute(env *world.Environment, v *fleet.Vehicle, stops []*Stop) RouteResult {
	pos := v.Position()
	glpM3 := v.GLPM3()
	fuelGal := v.FuelGal()
	at := env.CurrentTime()
	distance := 0
	late := 0.0

	infeasible := RouteResult{Cost: Infeasible}

	for _, stop := range stops {
		d := pos.DistanceTo(stop.Position)
		fuelNeeded := fuelFor(v, glpM3, d)
		if fuelNeeded-fuelGal > fuelTolerance {
			return infeasible
		}
		fuelGal -= fuelNeeded
		if fuelGal < 0 {
			fuelGal = 0
		}
		distance += d
		at = at.Add(travelDuration(v, d))
		pos = stop.Position

		switch stop.Kind {
		case StopServe:
			order, err := env.FindOrderByID(stop.OrderID)
			if err != nil {
				return infeasible
			}
			if stop.AmountM3-glpM3 > glpTolerance && !e.cfg.AllowPartialDelivery {
				return infeasible
			}
			glpM3 -= utils.MinF(stop.AmountM3, glpM3)
			if at.After(order.DueTime()) {
				hoursLate := at.Sub(order.DueTime()).Hours()
				late += utils.CeilHours(hoursLate) * e.cfg.LatePenaltyPerHour
			}
			at = at.Add(serveDuration)

		case StopReload:
			depot, err := env.FindDepotByID(stop.DepotID)
			if err != nil {
				return infeasible
			}
			if e.cfg.EnforceDepotCapacity && !depot.IsMain() && stop.AmountM3-depot.CurrentGLPM3() > glpTolerance {
				return infeasible
			}
			glpM3 = math.Min(glpM3+stop.AmountM3, v.CapacityM3())
			// Depots with a fuel pump top the tank off during a reload.
			if depot.CanRefuel() {
				fuelGal = v.FuelCapacityGal()
			}
			at = at.Add(reloadDuration)
		}
	}

	return RouteResult{
		Cost:        late,
		Distance:    distance,
		LatePenalty: late,
		EndFuelGal:  fuelGal,
		EndGLPM3:    glpM3,
		EndPosition: pos,
		EndTime:     at,
	}
}

// ReturnFeasible reports whether the vehicle can still reach the main
// depot after finishing the route.
func (e *Evaluator) ReturnFeasible(env *world.Environment, v *fleet.Vehicle, result RouteResult) bool {
	main := env.MainDepot()
	if main == nil {
		return true
	}
	d := result.EndPosition.DistanceTo(main.Position())
	return fuelFor(v, result.EndGLPM3, d)-result.EndFuelGal <= fuelTolerance
}

// CostBreakdown is the detailed pricing of a solution.
type CostBreakdown struct {
	RouteCost       float64
	DistanceCost    float64
	UndeliveredCost float64
	Total           float64
	Undelivered     int
	TotalDistance   int
}

// Score prices a whole solution: route costs plus penalties for
// undelivered orders and total distance.
func (e *Evaluator) Score(env *world.Environment, sol Solution) CostBreakdown {
	breakdown := CostBreakdown{}

	for _, route := range sol {
		v, err := env.FindVehicleByID(route.VehicleID)
		if err != nil {
			return CostBreakdown{Total: Infeasible}
		}
		result := e.SimulateRoute(env, v, route.Stops)
		if math.IsInf(result.Cost, 1) {
			return CostBreakdown{Total: Infeasible}
		}
		breakdown.RouteCost += result.Cost
		breakdown.TotalDistance += result.Distance
	}

	for _, o := range env.PendingOrders() {
		if o.RemainingM3()-sol.ServedAmountFor(o.ID()) > glpTolerance {
			breakdown.Undelivered++
		}
	}

	breakdown.UndeliveredCost = float64(breakdown.Undelivered) * e.cfg.UndeliveredPenalty
	breakdown.DistanceCost = float64(breakdown.TotalDistance) * e.cfg.DistanceCostPerUnit
	breakdown.Total = breakdown.RouteCost + breakdown.UndeliveredCost + breakdown.DistanceCost
	return breakdown
}

// IsValid reports whether every route of the solution is feasible.
func (e *Evaluator) IsValid(env *world.Environment, sol Solution) bool {
	return !math.IsInf(e.Score(env, sol).Total, 1)
}

// OrderFulfilmentRate returns the fraction of pending orders the
// solution covers in full.
func (e *Evaluator) OrderFulfilmentRate(env *world.Environment, sol Solution) float64 {
	pending := env.PendingOrders()
	if len(pending) == 0 {
		return 1.0
	}
	full := 0
	for _, o := range pending {
		if o.RemainingM3()-sol.ServedAmountFor(o.ID()) <= glpTolerance {
			full++
		}
	}
	return float64(full) / float64(len(pending))
}

// GLPSatisfactionRate returns promised volume over demanded volume.
func (e *Evaluator) GLPSatisfactionRate(env *world.Environment, sol Solution) float64 {
	demanded, promised := 0.0, 0.0
	for _, o := range env.PendingOrders() {
		demanded += o.RemainingM3()
		promised += math.Min(sol.ServedAmountFor(o.ID()), o.RemainingM3())
	}
	if demanded == 0 {
		return 1.0
	}
	return promised / demanded
}

// fuelFor prices a leg with an explicit load, which may differ from the
// vehicle's live load mid-simulation.
func fuelFor(v *fleet.Vehicle, glpM3 float64, distance int) float64 {
	weight := v.Type().TareTons() + glpM3*fleet.GLPDensityTonsPerM3
	return float64(distance) * weight / 360.0
}

// travelDuration converts a Manhattan distance into driving time.
func travelDuration(v *fleet.Vehicle, distance int) time.Duration {
	minutes := float64(distance) / v.SpeedKmh() * 60.0
	return time.Duration(minutes * float64(time.Minute))
}
