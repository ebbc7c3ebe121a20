package planning

import (
	"context"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/plan"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

// Materializer turns an accepted stop solution into executable plans.
// The evaluator priced routes with Manhattan estimates; here each leg
// becomes a real grid path from the path planner, so drive times and
// action timestamps reflect detours around blockages.
type Materializer struct {
	planner routing.PathPlanner
}

// NewMaterializer creates a materializer over the given path planner.
func NewMaterializer(planner routing.PathPlanner) *Materializer {
	return &Materializer{planner: planner}
}

// Materialize builds one plan per non-empty route. Every route ends
// with a drive back to the main plant. A route whose leg has no path
// at departure time is dropped; its orders stay pending for the next
// replan.
func (m *Materializer) Materialize(ctx context.Context, env *world.Environment, sol Solution) (map[string]*plan.Plan, error) {
	plans := map[string]*plan.Plan{}

	for _, vehicleID := range sortedKeys(sol) {
		route := sol[vehicleID]
		if len(route.Stops) == 0 {
			continue
		}
		v, err := env.FindVehicleByID(vehicleID)
		if err != nil {
			return nil, err
		}

		p, err := m.materializeRoute(ctx, env, v, route)
		if err != nil {
			if routing.IsPathNotFound(err) {
				continue
			}
			return nil, err
		}
		plans[vehicleID] = p
	}

	return plans, nil
}

func (m *Materializer) materializeRoute(ctx context.Context, env *world.Environment, v *fleet.Vehicle, route *Route) (*plan.Plan, error) {
	var actions []*plan.Action
	pos := v.Position()
	at := env.CurrentTime()

	for _, stop := range route.Stops {
		if !pos.Equals(stop.Position) {
			path, err := m.planner.FindPath(ctx, &routing.PathRequest{
				Origin:      pos,
				Destination: stop.Position,
				Departure:   at,
				SpeedKmh:    v.SpeedKmh(),
			})
			if err != nil {
				return nil, err
			}
			arrival := path.ArrivalTime()
			actions = append(actions, plan.NewDriveAction(path, at, arrival))
			pos = stop.Position
			at = arrival
		}

		switch stop.Kind {
		case StopServe:
			serve := plan.NewServeAction(stop.OrderID, stop.AmountM3, at)
			actions = append(actions, serve)
			at = serve.ExpectedEnd()

		case StopReload:
			reload := plan.NewReloadAction(stop.DepotID, stop.AmountM3, at)
			actions = append(actions, reload)
			at = reload.ExpectedEnd()

			if depot, err := env.FindDepotByID(stop.DepotID); err == nil && depot.CanRefuel() {
				refuel := plan.NewRefuelAction(at)
				actions = append(actions, refuel)
				at = refuel.ExpectedEnd()
			}
		}
	}

	// Close the route at the main plant.
	if main := env.MainDepot(); main != nil && !pos.Equals(main.Position()) {
		path, err := m.planner.FindPath(ctx, &routing.PathRequest{
			Origin:      pos,
			Destination: main.Position(),
			Departure:   at,
			SpeedKmh:    v.SpeedKmh(),
		})
		if err != nil {
			return nil, err
		}
		actions = append(actions, plan.NewDriveAction(path, at, path.ArrivalTime()))
	}

	return plan.NewPlan(v.ID(), actions, env.CurrentTime())
}
