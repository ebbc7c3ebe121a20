package planning

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// Solver builds a delivery solution with sequential insertion: orders
// are ranked tightest time window first, then each is placed at its
// cheapest feasible position across all assignable vehicles. Insertion cost is the
// weighted sum of added distance, added lateness and customer waiting
// time. Orders the heuristic cannot place are returned for the
// fallback pass.
type Solver struct {
	cfg    Config
	eval   *Evaluator
	logger common.Logger
}

// NewSolver creates a solver with the given tuning.
func NewSolver(cfg Config, logger common.Logger) *Solver {
	return &Solver{
		cfg:    cfg,
		eval:   NewEvaluator(cfg),
		logger: logger,
	}
}

// insertion is one candidate placement of a serve stop.
type insertion struct {
	vehicleID string
	stops     []*Stop
	depotDraw map[string]float64 // aux depot id -> m3 drawn by new reloads
	amountM3  float64
	score     float64
}

// Solve runs the insertion heuristic against a snapshot environment.
// Returns the solution plus the ids of orders it could not place.
func (s *Solver) Solve(ctx context.Context, env *world.Environment) (Solution, []string, error) {
	sol := Solution{}
	vehicles := map[string]*fleet.Vehicle{}
	for _, v := range env.AvailableVehicles() {
		sol[v.ID()] = &Route{VehicleID: v.ID()}
		vehicles[v.ID()] = v
	}
	if len(sol) == 0 {
		return sol, orderIDs(env.PendingOrders()), nil
	}

	// Aux depot stock ledger shared across routes. The main depot is
	// bottomless so it never appears here.
	stock := map[string]float64{}
	for _, d := range env.Depots() {
		if !d.IsMain() {
			stock[d.ID()] = d.CurrentGLPM3()
		}
	}

	// Shortest time windows first: those orders have the fewest
	// feasible placements left.
	orders := append([]*delivery.Order(nil), env.PendingOrders()...)
	sort.SliceStable(orders, func(i, j int) bool {
		wi := orders[i].DueTime().Sub(orders[i].ArriveTime())
		wj := orders[j].DueTime().Sub(orders[j].ArriveTime())
		if wi != wj {
			return wi < wj
		}
		return orders[i].ID() < orders[j].ID()
	})

	var unplaced []string
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		remaining := order.RemainingM3()
		placed := true
		for remaining > glpTolerance {
			best := s.bestInsertion(env, vehicles, sol, stock, order, remaining)
			if best == nil {
				placed = false
				break
			}
			sol[best.vehicleID].Stops = best.stops
			for depotID, draw := range best.depotDraw {
				stock[depotID] -= draw
			}
			remaining -= best.amountM3
		}
		if !placed {
			unplaced = append(unplaced, order.ID())
		}
	}

	return sol, unplaced, nil
}

// bestInsertion scans every vehicle and every insertion point for the
// cheapest feasible placement of (part of) the order.
func (s *Solver) bestInsertion(
	env *world.Environment,
	vehicles map[string]*fleet.Vehicle,
	sol Solution,
	stock map[string]float64,
	order *delivery.Order,
	remainingM3 float64,
) *insertion {
	var best *insertion

	for _, vehicleID := range sortedKeys(sol) {
		v := vehicles[vehicleID]
		route := sol[vehicleID]
		amount := math.Min(remainingM3, v.CapacityM3())
		if amount <= glpTolerance {
			continue
		}

		for i := 0; i <= len(route.Stops); i++ {
			serve := ServeStop(order.ID(), order.Position(), amount)

			// Plain insertion first, then variants that prepend a
			// reload when the tank runs short at this point.
			candidates := []*insertion{{
				vehicleID: vehicleID,
				stops:     insertAt(route.Stops, i, serve),
				depotDraw: map[string]float64{},
				amountM3:  amount,
			}}
			candidates = append(candidates, s.reloadVariants(env, v, route.Stops, i, serve, stock)...)

			for _, cand := range candidates {
				score, ok := s.scoreInsertion(env, v, route.Stops, cand.stops, order)
				if !ok {
					continue
				}
				cand.score = score
				if best == nil || cand.score < best.score {
					best = cand
				}
			}
		}
	}

	return best
}

// reloadVariants builds insertion candidates that visit a depot right
// before the serve stop. One variant per depot that can fill the gap.
func (s *Solver) reloadVariants(
	env *world.Environment,
	v *fleet.Vehicle,
	stops []*Stop,
	i int,
	serve *Stop,
	stock map[string]float64,
) []*insertion {
	prefix := s.eval.SimulateRoute(env, v, stops[:utils.Min(i, len(stops))])
	if math.IsInf(prefix.Cost, 1) {
		return nil
	}
	gap := v.CapacityM3() - prefix.EndGLPM3
	if gap <= glpTolerance {
		return nil
	}

	var variants []*insertion
	for _, depot := range env.Depots() {
		amount := gap
		if !depot.IsMain() {
			amount = math.Min(amount, stock[depot.ID()])
			if amount <= glpTolerance {
				continue
			}
		}
		reload := ReloadStop(depot.ID(), depot.Position(), amount)
		withReload := insertAt(stops, i, reload)
		withServe := insertAt(withReload, i+1, serve)
		draw := map[string]float64{}
		if !depot.IsMain() {
			draw[depot.ID()] = amount
		}
		variants = append(variants, &insertion{
			vehicleID: v.ID(),
			stops:     withServe,
			depotDraw: draw,
			amountM3:  serve.AmountM3,
		})
	}
	return variants
}

// scoreInsertion prices a candidate relative to the unmodified route:
// alpha*addedDistance + beta*addedLatenessHours + gamma*waitingHours.
// Infeasible candidates, including those the vehicle cannot return to
// the plant from, report ok == false.
func (s *Solver) scoreInsertion(
	env *world.Environment,
	v *fleet.Vehicle,
	before, after []*Stop,
	order *delivery.Order,
) (float64, bool) {
	base := s.eval.SimulateRoute(env, v, before)
	result := s.eval.SimulateRoute(env, v, after)
	if math.IsInf(result.Cost, 1) || !s.eval.ReturnFeasible(env, v, result) {
		return 0, false
	}

	addedDistance := float64(result.Distance - base.Distance)
	addedLateness := (result.LatePenalty - base.LatePenalty) / s.cfg.LatePenaltyPerHour
	waiting := serveArrival(env, v, after, order.ID()).Sub(env.CurrentTime()).Hours()

	return s.cfg.Alpha*addedDistance + s.cfg.Beta*addedLateness + s.cfg.Gamma*waiting, true
}

// serveArrival returns the simulated arrival time at the order's serve
// stop within the route.
func serveArrival(env *world.Environment, v *fleet.Vehicle, stops []*Stop, orderID string) time.Time {
	pos := v.Position()
	at := env.CurrentTime()
	for _, stop := range stops {
		at = at.Add(travelDuration(v, pos.DistanceTo(stop.Position)))
		pos = stop.Position
		if stop.Kind == StopServe && stop.OrderID == orderID {
			return at
		}
		if stop.Kind == StopServe {
			at = at.Add(serveDuration)
		} else {
			at = at.Add(reloadDuration)
		}
	}
	return at
}

func insertAt(stops []*Stop, i int, stop *Stop) []*Stop {
	out := make([]*Stop, 0, len(stops)+1)
	out = append(out, stops[:i]...)
	out = append(out, stop)
	out = append(out, stops[i:]...)
	return out
}

func sortedKeys(sol Solution) []string {
	keys := make([]string, 0, len(sol))
	for k := range sol {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orderIDs(orders []*delivery.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID()
	}
	return ids
}
