package planning_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

var planStart = time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

// problem builds an environment with the main plant, one aux depot, one
// TD tanker at the plant and the given orders.
func problem(t *testing.T, orders ...*delivery.Order) (*world.Environment, *fleet.Vehicle) {
	t.Helper()
	env, err := world.NewEnvironment(70, 50, planStart)
	require.NoError(t, err)

	plant, err := network.NewDepot("PLANT", shared.Position{X: 12, Y: 8}, 0, true, true)
	require.NoError(t, err)
	require.NoError(t, env.AddDepot(plant))

	north, err := network.NewDepot("NORTH", shared.Position{X: 42, Y: 42}, 160, false, true)
	require.NoError(t, err)
	require.NoError(t, env.AddDepot(north))

	v, err := fleet.NewVehicle("TD01", fleet.TypeTD, shared.Position{X: 12, Y: 8}, 5, 25, 25, 80)
	require.NoError(t, err)
	require.NoError(t, env.AddVehicle(v))

	for _, o := range orders {
		require.NoError(t, env.AddOrder(o))
	}
	return env, v
}

func order(t *testing.T, id string, x, y int, amountM3 float64, dueIn time.Duration) *delivery.Order {
	t.Helper()
	o, err := delivery.NewOrder(id, "CL-1", planStart, planStart.Add(dueIn), amountM3, shared.Position{X: x, Y: y})
	require.NoError(t, err)
	return o
}

func TestSimulateRoute_OnTimeDelivery(t *testing.T) {
	env, v := problem(t, order(t, "o1", 20, 12, 5, 4*time.Hour))
	eval := planning.NewEvaluator(planning.DefaultConfig())

	result := eval.SimulateRoute(env, v, []*planning.Stop{
		planning.ServeStop("o1", shared.Position{X: 20, Y: 12}, 5),
	})

	assert.Zero(t, result.Cost, "on-time route carries no penalty")
	assert.Equal(t, 12, result.Distance)
	assert.Zero(t, result.EndGLPM3)
	// 12 km at 80 km/h is 9 minutes, plus the 15-minute service stop.
	assert.Equal(t, planStart.Add(24*time.Minute), result.EndTime)
}

func TestSimulateRoute_LatePenaltyPerStartedHour(t *testing.T) {
	// Due in 5 minutes; arrival after 9 minutes is 4 minutes late,
	// billed as one full hour.
	env, v := problem(t, order(t, "o1", 20, 12, 5, 5*time.Minute))
	eval := planning.NewEvaluator(planning.DefaultConfig())

	result := eval.SimulateRoute(env, v, []*planning.Stop{
		planning.ServeStop("o1", shared.Position{X: 20, Y: 12}, 5),
	})

	assert.InDelta(t, 500.0, result.LatePenalty, 1e-9)
	assert.InDelta(t, 500.0, result.Cost, 1e-9)
}

func TestSimulateRoute_InfeasibleOnDryTank(t *testing.T) {
	env, v := problem(t, order(t, "o1", 69, 49, 5, 48*time.Hour))
	eval := planning.NewEvaluator(planning.DefaultConfig())

	// Drain the tank so the far corner is out of reach.
	require.NoError(t, v.ConsumeFuelFor(2500))

	result := eval.SimulateRoute(env, v, []*planning.Stop{
		planning.ServeStop("o1", shared.Position{X: 69, Y: 49}, 5),
	})
	assert.True(t, math.IsInf(result.Cost, 1))
}

func TestSimulateRoute_PartialDeliveryGate(t *testing.T) {
	env, v := problem(t, order(t, "o1", 20, 12, 8, 4*time.Hour))

	stops := []*planning.Stop{
		// Promise more than the 5 m3 on board.
		planning.ServeStop("o1", shared.Position{X: 20, Y: 12}, 8),
	}

	strict := planning.DefaultConfig()
	strict.AllowPartialDelivery = false
	result := planning.NewEvaluator(strict).SimulateRoute(env, v, stops)
	assert.True(t, math.IsInf(result.Cost, 1))

	lenient := planning.DefaultConfig()
	lenient.AllowPartialDelivery = true
	result = planning.NewEvaluator(lenient).SimulateRoute(env, v, stops)
	assert.False(t, math.IsInf(result.Cost, 1))
}

func TestSimulateRoute_ReloadRefuelsAndRefills(t *testing.T) {
	env, v := problem(t, order(t, "o1", 42, 40, 5, 24*time.Hour))
	eval := planning.NewEvaluator(planning.DefaultConfig())

	result := eval.SimulateRoute(env, v, []*planning.Stop{
		planning.ServeStop("o1", shared.Position{X: 42, Y: 40}, 5),
		planning.ReloadStop("NORTH", shared.Position{X: 42, Y: 42}, 5),
	})

	require.False(t, math.IsInf(result.Cost, 1))
	assert.InDelta(t, 5.0, result.EndGLPM3, 1e-9)
	assert.InDelta(t, 25.0, result.EndFuelGal, 1e-9, "refuelable depot tops the tank off")
}

func TestSimulateRoute_DepotOverdrawInfeasible(t *testing.T) {
	env, v := problem(t)
	eval := planning.NewEvaluator(planning.DefaultConfig())

	result := eval.SimulateRoute(env, v, []*planning.Stop{
		planning.ReloadStop("NORTH", shared.Position{X: 42, Y: 42}, 200),
	})
	assert.True(t, math.IsInf(result.Cost, 1))
}

func TestScore_UndeliveredAndDistancePenalties(t *testing.T) {
	env, _ := problem(t,
		order(t, "o1", 20, 12, 5, 4*time.Hour),
		order(t, "o2", 30, 30, 5, 4*time.Hour),
	)
	eval := planning.NewEvaluator(planning.DefaultConfig())

	sol := planning.Solution{
		"TD01": &planning.Route{VehicleID: "TD01", Stops: []*planning.Stop{
			planning.ServeStop("o1", shared.Position{X: 20, Y: 12}, 5),
		}},
	}

	breakdown := eval.Score(env, sol)
	assert.Equal(t, 1, breakdown.Undelivered, "o2 is not served")
	assert.InDelta(t, 10_000.0, breakdown.UndeliveredCost, 1e-9)
	assert.Equal(t, 12, breakdown.TotalDistance)
	assert.InDelta(t, 120.0, breakdown.DistanceCost, 1e-9)
	assert.InDelta(t, 10_120.0, breakdown.Total, 1e-9)

	assert.InDelta(t, 0.5, eval.OrderFulfilmentRate(env, sol), 1e-9)
	assert.InDelta(t, 0.5, eval.GLPSatisfactionRate(env, sol), 1e-9)
}

func TestReturnFeasible(t *testing.T) {
	env, v := problem(t)
	eval := planning.NewEvaluator(planning.DefaultConfig())

	reachable := planning.RouteResult{
		EndPosition: shared.Position{X: 20, Y: 12},
		EndFuelGal:  25,
	}
	assert.True(t, eval.ReturnFeasible(env, v, reachable))

	stranded := planning.RouteResult{
		EndPosition: shared.Position{X: 69, Y: 49},
		EndFuelGal:  0.01,
	}
	assert.False(t, eval.ReturnFeasible(env, v, stranded))
}
