package simulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/plan"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

var execStart = time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

type recordingSink struct {
	records []*delivery.Record
}

func (s *recordingSink) RecordDelivery(r *delivery.Record) error {
	s.records = append(s.records, r)
	return nil
}

func execEnv(t *testing.T) (*world.Environment, *fleet.Vehicle) {
	t.Helper()
	env, err := world.NewEnvironment(70, 50, execStart)
	require.NoError(t, err)

	plant, err := network.NewDepot("PLANT", shared.Position{X: 12, Y: 8}, 0, true, true)
	require.NoError(t, err)
	require.NoError(t, env.AddDepot(plant))

	v, err := fleet.NewVehicle("TD01", fleet.TypeTD, shared.Position{X: 12, Y: 8}, 5, 25, 25, 80)
	require.NoError(t, err)
	require.NoError(t, env.AddVehicle(v))
	return env, v
}

// eastPath builds a straight two-cell hop from the plant to (14,8) at
// 45 s per cell.
func eastPath() *routing.Path {
	return &routing.Path{
		Cells: []shared.Position{
			{X: 12, Y: 8}, {X: 13, Y: 8}, {X: 14, Y: 8},
		},
		ArrivalTimes: []time.Time{
			execStart,
			execStart.Add(45 * time.Second),
			execStart.Add(90 * time.Second),
		},
	}
}

func deliveryPlan(t *testing.T) *plan.Plan {
	t.Helper()
	drive := plan.NewDriveAction(eastPath(), execStart, execStart.Add(90*time.Second))
	serve := plan.NewServeAction("o1", 5, execStart.Add(90*time.Second))
	p, err := plan.NewPlan("TD01", []*plan.Action{drive, serve}, execStart)
	require.NoError(t, err)
	return p
}

func TestExecuteTick_CompletesDriveAndServe(t *testing.T) {
	env, v := execEnv(t)
	o, err := delivery.NewOrder("o1", "CL-1", execStart, execStart.Add(4*time.Hour), 5, shared.Position{X: 14, Y: 8})
	require.NoError(t, err)
	require.NoError(t, env.AddOrder(o))

	sink := &recordingSink{}
	exec := simulation.NewExecutor(sink, common.NewNoOpLogger())
	plans := map[string]*plan.Plan{"TD01": deliveryPlan(t)}

	// Half an hour comfortably covers the 90 s drive and the
	// 15-minute service stop.
	require.NoError(t, env.AdvanceTime(30*time.Minute))
	result := exec.ExecuteTick(env, plans)

	assert.Equal(t, []string{"TD01"}, result.CompletedPlans)
	assert.InDelta(t, 5.0, result.DeliveredM3, 1e-9)
	assert.False(t, result.NeedsReplan)

	assert.Equal(t, shared.Position{X: 14, Y: 8}, v.Position())
	assert.Zero(t, v.GLPM3())
	assert.Equal(t, fleet.StatusIdle, v.Status())
	assert.Empty(t, env.PendingOrders())

	require.Len(t, sink.records, 1)
	assert.Equal(t, "o1", sink.records[0].OrderID())
	assert.Equal(t, "TD01", sink.records[0].VehicleID())
}

func TestExecuteTick_ServeKeepsSurplusAboard(t *testing.T) {
	env, v := execEnv(t)
	// The order only needs 2 m3 but the stop was planned for 5.
	o, err := delivery.NewOrder("o1", "CL-1", execStart, execStart.Add(4*time.Hour), 2, shared.Position{X: 14, Y: 8})
	require.NoError(t, err)
	require.NoError(t, env.AddOrder(o))

	exec := simulation.NewExecutor(nil, common.NewNoOpLogger())
	plans := map[string]*plan.Plan{"TD01": deliveryPlan(t)}

	require.NoError(t, env.AdvanceTime(30*time.Minute))
	result := exec.ExecuteTick(env, plans)

	assert.InDelta(t, 2.0, result.DeliveredM3, 1e-9)
	assert.InDelta(t, 3.0, v.GLPM3(), 1e-9)
	assert.True(t, o.Delivered())
}

func TestExecuteTick_InterpolatesDrivingPosition(t *testing.T) {
	env, v := execEnv(t)
	o, err := delivery.NewOrder("o1", "CL-1", execStart, execStart.Add(4*time.Hour), 5, shared.Position{X: 14, Y: 8})
	require.NoError(t, err)
	require.NoError(t, env.AddOrder(o))

	exec := simulation.NewExecutor(nil, common.NewNoOpLogger())
	plans := map[string]*plan.Plan{"TD01": deliveryPlan(t)}

	// First tick starts the drive; the vehicle has not moved yet.
	result := exec.ExecuteTick(env, plans)
	assert.Empty(t, result.CompletedPlans)
	assert.Equal(t, fleet.StatusDriving, v.Status())
	assert.Equal(t, shared.Position{X: 12, Y: 8}, v.Position())

	// One cell later the vehicle tracks its path.
	require.NoError(t, env.AdvanceTime(45*time.Second))
	exec.ExecuteTick(env, plans)
	assert.Equal(t, shared.Position{X: 13, Y: 8}, v.Position())
}

func TestExecuteTick_AbortsOnInsufficientFuel(t *testing.T) {
	env, _ := execEnv(t)
	dry, err := fleet.NewVehicle("TD02", fleet.TypeTD, shared.Position{X: 12, Y: 8}, 5, 0.001, 25, 80)
	require.NoError(t, err)
	require.NoError(t, env.AddVehicle(dry))

	drive := plan.NewDriveAction(eastPath(), execStart, execStart.Add(90*time.Second))
	p, err := plan.NewPlan("TD02", []*plan.Action{drive}, execStart)
	require.NoError(t, err)

	exec := simulation.NewExecutor(nil, common.NewNoOpLogger())
	result := exec.ExecuteTick(env, map[string]*plan.Plan{"TD02": p})

	assert.True(t, result.NeedsReplan)
	assert.True(t, p.Finished())
	assert.Equal(t, shared.Position{X: 12, Y: 8}, dry.Position())
}

func TestExecuteTick_AbortsPlanOfStrickenVehicle(t *testing.T) {
	env, v := execEnv(t)
	inc, err := incident.NewIncident("inc-1", "TD01", incident.TI1, execStart, v.Position())
	require.NoError(t, err)
	require.NoError(t, env.RegisterIncident(inc))

	p := deliveryPlan(t)
	exec := simulation.NewExecutor(nil, common.NewNoOpLogger())
	result := exec.ExecuteTick(env, map[string]*plan.Plan{"TD01": p})

	assert.True(t, result.NeedsReplan)
	assert.True(t, p.Finished())
	assert.Equal(t, fleet.StatusUnavailable, v.Status())
}
