package simulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

// linePlanner materializes straight x-then-y paths, ignoring blockages.
// It keeps orchestrator tests independent of the A* adapter.
type linePlanner struct{}

func (linePlanner) FindPath(_ context.Context, req *routing.PathRequest) (*routing.Path, error) {
	cells := []shared.Position{req.Origin}
	cur := req.Origin
	for cur.X != req.Destination.X {
		if cur.X < req.Destination.X {
			cur.X++
		} else {
			cur.X--
		}
		cells = append(cells, cur)
	}
	for cur.Y != req.Destination.Y {
		if cur.Y < req.Destination.Y {
			cur.Y++
		} else {
			cur.Y--
		}
		cells = append(cells, cur)
	}

	cellDuration := time.Duration(float64(time.Hour) / req.SpeedKmh)
	times := make([]time.Time, len(cells))
	for i := range cells {
		times[i] = req.Departure.Add(time.Duration(i) * cellDuration)
	}
	return &routing.Path{Cells: cells, ArrivalTimes: times}, nil
}

func newOrchestrator(t *testing.T, queue *simulation.EventQueue, opts simulation.Options) (*simulation.Orchestrator, *world.Environment) {
	t.Helper()
	env, err := world.NewEnvironment(70, 50, execStart)
	require.NoError(t, err)

	plant, err := network.NewDepot("PLANT", shared.Position{X: 12, Y: 8}, 0, true, true)
	require.NoError(t, err)
	require.NoError(t, env.AddDepot(plant))

	v, err := fleet.NewVehicle("TD01", fleet.TypeTD, shared.Position{X: 12, Y: 8}, 5, 25, 25, 80)
	require.NoError(t, err)
	require.NoError(t, env.AddVehicle(v))

	factory := func(width, height int, oracle routing.BlockageOracle) routing.PathPlanner {
		return linePlanner{}
	}
	planner := planning.NewService(planning.DefaultConfig(), factory, common.NewNoOpLogger())
	executor := simulation.NewExecutor(nil, common.NewNoOpLogger())
	clock := shared.NewMockClock(execStart)

	return simulation.NewOrchestrator(env, queue, planner, executor, clock, opts, common.NewNoOpLogger()), env
}

func TestOrchestrator_RunsToEndTime(t *testing.T) {
	queue := simulation.NewEventQueue()
	o, err := delivery.NewOrder("o1", "CL-1", execStart.Add(5*time.Minute), execStart.Add(4*time.Hour),
		5, shared.Position{X: 14, Y: 8})
	require.NoError(t, err)
	queue.Push(simulation.OrderArrivalEvent(o))

	orch, env := newOrchestrator(t, queue, simulation.Options{
		TickStep:       5 * time.Minute,
		SpeedMs:        simulation.MinSpeedMs,
		ReplanInterval: time.Minute,
		TicksPerReplan: 2,
		EndTime:        execStart.Add(time.Hour),
	})

	require.NoError(t, orch.Run(context.Background()))

	assert.Equal(t, simulation.StateFinished, orch.State())
	assert.True(t, env.CurrentTime().After(execStart.Add(time.Hour)))

	// The scheduled order arrived, was planned and got delivered well
	// before the hour ran out.
	snap := orch.Snapshot()
	assert.InDelta(t, 5.0, snap.Stats.DeliveredM3, 1e-9)
	assert.Zero(t, snap.Stats.PendingOrders)
	assert.GreaterOrEqual(t, snap.Stats.ReplanCount, uint64(1))
}

func TestOrchestrator_PlanCheckpointForcesReplan(t *testing.T) {
	queue := simulation.NewEventQueue()
	late, err := delivery.NewOrder("o2", "CL-2", execStart.Add(10*time.Minute), execStart.Add(6*time.Hour),
		2, shared.Position{X: 14, Y: 10})
	require.NoError(t, err)
	queue.Push(simulation.OrderArrivalEvent(late))

	// With the interval and tick gates out of reach, only the
	// checkpoint can trigger the second replan.
	queue.Push(simulation.PlanCheckpointEvent(execStart.Add(25 * time.Minute)))

	orch, env := newOrchestrator(t, queue, simulation.Options{
		TickStep:       5 * time.Minute,
		SpeedMs:        simulation.MinSpeedMs,
		ReplanInterval: 100 * time.Hour,
		TicksPerReplan: 1000,
		EndTime:        execStart.Add(3 * time.Hour),
	})

	first, err := delivery.NewOrder("o1", "CL-1", execStart, execStart.Add(4*time.Hour),
		3, shared.Position{X: 14, Y: 8})
	require.NoError(t, err)
	require.NoError(t, env.AddOrder(first))

	require.NoError(t, orch.Run(context.Background()))

	snap := orch.Snapshot()
	assert.InDelta(t, 5.0, snap.Stats.DeliveredM3, 1e-9)
	assert.Zero(t, snap.Stats.PendingOrders)
	assert.GreaterOrEqual(t, snap.Stats.ReplanCount, uint64(2))
}

func TestOrchestrator_SimulationEndEventStopsRun(t *testing.T) {
	queue := simulation.NewEventQueue()
	queue.Push(simulation.SimulationEndEvent(execStart.Add(30 * time.Minute)))

	orch, env := newOrchestrator(t, queue, simulation.Options{
		TickStep: 5 * time.Minute,
		SpeedMs:  simulation.MinSpeedMs,
	})

	require.NoError(t, orch.Run(context.Background()))

	assert.Equal(t, simulation.StateFinished, orch.State())
	assert.Equal(t, execStart.Add(35*time.Minute), env.CurrentTime())
}

func TestOrchestrator_RunTwiceConflicts(t *testing.T) {
	orch, _ := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{
		TickStep: 5 * time.Minute,
		SpeedMs:  simulation.MinSpeedMs,
		EndTime:  execStart.Add(10 * time.Minute),
	})
	require.NoError(t, orch.Run(context.Background()))

	err := orch.Run(context.Background())
	require.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))
}

func TestOrchestrator_PauseResumeLifecycle(t *testing.T) {
	orch, _ := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{
		TickStep: 5 * time.Minute,
		SpeedMs:  simulation.MinSpeedMs,
	})

	// Before Run only speed changes are legal.
	err := orch.Pause()
	require.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))
	err = orch.Resume()
	require.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- orch.Run(ctx) }()

	require.Eventually(t, func() bool {
		return orch.State() == simulation.StateRunning
	}, time.Second, time.Millisecond)

	// Pausing twice is a no-op, as is resuming twice.
	require.NoError(t, orch.Pause())
	require.NoError(t, orch.Pause())
	assert.Equal(t, simulation.StatePaused, orch.State())

	require.NoError(t, orch.Resume())
	require.NoError(t, orch.Resume())
	require.Eventually(t, func() bool {
		return orch.State() == simulation.StateRunning
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, simulation.StateFinished, orch.State())
}

func TestOrchestrator_SetSpeedBounds(t *testing.T) {
	orch, _ := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{SpeedMs: 1000})

	assert.Error(t, orch.SetSpeed(simulation.MinSpeedMs-1))
	assert.Error(t, orch.SetSpeed(simulation.MaxSpeedMs+1))

	require.NoError(t, orch.SetSpeed(simulation.MinSpeedMs))
	assert.Equal(t, simulation.MinSpeedMs, orch.Speed())

	require.NoError(t, orch.SetSpeed(simulation.MaxSpeedMs))
	assert.Equal(t, simulation.MaxSpeedMs, orch.Speed())
}

func TestOrchestrator_WithEnvironmentFlagsReplan(t *testing.T) {
	orch, _ := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{SpeedMs: 1000})

	err := orch.WithEnvironment(func(env *world.Environment) error {
		o, err := delivery.NewOrder("o1", "CL-1", execStart, execStart.Add(4*time.Hour),
			5, shared.Position{X: 30, Y: 20})
		if err != nil {
			return err
		}
		return env.AddOrder(o)
	})
	require.NoError(t, err)

	snap := orch.Snapshot()
	assert.Equal(t, 1, snap.Stats.PendingOrders)
}
