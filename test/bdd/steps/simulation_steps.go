package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

type simulationContext struct {
	orchestrator *simulation.Orchestrator
	mediator     common.Mediator
	breakdown    *simulation.BreakdownResult
	err          error
}

func (sc *simulationContext) reset() {
	sc.orchestrator = nil
	sc.mediator = nil
	sc.breakdown = nil
	sc.err = nil
}

func (sc *simulationContext) aFreshSimulation() error {
	start := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	env, err := world.NewEnvironment(70, 50, start)
	if err != nil {
		return err
	}

	plant, err := network.NewDepot("PLANT", shared.Position{X: 12, Y: 8}, 0, true, true)
	if err != nil {
		return err
	}
	if err := env.AddDepot(plant); err != nil {
		return err
	}

	v, err := fleet.NewVehicle("TD01", fleet.TypeTD, shared.Position{X: 12, Y: 8}, 5, 25, 25, 80)
	if err != nil {
		return err
	}
	if err := env.AddVehicle(v); err != nil {
		return err
	}

	logger := common.NewNoOpLogger()
	factory := func(int, int, routing.BlockageOracle) routing.PathPlanner { return nil }
	planner := planning.NewService(planning.DefaultConfig(), factory, logger)
	executor := simulation.NewExecutor(nil, logger)
	sc.orchestrator = simulation.NewOrchestrator(env, simulation.NewEventQueue(), planner, executor,
		shared.NewMockClock(start), simulation.Options{SpeedMs: 1000}, logger)

	sc.mediator = common.NewMediator()
	return simulation.RegisterHandlers(sc.mediator, sc.orchestrator)
}

func (sc *simulationContext) theSpeedIsSetTo(ms int) error {
	_, sc.err = sc.mediator.Send(context.Background(), simulation.SetSpeedCommand{SpeedMs: ms})
	return nil
}

func (sc *simulationContext) theSpeedShouldBe(ms int) error {
	if got := sc.orchestrator.Speed(); got != ms {
		return fmt.Errorf("expected speed %d ms, have %d ms", ms, got)
	}
	return nil
}

func (sc *simulationContext) theSimulationIsPaused() error {
	_, sc.err = sc.mediator.Send(context.Background(), simulation.PauseSimulationCommand{})
	return nil
}

func (sc *simulationContext) aBreakdownIsReported(hours int, vehicleID string) error {
	resp, err := sc.mediator.Send(context.Background(), simulation.ReportBreakdownCommand{
		VehicleID:            vehicleID,
		EstimatedRepairHours: float64(hours),
	})
	sc.err = err
	if result, ok := resp.(*simulation.BreakdownResult); ok {
		sc.breakdown = result
	}
	return nil
}

func (sc *simulationContext) theIncidentShouldBeClassifiedAs(typ string) error {
	if sc.breakdown == nil {
		return fmt.Errorf("no breakdown was accepted: %v", sc.err)
	}
	if sc.breakdown.Type != typ {
		return fmt.Errorf("expected incident type %s, have %s", typ, sc.breakdown.Type)
	}
	return nil
}

func (sc *simulationContext) theVehicleIsRepaired(vehicleID string) error {
	_, sc.err = sc.mediator.Send(context.Background(), simulation.RepairVehicleCommand{VehicleID: vehicleID})
	return nil
}

func (sc *simulationContext) theCommandShouldBeRejected() error {
	if sc.err == nil {
		return fmt.Errorf("expected the command to be rejected")
	}
	return nil
}

func (sc *simulationContext) theCommandShouldSucceed() error {
	if sc.err != nil {
		return fmt.Errorf("expected success, got: %v", sc.err)
	}
	return nil
}

// InitializeSimulationControlScenario registers the control surface
// steps: speed, pause, breakdown and repair.
func InitializeSimulationControlScenario(sc *godog.ScenarioContext) {
	simCtx := &simulationContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		simCtx.reset()
		return ctx, nil
	})

	sc.Step(`^a fresh glp fleet simulation$`, simCtx.aFreshSimulation)
	sc.Step(`^the simulation speed is set to (\d+) milliseconds$`, simCtx.theSpeedIsSetTo)
	sc.Step(`^the simulation speed should be (\d+) milliseconds$`, simCtx.theSpeedShouldBe)
	sc.Step(`^the simulation is paused$`, simCtx.theSimulationIsPaused)
	sc.Step(`^a breakdown with an estimated repair of (\d+) hours is reported for "([^"]*)"$`, simCtx.aBreakdownIsReported)
	sc.Step(`^the incident should be classified as "([^"]*)"$`, simCtx.theIncidentShouldBeClassifiedAs)
	sc.Step(`^vehicle "([^"]*)" is repaired$`, simCtx.theVehicleIsRepaired)
	sc.Step(`^the command should be rejected$`, simCtx.theCommandShouldBeRejected)
	sc.Step(`^the command should succeed$`, simCtx.theCommandShouldSucceed)
}
