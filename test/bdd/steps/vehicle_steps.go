package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

type vehicleContext struct {
	vehicle *fleet.Vehicle
	err     error
}

func (vc *vehicleContext) reset() {
	vc.vehicle = nil
	vc.err = nil
}

func (vc *vehicleContext) aTankerWithGLPAndFuel(typeName string, glpM3, fuelGal float64) error {
	vt, err := fleet.ParseVehicleType(typeName)
	if err != nil {
		return err
	}
	vc.vehicle, vc.err = fleet.NewVehicle(typeName+"01", vt, shared.Position{X: 12, Y: 8}, glpM3, fuelGal, 25, 80)
	return vc.err
}

func (vc *vehicleContext) itDrivesKm(distance int) error {
	vc.err = vc.vehicle.ConsumeFuelFor(distance)
	return nil
}

func (vc *vehicleContext) theFuelTankShouldHoldGallons(expected float64) error {
	if math.Abs(vc.vehicle.FuelGal()-expected) > 1e-6 {
		return fmt.Errorf("expected %.4f gallons, have %.4f", expected, vc.vehicle.FuelGal())
	}
	return nil
}

func (vc *vehicleContext) itLoadsM3(amount float64) error {
	vc.vehicle.LoadGLP(amount)
	return nil
}

func (vc *vehicleContext) theCargoShouldHoldM3(expected float64) error {
	if math.Abs(vc.vehicle.GLPM3()-expected) > 1e-6 {
		return fmt.Errorf("expected %.4f m3, have %.4f", expected, vc.vehicle.GLPM3())
	}
	return nil
}

func (vc *vehicleContext) itShouldBeAbleToDriveKm(distance int) error {
	if !vc.vehicle.CanDrive(distance) {
		return fmt.Errorf("vehicle cannot cover %d km with %.4f gallons", distance, vc.vehicle.FuelGal())
	}
	return nil
}

func (vc *vehicleContext) itShouldNotBeAbleToDriveKm(distance int) error {
	if vc.vehicle.CanDrive(distance) {
		return fmt.Errorf("vehicle unexpectedly covers %d km", distance)
	}
	return nil
}

func (vc *vehicleContext) theOperationShouldFail() error {
	if vc.err == nil {
		return fmt.Errorf("expected an error, got none")
	}
	return nil
}

// InitializeVehicleScenario registers the tanker fuel and cargo steps.
func InitializeVehicleScenario(sc *godog.ScenarioContext) {
	vc := &vehicleContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		vc.reset()
		return ctx, nil
	})

	sc.Step(`^a "([^"]*)" tanker carrying ([\d.]+) m3 with ([\d.]+) gallons of fuel$`, vc.aTankerWithGLPAndFuel)
	sc.Step(`^it drives (\d+) km$`, vc.itDrivesKm)
	sc.Step(`^the fuel tank should hold ([\d.]+) gallons$`, vc.theFuelTankShouldHoldGallons)
	sc.Step(`^it loads ([\d.]+) m3$`, vc.itLoadsM3)
	sc.Step(`^the cargo should hold ([\d.]+) m3$`, vc.theCargoShouldHoldM3)
	sc.Step(`^it should be able to drive (\d+) km$`, vc.itShouldBeAbleToDriveKm)
	sc.Step(`^it should not be able to drive (\d+) km$`, vc.itShouldNotBeAbleToDriveKm)
	sc.Step(`^the drive should fail$`, vc.theOperationShouldFail)
}
