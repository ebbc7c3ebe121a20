package fleet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

func newVehicle(t *testing.T, typ fleet.VehicleType, glpM3 float64) *fleet.Vehicle {
	t.Helper()
	pos, err := shared.NewPosition(12, 8)
	require.NoError(t, err)
	v, err := fleet.NewVehicle("TA01", typ, pos, glpM3, 25, 25, 80)
	require.NoError(t, err)
	return v
}

func TestNewVehicle_Validation(t *testing.T) {
	pos, _ := shared.NewPosition(0, 0)

	_, err := fleet.NewVehicle("", fleet.TypeTA, pos, 0, 25, 25, 80)
	assert.Error(t, err)

	_, err = fleet.NewVehicle("TA01", fleet.TypeTA, pos, 26, 25, 25, 80)
	assert.Error(t, err, "load above TA capacity must be rejected")

	_, err = fleet.NewVehicle("TA01", fleet.TypeTA, pos, -1, 25, 25, 80)
	assert.Error(t, err)

	_, err = fleet.NewVehicle("TA01", fleet.TypeTA, pos, 0, 30, 25, 80)
	assert.Error(t, err, "fuel above capacity must be rejected")
}

func TestFuelNeededGal_ConsumptionFormula(t *testing.T) {
	// Empty TD: 1 ton tare, 100 km -> 100 * 1.0 / 360
	v := newVehicle(t, fleet.TypeTD, 0)
	assert.InDelta(t, 100.0/360.0, v.FuelNeededGal(100), 1e-9)

	// Full TA: 2.5 tare + 25 * 0.5 GLP weight = 15 tons
	full := newVehicle(t, fleet.TypeTA, 25)
	assert.InDelta(t, 100.0*15.0/360.0, full.FuelNeededGal(100), 1e-9)

	assert.Zero(t, v.FuelNeededGal(0))
}

func TestCanDrive_ExactZeroBoundary(t *testing.T) {
	v := newVehicle(t, fleet.TypeTD, 0)

	// 25 gal / (1 ton / 360) = 9000 km reachable with an empty TD
	assert.True(t, v.CanDrive(9000))
	assert.False(t, v.CanDrive(9001))
}

func TestConsumeFuelFor(t *testing.T) {
	v := newVehicle(t, fleet.TypeTD, 0)

	require.NoError(t, v.ConsumeFuelFor(360))
	assert.InDelta(t, 24.0, v.FuelGal(), 1e-9)

	err := v.ConsumeFuelFor(100_000)
	assert.Error(t, err)
	assert.InDelta(t, 24.0, v.FuelGal(), 1e-9, "failed consumption must not mutate")
}

func TestRefuelToFull(t *testing.T) {
	v := newVehicle(t, fleet.TypeTD, 0)
	require.NoError(t, v.ConsumeFuelFor(360))

	added := v.RefuelToFull()
	assert.InDelta(t, 1.0, added, 1e-9)
	assert.InDelta(t, 25.0, v.FuelGal(), 1e-9)
}

func TestLoadAndDischargeGLP_Caps(t *testing.T) {
	v := newVehicle(t, fleet.TypeTC, 4)

	loaded := v.LoadGLP(100)
	assert.InDelta(t, 6.0, loaded, 1e-9, "TC holds 10 m3")
	assert.InDelta(t, 10.0, v.GLPM3(), 1e-9)

	discharged := v.DischargeGLP(12)
	assert.InDelta(t, 10.0, discharged, 1e-9)
	assert.Zero(t, v.GLPM3())

	assert.Zero(t, v.LoadGLP(-5))
	assert.Zero(t, v.DischargeGLP(-5))
}

func TestAssignable_ByStatus(t *testing.T) {
	v := newVehicle(t, fleet.TypeTB, 0)
	assert.True(t, v.Assignable())

	require.NoError(t, v.SetStatus(fleet.StatusMaintenance))
	assert.False(t, v.Assignable())

	require.NoError(t, v.SetStatus(fleet.StatusUnavailable))
	assert.False(t, v.Assignable())

	require.NoError(t, v.SetStatus(fleet.StatusIdle))
	assert.True(t, v.Assignable())

	assert.Error(t, v.SetStatus("BROKEN"))
}

func TestCloneForPlanning_Independent(t *testing.T) {
	v := newVehicle(t, fleet.TypeTA, 10)

	clone := v.CloneForPlanning()
	clone.LoadGLP(5)
	clone.MoveTo(shared.Position{X: 1, Y: 1})

	assert.InDelta(t, 10.0, v.GLPM3(), 1e-9)
	assert.Equal(t, shared.Position{X: 12, Y: 8}, v.Position())
}
