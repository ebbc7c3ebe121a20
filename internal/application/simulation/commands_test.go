package simulation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

func TestReportBreakdown_ClassifiesByRepairTime(t *testing.T) {
	cases := []struct {
		hours float64
		typ   incident.IncidentType
	}{
		{1, incident.TI1},
		{2, incident.TI1},
		{12, incident.TI2},
		{24, incident.TI2},
		{48, incident.TI3},
	}

	for _, tc := range cases {
		orch, _ := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{SpeedMs: 1000})
		handler := &simulation.ReportBreakdownHandler{Orchestrator: orch}

		resp, err := handler.Handle(context.Background(), simulation.ReportBreakdownCommand{
			VehicleID:            "TD01",
			EstimatedRepairHours: tc.hours,
		})
		require.NoError(t, err)

		result, ok := resp.(*simulation.BreakdownResult)
		require.True(t, ok)
		assert.Equal(t, string(tc.typ), result.Type, "repair estimate of %v hours", tc.hours)
	}
}

func TestRepairVehicle_ReturnsToServiceImmediately(t *testing.T) {
	orch, env := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{SpeedMs: 1000})
	report := &simulation.ReportBreakdownHandler{Orchestrator: orch}
	repair := &simulation.RepairVehicleHandler{Orchestrator: orch}

	_, err := report.Handle(context.Background(), simulation.ReportBreakdownCommand{
		VehicleID:            "TD01",
		EstimatedRepairHours: 12,
	})
	require.NoError(t, err)

	v, err := env.FindVehicleByID("TD01")
	require.NoError(t, err)
	require.Equal(t, fleet.StatusUnavailable, v.Status())

	// Repair puts the tanker back into service without waiting for the
	// next time advance.
	_, err = repair.Handle(context.Background(), simulation.RepairVehicleCommand{VehicleID: "TD01"})
	require.NoError(t, err)
	assert.Equal(t, fleet.StatusAvailable, v.Status())
	assert.Empty(t, env.UnresolvedIncidentsFor("TD01"))
}

func TestRepairVehicle_WithoutIncidentConflicts(t *testing.T) {
	orch, _ := newOrchestrator(t, simulation.NewEventQueue(), simulation.Options{SpeedMs: 1000})
	repair := &simulation.RepairVehicleHandler{Orchestrator: orch}

	_, err := repair.Handle(context.Background(), simulation.RepairVehicleCommand{VehicleID: "TD01"})
	require.Error(t, err)
	assert.True(t, shared.IsStateConflict(err))
}
