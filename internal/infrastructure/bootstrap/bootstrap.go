// Package bootstrap assembles the simulated world from configuration
// and scenario files. It is the only place that knows how to turn the
// static config (grid, depots, fleet) and the scenario inputs (orders,
// blockages, maintenance, incidents) into a live environment and a
// seeded event queue.
package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/adapters/ingest"
	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
	"github.com/andrescamacho/glp-fleet-go/internal/infrastructure/config"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// DefaultVehicleSpeedKmh is the fleet cruising speed on the grid.
const DefaultVehicleSpeedKmh = 80

// StartTime resolves the simulated clock anchor from configuration.
// An empty start time anchors at the current wall clock.
func StartTime(cfg *config.SimulationConfig) (time.Time, error) {
	if cfg.StartTime == "" {
		return time.Now().Truncate(time.Minute), nil
	}
	t, err := shared.ParseTime(cfg.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid simulation start_time %q: %w", cfg.StartTime, err)
	}
	return t, nil
}

// BuildEnvironment constructs the world: grid, depots and the tanker
// fleet, every vehicle idle and fully loaded at the main plant.
func BuildEnvironment(cfg *config.WorldConfig, startTime time.Time) (*world.Environment, error) {
	env, err := world.NewEnvironment(cfg.Grid.Width, cfg.Grid.Height, startTime)
	if err != nil {
		return nil, err
	}

	var mainPos shared.Position
	for _, dc := range cfg.Depots {
		pos, err := shared.NewPosition(dc.X, dc.Y)
		if err != nil {
			return nil, fmt.Errorf("depot %s: %w", dc.ID, err)
		}
		depot, err := network.NewDepot(dc.ID, pos, dc.CapacityM3, dc.Main, dc.Refuel)
		if err != nil {
			return nil, err
		}
		if err := env.AddDepot(depot); err != nil {
			return nil, err
		}
		if dc.Main {
			mainPos = pos
		}
	}

	for _, group := range cfg.Fleet {
		vt, err := fleet.ParseVehicleType(group.Type)
		if err != nil {
			return nil, err
		}
		for i := 1; i <= group.Count; i++ {
			id := fmt.Sprintf("%s%02d", group.Type, i)
			v, err := fleet.NewVehicle(
				id,
				vt,
				mainPos,
				vt.CapacityM3(),
				group.FuelGal,
				group.FuelGal,
				DefaultVehicleSpeedKmh,
			)
			if err != nil {
				return nil, err
			}
			if err := env.AddVehicle(v); err != nil {
				return nil, err
			}
		}
	}

	return env, nil
}

// LoadScenario parses the configured scenario files and seeds the
// event queue. Missing file paths skip that input; malformed lines are
// logged and dropped by the parsers. Order and blockage day offsets
// are anchored to the month of the simulation start.
func LoadScenario(
	cfg *config.SimulationConfig,
	env *world.Environment,
	queue *simulation.EventQueue,
	startTime time.Time,
	endTime time.Time,
	logger common.Logger,
) error {
	month := time.Date(startTime.Year(), startTime.Month(), 1, 0, 0, 0, 0, startTime.Location())

	if cfg.OrdersFile != "" {
		f, err := os.Open(cfg.OrdersFile)
		if err != nil {
			return fmt.Errorf("failed to open orders file: %w", err)
		}
		orders, err := ingest.NewOrderParser(logger).Parse(f, month)
		f.Close()
		if err != nil {
			return err
		}
		for _, o := range orders {
			queue.Push(simulation.OrderArrivalEvent(o))
		}
		logger.Log("INFO", "orders loaded", map[string]interface{}{
			"file": cfg.OrdersFile, "count": len(orders),
		})
	}

	if cfg.BlockagesFile != "" {
		f, err := os.Open(cfg.BlockagesFile)
		if err != nil {
			return fmt.Errorf("failed to open blockages file: %w", err)
		}
		blockages, err := ingest.NewBlockageParser(logger).Parse(f, month)
		f.Close()
		if err != nil {
			return err
		}
		for _, b := range blockages {
			queue.Push(simulation.BlockageEvent(b))
		}
		logger.Log("INFO", "blockages loaded", map[string]interface{}{
			"file": cfg.BlockagesFile, "count": len(blockages),
		})
	}

	if cfg.MaintenanceFile != "" {
		f, err := os.Open(cfg.MaintenanceFile)
		if err != nil {
			return fmt.Errorf("failed to open maintenance file: %w", err)
		}
		windows, err := ingest.NewMaintenanceParser(logger).Parse(f)
		f.Close()
		if err != nil {
			return err
		}
		// Maintenance repeats bimonthly; unroll the recurrences that
		// fall inside the run window.
		count := 0
		for _, m := range windows {
			if endTime.IsZero() {
				if m.End().After(startTime) {
					queue.Push(simulation.MaintenanceEvent(m))
					count++
				}
				continue
			}
			for w := m; w != nil && !w.Start().After(endTime); w = w.CreateNext() {
				if w.End().After(startTime) {
					queue.Push(simulation.MaintenanceEvent(w))
					count++
				}
			}
		}
		logger.Log("INFO", "maintenance windows loaded", map[string]interface{}{
			"file": cfg.MaintenanceFile, "count": count,
		})
	}

	if cfg.IncidentsFile != "" {
		f, err := os.Open(cfg.IncidentsFile)
		if err != nil {
			return fmt.Errorf("failed to open incidents file: %w", err)
		}
		specs, err := ingest.NewIncidentParser(logger).Parse(f)
		f.Close()
		if err != nil {
			return err
		}
		count := 0
		for _, spec := range specs {
			v, err := env.FindVehicleByID(spec.VehicleID)
			if err != nil {
				logger.Log("WARN", "incident references unknown vehicle, skipped", map[string]interface{}{
					"vehicle_id": spec.VehicleID,
				})
				continue
			}
			occurredAt := nextShiftOpening(spec.Shift, startTime)
			inc, err := incident.NewIncident(
				utils.GenerateID("incident"),
				spec.VehicleID,
				spec.Type,
				occurredAt,
				v.Position(),
			)
			if err != nil {
				logger.Log("WARN", "incident rejected, skipped", map[string]interface{}{
					"vehicle_id": spec.VehicleID, "error": err.Error(),
				})
				continue
			}
			queue.Push(simulation.IncidentEvent(inc))
			count++
		}
		logger.Log("INFO", "incidents loaded", map[string]interface{}{
			"file": cfg.IncidentsFile, "count": count,
		})
	}

	return nil
}

// PlanningConfig maps the solver configuration onto the planner tuning.
func PlanningConfig(cfg *config.SolverConfig) planning.Config {
	pc := planning.DefaultConfig()
	if cfg.Alpha > 0 {
		pc.Alpha = cfg.Alpha
	}
	if cfg.Beta > 0 {
		pc.Beta = cfg.Beta
	}
	if cfg.Gamma > 0 {
		pc.Gamma = cfg.Gamma
	}
	if cfg.LatePenaltyPerHour > 0 {
		pc.LatePenaltyPerHour = cfg.LatePenaltyPerHour
	}
	if cfg.UndeliveredPenalty > 0 {
		pc.UndeliveredPenalty = cfg.UndeliveredPenalty
	}
	if cfg.DistanceCostPerUnit > 0 {
		pc.DistanceCostPerUnit = cfg.DistanceCostPerUnit
	}
	if cfg.AllowPartialDelivery != nil {
		pc.AllowPartialDelivery = *cfg.AllowPartialDelivery
	}
	if cfg.Budget > 0 {
		pc.Budget = cfg.Budget
	}
	pc.RandomSeed = cfg.RandomSeed
	return pc
}

// nextShiftOpening returns the first moment at or after t at which the
// shift opens.
func nextShiftOpening(s incident.Shift, t time.Time) time.Time {
	var hour int
	switch s {
	case incident.ShiftT1:
		hour = 0
	case incident.ShiftT2:
		hour = 8
	default:
		hour = 16
	}
	opening := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	if opening.Before(t) {
		opening = opening.Add(24 * time.Hour)
	}
	return opening
}
