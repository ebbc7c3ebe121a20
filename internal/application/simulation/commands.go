package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// Control commands. Each is dispatched through the mediator to its
// handler, which talks to the orchestrator.

type PauseSimulationCommand struct{}

type ResumeSimulationCommand struct{}

// SetSpeedCommand changes the wall-clock pause between ticks, in
// milliseconds.
type SetSpeedCommand struct {
	SpeedMs int
}

// ReportBreakdownCommand declares a vehicle broken down. The incident
// class is inferred from the estimated repair time: up to two hours is
// a minor roadside stop, up to a day is a workshop repair, anything
// longer takes the vehicle off the grid for days.
type ReportBreakdownCommand struct {
	VehicleID            string
	EstimatedRepairHours float64
}

// RepairVehicleCommand force-resolves every unresolved incident of a
// vehicle.
type RepairVehicleCommand struct {
	VehicleID string
}

// RegisterOrderCommand injects a new order into the world.
type RegisterOrderCommand struct {
	ClientID    string
	X           int
	Y           int
	AmountM3    float64
	DueHours    float64
}

// BreakdownResult reports the incident created for a breakdown.
type BreakdownResult struct {
	IncidentID  string `json:"incident_id"`
	Type        string `json:"type"`
	AvailableAt string `json:"available_at"`
}

// OrderResult reports the id of a newly registered order.
type OrderResult struct {
	OrderID string `json:"order_id"`
	DueTime string `json:"due_time"`
}

// PauseHandler handles PauseSimulationCommand.
type PauseHandler struct {
	Orchestrator *Orchestrator
}

func (h *PauseHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(PauseSimulationCommand); !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	return nil, h.Orchestrator.Pause()
}

// ResumeHandler handles ResumeSimulationCommand.
type ResumeHandler struct {
	Orchestrator *Orchestrator
}

func (h *ResumeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(ResumeSimulationCommand); !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	return nil, h.Orchestrator.Resume()
}

// SetSpeedHandler handles SetSpeedCommand.
type SetSpeedHandler struct {
	Orchestrator *Orchestrator
}

func (h *SetSpeedHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(SetSpeedCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	return nil, h.Orchestrator.SetSpeed(cmd.SpeedMs)
}

// ReportBreakdownHandler handles ReportBreakdownCommand.
type ReportBreakdownHandler struct {
	Orchestrator *Orchestrator
}

func (h *ReportBreakdownHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(ReportBreakdownCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	if cmd.EstimatedRepairHours <= 0 {
		return nil, shared.NewValidationError("estimated_repair_hours", "must be positive")
	}

	typ := classifyBreakdown(cmd.EstimatedRepairHours)

	var result *BreakdownResult
	err := h.Orchestrator.WithEnvironment(func(env *world.Environment) error {
		v, err := env.FindVehicleByID(cmd.VehicleID)
		if err != nil {
			return err
		}
		if len(env.UnresolvedIncidentsFor(v.ID())) > 0 {
			return shared.NewStateConflictError(fmt.Sprintf("vehicle %s already has an unresolved incident", v.ID()))
		}

		inc, err := incident.NewIncident(utils.GenerateID("incident"), v.ID(), typ, env.CurrentTime(), v.Position())
		if err != nil {
			return err
		}
		if err := env.RegisterIncident(inc); err != nil {
			return err
		}
		result = &BreakdownResult{
			IncidentID:  inc.ID(),
			Type:        string(inc.Type()),
			AvailableAt: shared.FormatTime(inc.AvailableAt()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.Orchestrator.abortPlanUnderLock(cmd.VehicleID)
	return result, nil
}

// classifyBreakdown maps an estimated repair time to an incident type.
func classifyBreakdown(hours float64) incident.IncidentType {
	switch {
	case hours <= 2:
		return incident.TI1
	case hours <= 24:
		return incident.TI2
	default:
		return incident.TI3
	}
}

// RepairVehicleHandler handles RepairVehicleCommand.
type RepairVehicleHandler struct {
	Orchestrator *Orchestrator
}

func (h *RepairVehicleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(RepairVehicleCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}

	err := h.Orchestrator.WithEnvironment(func(env *world.Environment) error {
		if _, err := env.FindVehicleByID(cmd.VehicleID); err != nil {
			return err
		}
		unresolved := env.UnresolvedIncidentsFor(cmd.VehicleID)
		if len(unresolved) == 0 {
			return shared.NewStateConflictError(fmt.Sprintf("vehicle %s has no unresolved incident", cmd.VehicleID))
		}
		for _, inc := range unresolved {
			inc.Resolve(env.CurrentTime())
		}
		// The repaired vehicle goes back into service right away, not
		// at the next time advance.
		return env.RefreshVehicleStatus(cmd.VehicleID)
	})
	return nil, err
}

// RegisterOrderHandler handles RegisterOrderCommand.
type RegisterOrderHandler struct {
	Orchestrator *Orchestrator
}

func (h *RegisterOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(RegisterOrderCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}

	var result *OrderResult
	err := h.Orchestrator.WithEnvironment(func(env *world.Environment) error {
		pos, err := shared.NewPosition(cmd.X, cmd.Y)
		if err != nil {
			return err
		}
		now := env.CurrentTime()
		due := now.Add(time.Duration(cmd.DueHours * float64(time.Hour)))
		order, err := delivery.NewOrder(utils.GenerateID("order"), cmd.ClientID, now, due, cmd.AmountM3, pos)
		if err != nil {
			return err
		}
		if err := env.AddOrder(order); err != nil {
			return err
		}
		result = &OrderResult{OrderID: order.ID(), DueTime: shared.FormatTime(order.DueTime())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Queries

type GetSnapshotQuery struct{}

type GetVehicleQuery struct {
	VehicleID string
}

type GetStatusQuery struct{}

// StatusResult is the health view of the daemon.
type StatusResult struct {
	State          string `json:"state"`
	SimulationTime string `json:"simulation_time"`
	Tick           uint64 `json:"tick"`
	SpeedMs        int    `json:"speed_ms"`
	PendingOrders  int    `json:"pending_orders"`
}

// GetSnapshotHandler handles GetSnapshotQuery.
type GetSnapshotHandler struct {
	Orchestrator *Orchestrator
}

func (h *GetSnapshotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(GetSnapshotQuery); !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	return h.Orchestrator.Snapshot(), nil
}

// GetVehicleHandler handles GetVehicleQuery.
type GetVehicleHandler struct {
	Orchestrator *Orchestrator
}

func (h *GetVehicleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(GetVehicleQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	snap := h.Orchestrator.Snapshot()
	for i := range snap.Vehicles {
		if snap.Vehicles[i].ID == q.VehicleID {
			return &snap.Vehicles[i], nil
		}
	}
	return nil, shared.NewNotFoundError("vehicle", q.VehicleID)
}

// GetStatusHandler handles GetStatusQuery.
type GetStatusHandler struct {
	Orchestrator *Orchestrator
}

func (h *GetStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(GetStatusQuery); !ok {
		return nil, fmt.Errorf("unexpected request type %T", request)
	}
	snap := h.Orchestrator.Snapshot()
	return &StatusResult{
		State:          snap.State,
		SimulationTime: snap.SimulationTime,
		Tick:           snap.Tick,
		SpeedMs:        snap.SpeedMs,
		PendingOrders:  snap.Stats.PendingOrders,
	}, nil
}

// RegisterHandlers wires every command and query into the mediator.
func RegisterHandlers(m common.Mediator, o *Orchestrator) error {
	registrations := []struct {
		register func() error
	}{
		{func() error { return common.RegisterHandler[PauseSimulationCommand](m, &PauseHandler{Orchestrator: o}) }},
		{func() error { return common.RegisterHandler[ResumeSimulationCommand](m, &ResumeHandler{Orchestrator: o}) }},
		{func() error { return common.RegisterHandler[SetSpeedCommand](m, &SetSpeedHandler{Orchestrator: o}) }},
		{func() error {
			return common.RegisterHandler[ReportBreakdownCommand](m, &ReportBreakdownHandler{Orchestrator: o})
		}},
		{func() error { return common.RegisterHandler[RepairVehicleCommand](m, &RepairVehicleHandler{Orchestrator: o}) }},
		{func() error { return common.RegisterHandler[RegisterOrderCommand](m, &RegisterOrderHandler{Orchestrator: o}) }},
		{func() error { return common.RegisterHandler[GetSnapshotQuery](m, &GetSnapshotHandler{Orchestrator: o}) }},
		{func() error { return common.RegisterHandler[GetVehicleQuery](m, &GetVehicleHandler{Orchestrator: o}) }},
		{func() error { return common.RegisterHandler[GetStatusQuery](m, &GetStatusHandler{Orchestrator: o}) }},
	}
	for _, r := range registrations {
		if err := r.register(); err != nil {
			return err
		}
	}
	return nil
}
