package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
)

// Handlers exposes the control surface over the mediator. Every
// request is dispatched as a command or query; handlers never touch
// the orchestrator directly.
type Handlers struct {
	mediator common.Mediator
	logger   common.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(mediator common.Mediator, logger common.Logger) *Handlers {
	return &Handlers{mediator: mediator, logger: logger}
}

// Health is the liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"service": "glpfleet"})
}

// Environment returns the full simulation snapshot.
func (h *Handlers) Environment(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), simulation.GetSnapshotQuery{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp)
}

// Vehicles returns per-vehicle status and plan summaries.
func (h *Handlers) Vehicles(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), simulation.GetSnapshotQuery{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp.(*simulation.Snapshot).Vehicles)
}

// Vehicle returns one vehicle by id.
func (h *Handlers) Vehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	resp, err := h.mediator.Send(r.Context(), simulation.GetVehicleQuery{VehicleID: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp)
}

// Orders returns the pending orders.
func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), simulation.GetSnapshotQuery{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp.(*simulation.Snapshot).Orders)
}

// CreateOrder registers a new order.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID string  `json:"clientId"`
		X        int     `json:"x"`
		Y        int     `json:"y"`
		AmountM3 float64 `json:"amountM3"`
		DueHours float64 `json:"dueHours"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	resp, err := h.mediator.Send(r.Context(), simulation.RegisterOrderCommand{
		ClientID: body.ClientID,
		X:        body.X,
		Y:        body.Y,
		AmountM3: body.AmountM3,
		DueHours: body.DueHours,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp)
}

// Blockages returns the currently active blockages.
func (h *Handlers) Blockages(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), simulation.GetSnapshotQuery{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp.(*simulation.Snapshot).Blockages)
}

// SimulationStatus returns the loop state and counters.
func (h *Handlers) SimulationStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), simulation.GetStatusQuery{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp)
}

// StartSimulation resumes a paused loop.
func (h *Handlers) StartSimulation(w http.ResponseWriter, r *http.Request) {
	if _, err := h.mediator.Send(r.Context(), simulation.ResumeSimulationCommand{}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, nil)
}

// PauseSimulation pauses the loop.
func (h *Handlers) PauseSimulation(w http.ResponseWriter, r *http.Request) {
	if _, err := h.mediator.Send(r.Context(), simulation.PauseSimulationCommand{}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, nil)
}

// GetSpeed reads the current tick pacing.
func (h *Handlers) GetSpeed(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), simulation.GetStatusQuery{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, map[string]int{"speed": resp.(*simulation.StatusResult).SpeedMs})
}

// SetSpeed changes the tick pacing. Body: {"speed": ms}.
func (h *Handlers) SetSpeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Speed int `json:"speed"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	if _, err := h.mediator.Send(r.Context(), simulation.SetSpeedCommand{SpeedMs: body.Speed}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, nil)
}

// ReportBreakdown injects a vehicle breakdown.
// Body: {"vehicleId","reason","estimatedRepairHours"}.
func (h *Handlers) ReportBreakdown(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VehicleID            string  `json:"vehicleId"`
		Reason               string  `json:"reason"`
		EstimatedRepairHours float64 `json:"estimatedRepairHours"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	resp, err := h.mediator.Send(r.Context(), simulation.ReportBreakdownCommand{
		VehicleID:            body.VehicleID,
		EstimatedRepairHours: body.EstimatedRepairHours,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, resp)
}

// RepairVehicle force-resolves a vehicle's incidents.
// Body: {"vehicleId"}.
func (h *Handlers) RepairVehicle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VehicleID string `json:"vehicleId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	if _, err := h.mediator.Send(r.Context(), simulation.RepairVehicleCommand{VehicleID: body.VehicleID}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, nil)
}
