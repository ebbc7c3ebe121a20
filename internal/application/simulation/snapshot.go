package simulation

import (
	"sort"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/plan"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

// Snapshot is a read-only view of the simulation at one instant. It is
// what the HTTP API and the websocket feed serialise; it never exposes
// live entities.
type Snapshot struct {
	SimulationTime string         `json:"simulation_time"`
	Tick           uint64         `json:"tick"`
	State          string         `json:"state"`
	SpeedMs        int            `json:"speed_ms"`
	Vehicles       []VehicleView  `json:"vehicles"`
	Orders         []OrderView    `json:"orders"`
	Depots         []DepotView    `json:"depots"`
	Blockages      []BlockageView `json:"blockages"`
	Incidents      []IncidentView `json:"incidents"`
	Stats          SnapshotStats  `json:"stats"`
}

// VehicleView is the wire shape of one vehicle.
type VehicleView struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	X           int          `json:"x"`
	Y           int          `json:"y"`
	GLPM3       float64      `json:"glp_m3"`
	CapacityM3  float64      `json:"capacity_m3"`
	FuelGal     float64      `json:"fuel_gal"`
	FuelCapGal  float64      `json:"fuel_capacity_gal"`
	Status      string       `json:"status"`
	Plan        *PlanView    `json:"plan,omitempty"`
}

// PlanView is the wire shape of a vehicle's current plan.
type PlanView struct {
	Actions       int     `json:"actions"`
	CurrentAction string  `json:"current_action,omitempty"`
	DistanceTotal int     `json:"distance_total"`
	GLPPromisedM3 float64 `json:"glp_promised_m3"`
	EndsAt        string  `json:"ends_at"`
}

// OrderView is the wire shape of one order.
type OrderView struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	RequestedM3 float64 `json:"requested_m3"`
	RemainingM3 float64 `json:"remaining_m3"`
	DueTime     string  `json:"due_time"`
	Overdue     bool    `json:"overdue"`
	Delivered   bool    `json:"delivered"`
}

// DepotView is the wire shape of one depot.
type DepotView struct {
	ID         string  `json:"id"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	CapacityM3 float64 `json:"capacity_m3"`
	CurrentM3  float64 `json:"current_m3"`
	IsMain     bool    `json:"is_main"`
}

// BlockageView is the wire shape of one active blockage.
type BlockageView struct {
	ID    string     `json:"id"`
	Start string     `json:"start"`
	End   string     `json:"end"`
	Cells [][2]int   `json:"cells"`
}

// IncidentView is the wire shape of one incident.
type IncidentView struct {
	ID          string `json:"id"`
	VehicleID   string `json:"vehicle_id"`
	Type        string `json:"type"`
	OccurredAt  string `json:"occurred_at"`
	AvailableAt string `json:"available_at"`
	Resolved    bool   `json:"resolved"`
}

// SnapshotStats aggregates fleet-level counters.
type SnapshotStats struct {
	PendingOrders   int     `json:"pending_orders"`
	OverdueOrders   int     `json:"overdue_orders"`
	ActiveVehicles  int     `json:"active_vehicles"`
	TotalDistance   int     `json:"total_distance"`
	DeliveredM3     float64 `json:"delivered_m3"`
	ReplanCount     uint64  `json:"replan_count"`
}

// buildSnapshot materialises the view. Caller holds the orchestrator
// lock.
func buildSnapshot(env *world.Environment, plans map[string]*plan.Plan, tick uint64, state string, speedMs int, stats SnapshotStats) *Snapshot {
	now := env.CurrentTime()
	snap := &Snapshot{
		SimulationTime: shared.FormatTime(now),
		Tick:           tick,
		State:          state,
		SpeedMs:        speedMs,
		Stats:          stats,
	}

	for _, v := range env.Vehicles() {
		view := VehicleView{
			ID:         v.ID(),
			Type:       string(v.Type()),
			X:          v.Position().X,
			Y:          v.Position().Y,
			GLPM3:      v.GLPM3(),
			CapacityM3: v.CapacityM3(),
			FuelGal:    v.FuelGal(),
			FuelCapGal: v.FuelCapacityGal(),
			Status:     string(v.Status()),
		}
		if p, ok := plans[v.ID()]; ok && !p.Finished() {
			pv := &PlanView{
				Actions:       len(p.Actions()),
				DistanceTotal: p.TotalDistance(),
				GLPPromisedM3: p.TotalGLPDeliveredM3(),
				EndsAt:        p.EndTime().Format(shared.DateTimeFormat),
			}
			if cur := p.Current(); cur != nil {
				pv.CurrentAction = cur.String()
			}
			view.Plan = pv
		}
		snap.Vehicles = append(snap.Vehicles, view)
	}

	for _, o := range env.PendingOrders() {
		snap.Orders = append(snap.Orders, OrderView{
			ID:          o.ID(),
			ClientID:    o.ClientID(),
			X:           o.Position().X,
			Y:           o.Position().Y,
			RequestedM3: o.RequestedM3(),
			RemainingM3: o.RemainingM3(),
			DueTime:     o.DueTime().Format(shared.DateTimeFormat),
			Overdue:     o.Overdue(now),
			Delivered:   o.Delivered(),
		})
	}

	for _, d := range env.Depots() {
		snap.Depots = append(snap.Depots, DepotView{
			ID:         d.ID(),
			X:          d.Position().X,
			Y:          d.Position().Y,
			CapacityM3: d.CapacityM3(),
			CurrentM3:  d.CurrentGLPM3(),
			IsMain:     d.IsMain(),
		})
	}

	for _, b := range env.ActiveBlockagesAt(now) {
		view := BlockageView{
			ID:    b.ID(),
			Start: b.StartTime().Format(shared.DateTimeFormat),
			End:   b.EndTime().Format(shared.DateTimeFormat),
		}
		for cell := range b.BlockedCells() {
			view.Cells = append(view.Cells, [2]int{cell.X, cell.Y})
		}
		sort.Slice(view.Cells, func(i, j int) bool {
			if view.Cells[i][0] != view.Cells[j][0] {
				return view.Cells[i][0] < view.Cells[j][0]
			}
			return view.Cells[i][1] < view.Cells[j][1]
		})
		snap.Blockages = append(snap.Blockages, view)
	}

	for _, inc := range env.Incidents() {
		snap.Incidents = append(snap.Incidents, IncidentView{
			ID:          inc.ID(),
			VehicleID:   inc.VehicleID(),
			Type:        string(inc.Type()),
			OccurredAt:  inc.OccurredAt().Format(shared.DateTimeFormat),
			AvailableAt: inc.AvailableAt().Format(shared.DateTimeFormat),
			Resolved:    inc.ResolvedAt(now),
		})
	}

	return snap
}
