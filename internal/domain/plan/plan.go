package plan

import (
	"fmt"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Plan is the ordered action sequence assigned to one vehicle by a
// replanning round. The executor consumes it front to back; a wholesale
// replan replaces the plan entirely.
//
// Sequence invariant: action_i.end <= action_{i+1}.start, and a DRIVE's
// path endpoints match the surrounding stops.
type Plan struct {
	vehicleID string
	actions   []*Action
	cursor    int
	createdAt time.Time
}

// NewPlan validates the action sequence and wraps it.
func NewPlan(vehicleID string, actions []*Action, createdAt time.Time) (*Plan, error) {
	if vehicleID == "" {
		return nil, shared.NewValidationError("vehicle_id", "cannot be empty")
	}
	for i := 1; i < len(actions); i++ {
		if actions[i].ExpectedStart().Before(actions[i-1].ExpectedEnd()) {
			return nil, shared.NewValidationError("actions",
				fmt.Sprintf("action %d starts before action %d ends", i, i-1))
		}
	}
	return &Plan{
		vehicleID: vehicleID,
		actions:   actions,
		createdAt: createdAt,
	}, nil
}

func (p *Plan) VehicleID() string {
	return p.vehicleID
}

func (p *Plan) Actions() []*Action {
	return p.actions
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

// Current returns the action at the cursor, or nil when the plan is
// exhausted.
func (p *Plan) Current() *Action {
	if p.cursor >= len(p.actions) {
		return nil
	}
	return p.actions[p.cursor]
}

// Advance moves the cursor past a completed action.
func (p *Plan) Advance() {
	if p.cursor < len(p.actions) {
		p.cursor++
	}
}

// Finished reports whether every action has been consumed.
func (p *Plan) Finished() bool {
	return p.cursor >= len(p.actions)
}

// AbortRemaining aborts the current and all pending actions. Called
// when a precondition fails at runtime; the orchestrator then flags a
// replan.
func (p *Plan) AbortRemaining() {
	for i := p.cursor; i < len(p.actions); i++ {
		p.actions[i].Abort()
	}
	p.cursor = len(p.actions)
}

// Derived aggregates

// TotalDistance returns the grid distance covered by all drive actions.
func (p *Plan) TotalDistance() int {
	total := 0
	for _, a := range p.actions {
		total += a.Distance()
	}
	return total
}

// TotalGLPDeliveredM3 returns the volume promised across serve actions.
func (p *Plan) TotalGLPDeliveredM3() float64 {
	total := 0.0
	for _, a := range p.actions {
		if a.Type() == ActionServe {
			total += a.AmountM3()
		}
	}
	return total
}

// ServedOrders returns the distinct order ids the plan serves.
func (p *Plan) ServedOrders() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range p.actions {
		if a.Type() == ActionServe && !seen[a.OrderID()] {
			seen[a.OrderID()] = true
			ids = append(ids, a.OrderID())
		}
	}
	return ids
}

// EndTime returns when the last action is expected to finish, or
// createdAt for an empty plan.
func (p *Plan) EndTime() time.Time {
	if len(p.actions) == 0 {
		return p.createdAt
	}
	return p.actions[len(p.actions)-1].ExpectedEnd()
}

func (p *Plan) String() string {
	return fmt.Sprintf("Plan(vehicle=%s, actions=%d, distance=%d, glp=%.1fm3)",
		p.vehicleID, len(p.actions), p.TotalDistance(), p.TotalGLPDeliveredM3())
}
