package plan

import (
	"fmt"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// ActionType tags the variant of a plan action.
type ActionType string

const (
	ActionDrive  ActionType = "DRIVE"
	ActionServe  ActionType = "SERVE"
	ActionRefuel ActionType = "REFUEL"
	ActionReload ActionType = "RELOAD"
	ActionIdle   ActionType = "IDLE"
)

// Service durations, in minutes.
const (
	ServeDurationMinutes  = 15
	RefuelDurationMinutes = 1
	ReloadDurationMinutes = 15
)

// ActionStatus tracks the per-action execution state machine:
// scheduled -> executing -> completed, or scheduled -> aborted when a
// precondition fails at runtime.
type ActionStatus string

const (
	ActionScheduled ActionStatus = "SCHEDULED"
	ActionExecuting ActionStatus = "EXECUTING"
	ActionCompleted ActionStatus = "COMPLETED"
	ActionAborted   ActionStatus = "ABORTED"
)

// Action is one typed step of a vehicle plan. Payload fields are set
// per variant: Path for DRIVE, OrderID+AmountM3 for SERVE,
// DepotID+AmountM3 for RELOAD. Orders and depots are referenced by id
// only and resolved against the live environment at execution time.
type Action struct {
	actionType    ActionType
	path          *routing.Path
	orderID       string
	depotID       string
	amountM3      float64
	expectedStart time.Time
	expectedEnd   time.Time
	status        ActionStatus
}

// NewDriveAction creates a DRIVE over the given path.
func NewDriveAction(path *routing.Path, start, end time.Time) *Action {
	return &Action{
		actionType:    ActionDrive,
		path:          path,
		expectedStart: start,
		expectedEnd:   end,
		status:        ActionScheduled,
	}
}

// NewServeAction creates a SERVE delivering amountM3 into an order.
func NewServeAction(orderID string, amountM3 float64, start time.Time) *Action {
	return &Action{
		actionType:    ActionServe,
		orderID:       orderID,
		amountM3:      amountM3,
		expectedStart: start,
		expectedEnd:   start.Add(ServeDurationMinutes * time.Minute),
		status:        ActionScheduled,
	}
}

// NewRefuelAction creates a REFUEL (fill to capacity at a depot).
func NewRefuelAction(start time.Time) *Action {
	return &Action{
		actionType:    ActionRefuel,
		expectedStart: start,
		expectedEnd:   start.Add(RefuelDurationMinutes * time.Minute),
		status:        ActionScheduled,
	}
}

// NewReloadAction creates a RELOAD of amountM3 from a depot.
func NewReloadAction(depotID string, amountM3 float64, start time.Time) *Action {
	return &Action{
		actionType:    ActionReload,
		depotID:       depotID,
		amountM3:      amountM3,
		expectedStart: start,
		expectedEnd:   start.Add(ReloadDurationMinutes * time.Minute),
		status:        ActionScheduled,
	}
}

// NewIdleAction creates an IDLE filler until end.
func NewIdleAction(start, end time.Time) *Action {
	return &Action{
		actionType:    ActionIdle,
		expectedStart: start,
		expectedEnd:   end,
		status:        ActionScheduled,
	}
}

func (a *Action) Type() ActionType {
	return a.actionType
}

func (a *Action) Path() *routing.Path {
	return a.path
}

func (a *Action) OrderID() string {
	return a.orderID
}

func (a *Action) DepotID() string {
	return a.depotID
}

func (a *Action) AmountM3() float64 {
	return a.amountM3
}

func (a *Action) ExpectedStart() time.Time {
	return a.expectedStart
}

func (a *Action) ExpectedEnd() time.Time {
	return a.expectedEnd
}

func (a *Action) Status() ActionStatus {
	return a.status
}

// Due reports whether the action should start at time t.
func (a *Action) Due(t time.Time) bool {
	return a.status == ActionScheduled && !a.expectedStart.After(t)
}

// Start transitions scheduled -> executing.
func (a *Action) Start() error {
	if a.status != ActionScheduled {
		return fmt.Errorf("action %s cannot start from status %s", a.actionType, a.status)
	}
	a.status = ActionExecuting
	return nil
}

// Complete transitions executing -> completed.
func (a *Action) Complete() error {
	if a.status != ActionExecuting {
		return fmt.Errorf("action %s cannot complete from status %s", a.actionType, a.status)
	}
	a.status = ActionCompleted
	return nil
}

// Abort marks the action failed. Allowed from scheduled or executing.
func (a *Action) Abort() {
	if a.status == ActionScheduled || a.status == ActionExecuting {
		a.status = ActionAborted
	}
}

// Distance returns the grid distance covered by the action (zero for
// non-drive actions).
func (a *Action) Distance() int {
	if a.actionType != ActionDrive || a.path == nil {
		return 0
	}
	return a.path.Distance()
}

func (a *Action) String() string {
	switch a.actionType {
	case ActionDrive:
		return fmt.Sprintf("DRIVE(%s->%s, d=%d)", a.path.Origin(), a.path.Destination(), a.Distance())
	case ActionServe:
		return fmt.Sprintf("SERVE(%s, %.1fm3)", a.orderID, a.amountM3)
	case ActionReload:
		return fmt.Sprintf("RELOAD(%s, %.1fm3)", a.depotID, a.amountM3)
	default:
		return string(a.actionType)
	}
}

// EndsAt reports the cell where the action leaves the vehicle, given
// the cell it started at.
func (a *Action) EndsAt(from shared.Position) shared.Position {
	if a.actionType == ActionDrive && a.path != nil {
		return a.path.Destination()
	}
	return from
}
