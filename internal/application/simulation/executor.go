package simulation

import (
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/plan"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// DeliverySink receives completed delivery records for telemetry.
// Persistence failures are logged, never propagated into the tick.
type DeliverySink interface {
	RecordDelivery(record *delivery.Record) error
}

// Executor drives vehicle plans forward against the live environment.
// Each tick it starts due actions, interpolates positions of driving
// vehicles along their paths, and applies the effects of actions whose
// window has elapsed. A failed runtime precondition aborts the rest of
// the plan and requests a replan.
type Executor struct {
	sink   DeliverySink
	logger common.Logger
}

// NewExecutor creates an executor. sink may be nil.
func NewExecutor(sink DeliverySink, logger common.Logger) *Executor {
	return &Executor{sink: sink, logger: logger}
}

// TickResult summarises one execution sweep.
type TickResult struct {
	NeedsReplan    bool
	CompletedPlans []string
	DeliveredM3    float64
}

// ExecuteTick advances every plan to the environment's current time.
func (e *Executor) ExecuteTick(env *world.Environment, plans map[string]*plan.Plan) TickResult {
	now := env.CurrentTime()
	result := TickResult{}

	for _, p := range plans {
		v, err := env.FindVehicleByID(p.VehicleID())
		if err != nil {
			e.logger.Log("ERROR", "plan references unknown vehicle", map[string]interface{}{
				"vehicle_id": p.VehicleID(),
			})
			continue
		}

		// Incidents and maintenance pull the vehicle out of service
		// between ticks; its plan is dead.
		if !v.Assignable() && v.Status() != fleet.StatusServing &&
			v.Status() != fleet.StatusReloading && v.Status() != fleet.StatusRefueling {
			if !p.Finished() {
				p.AbortRemaining()
				result.NeedsReplan = true
			}
			continue
		}

		e.advancePlan(env, v, p, now, &result)

		if p.Finished() {
			result.CompletedPlans = append(result.CompletedPlans, p.VehicleID())
			if v.Status() == fleet.StatusDriving || v.Status() == fleet.StatusServing ||
				v.Status() == fleet.StatusReloading || v.Status() == fleet.StatusRefueling {
				v.SetStatus(fleet.StatusIdle)
			}
		}
	}

	return result
}

// advancePlan completes elapsed actions and starts due ones until the
// plan catches up with now or blocks on an in-flight action.
func (e *Executor) advancePlan(env *world.Environment, v *fleet.Vehicle, p *plan.Plan, now time.Time, result *TickResult) {
	for {
		action := p.Current()
		if action == nil {
			return
		}

		switch action.Status() {
		case plan.ActionExecuting:
			if now.Before(action.ExpectedEnd()) {
				// Still in flight. Driving vehicles track their path.
				if action.Type() == plan.ActionDrive {
					v.MoveTo(action.Path().PositionAt(now))
				}
				return
			}
			if err := e.completeAction(env, v, action, result); err != nil {
				e.logger.Log("WARN", "action failed, aborting plan", map[string]interface{}{
					"vehicle_id": v.ID(),
					"action":     action.String(),
					"error":      err.Error(),
				})
				p.AbortRemaining()
				result.NeedsReplan = true
				return
			}
			p.Advance()

		case plan.ActionScheduled:
			if !action.Due(now) {
				return
			}
			if err := e.startAction(v, action); err != nil {
				e.logger.Log("WARN", "action precondition failed, aborting plan", map[string]interface{}{
					"vehicle_id": v.ID(),
					"action":     action.String(),
					"error":      err.Error(),
				})
				p.AbortRemaining()
				result.NeedsReplan = true
				return
			}

		default:
			// Aborted or stale completed action; skip past it.
			p.Advance()
		}
	}
}

// startAction checks preconditions and moves the vehicle into the
// action's status.
func (e *Executor) startAction(v *fleet.Vehicle, action *plan.Action) error {
	switch action.Type() {
	case plan.ActionDrive:
		if !v.CanDrive(action.Distance()) {
			action.Abort()
			return shared.NewInsufficientFuelError(v.FuelNeededGal(action.Distance()), v.FuelGal())
		}
		if err := action.Start(); err != nil {
			return err
		}
		return v.SetStatus(fleet.StatusDriving)

	case plan.ActionServe:
		if err := action.Start(); err != nil {
			return err
		}
		return v.SetStatus(fleet.StatusServing)

	case plan.ActionReload:
		if err := action.Start(); err != nil {
			return err
		}
		return v.SetStatus(fleet.StatusReloading)

	case plan.ActionRefuel:
		if err := action.Start(); err != nil {
			return err
		}
		return v.SetStatus(fleet.StatusRefueling)

	default: // IDLE
		if err := action.Start(); err != nil {
			return err
		}
		return v.SetStatus(fleet.StatusIdle)
	}
}

// completeAction applies the action's effects to the world.
func (e *Executor) completeAction(env *world.Environment, v *fleet.Vehicle, action *plan.Action, result *TickResult) error {
	switch action.Type() {
	case plan.ActionDrive:
		if err := v.ConsumeFuelFor(action.Distance()); err != nil {
			action.Abort()
			return err
		}
		v.MoveTo(action.Path().Destination())

	case plan.ActionServe:
		order, err := env.FindOrderByID(action.OrderID())
		if err != nil {
			action.Abort()
			return err
		}
		// Cap the discharge by what the order still needs so a partial
		// remainder never drains the rest of the tank.
		amount := utils.MinF(action.AmountM3(), utils.MinF(v.GLPM3(), order.RemainingM3()))
		delivered := v.DischargeGLP(amount)
		recorded, err := order.RecordDelivery(v.ID(), delivered, action.ExpectedEnd())
		if err != nil {
			action.Abort()
			return err
		}
		result.DeliveredM3 += recorded
		e.persistDelivery(order, v)

	case plan.ActionReload:
		depot, err := env.FindDepotByID(action.DepotID())
		if err != nil {
			action.Abort()
			return err
		}
		dispensed := depot.Dispense(action.AmountM3())
		v.LoadGLP(dispensed)

	case plan.ActionRefuel:
		v.RefuelToFull()
	}

	return action.Complete()
}

// persistDelivery forwards the newest delivery record to the sink.
func (e *Executor) persistDelivery(order *delivery.Order, v *fleet.Vehicle) {
	if e.sink == nil {
		return
	}
	records := order.Records()
	if len(records) == 0 {
		return
	}
	latest := records[len(records)-1]
	if latest.VehicleID() != v.ID() {
		return
	}
	if err := e.sink.RecordDelivery(latest); err != nil {
		e.logger.Log("ERROR", "failed to persist delivery record", map[string]interface{}{
			"order_id":   latest.OrderID(),
			"vehicle_id": latest.VehicleID(),
			"error":      err.Error(),
		})
	}
}
