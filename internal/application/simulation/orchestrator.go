package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/plan"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

// State is the orchestrator lifecycle state.
type State string

const (
	StateCreated  State = "CREATED"
	StateRunning  State = "RUNNING"
	StatePaused   State = "PAUSED"
	StateFinished State = "FINISHED"
)

// Tick pacing bounds, wall-clock milliseconds between ticks.
const (
	MinSpeedMs = 50
	MaxSpeedMs = 10_000
)

// MetricsRecorder receives simulation counters. The prometheus adapter
// implements it; a nil recorder disables metrics.
type MetricsRecorder interface {
	RecordTick(simTime time.Time, wallDuration time.Duration)
	RecordReplan(stats planning.SolveStats)
	RecordDelivery(amountM3 float64)
	SetPendingOrders(count int)
	SetVehicleStatus(status string, count int)
}

// SnapshotPublisher receives a fresh snapshot after every tick. The
// websocket feed implements it.
type SnapshotPublisher interface {
	Publish(snap *Snapshot)
}

// ReplanSink persists replanning statistics for telemetry.
type ReplanSink interface {
	RecordReplan(stats planning.SolveStats) error
}

// Options configures an orchestrator.
type Options struct {
	// TickStep is how much simulated time one tick covers.
	TickStep time.Duration

	// SpeedMs is the wall-clock pause between ticks, in milliseconds.
	SpeedMs int

	// ReplanInterval is the minimum simulated time between
	// change-triggered replans.
	ReplanInterval time.Duration

	// TicksPerReplan forces a replan every n ticks regardless of
	// change flags.
	TicksPerReplan int

	// EndTime stops the run when the simulated clock reaches it. Zero
	// runs until cancelled.
	EndTime time.Time
}

// Orchestrator owns the simulation loop. Every tick it drains due
// events into the environment, executes vehicle plans, decides whether
// to replan, then advances the simulated clock. All external reads and
// commands go through its lock, so a snapshot never observes a partial
// tick.
type Orchestrator struct {
	mu sync.RWMutex

	env      *world.Environment
	queue    *EventQueue
	planner  *planning.Service
	executor *Executor
	clock    shared.Clock
	logger   common.Logger

	recorder  MetricsRecorder
	publisher SnapshotPublisher
	replans   ReplanSink

	opts  Options
	state State

	plans          map[string]*plan.Plan
	needsReplan    bool
	forceReplan    bool
	endRequested   bool
	lastPlanTime   time.Time
	tick           uint64
	ticksSincePlan int
	replanCount    uint64
	deliveredM3    float64
	speedMs        int

	resume chan struct{}
}

// NewOrchestrator wires an orchestrator. recorder, publisher and
// replans may be nil.
func NewOrchestrator(
	env *world.Environment,
	queue *EventQueue,
	planner *planning.Service,
	executor *Executor,
	clock shared.Clock,
	opts Options,
	logger common.Logger,
) *Orchestrator {
	if opts.TickStep <= 0 {
		opts.TickStep = 5 * time.Minute
	}
	if opts.SpeedMs == 0 {
		opts.SpeedMs = 1000
	}
	if opts.ReplanInterval <= 0 {
		opts.ReplanInterval = 15 * time.Minute
	}
	if opts.TicksPerReplan <= 0 {
		opts.TicksPerReplan = 12
	}
	return &Orchestrator{
		env:         env,
		queue:       queue,
		planner:     planner,
		executor:    executor,
		clock:       clock,
		logger:      logger,
		opts:        opts,
		state:       StateCreated,
		plans:       map[string]*plan.Plan{},
		needsReplan: true,
		speedMs:     opts.SpeedMs,
		resume:      make(chan struct{}, 1),
	}
}

// SetMetricsRecorder attaches a metrics sink.
func (o *Orchestrator) SetMetricsRecorder(r MetricsRecorder) { o.recorder = r }

// SetSnapshotPublisher attaches a snapshot sink.
func (o *Orchestrator) SetSnapshotPublisher(p SnapshotPublisher) { o.publisher = p }

// SetReplanSink attaches a replan telemetry sink.
func (o *Orchestrator) SetReplanSink(s ReplanSink) { o.replans = s }

// Run executes the tick loop until the context is cancelled or the
// configured end time is reached.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateCreated {
		o.mu.Unlock()
		return shared.NewStateConflictError(fmt.Sprintf("cannot start simulation from state %s", o.state))
	}
	o.state = StateRunning
	o.mu.Unlock()

	o.logger.Log("INFO", "simulation started", map[string]interface{}{
		"tick_step": o.opts.TickStep.String(),
		"speed_ms":  o.speedMs,
	})

	for {
		select {
		case <-ctx.Done():
			o.finish("cancelled")
			return ctx.Err()
		default:
		}

		if o.paused() {
			select {
			case <-ctx.Done():
				o.finish("cancelled")
				return ctx.Err()
			case <-o.resume:
			}
			continue
		}

		wallStart := o.clock.Now()
		done, err := o.stepOnce(ctx)
		if err != nil {
			o.finish("error")
			return err
		}
		if done {
			o.finish("end time reached")
			return nil
		}

		o.pace(wallStart)
	}
}

// stepOnce runs one full tick under the write lock: drain events,
// execute plans, decide replanning, advance the clock.
func (o *Orchestrator) stepOnce(ctx context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	wallStart := o.clock.Now()
	now := o.env.CurrentTime()

	o.applyDueEvents(now)

	result := o.executor.ExecuteTick(o.env, o.plans)
	o.deliveredM3 += result.DeliveredM3
	if result.DeliveredM3 > 0 && o.recorder != nil {
		o.recorder.RecordDelivery(result.DeliveredM3)
	}
	for _, vehicleID := range result.CompletedPlans {
		delete(o.plans, vehicleID)
	}
	if result.NeedsReplan {
		o.needsReplan = true
	}

	o.tick++
	o.ticksSincePlan++

	o.maybeReplan(ctx, now)

	if err := o.env.AdvanceTime(o.opts.TickStep); err != nil {
		return false, err
	}

	if o.endRequested {
		return true, nil
	}
	if !o.opts.EndTime.IsZero() && o.env.CurrentTime().After(o.opts.EndTime) {
		return true, nil
	}

	o.publishTick(o.env.CurrentTime(), o.clock.Now().Sub(wallStart))
	return false, nil
}

// maybeReplan fires a replan on any trigger: the world changed and
// enough simulated time passed, the tick counter ran out, or a plan
// checkpoint was drained. When a trigger fires but no pending order or
// assignable vehicle exists, the flags and counter still reset so
// replanning never wedges.
func (o *Orchestrator) maybeReplan(ctx context.Context, now time.Time) {
	timeBased := o.needsReplan && now.Sub(o.lastPlanTime) > o.opts.ReplanInterval
	tickBased := o.ticksSincePlan >= o.opts.TicksPerReplan
	if !timeBased && !tickBased && !o.forceReplan {
		return
	}

	o.needsReplan = false
	o.forceReplan = false
	o.ticksSincePlan = 0

	if len(o.env.PendingOrders()) == 0 || len(o.env.AvailableVehicles()) == 0 {
		return
	}

	if err := o.replan(ctx); err != nil {
		o.logger.Log("ERROR", "replanning failed, keeping previous plans", map[string]interface{}{
			"error": err.Error(),
		})
		o.needsReplan = true
		return
	}
	o.lastPlanTime = now
}

// applyDueEvents pops and applies every event due by now. Any applied
// event flags a replan.
func (o *Orchestrator) applyDueEvents(now time.Time) {
	for _, e := range o.queue.PollDue(now) {
		var err error
		switch e.Kind {
		case EventOrderArrival:
			err = o.env.AddOrder(e.Order)
		case EventBlockage:
			o.env.AddBlockage(e.Blockage)
			o.abortPlansThroughBlockage(e)
		case EventIncident:
			err = o.applyIncident(e)
		case EventMaintenance:
			o.env.RegisterMaintenance(e.Maintenance)
			o.abortPlanFor(e.Maintenance.VehicleID())
		case EventPlanCheckpoint:
			o.forceReplan = true
		case EventSimulationEnd:
			o.endRequested = true
			continue
		}
		if err != nil {
			o.logger.Log("WARN", "event rejected", map[string]interface{}{
				"kind":  string(e.Kind),
				"error": err.Error(),
			})
			continue
		}
		o.needsReplan = true
	}
}

// applyIncident pulls the stricken vehicle out of service at its
// current position and kills its plan.
func (o *Orchestrator) applyIncident(e *Event) error {
	if err := o.env.RegisterIncident(e.Incident); err != nil {
		return err
	}
	o.abortPlanFor(e.Incident.VehicleID())
	return nil
}

// abortPlansThroughBlockage aborts every plan whose remaining drive
// legs cross the new blockage while it is active.
func (o *Orchestrator) abortPlansThroughBlockage(e *Event) {
	for vehicleID, p := range o.plans {
		if planCrossesBlockage(p, e) {
			p.AbortRemaining()
			delete(o.plans, vehicleID)
			if v, err := o.env.FindVehicleByID(vehicleID); err == nil && v.Assignable() {
				v.SetStatus(fleet.StatusIdle)
			}
		}
	}
}

func planCrossesBlockage(p *plan.Plan, e *Event) bool {
	for _, a := range p.Actions() {
		if a.Status() != plan.ActionScheduled && a.Status() != plan.ActionExecuting {
			continue
		}
		if a.Type() != plan.ActionDrive || a.Path() == nil {
			continue
		}
		path := a.Path()
		for i, cell := range path.Cells {
			if e.Blockage.Blocks(cell, path.ArrivalTimes[i]) {
				return true
			}
		}
	}
	return false
}

// abortPlanFor drops the plan of one vehicle, if any. Caller holds the
// lock.
func (o *Orchestrator) abortPlanFor(vehicleID string) {
	if p, ok := o.plans[vehicleID]; ok {
		p.AbortRemaining()
		delete(o.plans, vehicleID)
	}
}

// abortPlanUnderLock is abortPlanFor for external callers.
func (o *Orchestrator) abortPlanUnderLock(vehicleID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.abortPlanFor(vehicleID)
}

// replan runs one planning round and swaps in the fresh plans
// wholesale.
func (o *Orchestrator) replan(ctx context.Context) error {
	result, err := o.planner.PlanRoutes(ctx, o.env)
	if err != nil {
		return err
	}
	o.replanCount++

	for vehicleID := range o.plans {
		if v, err := o.env.FindVehicleByID(vehicleID); err == nil && v.Assignable() {
			o.plans[vehicleID].AbortRemaining()
			delete(o.plans, vehicleID)
		}
	}
	for vehicleID, p := range result.Plans {
		o.plans[vehicleID] = p
	}

	if o.recorder != nil {
		o.recorder.RecordReplan(result.Stats)
	}
	if o.replans != nil {
		if err := o.replans.RecordReplan(result.Stats); err != nil {
			o.logger.Log("ERROR", "failed to persist replan stats", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

// publishTick emits metrics and the post-tick snapshot.
func (o *Orchestrator) publishTick(now time.Time, wallDuration time.Duration) {
	if o.recorder != nil {
		o.recorder.RecordTick(now, wallDuration)
		o.recorder.SetPendingOrders(len(o.env.PendingOrders()))
		counts := map[string]int{}
		for _, v := range o.env.Vehicles() {
			counts[string(v.Status())]++
		}
		for status, n := range counts {
			o.recorder.SetVehicleStatus(status, n)
		}
	}
	if o.publisher != nil {
		o.publisher.Publish(o.snapshotLocked())
	}
}

// pace sleeps the configured wall-clock pause between ticks.
func (o *Orchestrator) pace(wallStart time.Time) {
	o.mu.RLock()
	speedMs := o.speedMs
	o.mu.RUnlock()

	budget := time.Duration(speedMs) * time.Millisecond
	elapsed := o.clock.Now().Sub(wallStart)
	if remaining := budget - elapsed; remaining > 0 {
		o.clock.Sleep(remaining)
	}
}

func (o *Orchestrator) finish(reason string) {
	o.mu.Lock()
	o.state = StateFinished
	o.mu.Unlock()
	o.logger.Log("INFO", "simulation finished", map[string]interface{}{
		"reason": reason,
		"ticks":  o.tick,
	})
}

func (o *Orchestrator) paused() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state == StatePaused
}

// Control surface

// Pause suspends the tick loop. Pausing a paused simulation is a
// no-op.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateRunning:
		o.state = StatePaused
		o.logger.Log("INFO", "simulation paused", nil)
		return nil
	case StatePaused:
		return nil
	default:
		return shared.NewStateConflictError(fmt.Sprintf("cannot pause simulation in state %s", o.state))
	}
}

// Resume restarts a paused tick loop. Resuming a running simulation is
// a no-op.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StatePaused:
		o.state = StateRunning
		select {
		case o.resume <- struct{}{}:
		default:
		}
		o.logger.Log("INFO", "simulation resumed", nil)
		return nil
	case StateRunning:
		return nil
	default:
		return shared.NewStateConflictError(fmt.Sprintf("cannot resume simulation in state %s", o.state))
	}
}

// SetSpeed changes the wall-clock pause between ticks.
func (o *Orchestrator) SetSpeed(ms int) error {
	if ms < MinSpeedMs || ms > MaxSpeedMs {
		return shared.NewValidationError("speed",
			fmt.Sprintf("must be between %d and %d milliseconds", MinSpeedMs, MaxSpeedMs))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.speedMs = ms
	o.logger.Log("INFO", "simulation speed changed", map[string]interface{}{
		"speed_ms": ms,
	})
	return nil
}

// Speed returns the wall-clock pause between ticks.
func (o *Orchestrator) Speed() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.speedMs
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// ScheduleEvent queues a future world event.
func (o *Orchestrator) ScheduleEvent(e *Event) {
	o.queue.Push(e)
}

// Snapshot returns the current read-only view.
func (o *Orchestrator) Snapshot() *Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() *Snapshot {
	active := 0
	for _, v := range o.env.Vehicles() {
		if v.Status() == fleet.StatusDriving || v.Status() == fleet.StatusServing ||
			v.Status() == fleet.StatusReloading || v.Status() == fleet.StatusRefueling {
			active++
		}
	}
	distance := 0
	for _, p := range o.plans {
		distance += p.TotalDistance()
	}
	stats := SnapshotStats{
		PendingOrders:  len(o.env.PendingOrders()),
		OverdueOrders:  len(o.env.OverdueOrders()),
		ActiveVehicles: active,
		TotalDistance:  distance,
		DeliveredM3:    o.deliveredM3,
		ReplanCount:    o.replanCount,
	}
	return buildSnapshot(o.env, o.plans, o.tick, string(o.state), o.speedMs, stats)
}

// WithEnvironment runs fn against the live environment under the
// orchestrator lock. Command handlers use it to mutate world state; a
// successful mutation flags a replan.
func (o *Orchestrator) WithEnvironment(fn func(env *world.Environment) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	err := fn(o.env)
	if err == nil {
		o.needsReplan = true
	}
	return err
}
