package delivery

import (
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Order entity - a client request for GLP at a grid position with a
// hard deadline.
//
// Invariants:
// - 0 <= remaining <= requested
// - delivered <=> remaining == 0
// - overdue(t) <=> t > due AND not delivered
//
// Identity (id, arrival, due, requested amount, position) is
// immutable; the remaining amount and the delivery records are the
// mutable state.
type Order struct {
	id          string
	clientID    string
	arriveTime  time.Time
	dueTime     time.Time
	requestedM3 float64
	position    shared.Position

	remainingM3 float64
	records     []*Record
}

// NewOrder creates an order with validation.
func NewOrder(id, clientID string, arriveTime, dueTime time.Time, requestedM3 float64, position shared.Position) (*Order, error) {
	if id == "" {
		return nil, shared.NewValidationError("order_id", "cannot be empty")
	}
	if requestedM3 <= 0 {
		return nil, shared.NewValidationError("requested_m3", "must be positive")
	}
	if dueTime.Before(arriveTime) {
		return nil, shared.NewValidationError("due_time", "cannot precede arrival time")
	}
	return &Order{
		id:          id,
		clientID:    clientID,
		arriveTime:  arriveTime,
		dueTime:     dueTime,
		requestedM3: requestedM3,
		position:    position,
		remainingM3: requestedM3,
	}, nil
}

// Getters

func (o *Order) ID() string {
	return o.id
}

func (o *Order) ClientID() string {
	return o.clientID
}

func (o *Order) ArriveTime() time.Time {
	return o.arriveTime
}

func (o *Order) DueTime() time.Time {
	return o.dueTime
}

func (o *Order) RequestedM3() float64 {
	return o.requestedM3
}

func (o *Order) RemainingM3() float64 {
	return o.remainingM3
}

func (o *Order) Position() shared.Position {
	return o.position
}

// Records returns the delivery records accumulated so far.
func (o *Order) Records() []*Record {
	return o.records
}

// Delivered reports whether the order is fully served.
func (o *Order) Delivered() bool {
	return o.remainingM3 <= deliveredEpsilon
}

// deliveredEpsilon absorbs float rounding when partial deliveries sum
// back up to the requested amount.
const deliveredEpsilon = 1e-9

// Overdue reports whether the order missed its deadline at time t.
func (o *Order) Overdue(t time.Time) bool {
	return t.After(o.dueTime) && !o.Delivered()
}

// Priority returns the dispatch urgency of the order at time t.
// On-time orders grow towards 100 as the deadline approaches; overdue
// orders jump past 1000 and keep growing with lateness.
func (o *Order) Priority(t time.Time) float64 {
	hours := o.dueTime.Sub(t).Hours()
	if hours >= 0 {
		return 100.0 / (1.0 + hours)
	}
	return 1000.0 + (-hours)
}

// RecordDelivery discharges amountM3 into the order and appends a
// delivery record. The amount is capped at the remaining demand; the
// capped amount is returned.
func (o *Order) RecordDelivery(vehicleID string, amountM3 float64, at time.Time) (float64, error) {
	if amountM3 < 0 {
		return 0, shared.NewValidationError("amount_m3", "cannot be negative")
	}
	delivered := math.Min(amountM3, o.remainingM3)
	if delivered <= 0 {
		return 0, nil
	}
	o.remainingM3 -= delivered
	if o.remainingM3 < 0 {
		o.remainingM3 = 0
	}
	o.records = append(o.records, NewRecord(vehicleID, o.id, delivered, at))
	return delivered, nil
}

// DeliveredM3 returns the total volume delivered so far.
func (o *Order) DeliveredM3() float64 {
	return o.requestedM3 - o.remainingM3
}

// ReconstructOrder creates an order from cloned state, including its
// remaining amount and records. Used by Environment.Clone.
func ReconstructOrder(
	id, clientID string,
	arriveTime, dueTime time.Time,
	requestedM3 float64,
	position shared.Position,
	remainingM3 float64,
	records []*Record,
) (*Order, error) {
	if remainingM3 < 0 || remainingM3 > requestedM3 {
		return nil, shared.NewValidationError("remaining_m3", "must lie within [0, requested]")
	}
	o, err := NewOrder(id, clientID, arriveTime, dueTime, requestedM3, position)
	if err != nil {
		return nil, err
	}
	o.remainingM3 = remainingM3
	o.records = append([]*Record(nil), records...)
	return o, nil
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(id=%s, pos=%s, remaining=%.1f/%.1f, due=%s)",
		o.id, o.position, o.remainingM3, o.requestedM3, shared.FormatTime(o.dueTime))
}
