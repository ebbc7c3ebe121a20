package simulation

import (
	"container/heap"
	"sync"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
)

// EventKind tags a scheduled world event.
type EventKind string

const (
	EventOrderArrival   EventKind = "ORDER_ARRIVAL"
	EventBlockage       EventKind = "BLOCKAGE"
	EventIncident       EventKind = "INCIDENT"
	EventMaintenance    EventKind = "MAINTENANCE"
	EventPlanCheckpoint EventKind = "PLAN_CHECKPOINT"
	EventSimulationEnd  EventKind = "SIMULATION_END"
)

// Event is one scheduled change to the world: an order arriving, a
// blockage window opening, an incident striking a vehicle, a
// maintenance window starting, or a control marker (plan checkpoint,
// simulation end). At most one payload field is set, matching the
// kind; control markers carry none.
type Event struct {
	Kind        EventKind
	At          time.Time
	Order       *delivery.Order
	Blockage    *network.Blockage
	Incident    *incident.Incident
	Maintenance *incident.Maintenance

	seq   uint64
	index int
}

// OrderArrivalEvent schedules an order becoming visible at its
// arrival time.
func OrderArrivalEvent(o *delivery.Order) *Event {
	return &Event{Kind: EventOrderArrival, At: o.ArriveTime(), Order: o}
}

// BlockageEvent schedules a blockage at the start of its window.
func BlockageEvent(b *network.Blockage) *Event {
	return &Event{Kind: EventBlockage, At: b.StartTime(), Blockage: b}
}

// IncidentEvent schedules a vehicle incident at its occurrence time.
func IncidentEvent(inc *incident.Incident) *Event {
	return &Event{Kind: EventIncident, At: inc.OccurredAt(), Incident: inc}
}

// MaintenanceEvent schedules a maintenance window at its start.
func MaintenanceEvent(m *incident.Maintenance) *Event {
	return &Event{Kind: EventMaintenance, At: m.Start(), Maintenance: m}
}

// PlanCheckpointEvent schedules a forced replan at the given instant,
// bypassing the interval and tick-counter gates.
func PlanCheckpointEvent(at time.Time) *Event {
	return &Event{Kind: EventPlanCheckpoint, At: at}
}

// SimulationEndEvent schedules the end of the run. The tick that
// drains it is the last one executed.
func SimulationEndEvent(at time.Time) *Event {
	return &Event{Kind: EventSimulationEnd, At: at}
}

// eventHeap orders events by time, then by insertion sequence so
// same-instant events fire in the order they were scheduled.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if !h[i].At.Equal(h[j].At) {
		return h[i].At.Before(h[j].At)
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	e := x.(*Event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	e := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return e
}

// EventQueue is a thread-safe time-ordered queue of scheduled events.
type EventQueue struct {
	mu   sync.Mutex
	heap eventHeap
	seq  uint64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.heap)
	return q
}

// Push schedules an event.
func (q *EventQueue) Push(e *Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	e.seq = q.seq
	heap.Push(&q.heap, e)
}

// PollDue pops every event due at or before t, in firing order.
func (q *EventQueue) PollDue(t time.Time) []*Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []*Event
	for q.heap.Len() > 0 && !q.heap[0].At.After(t) {
		due = append(due, heap.Pop(&q.heap).(*Event))
	}
	return due
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// NextAt returns the time of the earliest pending event.
func (q *EventQueue) NextAt() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Len() == 0 {
		return time.Time{}, false
	}
	return q.heap[0].At, true
}
