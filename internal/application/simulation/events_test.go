package simulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/application/simulation"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

var queueStart = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func orderEvent(t *testing.T, id string, arriveIn time.Duration) *simulation.Event {
	t.Helper()
	o, err := delivery.NewOrder(id, "CL-1", queueStart.Add(arriveIn), queueStart.Add(arriveIn+4*time.Hour),
		5, shared.Position{X: 30, Y: 20})
	require.NoError(t, err)
	return simulation.OrderArrivalEvent(o)
}

func TestEventQueue_PollDueInTimeOrder(t *testing.T) {
	q := simulation.NewEventQueue()
	q.Push(orderEvent(t, "late", 3*time.Hour))
	q.Push(orderEvent(t, "early", time.Hour))
	q.Push(orderEvent(t, "middle", 2*time.Hour))

	due := q.PollDue(queueStart.Add(2 * time.Hour))
	require.Len(t, due, 2)
	assert.Equal(t, "early", due[0].Order.ID())
	assert.Equal(t, "middle", due[1].Order.ID())

	assert.Equal(t, 1, q.Len())
	next, ok := q.NextAt()
	require.True(t, ok)
	assert.Equal(t, queueStart.Add(3*time.Hour), next)
}

func TestEventQueue_SameInstantKeepsInsertionOrder(t *testing.T) {
	q := simulation.NewEventQueue()
	q.Push(orderEvent(t, "first", time.Hour))
	q.Push(orderEvent(t, "second", time.Hour))
	q.Push(orderEvent(t, "third", time.Hour))

	due := q.PollDue(queueStart.Add(time.Hour))
	require.Len(t, due, 3)
	assert.Equal(t, "first", due[0].Order.ID())
	assert.Equal(t, "second", due[1].Order.ID())
	assert.Equal(t, "third", due[2].Order.ID())
}

func TestEventQueue_NothingDue(t *testing.T) {
	q := simulation.NewEventQueue()
	q.Push(orderEvent(t, "o1", time.Hour))

	assert.Empty(t, q.PollDue(queueStart.Add(30*time.Minute)))
	assert.Equal(t, 1, q.Len())
}

func TestEventQueue_Empty(t *testing.T) {
	q := simulation.NewEventQueue()

	assert.Zero(t, q.Len())
	assert.Empty(t, q.PollDue(queueStart))
	_, ok := q.NextAt()
	assert.False(t, ok)
}

func TestEventConstructors_ScheduleAtPayloadTime(t *testing.T) {
	inc, err := incident.NewIncident("inc-1", "TD01", incident.TI1, queueStart.Add(time.Hour), shared.Position{X: 12, Y: 8})
	require.NoError(t, err)
	e := simulation.IncidentEvent(inc)
	assert.Equal(t, simulation.EventIncident, e.Kind)
	assert.Equal(t, queueStart.Add(time.Hour), e.At)

	m, err := incident.NewMaintenance("TD01", queueStart.AddDate(0, 0, 3))
	require.NoError(t, err)
	me := simulation.MaintenanceEvent(m)
	assert.Equal(t, simulation.EventMaintenance, me.Kind)
	assert.Equal(t, m.Start(), me.At)

	cp := simulation.PlanCheckpointEvent(queueStart.Add(2 * time.Hour))
	assert.Equal(t, simulation.EventPlanCheckpoint, cp.Kind)
	assert.Equal(t, queueStart.Add(2*time.Hour), cp.At)

	end := simulation.SimulationEndEvent(queueStart.Add(6 * time.Hour))
	assert.Equal(t, simulation.EventSimulationEnd, end.Kind)
	assert.Equal(t, queueStart.Add(6*time.Hour), end.At)
}
