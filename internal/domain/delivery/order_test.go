package delivery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

var orderBase = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newOrder(t *testing.T, requestedM3 float64, dueIn time.Duration) *delivery.Order {
	t.Helper()
	pos, err := shared.NewPosition(40, 21)
	require.NoError(t, err)
	o, err := delivery.NewOrder("order-1", "CL-77", orderBase, orderBase.Add(dueIn), requestedM3, pos)
	require.NoError(t, err)
	return o
}

func TestNewOrder_Validation(t *testing.T) {
	pos, _ := shared.NewPosition(0, 0)

	_, err := delivery.NewOrder("", "CL-1", orderBase, orderBase.Add(time.Hour), 5, pos)
	assert.Error(t, err)

	_, err = delivery.NewOrder("o", "CL-1", orderBase, orderBase.Add(time.Hour), 0, pos)
	assert.Error(t, err, "zero demand must be rejected")

	_, err = delivery.NewOrder("o", "CL-1", orderBase, orderBase.Add(-time.Hour), 5, pos)
	assert.Error(t, err, "deadline before arrival must be rejected")
}

func TestRecordDelivery_PartialThenComplete(t *testing.T) {
	o := newOrder(t, 10, 4*time.Hour)

	delivered, err := o.RecordDelivery("TD01", 6, orderBase.Add(time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 6.0, delivered, 1e-9)
	assert.InDelta(t, 4.0, o.RemainingM3(), 1e-9)
	assert.False(t, o.Delivered())

	// Over-delivery is capped at the remaining demand.
	delivered, err = o.RecordDelivery("TD02", 9, orderBase.Add(2*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, delivered, 1e-9)
	assert.True(t, o.Delivered())
	assert.Len(t, o.Records(), 2)
	assert.InDelta(t, 10.0, o.DeliveredM3(), 1e-9)
}

func TestRecordDelivery_RejectsNegative(t *testing.T) {
	o := newOrder(t, 10, 4*time.Hour)

	_, err := o.RecordDelivery("TD01", -1, orderBase)
	assert.Error(t, err)
}

func TestOverdue(t *testing.T) {
	o := newOrder(t, 10, 2*time.Hour)

	assert.False(t, o.Overdue(orderBase.Add(time.Hour)))
	assert.True(t, o.Overdue(orderBase.Add(3*time.Hour)))

	_, err := o.RecordDelivery("TD01", 10, orderBase.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, o.Overdue(orderBase.Add(3*time.Hour)), "completed orders are never overdue")
}

func TestPriority_GrowsTowardsDeadline(t *testing.T) {
	o := newOrder(t, 10, 4*time.Hour)

	early := o.Priority(orderBase)
	late := o.Priority(orderBase.Add(3 * time.Hour))
	assert.Greater(t, late, early)

	// Overdue orders outrank every on-time order.
	overdue := o.Priority(orderBase.Add(5 * time.Hour))
	assert.Greater(t, overdue, 1000.0)
}
