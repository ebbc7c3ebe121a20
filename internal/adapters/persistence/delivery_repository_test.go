package persistence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/adapters/persistence"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/test/helpers"
)

var recordedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func TestDeliveryRepository_RecordAndLoad(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewDeliveryRecordRepository(db)

	require.NoError(t, repo.RecordDelivery(delivery.NewRecord("TA01", "o1", 4, recordedAt)))
	require.NoError(t, repo.RecordDelivery(delivery.NewRecord("TB02", "o1", 5, recordedAt.Add(time.Hour))))
	require.NoError(t, repo.RecordDelivery(delivery.NewRecord("TA01", "o2", 3, recordedAt.Add(2*time.Hour))))

	rows, err := repo.RecordsForOrder("o1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TA01", rows[0].VehicleID)
	assert.Equal(t, "TB02", rows[1].VehicleID)
	assert.InDelta(t, 4.0, rows[0].AmountM3, 1e-9)

	rows, err = repo.RecordsForOrder("unknown")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeliveryRepository_TotalDeliveredM3(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewDeliveryRecordRepository(db)

	require.NoError(t, repo.RecordDelivery(delivery.NewRecord("TA01", "o1", 4, recordedAt)))
	require.NoError(t, repo.RecordDelivery(delivery.NewRecord("TA01", "o2", 5, recordedAt.Add(time.Hour))))
	require.NoError(t, repo.RecordDelivery(delivery.NewRecord("TA01", "o3", 7, recordedAt.Add(25*time.Hour))))

	// The window is half-open: the 25h row falls outside.
	total, err := repo.TotalDeliveredM3(recordedAt, recordedAt.Add(24*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 9.0, total, 1e-9)

	total, err = repo.TotalDeliveredM3(recordedAt.Add(48*time.Hour), recordedAt.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, total)
}
