package persistence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/adapters/persistence"
	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/test/helpers"
)

func TestReplanRepository_RecentReplansNewestFirst(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewReplanStatRepository(db)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordReplan(planning.SolveStats{
			StartedAt:      base.Add(time.Duration(i) * time.Hour),
			Duration:       120 * time.Millisecond,
			VehiclesUsed:   i + 1,
			OrdersAssigned: 2 * i,
			Cost:           float64(1000 - i),
			UsedFallback:   i == 2,
		}))
	}

	rows, err := repo.RecentReplans(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 3, rows[0].VehiclesUsed)
	assert.True(t, rows[0].UsedFallback)
	assert.Equal(t, 2, rows[1].VehiclesUsed)
	assert.Equal(t, int64(120), rows[0].DurationMs)
}
