package routing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/glp-fleet-go/internal/adapters/routing"
	domainRouting "github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// wallOracle blocks a fixed cell set inside a time window.
type wallOracle struct {
	cells map[shared.Position]bool
	from  time.Time
	to    time.Time
}

func (o *wallOracle) IsBlocked(p shared.Position, t time.Time) bool {
	if t.Before(o.from) || t.After(o.to) {
		return false
	}
	return o.cells[p]
}

type openOracle struct{}

func (openOracle) IsBlocked(shared.Position, time.Time) bool { return false }

var departure = time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

func findPath(t *testing.T, pf *routing.Pathfinder, from, to shared.Position) *domainRouting.Path {
	t.Helper()
	path, err := pf.FindPath(context.Background(), &domainRouting.PathRequest{
		Origin:      from,
		Destination: to,
		Departure:   departure,
		SpeedKmh:    80,
	})
	require.NoError(t, err)
	return path
}

func TestFindPath_StraightLine(t *testing.T) {
	pf := routing.NewPathfinder(70, 50, openOracle{})

	path := findPath(t, pf, shared.Position{X: 0, Y: 0}, shared.Position{X: 5, Y: 3})

	assert.Equal(t, 8, path.Distance(), "unobstructed path has Manhattan length")
	assert.Equal(t, shared.Position{X: 0, Y: 0}, path.Origin())
	assert.Equal(t, shared.Position{X: 5, Y: 3}, path.Destination())
	assert.Len(t, path.ArrivalTimes, len(path.Cells))
	assert.Equal(t, departure, path.ArrivalTimes[0])

	// At 80 km/h one cell takes 45 s.
	assert.Equal(t, departure.Add(8*45*time.Second), path.ArrivalTime())
}

func TestFindPath_DetoursAroundWall(t *testing.T) {
	// Vertical wall at x=3 blocking y 0..3 on a 10x5 grid; the only
	// opening is (3,4).
	cells := map[shared.Position]bool{}
	for y := 0; y <= 3; y++ {
		cells[shared.Position{X: 3, Y: y}] = true
	}
	oracle := &wallOracle{cells: cells, from: departure.Add(-time.Hour), to: departure.Add(time.Hour)}
	pf := routing.NewPathfinder(10, 5, oracle)

	path := findPath(t, pf, shared.Position{X: 0, Y: 0}, shared.Position{X: 6, Y: 0})

	assert.Greater(t, path.Distance(), 6, "detour must be longer than the straight line")
	for i, cell := range path.Cells {
		assert.False(t, oracle.IsBlocked(cell, path.ArrivalTimes[i]),
			"path crosses blocked cell %v", cell)
	}
}

func TestFindPath_WaitsOutExpiredWindow(t *testing.T) {
	// The wall closes one minute after departure; cells reached later
	// are passable again.
	cells := map[shared.Position]bool{}
	for y := 0; y < 5; y++ {
		cells[shared.Position{X: 3, Y: y}] = true
	}
	oracle := &wallOracle{cells: cells, from: departure.Add(-time.Hour), to: departure.Add(time.Minute)}
	pf := routing.NewPathfinder(10, 5, oracle)

	// The full-height wall is impassable while active, but the
	// traveller arrives at x=3 after it expires.
	path := findPath(t, pf, shared.Position{X: 0, Y: 0}, shared.Position{X: 6, Y: 0})
	assert.Equal(t, 6, path.Distance())
}

func TestFindPath_NoRoute(t *testing.T) {
	// Full-height permanent wall.
	cells := map[shared.Position]bool{}
	for y := 0; y < 5; y++ {
		cells[shared.Position{X: 3, Y: y}] = true
	}
	oracle := &wallOracle{cells: cells, from: departure.Add(-time.Hour), to: departure.Add(24 * time.Hour)}
	pf := routing.NewPathfinder(10, 5, oracle)

	_, err := pf.FindPath(context.Background(), &domainRouting.PathRequest{
		Origin:      shared.Position{X: 0, Y: 0},
		Destination: shared.Position{X: 6, Y: 0},
		Departure:   departure,
		SpeedKmh:    80,
	})
	require.Error(t, err)
	assert.True(t, domainRouting.IsPathNotFound(err))
}

func TestFindPath_BlockedEndpoint(t *testing.T) {
	cells := map[shared.Position]bool{{X: 6, Y: 0}: true}
	oracle := &wallOracle{cells: cells, from: departure.Add(-time.Hour), to: departure.Add(time.Hour)}
	pf := routing.NewPathfinder(10, 5, oracle)

	_, err := pf.FindPath(context.Background(), &domainRouting.PathRequest{
		Origin:      shared.Position{X: 0, Y: 0},
		Destination: shared.Position{X: 6, Y: 0},
		Departure:   departure,
		SpeedKmh:    80,
	})
	assert.True(t, domainRouting.IsPathNotFound(err))
}

func TestFindPath_SameCell(t *testing.T) {
	pf := routing.NewPathfinder(10, 5, openOracle{})

	path := findPath(t, pf, shared.Position{X: 2, Y: 2}, shared.Position{X: 2, Y: 2})
	assert.Zero(t, path.Distance())
	assert.Equal(t, departure, path.ArrivalTime())
}

func TestPositionAt_Interpolation(t *testing.T) {
	pf := routing.NewPathfinder(10, 5, openOracle{})
	path := findPath(t, pf, shared.Position{X: 0, Y: 0}, shared.Position{X: 4, Y: 0})

	assert.Equal(t, shared.Position{X: 0, Y: 0}, path.PositionAt(departure))
	assert.Equal(t, shared.Position{X: 2, Y: 0}, path.PositionAt(departure.Add(2*45*time.Second)))
	assert.Equal(t, shared.Position{X: 4, Y: 0}, path.PositionAt(departure.Add(time.Hour)))
}
