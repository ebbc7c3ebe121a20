package routing

import (
	"context"
	"errors"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// IsPathNotFound reports whether err wraps a PathNotFoundError.
func IsPathNotFound(err error) bool {
	var target *shared.PathNotFoundError
	return errors.As(err, &target)
}

// PathPlanner defines the shortest-path operation over the city grid.
// Implementations account for blockages active along the way.
type PathPlanner interface {
	// FindPath returns a blockage-aware shortest path from origin to
	// destination departing at the given time, or a PathNotFoundError.
	FindPath(ctx context.Context, req *PathRequest) (*Path, error)
}

// BlockageOracle answers whether a cell is closed at a point in time.
// The live Environment satisfies this interface; the solver passes its
// clone instead.
type BlockageOracle interface {
	IsBlocked(p shared.Position, t time.Time) bool
}

// PathRequest describes one shortest-path query.
type PathRequest struct {
	Origin      shared.Position
	Destination shared.Position
	Departure   time.Time
	SpeedKmh    float64
}

// Path is an ordered sequence of adjacent grid cells together with the
// arrival time at each cell. Cells[0] is the origin; ArrivalTimes has
// the same length as Cells and ArrivalTimes[0] equals the departure.
type Path struct {
	Cells        []shared.Position
	ArrivalTimes []time.Time
}

// Distance returns the path length in grid units.
func (p *Path) Distance() int {
	if len(p.Cells) == 0 {
		return 0
	}
	return len(p.Cells) - 1
}

// Origin returns the first cell of the path.
func (p *Path) Origin() shared.Position {
	return p.Cells[0]
}

// Destination returns the last cell of the path.
func (p *Path) Destination() shared.Position {
	return p.Cells[len(p.Cells)-1]
}

// ArrivalTime returns when the path reaches its destination.
func (p *Path) ArrivalTime() time.Time {
	return p.ArrivalTimes[len(p.ArrivalTimes)-1]
}

// PositionAt returns the cell the traveller occupies at time t,
// clamping to the endpoints outside the traversal window.
func (p *Path) PositionAt(t time.Time) shared.Position {
	if len(p.Cells) == 0 {
		return shared.Position{}
	}
	if !t.After(p.ArrivalTimes[0]) {
		return p.Cells[0]
	}
	for i := len(p.Cells) - 1; i >= 0; i-- {
		if !p.ArrivalTimes[i].After(t) {
			return p.Cells[i]
		}
	}
	return p.Cells[len(p.Cells)-1]
}
