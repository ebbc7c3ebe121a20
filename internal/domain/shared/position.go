package shared

import "fmt"

// Position is a point on the city grid. The grid is a bounded integer
// lattice; one grid unit corresponds to one kilometre.
//
// Positions are value objects: compared by value, never mutated.
type Position struct {
	X int
	Y int
}

// NewPosition creates a position with non-negativity validation.
// Bounds against a concrete grid are checked by the environment, which
// knows the grid dimensions.
func NewPosition(x, y int) (Position, error) {
	if x < 0 || y < 0 {
		return Position{}, NewValidationError("position", fmt.Sprintf("coordinates cannot be negative: (%d,%d)", x, y))
	}
	return Position{X: x, Y: y}, nil
}

// DistanceTo returns the Manhattan distance to other, in grid units.
func (p Position) DistanceTo(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// Equals reports whether both positions denote the same cell.
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// InBounds reports whether the position lies inside a width x height grid.
func (p Position) InBounds(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
