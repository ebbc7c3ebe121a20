package routing

import (
	"container/heap"
	"context"
	"time"

	domainRouting "github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Pathfinder implements the domain PathPlanner port with A* over the
// 4-connected grid lattice. Blockages are consulted per neighbour at
// the time the traveller would arrive there, so a path may legally
// cross a cell before its blockage window opens or after it closes.
type Pathfinder struct {
	width  int
	height int
	oracle domainRouting.BlockageOracle
}

// NewPathfinder creates a pathfinder for a width x height grid backed
// by the given blockage oracle.
func NewPathfinder(width, height int, oracle domainRouting.BlockageOracle) *Pathfinder {
	return &Pathfinder{width: width, height: height, oracle: oracle}
}

// node is an A* search node keyed by grid cell.
type node struct {
	pos   shared.Position
	g     int     // steps from origin
	f     float64 // g + h
	h     int     // Manhattan heuristic to goal
	index int     // heap bookkeeping
}

// openSet is the A* frontier. Tie-break: lower f, then lower h, then
// deterministic (x,y) order.
type openSet []*node

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	if s[i].f != s[j].f {
		return s[i].f < s[j].f
	}
	if s[i].h != s[j].h {
		return s[i].h < s[j].h
	}
	if s[i].pos.X != s[j].pos.X {
		return s[i].pos.X < s[j].pos.X
	}
	return s[i].pos.Y < s[j].pos.Y
}

func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}

func (s *openSet) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*s)
	*s = append(*s, n)
}

func (s *openSet) Pop() interface{} {
	old := *s
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*s = old[:len(old)-1]
	return n
}

// neighbourOffsets is the 4-connected step set, in deterministic order.
var neighbourOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindPath runs A* from origin to destination departing at the request
// time. Returns a PathNotFoundError when either endpoint is blocked or
// the frontier empties.
func (p *Pathfinder) FindPath(ctx context.Context, req *domainRouting.PathRequest) (*domainRouting.Path, error) {
	origin, dest := req.Origin, req.Destination

	if !origin.InBounds(p.width, p.height) || !dest.InBounds(p.width, p.height) {
		return nil, shared.NewPathNotFoundError(origin.String(), dest.String())
	}
	if p.oracle.IsBlocked(origin, req.Departure) || p.oracle.IsBlocked(dest, req.Departure) {
		return nil, shared.NewPathNotFoundError(origin.String(), dest.String())
	}

	if origin.Equals(dest) {
		return &domainRouting.Path{
			Cells:        []shared.Position{origin},
			ArrivalTimes: []time.Time{req.Departure},
		}, nil
	}

	stepMinutes := 60.0 / req.SpeedKmh

	start := &node{pos: origin, g: 0, h: origin.DistanceTo(dest)}
	start.f = float64(start.h)

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, start)

	gScore := map[shared.Position]int{origin: 0}
	cameFrom := make(map[shared.Position]shared.Position)
	closed := make(map[shared.Position]bool)

	for open.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		current := heap.Pop(open).(*node)
		if closed[current.pos] {
			continue
		}
		closed[current.pos] = true

		if current.pos.Equals(dest) {
			return p.reconstruct(cameFrom, dest, req.Departure, stepMinutes), nil
		}

		for _, off := range neighbourOffsets {
			next := shared.Position{X: current.pos.X + off[0], Y: current.pos.Y + off[1]}
			if !next.InBounds(p.width, p.height) || closed[next] {
				continue
			}

			tentativeG := current.g + 1

			// The traveller reaches the neighbour after tentativeG
			// steps; reject it if it is closed at that moment.
			arrival := req.Departure.Add(time.Duration(float64(tentativeG) * stepMinutes * float64(time.Minute)))
			if p.oracle.IsBlocked(next, arrival) {
				continue
			}

			if best, seen := gScore[next]; seen && tentativeG >= best {
				continue
			}
			gScore[next] = tentativeG
			cameFrom[next] = current.pos

			h := next.DistanceTo(dest)
			heap.Push(open, &node{
				pos: next,
				g:   tentativeG,
				h:   h,
				f:   float64(tentativeG + h),
			})
		}
	}

	return nil, shared.NewPathNotFoundError(origin.String(), dest.String())
}

// reconstruct walks the predecessor map back from the goal and stamps
// the per-cell arrival times.
func (p *Pathfinder) reconstruct(cameFrom map[shared.Position]shared.Position, dest shared.Position, departure time.Time, stepMinutes float64) *domainRouting.Path {
	var reversed []shared.Position
	cur := dest
	for {
		reversed = append(reversed, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}

	cells := make([]shared.Position, len(reversed))
	times := make([]time.Time, len(reversed))
	for i := range reversed {
		cells[i] = reversed[len(reversed)-1-i]
		times[i] = departure.Add(time.Duration(float64(i) * stepMinutes * float64(time.Minute)))
	}
	return &domainRouting.Path{Cells: cells, ArrivalTimes: times}
}
