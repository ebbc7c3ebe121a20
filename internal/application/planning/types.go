package planning

import (
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// StopKind tags a route stop.
type StopKind string

const (
	StopServe  StopKind = "SERVE"
	StopReload StopKind = "RELOAD"
)

// Stop is one visit of a candidate route: either a delivery into an
// order or a reload (plus refuel) at a depot. Routes are built and
// scored on stops; drive legs and exact paths are materialised only
// once a solution is accepted.
type Stop struct {
	Kind     StopKind
	OrderID  string
	DepotID  string
	Position shared.Position
	AmountM3 float64
}

// ServeStop creates a delivery stop.
func ServeStop(orderID string, pos shared.Position, amountM3 float64) *Stop {
	return &Stop{Kind: StopServe, OrderID: orderID, Position: pos, AmountM3: amountM3}
}

// ReloadStop creates a depot reload stop.
func ReloadStop(depotID string, pos shared.Position, amountM3 float64) *Stop {
	return &Stop{Kind: StopReload, DepotID: depotID, Position: pos, AmountM3: amountM3}
}

// Route is the ordered stop sequence proposed for one vehicle.
type Route struct {
	VehicleID string
	Stops     []*Stop
}

// Solution maps vehicle ids to their proposed routes.
type Solution map[string]*Route

// ServedAmountFor sums the volume the solution promises to an order.
func (s Solution) ServedAmountFor(orderID string) float64 {
	total := 0.0
	for _, r := range s {
		for _, stop := range r.Stops {
			if stop.Kind == StopServe && stop.OrderID == orderID {
				total += stop.AmountM3
			}
		}
	}
	return total
}

// Config carries the solver and evaluator tuning. It is threaded
// explicitly through both so no package-level toggles exist.
type Config struct {
	// AllowPartialDelivery permits serving an order with less GLP than
	// requested; the remainder stays pending for a later replan.
	AllowPartialDelivery bool

	// EnforceDepotCapacity rejects reloads exceeding the depot stock.
	EnforceDepotCapacity bool

	// Insertion cost weights: alpha*distance + beta*delay + gamma*waiting.
	Alpha float64
	Beta  float64
	Gamma float64

	// Cost penalties.
	LatePenaltyPerHour   float64
	UndeliveredPenalty   float64
	DistanceCostPerUnit  float64

	// Fallback chunk sizes in m3.
	ChunkSizesM3 []float64

	// Budget bounds one whole solve; on overrun the orchestrator keeps
	// the previous plans.
	Budget time.Duration

	// RandomSeed makes the fallback reproducible. Zero seeds from the
	// clock.
	RandomSeed int64
}

// DefaultConfig returns the tuning from the system specification.
func DefaultConfig() Config {
	return Config{
		AllowPartialDelivery: true,
		EnforceDepotCapacity: true,
		Alpha:                0.6,
		Beta:                 0.3,
		Gamma:                0.1,
		LatePenaltyPerHour:   500,
		UndeliveredPenalty:   10_000,
		DistanceCostPerUnit:  10,
		ChunkSizesM3:         []float64{5, 10, 15, 20, 25},
		Budget:               30 * time.Second,
	}
}

// SolveStats summarises one replanning round.
type SolveStats struct {
	StartedAt      time.Time
	Duration       time.Duration
	VehiclesUsed   int
	OrdersAssigned int
	Cost           float64
	UsedFallback   bool
}
