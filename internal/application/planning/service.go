package planning

import (
	"context"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/plan"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/routing"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

// PlannerFactory builds a path planner bound to a specific environment
// snapshot. Injected so the application layer stays free of adapter
// imports.
type PlannerFactory func(width, height int, oracle routing.BlockageOracle) routing.PathPlanner

// PlanResult is the outcome of one replanning round.
type PlanResult struct {
	Plans    map[string]*plan.Plan
	Solution Solution
	Cost     CostBreakdown
	Stats    SolveStats
}

// Service orchestrates one replanning round: snapshot the environment,
// run the insertion heuristic, repair leftovers with the randomized
// fallback, then materialize the winning solution into per-vehicle
// plans with real grid paths. The whole round runs under the
// configured budget; on overrun the caller keeps its previous plans.
type Service struct {
	cfg        Config
	solver     *Solver
	eval       *Evaluator
	newPlanner PlannerFactory
	logger     common.Logger
}

// NewService creates a planning service.
func NewService(cfg Config, newPlanner PlannerFactory, logger common.Logger) *Service {
	return &Service{
		cfg:        cfg,
		solver:     NewSolver(cfg, logger),
		eval:       NewEvaluator(cfg),
		newPlanner: newPlanner,
		logger:     logger,
	}
}

// PlanRoutes computes fresh plans for every assignable vehicle.
func (s *Service) PlanRoutes(ctx context.Context, env *world.Environment) (*PlanResult, error) {
	started := time.Now()

	if s.cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Budget)
		defer cancel()
	}

	// Solve against a deep copy so candidate pricing never leaks into
	// live state.
	snapshot, err := env.Clone()
	if err != nil {
		return nil, err
	}

	sol, unplaced, err := s.solver.Solve(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	usedFallback := false
	if len(unplaced) > 0 {
		s.logger.Log("WARN", "insertion heuristic left orders unplaced", map[string]interface{}{
			"unplaced": len(unplaced),
		})
		fallback := NewFallback(s.cfg, s.logger)
		sol, unplaced = fallback.Repair(ctx, snapshot, sol, unplaced)
		usedFallback = true
	}

	cost := s.eval.Score(snapshot, sol)

	// Materialize against the snapshot's blockage view so path lookups
	// match what was priced.
	planner := s.newPlanner(snapshot.GridWidth(), snapshot.GridHeight(), snapshot)
	materializer := NewMaterializer(planner)
	plans, err := materializer.Materialize(ctx, snapshot, sol)
	if err != nil {
		return nil, err
	}

	ordersAssigned := map[string]bool{}
	for _, p := range plans {
		for _, id := range p.ServedOrders() {
			ordersAssigned[id] = true
		}
	}

	stats := SolveStats{
		StartedAt:      started,
		Duration:       time.Since(started),
		VehiclesUsed:   len(plans),
		OrdersAssigned: len(ordersAssigned),
		Cost:           cost.Total,
		UsedFallback:   usedFallback,
	}

	s.logger.Log("INFO", "replanning round finished", map[string]interface{}{
		"vehicles":  stats.VehiclesUsed,
		"orders":    stats.OrdersAssigned,
		"cost":      stats.Cost,
		"unplaced":  len(unplaced),
		"fallback":  usedFallback,
		"duration":  stats.Duration.String(),
	})

	return &PlanResult{
		Plans:    plans,
		Solution: sol,
		Cost:     cost,
		Stats:    stats,
	}, nil
}
