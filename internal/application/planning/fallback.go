package planning

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/fleet"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/world"
)

// fallbackRounds bounds the randomized retries per fallback pass.
const fallbackRounds = 20

// Fallback places orders the insertion heuristic gave up on. Each
// round it splits the leftover demand into randomly chosen chunk
// sizes, shuffles the chunks and appends them greedily to whichever
// route prices cheapest. The best round wins; rounds that place
// nothing are discarded.
type Fallback struct {
	cfg    Config
	eval   *Evaluator
	rng    *rand.Rand
	logger common.Logger
}

// NewFallback creates a fallback pass. A zero RandomSeed seeds from
// the wall clock.
func NewFallback(cfg Config, logger common.Logger) *Fallback {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Fallback{
		cfg:    cfg,
		eval:   NewEvaluator(cfg),
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// chunk is one randomly sized slice of an order's leftover demand.
type chunk struct {
	orderID  string
	amountM3 float64
}

// Repair tries to extend the solution with the unplaced orders.
// Returns the improved solution and the ids still unplaced after the
// best round.
func (f *Fallback) Repair(ctx context.Context, env *world.Environment, sol Solution, unplaced []string) (Solution, []string) {
	if len(unplaced) == 0 {
		return sol, nil
	}

	vehicles := map[string]*fleet.Vehicle{}
	for _, v := range env.AvailableVehicles() {
		vehicles[v.ID()] = v
	}

	bestSol := sol
	bestLeft := unplaced
	bestScore := f.eval.Score(env, sol).Total

	for round := 0; round < fallbackRounds; round++ {
		if ctx.Err() != nil {
			break
		}

		candidate := cloneSolution(sol)
		chunks := f.chunkDemand(env, unplaced)
		f.rng.Shuffle(len(chunks), func(i, j int) {
			chunks[i], chunks[j] = chunks[j], chunks[i]
		})

		left := map[string]float64{}
		for _, id := range unplaced {
			if o, err := env.FindOrderByID(id); err == nil {
				left[id] = o.RemainingM3()
			}
		}

		for _, c := range chunks {
			if left[c.orderID] <= glpTolerance {
				continue
			}
			amount := math.Min(c.amountM3, left[c.orderID])
			if f.appendCheapest(env, vehicles, candidate, c.orderID, amount) {
				left[c.orderID] -= amount
			}
		}

		score := f.eval.Score(env, candidate).Total
		if math.IsInf(score, 1) {
			continue
		}

		var stillLeft []string
		for _, id := range unplaced {
			if left[id] > glpTolerance {
				stillLeft = append(stillLeft, id)
			}
		}

		if len(stillLeft) < len(bestLeft) || (len(stillLeft) == len(bestLeft) && score < bestScore) {
			bestSol = candidate
			bestLeft = stillLeft
			bestScore = score
		}
		if len(bestLeft) == 0 {
			break
		}
	}

	return bestSol, bestLeft
}

// chunkDemand splits each unplaced order's leftover volume into chunks
// drawn from the configured sizes. The final chunk carries whatever is
// left below the smallest size.
func (f *Fallback) chunkDemand(env *world.Environment, unplaced []string) []chunk {
	var chunks []chunk
	for _, id := range unplaced {
		o, err := env.FindOrderByID(id)
		if err != nil {
			continue
		}
		remaining := o.RemainingM3()
		for remaining > glpTolerance {
			size := f.cfg.ChunkSizesM3[f.rng.Intn(len(f.cfg.ChunkSizesM3))]
			amount := math.Min(size, remaining)
			chunks = append(chunks, chunk{orderID: id, amountM3: amount})
			remaining -= amount
		}
	}
	return chunks
}

// appendCheapest appends a serve stop (with a reload if the tank needs
// it) to whichever route prices cheapest. Returns false when no route
// can take the chunk.
func (f *Fallback) appendCheapest(
	env *world.Environment,
	vehicles map[string]*fleet.Vehicle,
	sol Solution,
	orderID string,
	amountM3 float64,
) bool {
	o, err := env.FindOrderByID(orderID)
	if err != nil {
		return false
	}

	bestScore := math.Inf(1)
	var bestVehicle string
	var bestStops []*Stop

	for _, vehicleID := range sortedKeys(sol) {
		v := vehicles[vehicleID]
		if v == nil || amountM3-v.CapacityM3() > glpTolerance {
			continue
		}
		route := sol[vehicleID]
		serve := ServeStop(orderID, o.Position(), amountM3)

		candidates := [][]*Stop{append(append([]*Stop(nil), route.Stops...), serve)}

		// Variant with a preceding reload at the nearest depot that
		// can refill the tank.
		tail := f.eval.SimulateRoute(env, v, route.Stops)
		if !math.IsInf(tail.Cost, 1) && tail.EndGLPM3 < amountM3 {
			for _, depot := range env.Depots() {
				need := v.CapacityM3() - tail.EndGLPM3
				if !depot.IsMain() && need-depot.CurrentGLPM3() > glpTolerance {
					continue
				}
				reload := ReloadStop(depot.ID(), depot.Position(), need)
				withReload := append(append([]*Stop(nil), route.Stops...), reload, serve)
				candidates = append(candidates, withReload)
				break
			}
		}

		for _, stops := range candidates {
			result := f.eval.SimulateRoute(env, v, stops)
			if math.IsInf(result.Cost, 1) || !f.eval.ReturnFeasible(env, v, result) {
				continue
			}
			score := result.Cost + float64(result.Distance)*f.cfg.DistanceCostPerUnit
			if score < bestScore {
				bestScore = score
				bestVehicle = vehicleID
				bestStops = stops
			}
		}
	}

	if bestVehicle == "" {
		return false
	}
	sol[bestVehicle].Stops = bestStops
	return true
}

func cloneSolution(sol Solution) Solution {
	out := Solution{}
	for id, r := range sol {
		stops := make([]*Stop, len(r.Stops))
		for i, s := range r.Stops {
			copied := *s
			stops[i] = &copied
		}
		out[id] = &Route{VehicleID: r.VehicleID, Stops: stops}
	}
	return out
}
