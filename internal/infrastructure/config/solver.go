package config

import "time"

// SolverConfig tunes the route planner.
type SolverConfig struct {
	// Insertion cost weights.
	Alpha float64 `mapstructure:"alpha" validate:"omitempty,min=0"`
	Beta  float64 `mapstructure:"beta" validate:"omitempty,min=0"`
	Gamma float64 `mapstructure:"gamma" validate:"omitempty,min=0"`

	// Evaluator penalties.
	LatePenaltyPerHour  float64 `mapstructure:"late_penalty_per_hour" validate:"omitempty,min=0"`
	UndeliveredPenalty  float64 `mapstructure:"undelivered_penalty" validate:"omitempty,min=0"`
	DistanceCostPerUnit float64 `mapstructure:"distance_cost_per_unit" validate:"omitempty,min=0"`

	// AllowPartialDelivery permits split deliveries.
	AllowPartialDelivery *bool `mapstructure:"allow_partial_delivery"`

	// Budget bounds one replanning round.
	Budget time.Duration `mapstructure:"budget"`

	// RandomSeed makes the fallback reproducible; zero seeds from the
	// clock.
	RandomSeed int64 `mapstructure:"random_seed"`
}
