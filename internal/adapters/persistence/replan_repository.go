package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// ReplanStatRepository persists replanning round statistics. It
// satisfies the orchestrator's ReplanSink.
type ReplanStatRepository struct {
	db *gorm.DB
}

// NewReplanStatRepository creates a repository.
func NewReplanStatRepository(db *gorm.DB) *ReplanStatRepository {
	return &ReplanStatRepository{db: db}
}

// RecordReplan appends one replan row.
func (r *ReplanStatRepository) RecordReplan(stats planning.SolveStats) error {
	model := ReplanStatModel{
		StartedAt:      stats.StartedAt,
		DurationMs:     stats.Duration.Milliseconds(),
		VehiclesUsed:   stats.VehiclesUsed,
		OrdersAssigned: stats.OrdersAssigned,
		Cost:           stats.Cost,
		UsedFallback:   stats.UsedFallback,
	}
	if err := r.db.Create(&model).Error; err != nil {
		return fmt.Errorf("persisting replan stats: %w", err)
	}
	return nil
}

// RecentReplans returns the latest n rounds, newest first. A
// non-positive n reads a single row.
func (r *ReplanStatRepository) RecentReplans(n int) ([]ReplanStatModel, error) {
	var rows []ReplanStatModel
	err := r.db.
		Order("started_at DESC").
		Limit(utils.Max(n, 1)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading recent replans: %w", err)
	}
	return rows, nil
}
