package network

import (
	"fmt"
	"math"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Depot entity - a GLP source on the grid. The main plant has
// effectively unbounded stock; auxiliary depots hold a bounded stock
// refilled at every simulated midnight.
type Depot struct {
	id            string
	position      shared.Position
	glpCapacityM3 float64
	isMain        bool
	canRefuel     bool

	currentGLPM3 float64
}

// NewDepot creates a depot at full stock.
func NewDepot(id string, position shared.Position, glpCapacityM3 float64, isMain, canRefuel bool) (*Depot, error) {
	if id == "" {
		return nil, shared.NewValidationError("depot_id", "cannot be empty")
	}
	if glpCapacityM3 < 0 {
		return nil, shared.NewValidationError("glp_capacity", "cannot be negative")
	}
	return &Depot{
		id:            id,
		position:      position,
		glpCapacityM3: glpCapacityM3,
		isMain:        isMain,
		canRefuel:     canRefuel,
		currentGLPM3:  glpCapacityM3,
	}, nil
}

func (d *Depot) ID() string {
	return d.id
}

func (d *Depot) Position() shared.Position {
	return d.position
}

func (d *Depot) CapacityM3() float64 {
	return d.glpCapacityM3
}

func (d *Depot) IsMain() bool {
	return d.isMain
}

func (d *Depot) CanRefuel() bool {
	return d.canRefuel
}

// CurrentGLPM3 returns the stock on hand. The main plant always
// reports full stock.
func (d *Depot) CurrentGLPM3() float64 {
	if d.isMain {
		return d.glpCapacityM3
	}
	return d.currentGLPM3
}

// Dispense hands out up to amountM3 of GLP and returns the amount
// actually dispensed. The main plant never runs dry.
func (d *Depot) Dispense(amountM3 float64) float64 {
	if amountM3 <= 0 {
		return 0
	}
	if d.isMain {
		return amountM3
	}
	dispensed := math.Min(amountM3, d.currentGLPM3)
	d.currentGLPM3 -= dispensed
	return dispensed
}

// Refill restores the depot to capacity. Called on the midnight
// transition and by explicit refill events.
func (d *Depot) Refill() {
	d.currentGLPM3 = d.glpCapacityM3
}

// ReconstructDepot creates a depot with an explicit stock level.
// Used by Environment.Clone.
func ReconstructDepot(id string, position shared.Position, glpCapacityM3 float64, isMain, canRefuel bool, currentGLPM3 float64) (*Depot, error) {
	d, err := NewDepot(id, position, glpCapacityM3, isMain, canRefuel)
	if err != nil {
		return nil, err
	}
	if currentGLPM3 < 0 {
		return nil, shared.NewValidationError("current_glp", "cannot be negative")
	}
	d.currentGLPM3 = currentGLPM3
	return d, nil
}

func (d *Depot) String() string {
	return fmt.Sprintf("Depot(id=%s, pos=%s, glp=%.0f/%.0f, main=%t)",
		d.id, d.position, d.CurrentGLPM3(), d.glpCapacityM3, d.isMain)
}
