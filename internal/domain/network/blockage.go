package network

import (
	"fmt"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// Blockage entity - a time-windowed street closure described by an
// axis-aligned polyline. Every integer point lying on a segment of the
// polyline is blocked while the window is active.
//
// The activity window is inclusive on both ends: a blockage with
// window [s,e] is active at exactly s and at exactly e.
type Blockage struct {
	id        string
	startTime time.Time
	endTime   time.Time
	polyline  []shared.Position

	blockedCells map[shared.Position]struct{}
}

// NewBlockage creates a blockage and precomputes its blocked cell set.
// Consecutive polyline points must share a row or a column.
func NewBlockage(id string, startTime, endTime time.Time, polyline []shared.Position) (*Blockage, error) {
	if id == "" {
		return nil, shared.NewValidationError("blockage_id", "cannot be empty")
	}
	if endTime.Before(startTime) {
		return nil, shared.NewValidationError("end_time", "cannot precede start time")
	}
	if len(polyline) < 2 {
		return nil, shared.NewValidationError("polyline", "needs at least two points")
	}

	cells := make(map[shared.Position]struct{})
	for i := 0; i < len(polyline)-1; i++ {
		a, b := polyline[i], polyline[i+1]
		if a.X != b.X && a.Y != b.Y {
			return nil, shared.NewValidationError("polyline",
				fmt.Sprintf("segment %s-%s is not axis-aligned", a, b))
		}
		for _, cell := range segmentCells(a, b) {
			cells[cell] = struct{}{}
		}
	}

	return &Blockage{
		id:           id,
		startTime:    startTime,
		endTime:      endTime,
		polyline:     append([]shared.Position(nil), polyline...),
		blockedCells: cells,
	}, nil
}

// segmentCells enumerates the integer points of an axis-aligned
// segment, endpoints included.
func segmentCells(a, b shared.Position) []shared.Position {
	var cells []shared.Position
	if a.X == b.X {
		lo, hi := a.Y, b.Y
		if lo > hi {
			lo, hi = hi, lo
		}
		for y := lo; y <= hi; y++ {
			cells = append(cells, shared.Position{X: a.X, Y: y})
		}
		return cells
	}
	lo, hi := a.X, b.X
	if lo > hi {
		lo, hi = hi, lo
	}
	for x := lo; x <= hi; x++ {
		cells = append(cells, shared.Position{X: x, Y: a.Y})
	}
	return cells
}

func (b *Blockage) ID() string {
	return b.id
}

func (b *Blockage) StartTime() time.Time {
	return b.startTime
}

func (b *Blockage) EndTime() time.Time {
	return b.endTime
}

// Polyline returns the defining points of the blockage.
func (b *Blockage) Polyline() []shared.Position {
	return b.polyline
}

// ActiveAt reports whether the blockage is in force at t (inclusive on
// both window ends).
func (b *Blockage) ActiveAt(t time.Time) bool {
	return !t.Before(b.startTime) && !t.After(b.endTime)
}

// Expired reports whether the blockage window closed before t.
func (b *Blockage) Expired(t time.Time) bool {
	return b.endTime.Before(t)
}

// Blocks reports whether the blockage covers the given cell while
// active at t.
func (b *Blockage) Blocks(p shared.Position, t time.Time) bool {
	if !b.ActiveAt(t) {
		return false
	}
	_, ok := b.blockedCells[p]
	return ok
}

// BlockedCells returns the precomputed cell set.
func (b *Blockage) BlockedCells() map[shared.Position]struct{} {
	return b.blockedCells
}

func (b *Blockage) String() string {
	return fmt.Sprintf("Blockage(id=%s, window=[%s, %s], cells=%d)",
		b.id, shared.FormatTime(b.startTime), shared.FormatTime(b.endTime), len(b.blockedCells))
}
