package incident

import (
	"fmt"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// IncidentType classifies a breakdown by severity.
type IncidentType string

const (
	// TI1: two hours on the roadside, then the vehicle continues.
	TI1 IncidentType = "TI1"
	// TI2: two hours immobilised, then out of service until the start
	// of the shift after next; must return to depot.
	TI2 IncidentType = "TI2"
	// TI3: four hours immobilised, then out of service until T1 three
	// days out; must return to depot.
	TI3 IncidentType = "TI3"
)

// ParseIncidentType validates and converts a string tag.
func ParseIncidentType(s string) (IncidentType, error) {
	switch IncidentType(s) {
	case TI1, TI2, TI3:
		return IncidentType(s), nil
	}
	return "", fmt.Errorf("unknown incident type: %q", s)
}

// Shift is one of the three 8-hour windows partitioning the day.
type Shift string

const (
	ShiftT1 Shift = "T1" // 00:00 - 08:00
	ShiftT2 Shift = "T2" // 08:00 - 16:00
	ShiftT3 Shift = "T3" // 16:00 - 24:00
)

// ParseShift validates and converts a string tag.
func ParseShift(s string) (Shift, error) {
	switch Shift(s) {
	case ShiftT1, ShiftT2, ShiftT3:
		return Shift(s), nil
	}
	return "", fmt.Errorf("unknown shift: %q", s)
}

// ShiftOf returns the shift containing t.
func ShiftOf(t time.Time) Shift {
	switch h := t.Hour(); {
	case h < 8:
		return ShiftT1
	case h < 16:
		return ShiftT2
	default:
		return ShiftT3
	}
}

// startHour returns the hour of day at which the shift opens.
func (s Shift) startHour() int {
	switch s {
	case ShiftT1:
		return 0
	case ShiftT2:
		return 8
	default:
		return 16
	}
}

// Incident entity - a vehicle breakdown. The availability time is a
// pure function of (type, shift, occurrence time), fixed at
// construction. Resolution is either derived from time or forced by an
// explicit repair command; the two coexist.
type Incident struct {
	id          string
	vehicleID   string
	incidentTyp IncidentType
	shift       Shift
	occurredAt  time.Time
	location    shared.Position
	availableAt time.Time

	resolvedAt *time.Time // explicit repair override
}

// NewIncident creates an incident and computes the availability time.
func NewIncident(id, vehicleID string, typ IncidentType, occurredAt time.Time, location shared.Position) (*Incident, error) {
	if id == "" {
		return nil, shared.NewValidationError("incident_id", "cannot be empty")
	}
	if vehicleID == "" {
		return nil, shared.NewValidationError("vehicle_id", "cannot be empty")
	}
	switch typ {
	case TI1, TI2, TI3:
	default:
		return nil, shared.NewValidationError("incident_type", fmt.Sprintf("unknown type: %s", typ))
	}

	shift := ShiftOf(occurredAt)
	return &Incident{
		id:          id,
		vehicleID:   vehicleID,
		incidentTyp: typ,
		shift:       shift,
		occurredAt:  occurredAt,
		location:    location,
		availableAt: availabilityAfter(typ, shift, occurredAt),
	}, nil
}

// availabilityAfter computes when the vehicle comes back into service.
func availabilityAfter(typ IncidentType, shift Shift, occurredAt time.Time) time.Time {
	switch typ {
	case TI1:
		return occurredAt.Add(2 * time.Hour)
	case TI2:
		// Two hours immobilised, then available at the start of the
		// shift after next: T1 -> same-day T3, T2 -> next-day T1,
		// T3 -> next-day T2.
		day := shared.Midnight(occurredAt)
		switch shift {
		case ShiftT1:
			return day.Add(time.Duration(ShiftT3.startHour()) * time.Hour)
		case ShiftT2:
			return day.AddDate(0, 0, 1)
		default:
			return day.AddDate(0, 0, 1).Add(time.Duration(ShiftT2.startHour()) * time.Hour)
		}
	default: // TI3
		// Four hours immobilised, then available at T1 three days out.
		return shared.Midnight(occurredAt).AddDate(0, 0, 3)
	}
}

func (i *Incident) ID() string {
	return i.id
}

func (i *Incident) VehicleID() string {
	return i.vehicleID
}

func (i *Incident) Type() IncidentType {
	return i.incidentTyp
}

func (i *Incident) Shift() Shift {
	return i.shift
}

func (i *Incident) OccurredAt() time.Time {
	return i.occurredAt
}

func (i *Incident) Location() shared.Position {
	return i.location
}

// AvailableAt returns the time the vehicle re-enters service.
func (i *Incident) AvailableAt() time.Time {
	return i.availableAt
}

// ImmobilisedUntil returns the end of the roadside immobilisation.
func (i *Incident) ImmobilisedUntil() time.Time {
	if i.incidentTyp == TI3 {
		return i.occurredAt.Add(4 * time.Hour)
	}
	return i.occurredAt.Add(2 * time.Hour)
}

// MustReturnToDepot reports whether the vehicle is towed back to a
// depot instead of continuing its route.
func (i *Incident) MustReturnToDepot() bool {
	return i.incidentTyp != TI1
}

// ResolvedAt reports whether the incident no longer holds the vehicle
// out of service at time t. True once t reaches the availability time
// or after an explicit resolve.
func (i *Incident) ResolvedAt(t time.Time) bool {
	if i.resolvedAt != nil && !t.Before(*i.resolvedAt) {
		return true
	}
	return !t.Before(i.availableAt)
}

// Resolve forces resolution at time t (repair command).
func (i *Incident) Resolve(t time.Time) {
	i.resolvedAt = &t
}

// CloneIncident returns an independent copy. Used by Environment.Clone.
func (i *Incident) CloneIncident() *Incident {
	clone := *i
	if i.resolvedAt != nil {
		t := *i.resolvedAt
		clone.resolvedAt = &t
	}
	return &clone
}

func (i *Incident) String() string {
	return fmt.Sprintf("Incident(id=%s, vehicle=%s, type=%s, shift=%s, available=%s)",
		i.id, i.vehicleID, i.incidentTyp, i.shift, shared.FormatTime(i.availableAt))
}
