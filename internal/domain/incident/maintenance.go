package incident

import (
	"fmt"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
)

// DefaultRepeatMonths is the preventive maintenance cadence.
const DefaultRepeatMonths = 2

// Maintenance entity - a scheduled full-day preventive maintenance
// window for one vehicle, repeating bimonthly.
type Maintenance struct {
	vehicleID    string
	start        time.Time // midnight of the maintenance date
	end          time.Time // 23:59:59 of the same date
	repeatMonths int
}

// NewMaintenance creates a maintenance window covering the whole day
// of date.
func NewMaintenance(vehicleID string, date time.Time) (*Maintenance, error) {
	if vehicleID == "" {
		return nil, shared.NewValidationError("vehicle_id", "cannot be empty")
	}
	return &Maintenance{
		vehicleID:    vehicleID,
		start:        shared.Midnight(date),
		end:          shared.EndOfDay(date),
		repeatMonths: DefaultRepeatMonths,
	}, nil
}

func (m *Maintenance) VehicleID() string {
	return m.vehicleID
}

func (m *Maintenance) Start() time.Time {
	return m.start
}

func (m *Maintenance) End() time.Time {
	return m.end
}

func (m *Maintenance) RepeatMonths() int {
	return m.repeatMonths
}

// ActiveAt reports whether the window covers t, inclusive.
func (m *Maintenance) ActiveAt(t time.Time) bool {
	return !t.Before(m.start) && !t.After(m.end)
}

// CreateNext yields the follow-up window for the same vehicle,
// repeatMonths later.
func (m *Maintenance) CreateNext() *Maintenance {
	next := m.start.AddDate(0, m.repeatMonths, 0)
	return &Maintenance{
		vehicleID:    m.vehicleID,
		start:        shared.Midnight(next),
		end:          shared.EndOfDay(next),
		repeatMonths: m.repeatMonths,
	}
}

// CloneMaintenance returns an independent copy.
func (m *Maintenance) CloneMaintenance() *Maintenance {
	clone := *m
	return &clone
}

func (m *Maintenance) String() string {
	return fmt.Sprintf("Maintenance(vehicle=%s, day=%s)", m.vehicleID, m.start.Format("2006-01-02"))
}
