package config

import "time"

// SimulationConfig drives the tick loop.
type SimulationConfig struct {
	// StartTime anchors the simulated clock, formatted as
	// "2006-01-02 15:04:05". Empty starts at the current wall time.
	StartTime string `mapstructure:"start_time"`

	// TickStep is the simulated time one tick covers.
	TickStep time.Duration `mapstructure:"tick_step"`

	// SpeedMs is the wall-clock pause between ticks, in milliseconds.
	SpeedMs int `mapstructure:"speed_ms" validate:"omitempty,min=50,max=10000"`

	// ReplanInterval is the minimum simulated time between
	// change-triggered replans.
	ReplanInterval time.Duration `mapstructure:"replan_interval"`

	// TicksPerReplan forces a replan every n ticks.
	TicksPerReplan int `mapstructure:"ticks_per_replan" validate:"min=0"`

	// DurationDays limits the run; zero runs until stopped.
	DurationDays int `mapstructure:"duration_days" validate:"min=0"`

	// Scenario file paths. Empty paths skip that input.
	OrdersFile      string `mapstructure:"orders_file"`
	BlockagesFile   string `mapstructure:"blockages_file"`
	MaintenanceFile string `mapstructure:"maintenance_file"`
	IncidentsFile   string `mapstructure:"incidents_file"`
}
