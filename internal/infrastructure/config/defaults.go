package config

import "time"

// SetDefaults sets default values for all configuration fields. World
// defaults follow the reference scenario: a 70x50 grid, the main plant
// plus two intermediate depots, and a 20-tanker fleet.
func SetDefaults(cfg *Config) {
	// World defaults
	if cfg.World.Grid.Width == 0 {
		cfg.World.Grid.Width = 70
	}
	if cfg.World.Grid.Height == 0 {
		cfg.World.Grid.Height = 50
	}
	if len(cfg.World.Depots) == 0 {
		cfg.World.Depots = []DepotConfig{
			{ID: "PLANT", X: 12, Y: 8, CapacityM3: 0, Main: true, Refuel: true},
			{ID: "NORTH", X: 42, Y: 42, CapacityM3: 160, Refuel: true},
			{ID: "EAST", X: 63, Y: 3, CapacityM3: 160, Refuel: true},
		}
	}
	if len(cfg.World.Fleet) == 0 {
		cfg.World.Fleet = []FleetGroup{
			{Type: "TA", Count: 2},
			{Type: "TB", Count: 4},
			{Type: "TC", Count: 4},
			{Type: "TD", Count: 10},
		}
	}
	for i := range cfg.World.Fleet {
		if cfg.World.Fleet[i].FuelGal == 0 {
			cfg.World.Fleet[i].FuelGal = 25
		}
	}

	// Simulation defaults
	if cfg.Simulation.TickStep == 0 {
		cfg.Simulation.TickStep = 5 * time.Minute
	}
	if cfg.Simulation.SpeedMs == 0 {
		cfg.Simulation.SpeedMs = 1000
	}
	if cfg.Simulation.ReplanInterval == 0 {
		cfg.Simulation.ReplanInterval = 15 * time.Minute
	}
	if cfg.Simulation.TicksPerReplan == 0 {
		cfg.Simulation.TicksPerReplan = 12
	}

	// Solver defaults
	if cfg.Solver.Alpha == 0 {
		cfg.Solver.Alpha = 0.6
	}
	if cfg.Solver.Beta == 0 {
		cfg.Solver.Beta = 0.3
	}
	if cfg.Solver.Gamma == 0 {
		cfg.Solver.Gamma = 0.1
	}
	if cfg.Solver.LatePenaltyPerHour == 0 {
		cfg.Solver.LatePenaltyPerHour = 500
	}
	if cfg.Solver.UndeliveredPenalty == 0 {
		cfg.Solver.UndeliveredPenalty = 10_000
	}
	if cfg.Solver.DistanceCostPerUnit == 0 {
		cfg.Solver.DistanceCostPerUnit = 10
	}
	if cfg.Solver.AllowPartialDelivery == nil {
		allow := true
		cfg.Solver.AllowPartialDelivery = &allow
	}
	if cfg.Solver.Budget == 0 {
		cfg.Solver.Budget = 30 * time.Second
	}

	// API defaults
	if cfg.API.Address == "" {
		cfg.API.Address = "localhost:8080"
	}
	if cfg.API.ReadTimeout == 0 {
		cfg.API.ReadTimeout = 15 * time.Second
	}
	if cfg.API.WriteTimeout == 0 {
		cfg.API.WriteTimeout = 15 * time.Second
	}
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 20
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 40
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "glpfleet.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "glpfleet"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "glpfleet"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/glpfleet-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
