package config

// WorldConfig describes the static geography and the fleet roster.
type WorldConfig struct {
	Grid   GridConfig    `mapstructure:"grid"`
	Depots []DepotConfig `mapstructure:"depots"`
	Fleet  []FleetGroup  `mapstructure:"fleet"`
}

// GridConfig is the city lattice size, in kilometres per cell.
type GridConfig struct {
	Width  int `mapstructure:"width" validate:"omitempty,min=1"`
	Height int `mapstructure:"height" validate:"omitempty,min=1"`
}

// DepotConfig describes one GLP depot.
type DepotConfig struct {
	ID         string  `mapstructure:"id" validate:"required"`
	X          int     `mapstructure:"x" validate:"min=0"`
	Y          int     `mapstructure:"y" validate:"min=0"`
	CapacityM3 float64 `mapstructure:"capacity_m3" validate:"min=0"`
	Main       bool    `mapstructure:"main"`
	Refuel     bool    `mapstructure:"refuel"`
}

// FleetGroup describes a batch of identical tankers. IDs are generated
// as <type><NN>, e.g. TA01, TA02.
type FleetGroup struct {
	Type    string  `mapstructure:"type" validate:"required,oneof=TA TB TC TD"`
	Count   int     `mapstructure:"count" validate:"min=1"`
	FuelGal float64 `mapstructure:"fuel_gal" validate:"omitempty,min=1"`
}
