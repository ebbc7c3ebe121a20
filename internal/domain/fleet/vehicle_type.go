package fleet

import "fmt"

// GLPDensityTonsPerM3 converts GLP volume to weight. Constant across
// all tanker types.
const GLPDensityTonsPerM3 = 0.5

// VehicleType identifies one of the four tanker classes of the fleet.
type VehicleType string

const (
	TypeTA VehicleType = "TA"
	TypeTB VehicleType = "TB"
	TypeTC VehicleType = "TC"
	TypeTD VehicleType = "TD"
)

// typeSpec holds the fixed physical parameters of a tanker class.
type typeSpec struct {
	capacityM3  float64 // GLP capacity
	tareTons    float64 // empty vehicle weight
	fullGLPTons float64 // GLP weight when loaded to capacity
}

var typeSpecs = map[VehicleType]typeSpec{
	TypeTA: {capacityM3: 25, tareTons: 2.5, fullGLPTons: 12.5},
	TypeTB: {capacityM3: 15, tareTons: 2.0, fullGLPTons: 7.5},
	TypeTC: {capacityM3: 10, tareTons: 1.5, fullGLPTons: 5.0},
	TypeTD: {capacityM3: 5, tareTons: 1.0, fullGLPTons: 2.5},
}

// ParseVehicleType validates and converts a string tag.
func ParseVehicleType(s string) (VehicleType, error) {
	vt := VehicleType(s)
	if _, ok := typeSpecs[vt]; !ok {
		return "", fmt.Errorf("unknown vehicle type: %q", s)
	}
	return vt, nil
}

// CapacityM3 returns the GLP capacity of the type in cubic metres.
func (t VehicleType) CapacityM3() float64 {
	return typeSpecs[t].capacityM3
}

// TareTons returns the empty weight of the type in tons.
func (t VehicleType) TareTons() float64 {
	return typeSpecs[t].tareTons
}

// FullGLPTons returns the weight of a full GLP load in tons.
func (t VehicleType) FullGLPTons() float64 {
	return typeSpecs[t].fullGLPTons
}

// IsValid reports whether the type is one of TA, TB, TC, TD.
func (t VehicleType) IsValid() bool {
	_, ok := typeSpecs[t]
	return ok
}

func (t VehicleType) String() string {
	return string(t)
}
