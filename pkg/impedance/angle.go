package impedance

import (
	"math"

	"github.com/gridcode-frt/frt-go/pkg/grid"
)

// radians converts degrees as deg * (pi/180), one multiplication by the
// rounded factor. (deg*pi)/180 differs in the last bit for many angles,
// and that bit can move a rounded network impedance.
func radians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// FaultAngle returns the fault impedance angle Psif in degrees for a
// connection class and upstream line type.
func FaultAngle(class grid.ConnectionClass, line grid.LineType) float64 {
	overhead := line == grid.LineOverhead
	switch class {
	case grid.HighVoltage:
		if overhead {
			return 75
		}
		return 70
	case grid.MediumVoltage, grid.MediumVoltageSubstationDirect:
		if overhead {
			return 50
		}
		return 30
	default:
		return 30
	}
}
