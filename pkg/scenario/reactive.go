package scenario

import (
	"strings"

	"github.com/gridcode-frt/frt-go/pkg/fault"
)

// ControlledReactiveRatio is the Q/P ratio requested from controlled units.
const ControlledReactiveRatio = 0.33

// Generator is one generating unit type of the plant model.
type Generator struct {
	Name string `yaml:"name" json:"name"`

	// ActivePowerMW is the active power of one unit.
	ActivePowerMW float64 `yaml:"p_mw" json:"activePowerMW"`

	// ReactivePowerMvar is the configured reactive power of one unit. It is
	// used for units that do not join the plant controller.
	ReactivePowerMvar float64 `yaml:"q_mvar" json:"reactivePowerMvar"`

	// Count is the number of parallel units.
	Count int `yaml:"count" json:"count"`
}

// Controlled reports whether the unit joins the plant controller. Current
// units are marked by "bdew" or "neu" in their name.
func (g Generator) Controlled() bool {
	name := strings.ToLower(g.Name)
	return strings.Contains(name, "bdew") || strings.Contains(name, "neu")
}

// reactiveSign returns +1 for underexcited, -1 for overexcited and 0 for
// any other mode.
func reactiveSign(m fault.ReactivePowerMode) float64 {
	switch m {
	case fault.ReactiveUnderexcited:
		return 1
	case fault.ReactiveOverexcited:
		return -1
	default:
		return 0
	}
}

// ReactivePowerSetpoint computes the plant controller setpoint in Mvar and
// the names of the units joining the controller. For zero or unspecified
// reactive power the setpoint is 0 and no unit is listed.
func ReactivePowerSetpoint(mode fault.ReactivePowerMode, gens []Generator) (float64, []string) {
	sign := reactiveSign(mode)
	if sign == 0 {
		return 0, nil
	}

	var q float64
	var controlled []string
	for _, g := range gens {
		n := float64(g.Count)
		if g.Controlled() {
			q += g.ActivePowerMW * n * ControlledReactiveRatio * sign
			controlled = append(controlled, g.Name)
		} else {
			q += g.ReactivePowerMvar * n
		}
	}
	return q, controlled
}
