package fault

import (
	"fmt"
	"strings"
)

// FaultType is the fault type code of a test definition.
type FaultType uint8

const (
	// ThreePhaseSymmetric is a symmetrical three-phase short circuit.
	ThreePhaseSymmetric FaultType = 0

	// TwoPhaseOrSwitch is a two-phase short circuit, or a voltage-step
	// switching event when the residual voltage exceeds 1 p.u.
	TwoPhaseOrSwitch FaultType = 1

	// SinglePhaseToEarth is a single-phase-to-earth short circuit.
	SinglePhaseToEarth FaultType = 2
)

// String returns the fault type name.
func (f FaultType) String() string {
	switch f {
	case ThreePhaseSymmetric:
		return "three-phase"
	case TwoPhaseOrSwitch:
		return "two-phase-or-switch"
	case SinglePhaseToEarth:
		return "single-phase-earth"
	default:
		return fmt.Sprintf("FaultType(%d)", uint8(f))
	}
}

// Valid reports whether f is one of the defined fault types.
func (f FaultType) Valid() bool {
	return f <= SinglePhaseToEarth
}

// GridLeg selects the equivalent-circuit branch a fault is applied to.
type GridLeg uint8

const (
	// Local is the grid the plant is connected to.
	Local GridLeg = iota

	// Upstream is the superordinate grid behind the supplying transformer.
	Upstream
)

// String returns the leg name.
func (g GridLeg) String() string {
	switch g {
	case Local:
		return "local"
	case Upstream:
		return "upstream"
	default:
		return fmt.Sprintf("GridLeg(%d)", uint8(g))
	}
}

// MarshalText encodes the leg by name.
func (g GridLeg) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// ParseGridLeg parses a leg label. Both the English names and the single
// letter codes of the grid-code tables ("g" same grid, "v" upstream) are
// accepted.
func ParseGridLeg(s string) (GridLeg, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "g", "gleich":
		return Local, nil
	case "upstream", "v", "vorg", "vorgelagert":
		return Upstream, nil
	}
	return 0, fmt.Errorf("unknown grid leg %q", s)
}

// ReactivePowerMode is the reactive power operating point before the fault.
type ReactivePowerMode uint8

const (
	// ReactiveZero operates the plant at 0 kvar at the connection point.
	ReactiveZero ReactivePowerMode = iota

	// ReactiveUnderexcited operates the plant at maximum underexcited
	// reactive power.
	ReactiveUnderexcited

	// ReactiveOverexcited operates the plant at maximum overexcited
	// reactive power.
	ReactiveOverexcited

	// ReactiveUnspecified marks an unknown label; it is operated like
	// ReactiveZero.
	ReactiveUnspecified
)

// String returns the mode name.
func (m ReactivePowerMode) String() string {
	switch m {
	case ReactiveZero:
		return "zero"
	case ReactiveUnderexcited:
		return "underexcited"
	case ReactiveOverexcited:
		return "overexcited"
	default:
		return "unspecified"
	}
}

// MarshalText encodes the mode by name.
func (m ReactivePowerMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseReactivePowerMode parses a reactive power label. Unknown labels map
// to ReactiveUnspecified; the boolean reports whether the label was known.
func ParseReactivePowerMode(s string) (ReactivePowerMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "zero":
		return ReactiveZero, true
	case "underexcited", "untererregt":
		return ReactiveUnderexcited, true
	case "overexcited", "uebererregt", "übererregt":
		return ReactiveOverexcited, true
	}
	return ReactiveUnspecified, false
}

// Test is one fault-ride-through test definition. Tests are values and are
// never modified once appended to a catalog.
type Test struct {
	// ID is the test number within its catalog.
	ID int `json:"id"`

	// Duration is the fault duration in seconds.
	Duration float64 `json:"duration"`

	// FaultType is the fault type code.
	FaultType FaultType `json:"faultType"`

	// ResidualVoltage is the voltage remaining during the fault in p.u. of
	// the agreed supply voltage. Values above 1 denote a switching test.
	ResidualVoltage float64 `json:"residualVoltage"`

	// Leg is the equivalent-circuit branch the fault is applied to.
	Leg GridLeg `json:"leg"`

	// ReactivePower is the pre-fault reactive power operating point.
	ReactivePower ReactivePowerMode `json:"reactivePower"`

	// Phases is the number of phases involved (1, 2 or 3).
	Phases int `json:"phases"`

	// PreFaultVoltage is the multiplier applied to the pre-fault voltage
	// setpoint in p.u.
	PreFaultVoltage float64 `json:"preFaultVoltage"`
}

// Validate checks the value ranges of a test definition.
func (t Test) Validate() error {
	switch {
	case t.ID <= 0:
		return fmt.Errorf("test %d: id must be positive", t.ID)
	case t.Duration < 0:
		return fmt.Errorf("test %d: duration must not be negative", t.ID)
	case !t.FaultType.Valid():
		return fmt.Errorf("test %d: invalid fault type %d", t.ID, uint8(t.FaultType))
	case t.Phases < 1 || t.Phases > 3:
		return fmt.Errorf("test %d: phase count %d out of range 1..3", t.ID, t.Phases)
	case t.Leg != Local && t.Leg != Upstream:
		return fmt.Errorf("test %d: invalid grid leg %d", t.ID, uint8(t.Leg))
	}
	return nil
}

// Symmetric reports whether all three phases are involved.
func (t Test) Symmetric() bool {
	return t.Phases == 3
}

func (t Test) String() string {
	return fmt.Sprintf("Test %02d: %s, %.3f s, uf=%.3f p.u., uv=%.2f p.u., %s leg, %d phases, Q %s",
		t.ID, t.Kind(), t.Duration, t.ResidualVoltage, t.PreFaultVoltage, t.Leg, t.Phases, t.ReactivePower)
}
