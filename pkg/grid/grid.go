// Package grid resolves raw project attributes into a validated, typed
// description of the grid connection point.
//
// Required quantities (voltages, short-circuit power, impedance angle) must
// be present and numeric. Every other attribute has a documented fallback;
// each substitution is logged and returned as a Default so it can be audited
// after the run.
package grid

import (
	"fmt"
	"math"
)

// ConnectionClass is the voltage level the plant is connected to.
type ConnectionClass uint8

const (
	// ConnectionUnknown is the zero value. The resolver never returns it.
	ConnectionUnknown ConnectionClass = iota

	// MediumVoltage is a connection in the medium-voltage grid.
	MediumVoltage

	// MediumVoltageSubstationDirect is a medium-voltage connection directly
	// at the busbar of the supplying substation.
	MediumVoltageSubstationDirect

	// HighVoltage is a connection in the high-voltage grid.
	HighVoltage
)

// MarshalText encodes the value by name.
func (c ConnectionClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c ConnectionClass) String() string {
	switch c {
	case MediumVoltage:
		return "medium-voltage"
	case MediumVoltageSubstationDirect:
		return "medium-voltage-substation-direct"
	case HighVoltage:
		return "high-voltage"
	default:
		return "unknown"
	}
}

// StarPointTreatment is the neutral earthing method of the local grid.
type StarPointTreatment uint8

const (
	StarPointUnspecified StarPointTreatment = iota
	SolidEarthing
	ResonantEarthing
	Isolated
	LowImpedanceEarthing
	TemporaryLowImpedanceEarthing
)

// MarshalText encodes the value by name.
func (s StarPointTreatment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s StarPointTreatment) String() string {
	switch s {
	case SolidEarthing:
		return "solid"
	case ResonantEarthing:
		return "resonant"
	case Isolated:
		return "isolated"
	case LowImpedanceEarthing:
		return "low-impedance"
	case TemporaryLowImpedanceEarthing:
		return "temporary-low-impedance"
	default:
		return "unspecified"
	}
}

// LowImpedance reports whether the treatment earths the star point through
// a (possibly temporary) low impedance.
func (s StarPointTreatment) LowImpedance() bool {
	return s == LowImpedanceEarthing || s == TemporaryLowImpedanceEarthing
}

// LineType is the predominant line type of the upstream grid.
type LineType uint8

const (
	LineUnknown LineType = iota
	LineMixed
	LineOverhead
	LineCable
)

// MarshalText encodes the value by name.
func (l LineType) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l LineType) String() string {
	switch l {
	case LineMixed:
		return "mixed"
	case LineOverhead:
		return "overhead"
	case LineCable:
		return "cable"
	default:
		return "unknown"
	}
}

// Impedance is a resistance/reactance pair in Ohm.
type Impedance struct {
	R float64 `json:"r" cbor:"1,keyasint"`
	X float64 `json:"x" cbor:"2,keyasint"`
}

func (z Impedance) String() string {
	return fmt.Sprintf("%g+j%g Ohm", z.R, z.X)
}

// Description is the resolved grid connection data of one project.
// It is computed once per run and not modified afterwards.
type Description struct {
	NominalVoltageKV     float64 `json:"nominalVoltageKV"`
	AgreedVoltageKV      float64 `json:"agreedVoltageKV"`
	ShortCircuitPowerKVA float64 `json:"shortCircuitPowerKVA"`
	ImpedanceAngleDeg    float64 `json:"impedanceAngleDeg"`

	ConnectionClass ConnectionClass `json:"connectionClass"`

	// SubstationDirect is set for substation-direct connections and for
	// medium-voltage connections without usable transformer data.
	SubstationDirect bool `json:"substationDirect"`

	// Transformer is the upstream transformer impedance. Only set for
	// medium-voltage connections that are not substation-direct.
	Transformer *Impedance `json:"transformer,omitempty"`

	// ControlledSetpointKV is only set for high-voltage or substation-direct
	// connections.
	ControlledSetpointKV *float64 `json:"controlledSetpointKV,omitempty"`

	StarPoint          StarPointTreatment `json:"starPoint"`
	StarPointImpedance *float64           `json:"starPointImpedance,omitempty"`

	LineType LineType `json:"lineType"`
}

// HighVoltage reports a high-voltage connection.
func (d *Description) HighVoltage() bool {
	return d.ConnectionClass == HighVoltage
}

// MediumVoltage reports a medium-voltage connection, substation-direct or not.
func (d *Description) MediumVoltage() bool {
	return d.ConnectionClass == MediumVoltage || d.ConnectionClass == MediumVoltageSubstationDirect
}

// UsesTransformer reports whether the local leg is split at the upstream
// transformer impedance.
func (d *Description) UsesTransformer() bool {
	return d.MediumVoltage() && !d.SubstationDirect && d.Transformer != nil
}

// Validate checks the required quantities of a description built by hand.
func (d *Description) Validate() error {
	check := func(name string, v float64, positive bool) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not finite", name)
		}
		if positive && v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", name, v)
		}
		return nil
	}
	if err := check("nominal voltage", d.NominalVoltageKV, true); err != nil {
		return err
	}
	if err := check("agreed voltage", d.AgreedVoltageKV, true); err != nil {
		return err
	}
	if err := check("short-circuit power", d.ShortCircuitPowerKVA, true); err != nil {
		return err
	}
	if err := check("impedance angle", d.ImpedanceAngleDeg, false); err != nil {
		return err
	}
	if (d.HighVoltage() || d.SubstationDirect) && d.ControlledSetpointKV == nil {
		return fmt.Errorf("controlled setpoint required for %s connection", d.ConnectionClass)
	}
	return nil
}
