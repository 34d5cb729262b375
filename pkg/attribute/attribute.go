// Package attribute provides the raw project attribute mapping consumed by
// the grid-data resolver, and the sources it is read from: typed database
// rows, YAML files and the project attribute database.
package attribute

import (
	"context"
	"sort"
)

// Set maps attribute shortnames to raw values. Values are strings (possibly
// with a decimal comma), integers, floats, booleans, times or nil.
type Set map[string]any

// Lookup returns the value stored under key. A nil value counts as absent.
func (s Set) Lookup(key string) (any, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Keys returns the attribute names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Source loads the attribute set of a project.
type Source interface {
	Load(ctx context.Context, project string) (Set, error)
}

// Keys names the attributes the resolver reads.
type Keys struct {
	AgreedVoltage      string `yaml:"agreed_voltage"`
	NominalVoltage     string `yaml:"nominal_voltage"`
	ShortCircuitPower  string `yaml:"short_circuit_power"`
	ImpedanceAngle     string `yaml:"impedance_angle"`
	ConnectionClass    string `yaml:"connection_class"`
	TransformerR       string `yaml:"transformer_r"`
	TransformerX       string `yaml:"transformer_x"`
	ControlledSetpoint string `yaml:"controlled_setpoint"`
	StarPoint          string `yaml:"star_point"`
	StarPointImpedance string `yaml:"star_point_impedance"`
	LineType           string `yaml:"line_type"`
}

// DefaultKeys returns the shortnames used by the project attribute database.
func DefaultKeys() Keys {
	return Keys{
		AgreedVoltage:      "zUckVnb",
		NominalVoltage:     "zUnkVnb",
		ShortCircuitPower:  "zSkkVAnb",
		ImpedanceAngle:     "zYkGradNB",
		ConnectionClass:    "sAnschlussartEZEnb",
		TransformerR:       "zRnetzOhmNB",
		TransformerX:       "zXnetzOhmNB",
		ControlledSetpoint: "zUsollkVnb",
		StarPoint:          "sSPEnapNB",
		StarPointImpedance: "zImpSPEnb",
		LineType:           "sArtVNetzNB",
	}
}

// Merge fills empty fields of k from defaults.
func (k Keys) Merge(defaults Keys) Keys {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&k.AgreedVoltage, defaults.AgreedVoltage)
	fill(&k.NominalVoltage, defaults.NominalVoltage)
	fill(&k.ShortCircuitPower, defaults.ShortCircuitPower)
	fill(&k.ImpedanceAngle, defaults.ImpedanceAngle)
	fill(&k.ConnectionClass, defaults.ConnectionClass)
	fill(&k.TransformerR, defaults.TransformerR)
	fill(&k.TransformerX, defaults.TransformerX)
	fill(&k.ControlledSetpoint, defaults.ControlledSetpoint)
	fill(&k.StarPoint, defaults.StarPoint)
	fill(&k.StarPointImpedance, defaults.StarPointImpedance)
	fill(&k.LineType, defaults.LineType)
	return k
}

// Names lists all configured attribute names.
func (k Keys) Names() []string {
	return []string{
		k.AgreedVoltage, k.NominalVoltage, k.ShortCircuitPower, k.ImpedanceAngle,
		k.ConnectionClass, k.TransformerR, k.TransformerX, k.ControlledSetpoint,
		k.StarPoint, k.StarPointImpedance, k.LineType,
	}
}
