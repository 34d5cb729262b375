package scenario

import (
	"github.com/gridcode-frt/frt-go/pkg/grid"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
)

// SourceSettings parametrizes the voltage source of one leg.
type SourceSettings struct {
	NominalVoltageKV float64        `json:"nominalVoltageKV"`
	Setpoint         float64        `json:"setpoint"`
	Positive         grid.Impedance `json:"positive"`
	Negative         grid.Impedance `json:"negative"`
	Zero             grid.Impedance `json:"zero"`
}

// SeriesSettings parametrizes the series reactor of one leg.
type SeriesSettings struct {
	NominalVoltageKV float64        `json:"nominalVoltageKV"`
	Impedance        grid.Impedance `json:"impedance"`
}

// LegSettings groups source and series reactor of one leg.
type LegSettings struct {
	Source SourceSettings `json:"source"`
	Series SeriesSettings `json:"series"`
}

// GridSettings holds the settings of both legs.
type GridSettings struct {
	Local    LegSettings `json:"local"`
	Upstream LegSettings `json:"upstream"`
}

// SourceSetpoint returns the voltage source setpoint Uc/Un in p.u.,
// rounded to 3 places.
func SourceSetpoint(d *grid.Description) float64 {
	return impedance.Round(d.AgreedVoltageKV/d.NominalVoltageKV, 3)
}

// NewGridSettings derives the element settings from a grid description and
// its equivalent circuit. Both legs share the zero-sequence impedance.
func NewGridSettings(d *grid.Description, c *impedance.EquivalentCircuit) GridSettings {
	leg := func(l impedance.Leg) LegSettings {
		return LegSettings{
			Source: SourceSettings{
				NominalVoltageKV: d.NominalVoltageKV,
				Setpoint:         SourceSetpoint(d),
				Positive:         l.Source,
				Negative:         l.Source,
				Zero:             c.ZeroSequence,
			},
			Series: SeriesSettings{
				NominalVoltageKV: d.NominalVoltageKV,
				Impedance:        l.Series,
			},
		}
	}
	return GridSettings{
		Local:    leg(c.Local),
		Upstream: leg(c.Upstream),
	}
}
