package impedance

import (
	"fmt"
	"math"

	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
)

const (
	// UpstreamSourceShare is the share of the network impedance assigned to
	// the upstream source; the rest is the series reactor.
	UpstreamSourceShare = 0.1

	// StarPointFallbackOhm replaces 3*Zspe when no star-point impedance is
	// known under low-impedance earthing.
	StarPointFallbackOhm = 30.0
)

// CompensatedZeroSequence is the zero-sequence impedance used for isolated,
// resonant and unspecified star-point treatment.
var CompensatedZeroSequence = grid.Impedance{R: 20, X: 15000}

// Network is the total network impedance at the connection point.
type Network struct {
	Z float64 `json:"z" cbor:"1,keyasint"`
	R float64 `json:"r" cbor:"2,keyasint"`
	X float64 `json:"x" cbor:"3,keyasint"`
}

// Leg is one branch of the equivalent circuit: a voltage source with
// internal impedance followed by a series reactor.
type Leg struct {
	Source grid.Impedance `json:"source" cbor:"1,keyasint"`
	Series grid.Impedance `json:"series" cbor:"2,keyasint"`
}

// Total returns source plus series impedance.
func (l Leg) Total() grid.Impedance {
	return grid.Impedance{R: l.Source.R + l.Series.R, X: l.Source.X + l.Series.X}
}

// EquivalentCircuit holds the grid parameters shared by every test of a run.
// It is computed once and must not be modified afterwards.
type EquivalentCircuit struct {
	Network      Network        `json:"network" cbor:"1,keyasint"`
	Local        Leg            `json:"local" cbor:"2,keyasint"`
	Upstream     Leg            `json:"upstream" cbor:"3,keyasint"`
	ZeroSequence grid.Impedance `json:"zeroSequence" cbor:"4,keyasint"`
}

// Leg returns the branch a fault on the given leg is computed against.
func (c *EquivalentCircuit) Leg(l fault.GridLeg) Leg {
	if l == fault.Upstream {
		return c.Upstream
	}
	return c.Local
}

// NewEquivalentCircuit computes the equivalent circuit of a resolved grid
// description.
func NewEquivalentCircuit(d *grid.Description) (*EquivalentCircuit, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid description: %w", err)
	}

	c := &EquivalentCircuit{Network: NetworkImpedance(d)}
	r, x := c.Network.R, c.Network.X

	c.Upstream = Leg{
		Source: grid.Impedance{
			R: Round(UpstreamSourceShare*r, LegPlaces),
			X: Round(UpstreamSourceShare*x, LegPlaces),
		},
		Series: grid.Impedance{
			R: Round((1-UpstreamSourceShare)*r, LegPlaces),
			X: Round((1-UpstreamSourceShare)*x, LegPlaces),
		},
	}

	if d.UsesTransformer() {
		t := *d.Transformer
		c.Local = Leg{
			Source: t,
			Series: grid.Impedance{
				R: Round(r-t.R, LegPlaces),
				X: Round(x-t.X, LegPlaces),
			},
		}
	} else {
		c.Local = Leg{Source: grid.Impedance{R: r, X: x}}
	}

	c.ZeroSequence = zeroSequence(d, c.Local.Source)
	return c, nil
}

// NetworkImpedance computes Z = Un^2*1000/Sk and its split by the impedance
// angle, each rounded to NetworkPlaces.
func NetworkImpedance(d *grid.Description) Network {
	z := Round(d.NominalVoltageKV*d.NominalVoltageKV*1000/d.ShortCircuitPowerKVA, NetworkPlaces)
	rad := radians(d.ImpedanceAngleDeg)
	return Network{
		Z: z,
		R: Round(z*math.Cos(rad), NetworkPlaces),
		X: Round(z*math.Sin(rad), NetworkPlaces),
	}
}

func zeroSequence(d *grid.Description, local grid.Impedance) grid.Impedance {
	switch d.StarPoint {
	case grid.SolidEarthing:
		return local
	case grid.LowImpedanceEarthing, grid.TemporaryLowImpedanceEarthing:
		add := StarPointFallbackOhm
		if d.StarPointImpedance != nil {
			add = 3 * *d.StarPointImpedance
		}
		return grid.Impedance{R: Round(add+local.R, ZeroSequencePlaces)}
	default:
		return CompensatedZeroSequence
	}
}
