package impedance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
)

func newCalculator(t *testing.T, d grid.Description) *Calculator {
	t.Helper()
	c, err := NewEquivalentCircuit(&d)
	require.NoError(t, err)
	return NewCalculator(d, c, nil)
}

func highVoltageOverhead() grid.Description {
	d := substationDirect()
	d.ConnectionClass = grid.HighVoltage
	d.SubstationDirect = false
	d.LineType = grid.LineOverhead
	return d
}

func TestSolveThreePhaseHighVoltage(t *testing.T) {
	calc := newCalculator(t, highVoltageOverhead())

	res := calc.Solve(fault.Test{
		ID: 1, Duration: 0.15, FaultType: fault.ThreePhaseSymmetric,
		ResidualVoltage: 0.15, Leg: fault.Local, Phases: 3, PreFaultVoltage: 0.95,
	})
	require.NoError(t, res.Err)
	require.NotNil(t, res.Impedance)

	assert.Equal(t, 75.0, res.Psif)
	assert.False(t, res.Doubled)
	assert.InDelta(t, 0.07759907281868718, res.Impedance.R, 1e-12)
	assert.InDelta(t, res.Impedance.R*math.Tan(75*math.Pi/180), res.Impedance.X, 1e-12)
}

func TestSolveUpstreamLeg(t *testing.T) {
	calc := newCalculator(t, substationDirect())

	res := calc.Solve(fault.Test{
		ID: 12, Duration: 0.967, ResidualVoltage: 0.75, Leg: fault.Upstream,
		Phases: 3, PreFaultVoltage: 0.95,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, 30.0, res.Psif)
	assert.InDelta(t, 0.37860023821792405, res.Impedance.R, 1e-12)
	assert.InDelta(t, 0.21858494945037488, res.Impedance.X, 1e-12)
}

func TestSolveSwitchingStepHasNoImpedance(t *testing.T) {
	calc := newCalculator(t, substationDirect())

	for _, uf := range []float64{1.0001, 1.05, 1.1, 1.15, 1.2} {
		for _, ft := range []fault.FaultType{fault.ThreePhaseSymmetric, fault.TwoPhaseOrSwitch, fault.SinglePhaseToEarth} {
			res := calc.Solve(fault.Test{ID: 9, FaultType: ft, ResidualVoltage: uf, Phases: 3, PreFaultVoltage: 1})
			assert.Nil(t, res.Impedance, "uf %g", uf)
			assert.NoError(t, res.Err)
			assert.Equal(t, fault.KindSwitchingStep, res.Kind)
		}
	}
}

func TestSolveDoublingRule(t *testing.T) {
	calc := newCalculator(t, substationDirect())
	base := fault.Test{ID: 1, ResidualVoltage: 0.325, Leg: fault.Local, PreFaultVoltage: 0.95}

	symmetric := base
	symmetric.Phases = 3
	symmetric.FaultType = fault.ThreePhaseSymmetric
	ref := calc.Solve(symmetric)
	require.NoError(t, ref.Err)
	assert.InDelta(t, 0.6361617893457009, ref.Impedance.R, 1e-12)

	tests := []struct {
		name    string
		ft      fault.FaultType
		phases  int
		doubled bool
	}{
		{"three phase", fault.ThreePhaseSymmetric, 3, false},
		{"two phase code on three phases", fault.TwoPhaseOrSwitch, 3, false},
		{"two phase", fault.TwoPhaseOrSwitch, 2, true},
		{"three phase code on two phases", fault.ThreePhaseSymmetric, 2, true},
		{"earth fault", fault.SinglePhaseToEarth, 1, false},
		{"earth fault on two phases", fault.SinglePhaseToEarth, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := base
			tc.FaultType = tt.ft
			tc.Phases = tt.phases

			res := calc.Solve(tc)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.doubled, res.Doubled)

			want := ref.Impedance.R
			if tt.doubled {
				want *= 2
			}
			assert.Equal(t, want, res.Impedance.R)
			assert.InDelta(t, want*math.Tan(30*math.Pi/180), res.Impedance.X, 1e-12)
		})
	}
}

func TestSolveZeroResidualVoltage(t *testing.T) {
	calc := newCalculator(t, highVoltageOverhead())

	res := calc.Solve(fault.Test{ID: 1, ResidualVoltage: 0, Phases: 3, PreFaultVoltage: 1})
	require.NoError(t, res.Err)
	assert.Equal(t, 0.0, res.Impedance.R)
	assert.Equal(t, 0.0, res.Impedance.X)
}

func TestSolveDomainErrors(t *testing.T) {
	calc := newCalculator(t, substationDirect())

	tests := []struct {
		name string
		tc   fault.Test
	}{
		{"uf equals uv", fault.Test{ID: 2, ResidualVoltage: 1.0, Phases: 3, PreFaultVoltage: 1.0}},
		{"uf above uv", fault.Test{ID: 3, ResidualVoltage: 0.98, Phases: 3, PreFaultVoltage: 0.95}},
		{"zero uv", fault.Test{ID: 4, ResidualVoltage: 0.5, Phases: 3, PreFaultVoltage: 0}},
		{"negative uf", fault.Test{ID: 5, ResidualVoltage: -0.1, Phases: 3, PreFaultVoltage: 1}},
		{"nan uv", fault.Test{ID: 6, ResidualVoltage: 0.5, Phases: 3, PreFaultVoltage: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := calc.Solve(tt.tc)
			require.Error(t, res.Err)
			assert.True(t, res.Failed())
			assert.Nil(t, res.Impedance)
			assert.True(t, errors.Is(res.Err, ErrFaultImpedanceDomain))

			var de *DomainError
			require.True(t, errors.As(res.Err, &de))
			assert.Equal(t, tt.tc.ID, de.TestID)
		})
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	d := withTransformer()
	catalog, err := fault.Standard(fault.Key{Standard: fault.StandardMV, Type: 1})
	require.NoError(t, err)

	first := newCalculator(t, d)
	second := newCalculator(t, d)
	assert.Equal(t, first.Circuit(), second.Circuit())

	for _, tc := range catalog.All() {
		assert.Equal(t, first.Solve(tc), second.Solve(tc), "test %d", tc.ID)
	}
}

func TestSolveStandardCatalogs(t *testing.T) {
	calc := newCalculator(t, highVoltageOverhead())

	for _, key := range fault.Keys() {
		catalog, err := fault.Standard(key)
		require.NoError(t, err)

		for _, tc := range catalog.All() {
			res := calc.Solve(tc)
			assert.NoError(t, res.Err, "%s test %d", key, tc.ID)
			if tc.ResidualVoltage > 1 {
				assert.Nil(t, res.Impedance)
			} else {
				require.NotNil(t, res.Impedance, "%s test %d", key, tc.ID)
				assert.GreaterOrEqual(t, res.Impedance.R, 0.0)
			}
		}
	}
}
