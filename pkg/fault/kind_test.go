package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestKind(t *testing.T) {
	tests := []struct {
		name string
		ft   FaultType
		uf   float64
		want Kind
	}{
		{"three phase", ThreePhaseSymmetric, 0.25, KindThreePhaseShortCircuit},
		{"two phase", TwoPhaseOrSwitch, 0.5, KindTwoPhaseShortCircuit},
		{"two phase at 1 pu", TwoPhaseOrSwitch, 1.0, KindTwoPhaseShortCircuit},
		{"switch above 1 pu", TwoPhaseOrSwitch, 1.15, KindSwitchingStep},
		{"earth fault", SinglePhaseToEarth, 0.025, KindSinglePhaseToEarth},
		{"earth code above 1 pu", SinglePhaseToEarth, 1.1, KindSwitchingStep},
		{"three phase above 1 pu", ThreePhaseSymmetric, 1.2, KindSwitchingStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := Test{ID: 1, FaultType: tt.ft, ResidualVoltage: tt.uf, Phases: 3}
			assert.Equal(t, tt.want, tc.Kind())
			assert.Equal(t, tt.want != KindSwitchingStep, tc.Kind().ShortCircuit())
		})
	}
}

func TestParseGridLeg(t *testing.T) {
	for in, want := range map[string]GridLeg{
		"g": Local, "local": Local, " V ": Upstream, "upstream": Upstream,
	} {
		got, err := ParseGridLeg(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGridLeg("x")
	assert.Error(t, err)
}

func TestParseReactivePowerMode(t *testing.T) {
	tests := []struct {
		in    string
		want  ReactivePowerMode
		known bool
	}{
		{"0", ReactiveZero, true},
		{"untererregt", ReactiveUnderexcited, true},
		{"Overexcited", ReactiveOverexcited, true},
		{"uebererregt", ReactiveOverexcited, true},
		{"untererreg", ReactiveUnspecified, false},
		{"", ReactiveUnspecified, false},
	}
	for _, tt := range tests {
		got, known := ParseReactivePowerMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.known, known, tt.in)
	}
}

func TestTestValidate(t *testing.T) {
	valid := Test{ID: 1, Duration: 0.15, Phases: 3, PreFaultVoltage: 1}
	assert.NoError(t, valid.Validate())

	bad := []Test{
		{ID: 0, Phases: 3},
		{ID: 1, Duration: -1, Phases: 3},
		{ID: 1, Phases: 0},
		{ID: 1, Phases: 4},
		{ID: 1, Phases: 3, FaultType: 3},
		{ID: 1, Phases: 3, Leg: 2},
	}
	for _, tc := range bad {
		assert.Error(t, tc.Validate(), "%+v", tc)
	}
}
