package fault

// Kind is the resolved meaning of a test definition.
type Kind uint8

const (
	// KindThreePhaseShortCircuit is a symmetrical short circuit.
	KindThreePhaseShortCircuit Kind = iota

	// KindTwoPhaseShortCircuit is a two-phase short circuit without earth.
	KindTwoPhaseShortCircuit

	// KindSinglePhaseToEarth is a single-phase short circuit to earth.
	KindSinglePhaseToEarth

	// KindSwitchingStep is a voltage step produced by switching a step
	// source; there is no fault impedance.
	KindSwitchingStep
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindThreePhaseShortCircuit:
		return "three-phase short circuit"
	case KindTwoPhaseShortCircuit:
		return "two-phase short circuit"
	case KindSinglePhaseToEarth:
		return "single-phase-to-earth short circuit"
	case KindSwitchingStep:
		return "switching step"
	default:
		return "unknown"
	}
}

// ShortCircuit reports whether the kind requires a fault impedance.
func (k Kind) ShortCircuit() bool {
	return k != KindSwitchingStep
}

// Kind resolves the meaning of the test. A residual voltage above 1 p.u.
// always denotes a switching step, whatever the fault type code says.
func (t Test) Kind() Kind {
	if t.ResidualVoltage > 1 {
		return KindSwitchingStep
	}
	switch t.FaultType {
	case TwoPhaseOrSwitch:
		return KindTwoPhaseShortCircuit
	case SinglePhaseToEarth:
		return KindSinglePhaseToEarth
	default:
		return KindThreePhaseShortCircuit
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
