package impedance

import (
	"log/slog"
	"math"

	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
)

// Result is the outcome of the per-fault stage for one test.
type Result struct {
	Test fault.Test `json:"test"`
	Kind fault.Kind `json:"kind"`

	// Psif is the fault impedance angle in degrees.
	Psif float64 `json:"psif"`

	// Impedance is the fault impedance (Rf, Xf). It is nil for switching
	// steps and failed tests.
	Impedance *grid.Impedance `json:"impedance,omitempty"`

	// Doubled is set when the unsymmetrical-fault doubling was applied.
	Doubled bool `json:"doubled,omitempty"`

	// Err is a *DomainError if the impedance could not be computed.
	Err error `json:"-"`
}

// Failed reports whether the test could not be computed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Calculator runs the per-fault stage against a fixed grid description and
// equivalent circuit. It holds no mutable state and is safe for concurrent
// use.
type Calculator struct {
	desc    grid.Description
	circuit *EquivalentCircuit
	logger  *slog.Logger
}

// NewCalculator creates a calculator. If logger is nil, logging is disabled.
func NewCalculator(d grid.Description, c *EquivalentCircuit, logger *slog.Logger) *Calculator {
	return &Calculator{desc: d, circuit: c, logger: logger}
}

// Circuit returns the equivalent circuit the calculator works on.
func (c *Calculator) Circuit() *EquivalentCircuit {
	return c.circuit
}

// Solve computes the fault impedance of one test. Switching steps (residual
// voltage above 1 p.u.) get no impedance. Numeric failures are returned in
// Result.Err and never panic.
func (c *Calculator) Solve(t fault.Test) Result {
	res := Result{
		Test: t,
		Kind: t.Kind(),
		Psif: FaultAngle(c.desc.ConnectionClass, c.desc.LineType),
	}
	if !res.Kind.ShortCircuit() {
		c.debugLog("switching step, no fault impedance", "test", t.ID, "uf", t.ResidualVoltage)
		return res
	}

	leg := c.circuit.Leg(t.Leg)
	z, doubled, err := faultImpedance(t, leg.Source, res.Psif, c.logger)
	if err != nil {
		res.Err = err
		if c.logger != nil {
			c.logger.Warn("fault impedance not computed", "test", t.ID, "error", err)
		}
		return res
	}
	res.Impedance = &z
	res.Doubled = doubled
	return res
}

// faultImpedance solves the quadratic for Rf:
//
//	uf' = uf/uv, A = tan(Psif), B = (uf'^2-1)(1+A^2)
//	p = 2 uf'^2 (Ra + A Xa)/B, q = uf'^2 (Ra^2 + Xa^2)/B
//	Rf = -p/2 + sqrt(p^2/4 - q), Xf = Rf A
//
// Rf is doubled for unsymmetrical faults other than single-phase-to-earth.
func faultImpedance(t fault.Test, src grid.Impedance, psif float64, logger *slog.Logger) (grid.Impedance, bool, error) {
	for _, v := range []float64{t.ResidualVoltage, t.PreFaultVoltage, src.R, src.X} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return grid.Impedance{}, false, domainError(t.ID, "non-finite input")
		}
	}
	if t.PreFaultVoltage <= 0 {
		return grid.Impedance{}, false, domainError(t.ID, "pre-fault voltage factor %g must be positive", t.PreFaultVoltage)
	}
	if t.ResidualVoltage < 0 {
		return grid.Impedance{}, false, domainError(t.ID, "residual voltage %g is negative", t.ResidualVoltage)
	}

	uf := t.ResidualVoltage / t.PreFaultVoltage
	uf2 := uf * uf
	a := math.Tan(radians(psif))
	b := (uf2 - 1) * (1 + a*a)
	if b >= 0 {
		return grid.Impedance{}, false, domainError(t.ID, "uf/uv = %g is not below 1", uf)
	}

	p := 2 * uf2 * (src.R + a*src.X) / b
	q := uf2 * (src.R*src.R + src.X*src.X) / b
	disc := p*p/4 - q
	if disc < 0 {
		return grid.Impedance{}, false, domainError(t.ID, "negative discriminant %g", disc)
	}

	rf := -p/2 + math.Sqrt(disc)
	doubled := t.Phases != 3 && t.FaultType != fault.SinglePhaseToEarth
	if doubled {
		rf *= 2
	}
	xf := rf * a
	if math.IsNaN(rf) || math.IsInf(rf, 0) || math.IsNaN(xf) || math.IsInf(xf, 0) {
		return grid.Impedance{}, false, domainError(t.ID, "non-finite result")
	}

	if logger != nil {
		logger.Debug("fault impedance",
			"test", t.ID,
			"psif", psif,
			"uf", uf,
			"A", a,
			"B", b,
			"p", p,
			"q", q,
			"doubled", doubled,
			"Rf", rf,
			"Xf", xf)
	}
	return grid.Impedance{R: rf, X: xf}, doubled, nil
}

func (c *Calculator) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
