package scenario

import (
	"fmt"
	"log/slog"

	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
)

// ClearFaultCode is the short-circuit event code that clears a fault.
const ClearFaultCode = 4

// EventKind is the type of a simulation event.
type EventKind uint8

const (
	ShortCircuitOn EventKind = iota
	ShortCircuitClear
	BreakerClose
	BreakerOpen
)

func (k EventKind) String() string {
	switch k {
	case ShortCircuitOn:
		return "short-circuit"
	case ShortCircuitClear:
		return "clear"
	case BreakerClose:
		return "close"
	case BreakerOpen:
		return "open"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Breaker selects the breaker switching the step source.
type Breaker uint8

const (
	BreakerSymmetric Breaker = iota
	BreakerUnsymmetric
)

func (b Breaker) String() string {
	if b == BreakerUnsymmetric {
		return "unsymmetric"
	}
	return "symmetric"
}

// MarshalText encodes the breaker by name.
func (b Breaker) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Event is one timed action of a scenario.
type Event struct {
	Name string    `json:"name"`
	Kind EventKind `json:"kind"`

	// Time is the absolute event time in seconds.
	Time float64 `json:"time"`

	// FaultCode is the short-circuit type code (0, 1, 2, or ClearFaultCode).
	FaultCode int `json:"faultCode,omitempty"`

	// Impedance is the fault impedance of a ShortCircuitOn event.
	Impedance *grid.Impedance `json:"impedance,omitempty"`

	// Breaker is set for BreakerClose and BreakerOpen events.
	Breaker Breaker `json:"breaker,omitempty"`
}

// Plan is the scenario of one test.
type Plan struct {
	Name   string     `json:"name"`
	TestID int        `json:"testId"`
	Kind   fault.Kind `json:"kind"`

	// ActiveLeg is the leg kept in service; the other one is switched off.
	ActiveLeg fault.GridLeg `json:"activeLeg"`

	// SourceSetpoint is the pre-fault setpoint of the active source in p.u.
	SourceSetpoint float64 `json:"sourceSetpoint"`

	// StepSetpoint is the step source setpoint of switching tests in p.u.
	StepSetpoint *float64 `json:"stepSetpoint,omitempty"`

	// ReactivePowerMvar is the plant controller setpoint.
	ReactivePowerMvar float64 `json:"reactivePowerMvar"`

	// Controlled lists the units joining the plant controller.
	Controlled []string `json:"controlled,omitempty"`

	// Unsymmetric selects an unsymmetrical load flow and simulation.
	Unsymmetric bool `json:"unsymmetric"`

	Events []Event `json:"events"`
}

// Options configures plan generation.
type Options struct {
	// NamePrefix is prepended to the zero-padded test id.
	NamePrefix string `yaml:"name_prefix"`

	// Onset is the fault start time in seconds.
	Onset float64 `yaml:"onset"`

	// Generators lists the generating units of the plant model.
	Generators []Generator `yaml:"generators"`

	// Logger receives one info line per plan. If nil, logging is disabled.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultOptions returns the default plan options.
func DefaultOptions() Options {
	return Options{
		NamePrefix: "Versuch_",
		Onset:      1,
	}
}

// Builder creates plans for one grid.
type Builder struct {
	desc     grid.Description
	settings GridSettings
	opts     Options
}

// NewBuilder creates a plan builder.
func NewBuilder(d grid.Description, c *impedance.EquivalentCircuit, opts Options) *Builder {
	return &Builder{
		desc:     d,
		settings: NewGridSettings(&d, c),
		opts:     opts,
	}
}

// Settings returns the element settings of both legs.
func (b *Builder) Settings() GridSettings {
	return b.settings
}

// Name returns the scenario name of a test.
func (b *Builder) Name(id int) string {
	return fmt.Sprintf("%s%02d", b.opts.NamePrefix, id)
}

// Build creates the plan of one calculated test. Failed results have no plan.
func (b *Builder) Build(r impedance.Result) (Plan, error) {
	if r.Failed() {
		return Plan{}, fmt.Errorf("test %d: no plan for failed calculation: %w", r.Test.ID, r.Err)
	}
	t := r.Test
	name := b.Name(t.ID)
	onset := b.opts.Onset
	end := onset + t.Duration

	p := Plan{
		Name:        name,
		TestID:      t.ID,
		Kind:        r.Kind,
		ActiveLeg:   t.Leg,
		Unsymmetric: !t.Symmetric(),
	}

	if r.Kind.ShortCircuit() {
		if r.Impedance == nil {
			return Plan{}, fmt.Errorf("test %d: short circuit without fault impedance", t.ID)
		}
		z := *r.Impedance
		p.Events = []Event{
			{Name: name + "_on", Kind: ShortCircuitOn, Time: onset, FaultCode: int(t.FaultType), Impedance: &z},
			{Name: name + "_off", Kind: ShortCircuitClear, Time: end, FaultCode: ClearFaultCode},
		}
	} else {
		breaker := BreakerSymmetric
		if !t.Symmetric() {
			breaker = BreakerUnsymmetric
		}
		step := impedance.Round(t.ResidualVoltage*(b.desc.AgreedVoltageKV/b.desc.NominalVoltageKV), 4)
		p.StepSetpoint = &step
		p.Events = []Event{
			{Name: name + "_on", Kind: BreakerClose, Time: onset, Breaker: breaker},
			{Name: name + "_off", Kind: BreakerOpen, Time: end, Breaker: breaker},
		}
	}

	legSettings := b.settings.Local
	if t.Leg == fault.Upstream {
		legSettings = b.settings.Upstream
	}
	p.SourceSetpoint = legSettings.Source.Setpoint * t.PreFaultVoltage

	p.ReactivePowerMvar, p.Controlled = ReactivePowerSetpoint(t.ReactivePower, b.opts.Generators)

	if b.opts.Logger != nil {
		b.opts.Logger.Info("scenario planned",
			"scenario", name,
			"kind", r.Kind.String(),
			"leg", t.Leg.String(),
			"usetp", p.SourceSetpoint,
			"q", p.ReactivePowerMvar)
	}
	return p, nil
}

// BuildAll creates plans for all successful results, in order. Failed
// results are skipped.
func (b *Builder) BuildAll(results []impedance.Result) []Plan {
	plans := make([]Plan, 0, len(results))
	for _, r := range results {
		if r.Failed() {
			continue
		}
		p, err := b.Build(r)
		if err != nil {
			continue
		}
		plans = append(plans, p)
	}
	return plans
}
