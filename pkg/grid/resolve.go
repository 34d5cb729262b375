package grid

import (
	"fmt"
	"log/slog"

	"github.com/gridcode-frt/frt-go/pkg/attribute"
)

// Default reasons.
const (
	ReasonMissing      = "missing"
	ReasonUnrecognized = "unrecognized"
	ReasonInvalid      = "invalid"
)

// Resolver converts attribute sets into grid descriptions.
type Resolver struct {
	keys   attribute.Keys
	logger *slog.Logger
}

// NewResolver creates a resolver reading the given attribute names. Empty
// names fall back to attribute.DefaultKeys. If logger is nil, logging is
// disabled.
func NewResolver(keys attribute.Keys, logger *slog.Logger) *Resolver {
	return &Resolver{
		keys:   keys.Merge(attribute.DefaultKeys()),
		logger: logger,
	}
}

// Resolve is a shorthand for NewResolver(keys, logger).Resolve(set).
func Resolve(set attribute.Set, keys attribute.Keys, logger *slog.Logger) (Description, []Default, error) {
	return NewResolver(keys, logger).Resolve(set)
}

// resolution collects the defaults of one Resolve call.
type resolution struct {
	r        *Resolver
	set      attribute.Set
	defaults []Default
}

// Resolve builds the grid description of one project. Any problem with a
// required attribute is returned as *AttributeError and no description is
// produced. Fallbacks for optional attributes are logged at warn level and
// returned in order of evaluation.
func (r *Resolver) Resolve(set attribute.Set) (Description, []Default, error) {
	res := &resolution{r: r, set: set}
	var d Description
	var err error

	if d.AgreedVoltageKV, err = res.required(r.keys.AgreedVoltage, true); err != nil {
		return Description{}, nil, err
	}
	if d.NominalVoltageKV, err = res.required(r.keys.NominalVoltage, true); err != nil {
		return Description{}, nil, err
	}
	if d.ShortCircuitPowerKVA, err = res.required(r.keys.ShortCircuitPower, true); err != nil {
		return Description{}, nil, err
	}
	if d.ImpedanceAngleDeg, err = res.required(r.keys.ImpedanceAngle, false); err != nil {
		return Description{}, nil, err
	}

	d.ConnectionClass = res.connectionClass()
	d.SubstationDirect = d.ConnectionClass == MediumVoltageSubstationDirect

	if d.ConnectionClass == MediumVoltage {
		if t, ok := res.transformer(); ok {
			d.Transformer = &t
		} else {
			d.SubstationDirect = true
		}
	}

	if d.ConnectionClass == HighVoltage || d.SubstationDirect {
		u, err := res.required(r.keys.ControlledSetpoint, true)
		if err != nil {
			return Description{}, nil, err
		}
		d.ControlledSetpointKV = &u
	}

	d.StarPoint = res.starPoint()
	if d.StarPoint.LowImpedance() {
		if z, ok := res.starPointImpedance(); ok {
			d.StarPointImpedance = &z
		}
	}

	d.LineType = res.lineType()

	r.debugLog("grid description resolved",
		"Uc", d.AgreedVoltageKV,
		"Un", d.NominalVoltageKV,
		"Sk", d.ShortCircuitPowerKVA,
		"angle", d.ImpedanceAngleDeg,
		"connection", d.ConnectionClass.String(),
		"substationDirect", d.SubstationDirect,
		"starPoint", d.StarPoint.String(),
		"lineType", d.LineType.String(),
		"defaults", len(res.defaults))

	return d, res.defaults, nil
}

func (res *resolution) required(key string, positive bool) (float64, error) {
	raw, ok := res.set.Lookup(key)
	if !ok {
		return 0, &AttributeError{Key: key, Err: ErrMissingRequiredAttribute}
	}
	v, err := ParseNumber(raw)
	if err != nil {
		return 0, &AttributeError{Key: key, Value: raw, Reason: err.Error(), Err: ErrInvalidAttributeValue}
	}
	if positive && v <= 0 {
		return 0, &AttributeError{Key: key, Value: raw, Reason: "must be positive", Err: ErrInvalidAttributeValue}
	}
	return v, nil
}

func (res *resolution) connectionClass() ConnectionClass {
	key := res.r.keys.ConnectionClass
	raw, ok := res.set.Lookup(key)
	if !ok {
		res.substitute(key, nil, ReasonMissing, MediumVoltage.String())
		return MediumVoltage
	}
	c, ok := ParseConnectionClass(raw)
	if !ok {
		res.substitute(key, raw, ReasonUnrecognized, MediumVoltage.String())
		return MediumVoltage
	}
	return c
}

// transformer reads the upstream transformer impedance. Missing or
// malformed data is reported as a single default.
func (res *resolution) transformer() (Impedance, bool) {
	const substituted = "no transformer data, treated as substation-direct"
	keys := res.r.keys

	rawR, okR := res.set.Lookup(keys.TransformerR)
	rawX, okX := res.set.Lookup(keys.TransformerX)
	switch {
	case !okR:
		res.substitute(keys.TransformerR, nil, ReasonMissing, substituted)
		return Impedance{}, false
	case !okX:
		res.substitute(keys.TransformerX, nil, ReasonMissing, substituted)
		return Impedance{}, false
	}

	r, err := ParseNumber(rawR)
	if err != nil {
		res.substitute(keys.TransformerR, rawR, ReasonInvalid, substituted)
		return Impedance{}, false
	}
	x, err := ParseNumber(rawX)
	if err != nil {
		res.substitute(keys.TransformerX, rawX, ReasonInvalid, substituted)
		return Impedance{}, false
	}
	return Impedance{R: r, X: x}, true
}

func (res *resolution) starPoint() StarPointTreatment {
	key := res.r.keys.StarPoint
	raw, ok := res.set.Lookup(key)
	if !ok {
		res.substitute(key, nil, ReasonMissing, ResonantEarthing.String())
		return ResonantEarthing
	}
	t, ok := ParseStarPointTreatment(raw)
	if !ok {
		res.substitute(key, raw, ReasonUnrecognized, ResonantEarthing.String())
		return ResonantEarthing
	}
	return t
}

func (res *resolution) starPointImpedance() (float64, bool) {
	const substituted = "R0 = 30 Ohm + local source resistance"
	key := res.r.keys.StarPointImpedance
	raw, ok := res.set.Lookup(key)
	if !ok {
		res.substitute(key, nil, ReasonMissing, substituted)
		return 0, false
	}
	z, err := ParseNumber(raw)
	if err != nil {
		res.substitute(key, raw, ReasonInvalid, substituted)
		return 0, false
	}
	return z, true
}

func (res *resolution) lineType() LineType {
	key := res.r.keys.LineType
	raw, ok := res.set.Lookup(key)
	if !ok {
		res.substitute(key, nil, ReasonMissing, LineUnknown.String())
		return LineUnknown
	}
	l, ok := ParseLineType(raw)
	if !ok {
		res.substitute(key, raw, ReasonUnrecognized, LineUnknown.String())
		return LineUnknown
	}
	return l
}

func (res *resolution) substitute(key string, value any, reason, substituted string) {
	res.defaults = append(res.defaults, Default{
		Attribute:   key,
		Value:       value,
		Reason:      reason,
		Substituted: substituted,
	})
	if res.r.logger != nil {
		res.r.logger.Warn("attribute default applied",
			"attribute", key,
			"value", fmt.Sprint(value),
			"reason", reason,
			"substituted", substituted)
	}
}

func (r *Resolver) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
