package grid

import "strings"

// Attribute labels as entered in the project database, plus English aliases.
// Lookup is case-insensitive on the trimmed value.
var connectionLabels = map[string]ConnectionClass{
	"ms-netz":                           MediumVoltage,
	"ms-netz (reine einspeiseleistung)": MediumVoltage,
	"ms-netz (reine einspeiseleitung)":  MediumVoltage,
	"medium-voltage":                    MediumVoltage,
	"mv":                                MediumVoltage,
	"uw-direktanschluss":                MediumVoltageSubstationDirect,
	"substation-direct":                 MediumVoltageSubstationDirect,
	"hs-netz":                           HighVoltage,
	"high-voltage":                      HighVoltage,
	"hv":                                HighVoltage,
}

var starPointLabels = map[string]StarPointTreatment{
	"starre sternpunkterdung (sspe)":                     SolidEarthing,
	"resonanzsternpunkterdung (rspe)":                    ResonantEarthing,
	"isoliert (ospe)":                                    Isolated,
	"niederohmige sternpunkterdung (nospe)":              LowImpedanceEarthing,
	"kurzzeitig niederohmige sternpunkterdnung (knospe)": TemporaryLowImpedanceEarthing,
	"kurzzeitig niederohmige sternpunkterdung (knospe)":  TemporaryLowImpedanceEarthing,

	"sspe":   SolidEarthing,
	"rspe":   ResonantEarthing,
	"ospe":   Isolated,
	"nospe":  LowImpedanceEarthing,
	"knospe": TemporaryLowImpedanceEarthing,

	"solid":                   SolidEarthing,
	"resonant":                ResonantEarthing,
	"isolated":                Isolated,
	"low-impedance":           LowImpedanceEarthing,
	"temporary-low-impedance": TemporaryLowImpedanceEarthing,
}

var lineTypeLabels = map[string]LineType{
	"unbekannt":        LineUnknown,
	"gemischt":         LineMixed,
	"freileitungsnetz": LineOverhead,
	"kabelnetz":        LineCable,
	"unknown":          LineUnknown,
	"mixed":            LineMixed,
	"overhead":         LineOverhead,
	"cable":            LineCable,
}

func normalizeLabel(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}

// ParseConnectionClass maps a connection class label.
func ParseConnectionClass(v any) (ConnectionClass, bool) {
	s, ok := normalizeLabel(v)
	if !ok {
		return ConnectionUnknown, false
	}
	c, ok := connectionLabels[s]
	return c, ok
}

// ParseStarPointTreatment maps a star-point treatment label.
func ParseStarPointTreatment(v any) (StarPointTreatment, bool) {
	s, ok := normalizeLabel(v)
	if !ok {
		return StarPointUnspecified, false
	}
	t, ok := starPointLabels[s]
	return t, ok
}

// ParseLineType maps an upstream line type label.
func ParseLineType(v any) (LineType, bool) {
	s, ok := normalizeLabel(v)
	if !ok {
		return LineUnknown, false
	}
	l, ok := lineTypeLabels[s]
	return l, ok
}
