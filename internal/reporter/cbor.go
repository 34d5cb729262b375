package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/gridcode-frt/frt-go/internal/engine"
	"github.com/gridcode-frt/frt-go/pkg/grid"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
)

// ExportVersion is the version of the CBOR export schema.
const ExportVersion = 1

// exportEncMode is the CBOR encoder mode for run exports.
// Configured for nanosecond-precision timestamps and deterministic encoding.
var exportEncMode cbor.EncMode

// exportDecMode is the CBOR decoder mode for run exports.
var exportDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	exportEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create export CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	exportDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create export CBOR decoder mode: %v", err))
	}
}

// Export is the compact, integer-keyed archive form of a run report.
// Enumerations are stored by name and errors by message.
type Export struct {
	Version     int       `cbor:"1,keyasint"`
	ID          string    `cbor:"2,keyasint"`
	Project     string    `cbor:"3,keyasint,omitempty"`
	Catalog     string    `cbor:"4,keyasint"`
	StartedAt   time.Time `cbor:"5,keyasint"`
	CompletedAt time.Time `cbor:"6,keyasint"`

	Grid     ExportGrid                   `cbor:"7,keyasint"`
	Defaults []ExportDefault              `cbor:"8,keyasint,omitempty"`
	Circuit  *impedance.EquivalentCircuit `cbor:"9,keyasint,omitempty"`
	Results  []ExportResult               `cbor:"10,keyasint"`
}

// ExportGrid is the archived grid description.
type ExportGrid struct {
	NominalVoltageKV     float64         `cbor:"1,keyasint"`
	AgreedVoltageKV      float64         `cbor:"2,keyasint"`
	ShortCircuitPowerKVA float64         `cbor:"3,keyasint"`
	ImpedanceAngleDeg    float64         `cbor:"4,keyasint"`
	ConnectionClass      string          `cbor:"5,keyasint"`
	SubstationDirect     bool            `cbor:"6,keyasint,omitempty"`
	Transformer          *grid.Impedance `cbor:"7,keyasint,omitempty"`
	ControlledSetpointKV *float64        `cbor:"8,keyasint,omitempty"`
	StarPoint            string          `cbor:"9,keyasint"`
	StarPointImpedance   *float64        `cbor:"10,keyasint,omitempty"`
	LineType             string          `cbor:"11,keyasint"`
}

// ExportDefault is an archived attribute fallback.
type ExportDefault struct {
	Attribute   string `cbor:"1,keyasint"`
	Value       string `cbor:"2,keyasint,omitempty"`
	Reason      string `cbor:"3,keyasint"`
	Substituted string `cbor:"4,keyasint"`
}

// ExportResult is an archived test result.
type ExportResult struct {
	TestID          int             `cbor:"1,keyasint"`
	Kind            string          `cbor:"2,keyasint"`
	Duration        float64         `cbor:"3,keyasint"`
	FaultType       uint8           `cbor:"4,keyasint"`
	ResidualVoltage float64         `cbor:"5,keyasint"`
	PreFaultVoltage float64         `cbor:"6,keyasint"`
	Leg             string          `cbor:"7,keyasint"`
	Phases          int             `cbor:"8,keyasint"`
	Psif            float64         `cbor:"9,keyasint"`
	Impedance       *grid.Impedance `cbor:"10,keyasint,omitempty"`
	Doubled         bool            `cbor:"11,keyasint,omitempty"`
	Error           string          `cbor:"12,keyasint,omitempty"`
}

// NewExport converts a run report into its archive form.
func NewExport(r *engine.Report) Export {
	g := r.Grid
	e := Export{
		Version:     ExportVersion,
		ID:          r.ID,
		Project:     r.Project,
		Catalog:     r.Catalog.String(),
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Grid: ExportGrid{
			NominalVoltageKV:     g.NominalVoltageKV,
			AgreedVoltageKV:      g.AgreedVoltageKV,
			ShortCircuitPowerKVA: g.ShortCircuitPowerKVA,
			ImpedanceAngleDeg:    g.ImpedanceAngleDeg,
			ConnectionClass:      g.ConnectionClass.String(),
			SubstationDirect:     g.SubstationDirect,
			Transformer:          g.Transformer,
			ControlledSetpointKV: g.ControlledSetpointKV,
			StarPoint:            g.StarPoint.String(),
			StarPointImpedance:   g.StarPointImpedance,
			LineType:             g.LineType.String(),
		},
		Circuit: r.Circuit,
		Results: make([]ExportResult, 0, len(r.Results)),
	}
	for _, d := range r.Defaults {
		ed := ExportDefault{Attribute: d.Attribute, Reason: d.Reason, Substituted: d.Substituted}
		if d.Value != nil {
			ed.Value = fmt.Sprint(d.Value)
		}
		e.Defaults = append(e.Defaults, ed)
	}
	for _, res := range r.Results {
		t := res.Test
		er := ExportResult{
			TestID:          t.ID,
			Kind:            res.Kind.String(),
			Duration:        t.Duration,
			FaultType:       uint8(t.FaultType),
			ResidualVoltage: t.ResidualVoltage,
			PreFaultVoltage: t.PreFaultVoltage,
			Leg:             t.Leg.String(),
			Phases:          t.Phases,
			Psif:            res.Psif,
			Impedance:       res.Impedance,
			Doubled:         res.Doubled,
		}
		if res.Err != nil {
			er.Error = res.Err.Error()
		}
		e.Results = append(e.Results, er)
	}
	return e
}

// EncodeReport encodes a run report to CBOR bytes.
func EncodeReport(r *engine.Report) ([]byte, error) {
	return exportEncMode.Marshal(NewExport(r))
}

// DecodeExport decodes CBOR bytes into an Export.
func DecodeExport(data []byte) (Export, error) {
	var e Export
	if err := exportDecMode.Unmarshal(data, &e); err != nil {
		return Export{}, err
	}
	if e.Version != ExportVersion {
		return Export{}, fmt.Errorf("unsupported export version %d", e.Version)
	}
	return e, nil
}

// NewEncoder creates a CBOR encoder for run exports that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return exportEncMode.NewEncoder(w)
}

// NewDecoder creates a CBOR decoder for run exports that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return exportDecMode.NewDecoder(r)
}
