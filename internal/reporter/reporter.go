// Package reporter formats calculation run reports.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gridcode-frt/frt-go/internal/engine"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
)

// Reporter formats and outputs run reports.
type Reporter interface {
	// ReportRun reports the results of a complete run.
	ReportRun(report *engine.Report)

	// ReportResult reports a single test result.
	ReportResult(result impedance.Result)
}

// New returns the reporter for a format name ("text" or "json").
func New(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w, verbose), nil
	case "json":
		return NewJSONReporter(w, true), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// ReportRun reports a run in text format.
func (r *TextReporter) ReportRun(report *engine.Report) {
	fmt.Fprintf(r.writer, "\n=== Catalog: %s ===\n", report.Catalog)
	if report.Project != "" {
		fmt.Fprintf(r.writer, "Project:  %s\n", report.Project)
	}
	fmt.Fprintf(r.writer, "Run:      %s\n", report.ID)
	fmt.Fprintf(r.writer, "Duration: %s\n", report.Duration().Round(time.Millisecond))

	g := report.Grid
	fmt.Fprintf(r.writer, "\n--- Grid ---\n")
	fmt.Fprintf(r.writer, "Un=%g kV  Uc=%g kV  Sk\"=%g kVA  psi=%g deg\n",
		g.NominalVoltageKV, g.AgreedVoltageKV, g.ShortCircuitPowerKVA, g.ImpedanceAngleDeg)
	fmt.Fprintf(r.writer, "Connection: %s", g.ConnectionClass)
	if g.SubstationDirect {
		fmt.Fprintf(r.writer, " (substation-direct)")
	}
	fmt.Fprintf(r.writer, "\nStar point: %s\nLine type:  %s\n", g.StarPoint, g.LineType)

	for _, d := range report.Defaults {
		fmt.Fprintf(r.writer, "  [DEFAULT] %s (%s): %s\n", d.Attribute, d.Reason, d.Substituted)
	}

	if c := report.Circuit; c != nil {
		fmt.Fprintf(r.writer, "\n--- Equivalent circuit ---\n")
		fmt.Fprintf(r.writer, "Network:  Z=%g R=%g X=%g Ohm\n", c.Network.Z, c.Network.R, c.Network.X)
		fmt.Fprintf(r.writer, "Local:    source %s, series %s\n", c.Local.Source, c.Local.Series)
		fmt.Fprintf(r.writer, "Upstream: source %s, series %s\n", c.Upstream.Source, c.Upstream.Series)
		fmt.Fprintf(r.writer, "Zero:     %s\n", c.ZeroSequence)
	}

	fmt.Fprintf(r.writer, "\n--- Tests ---\n")
	for _, res := range report.Results {
		r.ReportResult(res)
	}

	if r.verbose {
		for _, p := range report.Plans {
			fmt.Fprintf(r.writer, "  [PLAN] %s: %s leg, usetp=%g p.u., Q=%g Mvar, %d events\n",
				p.Name, p.ActiveLeg, p.SourceSetpoint, p.ReactivePowerMvar, len(p.Events))
		}
	}

	computed, switching, failed := report.Counts()
	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:     %d\n", len(report.Results))
	fmt.Fprintf(r.writer, "Computed:  %d\n", computed)
	fmt.Fprintf(r.writer, "Switching: %d\n", switching)
	fmt.Fprintf(r.writer, "Failed:    %d\n", failed)
	fmt.Fprintf(r.writer, "Defaults:  %d\n", len(report.Defaults))
}

// ReportResult reports a single test result in text format.
func (r *TextReporter) ReportResult(result impedance.Result) {
	t := result.Test

	var status string
	switch {
	case result.Failed():
		status = "FAIL"
	case result.Impedance == nil:
		status = "STEP"
	default:
		status = " OK "
	}

	fmt.Fprintf(r.writer, "[%s] %02d %-36s t=%7.3f s  uf=%.3f  uv=%.2f  %s",
		status, t.ID, result.Kind, t.Duration, t.ResidualVoltage, t.PreFaultVoltage, t.Leg)

	if z := result.Impedance; z != nil {
		fmt.Fprintf(r.writer, "  Rf=%.5f Xf=%.5f Ohm", z.R, z.X)
		if result.Doubled {
			fmt.Fprintf(r.writer, " (x2)")
		}
	}
	fmt.Fprintln(r.writer)

	if result.Err != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Err)
	}
	if r.verbose && result.Impedance != nil {
		fmt.Fprintf(r.writer, "       psif=%g deg, %d phases, Q %s\n", result.Psif, t.Phases, t.ReactivePower)
	}
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONRun is the JSON representation of a run.
type JSONRun struct {
	*engine.Report

	Duration string       `json:"duration"`
	Summary  JSONSummary  `json:"summary"`
	Results  []JSONResult `json:"results"`
}

// JSONSummary holds the result counts of a run.
type JSONSummary struct {
	Total     int `json:"total"`
	Computed  int `json:"computed"`
	Switching int `json:"switching"`
	Failed    int `json:"failed"`
	Defaults  int `json:"defaults"`
}

// JSONResult is the JSON representation of a test result.
type JSONResult struct {
	impedance.Result

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReportRun reports a run in JSON format.
func (r *JSONReporter) ReportRun(report *engine.Report) {
	computed, switching, failed := report.Counts()
	jr := JSONRun{
		Report:   report,
		Duration: report.Duration().Round(time.Millisecond).String(),
		Summary: JSONSummary{
			Total:     len(report.Results),
			Computed:  computed,
			Switching: switching,
			Failed:    failed,
			Defaults:  len(report.Defaults),
		},
		Results: make([]JSONResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		jr.Results = append(jr.Results, resultToJSON(res))
	}
	r.writeJSON(jr)
}

// ReportResult reports a single test result in JSON format.
func (r *JSONReporter) ReportResult(result impedance.Result) {
	r.writeJSON(resultToJSON(result))
}

func resultToJSON(res impedance.Result) JSONResult {
	jr := JSONResult{Result: res}
	switch {
	case res.Failed():
		jr.Status = "failed"
		jr.Error = res.Err.Error()
	case res.Impedance == nil:
		jr.Status = "switching"
	default:
		jr.Status = "computed"
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`, err)
		return
	}

	fmt.Fprintln(r.writer, string(data))
}
