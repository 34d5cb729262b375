// Package engine runs the fault-ride-through calculation of one project
// against one catalog.
package engine

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/gridcode-frt/frt-go/pkg/attribute"
	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
	"github.com/gridcode-frt/frt-go/pkg/scenario"
)

// Config configures the engine.
type Config struct {
	// Keys names the grid attributes. Empty names use the defaults.
	Keys attribute.Keys

	// Workers is the number of tests solved in parallel.
	// 0 uses the number of CPUs, 1 means sequential execution.
	Workers int

	// Scenario enables scenario plans when not nil.
	Scenario *scenario.Options

	// Logger receives run progress. If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
	}
}

// Report is the outcome of one run.
type Report struct {
	// ID identifies the run.
	ID string `json:"id"`

	// Project is the project number, empty for file sources.
	Project string `json:"project,omitempty"`

	// Catalog is the key of the catalog that was run.
	Catalog fault.Key `json:"catalog"`

	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`

	// Grid is the resolved grid description.
	Grid grid.Description `json:"grid"`

	// Defaults lists the fallbacks substituted while resolving the grid.
	Defaults []grid.Default `json:"defaults,omitempty"`

	// Circuit is the equivalent circuit shared by all tests.
	Circuit *impedance.EquivalentCircuit `json:"circuit"`

	// Results holds one entry per catalog test, in catalog order.
	Results []impedance.Result `json:"results"`

	// Settings and Plans are only set when scenario planning is enabled.
	Settings *scenario.GridSettings `json:"settings,omitempty"`
	Plans    []scenario.Plan        `json:"plans,omitempty"`
}

// Counts returns the number of tests with a fault impedance, switching
// steps and failed tests.
func (r *Report) Counts() (computed, switching, failed int) {
	for _, res := range r.Results {
		switch {
		case res.Failed():
			failed++
		case res.Kind == fault.KindSwitchingStep:
			switching++
		default:
			computed++
		}
	}
	return computed, switching, failed
}

// Failures returns the failed results.
func (r *Report) Failures() []impedance.Result {
	var out []impedance.Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Duration returns the run time.
func (r *Report) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
