package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gridcode-frt/frt-go/pkg/fault"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	Store  string
	Format string // text, json, yaml
	Test   int    // single test, 0 for all
}

// ShowOutput represents a catalog for display.
type ShowOutput struct {
	Catalog string       `json:"catalog" yaml:"catalog"`
	Tests   []TestOutput `json:"tests" yaml:"tests"`
}

// TestOutput represents a single test.
type TestOutput struct {
	ID              int     `json:"id" yaml:"id"`
	Kind            string  `json:"kind" yaml:"kind"`
	Duration        float64 `json:"duration" yaml:"duration"`
	FaultType       uint8   `json:"faultType" yaml:"fault_type"`
	ResidualVoltage float64 `json:"residualVoltage" yaml:"residual_voltage"`
	Leg             string  `json:"leg" yaml:"leg"`
	ReactivePower   string  `json:"reactivePower" yaml:"reactive_power"`
	Phases          int     `json:"phases" yaml:"phases"`
	PreFaultVoltage float64 `json:"preFaultVoltage" yaml:"pre_fault_voltage"`
}

// RunShow runs the show command.
func RunShow(args []string, stdout, stderr io.Writer) int {
	opts := ShowOptions{}
	fs := newFlagSet("show", stderr, &opts.Store)
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	fs.IntVar(&opts.Test, "test", 0, "Show a single test")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	key, err := catalogArg(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printShowUsage(stderr)
		return exitCommandError
	}

	store, err := openExisting(opts.Store)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if store != nil {
		defer store.Close()
	}

	c, err := loadCatalog(context.Background(), store, key)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	output := ShowOutput{Catalog: c.Key().String()}
	for _, t := range c.All() {
		if opts.Test != 0 && t.ID != opts.Test {
			continue
		}
		output.Tests = append(output.Tests, testOutput(t))
	}
	if opts.Test != 0 && len(output.Tests) == 0 {
		fmt.Fprintf(stderr, "Error: catalog %s has no test %d\n", key, opts.Test)
		return exitCommandError
	}

	switch opts.Format {
	case "json":
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(data))
	case "yaml":
		data, _ := yaml.Marshal(output)
		fmt.Fprint(stdout, string(data))
	default:
		printShowText(stdout, output)
	}
	return exitSuccess
}

func testOutput(t fault.Test) TestOutput {
	return TestOutput{
		ID:              t.ID,
		Kind:            t.Kind().String(),
		Duration:        t.Duration,
		FaultType:       uint8(t.FaultType),
		ResidualVoltage: t.ResidualVoltage,
		Leg:             t.Leg.String(),
		ReactivePower:   t.ReactivePower.String(),
		Phases:          t.Phases,
		PreFaultVoltage: t.PreFaultVoltage,
	}
}

func printShowText(w io.Writer, output ShowOutput) {
	fmt.Fprintf(w, "Catalog: %s (%d tests)\n\n", output.Catalog, len(output.Tests))
	fmt.Fprintf(w, "%3s  %-36s %8s  %2s  %6s  %-8s  %-12s  %2s  %4s\n",
		"ID", "Kind", "t [s]", "FT", "uf", "Leg", "Q", "Ph", "uv")
	for _, t := range output.Tests {
		fmt.Fprintf(w, "%3d  %-36s %8.3f  %2d  %6.3f  %-8s  %-12s  %2d  %4.2f\n",
			t.ID, t.Kind, t.Duration, t.FaultType, t.ResidualVoltage, t.Leg, t.ReactivePower, t.Phases, t.PreFaultVoltage)
	}
}

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: frt-catalog show [options] <catalog>

Options:
  -store          Path to catalog store database [default: frt.db]
  -f, -format     Output format (text, json, yaml) [default: text]
  -test           Show a single test

Catalogs not in the store are taken from the built-in definitions.

Examples:
  frt-catalog show 4110-1
  frt-catalog show -format json 4120/2
  frt-catalog show -test 14 FAULTS_4120_TYP1`)
}
