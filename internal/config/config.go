// Package config holds the run configuration of the calculation commands.
//
// Values come from three layers: built-in defaults, an optional YAML file,
// and command-line flags. A flag only overrides the file when it was set
// explicitly.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridcode-frt/frt-go/internal/engine"
	"github.com/gridcode-frt/frt-go/pkg/attribute"
	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/scenario"
)

// Config is the complete run configuration.
type Config struct {
	Source SourceConfig `yaml:"source"`

	// Keys overrides attribute names. Empty names use the defaults.
	Keys attribute.Keys `yaml:"keys"`

	// Catalog is the catalog key, e.g. "4110-1".
	Catalog string `yaml:"catalog"`

	// CatalogFile reads the catalog from a YAML file instead of the store
	// or the built-in catalogs.
	CatalogFile string `yaml:"catalog_file"`

	// Store is the path of the catalog store database. Empty uses the
	// built-in catalogs and does not record the run.
	Store string `yaml:"store"`

	// Workers is the number of tests solved in parallel; 0 uses all CPUs.
	Workers int `yaml:"workers"`

	Output   OutputConfig   `yaml:"output"`
	Scenario ScenarioConfig `yaml:"scenario"`
}

// SourceConfig selects where project attributes come from. File takes
// precedence over a database.
type SourceConfig struct {
	File string `yaml:"file"`

	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	Project      string `yaml:"project"`
	NumberSuffix string `yaml:"number_suffix"`
}

// OutputConfig selects the report outputs.
type OutputConfig struct {
	// Format is "text" or "json".
	Format string `yaml:"format"`

	// CBOR is the path of the CBOR export file.
	CBOR string `yaml:"cbor"`

	// Plans is the path of the scenario plan file (JSON).
	Plans string `yaml:"plans"`

	// Plot is the path of the catalog chart; the extension selects the
	// format.
	Plot string `yaml:"plot"`
}

// ScenarioConfig configures scenario plan generation.
type ScenarioConfig struct {
	Enabled    bool                 `yaml:"enabled"`
	NamePrefix string               `yaml:"name_prefix"`
	Onset      float64              `yaml:"onset"`
	Generators []scenario.Generator `yaml:"generators"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := scenario.DefaultOptions()
	return &Config{
		Source: SourceConfig{
			Driver:       "postgres",
			NumberSuffix: " AZ",
		},
		Catalog: "4110-1",
		Output: OutputConfig{
			Format: "text",
		},
		Scenario: ScenarioConfig{
			NamePrefix: opts.NamePrefix,
			Onset:      opts.Onset,
		},
	}
}

// Load reads a YAML file on top of the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Validate checks that a run can be started with the configuration.
func (c *Config) Validate() error {
	if _, err := c.CatalogKey(); err != nil && c.CatalogFile == "" {
		return err
	}
	if c.Source.File == "" {
		if c.Source.DSN == "" {
			return errors.New("no attribute source: set an attribute file or a database DSN")
		}
		if c.Source.Project == "" {
			return errors.New("project number required for database sources")
		}
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Scenario.Onset < 0 {
		return fmt.Errorf("scenario onset must not be negative, got %g", c.Scenario.Onset)
	}
	return nil
}

// CatalogKey parses the configured catalog key.
func (c *Config) CatalogKey() (fault.Key, error) {
	return fault.ParseKey(c.Catalog)
}

// ScenarioOptions returns the plan options, or nil when planning is off.
// Plans are also generated when a plan output path is set.
func (c *Config) ScenarioOptions(logger *slog.Logger) *scenario.Options {
	if !c.Scenario.Enabled && c.Output.Plans == "" {
		return nil
	}
	return &scenario.Options{
		NamePrefix: c.Scenario.NamePrefix,
		Onset:      c.Scenario.Onset,
		Generators: c.Scenario.Generators,
		Logger:     logger,
	}
}

// EngineConfig returns the engine configuration.
func (c *Config) EngineConfig(logger *slog.Logger) *engine.Config {
	ec := engine.DefaultConfig()
	ec.Keys = c.Keys
	if c.Workers > 0 {
		ec.Workers = c.Workers
	}
	ec.Scenario = c.ScenarioOptions(logger)
	ec.Logger = logger
	return ec
}

// Flags binds command-line flags to configuration fields.
type Flags struct {
	// Path is the configuration file given with -config.
	Path string

	values Config
}

// flagFields copies a flag-bound field from the flag values into the
// loaded configuration.
var flagFields = map[string]func(dst, src *Config){
	"attributes":   func(dst, src *Config) { dst.Source.File = src.Source.File },
	"driver":       func(dst, src *Config) { dst.Source.Driver = src.Source.Driver },
	"dsn":          func(dst, src *Config) { dst.Source.DSN = src.Source.DSN },
	"project":      func(dst, src *Config) { dst.Source.Project = src.Source.Project },
	"suffix":       func(dst, src *Config) { dst.Source.NumberSuffix = src.Source.NumberSuffix },
	"catalog":      func(dst, src *Config) { dst.Catalog = src.Catalog },
	"catalog-file": func(dst, src *Config) { dst.CatalogFile = src.CatalogFile },
	"store":        func(dst, src *Config) { dst.Store = src.Store },
	"workers":      func(dst, src *Config) { dst.Workers = src.Workers },
	"format":       func(dst, src *Config) { dst.Output.Format = src.Output.Format },
	"cbor":         func(dst, src *Config) { dst.Output.CBOR = src.Output.CBOR },
	"plans":        func(dst, src *Config) { dst.Output.Plans = src.Output.Plans },
	"plot":         func(dst, src *Config) { dst.Output.Plot = src.Output.Plot },
	"scenario":     func(dst, src *Config) { dst.Scenario.Enabled = src.Scenario.Enabled },
	"prefix":       func(dst, src *Config) { dst.Scenario.NamePrefix = src.Scenario.NamePrefix },
	"onset":        func(dst, src *Config) { dst.Scenario.Onset = src.Scenario.Onset },
}

// Register adds the configuration flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	d := Default()
	f.values = *d

	fs.StringVar(&f.Path, "config", "", "Path to YAML configuration file")
	fs.StringVar(&f.values.Source.File, "attributes", "", "Path to YAML attribute file")
	fs.StringVar(&f.values.Source.Driver, "driver", d.Source.Driver, "Database driver for the attribute source (postgres, sqlite3)")
	fs.StringVar(&f.values.Source.DSN, "dsn", "", "Database connection string for the attribute source")
	fs.StringVar(&f.values.Source.Project, "project", "", "Project number")
	fs.StringVar(&f.values.Source.NumberSuffix, "suffix", d.Source.NumberSuffix, "Suffix appended to the project number")
	fs.StringVar(&f.values.Catalog, "catalog", d.Catalog, "Catalog key (e.g. 4110-1, 4120/2)")
	fs.StringVar(&f.values.CatalogFile, "catalog-file", "", "Path to YAML catalog file")
	fs.StringVar(&f.values.Store, "store", "", "Path to catalog store database")
	fs.IntVar(&f.values.Workers, "workers", 0, "Tests solved in parallel (0 = all CPUs)")
	fs.StringVar(&f.values.Output.Format, "format", d.Output.Format, "Report format (text, json)")
	fs.StringVar(&f.values.Output.CBOR, "cbor", "", "Write CBOR export to file")
	fs.StringVar(&f.values.Output.Plans, "plans", "", "Write scenario plans (JSON) to file")
	fs.StringVar(&f.values.Output.Plot, "plot", "", "Write catalog chart to file (png, svg, pdf)")
	fs.BoolVar(&f.values.Scenario.Enabled, "scenario", false, "Generate scenario plans")
	fs.StringVar(&f.values.Scenario.NamePrefix, "prefix", d.Scenario.NamePrefix, "Scenario name prefix")
	fs.Float64Var(&f.values.Scenario.Onset, "onset", d.Scenario.Onset, "Fault onset time in seconds")
}

// Resolve loads the configuration file, if any, and applies the flags that
// were set explicitly. It must be called after fs.Parse.
func (f *Flags) Resolve(fs *flag.FlagSet) (*Config, error) {
	c := Default()
	if f.Path != "" {
		var err error
		if c, err = Load(f.Path); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(fl *flag.Flag) {
		if apply, ok := flagFields[fl.Name]; ok {
			apply(c, &f.values)
		}
	})
	return c, nil
}
