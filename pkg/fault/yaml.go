package fault

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadError provides details about a catalog file that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// catalogFile is the YAML representation of a catalog.
type catalogFile struct {
	Standard    string     `yaml:"standard"`
	Type        int        `yaml:"type"`
	Description string     `yaml:"description,omitempty"`
	Tests       []testFile `yaml:"tests"`
}

type testFile struct {
	ID              int      `yaml:"id"`
	Duration        float64  `yaml:"duration"`
	FaultType       uint8    `yaml:"fault_type"`
	ResidualVoltage float64  `yaml:"residual_voltage"`
	Leg             string   `yaml:"leg"`
	ReactivePower   string   `yaml:"reactive_power"`
	Phases          int      `yaml:"phases"`
	PreFaultVoltage *float64 `yaml:"pre_fault_voltage,omitempty"`
}

// ParseCatalog parses a catalog from YAML bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if f.Standard == "" || f.Type <= 0 {
		return nil, &LoadError{Message: "catalog standard and type are required"}
	}
	if len(f.Tests) == 0 {
		return nil, &LoadError{Message: "catalog must have at least one test"}
	}

	c := NewCatalog(Key{Standard: f.Standard, Type: f.Type})
	for i, tf := range f.Tests {
		t, err := tf.test()
		if err != nil {
			return nil, &LoadError{Message: "test #" + strconv.Itoa(i+1), Cause: err}
		}
		if err := c.Append(t); err != nil {
			return nil, &LoadError{Message: "test #" + strconv.Itoa(i+1), Cause: err}
		}
	}
	return c, nil
}

func (tf testFile) test() (Test, error) {
	leg := Local
	if tf.Leg != "" {
		var err error
		if leg, err = ParseGridLeg(tf.Leg); err != nil {
			return Test{}, err
		}
	}
	q, _ := ParseReactivePowerMode(tf.ReactivePower)
	uv := 1.0
	if tf.PreFaultVoltage != nil {
		uv = *tf.PreFaultVoltage
	}
	t := Test{
		ID:              tf.ID,
		Duration:        tf.Duration,
		FaultType:       FaultType(tf.FaultType),
		ResidualVoltage: tf.ResidualVoltage,
		Leg:             leg,
		ReactivePower:   q,
		Phases:          tf.Phases,
		PreFaultVoltage: uv,
	}
	return t, t.Validate()
}

// MarshalCatalog encodes a catalog as YAML.
func MarshalCatalog(c *Catalog) ([]byte, error) {
	f := catalogFile{
		Standard: c.Key().Standard,
		Type:     c.Key().Type,
	}
	for _, t := range c.All() {
		uv := t.PreFaultVoltage
		f.Tests = append(f.Tests, testFile{
			ID:              t.ID,
			Duration:        t.Duration,
			FaultType:       uint8(t.FaultType),
			ResidualVoltage: t.ResidualVoltage,
			Leg:             t.Leg.String(),
			ReactivePower:   t.ReactivePower.String(),
			Phases:          t.Phases,
			PreFaultVoltage: &uv,
		})
	}
	return yaml.Marshal(&f)
}

// LoadCatalog loads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	c, err := ParseCatalog(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return c, nil
}

// LoadDirectory loads all catalogs from a directory.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{File: dir, Message: "failed to read directory", Cause: err}
	}

	var catalogs []*Catalog
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		c, err := LoadCatalog(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, nil
}
