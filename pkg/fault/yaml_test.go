package fault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
standard: "4110"
type: 1
tests:
  - id: 1
    duration: 0.150
    fault_type: 0
    residual_voltage: 0.325
    leg: g
    reactive_power: untererregt
    phases: 3
    pre_fault_voltage: 0.95
  - id: 9
    duration: 5
    fault_type: 1
    residual_voltage: 1.05
    leg: local
    reactive_power: overexcited
    phases: 3
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, Key{"4110", 1}, c.Key())
	require.Equal(t, 2, c.Len())

	first, _ := c.Get(1)
	assert.Equal(t, ReactiveUnderexcited, first.ReactivePower)
	assert.Equal(t, 0.95, first.PreFaultVoltage)

	second, _ := c.Get(9)
	assert.Equal(t, 1.0, second.PreFaultVoltage, "pre-fault factor defaults to 1")
	assert.Equal(t, KindSwitchingStep, second.Kind())
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "standard: [unclosed"},
		{"missing standard", "type: 1\ntests:\n  - id: 1\n    phases: 3\n"},
		{"no tests", "standard: \"4110\"\ntype: 1\n"},
		{"bad phases", "standard: \"4110\"\ntype: 1\ntests:\n  - id: 1\n    phases: 5\n"},
		{"bad leg", "standard: \"4110\"\ntype: 1\ntests:\n  - id: 1\n    phases: 3\n    leg: sideways\n"},
		{"duplicate", "standard: \"4110\"\ntype: 1\ntests:\n  - id: 1\n    phases: 3\n  - id: 1\n    phases: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le))
		})
	}
}

func TestMarshalCatalogRoundTrip(t *testing.T) {
	orig, err := Standard(Key{StandardHV, 2})
	require.NoError(t, err)

	data, err := MarshalCatalog(orig)
	require.NoError(t, err)

	back, err := ParseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, orig.Key(), back.Key())
	assert.Equal(t, orig.Tests(), back.Tests())
}

func TestLoadCatalogFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(sampleCatalog), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	c, err := LoadCatalog(filepath.Join(dir, "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	all, err := LoadDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.File, "missing.yaml")
}
