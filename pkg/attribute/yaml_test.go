package attribute

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapping(t *testing.T) {
	s, err := Parse([]byte(`
attributes:
  zUckVnb: "20,0"
  zSkkVAnb: 250000
  zYkGradNB: 80.5
  sAnschlussartEZEnb: MS-Netz
`))
	require.NoError(t, err)
	assert.Equal(t, "20,0", s["zUckVnb"])
	assert.Equal(t, 250000, s["zSkkVAnb"])
	assert.Equal(t, 80.5, s["zYkGradNB"])
	assert.Equal(t, "MS-Netz", s["sAnschlussartEZEnb"])
}

func TestParseRows(t *testing.T) {
	s, err := Parse([]byte(`
attributes:
  zUnkVnb: "10"
rows:
  - shortname: zUnkVnb
    type: 1
    stringvalue: "20"
  - shortname: zSkkVAnb
    type: 2
    integervalue: 250000
  - shortname: blank
    type: 1
    stringvalue: ""
`))
	require.NoError(t, err)
	assert.Equal(t, "20", s["zUnkVnb"], "rows override the mapping")
	assert.Equal(t, int64(250000), s["zSkkVAnb"])
	assert.NotContains(t, s, "blank")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("attributes: [1, 2"))
	assert.Error(t, err)

	_, err = Parse([]byte("rows:\n  - type: 1\n"))
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	data, err := Marshal(Set{"zUckVnb": "20"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	s, err := FileSource{Path: path}.Load(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "20", s["zUckVnb"])

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "none.yaml")}.Load(context.Background(), "")
	assert.Error(t, err)
}
