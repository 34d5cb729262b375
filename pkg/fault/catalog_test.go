package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAppendKeepsOrder(t *testing.T) {
	c := NewCatalog(Key{Standard: "4110", Type: 1})
	require.NoError(t, c.Append(Test{ID: 3, Phases: 3}))
	require.NoError(t, c.Append(Test{ID: 1, Phases: 3}))
	require.NoError(t, c.Append(Test{ID: 2, Phases: 3}))

	var ids []int
	for _, tc := range c.All() {
		ids = append(ids, tc.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
	assert.Equal(t, 3, c.Len())
}

func TestCatalogDuplicateID(t *testing.T) {
	key := Key{Standard: "4110", Type: 1}
	c := NewCatalog(key)
	require.NoError(t, c.Append(Test{ID: 7}))

	err := c.Append(Test{ID: 7, Duration: 1})
	require.Error(t, err)

	var dup *DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, 7, dup.ID)
	assert.Equal(t, key, dup.Key)
	assert.Equal(t, 1, c.Len())
}

func TestCatalogRemoveReindexes(t *testing.T) {
	c := NewCatalog(Key{Standard: "x", Type: 1})
	for id := 1; id <= 4; id++ {
		require.NoError(t, c.Append(Test{ID: id}))
	}

	assert.True(t, c.Remove(2))
	assert.False(t, c.Remove(2))

	got, ok := c.Get(4)
	require.True(t, ok)
	assert.Equal(t, 4, got.ID)

	// the freed id can be appended again
	require.NoError(t, c.Append(Test{ID: 2}))
	tests := c.Tests()
	assert.Equal(t, 2, tests[len(tests)-1].ID)
}

func TestCatalogReplace(t *testing.T) {
	c := NewCatalog(Key{Standard: "x", Type: 1})
	require.NoError(t, c.Append(Test{ID: 1, Duration: 0.15}))

	assert.True(t, c.Replace(Test{ID: 1, Duration: 0.22}))
	assert.False(t, c.Replace(Test{ID: 9}))

	got, _ := c.Get(1)
	assert.Equal(t, 0.22, got.Duration)
}

func TestCatalogTestsIsCopy(t *testing.T) {
	c := NewCatalog(Key{Standard: "x", Type: 1})
	require.NoError(t, c.Append(Test{ID: 1, Duration: 1}))

	tests := c.Tests()
	tests[0].Duration = 99

	got, _ := c.Get(1)
	assert.Equal(t, 1.0, got.Duration)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"4110-1", Key{"4110", 1}, false},
		{"4120/2", Key{"4120", 2}, false},
		{"4110 type 2", Key{"4110", 2}, false},
		{"FAULTS_4120_TYP1", Key{"4120", 1}, false},
		{"faults_4110_typ2", Key{"4110", 2}, false},
		{"4110", Key{}, true},
		{"", Key{}, true},
		{"4110-0", Key{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyFormats(t *testing.T) {
	k := Key{Standard: "4110", Type: 1}
	assert.Equal(t, "4110-1", k.String())
	assert.Equal(t, "FAULTS_4110_TYP1", k.TableName())

	back, err := ParseKey(k.TableName())
	require.NoError(t, err)
	assert.Equal(t, k, back)
}
