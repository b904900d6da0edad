package colorscale

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReader(t *testing.T) {
	src := `# SPLAT! loss color file
80; 0, 255, 0
100: 255, 255, 0

120, 255, 0, 0
`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 80.0, s.Lookup(0, 255, 0))
	assert.Equal(t, 100.0, s.Lookup(255, 255, 0))
	assert.Equal(t, 120.0, s.Lookup(255, 0, 0))
}

func TestLookupUnknownColor(t *testing.T) {
	s, err := LoadReader(strings.NewReader("80;0,255,0"))
	require.NoError(t, err)

	assert.Equal(t, Undefined, s.Lookup(1, 2, 3))
	assert.Equal(t, Undefined, s.Lookup(0, 255, 1))
}

func TestMalformedLinesSkipped(t *testing.T) {
	src := `not-a-number; 0, 255, 0
80; 0, 255, 0
90; 12, nope, 34
100; 300, 0, 0
110; 1, 2
`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)

	// Only the one fully numeric, in-range line survives.
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 80.0, s.Lookup(0, 255, 0))
}

func TestDuplicateColorLastWins(t *testing.T) {
	src := `80; 0, 255, 0
130; 0, 255, 0
`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 130.0, s.Lookup(0, 255, 0))
	assert.Equal(t, 130.0, s.Entries()[0].Value)
}

func TestLegendOrdering(t *testing.T) {
	src := `120; 255, 0, 0
80; 0, 255, 0
100; 255, 255, 0
`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)

	var values []float64
	for _, e := range s.Entries() {
		values = append(values, e.Value)
	}
	assert.Equal(t, []float64{80, 100, 120}, values)
}

func TestLegendOrderingStableTies(t *testing.T) {
	src := `100; 1, 1, 1
100; 2, 2, 2
100; 3, 3, 3
`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, uint8(1), entries[0].R)
	assert.Equal(t, uint8(2), entries[1].R)
	assert.Equal(t, uint8(3), entries[2].R)
}

func TestEmptyTable(t *testing.T) {
	_, err := LoadReader(strings.NewReader("# comments only\n\n"))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.lcf"))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "want fs.ErrNotExist, got %v", err)
}
