// Package colorscale parses SPLAT! loss color files (.lcf) and maps raster
// colors to path-loss values.
package colorscale

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Undefined is the path-loss value assigned to pixels whose color has no
// table entry. It is larger than any meaningful loss value and never wins
// a best-signal comparison.
const Undefined = 9999.0

// ErrEmptyTable indicates that no entry could be parsed from the source.
var ErrEmptyTable = errors.New("colorscale: no entries in table")

// Entry is a single color-scale entry: a loss value and its display color.
type Entry struct {
	Value float64
	R     uint8
	G     uint8
	B     uint8
}

// Scale is an immutable color-to-loss lookup table.
type Scale struct {
	byColor map[[3]uint8]float64
	entries []Entry
}

// Fields are separated by any of ";", ":" or "," with optional trailing spaces.
var fieldSep = regexp.MustCompile(`[;:,]\s*`)

// Load reads a color scale from a file.
func Load(path string) (*Scale, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open color scale: %w", err)
	}
	defer f.Close()

	s, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadReader parses a color scale from a reader. Blank lines and lines
// starting with "#" are skipped. Each remaining line must split into at
// least four fields: loss value, red, green, blue. Lines whose fields fail
// numeric conversion are skipped rather than failing the whole load.
// A repeated color overwrites the value of its earlier entry (last wins).
func LoadReader(r io.Reader) (*Scale, error) {
	s := &Scale{byColor: make(map[[3]uint8]float64)}
	slot := make(map[[3]uint8]int) // color -> index into s.entries

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := fieldSep.Split(line, -1)
		if len(parts) < 4 {
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			continue
		}
		var rgb [3]uint8
		ok := true
		for i := 0; i < 3; i++ {
			c, err := strconv.Atoi(strings.TrimSpace(parts[i+1]))
			if err != nil || c < 0 || c > 255 {
				ok = false
				break
			}
			rgb[i] = uint8(c)
		}
		if !ok {
			continue
		}

		s.byColor[rgb] = value
		if i, seen := slot[rgb]; seen {
			s.entries[i].Value = value
		} else {
			slot[rgb] = len(s.entries)
			s.entries = append(s.entries, Entry{Value: value, R: rgb[0], G: rgb[1], B: rgb[2]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read color scale: %w", err)
	}
	if len(s.entries) == 0 {
		return nil, ErrEmptyTable
	}

	// Legend order: ascending loss, ties keep first-seen order.
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Value < s.entries[j].Value
	})

	return s, nil
}

// Lookup returns the loss value for an exact color match, or Undefined if
// the color has no entry. Matching has no tolerance: rasters re-encoded
// with lossy compression or antialiasing will resolve some pixels to
// Undefined.
func (s *Scale) Lookup(r, g, b uint8) float64 {
	if v, ok := s.byColor[[3]uint8{r, g, b}]; ok {
		return v
	}
	return Undefined
}

// Entries returns the legend entries sorted ascending by loss value.
// The returned slice must not be modified.
func (s *Scale) Entries() []Entry {
	return s.entries
}

// Len returns the number of distinct colors in the table.
func (s *Scale) Len() int {
	return len(s.entries)
}
