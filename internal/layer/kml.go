package layer

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"coverage-compositor/pkg/geobox"
)

// ErrNoBoundingBox indicates a descriptor without a LatLonBox element.
var ErrNoBoundingBox = errors.New("layer: no LatLonBox in descriptor")

// parseLatLonBox extracts the first LatLonBox from a KML document. Tag
// matching uses local names only, so any namespace prefix is accepted.
func parseLatLonBox(path string) (geobox.Box, error) {
	f, err := os.Open(path)
	if err != nil {
		return geobox.Box{}, fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer f.Close()

	box, err := decodeLatLonBox(f)
	if err != nil {
		return geobox.Box{}, fmt.Errorf("%s: %w", path, err)
	}
	return box, nil
}

func decodeLatLonBox(r io.Reader) (geobox.Box, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return geobox.Box{}, ErrNoBoundingBox
		}
		if err != nil {
			return geobox.Box{}, fmt.Errorf("malformed XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "LatLonBox" {
			continue
		}
		return decodeBoxFields(dec, start)
	}
}

// decodeBoxFields reads the numeric north/south/east/west children of an
// already-consumed LatLonBox start element.
func decodeBoxFields(dec *xml.Decoder, start xml.StartElement) (geobox.Box, error) {
	var raw struct {
		North string `xml:"north"`
		South string `xml:"south"`
		East  string `xml:"east"`
		West  string `xml:"west"`
	}
	if err := dec.DecodeElement(&raw, &start); err != nil {
		return geobox.Box{}, fmt.Errorf("malformed LatLonBox: %w", err)
	}

	var box geobox.Box
	var err error
	if box.North, err = parseDegrees("north", raw.North); err != nil {
		return geobox.Box{}, err
	}
	if box.South, err = parseDegrees("south", raw.South); err != nil {
		return geobox.Box{}, err
	}
	if box.East, err = parseDegrees("east", raw.East); err != nil {
		return geobox.Box{}, err
	}
	if box.West, err = parseDegrees("west", raw.West); err != nil {
		return geobox.Box{}, err
	}
	return box, nil
}

func parseDegrees(name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid <%s> %q in LatLonBox", name, text)
	}
	return v, nil
}
