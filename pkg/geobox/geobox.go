// Package geobox provides the geographic bounding-box type used throughout the application.
package geobox

import (
	"fmt"
	"math"
)

// Box represents a geographic bounding box in decimal degrees.
// North must be greater than South, and East greater than West.
type Box struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// New creates a new Box.
func New(north, south, east, west float64) Box {
	return Box{North: north, South: south, East: east, West: west}
}

// Width returns the longitudinal span in degrees.
func (b Box) Width() float64 {
	return b.East - b.West
}

// Height returns the latitudinal span in degrees.
func (b Box) Height() float64 {
	return b.North - b.South
}

// Valid returns true if the box spans a positive area.
func (b Box) Valid() bool {
	return b.North > b.South && b.East > b.West
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(other Box) Box {
	return Box{
		North: math.Max(b.North, other.North),
		South: math.Min(b.South, other.South),
		East:  math.Max(b.East, other.East),
		West:  math.Min(b.West, other.West),
	}
}

// UnionAll returns the smallest box containing every box in the slice.
// The zero Box is returned for an empty slice.
func UnionAll(boxes []Box) Box {
	if len(boxes) == 0 {
		return Box{}
	}
	u := boxes[0]
	for _, b := range boxes[1:] {
		u = u.Union(b)
	}
	return u
}

// Contains returns true if the point (lat, lon) lies inside the box.
func (b Box) Contains(lat, lon float64) bool {
	return lat <= b.North && lat >= b.South &&
		lon <= b.East && lon >= b.West
}

func (b Box) String() string {
	return fmt.Sprintf("N%.6f S%.6f E%.6f W%.6f", b.North, b.South, b.East, b.West)
}
