// Package composite merges georeferenced coverage layers onto a shared
// canvas under a selectable merge policy.
package composite

import (
	"fmt"
	"math"

	"coverage-compositor/internal/layer"
	"coverage-compositor/pkg/geobox"
)

// Frame is the shared pixel grid for one compositing run: the union
// bounding box of all layers rasterized at the reference layer's density.
// The reference is the first loaded layer; no resampling is performed, so
// every layer is assumed to share its density.
type Frame struct {
	Box    geobox.Box // union of all layer boxes
	PPDLat float64    // pixels per degree of latitude
	PPDLon float64    // pixels per degree of longitude
	Width  int
	Height int
}

// Placement is the canvas region a layer's raster occupies, cropped to the
// canvas. The source region always starts at the raster origin.
type Placement struct {
	X0     int
	Y0     int
	Width  int
	Height int
}

// NewFrame computes the shared frame from the loaded layers. The first
// layer is the reference.
func NewFrame(layers []*layer.Layer) (Frame, error) {
	if len(layers) == 0 {
		return Frame{}, ErrNoLayers
	}

	ref := layers[0]
	if !ref.Box.Valid() || ref.Width() <= 0 || ref.Height() <= 0 {
		return Frame{}, fmt.Errorf("reference layer %s has a degenerate extent", ref.Name)
	}

	boxes := make([]geobox.Box, len(layers))
	for i, l := range layers {
		boxes[i] = l.Box
	}

	f := Frame{
		Box:    geobox.UnionAll(boxes),
		PPDLat: float64(ref.Height()) / ref.Box.Height(),
		PPDLon: float64(ref.Width()) / ref.Box.Width(),
	}
	f.Height = int(f.Box.Height() * f.PPDLat)
	f.Width = int(f.Box.Width() * f.PPDLon)
	if f.Width <= 0 || f.Height <= 0 {
		return Frame{}, fmt.Errorf("degenerate canvas %dx%d", f.Width, f.Height)
	}
	return f, nil
}

// Placement computes where a layer's raster lands on the canvas. ok is
// false when the cropped intersection is empty and the layer contributes
// nothing.
func (f Frame) Placement(l *layer.Layer) (Placement, bool) {
	yStart := int((f.Box.North - l.Box.North) * f.PPDLat)
	xStart := int((l.Box.West - f.Box.West) * f.PPDLon)
	yEnd := min(yStart+l.Height(), f.Height)
	xEnd := min(xStart+l.Width(), f.Width)

	p := Placement{X0: xStart, Y0: yStart, Width: xEnd - xStart, Height: yEnd - yStart}
	if p.Width <= 0 || p.Height <= 0 {
		return Placement{}, false
	}
	return p, true
}

// DensityMismatch reports whether a layer's native pixel density deviates
// from the frame's by more than the given relative tolerance on either
// axis. Mismatched layers are placed at the wrong scale; callers should
// warn.
func (f Frame) DensityMismatch(l *layer.Layer, tol float64) bool {
	ppdLat, ppdLon := l.Density()
	return relDiff(ppdLat, f.PPDLat) > tol || relDiff(ppdLon, f.PPDLon) > tol
}

func relDiff(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return math.Abs(a-b) / math.Abs(b)
}
