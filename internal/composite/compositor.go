package composite

import (
	"errors"
	"image"
	"log"

	"coverage-compositor/internal/colorscale"
	"coverage-compositor/internal/layer"
	"coverage-compositor/pkg/geobox"
)

// ErrNoLayers indicates that no layer was available to composite.
var ErrNoLayers = errors.New("composite: no layers to merge")

// DefaultDensityTolerance is the relative pixel-density deviation from the
// reference layer above which a warning is logged.
const DefaultDensityTolerance = 0.01

// Compositor merges loaded layers into one composite canvas under a policy.
type Compositor struct {
	Scale  *colorscale.Scale
	Policy Policy

	// Logger receives per-layer progress and skip messages. Nil disables
	// logging.
	Logger *log.Logger

	// DensityTolerance overrides DefaultDensityTolerance when positive.
	DensityTolerance float64
}

// Result is the outcome of one compositing run.
type Result struct {
	Image  *image.RGBA
	Box    geobox.Box
	Frame  Frame
	Canvas *Canvas

	// Merged is the number of layers actually folded into the canvas.
	Merged int
}

// Run composites the layers in order. Layers are folded strictly
// sequentially; a layer whose raster cannot be decoded at merge time is
// logged and skipped without aborting the run.
func (cp *Compositor) Run(layers []*layer.Layer) (*Result, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	frame, err := NewFrame(layers)
	if err != nil {
		return nil, err
	}
	cp.logf("canvas: %dx%d pixels covering %s", frame.Width, frame.Height, frame.Box)

	canvas := NewCanvas(frame.Width, frame.Height)
	cp.Policy.Prepare(canvas)

	tol := cp.DensityTolerance
	if tol <= 0 {
		tol = DefaultDensityTolerance
	}

	merged := 0
	for _, l := range layers {
		if frame.DensityMismatch(l, tol) {
			ppdLat, ppdLon := l.Density()
			cp.logf("warning: %s density %.2fx%.2f px/deg differs from reference %.2fx%.2f; layer will be misplaced",
				l.Name, ppdLat, ppdLon, frame.PPDLat, frame.PPDLon)
		}

		pl, ok := frame.Placement(l)
		if !ok {
			cp.logf("skipping %s: degenerate overlap with canvas", l.Name)
			continue
		}

		src, err := l.DecodeRaster()
		if err != nil {
			cp.logf("skipping %s: %v", l.Name, err)
			continue
		}

		cp.logf("merging %s (%s)", l.Name, cp.Policy.Name())
		cp.Policy.Merge(canvas, pl, l, src, cp.Scale)
		merged++
		// src goes out of scope here; per-layer pixel data is not retained.
	}

	cp.Policy.Finalize(canvas, layers)

	return &Result{
		Image:  canvas.Image,
		Box:    frame.Box,
		Frame:  frame,
		Canvas: canvas,
		Merged: merged,
	}, nil
}

func (cp *Compositor) logf(format string, args ...any) {
	if cp.Logger != nil {
		cp.Logger.Printf(format, args...)
	}
}
