// Package layer provides loading of georeferenced coverage layers: a KML
// descriptor carrying a LatLonBox paired with a raster image of the same
// base name.
package layer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"

	"coverage-compositor/pkg/geobox"

	_ "github.com/spakin/netpbm"
)

// Raster extensions tried in order when resolving a descriptor's image.
var rasterExtensions = []string{".png", ".ppm"}

// ErrRasterNotFound indicates that no raster image exists alongside the
// KML descriptor.
var ErrRasterNotFound = errors.New("layer: raster image not found")

// Layer is one input coverage layer: an immutable raster plus its
// geographic bounding box.
type Layer struct {
	Name       string // descriptor base name, without extension
	KMLPath    string
	RasterPath string
	Box        geobox.Box

	// Index is the layer's ordinal position in discovery order. It is
	// assigned by the caller and identifies the layer in best-server mode.
	Index int

	width  int
	height int
}

// New creates a layer from already-known metadata, for callers that manage
// raster data themselves rather than loading descriptor pairs from disk.
func New(name string, box geobox.Box, width, height int) *Layer {
	return &Layer{Name: name, Box: box, width: width, height: height}
}

// Load reads a layer's KML descriptor and resolves its raster image.
// The raster itself is not decoded; only its dimensions are read.
func Load(kmlPath string) (*Layer, error) {
	box, err := parseLatLonBox(kmlPath)
	if err != nil {
		return nil, err
	}

	base := kmlPath[:len(kmlPath)-len(filepath.Ext(kmlPath))]
	l := &Layer{
		Name:    filepath.Base(base),
		KMLPath: kmlPath,
		Box:     box,
	}
	for _, ext := range rasterExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			l.RasterPath = base + ext
			break
		}
	}
	if l.RasterPath == "" {
		return nil, fmt.Errorf("%w for %s", ErrRasterNotFound, kmlPath)
	}

	f, err := os.Open(l.RasterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read raster header %s: %w", l.RasterPath, err)
	}
	l.width, l.height = cfg.Width, cfg.Height

	return l, nil
}

// Width returns the raster width in pixels.
func (l *Layer) Width() int { return l.width }

// Height returns the raster height in pixels.
func (l *Layer) Height() int { return l.height }

// Density returns the layer's native pixel density in pixels per degree of
// latitude and longitude.
func (l *Layer) Density() (ppdLat, ppdLon float64) {
	return float64(l.height) / l.Box.Height(), float64(l.width) / l.Box.Width()
}

// DecodeRaster decodes the full raster into RGBA form. Any alpha channel in
// the source is carried in the buffer but ignored by the merge policies,
// which read RGB only.
func (l *Layer) DecodeRaster() (*image.RGBA, error) {
	f, err := os.Open(l.RasterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster %s: %w", l.RasterPath, err)
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func (l *Layer) String() string {
	return fmt.Sprintf("%s (%dx%d, %s)", l.Name, l.width, l.height, l.Box)
}
