package composite

import (
	"image"

	"coverage-compositor/internal/colorscale"
)

// NoOwner marks a canvas pixel that no layer has claimed in best-server mode.
const NoOwner = -1

// Canvas holds the co-indexed working buffers for one compositing run:
// the best loss value per pixel, the visual output, and the auxiliary grid
// of whichever policy is active. Buffers are row-major, index y*Width+x.
// A Canvas belongs to a single Compositor run and is never shared.
type Canvas struct {
	Width  int
	Height int

	// Loss is the strongest (lowest) decoded value seen per pixel,
	// initialized to colorscale.Undefined.
	Loss []float64

	// Image is the visual output; zero alpha means no qualifying data.
	Image *image.RGBA

	// Owner is the claiming layer's index per pixel (best-server mode
	// only, nil otherwise).
	Owner []int

	// Overlap counts layers with a valid signal per pixel (consensus
	// mode only, nil otherwise).
	Overlap []int
}

// NewCanvas allocates the value and visual buffers.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		Width:  width,
		Height: height,
		Loss:   make([]float64, width*height),
		Image:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	for i := range c.Loss {
		c.Loss[i] = colorscale.Undefined
	}
	return c
}

// EnsureOwner allocates the owner grid, initialized to NoOwner.
func (c *Canvas) EnsureOwner() {
	if c.Owner != nil {
		return
	}
	c.Owner = make([]int, c.Width*c.Height)
	for i := range c.Owner {
		c.Owner[i] = NoOwner
	}
}

// EnsureOverlap allocates the overlap counter grid.
func (c *Canvas) EnsureOverlap() {
	if c.Overlap == nil {
		c.Overlap = make([]int, c.Width*c.Height)
	}
}

// setOpaque writes an opaque RGB color at (x, y).
func (c *Canvas) setOpaque(x, y int, r, g, b uint8) {
	i := c.Image.PixOffset(x, y)
	c.Image.Pix[i] = r
	c.Image.Pix[i+1] = g
	c.Image.Pix[i+2] = b
	c.Image.Pix[i+3] = 0xff
}

// clearPixel makes (x, y) fully transparent.
func (c *Canvas) clearPixel(x, y int) {
	i := c.Image.PixOffset(x, y)
	c.Image.Pix[i] = 0
	c.Image.Pix[i+1] = 0
	c.Image.Pix[i+2] = 0
	c.Image.Pix[i+3] = 0
}
