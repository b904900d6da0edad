// Package legend renders legend images for composite coverage maps: one
// row per entry, a right-aligned label next to a filled color box, on a
// transparent background.
package legend

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"coverage-compositor/internal/colorscale"
	"coverage-compositor/internal/layer"
	"coverage-compositor/pkg/colorutil"
)

// Layout constants, in pixels.
const (
	entryHeight = 30
	boxWidth    = 40
	boxHeight   = 25
	padding     = 5
	leftMargin  = 5
)

var face font.Face = basicfont.Face7x13

// Item is one legend row.
type Item struct {
	Label string
	Color color.RGBA
}

// RenderScale renders the loss color scale, one row per entry in ascending
// loss order.
func RenderScale(s *colorscale.Scale) *image.RGBA {
	items := make([]Item, 0, s.Len())
	for _, e := range s.Entries() {
		items = append(items, Item{
			Label: fmt.Sprintf("%.0f dB", e.Value),
			Color: colorutil.Opaque(e.R, e.G, e.B),
		})
	}
	return Render(items)
}

// RenderServers renders one row per layer with its assigned palette color,
// for best-server composites.
func RenderServers(layers []*layer.Layer) *image.RGBA {
	items := make([]Item, 0, len(layers))
	for _, l := range layers {
		items = append(items, Item{Label: l.Name, Color: colorutil.ServerColor(l.Index)})
	}
	return Render(items)
}

// Render draws the legend rows. Image width is sized to the widest label.
func Render(items []Item) *image.RGBA {
	maxTextWidth := 0
	for _, it := range items {
		if w := font.MeasureString(face, it.Label).Ceil(); w > maxTextWidth {
			maxTextWidth = w
		}
	}

	totalWidth := leftMargin + maxTextWidth + padding + boxWidth
	totalHeight := len(items)*entryHeight + 2*padding
	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))

	y := padding
	for _, it := range items {
		textWidth := font.MeasureString(face, it.Label).Ceil()
		textX := totalWidth - boxWidth - padding - textWidth
		baseline := y + face.Metrics().Ascent.Ceil()

		// White label over a 1px black outline for readability on any map.
		for _, ox := range []int{-1, 1} {
			for _, oy := range []int{-1, 1} {
				drawString(img, textX+ox, baseline+oy, it.Label, colorutil.Black)
			}
		}
		drawString(img, textX, baseline, it.Label, colorutil.White)

		fillRect(img, totalWidth-boxWidth, y, totalWidth, y+boxHeight, it.Color)
		strokeRect(img, totalWidth-boxWidth, y, totalWidth, y+boxHeight, colorutil.Black)

		y += entryHeight
	}
	return img
}

func drawString(dst *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// fillRect fills the half-open region [x0,x1) x [y0,y1), clipped to dst.
func fillRect(dst *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(x0, y0, x1, y1).Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetRGBA(x, y, col)
		}
	}
}

// strokeRect draws a 1px border just inside the same region.
func strokeRect(dst *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(x0, y0, x1, y1).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, col)
		dst.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, col)
		dst.SetRGBA(r.Max.X-1, y, col)
	}
}
