// Package colorutil provides shared color utilities for the coverage compositor.
package colorutil

import "image/color"

// Common colors used by the legend renderers.
var (
	Black       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.RGBA{}
)

// ServerPalette is the fixed set of display colors assigned to layers in
// best-server mode. Assignment is sequential over layer order, wrapping
// modulo the palette size.
var ServerPalette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},    // Red
	{R: 0, G: 0, B: 255, A: 255},    // Blue
	{R: 0, G: 128, B: 0, A: 255},    // Green
	{R: 255, G: 165, B: 0, A: 255},  // Orange
	{R: 128, G: 0, B: 128, A: 255},  // Purple
	{R: 0, G: 255, B: 255, A: 255},  // Cyan
	{R: 255, G: 20, B: 147, A: 255}, // Deep pink
	{R: 255, G: 255, B: 0, A: 255},  // Yellow
	{R: 139, G: 69, B: 19, A: 255},  // Brown
	{R: 0, G: 0, B: 0, A: 255},      // Black
}

// ServerColor returns the palette color for the given layer index.
func ServerColor(index int) color.RGBA {
	if index < 0 {
		index = -index
	}
	return ServerPalette[index%len(ServerPalette)]
}

// Opaque returns an opaque RGBA color from 8-bit channel values.
func Opaque(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
