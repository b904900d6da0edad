package composite

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverage-compositor/internal/colorscale"
	"coverage-compositor/internal/layer"
	"coverage-compositor/pkg/colorutil"
)

// Test scale: green=80, yellow=95, red=100, blue=140, magenta=160.
const testScale = `80; 0, 255, 0
95; 255, 255, 0
100; 255, 0, 0
140; 0, 0, 255
160; 255, 0, 255
`

var (
	green   = color.RGBA{0, 255, 0, 255}
	yellow  = color.RGBA{255, 255, 0, 255}
	red     = color.RGBA{255, 0, 0, 255}
	blue    = color.RGBA{0, 0, 255, 255}
	magenta = color.RGBA{255, 0, 255, 255}
)

func loadTestScale(t *testing.T) *colorscale.Scale {
	t.Helper()
	s, err := colorscale.LoadReader(strings.NewReader(testScale))
	require.NoError(t, err)
	return s
}

// uniform returns a 1x1 raster of one color.
func uniform(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

func fullPlacement() Placement {
	return Placement{X0: 0, Y0: 0, Width: 1, Height: 1}
}

func rgbaAt(c *Canvas, x, y int) color.RGBA {
	return c.Image.RGBAAt(x, y)
}

func TestBestSignalStrongerWinsEitherOrder(t *testing.T) {
	scale := loadTestScale(t)

	orders := [][]*image.RGBA{
		{uniform(green), uniform(yellow)}, // 80 then 95
		{uniform(yellow), uniform(green)}, // 95 then 80
	}
	for _, srcs := range orders {
		p := NewBestSignal()
		c := NewCanvas(1, 1)
		p.Prepare(c)
		for i, src := range srcs {
			p.Merge(c, fullPlacement(), &layer.Layer{Index: i}, src, scale)
		}
		p.Finalize(c, nil)

		assert.Equal(t, 80.0, c.Loss[0])
		assert.Equal(t, green, rgbaAt(c, 0, 0), "80 dB layer's own color must win")
	}
}

func TestBestSignalTieFirstLayerWins(t *testing.T) {
	// Two distinct colors that both decode to 100.0.
	scale, err := colorscale.LoadReader(strings.NewReader(testScale + "100; 9, 9, 9\n"))
	require.NoError(t, err)

	p := NewBestSignal()
	c := NewCanvas(1, 1)

	p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, uniform(red), scale)
	p.Merge(c, fullPlacement(), &layer.Layer{Index: 1}, uniform(color.RGBA{9, 9, 9, 255}), scale)

	assert.Equal(t, 100.0, c.Loss[0])
	assert.Equal(t, red, rgbaAt(c, 0, 0), "incumbent keeps the pixel on a tie")
}

func TestUndecodedColorsNeverWin(t *testing.T) {
	scale := loadTestScale(t)
	unknown := uniform(color.RGBA{7, 42, 13, 255})

	policies := []Policy{
		NewBestSignal(),
		NewBestServer(DefaultValidThreshold),
		NewOverlapConsensus(DefaultValidThreshold, 1),
	}
	for _, p := range policies {
		c := NewCanvas(1, 1)
		p.Prepare(c)
		p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, unknown, scale)
		p.Finalize(c, nil)

		assert.Equal(t, colorscale.Undefined, c.Loss[0], "%s: loss must stay undefined", p.Name())
		assert.Equal(t, uint8(0), rgbaAt(c, 0, 0).A, "%s: pixel must stay transparent", p.Name())
	}
}

func TestBestServerThresholdBlocksWeakSignal(t *testing.T) {
	scale := loadTestScale(t)
	p := NewBestServer(150.0)
	c := NewCanvas(1, 1)
	p.Prepare(c)

	// 160 dB is weaker than the cutoff; even alone it claims nothing.
	p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, uniform(magenta), scale)
	p.Finalize(c, nil)

	assert.Equal(t, NoOwner, c.Owner[0])
	assert.Equal(t, colorscale.Undefined, c.Loss[0])
	assert.Equal(t, uint8(0), rgbaAt(c, 0, 0).A)
}

func TestBestServerPaintsPaletteColor(t *testing.T) {
	scale := loadTestScale(t)
	p := NewBestServer(150.0)
	c := NewCanvas(1, 1)
	p.Prepare(c)

	p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, uniform(yellow), scale) // 95
	p.Merge(c, fullPlacement(), &layer.Layer{Index: 1}, uniform(green), scale)  // 80, stronger

	// The visual buffer is untouched until Finalize.
	assert.Equal(t, uint8(0), rgbaAt(c, 0, 0).A)
	assert.Equal(t, 1, c.Owner[0])

	p.Finalize(c, nil)
	assert.Equal(t, colorutil.ServerColor(1), rgbaAt(c, 0, 0),
		"owner pixels take the layer's palette color, never the raster color")
}

func TestBestServerPaletteWraps(t *testing.T) {
	n := len(colorutil.ServerPalette)
	assert.Equal(t, colorutil.ServerColor(0), colorutil.ServerColor(n))
	assert.Equal(t, colorutil.ServerColor(3), colorutil.ServerColor(n+3))
}

func TestOverlapConsensusSingleLayerFiltered(t *testing.T) {
	scale := loadTestScale(t)
	p := NewOverlapConsensus(150.0, 2)
	c := NewCanvas(1, 1)
	p.Prepare(c)

	p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, uniform(green), scale) // 80 dB, valid

	// A best value was recorded, but only one layer voted.
	assert.Equal(t, 80.0, c.Loss[0])
	assert.Equal(t, 1, c.Overlap[0])

	p.Finalize(c, nil)
	assert.Equal(t, uint8(0), rgbaAt(c, 0, 0).A, "lone coverage must be filtered out")
}

func TestOverlapConsensusTwoLayersKept(t *testing.T) {
	scale := loadTestScale(t)
	p := NewOverlapConsensus(150.0, 2)
	c := NewCanvas(1, 1)
	p.Prepare(c)

	p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, uniform(green), scale) // 80
	p.Merge(c, fullPlacement(), &layer.Layer{Index: 1}, uniform(blue), scale)  // 140

	assert.Equal(t, 2, c.Overlap[0], "both valid signals vote even when only one wins")

	p.Finalize(c, nil)
	got := rgbaAt(c, 0, 0)
	assert.Equal(t, green, got, "pixel keeps the strongest layer's color")
}

func TestOverlapConsensusInvalidSignalDoesNotVote(t *testing.T) {
	scale := loadTestScale(t)
	p := NewOverlapConsensus(150.0, 2)
	c := NewCanvas(1, 1)
	p.Prepare(c)

	p.Merge(c, fullPlacement(), &layer.Layer{Index: 0}, uniform(green), scale)   // 80, valid
	p.Merge(c, fullPlacement(), &layer.Layer{Index: 1}, uniform(magenta), scale) // 160, too weak

	assert.Equal(t, 1, c.Overlap[0])

	p.Finalize(c, nil)
	assert.Equal(t, uint8(0), rgbaAt(c, 0, 0).A)
}
