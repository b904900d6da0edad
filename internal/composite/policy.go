package composite

import (
	"image"

	"coverage-compositor/internal/colorscale"
	"coverage-compositor/internal/layer"
	"coverage-compositor/pkg/colorutil"
)

// Default thresholds shared by the best-server and consensus policies.
const (
	// DefaultValidThreshold is the weakest path loss (dB) still counted
	// as a usable signal.
	DefaultValidThreshold = 150.0

	// DefaultMinOverlap is the number of layers that must independently
	// cover a pixel for it to survive consensus filtering.
	DefaultMinOverlap = 2
)

// Policy folds one layer's decoded pixels into the canvas. Merge is called
// once per layer over its cropped overlap region; Finalize once after all
// layers have been folded.
type Policy interface {
	Name() string

	// Prepare allocates any auxiliary canvas buffer the policy needs.
	Prepare(c *Canvas)

	// Merge folds the layer's raster region into the canvas. src is the
	// decoded raster; the region folded starts at the raster origin and
	// spans pl.Width x pl.Height.
	Merge(c *Canvas, pl Placement, l *layer.Layer, src *image.RGBA, scale *colorscale.Scale)

	// Finalize runs the policy's post-merge pass over the whole canvas.
	Finalize(c *Canvas, layers []*layer.Layer)
}

// srcRGB reads the RGB channels of the raster pixel at (x, y).
func srcRGB(src *image.RGBA, x, y int) (r, g, b uint8) {
	i := src.PixOffset(x, y)
	return src.Pix[i], src.Pix[i+1], src.Pix[i+2]
}

// BestSignal keeps, per pixel, the strongest decoded signal of any layer
// and that layer's own raster color. There is no validity cutoff: any
// decodable signal can win. Ties keep the incumbent, so layer order is part
// of the result.
type BestSignal struct{}

// NewBestSignal creates the best-signal policy.
func NewBestSignal() *BestSignal { return &BestSignal{} }

func (*BestSignal) Name() string { return "best-signal" }

func (*BestSignal) Prepare(*Canvas) {}

func (*BestSignal) Merge(c *Canvas, pl Placement, _ *layer.Layer, src *image.RGBA, scale *colorscale.Scale) {
	for y := 0; y < pl.Height; y++ {
		for x := 0; x < pl.Width; x++ {
			r, g, b := srcRGB(src, x, y)
			v := scale.Lookup(r, g, b)
			if v == colorscale.Undefined {
				continue
			}
			idx := (pl.Y0+y)*c.Width + pl.X0 + x
			if v < c.Loss[idx] {
				c.Loss[idx] = v
				c.setOpaque(pl.X0+x, pl.Y0+y, r, g, b)
			}
		}
	}
}

func (*BestSignal) Finalize(*Canvas, []*layer.Layer) {}

// BestServer records, per pixel, which layer provides the strongest valid
// signal. The visual buffer is painted only in Finalize, each owned pixel
// taking its layer's palette color; unclaimed pixels stay transparent.
type BestServer struct {
	// ValidThreshold is the weakest loss (dB) that can claim ownership.
	ValidThreshold float64
}

// NewBestServer creates the attributed best-server policy.
func NewBestServer(validThreshold float64) *BestServer {
	return &BestServer{ValidThreshold: validThreshold}
}

func (*BestServer) Name() string { return "best-server" }

func (*BestServer) Prepare(c *Canvas) { c.EnsureOwner() }

func (p *BestServer) Merge(c *Canvas, pl Placement, l *layer.Layer, src *image.RGBA, scale *colorscale.Scale) {
	for y := 0; y < pl.Height; y++ {
		for x := 0; x < pl.Width; x++ {
			r, g, b := srcRGB(src, x, y)
			v := scale.Lookup(r, g, b)
			if v > p.ValidThreshold {
				continue
			}
			idx := (pl.Y0+y)*c.Width + pl.X0 + x
			if v < c.Loss[idx] {
				c.Loss[idx] = v
				c.Owner[idx] = l.Index
			}
		}
	}
}

func (*BestServer) Finalize(c *Canvas, _ []*layer.Layer) {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			owner := c.Owner[y*c.Width+x]
			if owner == NoOwner {
				continue
			}
			col := colorutil.ServerColor(owner)
			c.setOpaque(x, y, col.R, col.G, col.B)
		}
	}
}

// OverlapConsensus keeps the threshold-gated best signal like BestServer
// but also counts, per pixel, how many layers meet the validity threshold
// there. Finalize blanks every pixel short of the minimum count, so output
// survives only where enough layers agree there is coverage.
type OverlapConsensus struct {
	ValidThreshold float64

	// MinCount is the number of valid layers required to keep a pixel.
	MinCount int
}

// NewOverlapConsensus creates the overlap-consensus policy.
func NewOverlapConsensus(validThreshold float64, minCount int) *OverlapConsensus {
	return &OverlapConsensus{ValidThreshold: validThreshold, MinCount: minCount}
}

func (*OverlapConsensus) Name() string { return "overlap-consensus" }

func (*OverlapConsensus) Prepare(c *Canvas) { c.EnsureOverlap() }

func (p *OverlapConsensus) Merge(c *Canvas, pl Placement, _ *layer.Layer, src *image.RGBA, scale *colorscale.Scale) {
	for y := 0; y < pl.Height; y++ {
		for x := 0; x < pl.Width; x++ {
			r, g, b := srcRGB(src, x, y)
			v := scale.Lookup(r, g, b)
			if v > p.ValidThreshold {
				continue
			}
			idx := (pl.Y0+y)*c.Width + pl.X0 + x

			// Every valid signal is a vote, whether or not it wins.
			c.Overlap[idx]++

			if v < c.Loss[idx] {
				c.Loss[idx] = v
				c.setOpaque(pl.X0+x, pl.Y0+y, r, g, b)
			}
		}
	}
}

func (p *OverlapConsensus) Finalize(c *Canvas, _ []*layer.Layer) {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			if c.Overlap[y*c.Width+x] < p.MinCount {
				c.clearPixel(x, y)
			}
		}
	}
}
