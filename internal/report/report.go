// Package report summarizes a finished composite canvas.
package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"coverage-compositor/internal/colorscale"
	"coverage-compositor/internal/composite"
)

// Summary holds coverage statistics over the merged value grid. Loss
// statistics are NaN when no pixel is covered.
type Summary struct {
	TotalPixels   int
	CoveredPixels int
	MinLoss       float64
	MaxLoss       float64
	MeanLoss      float64
}

// Summarize computes statistics over every pixel with a defined best value.
func Summarize(c *composite.Canvas) Summary {
	covered := make([]float64, 0, len(c.Loss))
	for _, v := range c.Loss {
		if v != colorscale.Undefined {
			covered = append(covered, v)
		}
	}

	s := Summary{
		TotalPixels:   len(c.Loss),
		CoveredPixels: len(covered),
		MinLoss:       math.NaN(),
		MaxLoss:       math.NaN(),
		MeanLoss:      math.NaN(),
	}
	if len(covered) > 0 {
		s.MinLoss = floats.Min(covered)
		s.MaxLoss = floats.Max(covered)
		s.MeanLoss = stat.Mean(covered, nil)
	}
	return s
}

// Coverage returns the covered fraction of the canvas in [0, 1].
func (s Summary) Coverage() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.CoveredPixels) / float64(s.TotalPixels)
}

func (s Summary) String() string {
	if s.CoveredPixels == 0 {
		return fmt.Sprintf("coverage: 0/%d pixels", s.TotalPixels)
	}
	return fmt.Sprintf("coverage: %d/%d pixels (%.1f%%), loss %.1f-%.1f dB, mean %.1f dB",
		s.CoveredPixels, s.TotalPixels, 100*s.Coverage(), s.MinLoss, s.MaxLoss, s.MeanLoss)
}
