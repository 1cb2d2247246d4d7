package regiongrow

import (
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
)

// gridRaster is a row-major in-memory raster.
type gridRaster struct {
	w, h    int
	colours []Colour
}

func (r *gridRaster) Width() int  { return r.w }
func (r *gridRaster) Height() int { return r.h }
func (r *gridRaster) ColourAt(c Coordinate) Colour {
	return r.colours[c.Y*r.w+c.X]
}

func newGray(w, h int, values ...float64) *gridRaster {
	r := &gridRaster{w: w, h: h}
	for _, v := range values {
		r.colours = append(r.colours, Colour{v})
	}
	return r
}

// lcgRaster fills a raster with deterministic pseudo-random 3-band colours.
func lcgRaster(w, h int, seed uint32) *gridRaster {
	r := &gridRaster{w: w, h: h}
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed >> 24)
	}
	for range w * h {
		r.colours = append(r.colours, Colour{next(), next(), next()})
	}
	return r
}

// quantisedRaster is lcgRaster with every band rounded down to a multiple
// of step.
func quantisedRaster(w, h int, seed uint32, step float64) *gridRaster {
	r := lcgRaster(w, h, seed)
	for _, c := range r.colours {
		for b := range c {
			c[b] = math.Floor(c[b]/step) * step
		}
	}
	return r
}

func testOptions(t *testing.T, n int, threshold float64) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.HalfSize = n
	opts.Threshold = threshold
	opts.Logger = zaptest.NewLogger(t).Sugar()
	return opts
}

func mustParent(t *testing.T, a, b Segment) *Parent {
	t.Helper()
	p, err := NewParent(a, b)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
