package regiongrow

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ExtractColourBands regroups the colours of s by band index. The band count
// is taken from the first colour; any later colour with a different count is
// a format error.
func ExtractColourBands(s Segment) ([][]float64, error) {
	colours := s.Colours()
	if len(colours) == 0 {
		return nil, nil
	}
	numBands := colours[0].Bands()
	bands := make([][]float64, numBands)
	for b := range bands {
		bands[b] = make([]float64, 0, len(colours))
	}
	for i, c := range colours {
		if c.Bands() != numBands {
			return nil, errors.Wrapf(ErrBandMismatch, "colour %d has %d bands, expected %d", i, c.Bands(), numBands)
		}
		for b, v := range c {
			bands[b] = append(bands[b], v)
		}
	}
	return bands, nil
}

// Mean is the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Variance is the population variance (divided by N), or 0 for no values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// StdDev is the square root of Variance.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Heterogeneity sums, over all bands, the standard deviation of that band
// across the segment's pixels.
func Heterogeneity(s Segment) (float64, error) {
	bands, err := ExtractColourBands(s)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, values := range bands {
		sum += StdDev(values)
	}
	return sum, nil
}

// CostFunc prices the merge of two segments. Lower is better.
type CostFunc func(a, b Segment) (float64, error)

// MergeCost is the increase in pixel-weighted heterogeneity caused by merging
// a and b, measured on a probe Parent that is thrown away afterwards. Every
// call walks the raw colour lists of all three segments.
//
// The probe is always built with the segment holding the top-left-most pixel
// first, so MergeCost(a, b) and MergeCost(b, a) sum in the same order.
func MergeCost(a, b Segment) (float64, error) {
	if precedes(b, a) {
		a, b = b, a
	}
	ha, err := Heterogeneity(a)
	if err != nil {
		return 0, err
	}
	hb, err := Heterogeneity(b)
	if err != nil {
		return 0, err
	}
	probe, err := NewParent(a, b)
	if err != nil {
		return 0, err
	}
	hp, err := Heterogeneity(probe)
	if err != nil {
		return 0, err
	}
	return weightedCost(hp, probe.PixelCount(), ha, a.PixelCount(), hb, b.PixelCount()), nil
}

// CachedMergeCost computes the same quantity as MergeCost from per-band
// moments in O(bands), without building the probe's pixel lists.
func CachedMergeCost(a, b Segment) (float64, error) {
	ma, err := segmentMoments(a)
	if err != nil {
		return 0, err
	}
	mb, err := segmentMoments(b)
	if err != nil {
		return 0, err
	}
	if momentsLess(mb, ma) {
		ma, mb = mb, ma
		a, b = b, a
	}
	mp, err := combineAll(ma, mb)
	if err != nil {
		return 0, err
	}
	count := a.PixelCount() + b.PixelCount()
	return weightedCost(heterogeneityOf(mp), count, heterogeneityOf(ma), a.PixelCount(), heterogeneityOf(mb), b.PixelCount()), nil
}

func weightedCost(hp float64, np int, ha float64, na int, hb float64, nb int) float64 {
	return hp*float64(np) - (ha*float64(na) + hb*float64(nb))
}

// precedes reports whether a owns a pixel earlier in row-major order than
// every pixel of b.
func precedes(a, b Segment) bool {
	ca, okA := topLeft(a)
	cb, okB := topLeft(b)
	if !okA || !okB {
		return okA
	}
	if ca.Y != cb.Y {
		return ca.Y < cb.Y
	}
	return ca.X < cb.X
}

func topLeft(s Segment) (Coordinate, bool) {
	coords := s.Coordinates()
	if len(coords) == 0 {
		return Coordinate{}, false
	}
	best := coords[0]
	for _, c := range coords[1:] {
		if c.Y < best.Y || (c.Y == best.Y && c.X < best.X) {
			best = c
		}
	}
	return best, true
}

// momentsLess orders moment vectors lexicographically so that pooling does
// not depend on argument order.
func momentsLess(a, b []bandMoments) bool {
	for i := range min(len(a), len(b)) {
		switch {
		case a[i].n != b[i].n:
			return a[i].n < b[i].n
		case a[i].mean != b[i].mean:
			return a[i].mean < b[i].mean
		case a[i].m2 != b[i].m2:
			return a[i].m2 < b[i].m2
		}
	}
	return len(a) < len(b)
}
