package regiongrow

import (
	"math"

	"github.com/pkg/errors"
)

// bandMoments summarises one band of a segment: pixel count, mean and the sum
// of squared deviations from the mean.
type bandMoments struct {
	n    float64
	mean float64
	m2   float64
}

func (m bandMoments) stdDev() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Sqrt(m.m2 / m.n)
}

// combineMoments pools two groups (Chan et al. parallel update).
func combineMoments(a, b bandMoments) bandMoments {
	n := a.n + b.n
	if n == 0 {
		return bandMoments{}
	}
	delta := b.mean - a.mean
	return bandMoments{
		n:    n,
		mean: a.mean + delta*b.n/n,
		m2:   a.m2 + b.m2 + delta*delta*a.n*b.n/n,
	}
}

func leafMoments(c Colour) []bandMoments {
	out := make([]bandMoments, len(c))
	for i, v := range c {
		out[i] = bandMoments{n: 1, mean: v}
	}
	return out
}

func combineAll(a, b []bandMoments) ([]bandMoments, error) {
	if len(a) != len(b) {
		return nil, errors.Wrapf(ErrBandMismatch, "%d bands vs %d bands", len(a), len(b))
	}
	out := make([]bandMoments, len(a))
	for i := range a {
		out[i] = combineMoments(a[i], b[i])
	}
	return out, nil
}

// heterogeneityOf sums the per-band standard deviations.
func heterogeneityOf(ms []bandMoments) float64 {
	var sum float64
	for _, m := range ms {
		sum += m.stdDev()
	}
	return sum
}

// segmentMoments returns the cached moments of the two built-in variants and
// falls back to a full pass for any other Segment implementation.
func segmentMoments(s Segment) ([]bandMoments, error) {
	switch v := s.(type) {
	case *Pixel:
		return v.moments, nil
	case *Parent:
		return v.moments, nil
	default:
		bands, err := ExtractColourBands(s)
		if err != nil {
			return nil, err
		}
		out := make([]bandMoments, len(bands))
		for i, values := range bands {
			out[i] = bandMoments{n: float64(len(values)), mean: Mean(values), m2: Variance(values) * float64(len(values))}
		}
		return out, nil
	}
}
