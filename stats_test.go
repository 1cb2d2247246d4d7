package regiongrow

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"
)

// rawSegment is a Segment that does not validate its contents.
type rawSegment struct {
	coords  []Coordinate
	colours []Colour
}

func (s rawSegment) Colours() []Colour         { return s.colours }
func (s rawSegment) Coordinates() []Coordinate { return s.coords }
func (s rawSegment) PixelCount() int           { return len(s.coords) }
func (s rawSegment) Bands() int {
	if len(s.colours) == 0 {
		return 0
	}
	return s.colours[0].Bands()
}

func TestMeanVariance(t *testing.T) {
	test.That(t, Mean(nil), test.ShouldEqual, 0)
	test.That(t, Variance(nil), test.ShouldEqual, 0)
	test.That(t, StdDev(nil), test.ShouldEqual, 0)
	test.That(t, StdDev([]float64{}), test.ShouldEqual, 0)

	for _, v := range []float64{0, 1, 42.5, 255} {
		test.That(t, StdDev([]float64{v}), test.ShouldEqual, 0)
		test.That(t, Mean([]float64{v}), test.ShouldEqual, v)
	}

	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	test.That(t, Mean(values), test.ShouldAlmostEqual, 5)
	test.That(t, Variance(values), test.ShouldAlmostEqual, 4)
	test.That(t, StdDev(values), test.ShouldAlmostEqual, 2)
}

func TestExtractColourBands(t *testing.T) {
	s := rawSegment{
		coords:  []Coordinate{{0, 0}, {1, 0}},
		colours: []Colour{{1, 2, 3}, {4, 5, 6}},
	}
	bands, err := ExtractColourBands(s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bands, test.ShouldResemble, [][]float64{{1, 4}, {2, 5}, {3, 6}})

	bands, err = ExtractColourBands(rawSegment{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bands, test.ShouldBeEmpty)

	t.Run("band mismatch", func(t *testing.T) {
		bad := rawSegment{
			coords:  []Coordinate{{0, 0}, {1, 0}},
			colours: []Colour{{1, 2, 3}, {4}},
		}
		_, err := ExtractColourBands(bad)
		test.That(t, errors.Is(err, ErrBandMismatch), test.ShouldBeTrue)

		_, err = Heterogeneity(bad)
		test.That(t, errors.Is(err, ErrBandMismatch), test.ShouldBeTrue)

		_, err = CachedMergeCost(bad, NewPixel(Coordinate{2, 0}, Colour{1, 2, 3}))
		test.That(t, errors.Is(err, ErrBandMismatch), test.ShouldBeTrue)
	})
}

func TestHeterogeneity(t *testing.T) {
	h, err := Heterogeneity(NewPixel(Coordinate{}, Colour{10, 20, 30}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h, test.ShouldEqual, 0)

	// Band 0 has stddev 1, band 1 has stddev 3.
	s := rawSegment{
		coords:  []Coordinate{{0, 0}, {1, 0}},
		colours: []Colour{{0, 10}, {2, 16}},
	}
	h, err = Heterogeneity(s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h, test.ShouldAlmostEqual, 4)
}

func TestHeterogeneityOrderIndependent(t *testing.T) {
	r := lcgRaster(5, 1, 11)
	s := rawSegment{colours: r.colours, coords: make([]Coordinate, 5)}
	want, err := Heterogeneity(s)
	test.That(t, err, test.ShouldBeNil)

	permutations := [][]int{{4, 3, 2, 1, 0}, {1, 0, 3, 2, 4}, {2, 4, 0, 1, 3}}
	for _, perm := range permutations {
		shuffled := rawSegment{coords: s.coords}
		for _, i := range perm {
			shuffled.colours = append(shuffled.colours, r.colours[i])
		}
		got, err := Heterogeneity(shuffled)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldAlmostEqual, want, 1e-9)
	}
}

func TestMergeCost(t *testing.T) {
	t.Run("identical pixels", func(t *testing.T) {
		a := NewPixel(Coordinate{0, 0}, Colour{100})
		b := NewPixel(Coordinate{1, 0}, Colour{100})
		for _, cost := range []CostFunc{MergeCost, CachedMergeCost} {
			c, err := cost(a, b)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, c, test.ShouldEqual, 0)
		}
	})

	t.Run("black and white", func(t *testing.T) {
		a := NewPixel(Coordinate{0, 0}, Colour{0})
		b := NewPixel(Coordinate{1, 0}, Colour{255})
		// Pooled stddev is 127.5 over two pixels.
		for _, cost := range []CostFunc{MergeCost, CachedMergeCost} {
			c, err := cost(a, b)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, c, test.ShouldEqual, 255)
		}
	})

	t.Run("probe does not alter operands", func(t *testing.T) {
		a := mustParent(t, NewPixel(Coordinate{0, 0}, Colour{1}), NewPixel(Coordinate{1, 0}, Colour{5}))
		b := NewPixel(Coordinate{2, 0}, Colour{9})
		_, err := MergeCost(a, b)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, a.PixelCount(), test.ShouldEqual, 2)
		test.That(t, a.Coordinates(), test.ShouldHaveLength, 2)
		test.That(t, b.PixelCount(), test.ShouldEqual, 1)
	})

	t.Run("band mismatch", func(t *testing.T) {
		a := NewPixel(Coordinate{0, 0}, Colour{1, 2})
		b := NewPixel(Coordinate{1, 0}, Colour{1})
		_, err := MergeCost(a, b)
		test.That(t, errors.Is(err, ErrBandMismatch), test.ShouldBeTrue)
		_, err = CachedMergeCost(a, b)
		test.That(t, errors.Is(err, ErrBandMismatch), test.ShouldBeTrue)
	})
}

func TestMergeCostSymmetric(t *testing.T) {
	r := lcgRaster(4, 4, 3)
	w := Window{Width: 4, Height: 4}
	pixels := make([]Segment, 0, 16)
	for _, c := range w.Coordinates() {
		pixels = append(pixels, NewPixel(c, r.ColourAt(c)))
	}
	left := mustParent(t, mustParent(t, pixels[0], pixels[1]), mustParent(t, pixels[4], pixels[5]))
	right := mustParent(t, pixels[2], mustParent(t, pixels[3], pixels[7]))
	bottom := mustParent(t, pixels[12], pixels[13])

	segments := []Segment{left, right, bottom, pixels[8], pixels[15]}
	for _, cost := range []CostFunc{MergeCost, CachedMergeCost} {
		for _, a := range segments {
			for _, b := range segments {
				if a == b {
					continue
				}
				ab, err := cost(a, b)
				test.That(t, err, test.ShouldBeNil)
				ba, err := cost(b, a)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, ab, test.ShouldEqual, ba)
			}
		}
	}
}

func TestCachedMatchesLiteral(t *testing.T) {
	r := lcgRaster(4, 2, 19)
	w := Window{Width: 4, Height: 2}
	var pixels []Segment
	for _, c := range w.Coordinates() {
		pixels = append(pixels, NewPixel(c, r.ColourAt(c)))
	}
	a := mustParent(t, mustParent(t, pixels[0], pixels[1]), pixels[4])
	b := mustParent(t, pixels[2], mustParent(t, pixels[3], pixels[6]))

	literal, err := MergeCost(a, b)
	test.That(t, err, test.ShouldBeNil)
	cached, err := CachedMergeCost(a, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cached, test.ShouldAlmostEqual, literal, 1e-9)

	ha, err := Heterogeneity(a)
	test.That(t, err, test.ShouldBeNil)
	ma, err := segmentMoments(a)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, heterogeneityOf(ma), test.ShouldAlmostEqual, ha, 1e-9)

	// A custom Segment takes the slow path through its colour list.
	raw := rawSegment{coords: b.Coordinates(), colours: b.Colours()}
	viaRaw, err := CachedMergeCost(a, raw)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, viaRaw, test.ShouldAlmostEqual, literal, 1e-9)
	test.That(t, math.IsNaN(viaRaw), test.ShouldBeFalse)
}
