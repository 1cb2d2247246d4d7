package regiongrow

import "github.com/pkg/errors"

// A Segment is a region of the window treated as one unit.
type Segment interface {
	// Colours lists the member pixel colours, aligned with Coordinates.
	Colours() []Colour
	// Coordinates lists the member pixel locations.
	Coordinates() []Coordinate
	// PixelCount is len(Coordinates()).
	PixelCount() int
	// Bands is the band count shared by every member colour.
	Bands() int
}

// Pixel is a single grid cell.
type Pixel struct {
	coordinate Coordinate
	colour     Colour
	moments    []bandMoments
}

// NewPixel makes a leaf segment.
func NewPixel(c Coordinate, col Colour) *Pixel {
	return &Pixel{coordinate: c, colour: col, moments: leafMoments(col)}
}

// Coordinate is the pixel location.
func (p *Pixel) Coordinate() Coordinate { return p.coordinate }

// Colour is the pixel colour.
func (p *Pixel) Colour() Colour { return p.colour }

func (p *Pixel) Colours() []Colour         { return []Colour{p.colour} }
func (p *Pixel) Coordinates() []Coordinate { return []Coordinate{p.coordinate} }
func (p *Pixel) PixelCount() int           { return 1 }
func (p *Pixel) Bands() int                { return p.colour.Bands() }

// Parent owns two merged segments. Its coordinate and colour lists are the
// concatenation of the first child's lists followed by the second's.
type Parent struct {
	first, second Segment
	count         int
	coordinates   []Coordinate
	colours       []Colour
	moments       []bandMoments
}

// NewParent merges a and b. Both must have the same band count.
func NewParent(a, b Segment) (*Parent, error) {
	if a.Bands() != b.Bands() {
		return nil, errors.Wrapf(ErrBandMismatch, "cannot merge %d-band and %d-band segments", a.Bands(), b.Bands())
	}
	ma, err := segmentMoments(a)
	if err != nil {
		return nil, err
	}
	mb, err := segmentMoments(b)
	if err != nil {
		return nil, err
	}
	moments, err := combineAll(ma, mb)
	if err != nil {
		return nil, err
	}

	count := a.PixelCount() + b.PixelCount()
	coordinates := make([]Coordinate, 0, count)
	coordinates = append(coordinates, a.Coordinates()...)
	coordinates = append(coordinates, b.Coordinates()...)
	colours := make([]Colour, 0, count)
	colours = append(colours, a.Colours()...)
	colours = append(colours, b.Colours()...)

	return &Parent{
		first:       a,
		second:      b,
		count:       count,
		coordinates: coordinates,
		colours:     colours,
		moments:     moments,
	}, nil
}

// Children returns the two owned operands in merge order.
func (p *Parent) Children() (Segment, Segment) { return p.first, p.second }

func (p *Parent) Colours() []Colour         { return p.colours }
func (p *Parent) Coordinates() []Coordinate { return p.coordinates }
func (p *Parent) PixelCount() int           { return p.count }
func (p *Parent) Bands() int                { return len(p.moments) }

// Leaves walks the tree depth first and returns its pixels in list order.
func Leaves(s Segment) []*Pixel {
	switch v := s.(type) {
	case *Pixel:
		return []*Pixel{v}
	case *Parent:
		return append(Leaves(v.first), Leaves(v.second)...)
	default:
		return nil
	}
}
