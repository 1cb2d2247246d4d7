package regiongrow

import "slices"

// Colour holds the per-band intensities of one pixel.
type Colour []float64

// Bands is the number of values in the colour.
func (c Colour) Bands() int {
	return len(c)
}

// Equal compares band by band.
func (c Colour) Equal(other Colour) bool {
	return slices.Equal(c, other)
}
