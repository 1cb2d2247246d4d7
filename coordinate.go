package regiongrow

import (
	"fmt"

	"github.com/pkg/errors"
)

// Coordinate is a location on the pixel grid.
type Coordinate struct {
	X, Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Connectivity selects which grid cells count as neighbours.
type Connectivity int

const (
	// FourConnected links a cell to its horizontal and vertical neighbours.
	FourConnected Connectivity = iota
	// EightConnected also links diagonal neighbours.
	EightConnected
)

var (
	dx4 = []int{-1, 0, 1, 0}
	dy4 = []int{0, -1, 0, 1}
	dx8 = []int{-1, 0, 1, 1, 1, 0, -1, -1}
	dy8 = []int{-1, -1, -1, 0, 1, 1, 1, 0}
)

func (c Connectivity) String() string {
	switch c {
	case EightConnected:
		return "8"
	default:
		return "4"
	}
}

// ParseConnectivity accepts "4" or "8".
func ParseConnectivity(s string) (Connectivity, error) {
	switch s {
	case "4", "":
		return FourConnected, nil
	case "8":
		return EightConnected, nil
	default:
		return FourConnected, errors.Wrapf(ErrInvalidOptions, "unknown connectivity %q", s)
	}
}

func (c Connectivity) offsets() ([]int, []int) {
	if c == EightConnected {
		return dx8, dy8
	}
	return dx4, dy4
}

// Window is the working area, anchored at the raster origin.
type Window struct {
	Width, Height int
}

// NewWindow returns the 2n x 2n window in the top left corner of a
// width x height raster, clipped to the raster.
func NewWindow(n, width, height int) (Window, error) {
	if n <= 0 {
		return Window{}, errors.Wrapf(ErrInvalidWindow, "half size must be positive, got %d", n)
	}
	if width <= 0 || height <= 0 {
		return Window{}, errors.Wrapf(ErrInvalidWindow, "raster is empty (%dx%d)", width, height)
	}
	return Window{Width: min(2*n, width), Height: min(2*n, height)}, nil
}

// Contains reports whether c lies inside the window.
func (w Window) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < w.Width && c.Y >= 0 && c.Y < w.Height
}

// Area is the number of cells in the window.
func (w Window) Area() int {
	return w.Width * w.Height
}

// Index returns the row-major offset of c. The caller must check Contains.
func (w Window) Index(c Coordinate) int {
	return c.Y*w.Width + c.X
}

// CoordinateAt is the inverse of Index.
func (w Window) CoordinateAt(i int) Coordinate {
	return Coordinate{X: i % w.Width, Y: i / w.Width}
}

// Coordinates lists every cell in row-major order.
func (w Window) Coordinates() []Coordinate {
	out := make([]Coordinate, 0, w.Area())
	for y := range w.Height {
		for x := range w.Width {
			out = append(out, Coordinate{X: x, Y: y})
		}
	}
	return out
}

// Neighbours returns the grid neighbours of c that fall inside the window.
// A coordinate outside the window has no neighbours.
func (w Window) Neighbours(c Coordinate, conn Connectivity) []Coordinate {
	if !w.Contains(c) {
		return nil
	}
	dx, dy := conn.offsets()
	out := make([]Coordinate, 0, len(dx))
	for k := range dx {
		n := Coordinate{X: c.X + dx[k], Y: c.Y + dy[k]}
		if w.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
