package regiongrow

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestNewWindow(t *testing.T) {
	w, err := NewWindow(5, 100, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w, test.ShouldResemble, Window{Width: 10, Height: 10})

	w, err = NewWindow(5, 3, 40)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w, test.ShouldResemble, Window{Width: 3, Height: 10})
	test.That(t, w.Area(), test.ShouldEqual, 30)

	_, err = NewWindow(0, 10, 10)
	test.That(t, errors.Is(err, ErrInvalidWindow), test.ShouldBeTrue)
	_, err = NewWindow(2, 0, 10)
	test.That(t, errors.Is(err, ErrInvalidWindow), test.ShouldBeTrue)
}

func TestWindowIndex(t *testing.T) {
	w := Window{Width: 4, Height: 3}
	for i, c := range w.Coordinates() {
		test.That(t, w.Index(c), test.ShouldEqual, i)
		test.That(t, w.CoordinateAt(i), test.ShouldResemble, c)
	}
	test.That(t, w.Contains(Coordinate{3, 2}), test.ShouldBeTrue)
	test.That(t, w.Contains(Coordinate{4, 2}), test.ShouldBeFalse)
	test.That(t, w.Contains(Coordinate{0, -1}), test.ShouldBeFalse)
}

func TestNeighbours(t *testing.T) {
	w := Window{Width: 3, Height: 3}

	t.Run("corner four connected", func(t *testing.T) {
		test.That(t, w.Neighbours(Coordinate{0, 0}, FourConnected), test.ShouldResemble,
			[]Coordinate{{1, 0}, {0, 1}})
	})
	t.Run("centre", func(t *testing.T) {
		test.That(t, w.Neighbours(Coordinate{1, 1}, FourConnected), test.ShouldHaveLength, 4)
		test.That(t, w.Neighbours(Coordinate{1, 1}, EightConnected), test.ShouldHaveLength, 8)
	})
	t.Run("corner eight connected", func(t *testing.T) {
		test.That(t, w.Neighbours(Coordinate{2, 2}, EightConnected), test.ShouldHaveLength, 3)
	})
	t.Run("outside window", func(t *testing.T) {
		test.That(t, w.Neighbours(Coordinate{5, 5}, FourConnected), test.ShouldBeEmpty)
		test.That(t, w.Neighbours(Coordinate{-1, 0}, EightConnected), test.ShouldBeEmpty)
	})
}

func TestParseConnectivity(t *testing.T) {
	c, err := ParseConnectivity("8")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, EightConnected)
	test.That(t, c.String(), test.ShouldEqual, "8")

	c, err = ParseConnectivity("4")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, FourConnected)

	_, err = ParseConnectivity("6")
	test.That(t, errors.Is(err, ErrInvalidOptions), test.ShouldBeTrue)
}
