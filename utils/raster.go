package utils

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/setanarut/regiongrow"
)

// BandMode selects which colour bands are fed to the segmenter.
type BandMode int

const (
	// BandsRGB uses 8-bit R, G, B values in [0,255].
	BandsRGB BandMode = iota
	// BandsGray uses a single 8-bit luminance band.
	BandsGray
	// BandsLab uses CIE L*a*b* (D65) scaled by 100, so L is in [0,100].
	BandsLab
)

func (m BandMode) String() string {
	switch m {
	case BandsGray:
		return "gray"
	case BandsLab:
		return "lab"
	default:
		return "rgb"
	}
}

// Bands is the number of values per pixel in this mode.
func (m BandMode) Bands() int {
	if m == BandsGray {
		return 1
	}
	return 3
}

func ParseBandMode(s string) (BandMode, error) {
	switch s {
	case "rgb", "":
		return BandsRGB, nil
	case "gray", "grey":
		return BandsGray, nil
	case "lab":
		return BandsLab, nil
	default:
		return BandsRGB, errors.Errorf("unknown band mode %q", s)
	}
}

type rgb32 struct {
	W, H int
	Pix  []float32 // Interleaved RGB in [0,255], len = W*H*3
}

// ImageRaster is a decoded image held as flat interleaved buffers. It
// implements regiongrow.Raster.
type ImageRaster struct {
	Rgb   rgb32
	Mode  BandMode
	Bands []float32 // Interleaved, Mode.Bands() values per pixel
}

func pixOffset(w, x, y, n int) int {
	return (y*w + x) * n
}

// NewImageRaster converts img into band values for the given mode.
func NewImageRaster(img image.Image, mode BandMode) *ImageRaster {
	r := &ImageRaster{Mode: mode}
	r.makeRGB32Image(img)
	r.makeBands(img)
	return r
}

func (r *ImageRaster) makeRGB32Image(img image.Image) {
	bounds := img.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()
	r.Rgb = rgb32{
		W:   w,
		H:   h,
		Pix: make([]float32, h*w*3),
	}
	for y := range h {
		for x := range w {
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := pixOffset(w, x, y, 3)
			r.Rgb.Pix[off] = float32(cr >> 8)
			r.Rgb.Pix[off+1] = float32(cg >> 8)
			r.Rgb.Pix[off+2] = float32(cb >> 8)
		}
	}
}

func (r *ImageRaster) makeBands(img image.Image) {
	w, h := r.Rgb.W, r.Rgb.H
	switch r.Mode {
	case BandsRGB:
		r.Bands = r.Rgb.Pix
	case BandsGray:
		bounds := img.Bounds()
		r.Bands = make([]float32, w*h)
		for y := range h {
			for x := range w {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				r.Bands[pixOffset(w, x, y, 1)] = float32(g.Y)
			}
		}
	case BandsLab:
		r.Bands = make([]float32, w*h*3)
		for y := range h {
			for x := range w {
				off := pixOffset(w, x, y, 3)
				c := colorful.Color{
					R: float64(r.Rgb.Pix[off]) / 255.0,
					G: float64(r.Rgb.Pix[off+1]) / 255.0,
					B: float64(r.Rgb.Pix[off+2]) / 255.0,
				}
				l, a, b := c.Lab()
				r.Bands[off] = float32(l * 100)
				r.Bands[off+1] = float32(a * 100)
				r.Bands[off+2] = float32(b * 100)
			}
		}
	}
}

func (r *ImageRaster) Width() int  { return r.Rgb.W }
func (r *ImageRaster) Height() int { return r.Rgb.H }

// ColourAt returns the band values of the pixel at c, which must be inside
// the raster.
func (r *ImageRaster) ColourAt(c regiongrow.Coordinate) regiongrow.Colour {
	n := r.Mode.Bands()
	off := pixOffset(r.Rgb.W, c.X, c.Y, n)
	out := make(regiongrow.Colour, n)
	for i := range n {
		out[i] = float64(r.Bands[off+i])
	}
	return out
}

// RGBAt returns the source colour of the pixel at c, whatever the band mode.
func (r *ImageRaster) RGBAt(c regiongrow.Coordinate) colorful.Color {
	off := pixOffset(r.Rgb.W, c.X, c.Y, 3)
	return colorful.Color{
		R: float64(r.Rgb.Pix[off]) / 255.0,
		G: float64(r.Rgb.Pix[off+1]) / 255.0,
		B: float64(r.Rgb.Pix[off+2]) / 255.0,
	}
}
