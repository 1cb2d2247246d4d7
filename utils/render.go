package utils

import (
	"image"
	"image/color"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/setanarut/regiongrow"
)

// DefaultOutline is the boundary colour used when none is configured.
var DefaultOutline = colorful.Color{R: 0, G: 0, B: 1}

// outlineCandidates are tried by OutlineColour, in order of preference.
var outlineCandidates = []colorful.Color{
	DefaultOutline,
	{R: 1, G: 0, B: 0},
	{R: 1, G: 1, B: 0},
	{R: 0, G: 1, B: 1},
	{R: 1, G: 0, B: 1},
	{R: 0, G: 1, B: 0},
	{R: 1, G: 1, B: 1},
	{R: 0, G: 0, B: 0},
}

// ParseOutline accepts a hex colour such as "#0000ff". "auto" and the empty
// string return ok == false so the caller can pick one with OutlineColour.
func ParseOutline(s string) (colorful.Color, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return colorful.Color{}, false, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false, errors.Wrapf(err, "parsing outline colour %q", s)
	}
	return c, true, nil
}

// OutlineColour picks the candidate colour furthest, in Lab, from the
// dominant colour of the window.
func OutlineColour(img image.Image, w regiongrow.Window) colorful.Color {
	dominant, _ := colorful.MakeColor(dominantcolor.Find(cropWindow(img, w)))
	best := DefaultOutline
	bestD := -1.0
	for _, c := range outlineCandidates {
		if d := c.DistanceLab(dominant); d > bestD {
			best, bestD = c, d
		}
	}
	return best
}

func cropWindow(img image.Image, w regiongrow.Window) *image.NRGBA {
	b := img.Bounds()
	return imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+w.Width, b.Min.Y+w.Height))
}

// OverlaySegmentation crops img to the window, enlarges it by scale and
// draws every segment boundary, including the window edge, in outline.
func OverlaySegmentation(img image.Image, seg regiongrow.Segmentation, w regiongrow.Window, outline color.Color, scale int) image.Image {
	scale = max(scale, 1)
	base := imaging.Resize(cropWindow(img, w), w.Width*scale, w.Height*scale, imaging.NearestNeighbor)
	dc := gg.NewContextForImage(base)
	labels := seg.Labels(w)
	s := float64(scale)

	for y := range w.Height {
		for x := range w.Width {
			l := labels[y*w.Width+x]
			fx, fy := float64(x)*s, float64(y)*s
			if x == 0 {
				dc.DrawLine(fx, fy, fx, fy+s)
			}
			if y == 0 {
				dc.DrawLine(fx, fy, fx+s, fy)
			}
			if x == w.Width-1 || labels[y*w.Width+x+1] != l {
				dc.DrawLine(fx+s, fy, fx+s, fy+s)
			}
			if y == w.Height-1 || labels[(y+1)*w.Width+x] != l {
				dc.DrawLine(fx, fy+s, fx+s, fy+s)
			}
		}
	}
	dc.SetColor(outline)
	dc.SetLineWidth(max(1, s/4))
	dc.Stroke()
	return dc.Image()
}

func meanRGB(r *ImageRaster, coords []regiongrow.Coordinate) colorful.Color {
	if len(coords) == 0 {
		return colorful.Color{}
	}
	var sum colorful.Color
	for _, c := range coords {
		p := r.RGBAt(c)
		sum.R += p.R
		sum.G += p.G
		sum.B += p.B
	}
	n := float64(len(coords))
	return colorful.Color{R: sum.R / n, G: sum.G / n, B: sum.B / n}
}

// Reconstruct paints each segment of the window with its mean RGB colour.
func Reconstruct(r *ImageRaster, seg regiongrow.Segmentation, w regiongrow.Window) *image.RGBA {
	recon := image.NewRGBA(image.Rect(0, 0, w.Width, w.Height))
	for _, id := range seg.IDs() {
		c := toRGBA(meanRGB(r, seg[id]))
		for _, p := range seg[id] {
			if w.Contains(p) {
				recon.SetRGBA(p.X, p.Y, c)
			}
		}
	}
	return recon
}

// LabelImage spreads the dense segment labels over 0..255. Uncovered cells
// stay black.
func LabelImage(seg regiongrow.Segmentation, w regiongrow.Window) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w.Width, w.Height))
	labels := seg.Labels(w)
	span := max(len(seg)-1, 1)
	for i, l := range labels {
		if l < 0 {
			continue
		}
		c := w.CoordinateAt(i)
		out.SetGray(c.X, c.Y, color.Gray{Y: uint8(l * 255 / span)})
	}
	return out
}
