package utils

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/setanarut/regiongrow"
)

type PaletteMethod int

const (
	PaletteMethodKMeans PaletteMethod = iota
	PaletteMethodDominantColor
)

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodDominantColor:
		return "dominantcolor"
	default:
		return "kmeans"
	}
}

// SegmentPalette summarises a segmentation with k representative colours.
// Every pixel is replaced by its segment's mean colour first, so large
// segments weigh more than small ones.
func SegmentPalette(r *ImageRaster, seg regiongrow.Segmentation, w regiongrow.Window, k int, method PaletteMethod) []colorful.Color {
	if k <= 0 || len(seg) == 0 {
		return nil
	}
	switch method {
	case PaletteMethodDominantColor:
		return dominantPalette(Reconstruct(r, seg, w), k)
	default:
		p := kmeansPalette(r, seg, k)
		if len(p) != 0 {
			return p
		}
		return dominantPalette(Reconstruct(r, seg, w), k)
	}
}

func dominantPalette(img image.Image, k int) []colorful.Color {
	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		// Last resort: avoid returning an empty palette.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return selectDiverseWeightedColors(weighted, k)
}

func kmeansPalette(r *ImageRaster, seg regiongrow.Segmentation, k int) []colorful.Color {
	// One observation per distinct segment colour; pixel counts are added
	// back as cluster weights.
	pixels := make(map[[3]float64]int)
	dataset := make(clusters.Observations, 0, len(seg))
	for _, id := range seg.IDs() {
		mean := meanRGB(r, seg[id])
		key := [3]float64{mean.R, mean.G, mean.B}
		if _, ok := pixels[key]; !ok {
			dataset = append(dataset, clusters.Coordinates{mean.R, mean.G, mean.B})
		}
		pixels[key] += len(seg[id])
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		center := c.Center
		if len(center) < 3 || len(c.Observations) == 0 {
			continue
		}
		weight := 0
		for _, o := range c.Observations {
			v := o.Coordinates()
			weight += pixels[[3]float64{v[0], v[1], v[2]}]
		}
		col := colorful.Color{
			R: center[0],
			G: center[1],
			B: center[2],
		}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(weight)})
	}
	// Heaviest clusters first.
	slices.SortStableFunc(weighted, func(a, b weightedColor) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
	return selectDiverseWeightedColors(weighted, k)
}

// selectDiverseWeightedColors returns up to k colours. The heaviest
// candidate comes first; each further pick maximises its Lab distance to the
// nearest colour already picked, damped for light candidates.
func selectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	k = min(k, len(cands))
	if k <= 0 {
		return nil
	}
	cols := make([]colorful.Color, len(cands))
	weights := make([]float64, len(cands))
	heaviest := 0
	for i, c := range cands {
		cols[i] = c.Col.Clamped()
		weights[i] = max(c.Weight, 1e-6)
		if weights[i] > weights[heaviest] {
			heaviest = i
		}
	}
	maxW := weights[heaviest]

	// nearest[i] is the Lab distance from candidate i to the closest pick.
	nearest := make([]float64, len(cands))
	picked := make([]bool, len(cands))
	out := make([]colorful.Color, 0, k)
	pick := func(i int) {
		picked[i] = true
		out = append(out, cols[i])
		for j := range cols {
			d := cols[j].DistanceLab(cols[i])
			if len(out) == 1 || d < nearest[j] {
				nearest[j] = d
			}
		}
	}

	pick(heaviest)
	for len(out) < k {
		next, bestScore := -1, -1.0
		for i := range cols {
			if picked[i] {
				continue
			}
			score := nearest[i] * (0.55 + 0.45*math.Sqrt(weights[i]/maxW))
			if score > bestScore {
				next, bestScore = i, score
			}
		}
		pick(next)
	}
	return out
}

// ReadImage decodes a png, jpeg, gif, tiff or bmp file.
func ReadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image %q", path)
	}
	return img, nil
}

// SaveImage encodes img in the format implied by the file extension.
func SaveImage(img image.Image, filename string) error {
	if err := imaging.Save(img, filename); err != nil {
		return errors.Wrapf(err, "saving image %q", filename)
	}
	return nil
}

// SavePalette writes the palette as a row of square swatches.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return errors.New("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(palette)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i, c := range palette {
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, toRGBA(c))
			}
		}
	}

	return SaveImage(img, filename)
}

func toRGBA(c colorful.Color) color.RGBA {
	return color.RGBA{
		R: uint8(max(0, min(255, c.R*255))),
		G: uint8(max(0, min(255, c.G*255))),
		B: uint8(max(0, min(255, c.B*255))),
		A: 255,
	}
}
