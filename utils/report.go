package utils

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/setanarut/regiongrow"
)

// Report summarises the segment sizes of a segmentation.
type Report struct {
	Segments   int
	Pixels     int
	MinSize    float64
	MaxSize    float64
	MeanSize   float64
	MedianSize float64
	P90Size    float64
}

// Summarize computes size statistics over the segments of seg. P90Size uses
// the nearest-rank method, so it is always one of the observed sizes.
func Summarize(seg regiongrow.Segmentation) (Report, error) {
	sizes := make(stats.Float64Data, 0, len(seg))
	pixels := 0
	for _, id := range seg.IDs() {
		sizes = append(sizes, float64(len(seg[id])))
		pixels += len(seg[id])
	}

	var (
		rep = Report{Segments: len(seg), Pixels: pixels}
		err error
	)
	if rep.MinSize, err = sizes.Min(); err != nil {
		return Report{}, errors.Wrap(err, "summarizing segmentation")
	}
	if rep.MaxSize, err = sizes.Max(); err != nil {
		return Report{}, errors.Wrap(err, "summarizing segmentation")
	}
	if rep.MeanSize, err = sizes.Mean(); err != nil {
		return Report{}, errors.Wrap(err, "summarizing segmentation")
	}
	if rep.MedianSize, err = sizes.Median(); err != nil {
		return Report{}, errors.Wrap(err, "summarizing segmentation")
	}
	if rep.P90Size, err = sizes.PercentileNearestRank(90); err != nil {
		return Report{}, errors.Wrap(err, "summarizing segmentation")
	}
	return rep, nil
}
