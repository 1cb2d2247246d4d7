package regiongrow

import (
	"slices"

	"github.com/pkg/errors"
)

// Segmentation maps each segment ID to the coordinates it covers.
type Segmentation map[int][]Coordinate

// IDs lists the segment IDs in ascending order.
func (s Segmentation) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Labels returns a row-major label per window cell. Labels are dense: the
// segment with the smallest ID gets 0, the next 1, and so on. Uncovered
// cells are -1.
func (s Segmentation) Labels(w Window) []int {
	labels := make([]int, w.Area())
	for i := range labels {
		labels[i] = -1
	}
	for label, id := range s.IDs() {
		for _, c := range s[id] {
			if w.Contains(c) {
				labels[w.Index(c)] = label
			}
		}
	}
	return labels
}

// Validate checks that the segments are pairwise disjoint and together cover
// exactly the window.
func (s Segmentation) Validate(w Window) error {
	owner := make([]int, w.Area())
	for i := range owner {
		owner[i] = -1
	}
	covered := 0
	for _, id := range s.IDs() {
		for _, c := range s[id] {
			if !w.Contains(c) {
				return errors.Wrapf(ErrPartition, "segment %d covers %s outside the %dx%d window", id, c, w.Width, w.Height)
			}
			i := w.Index(c)
			if owner[i] >= 0 {
				return errors.Wrapf(ErrPartition, "%s is covered by segments %d and %d", c, owner[i], id)
			}
			owner[i] = id
			covered++
		}
	}
	if covered != w.Area() {
		return errors.Wrapf(ErrPartition, "%d of %d cells covered", covered, w.Area())
	}
	return nil
}
