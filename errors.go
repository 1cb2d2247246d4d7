package regiongrow

import "github.com/pkg/errors"

var (
	// ErrBandMismatch is returned when two colours taking part in the same
	// computation carry a different number of bands.
	ErrBandMismatch = errors.New("colour band count mismatch")
	// ErrInvalidWindow is returned for a non-positive half size or an empty raster.
	ErrInvalidWindow = errors.New("invalid working window")
	// ErrInvalidOptions wraps every Options validation failure.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrPartition reports a segmentation whose segments overlap or leave holes.
	ErrPartition = errors.New("segments do not partition the window")
	// ErrUnknownSegment is returned when an ID is not in the active set.
	ErrUnknownSegment = errors.New("unknown segment")
)
