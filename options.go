package regiongrow

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Mode selects how merge costs are evaluated.
type Mode int

const (
	// ModeCached prices merges from per-segment moments and memoises pair
	// costs between rounds.
	ModeCached Mode = iota
	// ModeLiteral recomputes every cost from the raw pixel lists on every
	// round. Slow, kept for comparison against the cached mode.
	ModeLiteral
)

func (m Mode) String() string {
	switch m {
	case ModeLiteral:
		return "literal"
	default:
		return "cached"
	}
}

// ParseMode accepts "cached" or "literal".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "cached", "":
		return ModeCached, nil
	case "literal":
		return ModeLiteral, nil
	default:
		return ModeCached, errors.Wrapf(ErrInvalidOptions, "unknown mode %q", s)
	}
}

type Options struct {
	// Half the side of the working window: the top-left 2N x 2N cells of the
	// raster are segmented. Runtime grows steeply with N in literal mode;
	// N = 5 already takes seconds there.
	HalfSize int
	// Largest merge cost that is still committed. Higher values produce
	// fewer, larger segments. 0 only merges pixels of identical colour.
	Threshold float64
	Mode         Mode
	Connectivity Connectivity
	// Stop after this many commits. 0 means no limit.
	MaxRounds int
	// Stop at the first round boundary after this much time. 0 means no limit.
	Timeout time.Duration
	// Nil disables logging.
	Logger *zap.SugaredLogger
}

func DefaultOptions() Options {
	return Options{
		HalfSize:     5,
		Threshold:    800,
		Mode:         ModeCached,
		Connectivity: FourConnected,
	}
}

// Validate reports every invalid field at once.
func (o Options) Validate() error {
	var errs error
	if o.HalfSize <= 0 {
		errs = multierr.Append(errs, errors.Errorf("half size must be positive, got %d", o.HalfSize))
	}
	if o.Threshold < 0 {
		errs = multierr.Append(errs, errors.Errorf("threshold must not be negative, got %v", o.Threshold))
	}
	if o.Mode != ModeCached && o.Mode != ModeLiteral {
		errs = multierr.Append(errs, errors.Errorf("unknown mode %d", o.Mode))
	}
	if o.Connectivity != FourConnected && o.Connectivity != EightConnected {
		errs = multierr.Append(errs, errors.Errorf("unknown connectivity %d", o.Connectivity))
	}
	if o.MaxRounds < 0 {
		errs = multierr.Append(errs, errors.Errorf("max rounds must not be negative, got %d", o.MaxRounds))
	}
	if o.Timeout < 0 {
		errs = multierr.Append(errs, errors.Errorf("timeout must not be negative, got %s", o.Timeout))
	}
	if errs != nil {
		return errors.Wrap(ErrInvalidOptions, errs.Error())
	}
	return nil
}

func (o Options) costFunc() CostFunc {
	if o.Mode == ModeLiteral {
		return MergeCost
	}
	return CachedMergeCost
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}
