package regiongrow

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Raster supplies pixel colours to the grower.
type Raster interface {
	Width() int
	Height() int
	ColourAt(c Coordinate) Colour
}

// Merge records one committed merge.
type Merge struct {
	First, Second int // consumed segment IDs, First < Second
	Into          int // ID of the new Parent
	Cost          float64
}

// StopReason says why Grow returned.
type StopReason int

const (
	// StopConverged means no adjacent pair is cheap enough to merge.
	StopConverged StopReason = iota
	// StopRoundBudget means Options.MaxRounds commits were made.
	StopRoundBudget
	// StopDeadline means Options.Timeout elapsed.
	StopDeadline
)

func (r StopReason) String() string {
	switch r {
	case StopRoundBudget:
		return "round budget"
	case StopDeadline:
		return "deadline"
	default:
		return "converged"
	}
}

// Result is the outcome of Grow.
type Result struct {
	Segmentation Segmentation
	Merges       []Merge
	Stop         StopReason
	Elapsed      time.Duration
}

// Grower runs greedy region merging over a window of a raster. It is not
// safe for concurrent use.
type Grower struct {
	window   Window
	opts     Options
	cost     CostFunc
	logger   *zap.SugaredLogger
	segments map[int]Segment
	adj      *adjacency
	// memo holds pair costs across rounds in cached mode; nil in literal mode.
	memo    map[pair]float64
	nextID  int
	commits int
	now     func() time.Time
}

// NewGrower creates one Pixel per cell of the working window. Pixel IDs are
// the row-major cell indices; merged segments get increasing IDs after those.
func NewGrower(r Raster, opts Options) (*Grower, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	window, err := NewWindow(opts.HalfSize, r.Width(), r.Height())
	if err != nil {
		return nil, err
	}

	g := &Grower{
		window:   window,
		opts:     opts,
		cost:     opts.costFunc(),
		logger:   opts.logger(),
		segments: make(map[int]Segment, window.Area()),
		adj:      newGridAdjacency(window, opts.Connectivity),
		nextID:   window.Area(),
		now:      time.Now,
	}
	if opts.Mode == ModeCached {
		g.memo = make(map[pair]float64)
	}

	bands := -1
	for i, c := range window.Coordinates() {
		col := r.ColourAt(c)
		if bands < 0 {
			bands = col.Bands()
		} else if col.Bands() != bands {
			return nil, errors.Wrapf(ErrBandMismatch, "pixel %s has %d bands, expected %d", c, col.Bands(), bands)
		}
		g.segments[i] = NewPixel(c, slices.Clone(col))
	}
	g.logger.Debugw("grower initialised",
		"width", window.Width, "height", window.Height, "bands", bands,
		"mode", opts.Mode.String(), "connectivity", opts.Connectivity.String(), "threshold", opts.Threshold)
	return g, nil
}

// Window is the area being segmented.
func (g *Grower) Window() Window { return g.window }

// Commits is the number of merges made so far.
func (g *Grower) Commits() int { return g.commits }

// ActiveIDs lists the active segment IDs in ascending order.
func (g *Grower) ActiveIDs() []int {
	ids := make([]int, 0, len(g.segments))
	for id := range g.segments {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Segment returns the active segment with the given ID.
func (g *Grower) Segment(id int) (Segment, error) {
	s, ok := g.segments[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSegment, "id %d", id)
	}
	return s, nil
}

// Neighbours returns the sorted IDs of the active segments adjacent to id.
func (g *Grower) Neighbours(id int) ([]int, error) {
	if _, ok := g.segments[id]; !ok {
		return nil, errors.Wrapf(ErrUnknownSegment, "id %d", id)
	}
	return g.adj.neighboursOf(id), nil
}

// Segmentation snapshots the coordinates of every active segment.
func (g *Grower) Segmentation() Segmentation {
	out := make(Segmentation, len(g.segments))
	for id, s := range g.segments {
		out[id] = slices.Clone(s.Coordinates())
	}
	return out
}

// costTolerance is the relative difference below which two costs are
// considered equal.
const costTolerance = 1e-9

func tolerance(c float64) float64 {
	return costTolerance * max(1, math.Abs(c))
}

// Step runs one round: it prices every adjacent pair, picks the cheapest
// and merges it if the cost does not exceed the threshold. It returns false
// once nothing was merged.
//
// Costs closer than costTolerance (relative, at least 1e-9 absolute) are
// ties: the first tied pair in ascending ID order wins, and a cost within
// the tolerance of the threshold still merges. Both cost modes therefore
// make the same selections even though their rounding differs.
func (g *Grower) Step() (Merge, bool, error) {
	best, cost, found, err := g.cheapestPair()
	if err != nil {
		return Merge{}, false, err
	}
	if !found || !(cost <= g.opts.Threshold+tolerance(g.opts.Threshold)) {
		return Merge{}, false, nil
	}
	m, err := g.commit(best, cost)
	if err != nil {
		return Merge{}, false, err
	}
	return m, true, nil
}

// Grow merges until no adjacent pair is cheap enough, or a budget from the
// options runs out. Budgets are checked between rounds only. Each commit
// removes one segment, so at most Area()-1 rounds merge anything.
func (g *Grower) Grow(ctx context.Context) (*Result, error) {
	start := g.now()
	res := &Result{Stop: StopConverged}
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "segmentation interrupted")
		}
		if g.opts.MaxRounds > 0 && g.commits >= g.opts.MaxRounds {
			res.Stop = StopRoundBudget
			break
		}
		if g.opts.Timeout > 0 && g.now().Sub(start) >= g.opts.Timeout {
			res.Stop = StopDeadline
			break
		}
		m, merged, err := g.Step()
		if err != nil {
			return nil, err
		}
		if !merged {
			break
		}
		res.Merges = append(res.Merges, m)
	}
	res.Elapsed = g.now().Sub(start)
	res.Segmentation = g.Segmentation()
	g.logger.Infow("segmentation finished",
		"commits", g.commits, "segments", len(g.segments), "stop", res.Stop.String(), "elapsed", res.Elapsed)
	return res, nil
}

func (g *Grower) cheapestPair() (pair, float64, bool, error) {
	var (
		best     pair
		bestCost = math.Inf(1)
		found    bool
	)
	for _, p := range g.adj.pairs() {
		c, err := g.pairCost(p)
		if err != nil {
			return pair{}, 0, false, err
		}
		// NaN never compares below anything and never commits.
		if math.IsNaN(c) {
			continue
		}
		if !found || c < bestCost-tolerance(bestCost) {
			best, bestCost, found = p, c, true
		}
	}
	return best, bestCost, found, nil
}

func (g *Grower) pairCost(p pair) (float64, error) {
	if g.memo != nil {
		if c, ok := g.memo[p]; ok {
			return c, nil
		}
	}
	c, err := g.cost(g.segments[p.a], g.segments[p.b])
	if err != nil {
		return 0, errors.Wrapf(err, "pricing segments %d and %d", p.a, p.b)
	}
	if g.memo != nil {
		g.memo[p] = c
	}
	return c, nil
}

func (g *Grower) commit(p pair, cost float64) (Merge, error) {
	parent, err := NewParent(g.segments[p.a], g.segments[p.b])
	if err != nil {
		return Merge{}, err
	}
	into := g.nextID
	g.nextID++

	if g.memo != nil {
		for _, old := range []int{p.a, p.b} {
			for _, n := range g.adj.neighboursOf(old) {
				delete(g.memo, newPair(old, n))
			}
		}
	}
	g.adj.merge(p.a, p.b, into)
	delete(g.segments, p.a)
	delete(g.segments, p.b)
	g.segments[into] = parent
	g.commits++

	m := Merge{First: p.a, Second: p.b, Into: into, Cost: cost}
	g.logger.Debugw("merged segments",
		"round", g.commits, "first", m.First, "second", m.Second, "into", m.Into,
		"cost", m.Cost, "pixels", parent.PixelCount())
	return m, nil
}
