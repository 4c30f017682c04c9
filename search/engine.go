// Package search runs A* over a grid.Grid with 8-directional movement.
//
// Orthogonal steps cost 1 and diagonal steps cost √2. The frontier is ordered
// by f-score and then by a strictly increasing insertion counter, so equal
// f-scores expand first-in first-out and every run on the same layout
// expands cells in the same order.
//
// The engine writes cell states as it goes (Frontier, Visited, Path) and
// reports each expansion to an Observer; rendering and pacing live there.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"github.com/lixenwraith/pathviz/grid"
	"github.com/lixenwraith/pathviz/heuristic"
)

var ErrInvalidRequest = errors.New("invalid search request")

// Outcome is the terminal state of a run
type Outcome uint8

const (
	Unfinished Outcome = iota
	PathFound
	Exhausted
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case PathFound:
		return "found"
	case Exhausted:
		return "exhausted"
	case Cancelled:
		return "cancelled"
	}
	return "unfinished"
}

// Result summarizes one run
type Result struct {
	RunID    string
	Outcome  Outcome
	Path     []*grid.Cell // Intermediate cells, start to end, endpoints excluded
	Cost     float64      // Sum of step costs; 0 unless PathFound
	Expanded int
	Order    []*grid.Cell // Expansion order
	Duration time.Duration
}

// Engine holds the configuration shared by runs; per-run state is not retained
type Engine struct {
	heuristic heuristic.Func
	observer  Observer
	logger    *log.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithHeuristic replaces the default Euclidean estimate
func WithHeuristic(h heuristic.Func) Option {
	return func(e *Engine) {
		if h != nil {
			e.heuristic = h
		}
	}
}

// WithObserver sets the per-expansion callback
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the logger for run summaries
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine with Euclidean heuristic and no observer
func New(opts ...Option) *Engine {
	e := &Engine{
		heuristic: heuristic.Euclidean,
		observer:  nopObserver{},
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// openEntry is one frontier record; seq is the insertion counter
type openEntry struct {
	f    float64
	seq  uint64
	cell *grid.Cell
}

func lessEntry(a, b openEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

// runState is discarded when Run returns
type runState struct {
	gScore   map[*grid.Cell]float64
	fScore   map[*grid.Cell]float64
	cameFrom map[*grid.Cell]*grid.Cell

	open    *heap.Heap[openEntry]
	openSet mapset.Set[*grid.Cell]
	liveSeq map[*grid.Cell]uint64 // seq of the newest entry per open cell
	nextSeq uint64
}

func newRunState(size int) *runState {
	return &runState{
		gScore:   make(map[*grid.Cell]float64, size),
		fScore:   make(map[*grid.Cell]float64, size),
		cameFrom: make(map[*grid.Cell]*grid.Cell, size),
		open:     heap.New[openEntry](lessEntry),
		openSet:  mapset.New[*grid.Cell](),
		liveSeq:  make(map[*grid.Cell]uint64, size),
	}
}

func (s *runState) g(c *grid.Cell) float64 {
	if v, ok := s.gScore[c]; ok {
		return v
	}
	return math.Inf(1)
}

// push records a fresh entry; returns true if c was not already open
func (s *runState) push(c *grid.Cell) bool {
	seq := s.nextSeq
	s.nextSeq++
	s.open.Push(openEntry{f: s.fScore[c], seq: seq, cell: c})
	s.liveSeq[c] = seq

	if s.openSet.Has(c) {
		return false
	}
	s.openSet.Put(c)
	return true
}

// pop returns the best live entry, skipping entries superseded by a later push
func (s *runState) pop() (*grid.Cell, bool) {
	for {
		e, ok := s.open.Pop()
		if !ok {
			return nil, false
		}
		if !s.openSet.Has(e.cell) || s.liveSeq[e.cell] != e.seq {
			continue
		}
		s.openSet.Remove(e.cell)
		delete(s.liveSeq, e.cell)
		return e.cell, true
	}
}

// Run searches g from start to end
//
// Transient tags left by an earlier run are cleared first. On cancellation
// the run stops before the next expansion, leaving cell states as they are,
// and returns ctx.Err() wrapped with Outcome Cancelled.
func (e *Engine) Run(ctx context.Context, g *grid.Grid, start, end *grid.Cell) (Result, error) {
	if err := validate(g, start, end); err != nil {
		return Result{}, err
	}

	res := Result{RunID: uuid.NewString()}
	began := time.Now()

	g.ClearTransient()

	s := newRunState(g.Rows * g.Cols)
	s.gScore[start] = 0
	s.fScore[start] = e.heuristic(start, end)
	s.push(start)

	e.logger.Printf("search %s: start=%v end=%v grid=%dx%d", res.RunID, start, end, g.Rows, g.Cols)

	for s.openSet.Size() > 0 {
		if err := ctx.Err(); err != nil {
			res.Outcome = Cancelled
			e.logger.Printf("search %s: cancelled after %d expansions", res.RunID, res.Expanded)
			return e.finish(res, began), fmt.Errorf("search %s: %w", res.RunID, err)
		}

		current, ok := s.pop()
		if !ok {
			break
		}
		res.Expanded++
		res.Order = append(res.Order, current)

		if current == end {
			path, err := Reconstruct(s.cameFrom, end, start)
			if err != nil {
				return e.finish(res, began), fmt.Errorf("search %s: %w", res.RunID, err)
			}
			// Roles survive path coloring
			start.State = grid.Start
			end.State = grid.End

			res.Outcome = PathFound
			res.Path = path
			res.Cost = s.g(end)
			e.logger.Printf("search %s: path found, %d cells, cost %.3f, %d expansions",
				res.RunID, len(path), res.Cost, res.Expanded)
			return e.finish(res, began), nil
		}

		orthogonal, diagonal := g.Neighbors(current)
		e.relax(s, current, orthogonal, 1, end)
		e.relax(s, current, diagonal, math.Sqrt2, end)

		if current != start {
			current.State = grid.Visited
		}

		e.observer.OnStep(Step{Current: current, Expanded: res.Expanded, OpenSize: s.openSet.Size()})
	}

	res.Outcome = Exhausted
	e.logger.Printf("search %s: exhausted after %d expansions", res.RunID, res.Expanded)
	return e.finish(res, began), nil
}

func (e *Engine) relax(s *runState, current *grid.Cell, neighbors []*grid.Cell, stepCost float64, end *grid.Cell) {
	base := s.g(current)
	for _, n := range neighbors {
		tentative := base + stepCost
		if tentative >= s.g(n) {
			continue
		}
		s.cameFrom[n] = current
		s.gScore[n] = tentative
		s.fScore[n] = tentative + e.heuristic(n, end)

		if s.push(n) && n != end {
			n.State = grid.Frontier
		}
	}
}

func (e *Engine) finish(res Result, began time.Time) Result {
	res.Duration = time.Since(began)
	return res
}

func validate(g *grid.Grid, start, end *grid.Cell) error {
	switch {
	case g == nil:
		return fmt.Errorf("%w: nil grid", ErrInvalidRequest)
	case start == nil || end == nil:
		return fmt.Errorf("%w: start and end must both be set", ErrInvalidRequest)
	case !g.Owns(start) || !g.Owns(end):
		return fmt.Errorf("%w: start or end not on this grid", ErrInvalidRequest)
	case start.IsBarrier() || end.IsBarrier():
		return fmt.Errorf("%w: start or end is a barrier", ErrInvalidRequest)
	}
	return nil
}
