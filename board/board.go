// Package board applies the interactive editing rules to a grid: who becomes
// start, who becomes end, what turns into a barrier, and when a search may run.
package board

import (
	"fmt"

	"github.com/lixenwraith/pathviz/grid"
	"github.com/lixenwraith/pathviz/search"
)

// Action reports what a pointer press did
type Action uint8

const (
	NoAction Action = iota
	PlacedStart
	PlacedEnd
	PlacedBarrier
	Cleared
)

func (a Action) String() string {
	switch a {
	case PlacedStart:
		return "start"
	case PlacedEnd:
		return "end"
	case PlacedBarrier:
		return "barrier"
	case Cleared:
		return "cleared"
	}
	return "none"
}

// Board owns a grid and at most one start and one end cell
type Board struct {
	grid       *grid.Grid
	start, end *grid.Cell
}

// New creates a board over an empty rows x cols grid
func New(rows, cols int) (*Board, error) {
	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}
	return &Board{grid: g}, nil
}

func (b *Board) Grid() *grid.Grid  { return b.grid }
func (b *Board) Start() *grid.Cell { return b.start }
func (b *Board) End() *grid.Cell   { return b.end }

// Ready reports whether both roles are set
func (b *Board) Ready() bool {
	return b.start != nil && b.end != nil
}

// Primary places start, then end, then barriers
func (b *Board) Primary(row, col int) (Action, error) {
	cell, err := b.grid.CellAt(row, col)
	if err != nil {
		return NoAction, err
	}

	switch {
	case b.start == nil && cell != b.end:
		b.start = cell
		cell.State = grid.Start
		return PlacedStart, nil
	case b.end == nil && cell != b.start:
		b.end = cell
		cell.State = grid.End
		return PlacedEnd, nil
	case cell != b.start && cell != b.end:
		if cell.State == grid.Barrier {
			return NoAction, nil
		}
		cell.State = grid.Barrier
		return PlacedBarrier, nil
	}
	return NoAction, nil
}

// Secondary returns a cell to Empty, releasing its role if it had one
func (b *Board) Secondary(row, col int) (Action, error) {
	cell, err := b.grid.CellAt(row, col)
	if err != nil {
		return NoAction, err
	}

	switch cell {
	case b.start:
		b.start = nil
	case b.end:
		b.end = nil
	}
	if cell.State == grid.Empty {
		return NoAction, nil
	}
	cell.State = grid.Empty
	return Cleared, nil
}

// SearchRequest returns the endpoints, or ErrInvalidRequest if either is unset
func (b *Board) SearchRequest() (start, end *grid.Cell, err error) {
	if !b.Ready() {
		return nil, nil, fmt.Errorf("%w: start and end must both be placed", search.ErrInvalidRequest)
	}
	return b.start, b.end, nil
}

// Clear discards every cell and both roles
func (b *Board) Clear() {
	b.grid.Reset()
	b.start = nil
	b.end = nil
}

// ApplyBarriers lays out walls from a [row][col] mask, never covering start or end
func (b *Board) ApplyBarriers(layout [][]bool) error {
	return b.grid.ApplyBarriers(layout, func(c *grid.Cell) bool {
		return c == b.start || c == b.end
	})
}
