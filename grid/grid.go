// Package grid holds the fixed-size cell model searched by the engine.
//
// Cells are stored flat (row*cols+col) and handed out as pointers, so a
// *Cell is a stable identity until the next Reset.
package grid

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds        = errors.New("cell index out of bounds")
	ErrInvalidDimensions  = errors.New("grid dimensions must be positive")
	errDimensionsMismatch = errors.New("layout dimensions do not match grid")
)

// Direction offsets in neighbor order
// Orthogonal: down, up, left, right
// Diagonal: down-right, down-left, up-right, up-left
var (
	orthogonalOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, -1}, {0, 1}}
	diagonalOffsets   = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Grid is a Rows x Cols collection of cells
type Grid struct {
	Rows, Cols int
	cells      []Cell
}

// New creates a grid with every cell Empty
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	g := &Grid{Rows: rows, Cols: cols}
	g.build()
	return g, nil
}

func (g *Grid) build() {
	g.cells = make([]Cell, g.Rows*g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			g.cells[r*g.Cols+c] = Cell{Row: r, Col: c}
		}
	}
}

// InBounds reports whether (row, col) addresses a cell
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// CellAt returns the cell at (row, col)
func (g *Grid) CellAt(row, col int) (*Cell, error) {
	if !g.InBounds(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, row, col, g.Rows, g.Cols)
	}
	return &g.cells[row*g.Cols+col], nil
}

// at skips the bounds check; callers guarantee (row, col) is valid
func (g *Grid) at(row, col int) *Cell {
	return &g.cells[row*g.Cols+col]
}

// Owns reports whether c is a live cell of this grid
// Cells from before a Reset are not owned
func (g *Grid) Owns(c *Cell) bool {
	if c == nil || !g.InBounds(c.Row, c.Col) {
		return false
	}
	return g.at(c.Row, c.Col) == c
}

// Neighbors returns the passable orthogonal and diagonal neighbors of c
// Barrier status is read at call time, nothing is cached
func (g *Grid) Neighbors(c *Cell) (orthogonal, diagonal []*Cell) {
	orthogonal = make([]*Cell, 0, 4)
	diagonal = make([]*Cell, 0, 4)

	for _, d := range orthogonalOffsets {
		if n := g.passable(c.Row+d[0], c.Col+d[1]); n != nil {
			orthogonal = append(orthogonal, n)
		}
	}
	for _, d := range diagonalOffsets {
		if n := g.passable(c.Row+d[0], c.Col+d[1]); n != nil {
			diagonal = append(diagonal, n)
		}
	}
	return orthogonal, diagonal
}

func (g *Grid) passable(row, col int) *Cell {
	if !g.InBounds(row, col) {
		return nil
	}
	n := g.at(row, col)
	if n.IsBarrier() {
		return nil
	}
	return n
}

// Each visits cells in row-major order
func (g *Grid) Each(fn func(c *Cell)) {
	for i := range g.cells {
		fn(&g.cells[i])
	}
}

// Reset rebuilds every cell as Empty, invalidating previously held pointers
func (g *Grid) Reset() {
	g.build()
}

// ClearTransient returns Frontier, Visited and Path cells to Empty
func (g *Grid) ClearTransient() {
	for i := range g.cells {
		if g.cells[i].IsTransient() {
			g.cells[i].State = Empty
		}
	}
}

// Count returns the number of cells holding state s
func (g *Grid) Count(s State) int {
	n := 0
	for i := range g.cells {
		if g.cells[i].State == s {
			n++
		}
	}
	return n
}

// Snapshot copies the current states, indexed [row][col]
func (g *Grid) Snapshot() [][]State {
	out := make([][]State, g.Rows)
	for r := 0; r < g.Rows; r++ {
		out[r] = make([]State, g.Cols)
		for c := 0; c < g.Cols; c++ {
			out[r][c] = g.at(r, c).State
		}
	}
	return out
}

// ApplyBarriers sets Barrier where layout is true and Empty elsewhere
// Cells accepted by keep are left untouched
func (g *Grid) ApplyBarriers(layout [][]bool, keep func(c *Cell) bool) error {
	if len(layout) != g.Rows {
		return fmt.Errorf("%w: %d rows, want %d", errDimensionsMismatch, len(layout), g.Rows)
	}
	for r, row := range layout {
		if len(row) != g.Cols {
			return fmt.Errorf("%w: row %d has %d cols, want %d", errDimensionsMismatch, r, len(row), g.Cols)
		}
	}

	for r, row := range layout {
		for c, wall := range row {
			cell := g.at(r, c)
			if keep != nil && keep(cell) {
				continue
			}
			if wall {
				cell.State = Barrier
			} else {
				cell.State = Empty
			}
		}
	}
	return nil
}
