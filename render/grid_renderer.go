// Package render draws the grid and status line onto a terminal screen.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pathviz/grid"
)

// CellWidth is the number of terminal columns per grid cell; two columns make cells roughly square
const CellWidth = 2

// Surface is the subset of tcell.Screen the renderer writes to
type Surface interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
	Clear()
	Show()
}

// Tone selects the status message color
type Tone uint8

const (
	ToneInfo Tone = iota
	ToneOk
	ToneError
)

// Status is the text under the grid
type Status struct {
	Heuristic string
	Message   string
	Tone      Tone
	Expanded  int
	Searching bool
}

const helpText = "L:start/end/wall  R:erase  SPACE:search  m:maze  h:heuristic  c:clear  q:quit"

// GridRenderer paints a grid.Grid at the top-left of a surface
type GridRenderer struct {
	surface Surface
}

func NewGridRenderer(surface Surface) *GridRenderer {
	return &GridRenderer{surface: surface}
}

// Frame redraws everything and presents it
func (r *GridRenderer) Frame(g *grid.Grid, status Status) {
	r.surface.Clear()
	r.drawGrid(g)
	r.drawStatus(g.Rows, status)
	r.surface.Show()
}

func (r *GridRenderer) drawGrid(g *grid.Grid) {
	width, height := r.surface.Size()
	g.Each(func(c *grid.Cell) {
		y := c.Row
		x := c.Col * CellWidth
		if y >= height || x >= width {
			return
		}
		style := StateStyle(c.State)
		r.surface.SetContent(x, y, ' ', nil, style)
		// Right half carries a faint divider so adjacent cells stay distinguishable
		r.surface.SetContent(x+1, y, '▕', nil, style)
	})
}

func (r *GridRenderer) drawStatus(row int, status Status) {
	base := tcell.StyleDefault.Background(RgbStatusBg).Foreground(RgbStatusFg)

	state := "idle"
	if status.Searching {
		state = "searching"
	}
	line := fmt.Sprintf(" %s | %s | expanded %d ", status.Heuristic, state, status.Expanded)
	x := r.drawText(0, row, line, base)

	msgStyle := base
	switch status.Tone {
	case ToneOk:
		msgStyle = base.Foreground(RgbStatusOk)
	case ToneError:
		msgStyle = base.Foreground(RgbStatusErr)
	}
	if status.Message != "" {
		r.drawText(x, row, " "+status.Message, msgStyle)
	}

	r.drawText(0, row+1, helpText, base.Dim(true))
}

// drawText writes s at (x, y), clipped to the surface; returns the next column
func (r *GridRenderer) drawText(x, y int, s string, style tcell.Style) int {
	width, height := r.surface.Size()
	if y >= height {
		return x
	}
	for _, ch := range s {
		if x >= width {
			break
		}
		r.surface.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// CellAt maps a screen position to grid indices
func CellAt(g *grid.Grid, x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	row, col = y, x/CellWidth
	if !g.InBounds(row, col) {
		return 0, 0, false
	}
	return row, col, true
}

// RequiredSize is the screen area needed to show g plus the status lines
func RequiredSize(g *grid.Grid) (width, height int) {
	width = g.Cols * CellWidth
	if len(helpText) > width {
		width = len(helpText)
	}
	return width, g.Rows + 2
}
