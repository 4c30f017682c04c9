package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pathviz/grid"
)

// Cell fill colors by logical state
var (
	RgbEmpty    = tcell.NewRGBColor(255, 255, 255) // White
	RgbBarrier  = tcell.NewRGBColor(0, 0, 0)       // Black
	RgbStart    = tcell.NewRGBColor(128, 0, 128)   // Purple
	RgbEnd      = tcell.NewRGBColor(0, 0, 255)     // Blue
	RgbFrontier = tcell.NewRGBColor(255, 0, 0)     // Red
	RgbVisited  = tcell.NewRGBColor(0, 255, 0)     // Green
	RgbPath     = tcell.NewRGBColor(255, 255, 0)   // Yellow

	RgbGridLine  = tcell.NewRGBColor(128, 128, 128) // Grey
	RgbStatusBg  = tcell.NewRGBColor(26, 27, 38)
	RgbStatusFg  = tcell.NewRGBColor(200, 200, 200)
	RgbStatusOk  = tcell.NewRGBColor(144, 238, 144) // Light green
	RgbStatusErr = tcell.NewRGBColor(255, 120, 120) // Light red
)

var stateColors = map[grid.State]tcell.Color{
	grid.Empty:    RgbEmpty,
	grid.Barrier:  RgbBarrier,
	grid.Start:    RgbStart,
	grid.End:      RgbEnd,
	grid.Frontier: RgbFrontier,
	grid.Visited:  RgbVisited,
	grid.Path:     RgbPath,
}

// StateColor maps a cell state to its fill; unknown states draw as empty
func StateColor(s grid.State) tcell.Color {
	if c, ok := stateColors[s]; ok {
		return c
	}
	return RgbEmpty
}

// StateStyle is the style used to paint a cell of state s
func StateStyle(s grid.State) tcell.Style {
	return tcell.StyleDefault.Background(StateColor(s)).Foreground(RgbGridLine)
}
