package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/pathviz/grid"
)

func TestStateColor_Distinct(t *testing.T) {
	states := []grid.State{grid.Empty, grid.Barrier, grid.Start, grid.End, grid.Frontier, grid.Visited, grid.Path}
	seen := map[tcell.Color]grid.State{}
	for _, s := range states {
		c := StateColor(s)
		if prev, dup := seen[c]; dup {
			t.Errorf("%v and %v share color %v", s, prev, c)
		}
		seen[c] = s
	}
}

func TestStateColor_Mapping(t *testing.T) {
	tests := []struct {
		state   grid.State
		r, g, b int32
	}{
		{grid.Empty, 255, 255, 255},
		{grid.Barrier, 0, 0, 0},
		{grid.Start, 128, 0, 128},
		{grid.End, 0, 0, 255},
		{grid.Frontier, 255, 0, 0},
		{grid.Visited, 0, 255, 0},
		{grid.Path, 255, 255, 0},
		{grid.State(42), 255, 255, 255},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			r, g, b := StateColor(tt.state).RGB()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}
