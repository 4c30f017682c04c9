package grid

import "fmt"

// State is the logical tag of a cell, independent of how it is drawn
type State uint8

const (
	Empty State = iota
	Barrier
	Start
	End
	Frontier // Discovered, pending expansion
	Visited  // Expanded, all neighbors relaxed
	Path
)

var stateNames = [...]string{
	Empty:    "empty",
	Barrier:  "barrier",
	Start:    "start",
	End:      "end",
	Frontier: "frontier",
	Visited:  "visited",
	Path:     "path",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Cell is a single grid unit; Row and Col never change after construction
type Cell struct {
	Row, Col int
	State    State
}

// IsBarrier reports whether the cell blocks movement
func (c *Cell) IsBarrier() bool {
	return c.State == Barrier
}

// IsTransient reports whether the tag was written by a search run
func (c *Cell) IsTransient() bool {
	switch c.State {
	case Frontier, Visited, Path:
		return true
	}
	return false
}

func (c *Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
