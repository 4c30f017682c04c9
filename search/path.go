package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/pathviz/grid"
)

var ErrNoPredecessor = errors.New("no predecessor recorded")

// Reconstruct walks cameFrom from end back to start and marks every cell in
// between as Path. The returned cells are ordered start to end and exclude
// both endpoints.
func Reconstruct(cameFrom map[*grid.Cell]*grid.Cell, end, start *grid.Cell) ([]*grid.Cell, error) {
	var reversed []*grid.Cell

	cur := end
	// A chain longer than the map means a predecessor cycle
	for hops := 0; cur != start; hops++ {
		if hops > len(cameFrom) {
			return nil, fmt.Errorf("%w: predecessor cycle through %v", ErrNoPredecessor, cur)
		}
		prev, ok := cameFrom[cur]
		if !ok || prev == nil {
			return nil, fmt.Errorf("%w: %v", ErrNoPredecessor, cur)
		}
		if prev != start {
			prev.State = grid.Path
			reversed = append(reversed, prev)
		}
		cur = prev
	}

	path := make([]*grid.Cell, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path, nil
}

// StepCost is 1 for an orthogonal move and √2 for a diagonal one
func StepCost(a, b *grid.Cell) float64 {
	if a.Row != b.Row && a.Col != b.Col {
		return math.Sqrt2
	}
	return 1
}

// PathCost sums step costs along start, path..., end
func PathCost(start *grid.Cell, path []*grid.Cell, end *grid.Cell) float64 {
	if start == end {
		return 0
	}
	total := 0.0
	prev := start
	for _, c := range path {
		total += StepCost(prev, c)
		prev = c
	}
	return total + StepCost(prev, end)
}
