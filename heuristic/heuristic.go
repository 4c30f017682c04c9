// Package heuristic provides remaining-cost estimates between grid cells.
//
// Euclidean and Octile never overestimate the cost of 8-directional movement
// with orthogonal step 1 and diagonal step √2, so A* stays optimal with them.
// Manhattan overestimates whenever a diagonal shortcut exists; it is kept for
// comparison and trades optimality for fewer expansions.
package heuristic

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lixenwraith/pathviz/grid"
)

var ErrUnknownHeuristic = errors.New("unknown heuristic")

// Func estimates the remaining cost from a to b, always >= 0
type Func func(a, b *grid.Cell) float64

const (
	NameEuclidean = "euclidean"
	NameManhattan = "manhattan"
	NameOctile    = "octile"
	NameZero      = "zero"
)

var registry = map[string]Func{
	NameEuclidean: Euclidean,
	NameManhattan: Manhattan,
	NameOctile:    Octile,
	NameZero:      Zero,
}

func deltas(a, b *grid.Cell) (dr, dc float64) {
	return math.Abs(float64(a.Row - b.Row)), math.Abs(float64(a.Col - b.Col))
}

// Euclidean is the straight-line distance
func Euclidean(a, b *grid.Cell) float64 {
	dr, dc := deltas(a, b)
	return math.Sqrt(dr*dr + dc*dc)
}

// Manhattan is the sum of axis distances
func Manhattan(a, b *grid.Cell) float64 {
	dr, dc := deltas(a, b)
	return dr + dc
}

// Octile is the exact cost on an empty 8-connected grid
func Octile(a, b *grid.Cell) float64 {
	dr, dc := deltas(a, b)
	return math.Max(dr, dc) + (math.Sqrt2-1)*math.Min(dr, dc)
}

// Zero reduces A* to uniform-cost search
func Zero(_, _ *grid.Cell) float64 {
	return 0
}

// ByName resolves a heuristic name, case-insensitive
func ByName(name string) (Func, error) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownHeuristic, name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names lists the registered heuristics in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Next returns the name following current in Names order, wrapping around
func Next(current string) string {
	names := Names()
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
