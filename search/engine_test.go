package search

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"math/rand"
	"testing"

	"github.com/lixenwraith/pathviz/grid"
	"github.com/lixenwraith/pathviz/heuristic"
)

const epsilon = 1e-9

var quietLogger = log.New(io.Discard, "", 0)

func newGrid(t *testing.T, rows, cols int, barriers ...[2]int) *grid.Grid {
	t.Helper()
	g, err := grid.New(rows, cols)
	if err != nil {
		t.Fatalf("grid.New failed: %v", err)
	}
	for _, b := range barriers {
		at(t, g, b[0], b[1]).State = grid.Barrier
	}
	return g
}

func at(t *testing.T, g *grid.Grid, row, col int) *grid.Cell {
	t.Helper()
	c, err := g.CellAt(row, col)
	if err != nil {
		t.Fatalf("CellAt(%d,%d) failed: %v", row, col, err)
	}
	return c
}

func run(t *testing.T, g *grid.Grid, start, end *grid.Cell, opts ...Option) Result {
	t.Helper()
	start.State = grid.Start
	end.State = grid.End
	e := New(append([]Option{WithLogger(quietLogger)}, opts...)...)
	res, err := e.Run(context.Background(), g, start, end)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

// assertContiguous checks every step of start, path..., end is a legal move
func assertContiguous(t *testing.T, start *grid.Cell, path []*grid.Cell, end *grid.Cell) {
	t.Helper()
	prev := start
	for _, c := range append(append([]*grid.Cell{}, path...), end) {
		dr, dc := c.Row-prev.Row, c.Col-prev.Col
		if dr < -1 || dr > 1 || dc < -1 || dc > 1 || (dr == 0 && dc == 0) {
			t.Fatalf("Illegal step %v -> %v", prev, c)
		}
		if c.IsBarrier() {
			t.Fatalf("Path crosses barrier at %v", c)
		}
		prev = c
	}
}

func TestScenarioA_Straight(t *testing.T) {
	g := newGrid(t, 3, 3)
	start, end := at(t, g, 0, 0), at(t, g, 0, 2)

	res := run(t, g, start, end)

	if res.Outcome != PathFound {
		t.Fatalf("Expected PathFound, got %v", res.Outcome)
	}
	if math.Abs(res.Cost-2) > epsilon {
		t.Errorf("Expected cost 2, got %f", res.Cost)
	}
	assertContiguous(t, start, res.Path, end)
	if got := PathCost(start, res.Path, end); math.Abs(got-res.Cost) > epsilon {
		t.Errorf("Path cost %f disagrees with g-score %f", got, res.Cost)
	}
}

func TestScenarioB_DiagonalShortcut(t *testing.T) {
	g := newGrid(t, 3, 3)
	start, end := at(t, g, 0, 0), at(t, g, 2, 2)

	res := run(t, g, start, end)

	if res.Outcome != PathFound {
		t.Fatalf("Expected PathFound, got %v", res.Outcome)
	}
	if math.Abs(res.Cost-2*math.Sqrt2) > epsilon {
		t.Errorf("Expected cost 2√2, got %f", res.Cost)
	}
	if len(res.Path) != 1 || res.Path[0] != at(t, g, 1, 1) {
		t.Errorf("Expected path through center, got %v", res.Path)
	}
	if res.Path[0].State != grid.Path {
		t.Errorf("Expected center marked path, got %v", res.Path[0].State)
	}
	if start.State != grid.Start || end.State != grid.End {
		t.Errorf("Roles lost: start=%v end=%v", start.State, end.State)
	}
}

func TestScenarioC_Blocked(t *testing.T) {
	g := newGrid(t, 3, 3, [2]int{1, 0}, [2]int{1, 1}, [2]int{1, 2})
	start, end := at(t, g, 0, 0), at(t, g, 2, 0)

	res := run(t, g, start, end)

	if res.Outcome != Exhausted {
		t.Fatalf("Expected Exhausted, got %v", res.Outcome)
	}
	if res.Path != nil || res.Cost != 0 {
		t.Errorf("Expected no path, got %v cost %f", res.Path, res.Cost)
	}
	if res.Expanded != 3 {
		t.Errorf("Expected 3 expansions (top row), got %d", res.Expanded)
	}
	if n := g.Count(grid.Path); n != 0 {
		t.Errorf("Expected no path cells, got %d", n)
	}
}

func TestScenarioD_StartIsEnd(t *testing.T) {
	g := newGrid(t, 3, 3)
	c := at(t, g, 1, 1)

	steps := 0
	e := New(WithLogger(quietLogger), WithObserver(ObserverFunc(func(Step) { steps++ })))
	res, err := e.Run(context.Background(), g, c, c)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Outcome != PathFound {
		t.Fatalf("Expected PathFound, got %v", res.Outcome)
	}
	if len(res.Path) != 0 || res.Cost != 0 {
		t.Errorf("Expected empty zero-cost path, got %v cost %f", res.Path, res.Cost)
	}
	if res.Expanded != 1 || steps != 0 {
		t.Errorf("Expected single pop and no ticks, got %d pops %d ticks", res.Expanded, steps)
	}
	if n := g.Count(grid.Visited); n != 0 {
		t.Errorf("Expected no visited cells, got %d", n)
	}
}

// referenceCost is uniform-cost search by linear scan, independent of the engine
func referenceCost(g *grid.Grid, start, end *grid.Cell) (float64, bool) {
	dist := map[*grid.Cell]float64{start: 0}
	done := map[*grid.Cell]bool{}
	for {
		var best *grid.Cell
		bestDist := math.Inf(1)
		for c, d := range dist {
			if !done[c] && d < bestDist {
				best, bestDist = c, d
			}
		}
		if best == nil {
			return 0, false
		}
		if best == end {
			return bestDist, true
		}
		done[best] = true
		orth, diag := g.Neighbors(best)
		for _, n := range orth {
			if d, ok := dist[n]; !ok || bestDist+1 < d {
				dist[n] = bestDist + 1
			}
		}
		for _, n := range diag {
			if d, ok := dist[n]; !ok || bestDist+math.Sqrt2 < d {
				dist[n] = bestDist + math.Sqrt2
			}
		}
	}
}

func randomLayout(rng *rand.Rand, rows, cols int, density float64) [][2]int {
	var out [][2]int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if rng.Float64() < density {
				out = append(out, [2]int{r, c})
			}
		}
	}
	return out
}

func TestOptimality_MatchesUniformCost(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	admissible := map[string]heuristic.Func{
		"euclidean": heuristic.Euclidean,
		"octile":    heuristic.Octile,
		"zero":      heuristic.Zero,
	}

	for trial := 0; trial < 40; trial++ {
		layout := randomLayout(rng, 12, 12, 0.3)
		sr, sc := rng.Intn(12), rng.Intn(12)
		er, ec := rng.Intn(12), rng.Intn(12)

		for name, h := range admissible {
			g := newGrid(t, 12, 12, layout...)
			start, end := at(t, g, sr, sc), at(t, g, er, ec)
			start.State, end.State = grid.Empty, grid.Empty

			want, reachable := referenceCost(g, start, end)
			res := run(t, g, start, end, WithHeuristic(h))

			if !reachable {
				if res.Outcome != Exhausted {
					t.Errorf("trial %d %s: expected Exhausted, got %v", trial, name, res.Outcome)
				}
				continue
			}
			if res.Outcome != PathFound {
				t.Errorf("trial %d %s: expected PathFound, got %v", trial, name, res.Outcome)
				continue
			}
			if math.Abs(res.Cost-want) > epsilon {
				t.Errorf("trial %d %s: cost %f, optimal %f", trial, name, res.Cost, want)
			}
			assertContiguous(t, start, res.Path, end)
		}
	}
}

func TestManhattan_FindsValidPath(t *testing.T) {
	g := newGrid(t, 8, 8, [2]int{3, 1}, [2]int{3, 2}, [2]int{3, 3}, [2]int{3, 4})
	start, end := at(t, g, 0, 0), at(t, g, 7, 6)
	want, _ := referenceCost(g, start, end)

	res := run(t, g, start, end, WithHeuristic(heuristic.Manhattan))

	if res.Outcome != PathFound {
		t.Fatalf("Expected PathFound, got %v", res.Outcome)
	}
	if res.Cost < want-epsilon {
		t.Errorf("Cost %f below optimum %f", res.Cost, want)
	}
	assertContiguous(t, start, res.Path, end)
}

func coords(cells []*grid.Cell) [][2]int {
	out := make([][2]int, len(cells))
	for i, c := range cells {
		out[i] = [2]int{c.Row, c.Col}
	}
	return out
}

func TestDeterminism_SameOrderAndPath(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	layout := randomLayout(rng, 20, 20, 0.25)

	var firstOrder, firstPath [][2]int
	for i := 0; i < 5; i++ {
		g := newGrid(t, 20, 20, layout...)
		start, end := at(t, g, 0, 0), at(t, g, 19, 19)
		start.State, end.State = grid.Empty, grid.Empty

		res := run(t, g, start, end)
		order, path := coords(res.Order), coords(res.Path)
		if i == 0 {
			firstOrder, firstPath = order, path
			continue
		}
		if len(order) != len(firstOrder) || len(path) != len(firstPath) {
			t.Fatalf("run %d: lengths differ (%d/%d vs %d/%d)", i, len(order), len(path), len(firstOrder), len(firstPath))
		}
		for j := range order {
			if order[j] != firstOrder[j] {
				t.Fatalf("run %d: expansion %d differs: %v vs %v", i, j, order[j], firstOrder[j])
			}
		}
		for j := range path {
			if path[j] != firstPath[j] {
				t.Fatalf("run %d: path step %d differs", i, j)
			}
		}
	}
}

func TestTieBreak_FIFOAmongEqualScores(t *testing.T) {
	s := newRunState(4)
	cells := []*grid.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}
	for _, c := range cells {
		s.fScore[c] = 5
		s.push(c)
	}
	for i, want := range cells {
		got, ok := s.pop()
		if !ok || got != want {
			t.Fatalf("pop %d: got %v, want %v", i, got, want)
		}
	}
	if _, ok := s.pop(); ok {
		t.Error("Expected empty frontier")
	}
}

func TestRelaxedOpenCell_SupersedesStaleEntry(t *testing.T) {
	s := newRunState(4)
	a, b := &grid.Cell{Row: 0, Col: 0}, &grid.Cell{Row: 0, Col: 1}

	s.fScore[a] = 10
	s.push(a)
	s.fScore[b] = 6
	s.push(b)
	s.fScore[a] = 3
	if s.push(a) {
		t.Fatal("Re-push of an open cell must not report a new member")
	}

	first, _ := s.pop()
	second, _ := s.pop()
	if first != a || second != b {
		t.Errorf("Expected a then b, got %v then %v", first, second)
	}
	if _, ok := s.pop(); ok {
		t.Error("Stale entry for a must be skipped")
	}
}

// reachable counts cells 8-connected to start through non-barriers
func reachable(g *grid.Grid, start *grid.Cell) int {
	seen := map[*grid.Cell]bool{start: true}
	queue := []*grid.Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		orth, diag := g.Neighbors(c)
		for _, n := range append(orth, diag...) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return len(seen)
}

func TestNoPath_VisitsReachableComponent(t *testing.T) {
	// Vertical wall at col 4 splits a 6x9 grid
	var wall [][2]int
	for r := 0; r < 6; r++ {
		wall = append(wall, [2]int{r, 4})
	}
	g := newGrid(t, 6, 9, wall...)
	start, end := at(t, g, 2, 1), at(t, g, 3, 7)

	component := reachable(g, start)
	res := run(t, g, start, end)

	if res.Outcome != Exhausted {
		t.Fatalf("Expected Exhausted, got %v", res.Outcome)
	}
	if res.Expanded != component {
		t.Errorf("Expanded %d cells, component has %d", res.Expanded, component)
	}
	if got := g.Count(grid.Visited); got != component-1 {
		t.Errorf("Visited %d cells, want %d (component minus start)", got, component-1)
	}
	if g.Count(grid.Path) != 0 || g.Count(grid.Frontier) != 0 {
		t.Error("Expected no path or frontier cells after exhaustion")
	}
	if end.State != grid.End {
		t.Errorf("End role lost: %v", end.State)
	}
}

func TestCancellation_StopsBeforeReconstruction(t *testing.T) {
	g := newGrid(t, 15, 15)
	start, end := at(t, g, 0, 0), at(t, g, 14, 14)
	start.State, end.State = grid.Start, grid.End

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observer := ObserverFunc(func(s Step) {
		if s.Expanded == 3 {
			cancel()
		}
	})
	e := New(WithLogger(quietLogger), WithObserver(observer))
	res, err := e.Run(ctx, g, start, end)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if res.Outcome != Cancelled {
		t.Errorf("Expected Cancelled, got %v", res.Outcome)
	}
	if res.Expanded != 3 {
		t.Errorf("Expected 3 expansions before stop, got %d", res.Expanded)
	}
	if g.Count(grid.Path) != 0 {
		t.Error("Cancelled run must not mark a path")
	}
	if g.Count(grid.Visited) != 2 {
		t.Errorf("Expected cell states left as mutated (2 visited), got %d", g.Count(grid.Visited))
	}
}

func TestRerun_ClearsTransientTags(t *testing.T) {
	g := newGrid(t, 10, 10)
	start, end := at(t, g, 0, 0), at(t, g, 9, 0)

	run(t, g, start, end)
	if g.Count(grid.Path) == 0 {
		t.Fatal("Expected a path after first run")
	}

	// Wall off the end and search again
	for c := 0; c < 10; c++ {
		at(t, g, 5, c).State = grid.Barrier
	}
	res := run(t, g, start, end)

	if res.Outcome != Exhausted {
		t.Fatalf("Expected Exhausted, got %v", res.Outcome)
	}
	if g.Count(grid.Path) != 0 {
		t.Error("Path cells from the previous run survived")
	}
	for r := 6; r < 10; r++ {
		for c := 0; c < 10; c++ {
			if cell := at(t, g, r, c); cell != end && cell.State != grid.Empty {
				t.Errorf("Unreachable cell %v has stale state %v", cell, cell.State)
			}
		}
	}
}

func TestObserver_TickPerExpansion(t *testing.T) {
	g := newGrid(t, 5, 5)
	start, end := at(t, g, 0, 0), at(t, g, 4, 4)

	var steps []Step
	res := run(t, g, start, end, WithObserver(ObserverFunc(func(s Step) { steps = append(steps, s) })))

	// The final pop reaches the goal and returns without a tick
	if len(steps) != res.Expanded-1 {
		t.Fatalf("Expected %d ticks, got %d", res.Expanded-1, len(steps))
	}
	for i, s := range steps {
		if s.Expanded != i+1 {
			t.Errorf("tick %d reports %d expanded", i, s.Expanded)
		}
		if s.Current != res.Order[i] {
			t.Errorf("tick %d current %v, order says %v", i, s.Current, res.Order[i])
		}
	}
}

func TestMultiObserver(t *testing.T) {
	var a, b int
	m := Multi(ObserverFunc(func(Step) { a++ }), nil, ObserverFunc(func(Step) { b++ }))
	m.OnStep(Step{})
	m.OnStep(Step{})
	if a != 2 || b != 2 {
		t.Errorf("Expected both observers called twice, got %d and %d", a, b)
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	g := newGrid(t, 3, 3, [2]int{2, 2})
	other := newGrid(t, 3, 3)
	e := New(WithLogger(quietLogger))

	tests := []struct {
		name       string
		grid       *grid.Grid
		start, end *grid.Cell
	}{
		{"nil grid", nil, at(t, g, 0, 0), at(t, g, 1, 1)},
		{"missing start", g, nil, at(t, g, 1, 1)},
		{"missing end", g, at(t, g, 0, 0), nil},
		{"foreign cell", g, at(t, other, 0, 0), at(t, g, 1, 1)},
		{"barrier end", g, at(t, g, 0, 0), at(t, g, 2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Run(context.Background(), tt.grid, tt.start, tt.end); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}
